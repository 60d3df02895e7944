package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseStringFlag(t *testing.T) {
	fs := NewFlagSet("test")
	var out string
	fs.String(&out, "output", "o", "a.out", "output path", "file")

	if err := fs.Parse([]string{"--output", "bin"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "bin" {
		t.Errorf("got %q, want bin", out)
	}

	fs = NewFlagSet("test")
	fs.String(&out, "output", "o", "a.out", "output path", "file")
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "a.out" {
		t.Errorf("default: got %q, want a.out", out)
	}
}

func TestParseShorthandAndInline(t *testing.T) {
	fs := NewFlagSet("test")
	var target string
	fs.String(&target, "target", "t", "", "qbe target", "name")
	if err := fs.Parse([]string{"-t", "arm64"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target != "arm64" {
		t.Errorf("shorthand: got %q", target)
	}

	fs = NewFlagSet("test")
	fs.String(&target, "target", "t", "", "qbe target", "name")
	if err := fs.Parse([]string{"--target=rv64"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target != "rv64" {
		t.Errorf("inline: got %q", target)
	}
}

func TestParseBoolFlag(t *testing.T) {
	fs := NewFlagSet("test")
	var dump bool
	fs.Bool(&dump, "dump-ir", "d", false, "print the IL")
	if err := fs.Parse([]string{"--dump-ir", "in.tipy"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dump {
		t.Error("expected the bool set")
	}
	if diff := cmp.Diff([]string{"in.tipy"}, fs.Args()); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestPrefixFlagsPassThrough(t *testing.T) {
	fs := NewFlagSet("test")
	var toggles []string
	fs.Prefix(&toggles, "-W", "warning toggles")
	if err := fs.Parse([]string{"-Wshadow", "-Wno-unused-variable", "in.tipy"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Wshadow", "Wno-unused-variable"}
	if diff := cmp.Diff(want, toggles); diff != "" {
		t.Errorf("toggles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"in.tipy"}, fs.Args()); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestDoubleDashStopsParsing(t *testing.T) {
	fs := NewFlagSet("test")
	var dump bool
	fs.Bool(&dump, "dump-ir", "d", false, "print the IL")
	if err := fs.Parse([]string{"--", "--dump-ir"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dump {
		t.Error("flags after -- must not parse")
	}
	if diff := cmp.Diff([]string{"--dump-ir"}, fs.Args()); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownFlag(t *testing.T) {
	fs := NewFlagSet("test")
	if err := fs.Parse([]string{"--nope"}); err == nil {
		t.Error("expected an error for an unknown flag")
	}
}

func TestMissingValue(t *testing.T) {
	fs := NewFlagSet("test")
	var out string
	fs.String(&out, "output", "o", "", "output path", "file")
	if err := fs.Parse([]string{"--output"}); err == nil {
		t.Error("expected an error for a missing value")
	}
}

func TestListFlag(t *testing.T) {
	fs := NewFlagSet("test")
	var libs []string
	fs.List(&libs, "lib", "l", "libraries to link", "name")
	if err := fs.Parse([]string{"-l", "m", "--lib", "c"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"m", "c"}, libs); diff != "" {
		t.Errorf("libs mismatch (-want +got):\n%s", diff)
	}
}
