// Command tipgolden compiles every sample under a directory to QBE IL
// and compares the result against checked-in golden files. Run with
// -update to rewrite the goldens after an intentional change.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/tipy-lang/tipc/pkg/analyzer"
	"github.com/tipy-lang/tipc/pkg/codegen"
	"github.com/tipy-lang/tipc/pkg/config"
	"github.com/tipy-lang/tipc/pkg/lexer"
	"github.com/tipy-lang/tipc/pkg/parser"
)

func main() {
	dir := flag.String("dir", "testdata", "directory holding .tipy samples and .ssa goldens")
	update := flag.Bool("update", false, "rewrite golden files instead of comparing")
	target := flag.String("target", "", "QBE target ABI (defaults to the host)")
	flag.Parse()

	samples, err := filepath.Glob(filepath.Join(*dir, "*.tipy"))
	if err != nil || len(samples) == 0 {
		fmt.Fprintf(os.Stderr, "tipgolden: no samples found in %s\n", *dir)
		os.Exit(1)
	}

	cfg := config.NewConfig()
	cfg.SetTarget(runtime.GOOS, runtime.GOARCH, *target)

	failed := 0
	for _, sample := range samples {
		if err := runSample(sample, cfg, *update); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", sample, err)
			failed++
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "tipgolden: %d of %d samples failed\n", failed, len(samples))
		os.Exit(1)
	}
	fmt.Printf("tipgolden: %d samples ok\n", len(samples))
}

func runSample(sample string, cfg *config.Config, update bool) error {
	content, err := os.ReadFile(sample)
	if err != nil {
		return err
	}

	got, err := compileToIL(string(content), cfg)
	if err != nil {
		return err
	}

	goldenPath := strings.TrimSuffix(sample, ".tipy") + ".ssa"
	if update {
		if err := os.WriteFile(goldenPath, []byte(got), 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%016x)\n", goldenPath, xxhash.Sum64String(got))
		return nil
	}

	want, err := os.ReadFile(goldenPath)
	if err != nil {
		return fmt.Errorf("missing golden (run with -update): %w", err)
	}
	if diff := cmp.Diff(string(want), got); diff != "" {
		return fmt.Errorf("IL mismatch (-want +got):\n%s", diff)
	}
	fmt.Printf("ok   %s (%016x)\n", sample, xxhash.Sum64String(got))
	return nil
}

func compileToIL(source string, cfg *config.Config) (string, error) {
	l := lexer.NewLexer([]rune(source))
	l.SetReserveKeywords(cfg.IsFeatureEnabled(config.FeatReserveKeywords))
	p := parser.NewParser(l)
	program, parseErrs := p.ParseProgram()
	if len(parseErrs) > 0 {
		return "", fmt.Errorf("parse: %v", parseErrs[0])
	}

	a := analyzer.NewAnalyzer(cfg)
	symtab, semErrs := a.Analyze(program)
	if len(semErrs) > 0 {
		return "", fmt.Errorf("analyze: %v", semErrs[0])
	}

	cg := codegen.NewContext(cfg)
	irProg, cgErr := cg.Generate(program, symtab)
	if cgErr != nil {
		return "", fmt.Errorf("codegen: %v", cgErr)
	}
	return codegen.NewQBEBackend().GenerateIR(irProg, cfg)
}
