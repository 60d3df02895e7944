// Package cli is the small flag framework behind the tipc binary. It
// supports long and short flags, repeated list flags, and prefix flags
// like -Wshadow that are collected verbatim for the config layer.
package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"
)

type Value interface {
	String() string
	Set(string) error
}

type stringValue struct{ p *string }

func (v *stringValue) Set(s string) error { *v.p = s; return nil }
func (v *stringValue) String() string     { return *v.p }

type boolValue struct{ p *bool }

func (v *boolValue) Set(s string) error {
	if s == "" {
		*v.p = true
		return nil
	}
	val, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid boolean value '%s': %w", s, err)
	}
	*v.p = val
	return nil
}
func (v *boolValue) String() string { return strconv.FormatBool(*v.p) }

type listValue struct{ p *[]string }

func (v *listValue) Set(s string) error { *v.p = append(*v.p, s); return nil }
func (v *listValue) String() string     { return strings.Join(*v.p, ", ") }

type Flag struct {
	Name      string
	Shorthand string
	Usage     string
	Value     Value
	IsBool    bool
	ArgName   string
}

type FlagSet struct {
	name       string
	flags      map[string]*Flag
	shorthands map[string]*Flag
	prefixes   []prefixFlag
	ordered    []*Flag
	args       []string
}

type prefixFlag struct {
	prefix string
	dest   *[]string
	usage  string
}

func NewFlagSet(name string) *FlagSet {
	return &FlagSet{
		name:       name,
		flags:      make(map[string]*Flag),
		shorthands: make(map[string]*Flag),
	}
}

func (fs *FlagSet) add(f *Flag) {
	fs.flags[f.Name] = f
	if f.Shorthand != "" {
		fs.shorthands[f.Shorthand] = f
	}
	fs.ordered = append(fs.ordered, f)
}

func (fs *FlagSet) String(p *string, name, shorthand, def, usage, argName string) {
	*p = def
	fs.add(&Flag{Name: name, Shorthand: shorthand, Usage: usage, Value: &stringValue{p}, ArgName: argName})
}

func (fs *FlagSet) Bool(p *bool, name, shorthand string, def bool, usage string) {
	*p = def
	fs.add(&Flag{Name: name, Shorthand: shorthand, Usage: usage, Value: &boolValue{p}, IsBool: true})
}

func (fs *FlagSet) List(p *[]string, name, shorthand string, usage, argName string) {
	fs.add(&Flag{Name: name, Shorthand: shorthand, Usage: usage, Value: &listValue{p}, ArgName: argName})
}

// Prefix collects every argument starting with the given prefix, e.g.
// "-W" picks up -Wshadow and -Wno-unused-variable.
func (fs *FlagSet) Prefix(dest *[]string, prefix, usage string) {
	fs.prefixes = append(fs.prefixes, prefixFlag{prefix: prefix, dest: dest, usage: usage})
}

func (fs *FlagSet) Args() []string { return fs.args }

func (fs *FlagSet) Parse(arguments []string) error {
	i := 0
	for i < len(arguments) {
		arg := arguments[i]
		i++

		if arg == "--" {
			fs.args = append(fs.args, arguments[i:]...)
			return nil
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			fs.args = append(fs.args, arg)
			continue
		}

		if pf := fs.matchPrefix(arg); pf != nil {
			*pf.dest = append(*pf.dest, strings.TrimPrefix(arg, "-"))
			continue
		}

		name := strings.TrimLeft(arg, "-")
		var inline string
		hasInline := false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, inline = name[:eq], name[eq+1:]
			hasInline = true
		}

		flag := fs.flags[name]
		if flag == nil {
			flag = fs.shorthands[name]
		}
		if flag == nil {
			return fmt.Errorf("unknown flag '%s'", arg)
		}

		switch {
		case hasInline:
			if err := flag.Value.Set(inline); err != nil {
				return err
			}
		case flag.IsBool:
			if err := flag.Value.Set(""); err != nil {
				return err
			}
		default:
			if i >= len(arguments) {
				return fmt.Errorf("flag '%s' needs a value", arg)
			}
			if err := flag.Value.Set(arguments[i]); err != nil {
				return err
			}
			i++
		}
	}
	return nil
}

func (fs *FlagSet) matchPrefix(arg string) *prefixFlag {
	for idx := range fs.prefixes {
		pf := &fs.prefixes[idx]
		if strings.HasPrefix(arg, pf.prefix) && arg != pf.prefix {
			return pf
		}
	}
	return nil
}

type App struct {
	Name        string
	Synopsis    string
	Description string
	FlagSet     *FlagSet
	Action      func(args []string) error
}

func NewApp(name string) *App {
	return &App{Name: name, FlagSet: NewFlagSet(name)}
}

func (a *App) Run(arguments []string) error {
	for _, arg := range arguments {
		if arg == "-h" || arg == "--help" || arg == "-help" {
			a.PrintHelp(os.Stdout)
			return nil
		}
	}
	if err := a.FlagSet.Parse(arguments); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", a.Name, err)
		return err
	}
	return a.Action(a.FlagSet.Args())
}

func (a *App) PrintHelp(w *os.File) {
	width := 80
	if term.IsTerminal(int(w.Fd())) {
		if tw, _, err := term.GetSize(int(w.Fd())); err == nil && tw > 40 {
			width = tw
		}
	}

	fmt.Fprintf(w, "Usage: %s %s\n", a.Name, a.Synopsis)
	if a.Description != "" {
		fmt.Fprintf(w, "\n%s\n", wrap(a.Description, width))
	}
	fmt.Fprintf(w, "\nOptions:\n")

	flags := append([]*Flag(nil), a.FlagSet.ordered...)
	sort.Slice(flags, func(i, j int) bool { return flags[i].Name < flags[j].Name })
	for _, f := range flags {
		head := "  --" + f.Name
		if f.Shorthand != "" {
			head = fmt.Sprintf("  -%s, --%s", f.Shorthand, f.Name)
		}
		if f.ArgName != "" {
			head += " <" + f.ArgName + ">"
		}
		fmt.Fprintf(w, "%-28s %s\n", head, f.Usage)
	}
	for _, pf := range a.FlagSet.prefixes {
		fmt.Fprintf(w, "%-28s %s\n", "  "+pf.prefix+"<name>", pf.usage)
	}
}

func wrap(s string, width int) string {
	words := strings.Fields(s)
	var sb strings.Builder
	lineLen := 0
	for _, word := range words {
		if lineLen > 0 && lineLen+1+len(word) > width {
			sb.WriteByte('\n')
			lineLen = 0
		} else if lineLen > 0 {
			sb.WriteByte(' ')
			lineLen++
		}
		sb.WriteString(word)
		lineLen += len(word)
	}
	return sb.String()
}
