package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tipy-lang/tipc/pkg/analyzer"
	"github.com/tipy-lang/tipc/pkg/ast"
	"github.com/tipy-lang/tipc/pkg/config"
	"github.com/tipy-lang/tipc/pkg/lexer"
	"github.com/tipy-lang/tipc/pkg/parser"
	"github.com/tipy-lang/tipc/pkg/types"
	"github.com/tipy-lang/tipc/pkg/util"
)

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// cmdRepl runs the interactive checker: every complete input is lexed,
// parsed, and analyzed, and the type of the final expression is
// reported. Function declarations persist for the session.
func cmdRepl() {
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".tipc_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            colorGreen + "tipy> " + colorReset,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "%s%stipc checker%s %s(type 'exit' or Ctrl+D to quit)%s\n\n",
		colorBold, colorCyan, colorReset, colorGray, colorReset)

	cfg := config.NewConfig()
	var sessionDecls strings.Builder
	var accumulated strings.Builder
	braceDepth := 0

	for {
		if braceDepth > 0 {
			rl.SetPrompt(colorGray + "...   " + colorReset)
		} else {
			rl.SetPrompt(colorGreen + "tipy> " + colorReset)
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if braceDepth > 0 {
					accumulated.Reset()
					braceDepth = 0
					continue
				}
				fmt.Fprintf(rl.Stdout(), "\n%s(use 'exit' or Ctrl+D to quit)%s\n", colorGray, colorReset)
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if braceDepth == 0 && strings.TrimSpace(line) == "exit" {
			break
		}

		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		accumulated.WriteString(line)
		accumulated.WriteString("\n")

		if braceDepth > 0 {
			continue
		}
		braceDepth = 0

		source := accumulated.String()
		accumulated.Reset()
		if strings.TrimSpace(source) == "" {
			continue
		}

		evalInput(rl, cfg, &sessionDecls, source)
	}
}

// evalInput first tries the input as a set of function declarations; on
// success they join the session. Anything else is checked as statements
// inside a synthetic function alongside the session's declarations.
func evalInput(rl *readline.Instance, cfg *config.Config, sessionDecls *strings.Builder, source string) {
	if isDeclInput(source) {
		if _, ok := checkSource(rl, cfg, sessionDecls.String()+source, false); ok {
			sessionDecls.WriteString(source)
			fmt.Fprintf(rl.Stdout(), "%sok%s\n", colorGray, colorReset)
		}
		return
	}

	wrapped := sessionDecls.String() + "repl_0() {\n" + source + "}\n"
	program, ok := checkSource(rl, cfg, wrapped, false)
	if !ok {
		return
	}
	fmt.Fprintf(rl.Stdout(), "%s=> %s%s\n", colorCyan, lastBlockType(program), colorReset)
}

// isDeclInput reports whether the snippet opens with a function header
// rather than a statement.
func isDeclInput(source string) bool {
	trimmed := strings.TrimSpace(source)
	open := strings.IndexByte(trimmed, '(')
	brace := strings.IndexByte(trimmed, '{')
	if open <= 0 || brace < 0 || open > brace {
		return false
	}
	closing := strings.IndexByte(trimmed, ')')
	if closing < 0 || closing > brace {
		return false
	}
	between := strings.TrimSpace(trimmed[closing+1 : brace])
	return between == "" || strings.HasPrefix(between, "->")
}

func checkSource(rl *readline.Instance, cfg *config.Config, source string, quiet bool) (*ast.Node, bool) {
	src := util.NewSourceFile("<repl>", source)
	l := lexer.NewLexer([]rune(source))
	l.SetReserveKeywords(cfg.IsFeatureEnabled(config.FeatReserveKeywords))
	p := parser.NewParser(l)
	program, parseErrs := p.ParseProgram()
	if len(parseErrs) > 0 {
		if !quiet {
			for _, e := range parseErrs {
				util.PrintError(rl.Stderr(), src, e)
			}
		}
		return nil, false
	}

	a := analyzer.NewAnalyzer(cfg)
	_, semErrs := a.Analyze(program)
	if len(semErrs) > 0 {
		if !quiet {
			for _, e := range semErrs {
				util.PrintError(rl.Stderr(), src, e)
			}
		}
		return nil, false
	}
	if !quiet {
		for _, w := range a.Warnings() {
			util.PrintWarning(rl.Stderr(), src, w)
		}
	}
	return program, true
}

// lastBlockType reads the analyzed type of the synthetic function's
// body, which is the type of the snippet's final expression.
func lastBlockType(program *ast.Node) string {
	prog := program.Data.(ast.ProgramNode)
	if len(prog.Funcs) == 0 {
		return types.Void.String()
	}
	last := prog.Funcs[len(prog.Funcs)-1].Data.(ast.FuncDeclNode)
	if last.Body.Typ == nil {
		return types.Void.String()
	}
	return last.Body.Typ.String()
}
