package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/tipy-lang/tipc/pkg/analyzer"
	"github.com/tipy-lang/tipc/pkg/ast"
	"github.com/tipy-lang/tipc/pkg/cli"
	"github.com/tipy-lang/tipc/pkg/codegen"
	"github.com/tipy-lang/tipc/pkg/config"
	"github.com/tipy-lang/tipc/pkg/diag"
	"github.com/tipy-lang/tipc/pkg/lexer"
	"github.com/tipy-lang/tipc/pkg/parser"
	"github.com/tipy-lang/tipc/pkg/token"
	"github.com/tipy-lang/tipc/pkg/util"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "repl" {
		cmdRepl()
		return
	}

	app := cli.NewApp("tipc")
	app.Synopsis = "[options] <input.tipy>"
	app.Description = "A compiler for the Tipy programming language. Compiles through QBE and links with the system C compiler. Run 'tipc repl' for an interactive checker."

	var (
		outFile    string
		target     string
		dumpIR     bool
		dumpAST    bool
		dumpTokens bool
		toggles    []string
	)

	fs := app.FlagSet
	fs.String(&outFile, "output", "o", "a.out", "Place the output into <file>.", "file")
	fs.String(&target, "target", "t", "", "Set the QBE target ABI (defaults to the host).", "target")
	fs.Bool(&dumpIR, "dump-ir", "d", false, "Print the QBE IL and exit.")
	fs.Bool(&dumpAST, "dump-ast", "", false, "Print the parsed program and exit.")
	fs.Bool(&dumpTokens, "dump-tokens", "", false, "Print the token stream and exit.")
	fs.Prefix(&toggles, "-W", "Toggle a warning, e.g. -Wshadow, -Wno-unused-variable.")
	fs.Prefix(&toggles, "-F", "Toggle a language feature, e.g. -Fno-main-ret-zero.")

	app.Action = func(args []string) error {
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "tipc: expected exactly one input file")
			return fmt.Errorf("no input")
		}

		cfg := config.NewConfig()
		for _, flag := range toggles {
			cfg.ApplyFlag(flag)
		}
		cfg.SetTarget(runtime.GOOS, runtime.GOARCH, target)

		content, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "tipc: could not read '%s': %v\n", args[0], err)
			return err
		}
		src := util.NewSourceFile(args[0], string(content))

		if dumpTokens {
			return printTokens(src, cfg)
		}
		return compile(src, cfg, outFile, dumpAST, dumpIR)
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

func printTokens(src *util.SourceFile, cfg *config.Config) error {
	l := lexer.NewLexer([]rune(src.Content))
	l.SetReserveKeywords(cfg.IsFeatureEnabled(config.FeatReserveKeywords))
	for {
		tok, err := l.Next()
		if err != nil {
			util.PrintError(os.Stderr, src, err)
			return fmt.Errorf("lex failed")
		}
		fmt.Println(tok)
		if tok.Type == token.EOF {
			return nil
		}
	}
}

func compile(src *util.SourceFile, cfg *config.Config, outFile string, dumpAST, dumpIR bool) error {
	l := lexer.NewLexer([]rune(src.Content))
	l.SetReserveKeywords(cfg.IsFeatureEnabled(config.FeatReserveKeywords))
	p := parser.NewParser(l)
	program, parseErrs := p.ParseProgram()
	if reportErrors(src, parseErrs) {
		return fmt.Errorf("parse failed")
	}

	if dumpAST {
		fmt.Println(ast.StmtString(program))
		return nil
	}

	a := analyzer.NewAnalyzer(cfg)
	symtab, semErrs := a.Analyze(program)
	for _, warn := range a.Warnings() {
		util.PrintWarning(os.Stderr, src, warn)
	}
	if reportErrors(src, semErrs) {
		return fmt.Errorf("analysis failed")
	}

	cg := codegen.NewContext(cfg)
	irProg, cgErr := cg.Generate(program, symtab)
	if cgErr != nil {
		util.PrintError(os.Stderr, src, cgErr)
		return fmt.Errorf("code generation failed")
	}

	backend := codegen.NewQBEBackend()
	if dumpIR {
		text, err := backend.GenerateIR(irProg, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tipc: %v\n", err)
			return err
		}
		fmt.Print(text)
		return nil
	}

	asm, err := backend.Generate(irProg, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tipc: %v\n", err)
		return err
	}
	if err := assembleAndLink(outFile, asm.String()); err != nil {
		fmt.Fprintf(os.Stderr, "tipc: %v\n", err)
		return err
	}
	return nil
}

func reportErrors(src *util.SourceFile, errs []*diag.Error) bool {
	for _, err := range errs {
		util.PrintError(os.Stderr, src, err)
	}
	return len(errs) > 0
}

func assembleAndLink(outFile, asm string) error {
	asmFile, err := os.CreateTemp("", "tipc-*.s")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(asmFile.Name())
	if _, err := asmFile.WriteString(asm); err != nil {
		return fmt.Errorf("failed to write assembly: %w", err)
	}
	asmFile.Close()

	cmd := exec.Command("cc", "-no-pie", "-o", outFile, asmFile.Name())
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("cc failed: %w\n%s", err, output)
	}
	return nil
}
