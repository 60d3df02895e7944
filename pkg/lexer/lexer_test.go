package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tipy-lang/tipc/pkg/diag"
	"github.com/tipy-lang/tipc/pkg/token"
)

// helper: lex the whole input, failing the test on any lexer error
func lexAll(t *testing.T, source string) []token.Token {
	t.Helper()
	l := NewLexer([]rune(source))
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected lexer error: %v", err)
		}
		if tok.Type == token.EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func lexTypes(t *testing.T, source string) []token.Type {
	t.Helper()
	toks := lexAll(t, source)
	types := make([]token.Type, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestTwoCharOperators(t *testing.T) {
	got := lexTypes(t, "-> == != <= >= = < > - !")
	want := []token.Type{
		token.Arrow, token.Equal, token.NotEqual, token.LessEqual,
		token.GreaterEqual, token.Assign, token.LessThan, token.GreaterThan,
		token.Minus, token.Bang,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token types mismatch (-want +got):\n%s", diff)
	}
}

func TestKeywordsAndIdents(t *testing.T) {
	got := lexTypes(t, "ret if elif else while loop break continue retx")
	want := []token.Type{
		token.Ret, token.If, token.Elif, token.Else, token.While,
		token.Loop, token.Break, token.Continue, token.Ident,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token types mismatch (-want +got):\n%s", diff)
	}
}

func TestNumbers(t *testing.T) {
	toks := lexAll(t, "42 3.14 0")
	if toks[0].Type != token.Int || toks[0].Value != "42" {
		t.Errorf("expected Int 42, got %v", toks[0])
	}
	if toks[1].Type != token.Float || toks[1].Value != "3.14" {
		t.Errorf("expected Float 3.14, got %v", toks[1])
	}
	if toks[2].Type != token.Int || toks[2].Value != "0" {
		t.Errorf("expected Int 0, got %v", toks[2])
	}
}

// A '.' not followed by a digit stays out of the number.
func TestFloatNeedsDigitAfterDot(t *testing.T) {
	l := NewLexer([]rune("1.x"))
	tok, err := l.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Type != token.Int || tok.Value != "1" {
		t.Fatalf("expected Int 1, got %v", tok)
	}
	// The dangling '.' is not part of the language.
	_, err = l.Next()
	if err == nil {
		t.Fatal("expected an error for '.'")
	}
	if err.Kind != diag.UnknownCharacter {
		t.Errorf("expected UnknownCharacter, got %v", err)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	got := lexTypes(t, "a // the rest is ignored\nb")
	want := []token.Type{token.Ident, token.Ident}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token types mismatch (-want +got):\n%s", diff)
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	toks := lexAll(t, "a\n  b")
	if toks[0].Line != 1 || toks[0].Column != 1 {
		t.Errorf("expected a at 1:1, got %d:%d", toks[0].Line, toks[0].Column)
	}
	if toks[1].Line != 2 || toks[1].Column != 3 {
		t.Errorf("expected b at 2:3, got %d:%d", toks[1].Line, toks[1].Column)
	}
}

func TestStringLiteral(t *testing.T) {
	toks := lexAll(t, `"hello world"`)
	if toks[0].Type != token.String || toks[0].Value != "hello world" {
		t.Errorf("expected String 'hello world', got %v", toks[0])
	}
}

func TestUnterminatedString(t *testing.T) {
	l := NewLexer([]rune(`"no closing quote`))
	_, err := l.Next()
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Kind != diag.UnterminatedString {
		t.Errorf("expected UnterminatedString, got %v", err)
	}
	if err.Span.Line != 1 || err.Span.Column != 1 {
		t.Errorf("expected span at the opening quote, got %v", err.Span)
	}
}

func TestCharLiteral(t *testing.T) {
	toks := lexAll(t, "'x'")
	if toks[0].Type != token.Char || toks[0].Value != "x" {
		t.Errorf("expected Char x, got %v", toks[0])
	}
}

func TestMalformedCharLiteral(t *testing.T) {
	for _, source := range []string{"''", "'ab'", "'"} {
		l := NewLexer([]rune(source))
		_, err := l.Next()
		if err == nil {
			t.Fatalf("%q: expected an error", source)
		}
		if err.Kind != diag.MalformedChar {
			t.Errorf("%q: expected MalformedChar, got %v", source, err)
		}
	}
}

func TestUnknownCharacter(t *testing.T) {
	l := NewLexer([]rune("@"))
	_, err := l.Next()
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Kind != diag.UnknownCharacter {
		t.Errorf("expected UnknownCharacter, got %v", err)
	}
}

func TestReservedKeywordsCanBeReleased(t *testing.T) {
	got := lexTypes(t, "class match none")
	want := []token.Type{token.Class, token.Match, token.None}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("reserved spellings (-want +got):\n%s", diff)
	}

	l := NewLexer([]rune("class match none"))
	l.SetReserveKeywords(false)
	for i := 0; i < 3; i++ {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.Type != token.Ident {
			t.Errorf("token %d: expected Ident, got %v", i, tok)
		}
	}
}

func TestEOFForever(t *testing.T) {
	l := NewLexer([]rune(""))
	for i := 0; i < 3; i++ {
		tok, err := l.Next()
		if err != nil || tok.Type != token.EOF {
			t.Fatalf("call %d: expected EOF, got %v %v", i, tok, err)
		}
	}
}
