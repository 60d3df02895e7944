package token

import (
	"fmt"

	"github.com/tipy-lang/tipc/pkg/diag"
)

type Type int

const (
	EOF Type = iota
	Ident
	Int
	Float
	Char
	String

	// Keywords
	Ret
	If
	Elif
	Else
	True
	False
	Loop
	While
	Break
	Continue
	Class
	Enum
	Match
	New
	Free
	None

	// Operators
	Assign
	Equal
	Bang
	NotEqual
	LessThan
	LessEqual
	GreaterThan
	GreaterEqual
	Plus
	Minus
	Arrow
	Star
	Slash
	Tilde
	Caret
	Pipe
	Colon
	Semicolon
	Comma

	// Delimiters
	LParen
	RParen
	LBrace
	RBrace
)

var KeywordMap = map[string]Type{
	"ret":      Ret,
	"if":       If,
	"elif":     Elif,
	"else":     Else,
	"true":     True,
	"false":    False,
	"loop":     Loop,
	"while":    While,
	"break":    Break,
	"continue": Continue,
	"class":    Class,
	"enum":     Enum,
	"match":    Match,
	"new":      New,
	"free":     Free,
	"none":     None,
}

// LookupIdent returns the keyword type for a spelling, or Ident.
func LookupIdent(s string) Type {
	if t, ok := KeywordMap[s]; ok {
		return t
	}
	return Ident
}

var typeNames = map[Type]string{
	EOF: "EOF", Ident: "identifier", Int: "integer", Float: "float",
	Char: "char", String: "string",
	Ret: "ret", If: "if", Elif: "elif", Else: "else", True: "true",
	False: "false", Loop: "loop", While: "while", Break: "break",
	Continue: "continue", Class: "class", Enum: "enum", Match: "match",
	New: "new", Free: "free", None: "none",
	Assign: "=", Equal: "==", Bang: "!", NotEqual: "!=",
	LessThan: "<", LessEqual: "<=", GreaterThan: ">", GreaterEqual: ">=",
	Plus: "+", Minus: "-", Arrow: "->", Star: "*", Slash: "/",
	Tilde: "~", Caret: "^", Pipe: "|", Colon: ":", Semicolon: ";",
	Comma: ",", LParen: "(", RParen: ")", LBrace: "{", RBrace: "}",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

type Token struct {
	Type      Type
	Value     string
	Line      int
	Column    int
	StartByte int
	EndByte   int
}

func (t Token) Span() diag.Span {
	return diag.Span{
		Line:      uint32(t.Line),
		Column:    uint32(t.Column),
		StartByte: t.StartByte,
		EndByte:   t.EndByte,
	}
}

// Display returns what a diagnostic should call this token.
func (t Token) Display() string {
	switch t.Type {
	case Ident, Int, Float, Char, String:
		return t.Value
	case EOF:
		return "end of input"
	}
	return t.Type.String()
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q @%d:%d", t.Type, t.Value, t.Line, t.Column)
}
