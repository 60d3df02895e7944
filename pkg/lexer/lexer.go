package lexer

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/tipy-lang/tipc/pkg/diag"
	"github.com/tipy-lang/tipc/pkg/token"
)

type Lexer struct {
	source []rune
	pos    int // rune index
	byte   int // byte offset of pos
	line   int
	column int

	reserveKeywords bool
}

func NewLexer(source []rune) *Lexer {
	return &Lexer{source: source, line: 1, column: 1, reserveKeywords: true}
}

// SetReserveKeywords controls whether the spellings reserved for future
// language versions (class, enum, match, new, free, none) lex as
// keywords or as plain identifiers.
func (l *Lexer) SetReserveKeywords(reserve bool) { l.reserveKeywords = reserve }

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	r := l.source[l.pos]
	l.pos++
	l.byte += utf8.RuneLen(r)
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *Lexer) match(expected rune) bool {
	if l.peek() != expected {
		return false
	}
	l.advance()
	return true
}

type mark struct {
	pos    int
	byte   int
	line   int
	column int
}

func (l *Lexer) mark() mark { return mark{l.pos, l.byte, l.line, l.column} }

func (l *Lexer) makeToken(typ token.Type, value string, m mark) token.Token {
	return token.Token{
		Type:      typ,
		Value:     value,
		Line:      m.line,
		Column:    m.column,
		StartByte: m.byte,
		EndByte:   l.byte,
	}
}

func (l *Lexer) spanFrom(m mark) diag.Span {
	return diag.Span{
		Line:      uint32(m.line),
		Column:    uint32(m.column),
		StartByte: m.byte,
		EndByte:   l.byte,
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.isAtEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '/':
			if l.peekNext() != '/' {
				return
			}
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// Next scans one token. After the input is exhausted it keeps returning
// EOF tokens.
func (l *Lexer) Next() (token.Token, *diag.Error) {
	l.skipWhitespaceAndComments()
	m := l.mark()
	if l.isAtEnd() {
		return l.makeToken(token.EOF, "", m), nil
	}

	r := l.advance()

	if unicode.IsLetter(r) || r == '_' {
		return l.identifier(m), nil
	}
	if unicode.IsDigit(r) {
		return l.number(m)
	}

	switch r {
	case '=':
		if l.match('=') {
			return l.makeToken(token.Equal, "==", m), nil
		}
		return l.makeToken(token.Assign, "=", m), nil
	case '!':
		if l.match('=') {
			return l.makeToken(token.NotEqual, "!=", m), nil
		}
		return l.makeToken(token.Bang, "!", m), nil
	case '<':
		if l.match('=') {
			return l.makeToken(token.LessEqual, "<=", m), nil
		}
		return l.makeToken(token.LessThan, "<", m), nil
	case '>':
		if l.match('=') {
			return l.makeToken(token.GreaterEqual, ">=", m), nil
		}
		return l.makeToken(token.GreaterThan, ">", m), nil
	case '-':
		if l.match('>') {
			return l.makeToken(token.Arrow, "->", m), nil
		}
		return l.makeToken(token.Minus, "-", m), nil
	case '+':
		return l.makeToken(token.Plus, "+", m), nil
	case '*':
		return l.makeToken(token.Star, "*", m), nil
	case '/':
		return l.makeToken(token.Slash, "/", m), nil
	case '~':
		return l.makeToken(token.Tilde, "~", m), nil
	case '^':
		return l.makeToken(token.Caret, "^", m), nil
	case '|':
		return l.makeToken(token.Pipe, "|", m), nil
	case ':':
		return l.makeToken(token.Colon, ":", m), nil
	case ';':
		return l.makeToken(token.Semicolon, ";", m), nil
	case ',':
		return l.makeToken(token.Comma, ",", m), nil
	case '(':
		return l.makeToken(token.LParen, "(", m), nil
	case ')':
		return l.makeToken(token.RParen, ")", m), nil
	case '{':
		return l.makeToken(token.LBrace, "{", m), nil
	case '}':
		return l.makeToken(token.RBrace, "}", m), nil
	case '"':
		return l.stringLiteral(m)
	case '\'':
		return l.charLiteral(m)
	}

	return token.Token{}, diag.NewUnknownCharacter(r, l.spanFrom(m))
}

func (l *Lexer) identifier(m mark) token.Token {
	for !l.isAtEnd() && (unicode.IsLetter(l.peek()) || unicode.IsDigit(l.peek()) || l.peek() == '_') {
		l.advance()
	}
	lexeme := l.lexemeFrom(m)
	typ := token.LookupIdent(lexeme)
	if !l.reserveKeywords {
		switch typ {
		case token.Class, token.Enum, token.Match, token.New, token.Free, token.None:
			typ = token.Ident
		}
	}
	return l.makeToken(typ, lexeme, m)
}

func (l *Lexer) lexemeFrom(m mark) string {
	return string(l.source[m.pos:l.pos])
}

// number scans an integer, extending to a float only when a '.' is
// directly followed by a digit. "1.foo" lexes as 1 then '.'.
func (l *Lexer) number(m mark) (token.Token, *diag.Error) {
	for unicode.IsDigit(l.peek()) {
		l.advance()
	}
	isFloat := false
	if l.peek() == '.' && unicode.IsDigit(l.peekNext()) {
		isFloat = true
		l.advance()
		for unicode.IsDigit(l.peek()) {
			l.advance()
		}
	}
	lexeme := l.lexemeFrom(m)
	if isFloat {
		if _, err := strconv.ParseFloat(lexeme, 64); err != nil {
			return token.Token{}, diag.NewMalformedNumber("invalid float", l.spanFrom(m))
		}
		return l.makeToken(token.Float, lexeme, m), nil
	}
	if _, err := strconv.ParseInt(lexeme, 10, 64); err != nil {
		return token.Token{}, diag.NewMalformedNumber("invalid integer", l.spanFrom(m))
	}
	return l.makeToken(token.Int, lexeme, m), nil
}

// stringLiteral scans up to the closing quote. Escapes are not
// recognized.
func (l *Lexer) stringLiteral(m mark) (token.Token, *diag.Error) {
	for !l.isAtEnd() && l.peek() != '"' {
		l.advance()
	}
	if l.isAtEnd() {
		return token.Token{}, diag.NewUnterminatedString(l.spanFrom(m))
	}
	l.advance() // closing quote
	lexeme := l.lexemeFrom(m)
	return l.makeToken(token.String, lexeme[1:len(lexeme)-1], m), nil
}

func (l *Lexer) charLiteral(m mark) (token.Token, *diag.Error) {
	if l.isAtEnd() || l.peek() == '\'' {
		return token.Token{}, diag.NewMalformedChar(l.spanFrom(m))
	}
	ch := l.advance()
	if !l.match('\'') {
		return token.Token{}, diag.NewMalformedChar(l.spanFrom(m))
	}
	return l.makeToken(token.Char, string(ch), m), nil
}
