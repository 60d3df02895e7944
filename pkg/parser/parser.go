// Package parser implements a Pratt parser over the token stream. The
// parser collects every error it encounters and recovers at statement
// boundaries instead of stopping at the first mistake.
package parser

import (
	"strconv"

	"github.com/tipy-lang/tipc/pkg/ast"
	"github.com/tipy-lang/tipc/pkg/diag"
	"github.com/tipy-lang/tipc/pkg/lexer"
	"github.com/tipy-lang/tipc/pkg/token"
)

type precedence int

const (
	precLowest precedence = iota
	precAssign
	precComparison
	precSum
	precProduct
	precPrefix
	precCall
)

var precedences = map[token.Type]precedence{
	token.Assign:       precAssign,
	token.Equal:        precComparison,
	token.NotEqual:     precComparison,
	token.LessThan:     precComparison,
	token.LessEqual:    precComparison,
	token.GreaterThan:  precComparison,
	token.GreaterEqual: precComparison,
	token.Plus:         precSum,
	token.Minus:        precSum,
	token.Star:         precProduct,
	token.Slash:        precProduct,
	token.LParen:       precCall,
}

type Parser struct {
	lex    *lexer.Lexer
	cur    token.Token
	peek   token.Token
	errors []*diag.Error
}

func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{lex: l}
	// Prime cur and peek.
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances the window. A lexer error is recorded and the
// stream behaves as if it ended there.
func (p *Parser) nextToken() {
	p.cur = p.peek
	tok, err := p.lex.Next()
	if err != nil {
		p.errors = append(p.errors, err)
		tok = token.Token{Type: token.EOF}
	}
	p.peek = tok
}

func (p *Parser) peekPrecedence() precedence {
	if prec, ok := precedences[p.peek.Type]; ok {
		return prec
	}
	return precLowest
}

func (p *Parser) curPrecedence() precedence {
	if prec, ok := precedences[p.cur.Type]; ok {
		return prec
	}
	return precLowest
}

// expectPeek advances only when the next token has the wanted type.
func (p *Parser) expectPeek(t token.Type) *diag.Error {
	if p.peek.Type != t {
		if p.peek.Type == token.EOF {
			return diag.NewUnexpectedEOF("'" + t.String() + "'")
		}
		return diag.NewUnexpectedToken("'"+t.String()+"'", p.peek.Display(), p.peek.Span())
	}
	p.nextToken()
	return nil
}

// ParseProgram parses the whole input and returns the Program node
// together with every error collected along the way.
func (p *Parser) ParseProgram() (*ast.Node, []*diag.Error) {
	var funcs []*ast.Node
	for p.cur.Type != token.EOF {
		fn, err := p.parseFunctionDecl()
		if err != nil {
			p.errors = append(p.errors, err)
			p.synchronize()
			continue
		}
		funcs = append(funcs, fn)
		p.nextToken()
	}
	return ast.NewProgram(funcs), p.errors
}

// synchronize skips tokens until a likely statement boundary. It always
// consumes at least one token so recovery cannot loop forever.
func (p *Parser) synchronize() {
	p.nextToken()
	for p.cur.Type != token.EOF {
		if p.cur.Type == token.Semicolon || p.cur.Type == token.RBrace {
			p.nextToken()
			return
		}
		switch p.peek.Type {
		case token.Class, token.Ret, token.If, token.Loop, token.While:
			p.nextToken()
			return
		}
		p.nextToken()
	}
}

// parseFunctionDecl parses `name(param: type, ...) [-> type] { ... }`.
// A missing arrow means the function returns void.
func (p *Parser) parseFunctionDecl() (*ast.Node, *diag.Error) {
	if p.cur.Type != token.Ident {
		return nil, diag.NewUnexpectedToken("a function name", p.cur.Display(), p.cur.Span())
	}
	tok := p.cur
	name := p.cur.Value

	if err := p.expectPeek(token.LParen); err != nil {
		return nil, err
	}
	params, err := p.parseFunctionParams()
	if err != nil {
		return nil, err
	}

	var retType *ast.TypeRef
	if p.peek.Type == token.Arrow {
		p.nextToken()
		p.nextToken()
		retType, err = p.parseTypeRef()
		if err != nil {
			return nil, err
		}
	} else {
		retType = &ast.TypeRef{Name: "void", Tok: tok}
	}

	if err := p.expectPeek(token.LBrace); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewFuncDecl(tok, name, params, retType, body), nil
}

// parseFunctionParams is entered at '(' and leaves the cursor at ')'.
func (p *Parser) parseFunctionParams() ([]ast.Param, *diag.Error) {
	var params []ast.Param
	if p.peek.Type == token.RParen {
		p.nextToken()
		return params, nil
	}
	for {
		if err := p.expectPeek(token.Ident); err != nil {
			return nil, err
		}
		nameTok := p.cur
		if err := p.expectPeek(token.Colon); err != nil {
			return nil, err
		}
		p.nextToken()
		typ, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: nameTok.Value, Type: typ, Tok: nameTok})
		if p.peek.Type != token.Comma {
			break
		}
		p.nextToken()
	}
	if err := p.expectPeek(token.RParen); err != nil {
		return nil, err
	}
	return params, nil
}

// parseTypeRef is entered at the first token of a type and leaves the
// cursor at its last token.
func (p *Parser) parseTypeRef() (*ast.TypeRef, *diag.Error) {
	switch p.cur.Type {
	case token.Ident:
		return &ast.TypeRef{Name: p.cur.Value, Tok: p.cur}, nil
	case token.Caret, token.Tilde:
		tok := p.cur
		mutPtr := false
		if p.cur.Type == token.Tilde {
			mutPtr = true
			if err := p.expectPeek(token.Caret); err != nil {
				return nil, err
			}
		}
		mutPointee := false
		if p.peek.Type == token.Tilde {
			p.nextToken()
			mutPointee = true
		}
		p.nextToken()
		elem, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		return &ast.TypeRef{IsPointer: true, MutPtr: mutPtr, MutPointee: mutPointee, Elem: elem, Tok: tok}, nil
	}
	return nil, diag.NewUnexpectedToken("a type", p.cur.Display(), p.cur.Span())
}

// parseBlock is entered at '{' and leaves the cursor at '}'. Statements
// inside recover individually so one bad statement does not poison the
// rest of the block.
func (p *Parser) parseBlock() (*ast.Node, *diag.Error) {
	tok := p.cur
	var stmts []*ast.Node
	p.nextToken()
	for p.cur.Type != token.RBrace && p.cur.Type != token.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			p.errors = append(p.errors, err)
			p.synchronize()
			continue
		}
		stmts = append(stmts, stmt)
		p.nextToken()
	}
	if p.cur.Type == token.EOF {
		return nil, diag.NewUnexpectedEOF("'}'")
	}
	return ast.NewBlock(tok, stmts), nil
}

// parseStatement leaves the cursor at the statement's last token.
func (p *Parser) parseStatement() (*ast.Node, *diag.Error) {
	switch p.cur.Type {
	case token.Ret:
		return p.parseReturn()
	case token.While:
		return p.parseWhile()
	case token.Break:
		return p.parseBreak()
	case token.Continue:
		tok := p.cur
		p.consumeOptionalSemicolon()
		return ast.NewContinue(tok), nil
	}
	if p.cur.Type == token.Ident && p.peek.Type == token.Colon {
		return p.parseVarDecl()
	}
	expr, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	stmt := ast.NewExprStmt(expr)
	p.consumeOptionalSemicolon()
	return stmt, nil
}

func (p *Parser) consumeOptionalSemicolon() {
	if p.peek.Type == token.Semicolon {
		p.nextToken()
	}
}

func (p *Parser) parseReturn() (*ast.Node, *diag.Error) {
	tok := p.cur
	if p.peek.Type == token.Semicolon || p.peek.Type == token.RBrace {
		p.consumeOptionalSemicolon()
		return ast.NewReturn(tok, nil), nil
	}
	p.nextToken()
	value, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	p.consumeOptionalSemicolon()
	return ast.NewReturn(tok, value), nil
}

func (p *Parser) parseBreak() (*ast.Node, *diag.Error) {
	tok := p.cur
	if p.peek.Type == token.Semicolon || p.peek.Type == token.RBrace {
		p.consumeOptionalSemicolon()
		return ast.NewBreak(tok, nil), nil
	}
	p.nextToken()
	value, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	p.consumeOptionalSemicolon()
	return ast.NewBreak(tok, value), nil
}

func (p *Parser) parseWhile() (*ast.Node, *diag.Error) {
	tok := p.cur
	p.nextToken()
	cond, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.LBrace); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(tok, cond, body), nil
}

// parseVarDecl parses `name: [~] type [= expr] [;]`. The tilde marks
// the binding mutable.
func (p *Parser) parseVarDecl() (*ast.Node, *diag.Error) {
	tok := p.cur
	name := p.cur.Value
	p.nextToken() // ':'

	mutable := false
	if p.peek.Type == token.Tilde {
		p.nextToken()
		mutable = true
	}
	p.nextToken()
	typ, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}

	var init *ast.Node
	if p.peek.Type == token.Assign {
		p.nextToken()
		p.nextToken()
		init, err = p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
	}
	p.consumeOptionalSemicolon()
	return ast.NewVarDecl(tok, name, typ, mutable, init), nil
}

func (p *Parser) parseExpression(prec precedence) (*ast.Node, *diag.Error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	// Strict '<' keeps the infix operators left-associative.
	for p.peek.Type != token.Semicolon && prec < p.peekPrecedence() {
		switch p.peek.Type {
		case token.Plus, token.Minus, token.Star, token.Slash,
			token.Equal, token.NotEqual, token.LessThan, token.LessEqual,
			token.GreaterThan, token.GreaterEqual:
			p.nextToken()
			left, err = p.parseInfix(left)
		case token.Assign:
			p.nextToken()
			left, err = p.parseAssign(left)
		case token.LParen:
			p.nextToken()
			left, err = p.parseCall(left)
		default:
			return left, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parsePrefix() (*ast.Node, *diag.Error) {
	switch p.cur.Type {
	case token.Ident:
		return ast.NewIdent(p.cur, p.cur.Value), nil
	case token.Int:
		v, err := strconv.ParseInt(p.cur.Value, 10, 64)
		if err != nil {
			return nil, diag.NewMalformedNumber("invalid integer", p.cur.Span())
		}
		return ast.NewInt(p.cur, v), nil
	case token.Float:
		v, err := strconv.ParseFloat(p.cur.Value, 64)
		if err != nil {
			return nil, diag.NewMalformedNumber("invalid float", p.cur.Span())
		}
		return ast.NewFloat(p.cur, v), nil
	case token.True:
		return ast.NewBool(p.cur, true), nil
	case token.False:
		return ast.NewBool(p.cur, false), nil
	case token.Char:
		return ast.NewChar(p.cur, []rune(p.cur.Value)[0]), nil
	case token.String:
		return ast.NewString(p.cur, p.cur.Value), nil
	case token.Bang, token.Minus:
		tok := p.cur
		op := p.cur.Type
		p.nextToken()
		operand, err := p.parseExpression(precPrefix)
		if err != nil {
			return nil, err
		}
		return ast.NewPrefix(tok, op, operand), nil
	case token.LParen:
		p.nextToken()
		expr, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.RParen); err != nil {
			return nil, err
		}
		return expr, nil
	case token.If:
		return p.parseIfExpression()
	case token.Loop:
		return p.parseLoopExpression()
	case token.LBrace:
		return p.parseBlock()
	case token.EOF:
		return nil, diag.NewUnexpectedEOF("an expression")
	}
	return nil, diag.NewUnexpectedToken("an expression", p.cur.Display(), p.cur.Span())
}

func (p *Parser) parseInfix(left *ast.Node) (*ast.Node, *diag.Error) {
	tok := p.cur
	op := p.cur.Type
	prec := p.curPrecedence()
	p.nextToken()
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return ast.NewInfix(tok, op, left, right), nil
}

// parseAssign parses the right side one level below Assign so chained
// assignments associate to the right.
func (p *Parser) parseAssign(target *ast.Node) (*ast.Node, *diag.Error) {
	tok := p.cur
	p.nextToken()
	value, err := p.parseExpression(precAssign - 1)
	if err != nil {
		return nil, err
	}
	return ast.NewAssign(tok, target, value), nil
}

func (p *Parser) parseCall(callee *ast.Node) (*ast.Node, *diag.Error) {
	tok := p.cur
	var args []*ast.Node
	if p.peek.Type == token.RParen {
		p.nextToken()
		return ast.NewCall(tok, callee, args), nil
	}
	p.nextToken()
	arg, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	args = append(args, arg)
	for p.peek.Type == token.Comma {
		p.nextToken()
		p.nextToken()
		arg, err = p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if err := p.expectPeek(token.RParen); err != nil {
		return nil, err
	}
	return ast.NewCall(tok, callee, args), nil
}

// parseIfExpression parses `if cond { ... } [elif ... | else { ... }]`.
func (p *Parser) parseIfExpression() (*ast.Node, *diag.Error) {
	tok := p.cur
	p.nextToken()
	cond, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.LBrace); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var els *ast.Node
	switch p.peek.Type {
	case token.Elif:
		p.nextToken()
		els, err = p.parseIfExpression()
		if err != nil {
			return nil, err
		}
	case token.Else:
		p.nextToken()
		if err := p.expectPeek(token.LBrace); err != nil {
			return nil, err
		}
		els, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIf(tok, cond, then, els), nil
}

func (p *Parser) parseLoopExpression() (*ast.Node, *diag.Error) {
	tok := p.cur
	if err := p.expectPeek(token.LBrace); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.NewLoop(tok, body), nil
}
