package dsl

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError describes a malformed statement. Its position is the token the
// parser was looking at when it gave up.
type ParseError struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

type parser struct {
	tokens []Token
	pos    int
	errors []ParseError
}

// Parse builds a Program from tokens. Comments and newlines are dropped
// first. A malformed statement produces one ParseError and is skipped; the
// rest of the input is still parsed.
func Parse(tokens []Token) (*Program, []ParseError) {
	p := newParser(tokens)
	return p.parseProgram(), p.errors
}

// ParseSource tokenizes and parses source in one step
func ParseSource(source string) (*Program, []LexError, []ParseError) {
	tokens, lexErrs := Tokenize(source)
	program, parseErrs := Parse(tokens)
	return program, lexErrs, parseErrs
}

func newParser(tokens []Token) *parser {
	filtered := make([]Token, 0, len(tokens)+1)
	for _, t := range tokens {
		if t.Type == COMMENT || t.Type == NEWLINE {
			continue
		}
		filtered = append(filtered, t)
	}
	if len(filtered) == 0 || filtered[len(filtered)-1].Type != EOF {
		line, column := 1, 1
		if n := len(filtered); n > 0 {
			line, column = filtered[n-1].Line, filtered[n-1].Column
		}
		filtered = append(filtered, Token{Type: EOF, Line: line, Column: column})
	}
	return &parser{tokens: filtered}
}

func (p *parser) current() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() Token {
	t := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) check(types ...TokenType) bool {
	cur := p.current().Type
	for _, t := range types {
		if cur == t {
			return true
		}
	}
	return false
}

func (p *parser) match(types ...TokenType) bool {
	if p.check(types...) {
		p.advance()
		return true
	}
	return false
}

// consume advances past a token of the expected type. On mismatch it records
// an error and returns the current token without advancing.
func (p *parser) consume(expected TokenType, message string) (Token, bool) {
	if p.check(expected) {
		return p.advance(), true
	}
	if message == "" {
		message = fmt.Sprintf("Expected %s, got %s", expected, p.current().Type)
	}
	p.error(message)
	return p.current(), false
}

func (p *parser) error(message string) {
	t := p.current()
	p.errors = append(p.errors, ParseError{Message: message, Line: t.Line, Column: t.Column})
}

// synchronize skips at least one token, then stops at the next command
// keyword or EOF.
func (p *parser) synchronize() {
	p.advance()
	for !p.check(EOF) {
		if IsStatementStart(p.current().Type) {
			return
		}
		p.advance()
	}
}

func (p *parser) parseProgram() *Program {
	program := &Program{Statements: []Statement{}}
	for !p.check(EOF) {
		stmt, ok := p.parseStatement()
		if !ok {
			p.synchronize()
			continue
		}
		program.Statements = append(program.Statements, stmt)
	}
	return program
}

func (p *parser) parseStatement() (Statement, bool) {
	switch p.current().Type {
	case MOVE:
		return p.parseMove()
	case SPAWN:
		return p.parseSpawn()
	case DESTROY:
		return p.parseDestroy()
	case SET:
		return p.parseSet()
	case IF:
		return p.parseIf()
	}
	p.error("Unknown command: " + p.current().Value)
	return nil, false
}

func (p *parser) parseMove() (Statement, bool) {
	p.advance() // move
	target, ok := p.consume(IDENTIFIER, "Expected entity name")
	if !ok {
		return nil, false
	}
	x, ok := p.coordinate("Expected x coordinate")
	if !ok {
		return nil, false
	}
	y, ok := p.coordinate("Expected y coordinate")
	if !ok {
		return nil, false
	}
	return &MoveCommand{Target: target.Value, X: x, Y: y}, true
}

func (p *parser) parseSpawn() (Statement, bool) {
	p.advance() // spawn
	entityType, ok := p.consume(IDENTIFIER, "Expected entity type")
	if !ok {
		return nil, false
	}
	x, ok := p.coordinate("Expected x coordinate")
	if !ok {
		return nil, false
	}
	y, ok := p.coordinate("Expected y coordinate")
	if !ok {
		return nil, false
	}

	name := ""
	if p.check(STRING, IDENTIFIER) {
		name = p.advance().Value
	}
	return &SpawnCommand{EntityType: entityType.Value, X: x, Y: y, Name: name}, true
}

func (p *parser) parseDestroy() (Statement, bool) {
	p.advance() // destroy
	target, ok := p.consume(IDENTIFIER, "Expected entity name")
	if !ok {
		return nil, false
	}
	return &DestroyCommand{Target: target.Value}, true
}

func (p *parser) parseSet() (Statement, bool) {
	p.advance() // set
	target, ok := p.consume(IDENTIFIER, "Expected entity name")
	if !ok {
		return nil, false
	}
	if _, ok := p.consume(DOT, "Expected '.'"); !ok {
		return nil, false
	}
	property, ok := p.consume(IDENTIFIER, "Expected property name")
	if !ok {
		return nil, false
	}

	var value any
	switch {
	case p.check(NUMBER):
		n, ok := p.number(p.advance())
		if !ok {
			return nil, false
		}
		value = n
	case p.check(STRING):
		value = p.advance().Value
	case p.match(TRUE):
		value = true
	case p.match(FALSE):
		value = false
	default:
		ident, ok := p.consume(IDENTIFIER, "")
		if !ok {
			return nil, false
		}
		value = ident.Value
	}
	return &SetCommand{Target: target.Value, Property: property.Value, Value: value}, true
}

func (p *parser) parseIf() (Statement, bool) {
	p.advance() // if
	condition := p.parseExpression()
	if _, ok := p.consume(THEN, "Expected 'then'"); !ok {
		return nil, false
	}
	then, ok := p.parseStatement()
	if !ok {
		return nil, false
	}

	stmt := &IfStatement{Condition: condition, Then: then}
	if p.match(ELSE) {
		otherwise, ok := p.parseStatement()
		if !ok {
			return nil, false
		}
		stmt.Else = otherwise
	}
	return stmt, true
}

// coordinate consumes a NUMBER and returns it as an int. Fractions are
// truncated toward zero.
func (p *parser) coordinate(message string) (int, bool) {
	t, ok := p.consume(NUMBER, message)
	if !ok {
		return 0, false
	}
	n, ok := p.number(t)
	if !ok {
		return 0, false
	}
	switch v := n.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// number converts a NUMBER token: float64 when it has a '.', int otherwise
func (p *parser) number(t Token) (any, bool) {
	if strings.Contains(t.Value, ".") {
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			p.errors = append(p.errors, ParseError{Message: "Invalid number: " + t.Value, Line: t.Line, Column: t.Column})
			return nil, false
		}
		return f, true
	}
	n, err := strconv.Atoi(t.Value)
	if err != nil {
		p.errors = append(p.errors, ParseError{Message: "Invalid number: " + t.Value, Line: t.Line, Column: t.Column})
		return nil, false
	}
	return n, true
}

// Expressions, lowest precedence first

func (p *parser) parseExpression() Expr {
	return p.parseOr()
}

func (p *parser) parseOr() Expr {
	left := p.parseAnd()
	for p.match(OR) {
		right := p.parseAnd()
		left = &BinaryOp{Left: left, Op: "or", Right: right}
	}
	return left
}

func (p *parser) parseAnd() Expr {
	left := p.parseComparison()
	for p.match(AND) {
		right := p.parseComparison()
		left = &BinaryOp{Left: left, Op: "and", Right: right}
	}
	return left
}

func (p *parser) parseComparison() Expr {
	left := p.parsePrimary()
	for p.check(LT, GT, LE, GE, EQ, NE) {
		op := p.advance()
		right := p.parsePrimary()
		left = &BinaryOp{Left: left, Op: op.Value, Right: right}
	}
	return left
}

func (p *parser) parsePrimary() Expr {
	switch {
	case p.check(NUMBER):
		n, ok := p.number(p.advance())
		if !ok {
			return &Identifier{Name: "<error>"}
		}
		return &NumberLiteral{Value: n}

	case p.check(STRING):
		return &StringLiteral{Value: p.advance().Value}

	case p.match(TRUE):
		return &BoolLiteral{Value: true}

	case p.match(FALSE):
		return &BoolLiteral{Value: false}

	case p.check(IDENTIFIER):
		name := p.advance().Value
		if p.match(DOT) {
			prop, _ := p.consume(IDENTIFIER, "Expected property name")
			return &PropertyAccess{Object: name, Property: prop.Value}
		}
		return &Identifier{Name: name}

	case p.match(LPAREN):
		expr := p.parseExpression()
		p.consume(RPAREN, "Expected ')'")
		return expr

	case p.match(NOT):
		return &UnaryOp{Op: "not", Operand: p.parsePrimary()}
	}

	p.error(fmt.Sprintf("Unexpected token: %s", p.current().Type))
	return &Identifier{Name: "<error>"}
}
