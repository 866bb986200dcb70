package dsl

import (
	"fmt"
	"strings"
	"unicode"
)

// LexError records a character the lexer could not use. Lexing continues
// after every error.
type LexError struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Char    string `json:"char"`
}

func (e LexError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

type lexer struct {
	src    []rune
	pos    int
	line   int
	column int
	tokens []Token
	errors []LexError
}

// Tokenize splits source into tokens. It never fails: problems are returned
// as LexErrors and the token list always ends with EOF.
func Tokenize(source string) ([]Token, []LexError) {
	l := &lexer{
		src:    []rune(source),
		line:   1,
		column: 1,
	}
	l.run()
	return l.tokens, l.errors
}

func (l *lexer) run() {
	for !l.atEnd() {
		l.skipWhitespace()
		if l.atEnd() {
			break
		}

		c := l.current()
		switch {
		case c == '\n':
			l.emit(NEWLINE, `\n`, l.line, l.column)
			l.advance()
		case c == '#':
			l.readComment()
		case unicode.IsDigit(c):
			l.readNumber()
		case c == '"' || c == '\'':
			l.readString()
		case unicode.IsLetter(c) || c == '_':
			l.readIdentifier()
		default:
			if !l.readOperator() {
				l.errorf("Unknown character: '%c'", c)
				l.advance()
			}
		}
	}
	l.emit(EOF, "", l.line, l.column)
}

func (l *lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *lexer) current() rune {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peek() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func (l *lexer) advance() rune {
	c := l.current()
	l.pos++
	if c == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return c
}

func (l *lexer) emit(t TokenType, value string, line, column int) {
	l.tokens = append(l.tokens, Token{Type: t, Value: value, Line: line, Column: column})
}

func (l *lexer) errorf(format string, args ...any) {
	char := ""
	if !l.atEnd() {
		char = string(l.current())
	}
	l.errors = append(l.errors, LexError{
		Message: fmt.Sprintf(format, args...),
		Line:    l.line,
		Column:  l.column,
		Char:    char,
	})
}

func (l *lexer) skipWhitespace() {
	for !l.atEnd() {
		switch l.current() {
		case ' ', '\t', '\r':
			l.advance()
		default:
			return
		}
	}
}

func (l *lexer) readComment() {
	line, column := l.line, l.column
	l.advance() // '#'

	var sb strings.Builder
	for !l.atEnd() && l.current() != '\n' {
		sb.WriteRune(l.advance())
	}
	l.emit(COMMENT, strings.TrimSpace(sb.String()), line, column)
}

func (l *lexer) readNumber() {
	line, column := l.line, l.column

	var sb strings.Builder
	for !l.atEnd() && unicode.IsDigit(l.current()) {
		sb.WriteRune(l.advance())
	}
	// A dot only belongs to the number when a digit follows it
	if l.current() == '.' && unicode.IsDigit(l.peek()) {
		sb.WriteRune(l.advance())
		for !l.atEnd() && unicode.IsDigit(l.current()) {
			sb.WriteRune(l.advance())
		}
	}
	l.emit(NUMBER, sb.String(), line, column)
}

func (l *lexer) readString() {
	line, column := l.line, l.column
	quote := l.advance()

	var sb strings.Builder
	for !l.atEnd() && l.current() != quote {
		if l.current() == '\n' {
			l.errorf("Unterminated string at line %d", line)
			break
		}
		sb.WriteRune(l.advance())
	}
	if !l.atEnd() && l.current() == quote {
		l.advance()
	}
	l.emit(STRING, sb.String(), line, column)
}

func (l *lexer) readIdentifier() {
	line, column := l.line, l.column

	var sb strings.Builder
	for !l.atEnd() {
		c := l.current()
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			break
		}
		sb.WriteRune(l.advance())
	}

	value := sb.String()
	t, ok := KeywordType(value)
	if !ok {
		t = IDENTIFIER
	}
	l.emit(t, value, line, column)
}

func (l *lexer) readOperator() bool {
	line, column := l.line, l.column
	c := l.current()

	if next := l.peek(); next != 0 {
		two := string([]rune{c, next})
		if t, ok := twoCharOps[two]; ok {
			l.advance()
			l.advance()
			l.emit(t, two, line, column)
			return true
		}
	}

	if c > unicode.MaxASCII {
		return false
	}
	if t, ok := oneCharOps[byte(c)]; ok {
		l.advance()
		l.emit(t, string(c), line, column)
		return true
	}
	return false
}
