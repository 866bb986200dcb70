package dsl

import (
	"fmt"
	"strings"
)

// TokenType identifies the lexical class of a token
type TokenType string

const (
	// Keywords
	MOVE    TokenType = "MOVE"
	SPAWN   TokenType = "SPAWN"
	DESTROY TokenType = "DESTROY"
	SET     TokenType = "SET"
	IF      TokenType = "IF"
	THEN    TokenType = "THEN"
	ELSE    TokenType = "ELSE"
	AND     TokenType = "AND"
	OR      TokenType = "OR"
	NOT     TokenType = "NOT"
	TRUE    TokenType = "TRUE"
	FALSE   TokenType = "FALSE"

	// Literals
	NUMBER     TokenType = "NUMBER"
	STRING     TokenType = "STRING"
	IDENTIFIER TokenType = "IDENTIFIER"

	// Punctuation and operators
	LPAREN   TokenType = "LPAREN"
	RPAREN   TokenType = "RPAREN"
	LBRACKET TokenType = "LBRACKET"
	RBRACKET TokenType = "RBRACKET"
	LBRACE   TokenType = "LBRACE"
	RBRACE   TokenType = "RBRACE"
	COMMA    TokenType = "COMMA"
	COLON    TokenType = "COLON"
	DOT      TokenType = "DOT"
	EQUALS   TokenType = "EQUALS"
	PLUS     TokenType = "PLUS"
	MINUS    TokenType = "MINUS"
	STAR     TokenType = "STAR"
	SLASH    TokenType = "SLASH"
	LT       TokenType = "LT"
	GT       TokenType = "GT"
	LE       TokenType = "LE"
	GE       TokenType = "GE"
	EQ       TokenType = "EQ"
	NE       TokenType = "NE"

	// Structure
	EOF     TokenType = "EOF"
	NEWLINE TokenType = "NEWLINE"
	COMMENT TokenType = "COMMENT"
)

var keywords = map[string]TokenType{
	"move":    MOVE,
	"spawn":   SPAWN,
	"destroy": DESTROY,
	"set":     SET,
	"if":      IF,
	"then":    THEN,
	"else":    ELSE,
	"and":     AND,
	"or":      OR,
	"not":     NOT,
	"true":    TRUE,
	"false":   FALSE,
}

var twoCharOps = map[string]TokenType{
	"<=": LE,
	">=": GE,
	"==": EQ,
	"!=": NE,
}

var oneCharOps = map[byte]TokenType{
	'(': LPAREN,
	')': RPAREN,
	'[': LBRACKET,
	']': RBRACKET,
	'{': LBRACE,
	'}': RBRACE,
	',': COMMA,
	':': COLON,
	'.': DOT,
	'=': EQUALS,
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'/': SLASH,
	'<': LT,
	'>': GT,
}

// KeywordType looks word up in the keyword table, ignoring case
func KeywordType(word string) (TokenType, bool) {
	t, ok := keywords[strings.ToLower(word)]
	return t, ok
}

// IsStatementStart reports whether t begins a command
func IsStatementStart(t TokenType) bool {
	switch t {
	case MOVE, SPAWN, DESTROY, SET, IF:
		return true
	}
	return false
}

// Token is a lexeme with the 1-based position of its first character
type Token struct {
	Type   TokenType `json:"type"`
	Value  string    `json:"value"`
	Line   int       `json:"line"`
	Column int       `json:"column"`
}

func (t Token) String() string {
	switch t.Type {
	case NUMBER, STRING, IDENTIFIER:
		return fmt.Sprintf("Token(%s, %q)", t.Type, t.Value)
	}
	return fmt.Sprintf("Token(%s)", t.Type)
}
