package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, t := range tokens {
		types[i] = t.Type
	}
	return types
}

func TestTokenizeMoveCommand(t *testing.T) {
	tokens, errs := Tokenize("move player 10 5")
	require.Empty(t, errs)

	assert.Equal(t, []TokenType{MOVE, IDENTIFIER, NUMBER, NUMBER, EOF}, tokenTypes(tokens))
	assert.Equal(t, "player", tokens[1].Value)
	assert.Equal(t, "10", tokens[2].Value)
	assert.Equal(t, "5", tokens[3].Value)
}

func TestTokenizePositions(t *testing.T) {
	tokens, errs := Tokenize("move player 1 2\n  destroy goblin")
	require.Empty(t, errs)

	expected := []struct {
		typ          TokenType
		line, column int
	}{
		{MOVE, 1, 1},
		{IDENTIFIER, 1, 6},
		{NUMBER, 1, 13},
		{NUMBER, 1, 15},
		{NEWLINE, 1, 16},
		{DESTROY, 2, 3},
		{IDENTIFIER, 2, 11},
		{EOF, 2, 17},
	}
	require.Len(t, tokens, len(expected))
	for i, e := range expected {
		assert.Equal(t, e.typ, tokens[i].Type, "token %d", i)
		assert.Equal(t, e.line, tokens[i].Line, "line of token %d", i)
		assert.Equal(t, e.column, tokens[i].Column, "column of token %d", i)
	}
	assert.Equal(t, `\n`, tokens[4].Value)
}

func TestTokenizeKeywordsIgnoreCase(t *testing.T) {
	tokens, errs := Tokenize("MOVE If tHeN True")
	require.Empty(t, errs)

	assert.Equal(t, []TokenType{MOVE, IF, THEN, TRUE, EOF}, tokenTypes(tokens))
	assert.Equal(t, "MOVE", tokens[0].Value, "original spelling is kept")
}

func TestTokenizeNumbers(t *testing.T) {
	for _, tc := range []struct {
		name     string
		input    string
		expected []string
		types    []TokenType
	}{
		{"integer", "42", []string{"42", ""}, []TokenType{NUMBER, EOF}},
		{"float", "3.14", []string{"3.14", ""}, []TokenType{NUMBER, EOF}},
		{"trailing dot", "3.", []string{"3", ".", ""}, []TokenType{NUMBER, DOT, EOF}},
		{"property after number", "1.x", []string{"1", ".", "x", ""}, []TokenType{NUMBER, DOT, IDENTIFIER, EOF}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tokens, errs := Tokenize(tc.input)
			require.Empty(t, errs)
			assert.Equal(t, tc.types, tokenTypes(tokens))
			for i, v := range tc.expected {
				assert.Equal(t, v, tokens[i].Value)
			}
		})
	}
}

func TestTokenizeStrings(t *testing.T) {
	tokens, errs := Tokenize(`spawn enemy 1 1 "Big Orc" 'x'`)
	require.Empty(t, errs)

	assert.Equal(t, []TokenType{SPAWN, IDENTIFIER, NUMBER, NUMBER, STRING, STRING, EOF}, tokenTypes(tokens))
	assert.Equal(t, "Big Orc", tokens[4].Value)
	assert.Equal(t, "x", tokens[5].Value)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	tokens, errs := Tokenize("\"abc\nmove")

	require.Len(t, errs, 1)
	assert.Equal(t, "Unterminated string at line 1", errs[0].Message)
	assert.Equal(t, []TokenType{STRING, NEWLINE, MOVE, EOF}, tokenTypes(tokens))
	assert.Equal(t, "abc", tokens[0].Value)
}

func TestTokenizeStringAtEOF(t *testing.T) {
	tokens, errs := Tokenize(`"abc`)

	assert.Empty(t, errs)
	assert.Equal(t, []TokenType{STRING, EOF}, tokenTypes(tokens))
	assert.Equal(t, "abc", tokens[0].Value)
}

func TestTokenizeComment(t *testing.T) {
	tokens, errs := Tokenize("move player 1 1 #  go right  \ndestroy x")
	require.Empty(t, errs)

	assert.Equal(t, []TokenType{MOVE, IDENTIFIER, NUMBER, NUMBER, COMMENT, NEWLINE, DESTROY, IDENTIFIER, EOF}, tokenTypes(tokens))
	assert.Equal(t, "go right", tokens[4].Value)
}

func TestTokenizeOperators(t *testing.T) {
	tokens, errs := Tokenize("<= >= == != < > = ( ) [ ] { } , : . + - * /")
	require.Empty(t, errs)

	assert.Equal(t, []TokenType{
		LE, GE, EQ, NE, LT, GT, EQUALS,
		LPAREN, RPAREN, LBRACKET, RBRACKET, LBRACE, RBRACE,
		COMMA, COLON, DOT, PLUS, MINUS, STAR, SLASH, EOF,
	}, tokenTypes(tokens))
}

func TestTokenizeUnknownCharacter(t *testing.T) {
	tokens, errs := Tokenize("move @ player")

	require.Len(t, errs, 1)
	assert.Equal(t, "Unknown character: '@'", errs[0].Message)
	assert.Equal(t, 1, errs[0].Line)
	assert.Equal(t, 6, errs[0].Column)
	assert.Equal(t, "@", errs[0].Char)
	assert.Equal(t, []TokenType{MOVE, IDENTIFIER, EOF}, tokenTypes(tokens))
}

func TestTokenizeAlwaysEndsWithEOF(t *testing.T) {
	for _, input := range []string{
		"",
		"   ",
		"\n\n",
		"@@@ $$$ ~~~",
		"move player",
		"\"open",
		"if (((",
		"é ü 1.2.3",
	} {
		tokens, _ := Tokenize(input)
		require.NotEmpty(t, tokens, "input %q", input)
		assert.Equal(t, EOF, tokens[len(tokens)-1].Type, "input %q", input)
		for _, tok := range tokens[:len(tokens)-1] {
			assert.NotEqual(t, EOF, tok.Type, "only the last token is EOF for %q", input)
		}
	}
}

func TestKeywordType(t *testing.T) {
	typ, ok := KeywordType("Spawn")
	assert.True(t, ok)
	assert.Equal(t, SPAWN, typ)

	_, ok = KeywordType("goblin")
	assert.False(t, ok)
}

func TestTokenString(t *testing.T) {
	assert.Equal(t, `Token(IDENTIFIER, "player")`, Token{Type: IDENTIFIER, Value: "player"}.String())
	assert.Equal(t, "Token(EOF)", Token{Type: EOF}.String())
}
