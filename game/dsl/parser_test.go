package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, source string) *Program {
	t.Helper()
	program, lexErrs, parseErrs := ParseSource(source)
	require.Empty(t, lexErrs)
	require.Empty(t, parseErrs)
	return program
}

func TestParseCommands(t *testing.T) {
	for _, tc := range []struct {
		name     string
		source   string
		expected Statement
	}{
		{"move", "move player 3 4", &MoveCommand{Target: "player", X: 3, Y: 4}},
		{"move float truncates", "move goblin 2.9 7.1", &MoveCommand{Target: "goblin", X: 2, Y: 7}},
		{"spawn", "spawn enemy 1 2", &SpawnCommand{EntityType: "enemy", X: 1, Y: 2}},
		{"spawn with string name", `spawn enemy 1 2 "Orc"`, &SpawnCommand{EntityType: "enemy", X: 1, Y: 2, Name: "Orc"}},
		{"spawn with identifier name", "spawn item 0 0 potion", &SpawnCommand{EntityType: "item", X: 0, Y: 0, Name: "potion"}},
		{"destroy", "destroy goblin", &DestroyCommand{Target: "goblin"}},
		{"set int", "set player.hp 50", &SetCommand{Target: "player", Property: "hp", Value: 50}},
		{"set float", "set player.hp 2.5", &SetCommand{Target: "player", Property: "hp", Value: 2.5}},
		{"set string", `set orc.name "Bob"`, &SetCommand{Target: "orc", Property: "name", Value: "Bob"}},
		{"set true", "set orc.is_active true", &SetCommand{Target: "orc", Property: "is_active", Value: true}},
		{"set false", "set orc.is_active false", &SetCommand{Target: "orc", Property: "is_active", Value: false}},
		{"set identifier", "set orc.name bob", &SetCommand{Target: "orc", Property: "name", Value: "bob"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			program := mustParse(t, tc.source)
			require.Len(t, program.Statements, 1)
			assert.Equal(t, tc.expected, program.Statements[0])
		})
	}
}

func TestParseIf(t *testing.T) {
	program := mustParse(t, "if player.hp < 50 then set player.hp 100 else destroy goblin")
	require.Len(t, program.Statements, 1)

	stmt, ok := program.Statements[0].(*IfStatement)
	require.True(t, ok)
	assert.Equal(t, &BinaryOp{
		Left:  &PropertyAccess{Object: "player", Property: "hp"},
		Op:    "<",
		Right: &NumberLiteral{Value: 50},
	}, stmt.Condition)
	assert.Equal(t, &SetCommand{Target: "player", Property: "hp", Value: 100}, stmt.Then)
	assert.Equal(t, &DestroyCommand{Target: "goblin"}, stmt.Else)
}

func TestParseIfWithoutElse(t *testing.T) {
	program := mustParse(t, "if true then move player 1 1")
	stmt := program.Statements[0].(*IfStatement)
	assert.Nil(t, stmt.Else)
}

func TestParseExpressionPrecedence(t *testing.T) {
	for _, tc := range []struct {
		source   string
		expected string
	}{
		{"if a or b and c then destroy x", "(a or (b and c))"},
		{"if a and b or c then destroy x", "((a and b) or c)"},
		{"if a < 1 and b > 2 then destroy x", "((a < 1) and (b > 2))"},
		{"if 1 < 2 < 3 then destroy x", "((1 < 2) < 3)"},
		{"if not a and b then destroy x", "((not a) and b)"},
		{"if (a or b) and c then destroy x", "((a or b) and c)"},
		{`if player.name == "Hero" then destroy x`, `(player.name == "Hero")`},
		{"if x.hp != 0.5 then destroy x", "(x.hp != 0.5)"},
	} {
		t.Run(tc.source, func(t *testing.T) {
			program := mustParse(t, tc.source)
			stmt := program.Statements[0].(*IfStatement)
			assert.Equal(t, tc.expected, stmt.Condition.String())
		})
	}
}

func TestParseMultipleStatements(t *testing.T) {
	source := `
# set the stage
spawn enemy 3 3 goblin
move goblin 4 4   # closer

destroy goblin
`
	program := mustParse(t, source)
	require.Len(t, program.Statements, 3)
	assert.IsType(t, &SpawnCommand{}, program.Statements[0])
	assert.IsType(t, &MoveCommand{}, program.Statements[1])
	assert.IsType(t, &DestroyCommand{}, program.Statements[2])
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name    string
		source  string
		message string
		line    int
		column  int
		parsed  int
	}{
		{"missing target", "move 1 2", "Expected entity name", 1, 6, 0},
		{"missing x", "move player", "Expected x coordinate", 1, 12, 0},
		{"missing y", "move player 1", "Expected y coordinate", 1, 14, 0},
		{"missing type", "spawn 1 1", "Expected entity type", 1, 7, 0},
		{"missing dot", "set player hp 5", "Expected '.'", 1, 12, 0},
		{"missing property", "set player. 5", "Expected property name", 1, 13, 0},
		{"missing value", "set player.hp", "Expected IDENTIFIER, got EOF", 1, 14, 0},
		{"missing then", "if true move player 1 1", "Expected 'then'", 1, 9, 0},
		{"unknown command", "jump 3", "Unknown command: jump", 1, 1, 0},
		{"recovers at next command", "move player\nfoo\ndestroy goblin", "Expected x coordinate", 2, 1, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			program, _, errs := ParseSource(tc.source)
			require.Len(t, errs, 1)
			assert.Equal(t, tc.message, errs[0].Message)
			assert.Equal(t, tc.line, errs[0].Line)
			assert.Equal(t, tc.column, errs[0].Column)
			assert.Len(t, program.Statements, tc.parsed)
		})
	}
}

func TestParseUnexpectedTokenKeepsStatement(t *testing.T) {
	program, _, errs := ParseSource("if then destroy x")

	require.Len(t, errs, 1)
	assert.Equal(t, "Unexpected token: THEN", errs[0].Message)
	require.Len(t, program.Statements, 1)
	stmt := program.Statements[0].(*IfStatement)
	assert.Equal(t, &Identifier{Name: "<error>"}, stmt.Condition)
}

func TestParseOneDiagnosticPerBadStatement(t *testing.T) {
	source := "move 1\nspawn 2\ndestroy 3\nset 4\nmove player 1 1"
	program, _, errs := ParseSource(source)

	assert.Len(t, errs, 4)
	require.Len(t, program.Statements, 1)
	assert.Equal(t, &MoveCommand{Target: "player", X: 1, Y: 1}, program.Statements[0])
}

func TestParseTerminatesOnGarbage(t *testing.T) {
	for _, source := range []string{
		"",
		")))",
		"if if if if",
		"then else then",
		"set . . . .",
		"move move move",
		"1 2 3 \"x\" true",
		"if ( then",
		"if not not not",
	} {
		t.Run(source, func(t *testing.T) {
			program, _, _ := ParseSource(source)
			assert.NotNil(t, program)
		})
	}
}

func TestParseWithoutEOF(t *testing.T) {
	tokens := []Token{
		{Type: DESTROY, Value: "destroy", Line: 1, Column: 1},
		{Type: IDENTIFIER, Value: "goblin", Line: 1, Column: 9},
	}
	program, errs := Parse(tokens)
	require.Empty(t, errs)
	assert.Equal(t, []Statement{&DestroyCommand{Target: "goblin"}}, program.Statements)
}

func TestProgramString(t *testing.T) {
	program := mustParse(t, `spawn enemy 1 2 "Orc"
set orc.name "Bob"
if not orc.is_active then destroy orc`)

	assert.Equal(t, `spawn enemy 1 2 "Orc"
set orc.name "Bob"
if (not orc.is_active) then destroy orc`, program.String())
}
