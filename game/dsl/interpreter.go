package dsl

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// DestroyScore is awarded for every entity removed by destroy
const DestroyScore = 10

// RuntimeError is a problem found while executing a statement. The
// statement that caused it leaves the state unchanged.
type RuntimeError struct {
	Message string `json:"message"`
	Node    Node   `json:"-"`
}

func (e RuntimeError) Error() string {
	return e.Message
}

// ExecutionResult is the outcome of one Execute call
type ExecutionResult struct {
	State  world.State    `json:"state"`
	Errors []RuntimeError `json:"errors"`
	Logs   []string       `json:"logs"`
}

// HasErrors reports whether any statement failed
func (r ExecutionResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ErrorMessages returns the error messages in order
func (r ExecutionResult) ErrorMessages() []string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return msgs
}

// Option configures an Interpreter
type Option func(*Interpreter)

// WithLogHook calls fn with every log line as it is produced
func WithLogHook(fn func(string)) Option {
	return func(in *Interpreter) {
		in.onLog = fn
	}
}

// Interpreter executes programs against a world.State. It keeps the errors
// and logs of the current Execute call only, so a single Interpreter must not
// be shared between goroutines.
type Interpreter struct {
	onLog  func(string)
	errors []RuntimeError
	logs   []string
}

// NewInterpreter creates an interpreter
func NewInterpreter(opts ...Option) *Interpreter {
	in := &Interpreter{}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Execute runs every statement in order, threading the state through them.
// A failing statement is reported and skipped; execution continues.
func (in *Interpreter) Execute(program *Program, state world.State) ExecutionResult {
	in.errors = []RuntimeError{}
	in.logs = []string{}

	current := state
	if program != nil {
		for _, stmt := range program.Statements {
			current = in.ExecuteStatement(stmt, current)
		}
	}

	return ExecutionResult{
		State:  current,
		Errors: in.errors,
		Logs:   in.logs,
	}
}

func (in *Interpreter) log(message string) {
	in.logs = append(in.logs, message)
	if in.onLog != nil {
		in.onLog(message)
	}
}

func (in *Interpreter) errorf(node Node, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	in.errors = append(in.errors, RuntimeError{Message: msg, Node: node})
	in.log("Error: " + msg)
}

// Evaluate computes the value of expr against state
func (in *Interpreter) Evaluate(expr Expr, state world.State) any {
	switch e := expr.(type) {
	case *NumberLiteral:
		return e.Value
	case *StringLiteral:
		return e.Value
	case *BoolLiteral:
		return e.Value
	case *Identifier:
		entity, ok := in.resolveIdentifier(e.Name, state, e)
		if !ok {
			return nil
		}
		return entity
	case *PropertyAccess:
		return in.resolveProperty(e, state)
	case *BinaryOp:
		left := in.Evaluate(e.Left, state)
		right := in.Evaluate(e.Right, state)
		return in.applyBinary(e, left, right)
	case *UnaryOp:
		operand := in.Evaluate(e.Operand, state)
		return in.applyUnary(e, operand)
	}
	in.errorf(expr, "Unknown expression type: %T", expr)
	return nil
}

func (in *Interpreter) resolveIdentifier(name string, state world.State, node Node) (world.Entity, bool) {
	if name == "player" {
		return state.Player, true
	}
	if entity, _, ok := state.FindEntity(name); ok {
		return entity, true
	}
	in.errorf(node, "Unknown identifier: %s", name)
	return world.Entity{}, false
}

func (in *Interpreter) resolveProperty(e *PropertyAccess, state world.State) any {
	entity, ok := in.resolveIdentifier(e.Object, state, e)
	if !ok {
		return nil
	}

	switch e.Property {
	case "x":
		return entity.Pos.X
	case "y":
		return entity.Pos.Y
	case "hp":
		return entity.HP
	case "name":
		return entity.Name
	case "id":
		return entity.ID
	case "is_active":
		return entity.Active
	}
	in.errorf(e, "Unknown property: %s.%s", e.Object, e.Property)
	return nil
}

func (in *Interpreter) applyBinary(e *BinaryOp, left, right any) any {
	switch e.Op {
	case "<", ">", "<=", ">=":
		cmp, ok := compareValues(left, right)
		if !ok {
			in.unsupported(e, left, right)
			return nil
		}
		switch e.Op {
		case "<":
			return cmp < 0
		case ">":
			return cmp > 0
		case "<=":
			return cmp <= 0
		}
		return cmp >= 0

	case "==", "=":
		return valuesEqual(left, right)
	case "!=":
		return !valuesEqual(left, right)

	// Both operands are already evaluated: and/or never short-circuit
	case "and":
		if !Truthy(left) {
			return left
		}
		return right
	case "or":
		if Truthy(left) {
			return left
		}
		return right

	case "+", "-", "*", "/":
		result, ok := arithmetic(e.Op, left, right)
		if !ok {
			in.unsupported(e, left, right)
			return nil
		}
		return result
	}

	in.errorf(e, "Unknown operator: %s", e.Op)
	return nil
}

func (in *Interpreter) unsupported(e *BinaryOp, left, right any) {
	in.errorf(e, "Unsupported operand types for %s: %s and %s", e.Op, TypeName(left), TypeName(right))
}

func (in *Interpreter) applyUnary(e *UnaryOp, operand any) any {
	switch e.Op {
	case "not":
		return !Truthy(operand)
	case "-":
		switch v := operand.(type) {
		case int:
			return -v
		case float64:
			return -v
		}
		in.errorf(e, "Unsupported operand type for -: %s", TypeName(operand))
		return nil
	}
	in.errorf(e, "Unknown unary operator: %s", e.Op)
	return nil
}

// ExecuteStatement runs a single statement and returns the new state
func (in *Interpreter) ExecuteStatement(stmt Statement, state world.State) world.State {
	switch s := stmt.(type) {
	case *MoveCommand:
		return in.executeMove(s, state)
	case *SpawnCommand:
		return in.executeSpawn(s, state)
	case *DestroyCommand:
		return in.executeDestroy(s, state)
	case *SetCommand:
		return in.executeSet(s, state)
	case *IfStatement:
		return in.executeIf(s, state)
	}
	in.errorf(stmt, "Unknown command type: %T", stmt)
	return state
}

// executeMove places the target at the given cell, clamped to the map
func (in *Interpreter) executeMove(cmd *MoveCommand, state world.State) world.State {
	in.log(fmt.Sprintf("Moving %s to (%d, %d)", cmd.Target, cmd.X, cmd.Y))

	if cmd.Target == "player" {
		next := state.PlacePlayer(cmd.X, cmd.Y)
		pos := next.Player.Pos
		return next.AddLog(fmt.Sprintf("Moved to (%d, %d)", pos.X, pos.Y))
	}

	next := state
	moved := false
	for i, e := range state.Entities {
		if e.Matches(cmd.Target) {
			next = next.PlaceEntity(i, cmd.X, cmd.Y)
			moved = true
		}
	}
	if !moved {
		in.errorf(cmd, "Entity not found: %s", cmd.Target)
		return state
	}
	return next
}

func (in *Interpreter) executeSpawn(cmd *SpawnCommand, state world.State) world.State {
	id := fmt.Sprintf("%s_%d", cmd.EntityType, len(state.Entities))
	name := cmd.Name
	if name == "" {
		name = cmd.EntityType
	}

	in.log(fmt.Sprintf("Spawned %s at (%d, %d)", name, cmd.X, cmd.Y))

	entity := world.NewEntity(id, name, world.Pos(cmd.X, cmd.Y))
	return state.AddEntity(entity).AddLog("Spawned " + name)
}

func (in *Interpreter) executeDestroy(cmd *DestroyCommand, state world.State) world.State {
	in.log("Destroying " + cmd.Target)

	kept := make([]world.Entity, 0, len(state.Entities))
	for _, e := range state.Entities {
		if !e.Matches(cmd.Target) {
			kept = append(kept, e)
		}
	}

	destroyed := len(state.Entities) - len(kept)
	if destroyed == 0 {
		in.errorf(cmd, "Entity not found: %s", cmd.Target)
		return state
	}

	return state.
		WithEntities(kept).
		AddScore(destroyed * DestroyScore).
		AddLog("Destroyed " + cmd.Target)
}

func (in *Interpreter) executeSet(cmd *SetCommand, state world.State) world.State {
	in.log(fmt.Sprintf("Setting %s.%s = %s", cmd.Target, cmd.Property, FormatValue(cmd.Value)))

	if cmd.Target == "player" {
		player, ok := in.setProperty(cmd, state, state.Player)
		if !ok {
			return state
		}
		return state.WithPlayer(player)
	}

	entities := make([]world.Entity, len(state.Entities))
	copy(entities, state.Entities)
	updated := false
	for i, e := range entities {
		if !e.Matches(cmd.Target) {
			continue
		}
		next, ok := in.setProperty(cmd, state, e)
		if !ok {
			// The property itself is wrong; every other match would fail the same way
			return state
		}
		entities[i] = next
		updated = true
	}
	if !updated {
		in.errorf(cmd, "Entity not found: %s", cmd.Target)
		return state
	}
	return state.WithEntities(entities)
}

func (in *Interpreter) setProperty(cmd *SetCommand, state world.State, e world.Entity) (world.Entity, bool) {
	switch cmd.Property {
	case "hp":
		hp, err := toInt(cmd.Value)
		if err != nil {
			in.errorf(cmd, "Invalid value for hp: %s", FormatValue(cmd.Value))
			return e, false
		}
		return e.WithHP(hp), true

	case "x", "y":
		n, err := toInt(cmd.Value)
		if err != nil {
			in.errorf(cmd, "Invalid value for %s: %s", cmd.Property, FormatValue(cmd.Value))
			return e, false
		}
		pos := world.Pos(n, e.Pos.Y)
		if cmd.Property == "y" {
			pos = world.Pos(e.Pos.X, n)
		}
		pos = state.Clamp(pos)
		return e.MoveTo(pos.X, pos.Y), true

	case "is_active":
		active, err := cast.ToBoolE(cmd.Value)
		if err != nil {
			in.errorf(cmd, "Invalid value for is_active: %s", FormatValue(cmd.Value))
			return e, false
		}
		return e.WithActive(active), true
	}

	in.errorf(cmd, "Cannot set property: %s", cmd.Property)
	return e, false
}

func (in *Interpreter) executeIf(stmt *IfStatement, state world.State) world.State {
	result := in.Evaluate(stmt.Condition, state)
	in.log("Condition evaluated to: " + FormatValue(result))

	if Truthy(result) {
		return in.ExecuteStatement(stmt.Then, state)
	}
	if stmt.Else != nil {
		return in.ExecuteStatement(stmt.Else, state)
	}
	return state
}
