package dsl

import (
	"fmt"
	"strings"
)

// Node is any element of a parsed program
type Node interface {
	fmt.Stringer
	node()
}

// Statement is a top-level command or an if statement
type Statement interface {
	Node
	stmtNode()
}

// Expr is an expression evaluated against a world state
type Expr interface {
	Node
	exprNode()
}

// Program is an ordered list of statements
type Program struct {
	Statements []Statement
}

func (p *Program) String() string {
	parts := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		parts[i] = s.String()
	}
	return strings.Join(parts, "\n")
}

// Statements

// MoveCommand: move <target> <x> <y>
type MoveCommand struct {
	Target string
	X, Y   int
}

// SpawnCommand: spawn <type> <x> <y> [<name>]
type SpawnCommand struct {
	EntityType string
	X, Y       int
	Name       string
}

// DestroyCommand: destroy <target>
type DestroyCommand struct {
	Target string
}

// SetCommand: set <target>.<property> <value>. Value holds an int,
// float64, string or bool.
type SetCommand struct {
	Target   string
	Property string
	Value    any
}

// IfStatement: if <condition> then <stmt> [else <stmt>]. Else is nil when absent.
type IfStatement struct {
	Condition Expr
	Then      Statement
	Else      Statement
}

// Expressions

// NumberLiteral holds an int or a float64
type NumberLiteral struct {
	Value any
}

type StringLiteral struct {
	Value string
}

type BoolLiteral struct {
	Value bool
}

type Identifier struct {
	Name string
}

// PropertyAccess: <object>.<property>
type PropertyAccess struct {
	Object   string
	Property string
}

type BinaryOp struct {
	Left  Expr
	Op    string
	Right Expr
}

type UnaryOp struct {
	Op      string
	Operand Expr
}

func (*MoveCommand) node()    {}
func (*SpawnCommand) node()   {}
func (*DestroyCommand) node() {}
func (*SetCommand) node()     {}
func (*IfStatement) node()    {}
func (*NumberLiteral) node()  {}
func (*StringLiteral) node()  {}
func (*BoolLiteral) node()    {}
func (*Identifier) node()     {}
func (*PropertyAccess) node() {}
func (*BinaryOp) node()       {}
func (*UnaryOp) node()        {}

func (*MoveCommand) stmtNode()    {}
func (*SpawnCommand) stmtNode()   {}
func (*DestroyCommand) stmtNode() {}
func (*SetCommand) stmtNode()     {}
func (*IfStatement) stmtNode()    {}

func (*NumberLiteral) exprNode()  {}
func (*StringLiteral) exprNode()  {}
func (*BoolLiteral) exprNode()    {}
func (*Identifier) exprNode()     {}
func (*PropertyAccess) exprNode() {}
func (*BinaryOp) exprNode()       {}
func (*UnaryOp) exprNode()        {}

func (c *MoveCommand) String() string {
	return fmt.Sprintf("move %s %d %d", c.Target, c.X, c.Y)
}

func (c *SpawnCommand) String() string {
	if c.Name != "" {
		return fmt.Sprintf("spawn %s %d %d %q", c.EntityType, c.X, c.Y, c.Name)
	}
	return fmt.Sprintf("spawn %s %d %d", c.EntityType, c.X, c.Y)
}

func (c *DestroyCommand) String() string {
	return "destroy " + c.Target
}

func (c *SetCommand) String() string {
	value := FormatValue(c.Value)
	if s, ok := c.Value.(string); ok {
		value = fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("set %s.%s %s", c.Target, c.Property, value)
}

func (s *IfStatement) String() string {
	out := fmt.Sprintf("if %s then %s", s.Condition, s.Then)
	if s.Else != nil {
		out += " else " + s.Else.String()
	}
	return out
}

func (e *NumberLiteral) String() string  { return FormatValue(e.Value) }
func (e *StringLiteral) String() string  { return fmt.Sprintf("%q", e.Value) }
func (e *BoolLiteral) String() string    { return FormatValue(e.Value) }
func (e *Identifier) String() string     { return e.Name }
func (e *PropertyAccess) String() string { return e.Object + "." + e.Property }

func (e *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

func (e *UnaryOp) String() string {
	if e.Op == "not" {
		return fmt.Sprintf("(not %s)", e.Operand)
	}
	return fmt.Sprintf("(%s%s)", e.Op, e.Operand)
}
