package dsl

import "github.com/wricardo/mcp-training/dslgame/game/world"

// RunResult is the outcome of Run. When lexing or parsing reported
// problems the well-formed statements still executed.
type RunResult struct {
	ExecutionResult
	LexErrors   []LexError   `json:"lex_errors"`
	ParseErrors []ParseError `json:"parse_errors"`
}

// OK reports whether the source ran without any diagnostic
func (r RunResult) OK() bool {
	return len(r.LexErrors) == 0 && len(r.ParseErrors) == 0 && len(r.Errors) == 0
}

// Run tokenizes, parses and executes source against state
func Run(source string, state world.State, opts ...Option) RunResult {
	program, lexErrs, parseErrs := ParseSource(source)
	result := NewInterpreter(opts...).Execute(program, state)
	return RunResult{
		ExecutionResult: result,
		LexErrors:       lexErrs,
		ParseErrors:     parseErrs,
	}
}
