package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wricardo/mcp-training/dslgame/game/dsl"
	"github.com/wricardo/mcp-training/dslgame/game/engine"
	"github.com/wricardo/mcp-training/dslgame/game/service"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

const replHelp = `Commands:
  help              Show this help
  status            Show turn, score, hp and entities
  render            Draw the map
  wait              Pass the turn so enemies act
  path <target>     A* path from the player to an entity
  history           Last 10 turns
  save              Write the save slot
  reset             Restart the stage
  quit              Leave (the session stays saved)

Anything else runs as DSL for one turn. End a line with \ to continue
the program on the next line.
`

// SessionSaver persists a session on demand
type SessionSaver interface {
	Save(id string) error
}

// REPL plays one session in the terminal
type REPL struct {
	Service  service.GameService
	Sessions SessionSaver
	In       io.Reader
	Out      io.Writer

	sessionID string
}

// Start creates or resumes a session and reads commands until quit or EOF
func (r *REPL) Start(ctx context.Context, stage, resume string) error {
	if resume != "" {
		info, err := r.Service.GetSession(ctx, resume)
		if err != nil {
			return err
		}
		r.sessionID = info.ID
		fmt.Fprintf(r.Out, "Resumed session %s (%s)\n", info.ID, info.ConfigName)
	} else {
		info, err := r.Service.CreateSession(ctx, stage)
		if err != nil {
			return err
		}
		r.sessionID = info.ID
		fmt.Fprintf(r.Out, "New session %s (%s)\n", info.ID, info.ConfigName)
	}
	fmt.Fprintln(r.Out, "Type help for commands.")
	r.render(ctx)

	scanner := bufio.NewScanner(r.In)
	var pending []string
	r.prompt(len(pending) > 0)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasSuffix(line, `\`) {
			pending = append(pending, strings.TrimSuffix(line, `\`))
			r.prompt(true)
			continue
		}
		if len(pending) > 0 {
			line = strings.Join(append(pending, line), "\n")
			pending = nil
		}

		if quit := r.handle(ctx, line); quit {
			return nil
		}
		r.prompt(false)
	}
	return scanner.Err()
}

func (r *REPL) prompt(continued bool) {
	if continued {
		fmt.Fprint(r.Out, "... ")
		return
	}
	fmt.Fprint(r.Out, "> ")
}

// handle runs one line and reports whether the REPL should stop
func (r *REPL) handle(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToLower(fields[0]) {
	case "quit", "exit":
		r.save()
		fmt.Fprintln(r.Out, "Bye.")
		return true
	case "help", "?":
		fmt.Fprint(r.Out, replHelp)
		return false
	case "status":
		r.status(ctx)
		return false
	case "render":
		r.render(ctx)
		return false
	case "save":
		if r.save() {
			fmt.Fprintf(r.Out, "Saved session %s\n", r.sessionID)
		}
		return false
	case "history":
		r.history(ctx)
		return false
	case "reset":
		if _, err := r.Service.Reset(ctx, r.sessionID); err != nil {
			r.fail(err)
			return false
		}
		fmt.Fprintln(r.Out, "Stage restarted.")
		r.render(ctx)
		return false
	case "wait":
		if len(fields) == 1 {
			result, err := r.Service.Wait(ctx, r.sessionID)
			r.report(ctx, result, err)
			return false
		}
	case "path":
		if len(fields) == 2 {
			r.path(ctx, fields[1])
			return false
		}
	}

	result, err := r.Service.Execute(ctx, r.sessionID, input)
	r.report(ctx, result, err)
	return false
}

func (r *REPL) report(ctx context.Context, result *service.CommandResult, err error) {
	if err != nil {
		r.fail(err)
		return
	}

	for _, d := range result.Diagnostics {
		fmt.Fprintf(r.Out, "%s error, line %d col %d: %s\n", d.Stage, d.Line, d.Column, d.Message)
	}
	for _, msg := range result.RuntimeErrors {
		fmt.Fprintf(r.Out, "error: %s\n", msg)
	}
	for _, msg := range result.Logs {
		fmt.Fprintf(r.Out, "  %s\n", msg)
	}
	for _, a := range result.AIActions {
		fmt.Fprintf(r.Out, "  enemy: %s\n", a)
	}
	for _, a := range result.Attacks {
		fmt.Fprintf(r.Out, "  attack: %s\n", a)
	}

	r.render(ctx)
	if result.GameOver {
		fmt.Fprintln(r.Out, "Game Over! Type reset to play again.")
	}
}

func (r *REPL) fail(err error) {
	switch {
	case errors.Is(err, engine.ErrGameOver):
		fmt.Fprintln(r.Out, "The game is over. Type reset to play again.")
	default:
		fmt.Fprintf(r.Out, "error: %v\n", err)
	}
}

func (r *REPL) render(ctx context.Context) {
	state, err := r.Service.GetGameState(ctx, r.sessionID)
	if err != nil {
		r.fail(err)
		return
	}
	out, err := r.Service.Render(ctx, r.sessionID)
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprint(r.Out, out)
	fmt.Fprintln(r.Out, statusLine(state))
}

func (r *REPL) status(ctx context.Context) {
	state, err := r.Service.GetGameState(ctx, r.sessionID)
	if err != nil {
		r.fail(err)
		return
	}

	fmt.Fprintln(r.Out, statusLine(state))
	fmt.Fprintf(r.Out, "Player at (%d, %d) on a %dx%d map\n", state.Player.Pos.X, state.Player.Pos.Y, state.MapWidth, state.MapHeight)
	for _, e := range state.Entities {
		if !e.Active {
			continue
		}
		fmt.Fprintf(r.Out, "  %-10s %-8s (%d, %d) hp %d\n", e.ID, e.Name, e.Pos.X, e.Pos.Y, e.HP)
	}
}

func (r *REPL) history(ctx context.Context) {
	history, err := r.Service.GetHistory(ctx, r.sessionID, service.HistoryOptions{Limit: 10, Order: "desc"})
	if err != nil {
		r.fail(err)
		return
	}
	if len(history.Entries) == 0 {
		fmt.Fprintln(r.Out, "No turns yet.")
		return
	}
	for _, entry := range history.Entries {
		input := entry.Input
		if entry.Kind != engine.KindCommand {
			input = string(entry.Kind)
		}
		fmt.Fprintf(r.Out, "#%d turn %d: %s (%d error(s))\n", entry.Number, entry.Turn, strings.ReplaceAll(input, "\n", "; "), entry.ErrorCount)
	}
}

func (r *REPL) path(ctx context.Context, target string) {
	resp, err := r.Service.FindPath(ctx, r.sessionID, service.PathRequest{To: target})
	if err != nil {
		r.fail(err)
		return
	}
	if !resp.Found {
		fmt.Fprintf(r.Out, "No path to %s\n", target)
		return
	}

	cells := make([]string, len(resp.Path))
	for i, p := range resp.Path {
		cells[i] = fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	fmt.Fprintf(r.Out, "%d steps: %s\n", resp.StepCount, strings.Join(cells, " "))
	if resp.NextStep != nil {
		fmt.Fprintf(r.Out, "Next: move player %d %d\n", resp.NextStep.X, resp.NextStep.Y)
	}
}

func (r *REPL) save() bool {
	if r.Sessions == nil {
		return false
	}
	if err := r.Sessions.Save(r.sessionID); err != nil {
		fmt.Fprintf(r.Out, "Warning: Failed to save session %s: %v\n", r.sessionID, err)
		return false
	}
	return true
}

func statusLine(state world.State) string {
	return fmt.Sprintf("Turn %d | Score %d | HP %d", state.Turn, state.Score, state.Player.HP)
}

// checkFile lexes and parses a script file, writes every diagnostic to out
// and returns how many there were.
func checkFile(ctx context.Context, path string, out io.Writer) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read script: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	program, lexErrs, parseErrs := dsl.ParseSource(string(data))
	diags := engine.Diagnostics(lexErrs, parseErrs)
	for _, d := range diags {
		fmt.Fprintf(out, "%s:%d:%d: %s error: %s\n", path, d.Line, d.Column, d.Stage, d.Message)
	}
	if len(diags) == 0 {
		fmt.Fprintf(out, "%s: ok, %d statement(s)\n", path, len(program.Statements))
	}
	return len(diags), nil
}
