// Command autoplay plays a stage through the REST API. Each turn it asks
// the server for A* paths to the nearest enemies and items, steps towards
// the closest one and destroys it once adjacent. A lost attempt resets the
// stage and starts over.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

const sessionFile = ".session"

// Options bound one autoplay run
type Options struct {
	MaxTurns    int
	MaxAttempts int
	Delay       time.Duration
	Verbose     bool
}

// Outcome summarizes a finished run
type Outcome struct {
	Cleared  bool
	Attempts int
	Turns    int
	State    world.State
}

// Play runs attempts until the stage is cleared or the limits are hit
func Play(ctx context.Context, client *Client, strategy *HuntStrategy, state world.State, opts Options) (Outcome, error) {
	var err error
	outcome := Outcome{}

	for outcome.Attempts < opts.MaxAttempts {
		outcome.Attempts++

		if outcome.Attempts > 1 || state.GameOver {
			state, err = client.Reset(ctx)
			if err != nil {
				return outcome, err
			}
		}
		strategy.Reset()

		log.Printf("=== 🎮 Attempt %d/%d ===", outcome.Attempts, opts.MaxAttempts)

		turns := 0
		for !state.GameOver && turns < opts.MaxTurns {
			action, err := strategy.Next(ctx, state, client)
			if err != nil {
				return outcome, err
			}
			if action.Done() {
				outcome.Cleared = true
				outcome.Turns = turns
				outcome.State = state
				return outcome, nil
			}

			if opts.Verbose {
				log.Printf("Turn %d: %s (%s)", state.Turn, describe(action), action.Reason)
			}

			if action.Wait {
				result, err := client.Wait(ctx)
				if err != nil {
					return outcome, err
				}
				state = result.GameState
			} else {
				result, err := client.Execute(ctx, action.Command)
				if err != nil {
					return outcome, err
				}
				for _, msg := range result.RuntimeErrors {
					log.Printf("Warning: %s", msg)
				}
				state = result.GameState
			}
			turns++

			if opts.Delay > 0 {
				time.Sleep(opts.Delay)
			}
		}

		outcome.Turns = turns
		outcome.State = state
		log.Printf("Attempt %d: Turns=%d, Score=%d, HP=%d, Targets left=%d",
			outcome.Attempts, turns, state.Score, state.Player.HP, len(Targets(state)))
	}

	return outcome, nil
}

func describe(a Action) string {
	if a.Wait {
		return "wait"
	}
	return a.Command
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.Printf("Connecting to game server at %s", cmd.String("url"))
	client := NewClient(cmd.String("url"))

	savedSessionID := cmd.String("continue")
	if savedSessionID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	var state world.State
	var err error
	if savedSessionID != "" {
		log.Printf("🔄 Resuming session: %s", savedSessionID)
		state, err = client.Resume(ctx, savedSessionID)
		if err != nil {
			log.Printf("⚠️  Failed to resume session (may be expired): %v", err)
			savedSessionID = ""
		}
	}

	if savedSessionID == "" {
		state, err = client.CreateSession(ctx, cmd.String("stage"))
		if err != nil {
			return err
		}
		log.Printf("✨ Session created: %s", client.SessionID())

		if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}

	log.Printf("Map: %dx%d, targets: %d, HP: %d", state.MapWidth, state.MapHeight, len(Targets(state)), state.Player.HP)

	strategy := NewHuntStrategy(cmd.Bool("diagonal"))
	outcome, err := Play(ctx, client, strategy, state, Options{
		MaxTurns:    cmd.Int("max-turns"),
		MaxAttempts: cmd.Int("max-attempts"),
		Delay:       cmd.Duration("delay"),
		Verbose:     cmd.Bool("verbose"),
	})
	if err != nil {
		return err
	}

	log.Printf("Session: %s", client.SessionID())
	if !outcome.Cleared {
		return cli.Exit(fmt.Sprintf("❌ Failed to clear the stage after %d attempts", outcome.Attempts), 1)
	}
	log.Printf("🎉 Stage cleared in attempt %d after %d turns, score %d", outcome.Attempts, outcome.Turns, outcome.State.Score)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Play a stage through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL", Sources: cli.EnvVars("GAME_URL")},
			&cli.StringFlag{Name: "stage", Usage: "Stage config id (default stage when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.IntFlag{Name: "max-turns", Value: 500, Usage: "Maximum turns per attempt"},
			&cli.IntFlag{Name: "max-attempts", Value: 10, Usage: "Maximum attempts before giving up"},
			&cli.BoolFlag{Name: "diagonal", Value: true, Usage: "Move diagonally"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between turns"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Verbose output"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}
