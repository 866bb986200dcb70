// Command analyze prints quick, human-readable reachability reports for the
// stages in the configs directory. For every stage it builds the initial
// world (setup script included) and runs A* from each entity to the player,
// once with 4-direction moves and once with diagonals.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/dslgame/game/config"
	"github.com/wricardo/mcp-training/dslgame/game/engine"
	"github.com/wricardo/mcp-training/dslgame/game/pathfinding"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// Reachability is the A* result for one entity in one movement mode
type Reachability struct {
	Entity   world.Entity
	Diagonal bool
	Result   pathfinding.PathResult
}

// StageReport summarizes one stage
type StageReport struct {
	ConfigID string
	Stage    *engine.StageConfig
	State    world.State
	Walls    int
	Entries  []Reachability
}

// Unreachable counts entities with no path in the given mode
func (r StageReport) Unreachable(diagonal bool) int {
	n := 0
	for _, e := range r.Entries {
		if e.Diagonal == diagonal && !e.Result.Found {
			n++
		}
	}
	return n
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Report A* reachability for every stage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing stage configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(cmd.String("config-dir"), os.Stdout)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(configDir string, out io.Writer) error {
	manager, err := config.NewManager(configDir)
	if err != nil {
		return err
	}

	infos, err := manager.ListConfigs()
	if err != nil {
		return err
	}

	for _, info := range infos {
		fmt.Fprintf(out, "\n=== Analyzing %s ===\n", info.Filename)

		stage, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(out, "Error loading stage: %v\n", err)
			continue
		}
		printReport(out, analyzeStage(info.ConfigID, stage))
	}
	return nil
}

// analyzeStage builds the stage's initial world and paths every non-wall
// entity to the player
func analyzeStage(configID string, stage *engine.StageConfig) StageReport {
	state := engine.InitStateFromConfig(stage)
	report := StageReport{ConfigID: configID, Stage: stage, State: state}

	for _, e := range state.ActiveEntities() {
		if e.Kind() == "wall" {
			report.Walls++
			continue
		}

		walkable := pathfinding.WalkableFromState(state, e.Pos)
		for _, diagonal := range []bool{false, true} {
			result := pathfinding.FindPath(e.Pos, state.Player.Pos, walkable, state.MapWidth, state.MapHeight,
				pathfinding.WithDiagonal(diagonal))
			report.Entries = append(report.Entries, Reachability{Entity: e, Diagonal: diagonal, Result: result})
		}
	}
	return report
}

func printReport(out io.Writer, r StageReport) {
	fmt.Fprintf(out, "Name: %s\n", r.Stage.Name)
	fmt.Fprintf(out, "Map: %d x %d\n", r.State.MapWidth, r.State.MapHeight)
	fmt.Fprintf(out, "Player: (%d, %d) hp %d\n", r.State.Player.Pos.X, r.State.Player.Pos.Y, r.State.Player.HP)
	fmt.Fprintf(out, "Entities: %d (%d walls)\n", len(r.State.ActiveEntities()), r.Walls)

	for _, e := range r.Entries {
		mode := "4-dir"
		if e.Diagonal {
			mode = "8-dir"
		}
		if e.Result.Found {
			fmt.Fprintf(out, "  %-10s %-8s %s: %d steps, cost %.3f, explored %d\n",
				e.Entity.ID, e.Entity.Name, mode, e.Result.Steps(), e.Result.Cost, e.Result.Explored)
		} else {
			fmt.Fprintf(out, "  %-10s %-8s %s: unreachable, explored %d\n",
				e.Entity.ID, e.Entity.Name, mode, e.Result.Explored)
		}
	}

	if n := r.Unreachable(false); n > 0 {
		fmt.Fprintf(out, "⚠️  WARNING: %d entities cannot reach the player with 4-direction moves\n", n)
	} else {
		fmt.Fprintf(out, "✅ Every entity can reach the player\n")
	}
}
