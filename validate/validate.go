// Command validate checks the stage files in the ../configs directory
// (json, yaml and toml). It checks:
//   - The file decodes and passes engine.ValidateStageConfig
//   - The setup script runs without runtime errors
//   - No two active entities share a cell, and none sits on the player
//   - Connectivity: every enemy and item can be reached from the player
//     with 4-direction moves around walls
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/dslgame/game/engine"
	"github.com/wricardo/mcp-training/dslgame/game/pathfinding"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single stage file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	format, err := engine.FormatFromPath(filePath)
	if err != nil {
		result.fail("Unsupported file: %v", err)
		return result
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	stage, err := engine.DecodeStageConfig(data, format)
	if err != nil {
		result.fail("Invalid %s: %v", strings.ToUpper(string(format)), err)
		return result
	}

	if err := engine.ValidateStageConfig(stage); err != nil {
		result.fail("%v", err)
		return result
	}

	c := stage.WithDefaults()
	start := world.NewState(c.MapWidth, c.MapHeight, c.Start())
	setup := engine.RunSetup(c, start)
	for _, e := range setup.Errors {
		result.fail("Setup error: %s", e.Message)
	}
	state := setup.State

	occupied := map[world.Position]string{state.Player.Pos: state.Player.ID}
	for _, e := range state.ActiveEntities() {
		if other, taken := occupied[e.Pos]; taken {
			result.fail("%s and %s share cell (%d,%d)", other, e.ID, e.Pos.X, e.Pos.Y)
			continue
		}
		occupied[e.Pos] = e.ID
	}

	if result.Valid {
		reachability := validateConnectivity(state)
		if !reachability.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, reachability.Errors...)
	}

	if result.Valid {
		counts := map[string]int{}
		for _, e := range state.ActiveEntities() {
			counts[e.Kind()]++
		}
		result.info("Name: %s", c.Name)
		result.info("Format: %s", format)
		result.info("Map: %dx%d, player at (%d,%d) hp %d", c.MapWidth, c.MapHeight, state.Player.Pos.X, state.Player.Pos.Y, c.PlayerHP)
		result.info("Enemies: %d, items: %d, walls: %d", counts["enemy"], counts["item"], counts["wall"])
		result.info("Setup lines: %d", len(c.Setup))
	}

	return result
}

// validateConnectivity flood fills from the player over every cell that is
// not a wall and reports enemies and items it never reaches.
func validateConnectivity(state world.State) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	walls := make(map[world.Position]struct{})
	var targets []world.Entity
	for _, e := range state.ActiveEntities() {
		if e.Kind() == "wall" {
			walls[e.Pos] = struct{}{}
		} else {
			targets = append(targets, e)
		}
	}
	passable := pathfinding.CreateWalkabilityChecker(walls, state.MapWidth, state.MapHeight)

	visited := map[world.Position]bool{}
	queue := []world.Position{state.Player.Pos}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, d := range pathfinding.Directions4 {
			next := current.Move(d.DX, d.DY)
			if !visited[next] && passable(next.X, next.Y) {
				queue = append(queue, next)
			}
		}
	}

	var unreachable []world.Entity
	for _, e := range targets {
		if !visited[e.Pos] {
			unreachable = append(unreachable, e)
		}
	}

	if len(unreachable) > 0 {
		result.fail("Connectivity failure: %d/%d entities unreachable from the player", len(unreachable), len(targets))
		for _, e := range unreachable {
			result.Errors = append(result.Errors, fmt.Sprintf("Unreachable: %s at (%d,%d)", e.ID, e.Pos.X, e.Pos.Y))
		}
	} else {
		result.info("Connectivity: all %d entities reachable from the player", len(targets))
	}

	return result
}

// stageFiles lists every file in dir with a stage extension
func stageFiles(dir string) ([]string, error) {
	var files []string
	for _, ext := range engine.StageExtensions {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

// validateDir validates every stage in dir, prints a concise report and
// reports whether all of them passed.
func validateDir(dir string) (bool, error) {
	files, err := stageFiles(dir)
	if err != nil {
		return false, fmt.Errorf("error finding config files: %w", err)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
	}
	return allValid, nil
}

// main validates ../configs, exiting with non-zero status if any stage is invalid
func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "Validate stage configurations",
		ArgsUsage: "[config-dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "../configs"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			ok, err := validateDir(dir)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if !ok {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
