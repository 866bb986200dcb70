package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/dslgame/game/engine"
)

func point(x, y int) *engine.Point {
	return &engine.Point{X: x, Y: y}
}

func TestAnalyzeStage_OpenMap(t *testing.T) {
	stage := &engine.StageConfig{
		Name:        "Open",
		MapWidth:    10,
		MapHeight:   10,
		PlayerStart: point(0, 0),
		Setup:       []string{"spawn enemy 3 4 goblin"},
	}

	report := analyzeStage("open", stage)

	if len(report.Entries) != 2 {
		t.Fatalf("Expected one entry per mode, got %d", len(report.Entries))
	}

	straight, diagonal := report.Entries[0], report.Entries[1]
	if straight.Diagonal || !diagonal.Diagonal {
		t.Fatal("Expected 4-direction first, then 8-direction")
	}
	if !straight.Result.Found || straight.Result.Steps() != 7 {
		t.Errorf("Expected 7 straight steps, got found=%v steps=%d", straight.Result.Found, straight.Result.Steps())
	}
	if !diagonal.Result.Found || diagonal.Result.Steps() != 4 {
		t.Errorf("Expected 4 diagonal steps, got found=%v steps=%d", diagonal.Result.Found, diagonal.Result.Steps())
	}
	if report.Unreachable(false) != 0 || report.Unreachable(true) != 0 {
		t.Error("Expected everything reachable on an open map")
	}
}

func TestAnalyzeStage_WalledIn(t *testing.T) {
	stage := &engine.StageConfig{
		Name:        "Walled",
		MapWidth:    5,
		MapHeight:   5,
		PlayerStart: point(0, 0),
		Setup: []string{
			"spawn enemy 4 4 goblin",
			"spawn wall 3 4",
			"spawn wall 4 3",
		},
	}

	report := analyzeStage("walled", stage)

	if report.Walls != 2 {
		t.Errorf("Expected 2 walls, got %d", report.Walls)
	}
	if len(report.Entries) != 2 {
		t.Fatalf("Walls should not be analyzed, got %d entries", len(report.Entries))
	}
	if report.Unreachable(false) != 1 {
		t.Error("Expected the goblin to be stuck with 4-direction moves")
	}
	if report.Unreachable(true) != 0 {
		t.Error("Expected the goblin to slip out diagonally")
	}

	var out bytes.Buffer
	printReport(&out, report)
	if !strings.Contains(out.String(), "unreachable") || !strings.Contains(out.String(), "WARNING: 1 entities") {
		t.Errorf("Unexpected report:\n%s", out.String())
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "one.json"), []byte(`{
		"name": "One",
		"map_width": 6,
		"map_height": 6,
		"player_start": {"x": 1, "y": 1},
		"setup": ["spawn enemy 5 5 orc"]
	}`), 0644)
	os.WriteFile(filepath.Join(dir, "two.yaml"), []byte("name: Two\nmap_width: 4\nmap_height: 4\nplayer_start:\n  x: 1\n  y: 1\n"), 0644)

	var out bytes.Buffer
	if err := run(dir, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, want := range []string{"=== Analyzing one.json ===", "=== Analyzing two.yaml ===", "orc", "4-dir: 8 steps"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestRun_ProjectConfigs(t *testing.T) {
	configDir := filepath.Join("..", "..", "configs")
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	var out bytes.Buffer
	if err := run(configDir, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if strings.Count(out.String(), "=== Analyzing") < 3 {
		t.Errorf("Expected every project stage to be analyzed:\n%s", out.String())
	}
}

func TestRun_MissingDir(t *testing.T) {
	var out bytes.Buffer
	if err := run("/non/existent/path", &out); err == nil {
		t.Error("Expected error for a missing config directory")
	}
}
