package pathfinding

import (
	"fmt"
	"math"
	"strings"

	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// Heuristic estimates the remaining cost from a to b
type Heuristic func(a, b world.Position) float64

// Manhattan suits 4-direction movement
func Manhattan(a, b world.Position) float64 {
	return float64(abs(a.X-b.X) + abs(a.Y-b.Y))
}

// Euclidean suits 8-direction movement
func Euclidean(a, b world.Position) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Chebyshev treats a diagonal step as costing the same as a straight one
func Chebyshev(a, b world.Position) float64 {
	return float64(max(abs(a.X-b.X), abs(a.Y-b.Y)))
}

// HeuristicByName resolves "manhattan", "euclidean" or "chebyshev"
func HeuristicByName(name string) (Heuristic, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "manhattan":
		return Manhattan, nil
	case "euclidean":
		return Euclidean, nil
	case "chebyshev":
		return Chebyshev, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownHeuristic, name)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
