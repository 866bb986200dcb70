package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/wricardo/mcp-training/dslgame/game/pathfinding"
	"github.com/wricardo/mcp-training/dslgame/game/service"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// PathFinder answers path queries for the current session
type PathFinder interface {
	FindPath(ctx context.Context, req service.PathRequest) (*service.PathResponse, error)
}

// Action is what the strategy wants to do this turn. An empty Command
// with Wait false means the stage is cleared.
type Action struct {
	Command string
	Wait    bool
	Target  string
	Reason  string
}

// Done reports whether there is nothing left to do
func (a Action) Done() bool {
	return a.Command == "" && !a.Wait
}

// HuntStrategy walks one cell per turn towards the closest reachable enemy
// or item and destroys it once adjacent.
type HuntStrategy struct {
	Diagonal bool
	// Candidates caps how many of the nearest targets get a path query
	Candidates int

	stuck int
}

func NewHuntStrategy(diagonal bool) *HuntStrategy {
	return &HuntStrategy{Diagonal: diagonal, Candidates: 3}
}

// Reset forgets per-attempt state
func (s *HuntStrategy) Reset() {
	s.stuck = 0
}

// Targets lists active enemies and items, nearest first
func Targets(state world.State) []world.Entity {
	var targets []world.Entity
	for _, e := range state.ActiveEntities() {
		switch e.Kind() {
		case "enemy", "item":
			targets = append(targets, e)
		}
	}

	from := state.Player.Pos
	sort.SliceStable(targets, func(i, j int) bool {
		di := pathfinding.Manhattan(from, targets[i].Pos)
		dj := pathfinding.Manhattan(from, targets[j].Pos)
		if di != dj {
			return di < dj
		}
		return targets[i].ID < targets[j].ID
	})
	return targets
}

func (s *HuntStrategy) adjacent(a, b world.Position) bool {
	if s.Diagonal {
		return pathfinding.Chebyshev(a, b) <= 1
	}
	return pathfinding.Manhattan(a, b) <= 1
}

// Next picks this turn's action
func (s *HuntStrategy) Next(ctx context.Context, state world.State, paths PathFinder) (Action, error) {
	targets := Targets(state)
	if len(targets) == 0 {
		return Action{Reason: "stage cleared"}, nil
	}

	for _, t := range targets {
		if s.adjacent(state.Player.Pos, t.Pos) {
			s.stuck = 0
			return Action{
				Command: "destroy " + t.ID,
				Target:  t.ID,
				Reason:  fmt.Sprintf("%s is adjacent", t.Name),
			}, nil
		}
	}

	limit := s.Candidates
	if limit <= 0 || limit > len(targets) {
		limit = len(targets)
	}

	diagonal := s.Diagonal
	var best *service.PathResponse
	var bestTarget world.Entity
	for _, t := range targets[:limit] {
		resp, err := paths.FindPath(ctx, service.PathRequest{From: "player", To: t.ID, Diagonal: &diagonal})
		if err != nil {
			return Action{}, err
		}
		if !resp.Found || resp.NextStep == nil {
			continue
		}
		if best == nil || resp.StepCount < best.StepCount {
			best = resp
			bestTarget = t
		}
	}

	if best == nil {
		s.stuck++
		return Action{Wait: true, Reason: fmt.Sprintf("no path to the %d nearest targets", limit)}, nil
	}

	s.stuck = 0
	return Action{
		Command: fmt.Sprintf("move player %d %d", best.NextStep.X, best.NextStep.Y),
		Target:  bestTarget.ID,
		Reason:  fmt.Sprintf("%d steps to %s", best.StepCount, bestTarget.Name),
	}, nil
}

// Stuck is how many turns in a row found no path
func (s *HuntStrategy) Stuck() int {
	return s.stuck
}
