package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// TextGrid is a fixed-size grid of characters
type TextGrid struct {
	Width  int
	Height int
	Fill   rune
	cells  [][]rune
}

// NewTextGrid creates a width x height grid filled with fill
func NewTextGrid(width, height int, fill rune) *TextGrid {
	g := &TextGrid{Width: max(width, 0), Height: max(height, 0), Fill: fill}
	g.cells = make([][]rune, g.Height)
	for y := range g.cells {
		row := make([]rune, g.Width)
		for x := range row {
			row[x] = fill
		}
		g.cells[y] = row
	}
	return g
}

// Set writes ch at x, y. Writes outside the grid are ignored.
func (g *TextGrid) Set(x, y int, ch rune) {
	if x >= 0 && x < g.Width && y >= 0 && y < g.Height {
		g.cells[y][x] = ch
	}
}

// Get returns the character at x, y; ok is false outside the grid
func (g *TextGrid) Get(x, y int) (rune, bool) {
	if x >= 0 && x < g.Width && y >= 0 && y < g.Height {
		return g.cells[y][x], true
	}
	return 0, false
}

// FillRect fills a w x h rectangle whose top-left corner is x, y
func (g *TextGrid) FillRect(x, y, w, h int, ch rune) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			g.Set(x+dx, y+dy, ch)
		}
	}
}

// DrawText writes text left to right starting at x, y
func (g *TextGrid) DrawText(x, y int, text string) {
	i := 0
	for _, r := range text {
		g.Set(x+i, y, r)
		i++
	}
}

// DrawBox outlines a w x h rectangle
func (g *TextGrid) DrawBox(x, y, w, h int, ch rune) {
	for dx := 0; dx < w; dx++ {
		g.Set(x+dx, y, ch)
		g.Set(x+dx, y+h-1, ch)
	}
	for dy := 0; dy < h; dy++ {
		g.Set(x, y+dy, ch)
		g.Set(x+w-1, y+dy, ch)
	}
}

// Render joins the rows with newlines
func (g *TextGrid) Render() string {
	rows := make([]string, len(g.cells))
	for y, row := range g.cells {
		rows[y] = string(row)
	}
	return strings.Join(rows, "\n")
}

// AddBorder returns a new grid with a one-character frame around g
func AddBorder(g *TextGrid, ch rune) *TextGrid {
	bordered := NewTextGrid(g.Width+2, g.Height+2, ch)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c, _ := g.Get(x, y)
			bordered.Set(x+1, y+1, c)
		}
	}
	return bordered
}

func mappedRune(mapping map[string]string, key string) (rune, bool) {
	s, ok := mapping[key]
	if !ok || s == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}

// RenderState draws the status line, the bordered map and the latest log
// lines. Entities are looked up in mapping by id, then by kind; unmapped ones
// show as '?'. The player is drawn last so it is always visible.
func RenderState(state world.State, mapping map[string]string) string {
	if mapping == nil {
		mapping = DefaultCharMapping
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Turn: %d  Score: %d  HP: %d", state.Turn, state.Score, state.Player.HP))
	lines = append(lines, "")

	floor, ok := mappedRune(mapping, "floor")
	if !ok {
		floor = '.'
	}
	grid := NewTextGrid(state.MapWidth, state.MapHeight, floor)

	for _, e := range state.Entities {
		if !e.Active {
			continue
		}
		ch, ok := mappedRune(mapping, e.ID)
		if !ok {
			ch, ok = mappedRune(mapping, e.Kind())
		}
		if !ok {
			ch = '?'
		}
		grid.Set(e.Pos.X, e.Pos.Y, ch)
	}

	player, ok := mappedRune(mapping, "player")
	if !ok {
		player = '@'
	}
	grid.Set(state.Player.Pos.X, state.Player.Pos.Y, player)

	lines = append(lines, AddBorder(grid, '#').Render())

	if len(state.Log) > 0 {
		lines = append(lines, "")
		start := max(len(state.Log)-RenderLogLines, 0)
		for _, msg := range state.Log[start:] {
			lines = append(lines, "  "+msg)
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}
