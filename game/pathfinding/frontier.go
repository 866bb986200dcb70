package pathfinding

import "github.com/wricardo/mcp-training/dslgame/game/world"

type node struct {
	f     float64
	order int
	pos   world.Position
}

// frontier is a min-heap on (f, order). order is the push sequence, so
// nodes with equal f come out in the order they went in.
type frontier []node

func (q frontier) Len() int { return len(q) }

func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].order < q[j].order
}

func (q frontier) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *frontier) Push(x any) { *q = append(*q, x.(node)) }

func (q *frontier) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
