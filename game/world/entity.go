package world

import "strings"

// DefaultHP is the hit points every new entity starts with
const DefaultHP = 100

// Entity is anything that occupies a cell: the player, enemies, items, walls.
// Methods never modify the receiver; they return an updated copy.
type Entity struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Pos    Position `json:"pos"`
	HP     int      `json:"hp"`
	Active bool     `json:"is_active"`
}

// NewEntity creates an active entity with full hit points
func NewEntity(id, name string, pos Position) Entity {
	return Entity{
		ID:     id,
		Name:   name,
		Pos:    pos,
		HP:     DefaultHP,
		Active: true,
	}
}

// MoveTo returns a copy placed at x, y
func (e Entity) MoveTo(x, y int) Entity {
	e.Pos = Position{X: x, Y: y}
	return e
}

// MoveBy returns a copy shifted by dx, dy
func (e Entity) MoveBy(dx, dy int) Entity {
	e.Pos = e.Pos.Move(dx, dy)
	return e
}

// TakeDamage returns a copy with hp reduced by damage. HP never drops
// below zero and an entity at zero hp is no longer active.
func (e Entity) TakeDamage(damage int) Entity {
	hp := e.HP - damage
	if hp < 0 {
		hp = 0
	}
	e.HP = hp
	e.Active = hp > 0
	return e
}

// WithHP returns a copy with the given hit points, floored at zero
func (e Entity) WithHP(hp int) Entity {
	if hp < 0 {
		hp = 0
	}
	e.HP = hp
	return e
}

// WithActive returns a copy with the given active flag
func (e Entity) WithActive(active bool) Entity {
	e.Active = active
	return e
}

// Matches reports whether target names this entity by name or id
func (e Entity) Matches(target string) bool {
	return e.Name == target || e.ID == target
}

// Kind returns the entity type encoded in its id ("enemy_3" is an "enemy").
func (e Entity) Kind() string {
	if i := strings.LastIndex(e.ID, "_"); i > 0 {
		return e.ID[:i]
	}
	return e.ID
}
