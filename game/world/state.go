package world

const (
	DefaultMapWidth  = 20
	DefaultMapHeight = 10
	MaxLogMessages   = 5
)

// DefaultPlayerStart is where the player spawns when no stage says otherwise
var DefaultPlayerStart = Position{X: 5, Y: 5}

// State is the single source of truth for a game in progress.
// It is a value: every operation returns a new State and leaves the receiver
// untouched. Slices are copied before they are changed so snapshots never
// share mutable backing arrays.
type State struct {
	Player    Entity   `json:"player"`
	Entities  []Entity `json:"entities"`
	Turn      int      `json:"turn"`
	Score     int      `json:"score"`
	GameOver  bool     `json:"is_game_over"`
	MapWidth  int      `json:"map_width"`
	MapHeight int      `json:"map_height"`
	Log       []string `json:"log_messages"`
}

// NewState creates the initial state for a map of the given size
func NewState(width, height int, playerStart Position) State {
	if width <= 0 {
		width = DefaultMapWidth
	}
	if height <= 0 {
		height = DefaultMapHeight
	}
	s := State{
		Player:    NewEntity("player", "Player", playerStart),
		Entities:  []Entity{},
		MapWidth:  width,
		MapHeight: height,
		Log:       []string{},
	}
	s.Player.Pos = s.Clamp(playerStart)
	return s
}

// DefaultState returns a 20x10 map with the player at (5, 5)
func DefaultState() State {
	return NewState(DefaultMapWidth, DefaultMapHeight, DefaultPlayerStart)
}

// InBounds reports whether x, y lies on the map
func (s State) InBounds(x, y int) bool {
	return x >= 0 && x < s.MapWidth && y >= 0 && y < s.MapHeight
}

// Clamp pulls p onto the map
func (s State) Clamp(p Position) Position {
	return Position{X: clamp(p.X, 0, s.MapWidth-1), Y: clamp(p.Y, 0, s.MapHeight-1)}
}

// MovePlayer moves the player relative to its position, stopping at the map edge
func (s State) MovePlayer(dx, dy int) State {
	return s.PlacePlayer(s.Player.Pos.X+dx, s.Player.Pos.Y+dy)
}

// PlacePlayer puts the player at x, y clamped to the map
func (s State) PlacePlayer(x, y int) State {
	p := s.Clamp(Position{X: x, Y: y})
	s.Player = s.Player.MoveTo(p.X, p.Y)
	return s
}

// PlaceEntity puts the entity at index i at x, y clamped to the map
func (s State) PlaceEntity(i, x, y int) State {
	if i < 0 || i >= len(s.Entities) {
		return s
	}
	p := s.Clamp(Position{X: x, Y: y})
	entities := s.copyEntities()
	entities[i] = entities[i].MoveTo(p.X, p.Y)
	s.Entities = entities
	return s
}

// AddLog appends a message, keeping only the most recent MaxLogMessages
func (s State) AddLog(message string) State {
	logs := make([]string, 0, len(s.Log)+1)
	logs = append(logs, s.Log...)
	logs = append(logs, message)
	if len(logs) > MaxLogMessages {
		logs = logs[len(logs)-MaxLogMessages:]
	}
	s.Log = logs
	return s
}

// NextTurn advances the turn counter
func (s State) NextTurn() State {
	s.Turn++
	return s
}

// AddScore adds points (which may be negative) to the score
func (s State) AddScore(points int) State {
	s.Score += points
	return s
}

// WithEntities replaces the entity list
func (s State) WithEntities(entities []Entity) State {
	s.Entities = append([]Entity{}, entities...)
	return s
}

// WithPlayer replaces the player
func (s State) WithPlayer(player Entity) State {
	s.Player = player
	return s
}

// AddEntity appends e, clamped to the map
func (s State) AddEntity(e Entity) State {
	e.Pos = s.Clamp(e.Pos)
	s.Entities = append(s.copyEntities(), e)
	return s
}

// EndGame marks the game as over
func (s State) EndGame() State {
	s.GameOver = true
	return s
}

// FindEntity returns the first entity whose name or id is target
func (s State) FindEntity(target string) (Entity, int, bool) {
	for i, e := range s.Entities {
		if e.Matches(target) {
			return e, i, true
		}
	}
	return Entity{}, -1, false
}

// EntityByID returns the entity with the given id
func (s State) EntityByID(id string) (Entity, bool) {
	for _, e := range s.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}

// ActiveEntities returns the entities that are still active
func (s State) ActiveEntities() []Entity {
	active := make([]Entity, 0, len(s.Entities))
	for _, e := range s.Entities {
		if e.Active {
			active = append(active, e)
		}
	}
	return active
}

// Clone returns a deep copy
func (s State) Clone() State {
	s.Entities = s.copyEntities()
	s.Log = append([]string{}, s.Log...)
	return s
}

func (s State) copyEntities() []Entity {
	entities := make([]Entity, len(s.Entities), len(s.Entities)+1)
	copy(entities, s.Entities)
	return entities
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
