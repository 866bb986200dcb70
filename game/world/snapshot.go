package world

// SnapshotVersion is written to every saved snapshot
const SnapshotVersion = "1.0"

// Snapshot is the save-file form of a State. Field names follow the
// state.json layout used by save slots; hp and is_active are pointers so a
// hand-edited file may omit them and still load with defaults.
type Snapshot struct {
	Version    string           `json:"version" msgpack:"version"`
	Player     PlayerSnapshot   `json:"player" msgpack:"player"`
	Entities   []EntitySnapshot `json:"entities" msgpack:"entities"`
	Turn       int              `json:"turn" msgpack:"turn"`
	Score      int              `json:"score" msgpack:"score"`
	IsGameOver bool             `json:"is_game_over" msgpack:"is_game_over"`
	MapWidth   int              `json:"map_width" msgpack:"map_width"`
	MapHeight  int              `json:"map_height" msgpack:"map_height"`
}

// PlayerSnapshot is the saved form of the player
type PlayerSnapshot struct {
	ID   string `json:"id" msgpack:"id"`
	Name string `json:"name" msgpack:"name"`
	X    int    `json:"x" msgpack:"x"`
	Y    int    `json:"y" msgpack:"y"`
	HP   *int   `json:"hp" msgpack:"hp"`
}

// EntitySnapshot is the saved form of a non-player entity
type EntitySnapshot struct {
	ID       string `json:"id" msgpack:"id"`
	Name     string `json:"name" msgpack:"name"`
	X        int    `json:"x" msgpack:"x"`
	Y        int    `json:"y" msgpack:"y"`
	HP       *int   `json:"hp" msgpack:"hp"`
	IsActive *bool  `json:"is_active" msgpack:"is_active"`
}

// Snapshot converts the state into its save-file form. The log is not saved.
func (s State) Snapshot() Snapshot {
	hp := s.Player.HP
	snap := Snapshot{
		Version: SnapshotVersion,
		Player: PlayerSnapshot{
			ID:   s.Player.ID,
			Name: s.Player.Name,
			X:    s.Player.Pos.X,
			Y:    s.Player.Pos.Y,
			HP:   &hp,
		},
		Entities:   make([]EntitySnapshot, 0, len(s.Entities)),
		Turn:       s.Turn,
		Score:      s.Score,
		IsGameOver: s.GameOver,
		MapWidth:   s.MapWidth,
		MapHeight:  s.MapHeight,
	}
	for _, e := range s.Entities {
		hp, active := e.HP, e.Active
		snap.Entities = append(snap.Entities, EntitySnapshot{
			ID:       e.ID,
			Name:     e.Name,
			X:        e.Pos.X,
			Y:        e.Pos.Y,
			HP:       &hp,
			IsActive: &active,
		})
	}
	return snap
}

// State rebuilds a State from the snapshot. Values missing from the
// snapshot are taken from defaults.
func (snap Snapshot) State(defaults State) State {
	s := defaults.Clone()
	if snap.MapWidth > 0 {
		s.MapWidth = snap.MapWidth
	}
	if snap.MapHeight > 0 {
		s.MapHeight = snap.MapHeight
	}

	player := defaults.Player
	if snap.Player.ID != "" {
		player.ID = snap.Player.ID
	}
	if snap.Player.Name != "" {
		player.Name = snap.Player.Name
	}
	player.Pos = Position{X: snap.Player.X, Y: snap.Player.Y}
	if snap.Player.HP != nil {
		player.HP = *snap.Player.HP
	}
	player.Active = true
	s.Player = player

	entities := make([]Entity, 0, len(snap.Entities))
	for _, es := range snap.Entities {
		e := NewEntity(es.ID, es.Name, Position{X: es.X, Y: es.Y})
		if es.HP != nil {
			e.HP = *es.HP
		}
		if es.IsActive != nil {
			e.Active = *es.IsActive
		}
		entities = append(entities, e)
	}
	s.Entities = entities
	s.Turn = snap.Turn
	s.Score = snap.Score
	s.GameOver = snap.IsGameOver
	s.Log = []string{}
	return s
}
