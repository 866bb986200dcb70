package world

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotJSONLayout(t *testing.T) {
	s := NewState(12, 8, Pos(3, 4)).
		AddEntity(NewEntity("enemy_0", "orc", Pos(6, 2)).TakeDamage(40)).
		AddScore(20).
		NextTurn()

	data, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "1.0", raw["version"])
	assert.Equal(t, float64(1), raw["turn"])
	assert.Equal(t, float64(20), raw["score"])
	assert.Equal(t, false, raw["is_game_over"])
	assert.Equal(t, float64(12), raw["map_width"])
	assert.Equal(t, float64(8), raw["map_height"])

	player := raw["player"].(map[string]any)
	assert.Equal(t, "player", player["id"])
	assert.Equal(t, float64(3), player["x"])
	assert.Equal(t, float64(4), player["y"])
	assert.Equal(t, float64(100), player["hp"])
	_, hasActive := player["is_active"]
	assert.False(t, hasActive)

	entities := raw["entities"].([]any)
	require.Len(t, entities, 1)
	orc := entities[0].(map[string]any)
	assert.Equal(t, "orc", orc["name"])
	assert.Equal(t, float64(60), orc["hp"])
	assert.Equal(t, true, orc["is_active"])
}

func TestSnapshotRestore(t *testing.T) {
	original := NewState(12, 8, Pos(3, 4)).
		AddEntity(NewEntity("enemy_0", "orc", Pos(6, 2)).WithActive(false)).
		AddScore(30).
		NextTurn().
		EndGame()

	restored := original.Snapshot().State(DefaultState())

	assert.Equal(t, original.Player, restored.Player)
	assert.Equal(t, original.Entities, restored.Entities)
	assert.Equal(t, original.Turn, restored.Turn)
	assert.Equal(t, original.Score, restored.Score)
	assert.Equal(t, original.GameOver, restored.GameOver)
	assert.Equal(t, 12, restored.MapWidth)
	assert.Equal(t, 8, restored.MapHeight)
}

func TestSnapshotMissingFieldsUseDefaults(t *testing.T) {
	data := []byte(`{
		"player": {"x": 2, "y": 3},
		"entities": [{"id": "item_0", "name": "potion", "x": 1, "y": 1}]
	}`)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	s := snap.State(DefaultState())

	assert.Equal(t, "player", s.Player.ID)
	assert.Equal(t, "Player", s.Player.Name)
	assert.Equal(t, Pos(2, 3), s.Player.Pos)
	assert.Equal(t, DefaultHP, s.Player.HP)
	assert.Equal(t, DefaultMapWidth, s.MapWidth)
	require.Len(t, s.Entities, 1)
	assert.Equal(t, DefaultHP, s.Entities[0].HP)
	assert.True(t, s.Entities[0].Active)
}
