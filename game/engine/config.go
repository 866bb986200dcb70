package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pelletier/go-toml"
	"github.com/wricardo/mcp-training/dslgame/game/dsl"
	"github.com/wricardo/mcp-training/dslgame/game/world"
	"gopkg.in/yaml.v3"
)

// Format is a stage file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// StageExtensions lists the file extensions stage configs may use, in lookup order
var StageExtensions = []string{".json", ".yaml", ".yml", ".toml"}

// DefaultCharMapping maps entity kinds to map characters
var DefaultCharMapping = map[string]string{
	"player": "@",
	"enemy":  "E",
	"item":   "!",
	"wall":   "#",
	"floor":  ".",
}

// FormatFromPath picks the encoding from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// DecodeStageConfig parses data in the given format. The result is not validated.
func DecodeStageConfig(data []byte, format Format) (*StageConfig, error) {
	var config StageConfig
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &config)
	case FormatYAML:
		err = yaml.Unmarshal(data, &config)
	case FormatTOML:
		err = toml.Unmarshal(data, &config)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// EncodeStageConfig writes config in the given format with every default
// filled in
func EncodeStageConfig(config *StageConfig, format Format) ([]byte, error) {
	c := config.WithDefaults()
	switch format {
	case FormatJSON:
		return json.MarshalIndent(c, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		return toml.Marshal(c)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

// WithDefaults returns a copy of the config with every unset field filled in
func (c *StageConfig) WithDefaults() *StageConfig {
	out := *c
	if out.MapWidth == 0 {
		out.MapWidth = world.DefaultMapWidth
	}
	if out.MapHeight == 0 {
		out.MapHeight = world.DefaultMapHeight
	}
	if out.PlayerStart == nil {
		out.PlayerStart = &Point{X: world.DefaultPlayerStart.X, Y: world.DefaultPlayerStart.Y}
	} else {
		p := *out.PlayerStart
		out.PlayerStart = &p
	}
	if out.PlayerHP == 0 {
		out.PlayerHP = world.DefaultHP
	}
	out.CharMapping = c.Mapping()
	out.Setup = append([]string{}, c.Setup...)
	if out.AutoSave == nil {
		out.AutoSave = boolPtr(true)
	} else {
		out.AutoSave = boolPtr(*c.AutoSave)
	}
	if out.AIEnabled == nil {
		out.AIEnabled = boolPtr(true)
	} else {
		out.AIEnabled = boolPtr(*c.AIEnabled)
	}
	if out.EnemyDamage == nil {
		out.EnemyDamage = intPtr(DefaultEnemyDamage)
	} else {
		out.EnemyDamage = intPtr(*c.EnemyDamage)
	}
	return &out
}

// Start is the player's starting position
func (c *StageConfig) Start() world.Position {
	if c.PlayerStart == nil {
		return world.DefaultPlayerStart
	}
	return c.PlayerStart.Position()
}

// Mapping returns DefaultCharMapping overridden by the stage's char_mapping
func (c *StageConfig) Mapping() map[string]string {
	mapping := make(map[string]string, len(DefaultCharMapping)+len(c.CharMapping))
	for k, v := range DefaultCharMapping {
		mapping[k] = v
	}
	for k, v := range c.CharMapping {
		mapping[k] = v
	}
	return mapping
}

// AutoSaveEnabled defaults to true
func (c *StageConfig) AutoSaveEnabled() bool {
	return c.AutoSave == nil || *c.AutoSave
}

// AIActive defaults to true
func (c *StageConfig) AIActive() bool {
	return c.AIEnabled == nil || *c.AIEnabled
}

// Damage is what one enemy attack costs the player
func (c *StageConfig) Damage() int {
	if c.EnemyDamage == nil {
		return DefaultEnemyDamage
	}
	return *c.EnemyDamage
}

// SetupScript joins the setup lines into one DSL program
func (c *StageConfig) SetupScript() string {
	return strings.Join(c.Setup, "\n")
}

// ValidateStageConfig checks a stage config for correctness and playability
func ValidateStageConfig(config *StageConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidStage)
	}
	c := config.WithDefaults()

	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidStage)
	}

	if c.MapWidth < MinMapSize || c.MapWidth > MaxMapSize {
		return fmt.Errorf("%w: map_width must be between %d and %d, got %d", ErrInvalidStage, MinMapSize, MaxMapSize, c.MapWidth)
	}
	if c.MapHeight < MinMapSize || c.MapHeight > MaxMapSize {
		return fmt.Errorf("%w: map_height must be between %d and %d, got %d", ErrInvalidStage, MinMapSize, MaxMapSize, c.MapHeight)
	}

	start := c.Start()
	if start.X < 0 || start.X >= c.MapWidth || start.Y < 0 || start.Y >= c.MapHeight {
		return fmt.Errorf("%w: player_start (%d, %d) is outside the %dx%d map", ErrInvalidStage, start.X, start.Y, c.MapWidth, c.MapHeight)
	}

	if c.PlayerHP < 0 {
		return fmt.Errorf("%w: player_hp must be positive, got %d", ErrInvalidStage, c.PlayerHP)
	}
	if c.Damage() < 0 {
		return fmt.Errorf("%w: enemy_damage cannot be negative, got %d", ErrInvalidStage, c.Damage())
	}

	for kind, char := range c.CharMapping {
		if utf8.RuneCountInString(char) != 1 {
			return fmt.Errorf("%w: char_mapping[%q] must be a single character, got %q", ErrInvalidStage, kind, char)
		}
	}

	if len(c.Setup) > MaxSetupLines {
		return fmt.Errorf("%w: setup has %d lines, at most %d allowed", ErrInvalidStage, len(c.Setup), MaxSetupLines)
	}
	_, lexErrs, parseErrs := dsl.ParseSource(c.SetupScript())
	if len(lexErrs) > 0 {
		e := lexErrs[0]
		return fmt.Errorf("%w: setup line %d, column %d: %s", ErrInvalidStage, e.Line, e.Column, e.Message)
	}
	if len(parseErrs) > 0 {
		e := parseErrs[0]
		return fmt.Errorf("%w: setup line %d, column %d: %s", ErrInvalidStage, e.Line, e.Column, e.Message)
	}

	return nil
}

// configPath resolves a "configs/..." path against CONFIG_DIR when it is set
func configPath(filename string) string {
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			return filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}
	return filename
}

// ConfigDir is CONFIG_DIR, or "configs" when unset
func ConfigDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return "configs"
}

// LoadStageConfig loads and validates a stage file. The decoder is chosen
// by the file extension.
func LoadStageConfig(filename string) (*StageConfig, error) {
	path := configPath(filename)

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config, err := DecodeStageConfig(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateStageConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadStageConfigByName finds a stage in ConfigDir. Without an extension
// every supported one is tried in StageExtensions order.
func LoadStageConfigByName(name string) (*StageConfig, error) {
	dir := ConfigDir()

	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = candidates[:0]
		for _, ext := range StageExtensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		config, err := LoadStageConfig(path)
		if err != nil {
			return nil, fmt.Errorf("invalid config '%s': %w", candidate, err)
		}
		return config, nil
	}

	return nil, fmt.Errorf("%w: '%s'", ErrStageNotFound, name)
}

// DefaultStageConfig is used when no stage file is available
func DefaultStageConfig() *StageConfig {
	return &StageConfig{
		Name:        "default",
		Description: "A small arena with one goblin and a potion",
		Title:       "DSL Adventure",
		MapWidth:    world.DefaultMapWidth,
		MapHeight:   world.DefaultMapHeight,
		PlayerStart: &Point{X: world.DefaultPlayerStart.X, Y: world.DefaultPlayerStart.Y},
		PlayerHP:    world.DefaultHP,
		Setup: []string{
			`spawn enemy 15 2 goblin`,
			`spawn item 10 7 potion`,
		},
		AutoSave:    boolPtr(true),
		AIEnabled:   boolPtr(true),
		EnemyDamage: intPtr(DefaultEnemyDamage),
	}
}

// RunSetup runs the stage's setup script on state
func RunSetup(config *StageConfig, state world.State) dsl.RunResult {
	return dsl.Run(config.SetupScript(), state)
}

// InitStateFromConfig builds the initial state for a stage: the map, the
// player and whatever the setup script spawns. Setup does not count towards
// turn or score, and its log is replaced by the stage title.
func InitStateFromConfig(config *StageConfig) world.State {
	if config == nil {
		config = DefaultStageConfig()
	}
	c := config.WithDefaults()

	state := world.NewState(c.MapWidth, c.MapHeight, c.Start())
	state = state.WithPlayer(state.Player.WithHP(c.PlayerHP))

	if len(c.Setup) > 0 {
		result := RunSetup(c, state)
		for _, e := range result.Errors {
			fmt.Printf("Warning: stage %q setup: %s\n", c.Name, e.Message)
		}
		state = result.State
	}

	state.Turn = 0
	state.Score = 0
	state.Log = []string{}
	if c.Title != "" {
		state = state.AddLog("Welcome to " + c.Title + "!")
	}
	return state
}
