// Package manifest loads a TOML game definition, the file-based alternative
// to passing every setup flag on the command line.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/boneshq/bones/internal/game"
)

// ErrMissingField indicates a required manifest field is empty.
var ErrMissingField = errors.New("required field missing")

// Manifest is the on-disk game definition.
//
//	project = "https://github.com/acme/widgets"
//	category = "bugs"
//	target_score = 5
//	hunt_duration = 600
//	review_duration = 300
//	agents = 4
//	max_rounds = 3
type Manifest struct {
	Project        string `toml:"project"`
	Category       string `toml:"category"`
	Focus          string `toml:"focus"`
	TargetScore    int    `toml:"target_score"`
	HuntDuration   int    `toml:"hunt_duration"`   // seconds
	ReviewDuration int    `toml:"review_duration"` // seconds
	Agents         int    `toml:"agents"`
	MaxRounds      int    `toml:"max_rounds"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %q: %w", path, err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse %q: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest: %q: %w", path, err)
	}
	return &m, nil
}

// Validate checks required fields and value ranges.
func (m *Manifest) Validate() error {
	if m.Project == "" {
		return fmt.Errorf("%w: project", ErrMissingField)
	}
	if m.Category == "" {
		return fmt.Errorf("%w: category", ErrMissingField)
	}
	if !game.ValidCategory(m.Category) {
		return fmt.Errorf("unknown category %q", m.Category)
	}
	if m.TargetScore < 1 {
		return fmt.Errorf("target_score must be at least 1, got %d", m.TargetScore)
	}
	if m.HuntDuration <= 0 {
		return fmt.Errorf("hunt_duration must be positive, got %d", m.HuntDuration)
	}
	if m.ReviewDuration <= 0 {
		return fmt.Errorf("review_duration must be positive, got %d", m.ReviewDuration)
	}
	if m.Agents < 1 {
		return fmt.Errorf("agents must be at least 1, got %d", m.Agents)
	}
	if m.MaxRounds < 0 {
		return fmt.Errorf("max_rounds must not be negative, got %d", m.MaxRounds)
	}
	return nil
}

// GameConfig converts the manifest into an engine game configuration.
func (m *Manifest) GameConfig() game.Config {
	return game.Config{
		ProjectURL:     m.Project,
		Category:       game.Category(m.Category),
		Focus:          m.Focus,
		TargetScore:    m.TargetScore,
		HuntDuration:   time.Duration(m.HuntDuration) * time.Second,
		ReviewDuration: time.Duration(m.ReviewDuration) * time.Second,
		NumAgents:      m.Agents,
		MaxRounds:      m.MaxRounds,
	}
}
