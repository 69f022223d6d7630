package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Tool settings
// ============================================================

// Settings: параметры инструментов редактора (сетка, допуски, проемы).
type Settings struct {
	GridSize          float64 `yaml:"grid_size" json:"gridSize"`
	GridEnabled       bool    `yaml:"grid_enabled" json:"gridEnabled"`
	SnapTolerance     float64 `yaml:"snap_tolerance" json:"snapTolerance"`
	JunctionTolerance float64 `yaml:"junction_tolerance" json:"junctionTolerance"`
	CornerClearance   float64 `yaml:"corner_clearance" json:"cornerClearance"`
	OpeningClearance  float64 `yaml:"opening_clearance" json:"openingClearance"`
	MinWallLength     float64 `yaml:"min_wall_length" json:"minWallLength"`
	MinRoomArea       float64 `yaml:"min_room_area" json:"minRoomArea"`
	PlacementPolicy   string  `yaml:"placement_policy" json:"placementPolicy"`
}

func DefaultSettings() Settings {
	return Settings{
		GridSize:          10,
		GridEnabled:       true,
		SnapTolerance:     10,
		JunctionTolerance: 2,
		CornerClearance:   10,
		OpeningClearance:  5,
		MinWallLength:     1,
		MinRoomArea:       1,
		PlacementPolicy:   "auto_clamp",
	}
}

// LoadSettings читает YAML поверх значений по умолчанию. Отсутствующий файл не ошибка.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return settings, nil
}

func (s Settings) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"grid_size", s.GridSize},
		{"snap_tolerance", s.SnapTolerance},
		{"junction_tolerance", s.JunctionTolerance},
		{"corner_clearance", s.CornerClearance},
		{"opening_clearance", s.OpeningClearance},
		{"min_wall_length", s.MinWallLength},
		{"min_room_area", s.MinRoomArea},
	}
	for _, c := range checks {
		if c.value < 0 {
			return fmt.Errorf("%s must not be negative, got %v", c.name, c.value)
		}
	}

	switch s.PlacementPolicy {
	case "auto_clamp", "reject":
	default:
		return fmt.Errorf("unknown placement_policy %q", s.PlacementPolicy)
	}
	return nil
}
