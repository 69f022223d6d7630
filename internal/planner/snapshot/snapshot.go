package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"floorplan-core/internal/planner/models"

	"gopkg.in/yaml.v3"
)

// Load читает снимок плана (стены и проемы) из YAML-файла.
func Load(path string) (models.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode разбирает снимок. Неизвестные поля считаются ошибкой, чтобы опечатки не терялись.
func Decode(r io.Reader) (models.Snapshot, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var snap models.Snapshot
	if err := dec.Decode(&snap); err != nil {
		if err == io.EOF {
			return models.Snapshot{}, nil
		}
		return models.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	if err := check(snap); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

// Encode пишет снимок в YAML.
func Encode(snap models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// check проверяет только ссылочную целостность; геометрию проверяет ядро.
func check(snap models.Snapshot) error {
	walls := make(map[string]bool, len(snap.Walls))
	for i, w := range snap.Walls {
		if w.ID == "" {
			return fmt.Errorf("wall #%d has no id", i+1)
		}
		if walls[w.ID] {
			return fmt.Errorf("duplicate wall id %q", w.ID)
		}
		walls[w.ID] = true
	}

	for i, o := range snap.Openings {
		if o.ID == "" {
			return fmt.Errorf("opening #%d has no id", i+1)
		}
		if !walls[o.HostWallID] {
			return fmt.Errorf("opening %q references unknown wall %q", o.ID, o.HostWallID)
		}
	}
	return nil
}
