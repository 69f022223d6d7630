package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"floorplan-core/internal/planner/models"
	"floorplan-core/internal/planner/openings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePlan = filepath.Join("..", "..", "examples", "two-rooms.yaml")

func run(t *testing.T, args ...string) []byte {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--plan", samplePlan}, args...))
	require.NoError(t, rootCmd.Execute())
	return out.Bytes()
}

func TestRoomsCommand(t *testing.T) {
	var list []models.Room
	require.NoError(t, json.Unmarshal(run(t, "rooms"), &list))

	require.Len(t, list, 2)
	for _, r := range list {
		assert.InDelta(t, 120000, r.Area, 1e-9)
		assert.Contains(t, r.WallIDs, "p")
	}
}

func TestSnapCommand(t *testing.T) {
	var res models.SnapResult
	require.NoError(t, json.Unmarshal(run(t, "snap", "--x", "303", "--y", "-4"), &res))

	assert.True(t, res.Snapped)
	assert.Equal(t, models.Point{X: 300, Y: 0}, res.Point)
}

func TestOpeningCommand(t *testing.T) {
	var v openings.Validation
	// Дверь 80 по центру y=200 пересекается с door-1 [160,240]; auto_clamp сдвигает.
	require.NoError(t, json.Unmarshal(run(t, "opening", "--x", "300", "--y", "200", "--width", "80"), &v))

	assert.True(t, v.IsValid)
	assert.Equal(t, "p", v.WallID)
	require.NotNil(t, v.Position)
	assert.NotEqual(t, 160.0, *v.Position)
}

func TestOpeningCommand_UnknownKind(t *testing.T) {
	rootCmd.SetArgs([]string{"--plan", samplePlan, "opening", "--kind", "stair"})
	assert.Error(t, rootCmd.Execute())
	openingKind = string(models.ElementDoor)
}
