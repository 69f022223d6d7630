package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"floorplan-core/internal/planner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planYAML = `
walls:
  - id: a
    start: {x: 0, y: 0}
    end: {x: 100, y: 0}
    thickness: 10
    height: 300
    type: exterior
  - id: b
    start: {x: 100, y: 0}
    end: {x: 100, y: 200}
    thickness: -10
openings:
  - id: d1
    host_wall_id: a
    kind: door
    offset: 10
    width: 80
    door:
      swing: right
      open_angle: 90
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(planYAML), 0o644))

	snap, err := Load(path)

	require.NoError(t, err)
	require.Len(t, snap.Walls, 2)
	assert.Equal(t, models.WallExterior, snap.Walls[0].Type)
	assert.Equal(t, -10.0, snap.Walls[1].Thickness, "normalization belongs to the core")
	require.Len(t, snap.Openings, 1)
	assert.Equal(t, "a", snap.Openings[0].HostWallID)
	require.NotNil(t, snap.Openings[0].Door)
	assert.Equal(t, models.SwingRight, snap.Openings[0].Door.Swing)
}

func TestDecode_Errors(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
		want string
	}{
		{name: "unknown field", yaml: "walls:\n  - id: a\n    colour: red\n", want: "decode snapshot"},
		{name: "duplicate wall", yaml: "walls:\n  - id: a\n  - id: a\n", want: "duplicate wall id"},
		{name: "missing wall id", yaml: "walls:\n  - thickness: 1\n", want: "has no id"},
		{name: "dangling opening", yaml: "walls:\n  - id: a\nopenings:\n  - id: d\n    host_wall_id: z\n", want: "unknown wall"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	snap, err := Decode(strings.NewReader(planYAML))
	require.NoError(t, err)

	data, err := Encode(snap)
	require.NoError(t, err)

	again, err := Decode(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, snap, again)
}

func TestDecode_Empty(t *testing.T) {
	snap, err := Decode(strings.NewReader(""))

	require.NoError(t, err)
	assert.Empty(t, snap.Walls)
}
