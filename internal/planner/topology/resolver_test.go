package topology

import (
	"testing"

	"floorplan-core/internal/planner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wall(id string, x1, y1, x2, y2 float64) models.Wall {
	return models.Wall{
		ID:        id,
		Start:     models.Point{X: x1, Y: y1},
		End:       models.Point{X: x2, Y: y2},
		Thickness: 10,
		Height:    300,
	}
}

func TestResolve_CornerAtRightAngle(t *testing.T) {
	topo := Resolve([]models.Wall{
		wall("a", 0, 0, 100, 0),
		wall("b", 100, 0, 100, 100),
	}, true)

	require.Len(t, topo.Junctions, 1)
	j := topo.Junctions[0]
	assert.Equal(t, models.JunctionCorner, j.Kind)
	assert.Equal(t, []string{"a", "b"}, j.WallIDs)
	assert.Equal(t, models.Point{X: 100, Y: 0}, j.Position)
	assert.Len(t, topo.Segments, 2)
	assert.Empty(t, topo.Warnings)
}

func TestResolve_CrossSplitsBothWalls(t *testing.T) {
	topo := Resolve([]models.Wall{
		wall("h", 0, 50, 100, 50),
		wall("v", 50, 0, 50, 100),
	}, true)

	require.Len(t, topo.Junctions, 1)
	assert.Equal(t, models.JunctionCross, topo.Junctions[0].Kind)
	assert.InDelta(t, 50, topo.Junctions[0].Position.X, 1e-9)
	assert.InDelta(t, 50, topo.Junctions[0].Position.Y, 1e-9)

	perWall := map[string][]models.Segment{}
	for _, seg := range topo.Segments {
		perWall[seg.WallID] = append(perWall[seg.WallID], seg)
	}
	require.Len(t, perWall["h"], 2)
	require.Len(t, perWall["v"], 2)
	assert.Equal(t, "h_1", perWall["h"][0].ID)
	assert.Equal(t, "h_2", perWall["h"][1].ID)
	assert.Equal(t, perWall["h"][0].End, perWall["h"][1].Start)
}

func TestResolve_CrossWithoutSplitKeepsWalls(t *testing.T) {
	topo := Resolve([]models.Wall{
		wall("h", 0, 50, 100, 50),
		wall("v", 50, 0, 50, 100),
	}, false)

	require.Len(t, topo.Junctions, 1)
	assert.Equal(t, models.JunctionCross, topo.Junctions[0].Kind)
	assert.Len(t, topo.Segments, 2)
}

func TestResolve_TJunction(t *testing.T) {
	topo := Resolve([]models.Wall{
		wall("a", 0, 0, 100, 0),
		wall("b", 50, 0, 50, 80),
	}, true)

	require.Len(t, topo.Junctions, 1)
	assert.Equal(t, models.JunctionT, topo.Junctions[0].Kind)

	ids := []string{}
	for _, seg := range topo.Segments {
		ids = append(ids, seg.ID)
	}
	assert.ElementsMatch(t, []string{"a_1", "a_2", "b"}, ids)
}

func TestResolve_ThreeWallsSharingEndpoint(t *testing.T) {
	topo := Resolve([]models.Wall{
		wall("a", 0, 0, 100, 0),
		wall("b", 100, 0, 200, 0),
		wall("c", 100, 0, 100, 100),
	}, true)

	require.Len(t, topo.Junctions, 1)
	assert.Equal(t, models.JunctionT, topo.Junctions[0].Kind)
	assert.Equal(t, []string{"a", "b", "c"}, topo.Junctions[0].WallIDs)
}

func TestResolve_NearEndpointsAreMerged(t *testing.T) {
	topo := Resolve([]models.Wall{
		wall("a", 0, 0, 100, 0),
		wall("b", 100.5, 0.5, 100.5, 100),
	}, true)

	require.Len(t, topo.Junctions, 1)
	assert.Equal(t, models.JunctionCorner, topo.Junctions[0].Kind)

	var aEnd, bStart models.Point
	for _, seg := range topo.Segments {
		switch seg.WallID {
		case "a":
			aEnd = seg.End
		case "b":
			bStart = seg.Start
		}
	}
	assert.Equal(t, aEnd, bStart, "segment endpoints must coincide exactly")
}

func TestResolve_CollinearOverlapWarns(t *testing.T) {
	topo := Resolve([]models.Wall{
		wall("a", 0, 0, 100, 0),
		wall("b", 60, 0, 160, 0),
	}, true)

	require.Len(t, topo.Warnings, 1)
	assert.Equal(t, models.IssueAmbiguousJunction, topo.Warnings[0].Kind)
	require.Len(t, topo.Junctions, 1)
	assert.Equal(t, models.Point{X: 80, Y: 0}, topo.Junctions[0].Position)
	assert.Len(t, topo.Segments, 4)
}

func TestResolve_NegativeThicknessIsNormalized(t *testing.T) {
	positive := []models.Wall{wall("a", 0, 0, 100, 0), wall("b", 100, 0, 100, 100)}
	negative := []models.Wall{wall("a", 0, 0, 100, 0), wall("b", 100, 0, 100, 100)}
	negative[0].Thickness = -10
	negative[1].Thickness = -10

	p := Resolve(positive, true)
	n := Resolve(negative, true)

	assert.Equal(t, p.Junctions, n.Junctions)
	assert.Equal(t, p.Segments, n.Segments)
	for _, seg := range n.Segments {
		assert.Equal(t, 10.0, seg.Thickness)
	}
}

func TestResolve_DegenerateWallIsFiltered(t *testing.T) {
	topo := Resolve([]models.Wall{
		wall("a", 0, 0, 100, 0),
		wall("zero", 100, 0, 100, 0),
	}, true)

	assert.Empty(t, topo.Junctions)
	require.Len(t, topo.Warnings, 1)
	assert.Equal(t, models.IssueDegenerateInput, topo.Warnings[0].Kind)
	assert.Equal(t, "zero", topo.Warnings[0].ElementID)
}

func TestResolve_IsOrderIndependent(t *testing.T) {
	walls := []models.Wall{
		wall("a", 0, 0, 100, 0),
		wall("b", 100, 0, 100, 100),
		wall("c", 100, 100, 0, 100),
		wall("d", 0, 100, 0, 0),
		wall("e", 50, 0, 50, 100),
	}
	permuted := []models.Wall{walls[3], walls[4], walls[1], walls[0], walls[2]}

	first := Resolve(walls, true)
	second := Resolve(permuted, true)

	assert.Equal(t, first, second)
	assert.Equal(t, first, Resolve(walls, true), "repeated calls must be identical")
}

func TestFingerprint(t *testing.T) {
	walls := []models.Wall{wall("a", 0, 0, 100, 0), wall("b", 100, 0, 100, 100)}

	assert.Equal(t, Fingerprint(walls), Fingerprint([]models.Wall{walls[1], walls[0]}))

	moved := []models.Wall{wall("a", 0, 0, 120, 0), walls[1]}
	assert.NotEqual(t, Fingerprint(walls), Fingerprint(moved))
}
