package openings

import (
	"math"
	"testing"

	"floorplan-core/internal/planner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostWall(length float64) []models.Wall {
	return []models.Wall{{
		ID:        "w1",
		Start:     models.Point{X: 0, Y: 0},
		End:       models.Point{X: length, Y: 0},
		Thickness: 10,
		Height:    300,
	}}
}

func door(id string, offset, width float64) models.Opening {
	return models.Opening{ID: id, HostWallID: "w1", Kind: models.ElementDoor, Offset: offset, Width: width, Height: 215}
}

func TestValidate_OversizedOpeningIsHardInvalid(t *testing.T) {
	for _, policy := range []Policy{PolicyAutoClamp, PolicyReject} {
		t.Run(string(policy), func(t *testing.T) {
			opts := DefaultOptions()
			opts.CornerClearance = 10
			opts.Policy = policy

			v := Validate(models.Point{X: 50, Y: 0}, 80, hostWall(100), nil, opts)

			assert.False(t, v.IsValid)
			assert.Equal(t, "w1", v.WallID)
			assert.Nil(t, v.Position)
			require.Len(t, v.Issues, 1)
			assert.Equal(t, models.IssueOversizedOpening, v.Issues[0].Kind)
			assert.Len(t, v.Errors, 1)
		})
	}
}

func TestValidate_MidpointFits(t *testing.T) {
	opts := DefaultOptions()
	opts.CornerClearance = 10

	v := Validate(models.Point{X: 50, Y: 3}, 60, hostWall(100), nil, opts)

	require.True(t, v.IsValid, v.Errors)
	require.NotNil(t, v.Position)
	assert.InDelta(t, 20, *v.Position, 1e-9)
	assert.False(t, v.Clamped)
	assert.Empty(t, v.Errors)
	assert.Empty(t, v.Warnings)
}

func TestValidate_OverlapWithExistingOpening(t *testing.T) {
	existing := []models.Opening{door("d1", 40, 20)}
	opts := DefaultOptions()
	opts.CornerClearance = 10
	opts.Clearance = 5
	opts.Policy = PolicyReject

	v := Validate(models.Point{X: 50, Y: 0}, 20, hostWall(100), existing, opts)

	assert.False(t, v.IsValid)
	require.Len(t, v.Issues, 1)
	assert.Equal(t, models.IssueOpeningOverlap, v.Issues[0].Kind)
	require.NotNil(t, v.Nearest)
	assert.InDelta(t, 15, *v.Nearest, 1e-9)

	// Проем у границы зазора [35, 65] допустим с обеих сторон.
	left := Validate(models.Point{X: 25, Y: 0}, 20, hostWall(100), existing, opts)
	assert.True(t, left.IsValid, left.Errors)
	right := Validate(models.Point{X: 75, Y: 0}, 20, hostWall(100), existing, opts)
	assert.True(t, right.IsValid, right.Errors)
}

func TestValidate_AutoClampRelocates(t *testing.T) {
	existing := []models.Opening{door("d1", 40, 20)}
	opts := DefaultOptions()
	opts.CornerClearance = 10
	opts.Clearance = 5
	opts.Policy = PolicyAutoClamp

	v := Validate(models.Point{X: 52, Y: 0}, 20, hostWall(100), existing, opts)

	require.True(t, v.IsValid)
	assert.True(t, v.Clamped)
	require.NotNil(t, v.Position)
	assert.InDelta(t, 65, *v.Position, 1e-9)
	assert.InDelta(t, 42, v.Requested, 1e-9)
	assert.Len(t, v.Warnings, 1)
	assert.Empty(t, v.Errors)

	// IsValid относится к сдвинутому размещению: сам запрошенный интервал занят.
	opts.Policy = PolicyReject
	requested := Validate(models.Point{X: 52, Y: 0}, 20, hostWall(100), existing, opts)
	assert.False(t, requested.IsValid)
	require.NotNil(t, requested.Position)
	assert.InDelta(t, v.Requested, *requested.Position, 1e-9)
	require.NotNil(t, requested.Nearest)
	assert.InDelta(t, *v.Position, *requested.Nearest, 1e-9)
}

func TestValidate_CornerClearance(t *testing.T) {
	opts := DefaultOptions()
	opts.CornerClearance = 10

	v := Validate(models.Point{X: 5, Y: 0}, 20, hostWall(100), nil, opts)
	require.True(t, v.IsValid)
	assert.InDelta(t, 10, *v.Position, 1e-9)
	assert.Equal(t, models.IssueCornerClearance, v.Issues[0].Kind)

	opts.Policy = PolicyReject
	v = Validate(models.Point{X: 98, Y: 0}, 20, hostWall(100), nil, opts)
	assert.False(t, v.IsValid)
	assert.Equal(t, models.IssueCornerClearance, v.Issues[0].Kind)
	require.NotNil(t, v.Nearest)
	assert.InDelta(t, 70, *v.Nearest, 1e-9)
}

func TestValidate_IgnoresMovedOpening(t *testing.T) {
	existing := []models.Opening{door("d1", 40, 20)}
	opts := DefaultOptions()
	opts.Policy = PolicyReject
	opts.IgnoreID = "d1"

	v := Validate(models.Point{X: 52, Y: 0}, 20, hostWall(100), existing, opts)

	assert.True(t, v.IsValid, v.Errors)
}

func TestValidate_NoHostWall(t *testing.T) {
	v := Validate(models.Point{X: 50, Y: 80}, 20, hostWall(100), nil, DefaultOptions())

	assert.False(t, v.IsValid)
	assert.Empty(t, v.WallID)
	require.Len(t, v.Issues, 1)
	assert.Equal(t, models.IssueNoHostWall, v.Issues[0].Kind)
}

func TestValidate_PicksNearestWall(t *testing.T) {
	walls := append(hostWall(100), models.Wall{
		ID: "w2", Start: models.Point{X: 0, Y: 12}, End: models.Point{X: 100, Y: 12}, Thickness: 10,
	})

	v := Validate(models.Point{X: 50, Y: 8}, 20, walls, nil, DefaultOptions())

	assert.Equal(t, "w2", v.WallID)
}

func TestValidate_InvalidWidth(t *testing.T) {
	for _, width := range []float64{0, -10} {
		v := Validate(models.Point{X: 50, Y: 0}, width, hostWall(100), nil, DefaultOptions())
		assert.False(t, v.IsValid)
		assert.Equal(t, models.IssueInvalidWidth, v.Issues[0].Kind)
	}
}

func TestCanPlace_NeverViolatesCornerClearance(t *testing.T) {
	const length = 100.0
	existing := []models.Opening{door("d1", 55, 10)}

	for _, policy := range []Policy{PolicyAutoClamp, PolicyReject} {
		opts := DefaultOptions()
		opts.CornerClearance = 10
		opts.Clearance = 5
		opts.Policy = policy

		for _, width := range []float64{5, 20, 35, 80} {
			for x := -20.0; x <= 120; x += 2.5 {
				wallID, offset, ok := CanPlace(models.Point{X: x, Y: 1}, width, hostWall(length), existing, opts)
				if !ok {
					continue
				}
				assert.Equal(t, "w1", wallID)
				assert.GreaterOrEqual(t, offset, opts.CornerClearance, "x=%v width=%v", x, width)
				assert.LessOrEqual(t, offset+width, length-opts.CornerClearance, "x=%v width=%v", x, width)
				assert.False(t, offset < 70 && offset+width > 50, "overlaps occupied span: x=%v width=%v", x, width)
			}
		}
	}
}

func TestValidate_SkipsNonFiniteOpenings(t *testing.T) {
	testCases := []struct {
		name     string
		existing models.Opening
	}{
		{name: "nan offset", existing: door("bad", math.NaN(), 20)},
		{name: "inf offset", existing: door("bad", math.Inf(1), 20)},
		{name: "nan width", existing: door("bad", 40, math.NaN())},
		{name: "negative width", existing: door("bad", 40, -20)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.CornerClearance = 10

			v := Validate(models.Point{X: 95, Y: 0}, 20, hostWall(100), []models.Opening{tc.existing}, opts)

			require.True(t, v.IsValid, v.Errors)
			require.NotNil(t, v.Position)
			assert.InDelta(t, 70, *v.Position, 1e-9)
			assert.LessOrEqual(t, *v.Position+20, 90.0)

			var degenerate int
			for _, issue := range v.Issues {
				if issue.Kind == models.IssueDegenerateInput {
					degenerate++
					assert.Equal(t, "bad", issue.ElementID)
				}
			}
			assert.Equal(t, 1, degenerate)

			_, offset, ok := CanPlace(models.Point{X: 95, Y: 0}, 20, hostWall(100), []models.Opening{tc.existing}, opts)
			require.True(t, ok)
			assert.LessOrEqual(t, offset+20, 90.0)
		})
	}
}

func TestComputeGeometry(t *testing.T) {
	wall := models.Wall{ID: "w1", Start: models.Point{X: 0, Y: 0}, End: models.Point{X: 0, Y: 200}, Thickness: -10}
	op := models.Opening{
		ID: "d1", HostWallID: "w1", Kind: models.ElementDoor, Offset: 40, Width: 80,
		Door: &models.DoorSpec{Swing: models.SwingRight, OpenAngle: 90},
	}

	g := ComputeGeometry(op, wall)

	assert.Empty(t, g.Issues)
	assert.InDelta(t, 0, g.WorldPosition.X, 1e-9)
	assert.InDelta(t, 80, g.WorldPosition.Y, 1e-9)
	assert.InDelta(t, 90, g.Rotation, 1e-9)
	assert.InDelta(t, 40, g.Segment.Start.Y, 1e-9)
	assert.InDelta(t, 120, g.Segment.End.Y, 1e-9)
	assert.Equal(t, 10.0, g.Segment.Thickness)

	require.Len(t, g.Footprint, 4)
	for _, p := range g.Footprint {
		assert.InDelta(t, 5, abs(p.X), 1e-9)
		assert.InDelta(t, 40, abs(p.Y-80), 1e-9)
	}

	require.NotNil(t, g.Swing)
	assert.Equal(t, models.SwingRight, g.Swing.Direction)
	assert.InDelta(t, 90, g.Swing.ClosedAngle, 1e-9)
	assert.InDelta(t, 0, g.Swing.OpenAngle, 1e-9)
}

func TestComputeGeometry_WindowHasNoSwing(t *testing.T) {
	wall := hostWall(100)[0]
	g := ComputeGeometry(models.Opening{ID: "win", HostWallID: "w1", Kind: models.ElementWindow, Offset: 10, Width: 30}, wall)

	assert.Nil(t, g.Swing)
	assert.InDelta(t, 25, g.WorldPosition.X, 1e-9)
}

func TestComputeGeometry_ReportsProblems(t *testing.T) {
	wall := models.Wall{ID: "w1", Start: models.Point{X: 5, Y: 5}, End: models.Point{X: 5, Y: 5}}
	g := ComputeGeometry(models.Opening{ID: "s", HostWallID: "other", Kind: models.ElementStair, Width: 10}, wall)

	kinds := []models.IssueKind{}
	for _, issue := range g.Issues {
		kinds = append(kinds, issue.Kind)
	}
	assert.ElementsMatch(t, []models.IssueKind{
		models.IssueUnsupportedKind, models.IssueNoHostWall, models.IssueDegenerateInput,
	}, kinds)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
