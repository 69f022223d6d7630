package repository

import (
	"context"
	"path/filepath"
	"testing"

	"floorplan-core/internal/planner/models"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "planner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := New(db)
	require.NoError(t, repo.Init(context.Background(), filepath.Join("..", "..", "..", "migrations")))
	return repo
}

func square() []models.Wall {
	return []models.Wall{
		{ID: "a", Start: models.Point{X: 0, Y: 0}, End: models.Point{X: 100, Y: 0}, Thickness: 10, Height: 300, Type: models.WallExterior},
		{ID: "b", Start: models.Point{X: 100, Y: 0}, End: models.Point{X: 100, Y: 100}, Thickness: 10, Height: 300},
		{ID: "c", Start: models.Point{X: 100, Y: 100}, End: models.Point{X: 0, Y: 100}, Thickness: 10, Height: 300},
		{ID: "d", Start: models.Point{X: 0, Y: 100}, End: models.Point{X: 0, Y: 0}, Thickness: 10, Height: 300},
	}
}

func TestRepository_PlanLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	plan, err := repo.CreatePlan(ctx, "flat")
	require.NoError(t, err)
	assert.Equal(t, "flat", plan.Name)
	assert.NotEmpty(t, plan.CreatedAt)

	got, err := repo.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID)

	_, err = repo.GetPlan(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	snap, err := repo.Snapshot(ctx, plan.ID)
	require.NoError(t, err)
	assert.Empty(t, snap.Walls)
	assert.Empty(t, snap.Openings)
}

func TestRepository_WallsAndOpenings(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	plan, err := repo.CreatePlan(ctx, "flat")
	require.NoError(t, err)

	require.NoError(t, repo.ReplaceWalls(ctx, plan.ID, square()))

	door := models.Opening{
		ID: "d1", HostWallID: "a", Kind: models.ElementDoor, Offset: 20, Width: 80, Height: 215,
		Door: &models.DoorSpec{Swing: models.SwingRight, OpenAngle: 90},
	}
	window := models.Opening{
		ID: "w1", HostWallID: "c", Kind: models.ElementWindow, Offset: 10, Width: 50, Height: 100,
		Window: &models.WindowSpec{Style: models.WindowSliding, SillHeight: 90},
	}
	require.NoError(t, repo.SaveOpening(ctx, plan.ID, door))
	require.NoError(t, repo.SaveOpening(ctx, plan.ID, window))

	snap, err := repo.Snapshot(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, square(), snap.Walls)
	assert.Equal(t, []models.Opening{door, window}, snap.Openings)

	door.Offset = 30
	require.NoError(t, repo.SaveOpening(ctx, plan.ID, door))
	got, err := repo.GetOpening(ctx, plan.ID, "d1")
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.Offset)

	// Проем на несуществующей стене не сохраняется.
	err = repo.SaveOpening(ctx, plan.ID, models.Opening{ID: "x", HostWallID: "zz", Kind: models.ElementDoor, Width: 10})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.DeleteWall(ctx, plan.ID, "a"))
	_, err = repo.GetOpening(ctx, plan.ID, "d1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteWall(ctx, plan.ID, "a"), ErrNotFound)

	// Замена стен удаляет проемы на исчезнувших стенах.
	require.NoError(t, repo.ReplaceWalls(ctx, plan.ID, square()[:2]))
	snap, err = repo.Snapshot(ctx, plan.ID)
	require.NoError(t, err)
	assert.Len(t, snap.Walls, 2)
	assert.Empty(t, snap.Openings)
}

func TestRepository_UnknownPlan(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	assert.ErrorIs(t, repo.ReplaceWalls(ctx, "missing", square()), ErrNotFound)
	_, err := repo.Snapshot(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, repo.Ping(ctx))
}
