package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"floorplan-core/internal/planner/models"

	"github.com/google/uuid"
)

// ============================================================
// SQLite Repository
// ============================================================

var ErrNotFound = errors.New("not found")

// Plan: запись о проекте; геометрия хранится в walls/openings.
type Plan struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init применяет миграции: путь может указывать на файл или на каталог с *.sql.
func (r *Repository) Init(ctx context.Context, migrationsPath string) error {
	if err := r.runMigrations(ctx, migrationsPath); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ============================================================
// Plans
// ============================================================

func (r *Repository) CreatePlan(ctx context.Context, name string) (*Plan, error) {
	id := uuid.NewString()
	if _, err := r.db.ExecContext(ctx, `
        INSERT INTO plans (id, name) VALUES (?, ?)
    `, id, name); err != nil {
		return nil, fmt.Errorf("insert plan: %w", err)
	}
	return r.GetPlan(ctx, id)
}

func (r *Repository) GetPlan(ctx context.Context, id string) (*Plan, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, created_at, updated_at
        FROM plans
        WHERE id = ?
    `, id)

	var p Plan
	if err := row.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Snapshot читает стены и проемы плана в порядке их сохранения.
func (r *Repository) Snapshot(ctx context.Context, planID string) (models.Snapshot, error) {
	if _, err := r.GetPlan(ctx, planID); err != nil {
		return models.Snapshot{}, err
	}

	walls, err := r.walls(ctx, planID)
	if err != nil {
		return models.Snapshot{}, err
	}
	openings, err := r.openings(ctx, planID)
	if err != nil {
		return models.Snapshot{}, err
	}
	return models.Snapshot{Walls: walls, Openings: openings}, nil
}

func (r *Repository) walls(ctx context.Context, planID string) ([]models.Wall, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, start_x, start_y, end_x, end_y, thickness, height, type
        FROM walls
        WHERE plan_id = ?
        ORDER BY position, id
    `, planID)
	if err != nil {
		return nil, fmt.Errorf("query walls: %w", err)
	}
	defer rows.Close()

	walls := []models.Wall{}
	for rows.Next() {
		var w models.Wall
		var wallType string
		if err := rows.Scan(&w.ID, &w.Start.X, &w.Start.Y, &w.End.X, &w.End.Y, &w.Thickness, &w.Height, &wallType); err != nil {
			return nil, fmt.Errorf("scan wall: %w", err)
		}
		w.Type = models.WallType(wallType)
		walls = append(walls, w)
	}
	return walls, rows.Err()
}

func (r *Repository) openings(ctx context.Context, planID string) ([]models.Opening, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, host_wall_id, kind, offset_along, width, height, swing, open_angle, window_style, sill_height
        FROM openings
        WHERE plan_id = ?
        ORDER BY id
    `, planID)
	if err != nil {
		return nil, fmt.Errorf("query openings: %w", err)
	}
	defer rows.Close()

	openings := []models.Opening{}
	for rows.Next() {
		o, err := scanOpening(rows)
		if err != nil {
			return nil, err
		}
		openings = append(openings, o)
	}
	return openings, rows.Err()
}

func (r *Repository) GetOpening(ctx context.Context, planID, openingID string) (*models.Opening, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, host_wall_id, kind, offset_along, width, height, swing, open_angle, window_style, sill_height
        FROM openings
        WHERE plan_id = ? AND id = ?
    `, planID, openingID)

	o, err := scanOpening(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOpening(s scanner) (models.Opening, error) {
	var o models.Opening
	var kind string
	var swing, style sql.NullString
	var openAngle, sill sql.NullFloat64

	if err := s.Scan(&o.ID, &o.HostWallID, &kind, &o.Offset, &o.Width, &o.Height, &swing, &openAngle, &style, &sill); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return o, err
		}
		return o, fmt.Errorf("scan opening: %w", err)
	}

	o.Kind = models.ElementKind(kind)
	if swing.Valid || openAngle.Valid {
		o.Door = &models.DoorSpec{Swing: models.SwingDirection(swing.String), OpenAngle: openAngle.Float64}
	}
	if style.Valid || sill.Valid {
		o.Window = &models.WindowSpec{Style: models.WindowStyle(style.String), SillHeight: sill.Float64}
	}
	return o, nil
}

// ============================================================
// Mutations
// ============================================================

// ReplaceWalls заменяет набор стен плана. Проемы на исчезнувших стенах удаляются.
func (r *Repository) ReplaceWalls(ctx context.Context, planID string, walls []models.Wall) error {
	return r.inTx(ctx, planID, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM walls WHERE plan_id = ?`, planID); err != nil {
			return fmt.Errorf("clear walls: %w", err)
		}

		ids := make([]string, 0, len(walls))
		for i, w := range walls {
			if _, err := tx.ExecContext(ctx, `
                INSERT INTO walls (plan_id, id, start_x, start_y, end_x, end_y, thickness, height, type, position)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
            `, planID, w.ID, w.Start.X, w.Start.Y, w.End.X, w.End.Y, w.Thickness, w.Height, string(w.Type), i); err != nil {
				return fmt.Errorf("insert wall %s: %w", w.ID, err)
			}
			ids = append(ids, w.ID)
		}

		return deleteOrphanOpenings(ctx, tx, planID, ids)
	})
}

// DeleteWall удаляет стену вместе с ее проемами.
func (r *Repository) DeleteWall(ctx context.Context, planID, wallID string) error {
	return r.inTx(ctx, planID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM walls WHERE plan_id = ? AND id = ?`, planID, wallID)
		if err != nil {
			return fmt.Errorf("delete wall: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM openings WHERE plan_id = ? AND host_wall_id = ?`, planID, wallID); err != nil {
			return fmt.Errorf("delete wall openings: %w", err)
		}
		return nil
	})
}

// SaveOpening добавляет или обновляет проем. Вызывается только из коммита размещения.
func (r *Repository) SaveOpening(ctx context.Context, planID string, o models.Opening) error {
	var swing, style sql.NullString
	var openAngle, sill sql.NullFloat64
	if o.Door != nil {
		swing = sql.NullString{String: string(o.Door.Swing), Valid: true}
		openAngle = sql.NullFloat64{Float64: o.Door.OpenAngle, Valid: true}
	}
	if o.Window != nil {
		style = sql.NullString{String: string(o.Window.Style), Valid: true}
		sill = sql.NullFloat64{Float64: o.Window.SillHeight, Valid: true}
	}

	return r.inTx(ctx, planID, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM walls WHERE plan_id = ? AND id = ?`, planID, o.HostWallID).Scan(&exists)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("host wall %s: %w", o.HostWallID, ErrNotFound)
			}
			return err
		}

		_, err = tx.ExecContext(ctx, `
            INSERT INTO openings (plan_id, id, host_wall_id, kind, offset_along, width, height, swing, open_angle, window_style, sill_height)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT (plan_id, id) DO UPDATE SET
                host_wall_id = excluded.host_wall_id,
                kind = excluded.kind,
                offset_along = excluded.offset_along,
                width = excluded.width,
                height = excluded.height,
                swing = excluded.swing,
                open_angle = excluded.open_angle,
                window_style = excluded.window_style,
                sill_height = excluded.sill_height
        `, planID, o.ID, o.HostWallID, string(o.Kind), o.Offset, o.Width, o.Height, swing, openAngle, style, sill)
		if err != nil {
			return fmt.Errorf("save opening: %w", err)
		}
		return nil
	})
}

// inTx выполняет fn в транзакции и обновляет updated_at плана.
func (r *Repository) inTx(ctx context.Context, planID string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE plans SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, planID)
	if err != nil {
		return fmt.Errorf("touch plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteOrphanOpenings(ctx context.Context, tx *sql.Tx, planID string, wallIDs []string) error {
	if len(wallIDs) == 0 {
		_, err := tx.ExecContext(ctx, `DELETE FROM openings WHERE plan_id = ?`, planID)
		return err
	}

	args := make([]any, 0, len(wallIDs)+1)
	args = append(args, planID)
	for _, id := range wallIDs {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(wallIDs)), ",")

	_, err := tx.ExecContext(ctx,
		`DELETE FROM openings WHERE plan_id = ? AND host_wall_id NOT IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("delete orphan openings: %w", err)
	}
	return nil
}

// ============================================================
// Migrations
// ============================================================

func (r *Repository) runMigrations(ctx context.Context, migrationsPath string) error {
	info, err := os.Stat(migrationsPath)
	if err != nil {
		return fmt.Errorf("stat migrations: %w", err)
	}

	files := []string{migrationsPath}
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(migrationsPath, "*.sql"))
		if err != nil {
			return fmt.Errorf("list migrations: %w", err)
		}
		sort.Strings(files)
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", filepath.Base(file), err)
		}
		if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", filepath.Base(file), err)
		}
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
