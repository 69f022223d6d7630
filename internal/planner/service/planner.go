package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"floorplan-core/internal/common/config"
	"floorplan-core/internal/planner/models"
	"floorplan-core/internal/planner/openings"
	"floorplan-core/internal/planner/repository"
	"floorplan-core/internal/planner/rooms"
	"floorplan-core/internal/planner/snapping"
	"floorplan-core/internal/planner/topology"
)

// ============================================================
// Planner Service
// ============================================================

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotADoor     = errors.New("opening has no swing")
)

// Store: хранилище состояния проекта. Ядро в него не пишет, пишет только хост при коммите.
type Store interface {
	Ping(ctx context.Context) error
	CreatePlan(ctx context.Context, name string) (*repository.Plan, error)
	GetPlan(ctx context.Context, id string) (*repository.Plan, error)
	Snapshot(ctx context.Context, planID string) (models.Snapshot, error)
	ReplaceWalls(ctx context.Context, planID string, walls []models.Wall) error
	DeleteWall(ctx context.Context, planID, wallID string) error
	SaveOpening(ctx context.Context, planID string, o models.Opening) error
	GetOpening(ctx context.Context, planID, openingID string) (*models.Opening, error)
}

type Planner struct {
	store      Store
	settings   config.Settings
	cache      *TopologyCache
	placements *PlacementManager

	animMu     sync.Mutex
	animations map[string]*openings.AnimationRegistry // planID -> registry
}

func NewPlanner(store Store, settings config.Settings) *Planner {
	p := &Planner{
		store:      store,
		settings:   settings,
		placements: NewPlacementManager(),
		animations: make(map[string]*openings.AnimationRegistry),
	}
	p.cache = NewTopologyCache(defaultCacheCapacity, topology.NewResolver(p.TopologyOptions()))
	return p
}

func (p *Planner) Settings() config.Settings {
	return p.settings
}

func (p *Planner) Placements() *PlacementManager {
	return p.placements
}

func (p *Planner) CacheStats() CacheStats {
	return p.cache.Stats()
}

func (p *Planner) Ready(ctx context.Context) error {
	return p.store.Ping(ctx)
}

// ============================================================
// Options from settings
// ============================================================

func (p *Planner) TopologyOptions() topology.Options {
	opts := topology.DefaultOptions()
	opts.Tolerance = p.settings.JunctionTolerance
	opts.MinWallLength = p.settings.MinWallLength
	opts.Split = true
	return opts
}

func (p *Planner) RoomOptions() rooms.Options {
	return rooms.Options{
		Topology: p.TopologyOptions(),
		MinArea:  p.settings.MinRoomArea,
	}
}

func (p *Planner) OpeningOptions() openings.Options {
	return openings.Options{
		SnapTolerance:   p.settings.SnapTolerance,
		CornerClearance: p.settings.CornerClearance,
		Clearance:       p.settings.OpeningClearance,
		MinWallLength:   p.settings.MinWallLength,
		Policy:          openings.Policy(p.settings.PlacementPolicy),
	}
}

// ============================================================
// Stateless geometry
// ============================================================

func (p *Planner) Topology(walls []models.Wall) models.Topology {
	return p.cache.Resolve(walls)
}

func (p *Planner) Rooms(walls []models.Wall) []models.Room {
	return rooms.FromTopology(p.cache.Resolve(walls), p.RoomOptions())
}

// SnapQuery: запрос привязки; пустые поля берутся из настроек.
type SnapQuery struct {
	Point       models.Point  `json:"point"`
	GridEnabled *bool         `json:"gridEnabled,omitempty"`
	GridSize    *float64      `json:"gridSize,omitempty"`
	Tolerance   *float64      `json:"tolerance,omitempty"`
	Anchor      *models.Point `json:"anchor,omitempty"`
}

func (p *Planner) Snap(walls []models.Wall, q SnapQuery) models.SnapResult {
	gridEnabled := p.settings.GridEnabled
	if q.GridEnabled != nil {
		gridEnabled = *q.GridEnabled
	}
	gridSize := p.settings.GridSize
	if q.GridSize != nil {
		gridSize = *q.GridSize
	}
	tolerance := p.settings.SnapTolerance
	if q.Tolerance != nil {
		tolerance = *q.Tolerance
	}

	point := q.Point
	if q.Anchor != nil {
		point, _ = snapping.AlignToAxis(*q.Anchor, point, tolerance)
	}

	candidates := snapping.Candidates(walls, p.cache.Resolve(walls))
	return snapping.Snap(point, gridSize, candidates, gridEnabled, tolerance)
}

// OpeningQuery: проверка проема без сессии.
type OpeningQuery struct {
	Point    models.Point `json:"point"`
	Width    float64      `json:"width"`
	Policy   string       `json:"policy,omitempty"`
	IgnoreID string       `json:"ignoreId,omitempty"`
}

func (p *Planner) ValidateOpening(snap models.Snapshot, q OpeningQuery) (openings.Validation, error) {
	opts := p.OpeningOptions()
	if q.Policy != "" {
		policy := openings.Policy(q.Policy)
		if !policy.Valid() {
			return openings.Validation{}, fmt.Errorf("%w: unknown policy %q", ErrInvalidInput, q.Policy)
		}
		opts.Policy = policy
	}
	opts.IgnoreID = q.IgnoreID
	return openings.Validate(q.Point, q.Width, snap.Walls, snap.Openings, opts), nil
}

// ============================================================
// Plans
// ============================================================

type PlanView struct {
	Plan     *repository.Plan `json:"plan"`
	Snapshot models.Snapshot  `json:"snapshot"`
}

func (p *Planner) CreatePlan(ctx context.Context, name string) (*repository.Plan, error) {
	if name == "" {
		name = "Untitled plan"
	}
	plan, err := p.store.CreatePlan(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	log.Printf("[PLANNER] Plan %s created", plan.ID)
	return plan, nil
}

func (p *Planner) Plan(ctx context.Context, planID string) (*PlanView, error) {
	plan, err := p.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	snap, err := p.store.Snapshot(ctx, planID)
	if err != nil {
		return nil, err
	}
	return &PlanView{Plan: plan, Snapshot: snap}, nil
}

// ReplaceWalls сохраняет новый набор стен и возвращает его топологию (с предупреждениями).
func (p *Planner) ReplaceWalls(ctx context.Context, planID string, walls []models.Wall) (models.Topology, error) {
	seen := make(map[string]bool, len(walls))
	for _, w := range walls {
		if w.ID == "" {
			return models.Topology{}, fmt.Errorf("%w: wall without id", ErrInvalidInput)
		}
		if seen[w.ID] {
			return models.Topology{}, fmt.Errorf("%w: duplicate wall id %q", ErrInvalidInput, w.ID)
		}
		seen[w.ID] = true
	}

	if err := p.store.ReplaceWalls(ctx, planID, walls); err != nil {
		return models.Topology{}, err
	}

	topo := p.cache.Resolve(walls)
	for _, w := range topo.Warnings {
		log.Printf("[PLANNER] Plan %s: %s (%s)", planID, w.String(), w.Kind)
	}
	return topo, nil
}

func (p *Planner) DeleteWall(ctx context.Context, planID, wallID string) error {
	return p.store.DeleteWall(ctx, planID, wallID)
}

func (p *Planner) PlanTopology(ctx context.Context, planID string) (models.Topology, error) {
	snap, err := p.store.Snapshot(ctx, planID)
	if err != nil {
		return models.Topology{}, err
	}
	return p.Topology(snap.Walls), nil
}

func (p *Planner) PlanRooms(ctx context.Context, planID string) ([]models.Room, error) {
	snap, err := p.store.Snapshot(ctx, planID)
	if err != nil {
		return nil, err
	}
	return p.Rooms(snap.Walls), nil
}

func (p *Planner) PlanSnap(ctx context.Context, planID string, q SnapQuery) (models.SnapResult, error) {
	snap, err := p.store.Snapshot(ctx, planID)
	if err != nil {
		return models.SnapResult{}, err
	}
	return p.Snap(snap.Walls, q), nil
}

// ============================================================
// Placement
// ============================================================

// PlacementRequest открывает размещение нового проема или перемещение существующего (OpeningID).
type PlacementRequest struct {
	Kind      models.ElementKind `json:"kind"`
	Width     float64            `json:"width,omitempty"`
	Height    float64            `json:"height,omitempty"`
	OpeningID string             `json:"openingId,omitempty"`
	Policy    string             `json:"policy,omitempty"`
}

type PlacementTicket struct {
	SessionID string             `json:"sessionId"`
	OpeningID string             `json:"openingId"`
	Kind      models.ElementKind `json:"kind"`
	Width     float64            `json:"width"`
	State     openings.State     `json:"state"`
}

func (p *Planner) BeginPlacement(ctx context.Context, planID string, req PlacementRequest) (*PlacementTicket, error) {
	if _, err := p.store.GetPlan(ctx, planID); err != nil {
		return nil, err
	}

	opts := p.OpeningOptions()
	if req.Policy != "" {
		policy := openings.Policy(req.Policy)
		if !policy.Valid() {
			return nil, fmt.Errorf("%w: unknown policy %q", ErrInvalidInput, req.Policy)
		}
		opts.Policy = policy
	}

	var tmpl openings.Template
	if req.OpeningID != "" {
		existing, err := p.store.GetOpening(ctx, planID, req.OpeningID)
		if err != nil {
			return nil, err
		}
		tmpl = openings.Template{
			OpeningID: existing.ID,
			Kind:      existing.Kind,
			Width:     existing.Width,
			Height:    existing.Height,
			Door:      existing.Door,
			Window:    existing.Window,
		}
	} else {
		if !req.Kind.IsOpening() {
			return nil, fmt.Errorf("%w: kind %q cannot be placed in a wall", ErrInvalidInput, req.Kind)
		}
		tmpl = openings.DefaultTemplate(req.Kind)
	}
	if req.Width > 0 {
		tmpl.Width = req.Width
	}
	if req.Height > 0 {
		tmpl.Height = req.Height
	}

	s := p.placements.Begin(planID, tmpl, opts)
	return &PlacementTicket{
		SessionID: s.ID,
		OpeningID: s.Template().OpeningID,
		Kind:      tmpl.Kind,
		Width:     tmpl.Width,
		State:     s.State(),
	}, nil
}

func (p *Planner) PreviewPlacement(ctx context.Context, planID, sessionID string, point models.Point) (openings.Validation, error) {
	snap, err := p.store.Snapshot(ctx, planID)
	if err != nil {
		return openings.Validation{}, err
	}
	return p.placements.Preview(planID, sessionID, point, snap)
}

// CommitPlacement: единственная точка, где размещение попадает в хранилище.
// Перед записью размещение проверяется по текущему состоянию плана.
func (p *Planner) CommitPlacement(ctx context.Context, planID, sessionID string) (models.Opening, error) {
	load := func() (models.Snapshot, error) {
		return p.store.Snapshot(ctx, planID)
	}
	return p.placements.Commit(planID, sessionID, load, func(o models.Opening) error {
		return p.store.SaveOpening(ctx, planID, o)
	})
}

func (p *Planner) CancelPlacement(planID, sessionID string) error {
	return p.placements.Cancel(planID, sessionID)
}

// ============================================================
// Door animation
// ============================================================

func (p *Planner) registry(planID string) *openings.AnimationRegistry {
	p.animMu.Lock()
	defer p.animMu.Unlock()

	r, ok := p.animations[planID]
	if !ok {
		r = openings.NewAnimationRegistry()
		p.animations[planID] = r
	}
	return r
}

// ToggleOpening переключает створку двери и возвращает крайние углы для анимации.
func (p *Planner) ToggleOpening(ctx context.Context, planID, openingID string) (openings.AnimationState, error) {
	op, err := p.store.GetOpening(ctx, planID, openingID)
	if err != nil {
		return openings.AnimationState{}, err
	}
	snap, err := p.store.Snapshot(ctx, planID)
	if err != nil {
		return openings.AnimationState{}, err
	}

	var host *models.Wall
	for i := range snap.Walls {
		if snap.Walls[i].ID == op.HostWallID {
			host = &snap.Walls[i]
			break
		}
	}
	if host == nil {
		return openings.AnimationState{}, fmt.Errorf("host wall %s: %w", op.HostWallID, repository.ErrNotFound)
	}

	geom := openings.ComputeGeometry(*op, *host)
	if geom.Swing == nil {
		return openings.AnimationState{}, ErrNotADoor
	}
	return p.registry(planID).Toggle(openingID, *geom.Swing), nil
}

func (p *Planner) AnimationStates(planID string) []openings.AnimationState {
	return p.registry(planID).Snapshot()
}

func (p *Planner) ResetAnimations(planID string) {
	p.registry(planID).ResetAll()
}
