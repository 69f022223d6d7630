package topology

import (
	"fmt"
	"math"
	"sort"

	"floorplan-core/internal/planner/geometry"
	"floorplan-core/internal/planner/models"
)

// ============================================================
// Topology Resolver
// ============================================================

const defaultTolerance = 2.0      // Радиус склейки концов стен и точек пересечения
const defaultMinWallLength = 1e-6 // Стены короче считаются вырожденными
const defaultEpsilon = geometry.Epsilon

type Options struct {
	Tolerance     float64 `json:"tolerance"`
	Epsilon       float64 `json:"epsilon"`
	MinWallLength float64 `json:"minWallLength"`
	Split         bool    `json:"split"`
}

func DefaultOptions() Options {
	return Options{
		Tolerance:     defaultTolerance,
		Epsilon:       defaultEpsilon,
		MinWallLength: defaultMinWallLength,
		Split:         true,
	}
}

type Resolver struct {
	opts Options
}

func NewResolver(opts Options) *Resolver {
	if opts.Tolerance <= 0 {
		opts.Tolerance = defaultTolerance
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = defaultEpsilon
	}
	if opts.MinWallLength <= 0 {
		opts.MinWallLength = defaultMinWallLength
	}
	return &Resolver{opts: opts}
}

func (r *Resolver) Options() Options {
	return r.opts
}

// Resolve строит топологию стен: узлы-пересечения с классификацией и (опционально)
// разрезанные сегменты. Входные стены не изменяются; вызов идемпотентен.
func (r *Resolver) Resolve(walls []models.Wall) models.Topology {
	clean, issues := geometry.SanitizeWalls(walls, r.opts.MinWallLength)
	sort.SliceStable(clean, func(i, j int) bool {
		return wallLess(clean[i], clean[j])
	})

	b := newBuild(r.opts, clean)
	b.collect()
	b.sortClusters()

	return models.Topology{
		Version:   Fingerprint(walls),
		Junctions: b.junctions(),
		Segments:  b.segments(r.opts.Split),
		Warnings:  append(issues, b.warnings...),
	}
}

// Resolve: сокращение для разового вызова с настройками по умолчанию.
func Resolve(walls []models.Wall, split bool) models.Topology {
	opts := DefaultOptions()
	opts.Split = split
	return NewResolver(opts).Resolve(walls)
}

// ============================================================
// Pairwise pass
// ============================================================

type build struct {
	opts     Options
	walls    []models.Wall
	lengths  []float64
	clusters []*cluster
	extra    map[int][]models.Point // дополнительные точки разреза (коллинеарные наложения)
	warnings []models.Issue
}

type cluster struct {
	pos     models.Point
	members map[int]bool // индекс стены -> точка лежит внутри пролета стены
}

func newBuild(opts Options, walls []models.Wall) *build {
	lengths := make([]float64, len(walls))
	for i, w := range walls {
		lengths[i] = w.Length()
	}
	return &build{
		opts:    opts,
		walls:   walls,
		lengths: lengths,
		extra:   make(map[int][]models.Point),
	}
}

func (b *build) collect() {
	for i := 0; i < len(b.walls); i++ {
		for j := i + 1; j < len(b.walls); j++ {
			b.pair(i, j)
		}
	}
}

func (b *build) pair(i, j int) {
	a, c := b.walls[i], b.walls[j]
	tol := b.opts.Tolerance

	in := geometry.LineIntersection(a.Start, a.End, c.Start, c.End, b.opts.Epsilon, tol)
	if in.Kind == geometry.IntersectCollinear && b.overlap(i, j) > tol {
		b.collinear(i, j)
		return
	}

	if b.touch(i, j) {
		return
	}

	if in.Kind != geometry.IntersectPoint {
		return
	}
	alongA := in.T * b.lengths[i]
	alongC := in.U * b.lengths[j]
	if alongA <= tol || alongA >= b.lengths[i]-tol {
		return
	}
	if alongC <= tol || alongC >= b.lengths[j]-tol {
		return
	}
	b.addPair(in.Point, i, true, j, true)
}

// touch связывает концы стен друг с другом: общий конец (угол) или конец на пролете (T).
func (b *build) touch(i, j int) bool {
	found := false
	for _, e := range endpoints(b.walls[i]) {
		if b.attachEndpoint(i, e, j) {
			found = true
		}
	}
	for _, e := range endpoints(b.walls[j]) {
		if b.attachEndpoint(j, e, i) {
			found = true
		}
	}
	return found
}

// attachEndpoint привязывает конец e стены i к стене j, если он лежит в пределах допуска.
func (b *build) attachEndpoint(i int, e models.Point, j int) bool {
	w := b.walls[j]
	tol := b.opts.Tolerance

	proj := geometry.Project(e, w.Start, w.End)
	if proj.Distance > tol {
		return false
	}

	switch {
	case proj.Along <= tol:
		b.addPair(geometry.Midpoint(e, w.Start), i, false, j, false)
	case proj.Along >= b.lengths[j]-tol:
		b.addPair(geometry.Midpoint(e, w.End), i, false, j, false)
	default:
		b.addPair(proj.Point, i, false, j, true)
	}
	return true
}

// overlap: длина общего участка двух коллинеарных стен.
func (b *build) overlap(i, j int) float64 {
	a, c := b.walls[i], b.walls[j]
	dir := geometry.Scale(geometry.Sub(a.End, a.Start), 1/b.lengths[i])
	t0 := geometry.Dot(geometry.Sub(c.Start, a.Start), dir)
	t1 := geometry.Dot(geometry.Sub(c.End, a.Start), dir)
	lo := math.Max(0, math.Min(t0, t1))
	hi := math.Min(b.lengths[i], math.Max(t0, t1))
	return hi - lo
}

// collinear обрабатывает наложение стен: узел ставится между ближайшими концами,
// а концы каждой стены, попавшие в пролет другой, становятся точками разреза.
func (b *build) collinear(i, j int) {
	a, c := b.walls[i], b.walls[j]

	best := math.MaxFloat64
	var pa, pc models.Point
	for _, ea := range endpoints(a) {
		for _, ec := range endpoints(c) {
			if d := geometry.Distance(ea, ec); d < best {
				best = d
				pa, pc = ea, ec
			}
		}
	}
	b.addPair(geometry.Midpoint(pa, pc), i, false, j, false)

	for _, e := range endpoints(c) {
		if b.inSpan(e, i) {
			b.extra[i] = append(b.extra[i], geometry.Project(e, a.Start, a.End).Point)
		}
	}
	for _, e := range endpoints(a) {
		if b.inSpan(e, j) {
			b.extra[j] = append(b.extra[j], geometry.Project(e, c.Start, c.End).Point)
		}
	}

	b.warnings = append(b.warnings, models.Issue{
		Kind:      models.IssueAmbiguousJunction,
		Message:   fmt.Sprintf("walls %s and %s overlap collinearly", a.ID, c.ID),
		ElementID: a.ID,
	})
}

func (b *build) inSpan(p models.Point, w int) bool {
	wall := b.walls[w]
	proj := geometry.Project(p, wall.Start, wall.End)
	tol := b.opts.Tolerance
	return proj.Distance <= tol && proj.Along > tol && proj.Along < b.lengths[w]-tol
}

// addPair регистрирует обе стены в узле около pos (ищем существующий узел в радиусе допуска).
func (b *build) addPair(pos models.Point, i int, iInterior bool, j int, jInterior bool) {
	cl := b.findOrCreateCluster(pos)
	cl.add(i, iInterior)
	cl.add(j, jInterior)
}

func (b *build) findOrCreateCluster(p models.Point) *cluster {
	for _, cl := range b.clusters {
		if geometry.Distance(cl.pos, p) <= b.opts.Tolerance {
			return cl
		}
	}
	cl := &cluster{pos: p, members: make(map[int]bool)}
	b.clusters = append(b.clusters, cl)
	return cl
}

// add: если хоть одна проверка видит конец стены в узле, стена считается примыкающей концом.
func (cl *cluster) add(wall int, interior bool) {
	if prev, ok := cl.members[wall]; ok {
		cl.members[wall] = prev && interior
		return
	}
	cl.members[wall] = interior
}

// ============================================================
// Output
// ============================================================

func (b *build) sortClusters() {
	sort.SliceStable(b.clusters, func(i, j int) bool {
		return geometry.Less(b.clusters[i].pos, b.clusters[j].pos)
	})
}

func (b *build) junctions() []models.Junction {
	out := make([]models.Junction, 0, len(b.clusters))
	for idx, cl := range b.clusters {
		ids := make([]string, 0, len(cl.members))
		for w := range cl.members {
			ids = append(ids, b.walls[w].ID)
		}
		sort.Strings(ids)
		ids = uniqueStrings(ids)

		out = append(out, models.Junction{
			ID:       fmt.Sprintf("j%d", idx+1),
			Position: cl.pos,
			WallIDs:  ids,
			Kind:     classify(cl),
		})
	}
	return out
}

// classify: угол (две стены общим концом), T (конец одной стены в пролете другой),
// крест (пересечение во внутренних точках).
func classify(cl *cluster) models.JunctionKind {
	interior := 0
	for _, in := range cl.members {
		if in {
			interior++
		}
	}

	switch {
	case interior >= 2:
		return models.JunctionCross
	case interior == 1:
		return models.JunctionT
	case len(cl.members) <= 2:
		return models.JunctionCorner
	case len(cl.members) == 3:
		return models.JunctionT
	default:
		return models.JunctionCross
	}
}

type cut struct {
	along float64
	pos   models.Point
}

func (b *build) segments(split bool) []models.Segment {
	var result []models.Segment
	tol := b.opts.Tolerance

	for i, w := range b.walls {
		if !split {
			result = append(result, models.Segment{
				ID:        w.ID,
				WallID:    w.ID,
				Start:     w.Start,
				End:       w.End,
				Thickness: w.Thickness,
			})
			continue
		}

		start, end := w.Start, w.End
		var cuts []cut

		for _, cl := range b.clusters {
			interior, ok := cl.members[i]
			if !ok {
				continue
			}
			if interior {
				cuts = append(cuts, cut{along: geometry.Project(cl.pos, w.Start, w.End).Along, pos: cl.pos})
				continue
			}
			// Конец стены подтягиваем к узлу, чтобы сегменты совпадали точно.
			ds := geometry.Distance(cl.pos, w.Start)
			de := geometry.Distance(cl.pos, w.End)
			if ds <= tol && ds <= de {
				start = cl.pos
			} else if de <= tol {
				end = cl.pos
			}
		}
		for _, p := range b.extra[i] {
			cuts = append(cuts, cut{along: geometry.Project(p, w.Start, w.End).Along, pos: p})
		}

		sort.SliceStable(cuts, func(x, y int) bool { return cuts[x].along < cuts[y].along })
		points := make([]cut, 0, len(cuts)+2)
		points = append(points, cut{along: 0, pos: start})
		points = append(points, cuts...)
		points = append(points, cut{along: b.lengths[i], pos: end})
		points = uniqueCuts(points)

		parts := len(points) - 1
		for idx := 0; idx < parts; idx++ {
			p1, p2 := points[idx].pos, points[idx+1].pos
			if geometry.Distance(p1, p2) <= b.opts.Epsilon {
				continue
			}

			segID := w.ID
			if parts > 1 {
				segID = fmt.Sprintf("%s_%d", w.ID, idx+1)
			}

			result = append(result, models.Segment{
				ID:        segID,
				WallID:    w.ID,
				Start:     p1,
				End:       p2,
				Thickness: w.Thickness,
			})
		}
	}

	return result
}

// ============================================================
// Helpers
// ============================================================

func endpoints(w models.Wall) [2]models.Point {
	return [2]models.Point{w.Start, w.End}
}

func uniqueCuts(points []cut) []cut {
	if len(points) == 0 {
		return points
	}
	out := points[:1]
	for i := 1; i < len(points); i++ {
		if !almostEqual(points[i].along, out[len(out)-1].along) {
			out = append(out, points[i])
		}
	}
	return out
}

func uniqueStrings(list []string) []string {
	if len(list) == 0 {
		return list
	}
	out := list[:1]
	for i := 1; i < len(list); i++ {
		if list[i] != list[i-1] {
			out = append(out, list[i])
		}
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func wallLess(a, b models.Wall) bool {
	if a.ID != b.ID {
		return a.ID < b.ID
	}
	if a.Start != b.Start {
		return geometry.Less(a.Start, b.Start)
	}
	return geometry.Less(a.End, b.End)
}
