package rooms

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"floorplan-core/internal/planner/geometry"
	"floorplan-core/internal/planner/models"
	"floorplan-core/internal/planner/topology"

	"github.com/google/uuid"
)

// ============================================================
// Room Detector
// ============================================================

const defaultMinArea = 1.0 // Грани меньшей площади считаются вырожденными

var roomNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("floorplan-core/rooms"))

type Options struct {
	Topology topology.Options
	MinArea  float64
}

func DefaultOptions() Options {
	return Options{
		Topology: topology.DefaultOptions(),
		MinArea:  defaultMinArea,
	}
}

// Detect извлекает замкнутые комнаты из набора стен. Никогда не падает:
// при отсутствии замкнутых контуров возвращает пустой список.
func Detect(walls []models.Wall, opts Options) []models.Room {
	topoOpts := opts.Topology
	topoOpts.Split = true
	topo := topology.NewResolver(topoOpts).Resolve(walls)
	return FromTopology(topo, opts)
}

// FromTopology строит комнаты по уже разрешенной топологии.
// Топология должна быть построена с разрезанием сегментов.
func FromTopology(topo models.Topology, opts Options) []models.Room {
	tol := opts.Topology.Tolerance
	if tol <= 0 {
		tol = topology.DefaultOptions().Tolerance
	}
	minArea := opts.MinArea
	if minArea <= 0 {
		minArea = defaultMinArea
	}

	g := newPlanarGraph(tol)
	g.addSegments(topo.Segments)
	g.pruneFilaments()
	g.removeBridges()
	g.buildHalfEdges()

	var rooms []models.Room
	for _, face := range g.faces() {
		if room, ok := g.roomFromFace(face, minArea); ok {
			rooms = append(rooms, room)
		}
	}

	sort.SliceStable(rooms, func(i, j int) bool {
		a, b := rooms[i], rooms[j]
		if a.Points[0] != b.Points[0] {
			return geometry.Less(a.Points[0], b.Points[0])
		}
		return a.Area < b.Area
	})

	if rooms == nil {
		return []models.Room{}
	}
	return rooms
}

// ============================================================
// Planar graph
// ============================================================

type node struct {
	pos models.Point
	out []int // исходящие полуребра, отсортированные по углу
}

type edgeKey struct {
	u, v int
}

type halfEdge struct {
	from, to int
	wallID   string
	twin     int
	angle    float64
	visited  bool
}

type planarGraph struct {
	tol   float64
	nodes []node
	edges map[edgeKey]string // неориентированное ребро (u < v) -> стена
	half  []halfEdge
}

func newPlanarGraph(tol float64) *planarGraph {
	return &planarGraph{
		tol:   tol,
		edges: make(map[edgeKey]string),
	}
}

func (g *planarGraph) addSegments(segments []models.Segment) {
	sorted := append([]models.Segment(nil), segments...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return segmentLess(sorted[i], sorted[j])
	})

	for _, seg := range sorted {
		u := g.findOrCreateNode(seg.Start)
		v := g.findOrCreateNode(seg.End)
		if u == v {
			continue
		}
		key := edgeKey{u: min(u, v), v: max(u, v)}
		// Дубликаты и наложения стен: ребро остается за первой стеной.
		if _, ok := g.edges[key]; ok {
			continue
		}
		g.edges[key] = seg.WallID
	}
}

func (g *planarGraph) findOrCreateNode(p models.Point) int {
	for i, n := range g.nodes {
		if geometry.Distance(n.pos, p) <= g.tol {
			return i
		}
	}
	g.nodes = append(g.nodes, node{pos: p})
	return len(g.nodes) - 1
}

// pruneFilaments удаляет висячие цепочки стен: они не ограничивают ни одну комнату.
func (g *planarGraph) pruneFilaments() {
	for {
		degree := make(map[int]int, len(g.nodes))
		for key := range g.edges {
			degree[key.u]++
			degree[key.v]++
		}

		removed := false
		for key := range g.edges {
			if degree[key.u] < 2 || degree[key.v] < 2 {
				delete(g.edges, key)
				removed = true
			}
		}
		if !removed {
			return
		}
	}
}

// removeBridges удаляет ребра-мосты (обе стороны ребра лежат в одной грани), например
// стену от внешнего контура к колонне. Без них каждая грань обходит простой контур.
func (g *planarGraph) removeBridges() {
	for {
		g.buildHalfEdges()

		faceOf := make([]int, len(g.half))
		for i, face := range g.faces() {
			for _, h := range face {
				faceOf[h] = i + 1
			}
		}

		removed := false
		for h := 0; h < len(g.half); h += 2 {
			e := g.half[h]
			if faceOf[h] != 0 && faceOf[h] == faceOf[e.twin] {
				delete(g.edges, edgeKey{u: e.from, v: e.to})
				removed = true
			}
		}
		if !removed {
			return
		}
		g.pruneFilaments()
	}
}

func (g *planarGraph) buildHalfEdges() {
	for i := range g.nodes {
		g.nodes[i].out = nil
	}

	keys := make([]edgeKey, 0, len(g.edges))
	for key := range g.edges {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].u != keys[j].u {
			return keys[i].u < keys[j].u
		}
		return keys[i].v < keys[j].v
	})

	g.half = make([]halfEdge, 0, len(keys)*2)
	for _, key := range keys {
		wallID := g.edges[key]
		a, b := g.nodes[key.u].pos, g.nodes[key.v].pos
		idx := len(g.half)
		g.half = append(g.half,
			halfEdge{from: key.u, to: key.v, wallID: wallID, twin: idx + 1, angle: geometry.Angle(a, b)},
			halfEdge{from: key.v, to: key.u, wallID: wallID, twin: idx, angle: geometry.Angle(b, a)},
		)
		g.nodes[key.u].out = append(g.nodes[key.u].out, idx)
		g.nodes[key.v].out = append(g.nodes[key.v].out, idx+1)
	}

	for i := range g.nodes {
		out := g.nodes[i].out
		sort.SliceStable(out, func(x, y int) bool {
			return g.half[out[x]].angle < g.half[out[y]].angle
		})
	}
}

// next возвращает следующее полуребро грани: на общем узле берется ребро,
// ближайшее по часовой стрелке к обратному направлению.
func (g *planarGraph) next(h int) int {
	e := g.half[h]
	out := g.nodes[e.to].out
	pos := 0
	for i, idx := range out {
		if idx == e.twin {
			pos = i
			break
		}
	}
	return out[(pos-1+len(out))%len(out)]
}

// faces обходит все полуребра и собирает грани.
func (g *planarGraph) faces() [][]int {
	var result [][]int
	for start := range g.half {
		if g.half[start].visited {
			continue
		}

		var face []int
		cur := start
		for steps := 0; steps <= len(g.half); steps++ {
			g.half[cur].visited = true
			face = append(face, cur)
			cur = g.next(cur)
			if cur == start {
				result = append(result, face)
				break
			}
			if g.half[cur].visited {
				break // незамкнутый обход, отбрасываем
			}
		}
	}
	return result
}

// ============================================================
// Faces to rooms
// ============================================================

type corner struct {
	node   int
	pos    models.Point
	wallID string // стена ребра, выходящего из вершины
}

func (g *planarGraph) roomFromFace(face []int, minArea float64) (models.Room, bool) {
	if len(face) < 3 {
		return models.Room{}, false
	}

	corners := make([]corner, 0, len(face))
	seen := make(map[int]bool, len(face))
	for _, h := range face {
		e := g.half[h]
		if seen[e.from] {
			return models.Room{}, false // грань проходит через узел дважды: контур не простой
		}
		seen[e.from] = true
		corners = append(corners, corner{node: e.from, pos: g.nodes[e.from].pos, wallID: e.wallID})
	}

	points := cornerPoints(corners)
	// Внешняя грань имеет противоположный знак площади.
	if geometry.SignedArea(points) <= minArea {
		return models.Room{}, false
	}

	corners = mergeCollinear(corners)
	corners = rotateToCanonical(corners)
	points = cornerPoints(corners)
	if len(points) < 3 || !geometry.IsSimple(points, geometry.Epsilon) {
		return models.Room{}, false
	}

	return models.Room{
		ID:        roomID(points),
		WallIDs:   boundaryWalls(corners),
		Points:    points,
		Area:      geometry.Area(points),
		Perimeter: geometry.Perimeter(points),
		Centroid:  geometry.Centroid(points),
	}, true
}

// mergeCollinear убирает промежуточные вершины, лежащие на одной стене:
// стена, разрезанная примыканием снаружи комнаты, остается одной стороной контура.
func mergeCollinear(corners []corner) []corner {
	for {
		n := len(corners)
		if n <= 3 {
			return corners
		}

		removed := -1
		for i := 0; i < n; i++ {
			prev := corners[(i-1+n)%n]
			cur := corners[i]
			next := corners[(i+1)%n]
			if prev.wallID != cur.wallID {
				continue
			}
			if isCollinear(prev.pos, cur.pos, next.pos) {
				removed = i
				break
			}
		}
		if removed < 0 {
			return corners
		}
		corners = append(corners[:removed:removed], corners[removed+1:]...)
	}
}

func isCollinear(a, b, c models.Point) bool {
	ab := geometry.Sub(b, a)
	ac := geometry.Sub(c, a)
	l := geometry.Length(ab) * geometry.Length(ac)
	if l == 0 {
		return true
	}
	return math.Abs(geometry.Cross(ab, ac))/l <= 1e-9
}

// rotateToCanonical начинает контур с наименьшей (по X, затем Y) вершины.
func rotateToCanonical(corners []corner) []corner {
	start := 0
	for i := range corners {
		if geometry.Less(corners[i].pos, corners[start].pos) {
			start = i
		}
	}
	out := make([]corner, 0, len(corners))
	out = append(out, corners[start:]...)
	out = append(out, corners[:start]...)
	return out
}

func cornerPoints(corners []corner) []models.Point {
	points := make([]models.Point, len(corners))
	for i, c := range corners {
		points[i] = c.pos
	}
	return points
}

// boundaryWalls: стены контура в порядке обхода без подряд идущих повторов.
func boundaryWalls(corners []corner) []string {
	ids := make([]string, 0, len(corners))
	for _, c := range corners {
		if len(ids) > 0 && ids[len(ids)-1] == c.wallID {
			continue
		}
		ids = append(ids, c.wallID)
	}
	for len(ids) > 1 && ids[0] == ids[len(ids)-1] {
		ids = ids[:len(ids)-1]
	}
	return ids
}

// roomID детерминирован: одна и та же граница всегда дает один и тот же идентификатор.
func roomID(points []models.Point) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts,
			strconv.FormatFloat(p.X, 'f', 6, 64)+","+strconv.FormatFloat(p.Y, 'f', 6, 64))
	}
	return uuid.NewSHA1(roomNamespace, []byte(strings.Join(parts, ";"))).String()
}

func segmentLess(a, b models.Segment) bool {
	a1, a2 := orderedEnds(a)
	b1, b2 := orderedEnds(b)
	if a1 != b1 {
		return geometry.Less(a1, b1)
	}
	if a2 != b2 {
		return geometry.Less(a2, b2)
	}
	if a.WallID != b.WallID {
		return a.WallID < b.WallID
	}
	return a.ID < b.ID
}

func orderedEnds(s models.Segment) (models.Point, models.Point) {
	if geometry.Less(s.End, s.Start) {
		return s.End, s.Start
	}
	return s.Start, s.End
}
