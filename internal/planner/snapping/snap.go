package snapping

import (
	"math"

	"floorplan-core/internal/planner/geometry"
	"floorplan-core/internal/planner/models"
)

// ============================================================
// Snapping Engine
// ============================================================

// kindRank задает порядок при равном расстоянии: конец стены важнее узла, узел важнее середины.
var kindRank = map[models.SnapKind]int{
	models.SnapEndpoint: 0,
	models.SnapJunction: 1,
	models.SnapMidpoint: 2,
}

// Snap приводит позицию указателя к ближайшей геометрической цели.
// Кандидаты (концы, узлы, середины) всегда важнее сетки; сетка используется,
// только если узел сетки ближе tolerance. Иначе возвращается исходная точка.
func Snap(point models.Point, gridSize float64, candidates []models.SnapCandidate, gridEnabled bool, tolerance float64) models.SnapResult {
	if !geometry.IsFinite(point) {
		return models.SnapResult{Point: point}
	}

	if best, ok := nearestCandidate(point, candidates, tolerance); ok {
		return models.SnapResult{
			Point:    best.Point,
			Snapped:  true,
			Kind:     best.Kind,
			SourceID: best.SourceID,
		}
	}

	if gridEnabled && gridSize > 0 {
		g := GridPoint(point, gridSize)
		if geometry.Distance(point, g) <= tolerance {
			return models.SnapResult{Point: g, Snapped: true, Kind: models.SnapGrid}
		}
	}

	return models.SnapResult{Point: point}
}

// GridPoint округляет координаты до ближайшего узла сетки.
func GridPoint(p models.Point, gridSize float64) models.Point {
	if gridSize <= 0 {
		return p
	}
	return models.Point{
		X: math.Round(p.X/gridSize) * gridSize,
		Y: math.Round(p.Y/gridSize) * gridSize,
	}
}

func nearestCandidate(point models.Point, candidates []models.SnapCandidate, tolerance float64) (models.SnapCandidate, bool) {
	var best models.SnapCandidate
	bestDist := math.Inf(1)
	found := false

	for _, c := range candidates {
		rank, ok := kindRank[c.Kind]
		if !ok || !geometry.IsFinite(c.Point) {
			continue // сетка и неизвестные виды не участвуют в приоритетном проходе
		}
		d := geometry.Distance(point, c.Point)
		if d > tolerance {
			continue
		}
		if !found || better(d, rank, c.SourceID, bestDist, kindRank[best.Kind], best.SourceID) {
			best, bestDist, found = c, d, true
		}
	}
	return best, found
}

func better(d float64, rank int, source string, bestDist float64, bestRank int, bestSource string) bool {
	if math.Abs(d-bestDist) > geometry.Epsilon {
		return d < bestDist
	}
	if rank != bestRank {
		return rank < bestRank
	}
	return source < bestSource
}

// AlignToAxis фиксирует рисуемую от anchor стену по горизонтали или вертикали,
// если отклонение от оси не превышает tolerance.
func AlignToAxis(anchor, p models.Point, tolerance float64) (models.Point, bool) {
	dx := math.Abs(p.X - anchor.X)
	dy := math.Abs(p.Y - anchor.Y)

	if dy <= tolerance && dx >= dy {
		return models.Point{X: p.X, Y: anchor.Y}, dy > 0
	}
	if dx <= tolerance {
		return models.Point{X: anchor.X, Y: p.Y}, dx > 0
	}
	return p, false
}
