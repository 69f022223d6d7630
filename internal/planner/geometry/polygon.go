package geometry

import (
	"math"

	"floorplan-core/internal/planner/models"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ============================================================
// Polygons
// ============================================================

// SignedArea считает площадь по формуле шнурования. Знак зависит от обхода:
// положительный для обхода против часовой стрелки в осях с Y вверх.
func SignedArea(points []models.Point) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		p := points[i]
		q := points[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// Ring переводит контур в замкнутое кольцо orb.
func Ring(points []models.Point) orb.Ring {
	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	if len(points) > 0 {
		ring = append(ring, orb.Point{points[0].X, points[0].Y})
	}
	return ring
}

// Area: неотрицательная площадь контура.
func Area(points []models.Point) float64 {
	if len(points) < 3 {
		return 0
	}
	return math.Abs(planar.Area(orb.Polygon{Ring(points)}))
}

// Perimeter: сумма длин ребер замкнутого контура.
func Perimeter(points []models.Point) float64 {
	if len(points) < 2 {
		return 0
	}
	return planar.Length(Ring(points))
}

// Centroid: центр масс контура; для вырожденного контура среднее вершин.
func Centroid(points []models.Point) models.Point {
	if len(points) == 0 {
		return models.Point{}
	}
	if len(points) >= 3 && math.Abs(SignedArea(points)) > Epsilon {
		c, _ := planar.CentroidArea(orb.Polygon{Ring(points)})
		return models.Point{X: c[0], Y: c[1]}
	}
	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	return models.Point{X: sumX / float64(len(points)), Y: sumY / float64(len(points))}
}

// Contains проверяет, лежит ли точка внутри контура.
func Contains(points []models.Point, p models.Point) bool {
	if len(points) < 3 {
		return false
	}
	return planar.RingContains(Ring(points), orb.Point{p.X, p.Y})
}

// IsSimple проверяет, что несмежные ребра контура не пересекаются и вершины не повторяются.
func IsSimple(points []models.Point, tol float64) bool {
	n := len(points)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if Near(points[i], points[j], tol) {
				return false
			}
		}
	}
	for i := 0; i < n; i++ {
		a1, a2 := points[i], points[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // смежные через замыкание
			}
			b1, b2 := points[j], points[(j+1)%n]
			if SegmentsCross(a1, a2, b1, b2) {
				return false
			}
		}
	}
	return true
}
