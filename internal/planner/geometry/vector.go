package geometry

import (
	"math"

	"floorplan-core/internal/planner/models"
)

// ============================================================
// Vector math
// ============================================================

// Epsilon: порог для определителей и сравнения координат.
const Epsilon = 1e-9

func Sub(a, b models.Point) models.Point {
	return models.Point{X: a.X - b.X, Y: a.Y - b.Y}
}

func Add(a, b models.Point) models.Point {
	return models.Point{X: a.X + b.X, Y: a.Y + b.Y}
}

func Scale(p models.Point, k float64) models.Point {
	return models.Point{X: p.X * k, Y: p.Y * k}
}

func Dot(a, b models.Point) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Cross: z-компонента векторного произведения.
func Cross(a, b models.Point) float64 {
	return a.X*b.Y - a.Y*b.X
}

func Length(p models.Point) float64 {
	return math.Hypot(p.X, p.Y)
}

func Distance(a, b models.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func Lerp(a, b models.Point, t float64) models.Point {
	return models.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

func Midpoint(a, b models.Point) models.Point {
	return Lerp(a, b, 0.5)
}

// Angle: направление вектора a→b в радианах.
func Angle(a, b models.Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// Near сравнивает точки с допуском.
func Near(a, b models.Point, tol float64) bool {
	return Distance(a, b) <= tol
}

func IsFinite(p models.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Less задает канонический порядок точек: по X, затем по Y.
func Less(a, b models.Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
