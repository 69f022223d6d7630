package geometry

import (
	"math"

	"floorplan-core/internal/planner/models"
)

// ============================================================
// Projection
// ============================================================

// Projection: результат проекции точки на отрезок.
type Projection struct {
	T        float64      // параметр на отрезке до ограничения, 0 в начале, 1 в конце
	Along    float64      // расстояние от начала до ограниченной проекции
	Point    models.Point // ближайшая точка отрезка
	Distance float64      // расстояние от исходной точки до Point
}

// Project проецирует p на отрезок a-b с ограничением параметра в [0, 1].
func Project(p, a, b models.Point) Projection {
	d := Sub(b, a)
	lenSq := Dot(d, d)
	if lenSq == 0 {
		return Projection{Point: a, Distance: Distance(p, a)}
	}

	t := Dot(Sub(p, a), d) / lenSq
	clamped := Clamp(t, 0, 1)
	proj := Lerp(a, b, clamped)

	return Projection{
		T:        t,
		Along:    clamped * math.Sqrt(lenSq),
		Point:    proj,
		Distance: Distance(p, proj),
	}
}

// PerpendicularDistance: расстояние от p до бесконечной прямой a-b.
func PerpendicularDistance(p, a, b models.Point) float64 {
	d := Sub(b, a)
	l := Length(d)
	if l == 0 {
		return Distance(p, a)
	}
	return math.Abs(Cross(d, Sub(p, a))) / l
}

// ============================================================
// Intersection
// ============================================================

type IntersectionKind int

const (
	// Прямые почти параллельны и не лежат на одной линии.
	IntersectParallel IntersectionKind = iota
	// Прямые лежат на одной линии (с учетом допуска).
	IntersectCollinear
	// Прямые пересекаются в одной точке; T и U могут выходить за [0, 1].
	IntersectPoint
)

type Intersection struct {
	Kind  IntersectionKind
	Point models.Point
	T     float64 // параметр на a1-a2
	U     float64 // параметр на b1-b2
}

// LineIntersection ищет пересечение прямых, проходящих через отрезки a1-a2 и b1-b2.
// Почти нулевой нормированный определитель считается параллельностью, а не ошибкой.
// collinearTol: максимальное расстояние между параллельными прямыми, при котором они
// считаются одной линией.
func LineIntersection(a1, a2, b1, b2 models.Point, eps, collinearTol float64) Intersection {
	da := Sub(a2, a1)
	db := Sub(b2, b1)
	la := Length(da)
	lb := Length(db)
	if la == 0 || lb == 0 {
		return Intersection{Kind: IntersectParallel}
	}

	d := Cross(da, db)
	if math.Abs(d)/(la*lb) <= eps {
		if PerpendicularDistance(b1, a1, a2) <= collinearTol && PerpendicularDistance(b2, a1, a2) <= collinearTol {
			return Intersection{Kind: IntersectCollinear}
		}
		return Intersection{Kind: IntersectParallel}
	}

	w := Sub(b1, a1)
	t := Cross(w, db) / d
	u := Cross(w, da) / d

	return Intersection{
		Kind:  IntersectPoint,
		Point: Lerp(a1, a2, t),
		T:     t,
		U:     u,
	}
}

// SegmentsCross проверяет строгое пересечение отрезков во внутренних точках обоих.
func SegmentsCross(a1, a2, b1, b2 models.Point) bool {
	in := LineIntersection(a1, a2, b1, b2, Epsilon, 0)
	if in.Kind != IntersectPoint {
		return false
	}
	return in.T > Epsilon && in.T < 1-Epsilon && in.U > Epsilon && in.U < 1-Epsilon
}
