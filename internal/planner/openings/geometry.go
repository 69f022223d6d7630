package openings

import (
	"math"

	"floorplan-core/internal/planner/geometry"
	"floorplan-core/internal/planner/models"
)

// ============================================================
// Opening geometry
// ============================================================

// SwingAngles: крайние углы створки двери в градусах. Анимацию между ними ведет хост.
type SwingAngles struct {
	Direction   models.SwingDirection `json:"direction"`
	ClosedAngle float64               `json:"closedAngle"`
	OpenAngle   float64               `json:"openAngle"`
}

type OpeningGeometry struct {
	OpeningID     string         `json:"openingId"`
	WorldPosition models.Point   `json:"worldPosition"`
	Rotation      float64        `json:"rotation"` // градусы, направление стены
	Segment       models.Segment `json:"segment"`
	Footprint     []models.Point `json:"footprint"`
	Swing         *SwingAngles   `json:"swing,omitempty"`
	Issues        []models.Issue `json:"issues,omitempty"`
}

// ComputeGeometry переводит проем из координат стены в координаты плана.
// Смещение и ширина обрезаются по длине стены; проблемы возвращаются в Issues.
func ComputeGeometry(opening models.Opening, wall models.Wall) OpeningGeometry {
	wall = wall.Normalized()
	g := OpeningGeometry{OpeningID: opening.ID}

	if !opening.Kind.IsOpening() {
		g.Issues = append(g.Issues, models.Issue{
			Kind:      models.IssueUnsupportedKind,
			Message:   "element kind " + string(opening.Kind) + " cannot be hosted in a wall",
			ElementID: opening.ID,
		})
	}
	if opening.HostWallID != "" && opening.HostWallID != wall.ID {
		g.Issues = append(g.Issues, models.Issue{
			Kind:      models.IssueNoHostWall,
			Message:   "opening is hosted on " + opening.HostWallID + ", not " + wall.ID,
			ElementID: opening.ID,
		})
	}

	length := wall.Length()
	if !geometry.IsFinite(wall.Start) || !geometry.IsFinite(wall.End) || length <= geometry.Epsilon {
		g.Issues = append(g.Issues, models.Issue{
			Kind:      models.IssueDegenerateInput,
			Message:   "host wall is degenerate",
			ElementID: wall.ID,
		})
		g.WorldPosition = wall.Start
		g.Segment = models.Segment{ID: opening.ID, WallID: wall.ID, Start: wall.Start, End: wall.Start, Thickness: wall.Thickness}
		return g
	}

	startAlong := geometry.Clamp(opening.Offset, 0, length)
	endAlong := geometry.Clamp(opening.Offset+opening.Width, startAlong, length)
	start := geometry.Lerp(wall.Start, wall.End, startAlong/length)
	end := geometry.Lerp(wall.Start, wall.End, endAlong/length)

	g.WorldPosition = geometry.Midpoint(start, end)
	g.Rotation = geometry.Angle(wall.Start, wall.End) * 180 / math.Pi
	g.Segment = models.Segment{
		ID:        opening.ID,
		WallID:    wall.ID,
		Start:     start,
		End:       end,
		Thickness: wall.Thickness,
	}
	g.Footprint = rectanglePoints(g.WorldPosition, endAlong-startAlong, wall.Thickness, g.Rotation)

	if opening.Kind == models.ElementDoor {
		door := opening.DoorOrDefault()
		swing := &SwingAngles{Direction: door.Swing, ClosedAngle: g.Rotation}
		if door.Swing == models.SwingRight {
			swing.OpenAngle = g.Rotation - door.OpenAngle
		} else {
			swing.OpenAngle = g.Rotation + door.OpenAngle
		}
		g.Swing = swing
	}

	return g
}

// rectanglePoints: углы прямоугольника width x height с центром c, повернутого на rotationDeg.
func rectanglePoints(c models.Point, width, height, rotationDeg float64) []models.Point {
	halfW := width / 2
	halfH := height / 2

	points := []models.Point{
		{X: c.X - halfW, Y: c.Y - halfH},
		{X: c.X + halfW, Y: c.Y - halfH},
		{X: c.X + halfW, Y: c.Y + halfH},
		{X: c.X - halfW, Y: c.Y + halfH},
	}

	if rotationDeg == 0 {
		return points
	}

	rad := rotationDeg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)

	for i, p := range points {
		d := geometry.Sub(p, c)
		points[i] = models.Point{
			X: c.X + d.X*cos - d.Y*sin,
			Y: c.Y + d.X*sin + d.Y*cos,
		}
	}

	return points
}
