package models

import "math"

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Segment: кусок стены между двумя узлами графа (после разрезания пересечениями).
type Segment struct {
	ID        string  `json:"id"`
	WallID    string  `json:"wallId"`
	Start     Point   `json:"start"`
	End       Point   `json:"end"`
	Thickness float64 `json:"thickness"`
}

// ============================================================
// Walls
// ============================================================

type WallType string

const (
	WallInterior  WallType = "interior"
	WallExterior  WallType = "exterior"
	WallPartition WallType = "partition"
)

type Wall struct {
	ID        string   `json:"id" yaml:"id"`
	Start     Point    `json:"start" yaml:"start"`
	End       Point    `json:"end" yaml:"end"`
	Thickness float64  `json:"thickness" yaml:"thickness"`
	Height    float64  `json:"height" yaml:"height"`
	Type      WallType `json:"type,omitempty" yaml:"type,omitempty"`
}

// Normalized возвращает копию стены с неотрицательной толщиной.
func (w Wall) Normalized() Wall {
	w.Thickness = math.Abs(w.Thickness)
	return w
}

func (w Wall) Length() float64 {
	return math.Hypot(w.End.X-w.Start.X, w.End.Y-w.Start.Y)
}

// ============================================================
// Topology
// ============================================================

type JunctionKind string

const (
	JunctionCorner JunctionKind = "corner"
	JunctionT      JunctionKind = "t_junction"
	JunctionCross  JunctionKind = "cross"
)

type Junction struct {
	ID       string       `json:"id"`
	Position Point        `json:"position"`
	WallIDs  []string     `json:"memberWallIds"`
	Kind     JunctionKind `json:"kind"`
}

type Topology struct {
	Version   string     `json:"version"`
	Junctions []Junction `json:"junctions"`
	Segments  []Segment  `json:"splitSegments"`
	Warnings  []Issue    `json:"warnings,omitempty"`
}

// ============================================================
// Rooms
// ============================================================

type Room struct {
	ID        string   `json:"id"`
	WallIDs   []string `json:"boundaryWallIds"`
	Points    []Point  `json:"points"`
	Area      float64  `json:"area"`
	Perimeter float64  `json:"perimeter"`
	Centroid  Point    `json:"centroid"`
}

// ============================================================
// Snapping
// ============================================================

type SnapKind string

const (
	SnapNone     SnapKind = ""
	SnapEndpoint SnapKind = "endpoint"
	SnapJunction SnapKind = "junction"
	SnapMidpoint SnapKind = "midpoint"
	SnapGrid     SnapKind = "grid"
)

type SnapCandidate struct {
	Point    Point    `json:"point"`
	Kind     SnapKind `json:"kind"`
	SourceID string   `json:"sourceId,omitempty"`
}

type SnapResult struct {
	Point    Point    `json:"point"`
	Snapped  bool     `json:"snapped"`
	Kind     SnapKind `json:"kind,omitempty"`
	SourceID string   `json:"sourceId,omitempty"`
}

// Snapshot: неизменяемый срез состояния проекта, который получает ядро.
type Snapshot struct {
	Walls    []Wall    `json:"walls" yaml:"walls"`
	Openings []Opening `json:"openings" yaml:"openings"`
}
