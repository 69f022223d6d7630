package models

// ============================================================
// Elements & openings
// ============================================================

// ElementKind: единственный дискриминант для всех элементов плана.
type ElementKind string

const (
	ElementWall   ElementKind = "wall"
	ElementDoor   ElementKind = "door"
	ElementWindow ElementKind = "window"
	ElementStair  ElementKind = "stair"
)

// IsOpening сообщает, может ли элемент размещаться в проеме стены.
func (k ElementKind) IsOpening() bool {
	switch k {
	case ElementDoor, ElementWindow:
		return true
	case ElementWall, ElementStair:
		return false
	}
	return false
}

type SwingDirection string

const (
	SwingLeft  SwingDirection = "left"
	SwingRight SwingDirection = "right"
)

type WindowStyle string

const (
	WindowCasement WindowStyle = "casement"
	WindowSliding  WindowStyle = "sliding"
	WindowFixed    WindowStyle = "fixed"
)

type DoorSpec struct {
	Swing     SwingDirection `json:"swing" yaml:"swing"`
	OpenAngle float64        `json:"openAngle" yaml:"open_angle"` // градусы
}

type WindowSpec struct {
	Style      WindowStyle `json:"style" yaml:"style"`
	SillHeight float64     `json:"sillHeight" yaml:"sill_height"`
}

// Opening: дверь или окно на стене. Offset отсчитывается от начала стены до начала проема.
type Opening struct {
	ID         string      `json:"id" yaml:"id"`
	HostWallID string      `json:"hostWallId" yaml:"host_wall_id"`
	Kind       ElementKind `json:"kind" yaml:"kind"`
	Offset     float64     `json:"offset" yaml:"offset"`
	Width      float64     `json:"width" yaml:"width"`
	Height     float64     `json:"height" yaml:"height"`
	Door       *DoorSpec   `json:"door,omitempty" yaml:"door,omitempty"`
	Window     *WindowSpec `json:"window,omitempty" yaml:"window,omitempty"`
}

// Span возвращает занятый проемом интервал вдоль стены.
func (o Opening) Span() (float64, float64) {
	return o.Offset, o.Offset + o.Width
}

const defaultDoorOpenAngle = 90.0

// DoorOrDefault возвращает параметры двери, подставляя значения по умолчанию.
func (o Opening) DoorOrDefault() DoorSpec {
	spec := DoorSpec{Swing: SwingLeft, OpenAngle: defaultDoorOpenAngle}
	if o.Door == nil {
		return spec
	}
	if o.Door.Swing != "" {
		spec.Swing = o.Door.Swing
	}
	if o.Door.OpenAngle != 0 {
		spec.OpenAngle = o.Door.OpenAngle
	}
	return spec
}
