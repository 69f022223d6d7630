package openings

import (
	"errors"
	"fmt"
	"math"

	"floorplan-core/internal/planner/geometry"
	"floorplan-core/internal/planner/models"
)

// ============================================================
// Interactive placement
// ============================================================

var (
	ErrSessionClosed    = errors.New("placement session is closed")
	ErrPlacementInvalid = errors.New("last preview is not a valid placement")
)

type State string

const (
	StateIdle       State = "idle"
	StatePreviewing State = "previewing"
	StateValid      State = "valid"
	StateInvalid    State = "invalid"
	StateCommitted  State = "committed"
	StateCancelled  State = "cancelled"
)

func (s State) Closed() bool {
	return s == StateCommitted || s == StateCancelled
}

// Template: параметры создаваемого (или перемещаемого) проема.
type Template struct {
	OpeningID string
	Kind      models.ElementKind
	Width     float64
	Height    float64
	Door      *models.DoorSpec
	Window    *models.WindowSpec
}

// DefaultTemplate возвращает типовые размеры двери или окна.
func DefaultTemplate(kind models.ElementKind) Template {
	switch kind {
	case models.ElementDoor:
		return Template{
			Kind:   kind,
			Width:  80,
			Height: 215,
			Door:   &models.DoorSpec{Swing: models.SwingLeft, OpenAngle: 90},
		}
	case models.ElementWindow:
		return Template{
			Kind:   kind,
			Width:  90,
			Height: 100,
			Window: &models.WindowSpec{Style: models.WindowCasement, SillHeight: 90},
		}
	case models.ElementWall, models.ElementStair:
		return Template{Kind: kind}
	}
	return Template{Kind: kind}
}

// Session ведет одно интерактивное размещение проема:
// idle -> previewing -> valid|invalid -> committed|cancelled.
// Хранилище изменяется только в Commit и только один раз.
// Session не потокобезопасна; синхронизацию обеспечивает владелец.
type Session struct {
	ID       string
	template Template
	opts     Options
	state    State
	last     Validation
	point    models.Point // указатель последнего предпросмотра
}

func NewSession(id string, tmpl Template, opts Options) *Session {
	if tmpl.OpeningID != "" {
		opts.IgnoreID = tmpl.OpeningID
	}
	return &Session{
		ID:       id,
		template: tmpl,
		opts:     opts,
		state:    StateIdle,
	}
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Template() Template {
	return s.template
}

// Last возвращает результат последнего предпросмотра.
func (s *Session) Last() Validation {
	return s.last
}

// Begin переводит сессию в режим предпросмотра.
func (s *Session) Begin() error {
	if s.state.Closed() {
		return ErrSessionClosed
	}
	if s.state == StateIdle {
		s.state = StatePreviewing
	}
	return nil
}

// Preview вызывается на каждое движение указателя.
func (s *Session) Preview(point models.Point, snap models.Snapshot) (Validation, error) {
	if err := s.Begin(); err != nil {
		return Validation{}, err
	}

	var v Validation
	if !s.template.Kind.IsOpening() {
		v = Validation{Errors: []string{}, Warnings: []string{}}.fail(models.Issue{
			Kind:    models.IssueUnsupportedKind,
			Message: fmt.Sprintf("element kind %q cannot be placed in a wall", s.template.Kind),
		})
	} else {
		v = Validate(point, s.template.Width, snap.Walls, snap.Openings, s.opts)
	}

	s.point = point
	s.record(v)
	return v, nil
}

func (s *Session) record(v Validation) {
	s.last = v
	if v.IsValid {
		s.state = StateValid
	} else {
		s.state = StateInvalid
	}
}

// Commit перепроверяет последний предпросмотр по актуальному снимку snap и передает
// проем в apply, только если размещение осталось допустимым и не сдвинулось.
// Иначе сессия получает свежий результат проверки, а Commit возвращает ErrPlacementInvalid.
// При ошибке apply сессия остается открытой и коммит можно повторить.
func (s *Session) Commit(snap models.Snapshot, apply func(models.Opening) error) (models.Opening, error) {
	if s.state.Closed() {
		return models.Opening{}, ErrSessionClosed
	}
	if s.state != StateValid || s.last.Position == nil {
		return models.Opening{}, ErrPlacementInvalid
	}

	fresh := Validate(s.point, s.template.Width, snap.Walls, snap.Openings, s.opts)
	if !samePlacement(s.last, fresh) {
		s.record(fresh)
		return models.Opening{}, fmt.Errorf("%w: wall %s changed since preview", ErrPlacementInvalid, s.last.WallID)
	}

	opening := models.Opening{
		ID:         s.template.OpeningID,
		HostWallID: s.last.WallID,
		Kind:       s.template.Kind,
		Offset:     *s.last.Position,
		Width:      s.template.Width,
		Height:     s.template.Height,
		Door:       s.template.Door,
		Window:     s.template.Window,
	}

	if err := apply(opening); err != nil {
		return models.Opening{}, fmt.Errorf("apply opening: %w", err)
	}

	s.state = StateCommitted
	return opening, nil
}

// Cancel отбрасывает предпросмотр без записи в хранилище.
func (s *Session) Cancel() error {
	if s.state.Closed() {
		return ErrSessionClosed
	}
	s.state = StateCancelled
	s.last = Validation{}
	return nil
}

func samePlacement(prev, fresh Validation) bool {
	if !fresh.IsValid || fresh.Position == nil || prev.Position == nil {
		return false
	}
	return fresh.WallID == prev.WallID && math.Abs(*fresh.Position-*prev.Position) <= geometry.Epsilon
}
