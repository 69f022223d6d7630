package service

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"floorplan-core/internal/planner/models"
	"floorplan-core/internal/planner/openings"

	"github.com/google/uuid"
)

// ============================================================
// Placement Manager
// ============================================================

var ErrUnknownSession = errors.New("unknown placement session")

type placement struct {
	planID  string
	session *openings.Session
	touched time.Time
}

// PlacementManager хранит открытые сессии размещения проемов по токену.
type PlacementManager struct {
	mu       sync.Mutex
	sessions map[string]*placement // token -> session
	now      func() time.Time
}

func NewPlacementManager() *PlacementManager {
	return &PlacementManager{
		sessions: make(map[string]*placement),
		now:      time.Now,
	}
}

// Begin открывает сессию. Для нового проема id генерируется здесь.
func (m *PlacementManager) Begin(planID string, tmpl openings.Template, opts openings.Options) *openings.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tmpl.OpeningID == "" {
		tmpl.OpeningID = uuid.NewString()
	}
	token := uuid.NewString()
	s := openings.NewSession(token, tmpl, opts)
	_ = s.Begin()

	m.sessions[token] = &placement{planID: planID, session: s, touched: m.now()}
	log.Printf("[PLACEMENT] Session %s opened for plan %s (%s)", token, planID, tmpl.Kind)
	return s
}

func (m *PlacementManager) Preview(planID, token string, point models.Point, snap models.Snapshot) (openings.Validation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.lookup(planID, token)
	if err != nil {
		return openings.Validation{}, err
	}
	p.touched = m.now()
	return p.session.Preview(point, snap)
}

// Commit читает актуальный снимок через load, перепроверяет размещение и передает проем
// в apply ровно один раз; после успеха сессия закрывается. Коммиты выполняются под общей
// блокировкой, поэтому два размещения не могут занять один участок стены.
func (m *PlacementManager) Commit(planID, token string, load func() (models.Snapshot, error), apply func(models.Opening) error) (models.Opening, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.lookup(planID, token)
	if err != nil {
		return models.Opening{}, err
	}
	p.touched = m.now()

	snap, err := load()
	if err != nil {
		return models.Opening{}, fmt.Errorf("load snapshot: %w", err)
	}

	opening, err := p.session.Commit(snap, apply)
	if err != nil {
		return models.Opening{}, err
	}
	delete(m.sessions, token)
	log.Printf("[PLACEMENT] Session %s committed opening %s", token, opening.ID)
	return opening, nil
}

func (m *PlacementManager) Cancel(planID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.lookup(planID, token)
	if err != nil {
		return err
	}
	delete(m.sessions, token)
	return p.session.Cancel()
}

func (m *PlacementManager) State(planID, token string) (openings.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, err := m.lookup(planID, token)
	if err != nil {
		return "", err
	}
	return p.session.State(), nil
}

// Sweep закрывает сессии, не получавшие событий дольше maxAge.
func (m *PlacementManager) Sweep(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0
	for token, p := range m.sessions {
		if p.touched.Before(cutoff) {
			_ = p.session.Cancel()
			delete(m.sessions, token)
			removed++
		}
	}
	return removed
}

func (m *PlacementManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *PlacementManager) lookup(planID, token string) (*placement, error) {
	p, ok := m.sessions[token]
	if !ok || p.planID != planID {
		return nil, ErrUnknownSession
	}
	return p, nil
}
