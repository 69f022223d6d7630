package openings

import (
	"sort"
	"sync"
)

// ============================================================
// Door animation state
// ============================================================

// AnimationState: целевое состояние створки. Интерполяцию между FromAngle и ToAngle ведет рендер.
type AnimationState struct {
	OpeningID string  `json:"openingId"`
	Open      bool    `json:"open"`
	FromAngle float64 `json:"fromAngle"`
	ToAngle   float64 `json:"toAngle"`
}

// ToggleState: чистый переход: закрытая створка открывается и наоборот.
func ToggleState(state AnimationState, swing SwingAngles) AnimationState {
	next := AnimationState{OpeningID: state.OpeningID, Open: !state.Open}
	if next.Open {
		next.FromAngle, next.ToAngle = swing.ClosedAngle, swing.OpenAngle
	} else {
		next.FromAngle, next.ToAngle = swing.OpenAngle, swing.ClosedAngle
	}
	return next
}

// AnimationRegistry хранит состояния створок по id проема. Владеет им хост.
type AnimationRegistry struct {
	mu     sync.RWMutex
	states map[string]AnimationState
}

func NewAnimationRegistry() *AnimationRegistry {
	return &AnimationRegistry{
		states: make(map[string]AnimationState),
	}
}

func (r *AnimationRegistry) Toggle(openingID string, swing SwingAngles) AnimationState {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.states[openingID]
	if !ok {
		current = AnimationState{OpeningID: openingID}
	}
	next := ToggleState(current, swing)
	r.states[openingID] = next
	return next
}

func (r *AnimationRegistry) State(openingID string) (AnimationState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[openingID]
	return state, ok
}

// Reset возвращает створку в исходное (закрытое) состояние.
func (r *AnimationRegistry) Reset(openingID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, openingID)
}

func (r *AnimationRegistry) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = make(map[string]AnimationState)
}

// Snapshot возвращает копию состояний, отсортированную по id.
func (r *AnimationRegistry) Snapshot() []AnimationState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]AnimationState, 0, len(r.states))
	for _, s := range r.states {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpeningID < out[j].OpeningID })
	return out
}
