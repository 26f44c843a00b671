package rsvp

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"gathergrove/internal/cache"
	"gathergrove/internal/client/gathergrove"
	"gathergrove/internal/config"
	"gathergrove/internal/models"
)

const statesCacheKey = "rsvp/states"

// Backend is the slice of the GatherGrove API the RSVP store talks to.
type Backend interface {
	GetRsvps(ctx context.Context, eventID string) (*gathergrove.RsvpBuckets, error)
	SubmitRsvp(ctx context.Context, eventID string, choice models.Choice) error
	WithdrawRsvp(ctx context.Context, eventID string) error
}

// Store keeps per-event RSVP state for the session: the viewer's own choice
// plus aggregate counts. Every mutation is applied optimistically, mirrored
// to the key-value cache, and then (for backend-eligible events) pushed to
// the server best-effort. Network failures leave the optimistic state in
// place unless the rollback policy is configured.
type Store struct {
	mu     sync.Mutex
	states map[string]models.RsvpState

	backend  Backend
	kv       cache.Store
	logger   *zap.Logger
	baseCtx  context.Context
	rollback bool

	hydrationEpoch atomic.Uint64
}

func NewStore(baseCtx context.Context, backend Backend, kv cache.Store, cfg config.RsvpConfig, logger *zap.Logger) *Store {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Store{
		states:   map[string]models.RsvpState{},
		backend:  backend,
		kv:       kv,
		logger:   logger,
		baseCtx:  baseCtx,
		rollback: strings.EqualFold(cfg.OnFailure, "rollback"),
	}
}

// WarmStart loads the mirrored state map from the cache. A missing or
// corrupt entry is treated as empty.
func (s *Store) WarmStart(ctx context.Context) {
	if s.kv == nil {
		return
	}
	b, found, err := s.kv.Get(ctx, statesCacheKey)
	if err != nil || !found {
		return
	}
	var states map[string]models.RsvpState
	if err := json.Unmarshal(b, &states); err != nil {
		if s.logger != nil {
			s.logger.Warn("discarding corrupt cached rsvp state", zap.Error(err))
		}
		return
	}
	s.mu.Lock()
	s.states = states
	s.mu.Unlock()
}

// Get returns the state for an event id, if the viewer has any.
func (s *Store) Get(eventID string) (models.RsvpState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[eventID]
	return state, ok
}

// Snapshot returns a copy of every tracked state, keyed by event id.
func (s *Store) Snapshot() map[string]models.RsvpState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]models.RsvpState, len(s.states))
	for id, state := range s.states {
		out[id] = state
	}
	return out
}

// SetChoice applies the viewer's choice optimistically and synchronously,
// then kicks off the best-effort backend sync. The returned state is the
// optimistic one.
func (s *Store) SetChoice(ctx context.Context, event models.Event, choice models.Choice) models.RsvpState {
	s.mu.Lock()
	prev, had := s.states[event.ID]
	var prevPtr *models.RsvpState
	if had {
		prevPtr = &prev
	}
	next := ApplyLocalChoice(prevPtr, choice)
	s.states[event.ID] = next
	s.persistLocked(ctx)
	s.mu.Unlock()

	if s.backend != nil && BackendEligible(event) {
		go s.syncChoice(event.ID, next.Choice, prev, had)
	}
	return next
}

// Reconcile replaces an event's counts with authoritative values.
func (s *Store) Reconcile(ctx context.Context, eventID string, counts models.Counts) models.RsvpState {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := ReconcileCounts(s.states[eventID], counts)
	s.states[eventID] = next
	s.persistLocked(ctx)
	return next
}

func (s *Store) syncChoice(eventID string, choice models.Choice, prev models.RsvpState, hadPrev bool) {
	ctx, cancel := context.WithTimeout(s.baseCtx, 15*time.Second)
	defer cancel()

	var err error
	if choice == models.ChoiceNone {
		err = s.backend.WithdrawRsvp(ctx, eventID)
	} else {
		err = s.backend.SubmitRsvp(ctx, eventID, choice)
	}
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("rsvp sync failed",
				zap.String("event_id", eventID),
				zap.String("choice", string(choice)),
				zap.Bool("rollback", s.rollback),
				zap.Error(err),
			)
		}
		if s.rollback {
			s.mu.Lock()
			if hadPrev {
				s.states[eventID] = prev
			} else {
				delete(s.states, eventID)
			}
			s.persistLocked(ctx)
			s.mu.Unlock()
		}
		return
	}

	buckets, err := s.backend.GetRsvps(ctx, eventID)
	if err != nil {
		// Optimistic counts stand until the next hydration pass.
		if s.logger != nil {
			s.logger.Warn("rsvp refetch failed", zap.String("event_id", eventID), zap.Error(err))
		}
		return
	}
	s.Reconcile(ctx, eventID, buckets.Counts())
}

// persistLocked mirrors the state map to the cache. Callers hold s.mu.
func (s *Store) persistLocked(ctx context.Context) {
	if s.kv == nil {
		return
	}
	b, err := json.Marshal(s.states)
	if err != nil {
		return
	}
	if err := s.kv.Set(ctx, statesCacheKey, b, 0); err != nil && s.logger != nil {
		s.logger.Warn("rsvp cache write failed", zap.Error(err))
	}
}

// beginHydration bumps the epoch; results stamped with an older epoch are
// discarded so a slow pass cannot clobber a newer one.
func (s *Store) beginHydration() uint64 {
	return s.hydrationEpoch.Add(1)
}

// reconcileAt applies authoritative counts only when the pass that fetched
// them is still the latest.
func (s *Store) reconcileAt(epoch uint64, eventID string, counts models.Counts) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hydrationEpoch.Load() != epoch {
		return false
	}
	s.states[eventID] = ReconcileCounts(s.states[eventID], counts)
	s.persistLocked(s.baseCtx)
	return true
}
