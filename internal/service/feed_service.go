package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"gathergrove/internal/cache"
	"gathergrove/internal/feed"
	"gathergrove/internal/models"
	"gathergrove/internal/rsvp"
)

const eventsCacheKey = "feed/events"

// EventSource is the slice of the backend client the feed service needs.
type EventSource interface {
	ListEvents(ctx context.Context) ([]models.Event, int, error)
}

// FeedService owns the reconciled event list: it fetches from the backend,
// merges against the locally cached list, and hands classified snapshots to
// the HTTP layer. A fetch failure falls back to the last-known cached list,
// so the feed degrades to stale rather than empty.
type FeedService struct {
	Source     EventSource
	Cache      cache.Store
	Rsvps      *rsvp.Store
	Hydrator   *rsvp.Hydrator
	Classifier feed.Classifier
	Logger     *zap.Logger

	mu     sync.Mutex
	merged []models.Event
	viewer *models.Viewer
}

// SetViewer installs the session identity used for relevance filtering and
// merge preference scoring. A nil viewer is the anonymous public-feed
// fallback.
func (s *FeedService) SetViewer(v *models.Viewer) {
	s.mu.Lock()
	s.viewer = v
	s.mu.Unlock()
}

func (s *FeedService) Viewer() *models.Viewer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewer
}

// WarmStart restores the merged list from the cache; absent or corrupt
// entries mean starting cold.
func (s *FeedService) WarmStart(ctx context.Context) {
	events := s.cachedEvents(ctx)
	if events == nil {
		return
	}
	s.mu.Lock()
	s.merged = events
	s.mu.Unlock()
	if s.Logger != nil {
		s.Logger.Info("feed warm-started from cache", zap.Int("events", len(events)))
	}
}

// Refresh runs one merge pass: fetch server events, merge with the locally
// cached list, persist, and kick off RSVP hydration for the result.
func (s *FeedService) Refresh(ctx context.Context) error {
	serverEvents, dropped, err := s.Source.ListEvents(ctx)
	if err != nil {
		// The cached list keeps serving; the feed tolerates being stale.
		if s.Logger != nil {
			s.Logger.Warn("event fetch failed, serving cached feed", zap.Error(err))
		}
		return err
	}
	if dropped > 0 && s.Logger != nil {
		s.Logger.Warn("dropped malformed event records", zap.Int("count", dropped))
	}

	local := s.cachedEvents(ctx)

	s.mu.Lock()
	viewer := s.viewer
	s.mu.Unlock()

	merged, mergeDropped := feed.Merge(serverEvents, local, viewer)
	if mergeDropped > 0 && s.Logger != nil {
		s.Logger.Warn("merge dropped malformed records", zap.Int("count", mergeDropped))
	}

	s.mu.Lock()
	s.merged = merged
	s.mu.Unlock()
	s.persist(ctx, merged)

	if s.Hydrator != nil {
		s.Hydrator.Hydrate(ctx, merged)
	}
	return nil
}

// AddDraft stores a locally composed event under a synthetic local-only id.
// Drafts survive merge passes until the server acknowledges the event.
func (s *FeedService) AddDraft(ctx context.Context, e models.Event) models.Event {
	e.ID = models.NewLocalID()
	e.SourceID = e.ID
	if e.Timestamp.IsZero() {
		if e.When != nil {
			e.Timestamp = *e.When
		} else {
			e.Timestamp = time.Now().UTC()
		}
	}
	s.mu.Lock()
	if e.CreatedBy == nil && s.viewer != nil {
		e.CreatedBy = &models.Person{ID: s.viewer.ID, Label: s.viewer.Label}
	}
	s.merged = append(s.merged, e)
	merged := s.merged
	s.mu.Unlock()
	s.persist(ctx, merged)
	return e
}

// Events returns a copy of the current merged list.
func (s *FeedService) Events() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Event, len(s.merged))
	copy(out, s.merged)
	return out
}

// Event looks up one merged event by canonical id.
func (s *FeedService) Event(id string) (models.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.merged {
		if e.ID == id {
			return e, true
		}
	}
	return models.Event{}, false
}

// Snapshot classifies and relevance-filters the merged list for the current
// viewer at the supplied instant.
func (s *FeedService) Snapshot(now time.Time) feed.Buckets {
	s.mu.Lock()
	viewer := s.viewer
	events := make([]models.Event, 0, len(s.merged))
	for _, e := range s.merged {
		if feed.IsRelevant(e, viewer) {
			events = append(events, e)
		}
	}
	s.mu.Unlock()
	return s.Classifier.Classify(events, now)
}

func (s *FeedService) cachedEvents(ctx context.Context) []models.Event {
	if s.Cache == nil {
		return nil
	}
	b, found, err := s.Cache.Get(ctx, eventsCacheKey)
	if err != nil || !found {
		return nil
	}
	var events []models.Event
	if err := json.Unmarshal(b, &events); err != nil {
		if s.Logger != nil {
			s.Logger.Warn("discarding corrupt cached feed", zap.Error(err))
		}
		return nil
	}
	return events
}

func (s *FeedService) persist(ctx context.Context, events []models.Event) {
	if s.Cache == nil {
		return
	}
	b, err := json.Marshal(events)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, eventsCacheKey, b, 0); err != nil && s.Logger != nil {
		s.Logger.Warn("feed cache write failed", zap.Error(err))
	}
}
