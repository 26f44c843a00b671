package rsvp

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"gathergrove/internal/models"
)

const (
	defaultWorkers   = 6
	defaultMaxEvents = 20
)

// Hydrator refreshes authoritative RSVP counts for a batch of events after
// a feed load. Requests fan out over a fixed worker pool with a cap on how
// many events one pass may touch, bounding load on the backend.
type Hydrator struct {
	Store  *Store
	Logger *zap.Logger

	Workers   int
	MaxEvents int
}

// Hydrate runs one pass. Starting a pass supersedes any still-running one:
// its late results fail the epoch check and are dropped, so the last pass
// to start wins regardless of completion order.
func (h *Hydrator) Hydrate(ctx context.Context, events []models.Event) {
	if h.Store == nil || h.Store.backend == nil {
		return
	}
	workers := h.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	maxEvents := h.MaxEvents
	if maxEvents <= 0 {
		maxEvents = defaultMaxEvents
	}

	ids := make([]string, 0, maxEvents)
	for _, e := range events {
		if !BackendEligible(e) {
			continue
		}
		ids = append(ids, e.ID)
		if len(ids) == maxEvents {
			break
		}
	}
	if len(ids) == 0 {
		return
	}

	epoch := h.Store.beginHydration()

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				h.hydrateOne(ctx, epoch, id)
			}
		}()
	}
	for _, id := range ids {
		select {
		case jobs <- id:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}

func (h *Hydrator) hydrateOne(ctx context.Context, epoch uint64, eventID string) {
	buckets, err := h.Store.backend.GetRsvps(ctx, eventID)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("rsvp hydration fetch failed", zap.String("event_id", eventID), zap.Error(err))
		}
		return
	}
	if !h.Store.reconcileAt(epoch, eventID, buckets.Counts()) && h.Logger != nil {
		// Not an error: a newer pass started while this one was in flight.
		h.Logger.Debug("discarding stale hydration result",
			zap.String("event_id", eventID),
			zap.Uint64("epoch", epoch),
		)
	}
}
