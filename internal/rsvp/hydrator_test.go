package rsvp

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"gathergrove/internal/cache"
	"gathergrove/internal/client/gathergrove"
	"gathergrove/internal/config"
	"gathergrove/internal/models"
)

func TestHydrator_ReconcilesBatch(t *testing.T) {
	backend := newFakeBackend()
	events := make([]models.Event, 0, 8)
	for _, id := range []string{"e1", "e2", "e3", "local-4", "e5"} {
		events = append(events, testEvent(id))
		backend.buckets[id] = &gathergrove.RsvpBuckets{Maybe: []models.Person{{ID: "x"}}}
	}
	store := NewStore(context.Background(), backend, cache.NewMemoryStore(), config.RsvpConfig{}, nil)
	h := &Hydrator{Store: store, Workers: 3}

	h.Hydrate(context.Background(), events)

	for _, id := range []string{"e1", "e2", "e3", "e5"} {
		s, ok := store.Get(id)
		if !ok || s.Counts.Maybe != 1 {
			t.Fatalf("event %s: state=%+v want maybe:1", id, s)
		}
	}
	if _, ok := store.Get("local-4"); ok {
		t.Fatalf("local-only draft must not be hydrated")
	}
}

func TestHydrator_CapsEventsPerPass(t *testing.T) {
	backend := newFakeBackend()
	events := make([]models.Event, 0, 30)
	for i := 0; i < 30; i++ {
		events = append(events, testEvent(fmt.Sprintf("evt-%d", i)))
	}
	store := NewStore(context.Background(), backend, cache.NewMemoryStore(), config.RsvpConfig{}, nil)
	h := &Hydrator{Store: store, Workers: 6, MaxEvents: 20}

	h.Hydrate(context.Background(), events)

	backend.mu.Lock()
	calls := 0
	for _, n := range backend.getCalls {
		calls += n
	}
	backend.mu.Unlock()
	if calls > 20 {
		t.Fatalf("calls=%d want at most 20 per pass", calls)
	}
}

func TestHydrator_StalePassIsDiscarded(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(context.Background(), backend, cache.NewMemoryStore(), config.RsvpConfig{}, nil)

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var call int
	var mu sync.Mutex
	backend.getFn = func(eventID string) (*gathergrove.RsvpBuckets, error) {
		mu.Lock()
		call++
		n := call
		mu.Unlock()
		if n == 1 {
			close(firstStarted)
			<-releaseFirst
			return &gathergrove.RsvpBuckets{Going: []models.Person{{ID: "stale"}}}, nil
		}
		return &gathergrove.RsvpBuckets{Going: []models.Person{{ID: "a"}, {ID: "b"}}}, nil
	}

	events := []models.Event{testEvent("evt-1")}
	h := &Hydrator{Store: store, Workers: 1}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.Hydrate(context.Background(), events)
	}()
	<-firstStarted

	// Second pass starts while the first is still in flight and finishes.
	h.Hydrate(context.Background(), events)
	s, _ := store.Get("evt-1")
	if s.Counts.Going != 2 {
		t.Fatalf("counts=%+v want going:2 from the newer pass", s.Counts)
	}

	close(releaseFirst)
	wg.Wait()

	s, _ = store.Get("evt-1")
	if s.Counts.Going != 2 {
		t.Fatalf("counts=%+v: stale pass overwrote the newer result", s.Counts)
	}
}
