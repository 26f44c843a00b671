package feed

import (
	"sort"
	"time"

	"gathergrove/internal/models"
)

const (
	// DefaultHappeningWindow is how far back a happening event still counts
	// as "happening now".
	DefaultHappeningWindow = 24 * time.Hour
	// DefaultFutureGrace keeps a just-started future event surfaced as
	// upcoming until the happening-now bucket picks it up.
	DefaultFutureGrace = time.Hour
)

// Buckets is the classified feed.
type Buckets struct {
	HappeningNow []models.Event `json:"happeningNow"`
	Future       []models.Event `json:"future"`
}

// Classifier partitions merged events by time-window predicates. The zero
// value uses the default windows.
type Classifier struct {
	HappeningWindow time.Duration
	FutureGrace     time.Duration
}

// Classify partitions events relative to now. The caller supplies now so
// classification stays deterministic; the live loop refreshes it on a timer
// rather than this function reading the clock.
func (c Classifier) Classify(events []models.Event, now time.Time) Buckets {
	window := c.HappeningWindow
	if window <= 0 {
		window = DefaultHappeningWindow
	}
	grace := c.FutureGrace
	if grace <= 0 {
		grace = DefaultFutureGrace
	}

	var b Buckets
	for _, e := range events {
		switch e.Kind {
		case models.KindHappening:
			ref := e.Timestamp
			if e.When != nil {
				ref = *e.When
			}
			age := now.Sub(ref)
			if age >= 0 && age <= window {
				b.HappeningNow = append(b.HappeningNow, e)
			}
		case models.KindFuture:
			// No start time means "time TBA", always shown.
			if e.When == nil || !e.When.Before(now.Add(-grace)) {
				b.Future = append(b.Future, e)
			}
		}
	}

	sort.SliceStable(b.HappeningNow, func(i, j int) bool {
		return b.HappeningNow[i].Timestamp.After(b.HappeningNow[j].Timestamp)
	})
	sort.SliceStable(b.Future, func(i, j int) bool {
		return lessFuture(b.Future[i], b.Future[j])
	})
	return b
}

// Classify applies the default windows.
func Classify(events []models.Event, now time.Time) Buckets {
	return Classifier{}.Classify(events, now)
}

// Future ordering: ascending by start time; events without one sort after
// events with one, tied among themselves by ascending derived timestamp.
func lessFuture(a, b models.Event) bool {
	switch {
	case a.When != nil && b.When != nil:
		return a.When.Before(*b.When)
	case a.When != nil:
		return true
	case b.When != nil:
		return false
	default:
		return a.Timestamp.Before(b.Timestamp)
	}
}
