package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventKind decides which time predicate the classifier applies.
type EventKind string

const (
	KindHappening EventKind = "happening"
	KindFuture    EventKind = "future"
)

type Category string

const (
	CategoryNeighborhood Category = "neighborhood"
	CategoryPlaydate     Category = "playdate"
	CategoryBabysitting  Category = "babysitting"
	CategoryPet          Category = "pet"
	CategoryCelebrations Category = "celebrations"
	CategoryOther        Category = "other"
)

// Person identifies an event host or a viewer.
type Person struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Event is one merged feed item. It is immutable per merge pass; a new
// merge pass produces new values.
type Event struct {
	ID string `json:"id"`
	// SourceID is the row-specific id of the raw record the event came
	// from; it differs from ID when the record carried an explicit
	// canonical event id.
	SourceID string    `json:"sourceId,omitempty"`
	Kind     EventKind `json:"kind"`
	Title   string    `json:"title,omitempty"`
	Details string    `json:"details,omitempty"`

	// When is the scheduled start; nil means "time unknown".
	When     *time.Time `json:"when,omitempty"`
	Category Category   `json:"category,omitempty"`

	CreatedBy *Person `json:"createdBy,omitempty"`
	// HostRef is a raw host identifier used as a fallback author-match key.
	HostRef string `json:"hostRef,omitempty"`

	RecipientIDs    []string `json:"recipientIds,omitempty"`
	RecipientLabels []string `json:"recipientLabels,omitempty"`

	// Timestamp is the derived sortable instant: When, else an expiry/end
	// time, else creation time, else the merge-time clock.
	Timestamp time.Time `json:"timestamp"`

	Cancelled bool `json:"cancelled,omitempty"`
}

// Broadcast reports whether the event targets nobody in particular and is
// therefore visible to every viewer.
func (e Event) Broadcast() bool {
	return len(e.RecipientIDs) == 0 && len(e.RecipientLabels) == 0
}

// LocalIDPrefix marks synthetic ids minted for drafts that have never been
// acknowledged by the backend. Events carrying it never sync RSVP state.
const LocalIDPrefix = "local-"

func IsLocalOnly(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

// NewLocalID mints a synthetic id for a locally composed draft event.
func NewLocalID() string {
	return LocalIDPrefix + uuid.NewString()
}
