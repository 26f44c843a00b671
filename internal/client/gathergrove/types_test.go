package gathergrove

import (
	"encoding/json"
	"testing"
	"time"

	"gathergrove/internal/models"
)

func normalize(t *testing.T, raw string) (models.Event, bool) {
	t.Helper()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	return normalizeEvent(json.RawMessage(raw), now)
}

func TestNormalizeEvent_CanonicalIDPrefersEventID(t *testing.T) {
	e, ok := normalize(t, `{"id":"row-7","eventId":"evt-1","title":"Yard Sale"}`)
	if !ok {
		t.Fatalf("expected event")
	}
	if e.ID != "evt-1" {
		t.Fatalf("id=%s want explicit event id", e.ID)
	}
	if e.SourceID != "row-7" {
		t.Fatalf("sourceId=%s want row id preserved", e.SourceID)
	}
}

func TestNormalizeEvent_FieldNameVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"current shape", `{"id":"e1","hostId":"h1","category":"playdate","when":"2026-06-02T10:00:00Z"}`},
		{"snake case", `{"id":"e1","host_id":"h1","categoryName":"playdate","startsAt":"2026-06-02T10:00:00Z"}`},
		{"oldest shape", `{"_id":"e1","userId":"h1","tag":"playdate","start_time":"2026-06-02T10:00:00Z"}`},
	}
	for _, tt := range tests {
		e, ok := normalize(t, tt.raw)
		if !ok {
			t.Fatalf("%s: expected event", tt.name)
		}
		if e.ID != "e1" || e.HostRef != "h1" || e.Category != models.CategoryPlaydate {
			t.Fatalf("%s: got %+v", tt.name, e)
		}
		if e.When == nil || !e.When.Equal(time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC)) {
			t.Fatalf("%s: when=%v", tt.name, e.When)
		}
	}
}

func TestNormalizeEvent_MissingIDIsDropped(t *testing.T) {
	if _, ok := normalize(t, `{"title":"No ID"}`); ok {
		t.Fatalf("record without any id must be dropped")
	}
}

func TestNormalizeEvent_UnparseableWhenIsAbsent(t *testing.T) {
	e, ok := normalize(t, `{"id":"e1","when":"next tuesday","createdAt":"2026-05-01T00:00:00Z"}`)
	if !ok {
		t.Fatalf("expected event")
	}
	if e.When != nil {
		t.Fatalf("when=%v want nil for unparseable timestamp", e.When)
	}
	if !e.Timestamp.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("timestamp=%v want creation-time fallback", e.Timestamp)
	}
}

func TestNormalizeEvent_TimestampDerivation(t *testing.T) {
	// No when, no end, no created: falls back to the normalization clock.
	e, _ := normalize(t, `{"id":"e1"}`)
	want := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	if !e.Timestamp.Equal(want) {
		t.Fatalf("timestamp=%v want now fallback", e.Timestamp)
	}

	// Expiry beats creation time.
	e, _ = normalize(t, `{"id":"e1","expiresAt":"2026-06-03T00:00:00Z","createdAt":"2026-05-01T00:00:00Z"}`)
	if !e.Timestamp.Equal(time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("timestamp=%v want expiry", e.Timestamp)
	}
}

func TestNormalizeEvent_CancelledStatusVariants(t *testing.T) {
	for _, status := range []string{"cancelled", "canceled", "deleted"} {
		e, ok := normalize(t, `{"id":"e1","status":"`+status+`"}`)
		if !ok || !e.Cancelled {
			t.Fatalf("status %q should mark the event cancelled", status)
		}
	}
	e, _ := normalize(t, `{"id":"e1","status":"active"}`)
	if e.Cancelled {
		t.Fatalf("active event marked cancelled")
	}
}

func TestNormalizeEvent_HostAsBareString(t *testing.T) {
	e, _ := normalize(t, `{"id":"e1","createdBy":"u9"}`)
	if e.CreatedBy == nil || e.CreatedBy.ID != "u9" {
		t.Fatalf("createdBy=%+v want bare-string host tolerated", e.CreatedBy)
	}
}

func TestParseEventItems_WrappedAndBare(t *testing.T) {
	bare, err := parseEventItems([]byte(`[{"id":"a"}]`))
	if err != nil || len(bare) != 1 {
		t.Fatalf("bare list: items=%d err=%v", len(bare), err)
	}
	wrapped, err := parseEventItems([]byte(`{"events":[{"id":"a"},{"id":"b"}]}`))
	if err != nil || len(wrapped) != 2 {
		t.Fatalf("wrapped list: items=%d err=%v", len(wrapped), err)
	}
	data, err := parseEventItems([]byte(`{"data":[{"id":"a"}]}`))
	if err != nil || len(data) != 1 {
		t.Fatalf("data list: items=%d err=%v", len(data), err)
	}
}

func TestParseRsvpBuckets_AlternateCantField(t *testing.T) {
	tests := []string{
		`{"going":[{"id":"a"}],"maybe":[],"cant":[{"id":"b"}]}`,
		`{"going":[{"id":"a"}],"maybe":[],"cantgo":[{"id":"b"}]}`,
		`{"going":[{"id":"a"}],"maybe":[],"cant_go":[{"id":"b"}]}`,
		`{"going":[{"id":"a"}],"maybe":[],"not_going":[{"id":"b"}]}`,
		`{"rsvps":{"going":[{"id":"a"}],"cant":[{"id":"b"}]}}`,
	}
	for i, raw := range tests {
		b, err := parseRsvpBuckets([]byte(raw))
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		counts := b.Counts()
		if counts.Going != 1 || counts.Cant != 1 {
			t.Fatalf("case %d: counts=%+v want going:1 cant:1", i, counts)
		}
	}
}
