package gathergrove

import (
	"encoding/json"
	"strings"
	"time"

	"gathergrove/internal/models"
)

// The backend has gone through several generations of field naming for the
// same logical fields. Everything in this file exists to flatten those
// historical shapes into the canonical models before any merge or classify
// logic runs.

func normalizeEvent(item json.RawMessage, now time.Time) (models.Event, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(item, &obj); err != nil {
		return models.Event{}, false
	}

	rowID := parseStringRaw(firstRaw(obj, "id", "_id", "rowId", "row_id"))
	eventID := parseStringRaw(firstRaw(obj, "eventId", "event_id", "eid"))

	// Canonical id prefers the explicit event id over the row-specific id.
	id := eventID
	if id == "" {
		id = rowID
	}
	if id == "" {
		return models.Event{}, false
	}

	e := models.Event{
		ID:       id,
		SourceID: rowID,
		Kind:     parseKind(parseStringRaw(firstRaw(obj, "kind", "type"))),
		Title:    parseStringRaw(firstRaw(obj, "title", "name", "summary")),
		Details:  parseStringRaw(firstRaw(obj, "details", "description", "body")),
		Category: parseCategory(parseStringRaw(firstRaw(obj, "category", "categoryName", "tag"))),
		HostRef:  parseStringRaw(firstRaw(obj, "hostId", "host_id", "hostRef", "userId")),
	}

	if when, ok := parseTimeRaw(firstRaw(obj, "when", "startsAt", "startTime", "start_time")); ok {
		e.When = &when
	}

	e.CreatedBy = parsePersonRaw(firstRaw(obj, "createdBy", "host", "author"))
	e.RecipientIDs = parseStringListRaw(firstRaw(obj, "recipientIds", "recipient_ids", "toIds"))
	e.RecipientLabels = parseStringListRaw(firstRaw(obj, "recipientLabels", "recipient_labels", "toNames"))

	status := strings.ToLower(parseStringRaw(firstRaw(obj, "status", "state")))
	e.Cancelled = status == "cancelled" || status == "canceled" || status == "deleted"

	// Derived sortable instant: when, else an expiry/end time, else
	// creation time, else the clock at normalization time.
	switch {
	case e.When != nil:
		e.Timestamp = *e.When
	default:
		if end, ok := parseTimeRaw(firstRaw(obj, "endsAt", "endTime", "end_time", "expiresAt", "expiry")); ok {
			e.Timestamp = end
		} else if created, ok := parseTimeRaw(firstRaw(obj, "createdAt", "created_at", "created")); ok {
			e.Timestamp = created
		} else {
			e.Timestamp = now
		}
	}

	return e, true
}

func parseKind(s string) models.EventKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "happening", "now", "happening_now":
		return models.KindHappening
	default:
		return models.KindFuture
	}
}

func parseCategory(s string) models.Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ""
	case "neighborhood":
		return models.CategoryNeighborhood
	case "playdate":
		return models.CategoryPlaydate
	case "babysitting":
		return models.CategoryBabysitting
	case "pet", "pets":
		return models.CategoryPet
	case "celebrations", "celebration":
		return models.CategoryCelebrations
	default:
		return models.CategoryOther
	}
}

func parsePersonRaw(b json.RawMessage) *models.Person {
	if len(b) == 0 {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		// Oldest records carry a bare id string here.
		var s string
		if err := json.Unmarshal(b, &s); err == nil && s != "" {
			return &models.Person{ID: s}
		}
		return nil
	}
	p := models.Person{
		ID:    parseStringRaw(firstRaw(obj, "id", "_id", "userId", "user_id")),
		Label: parseStringRaw(firstRaw(obj, "label", "name", "displayName", "display_name")),
	}
	if p.ID == "" && p.Label == "" {
		return nil
	}
	return &p
}

func parseStringRaw(b json.RawMessage) string {
	if len(b) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return strings.TrimSpace(s)
	}
	// Numeric ids show up in the oldest records.
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		return n.String()
	}
	return ""
}

func parseStringListRaw(b json.RawMessage) []string {
	if len(b) == 0 {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(b, &list); err != nil {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s := parseStringRaw(item); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseTimeRaw(b json.RawMessage) (time.Time, bool) {
	if len(b) == 0 {
		return time.Time{}, false
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return time.Time{}, false
		}
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			return ts.UTC(), true
		}
		return time.Time{}, false
	}
	var i int64
	if err := json.Unmarshal(b, &i); err == nil && i > 0 {
		return unixToTime(i), true
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil && f > 0 {
		return unixToTime(int64(f)), true
	}
	return time.Time{}, false
}

func unixToTime(v int64) time.Time {
	if v > 1_000_000_000_000 {
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}

func firstRaw(m map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return nil
}
