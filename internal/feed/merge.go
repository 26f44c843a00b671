package feed

import (
	"strings"
	"time"

	"gathergrove/internal/models"
)

// titleProximity is how close two records' start times must be before a
// same-title pair is treated as one real-world event. Best-effort
// convenience, not a correctness guarantee.
const titleProximity = 5 * time.Minute

// Merge combines server-fetched and locally cached event records into one
// deduplicated set keyed by canonical id. Server events are inserted first;
// a local event is admitted only when its canonical id is already known to
// the server set or the event carries a local-only synthetic id, so stale
// local drafts of now-deleted server events do not reappear. The second
// return value counts malformed records dropped along the way.
//
// Pure: the viewer is used only for preference scoring.
func Merge(serverEvents, localEvents []models.Event, viewer *models.Viewer) ([]models.Event, int) {
	byID := make(map[string]models.Event, len(serverEvents))
	order := make([]string, 0, len(serverEvents))
	dropped := 0

	insert := func(e models.Event) {
		existing, ok := byID[e.ID]
		if !ok {
			byID[e.ID] = e
			order = append(order, e.ID)
			return
		}
		if preferenceScore(e, viewer) > preferenceScore(existing, viewer) {
			byID[e.ID] = e
		}
	}

	for _, e := range serverEvents {
		if e.ID == "" {
			dropped++
			continue
		}
		insert(e)
	}

	for _, e := range localEvents {
		if e.ID == "" {
			dropped++
			continue
		}
		_, known := byID[e.ID]
		if !known && !models.IsLocalOnly(e.ID) {
			continue
		}
		if known {
			insert(e)
			continue
		}
		// Local-only draft: it may still be a duplicate of a server event
		// under a different raw id.
		if dupID, ok := findProximityMatch(byID, order, e); ok {
			if preferenceScore(e, viewer) > preferenceScore(byID[dupID], viewer) {
				delete(byID, dupID)
				replaceOrder(order, dupID, e.ID)
				byID[e.ID] = e
			}
			continue
		}
		insert(e)
	}

	out := make([]models.Event, 0, len(byID))
	for _, id := range order {
		if e, ok := byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, dropped
}

// preferenceScore decides which of two colliding records survives.
// Authorship by the viewer dominates; an explicit canonical id and a
// non-local raw id break remaining ties.
func preferenceScore(e models.Event, viewer *models.Viewer) int {
	score := 0
	if AuthoredBy(e, viewer) {
		score += 4
	}
	if e.SourceID != "" && e.ID != e.SourceID {
		score += 2
	}
	if !models.IsLocalOnly(e.ID) && !models.IsLocalOnly(e.SourceID) {
		score++
	}
	return score
}

// AuthoredBy reports whether the viewer is the event's host, matched by
// host id first with a label-equality fallback for older records.
func AuthoredBy(e models.Event, viewer *models.Viewer) bool {
	if viewer == nil {
		return false
	}
	if e.CreatedBy != nil {
		if viewer.ID != "" && e.CreatedBy.ID == viewer.ID {
			return true
		}
		if viewer.Label != "" && e.CreatedBy.Label == viewer.Label {
			return true
		}
	}
	return viewer.ID != "" && e.HostRef == viewer.ID
}

func findProximityMatch(byID map[string]models.Event, order []string, e models.Event) (string, bool) {
	title := normalizeTitle(e.Title)
	if title == "" || e.When == nil {
		return "", false
	}
	for _, id := range order {
		other, ok := byID[id]
		if !ok || other.When == nil {
			continue
		}
		if normalizeTitle(other.Title) != title {
			continue
		}
		d := e.When.Sub(*other.When)
		if d < 0 {
			d = -d
		}
		if d <= titleProximity {
			return id, true
		}
	}
	return "", false
}

func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func replaceOrder(order []string, oldID, newID string) {
	for i, id := range order {
		if id == oldID {
			order[i] = newID
			return
		}
	}
}
