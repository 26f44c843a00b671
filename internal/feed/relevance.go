package feed

import "gathergrove/internal/models"

// IsRelevant reports whether the event is visible to the viewer. An unknown
// viewer sees everything (public feed fallback) and an event targeting
// nobody is a broadcast visible to all.
func IsRelevant(e models.Event, viewer *models.Viewer) bool {
	if viewer == nil {
		return true
	}
	if e.Broadcast() {
		return true
	}
	if AuthoredBy(e, viewer) {
		return true
	}
	if viewer.ID != "" {
		for _, id := range e.RecipientIDs {
			if id == viewer.ID {
				return true
			}
		}
	}
	if viewer.Label != "" {
		for _, label := range e.RecipientLabels {
			if label == viewer.Label {
				return true
			}
		}
	}
	return false
}
