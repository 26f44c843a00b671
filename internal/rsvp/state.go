package rsvp

import "gathergrove/internal/models"

// ApplyLocalChoice runs the optimistic toggle transition. Selecting the
// active choice clears it; selecting a different one moves the viewer's
// tally from the old bucket to the new. Counts never go negative.
//
// state is nil when the viewer has never touched the event.
func ApplyLocalChoice(state *models.RsvpState, choice models.Choice) models.RsvpState {
	var next models.RsvpState
	if state != nil {
		next = *state
	} else {
		next.Choice = models.ChoiceNone
	}

	if !choice.Valid() {
		return next
	}

	if next.Choice == choice || choice == models.ChoiceNone {
		// Idempotent toggle: re-selecting nets out to none.
		next.Counts = decrement(next.Counts, next.Choice)
		next.Choice = models.ChoiceNone
		return next
	}

	next.Counts = decrement(next.Counts, next.Choice)
	next.Counts = increment(next.Counts, choice)
	next.Choice = choice
	return next
}

// ReconcileCounts overwrites the aggregate tally with authoritative server
// values. The viewer's own choice is never touched by reconciliation.
func ReconcileCounts(state models.RsvpState, counts models.Counts) models.RsvpState {
	state.Counts = counts
	return state
}

// BackendEligible reports whether an event's RSVP state syncs with the
// backend. Local-only drafts keep their state purely client-side.
func BackendEligible(e models.Event) bool {
	return e.ID != "" && !models.IsLocalOnly(e.ID)
}

func increment(c models.Counts, choice models.Choice) models.Counts {
	switch choice {
	case models.ChoiceGoing:
		c.Going++
	case models.ChoiceMaybe:
		c.Maybe++
	case models.ChoiceCant:
		c.Cant++
	}
	return c
}

// decrement is floor-clamped at zero; optimistic local state can disagree
// with counts fetched from the server.
func decrement(c models.Counts, choice models.Choice) models.Counts {
	switch choice {
	case models.ChoiceGoing:
		if c.Going > 0 {
			c.Going--
		}
	case models.ChoiceMaybe:
		if c.Maybe > 0 {
			c.Maybe--
		}
	case models.ChoiceCant:
		if c.Cant > 0 {
			c.Cant--
		}
	}
	return c
}
