package rsvp

import (
	"testing"

	"gathergrove/internal/models"
)

func TestApplyLocalChoice_FirstSelection(t *testing.T) {
	state := ApplyLocalChoice(nil, models.ChoiceGoing)
	if state.Choice != models.ChoiceGoing {
		t.Fatalf("choice=%s want going", state.Choice)
	}
	if state.Counts != (models.Counts{Going: 1}) {
		t.Fatalf("counts=%+v want going:1", state.Counts)
	}
}

func TestApplyLocalChoice_ToggleClears(t *testing.T) {
	state := ApplyLocalChoice(nil, models.ChoiceGoing)
	state = ApplyLocalChoice(&state, models.ChoiceGoing)
	if state.Choice != models.ChoiceNone {
		t.Fatalf("choice=%s want none after re-selecting", state.Choice)
	}
	if state.Counts != (models.Counts{}) {
		t.Fatalf("counts=%+v want all zero", state.Counts)
	}
}

func TestApplyLocalChoice_SwitchMovesCount(t *testing.T) {
	state := ApplyLocalChoice(nil, models.ChoiceGoing)
	state = ApplyLocalChoice(&state, models.ChoiceMaybe)
	if state.Choice != models.ChoiceMaybe {
		t.Fatalf("choice=%s want maybe", state.Choice)
	}
	if state.Counts != (models.Counts{Maybe: 1}) {
		t.Fatalf("counts=%+v want maybe:1", state.Counts)
	}
}

func TestApplyLocalChoice_NeverNegative(t *testing.T) {
	state := models.RsvpState{Choice: models.ChoiceCant}
	next := ApplyLocalChoice(&state, models.ChoiceCant)
	if next.Counts.Cant != 0 {
		t.Fatalf("cant=%d want floor-clamped 0", next.Counts.Cant)
	}
}

// Any sequence of toggles keeps the total equal to the number of active
// non-none choices, which for a single viewer is zero or one.
func TestApplyLocalChoice_ToggleInvariant(t *testing.T) {
	seq := []models.Choice{
		models.ChoiceGoing, models.ChoiceGoing, models.ChoiceMaybe,
		models.ChoiceCant, models.ChoiceCant, models.ChoiceGoing,
		models.ChoiceMaybe, models.ChoiceNone,
	}
	var state models.RsvpState
	state.Choice = models.ChoiceNone
	for i, choice := range seq {
		state = ApplyLocalChoice(&state, choice)
		total := state.Counts.Going + state.Counts.Maybe + state.Counts.Cant
		want := 1
		if state.Choice == models.ChoiceNone {
			want = 0
		}
		if total != want {
			t.Fatalf("step %d: total=%d want %d (state=%+v)", i, total, want, state)
		}
		if state.Counts.Going < 0 || state.Counts.Maybe < 0 || state.Counts.Cant < 0 {
			t.Fatalf("step %d: negative count: %+v", i, state.Counts)
		}
	}
}

func TestReconcileCounts_PreservesChoice(t *testing.T) {
	state := ApplyLocalChoice(nil, models.ChoiceGoing)
	state = ReconcileCounts(state, models.Counts{Going: 2})
	if state.Choice != models.ChoiceGoing {
		t.Fatalf("choice=%s want going preserved", state.Choice)
	}
	if state.Counts != (models.Counts{Going: 2}) {
		t.Fatalf("counts=%+v want authoritative going:2", state.Counts)
	}
}

func TestBackendEligible(t *testing.T) {
	if BackendEligible(models.Event{ID: "local-abc"}) {
		t.Fatalf("local-only draft must stay client-side")
	}
	if BackendEligible(models.Event{}) {
		t.Fatalf("empty id is not eligible")
	}
	if !BackendEligible(models.Event{ID: "evt-1"}) {
		t.Fatalf("server event should be eligible")
	}
}
