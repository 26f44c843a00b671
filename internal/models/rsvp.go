package models

// Choice is the viewer's own RSVP selection for one event.
type Choice string

const (
	ChoiceNone  Choice = "none"
	ChoiceGoing Choice = "going"
	ChoiceMaybe Choice = "maybe"
	ChoiceCant  Choice = "cant"
)

// Valid reports whether c is one of the known selections.
func (c Choice) Valid() bool {
	switch c {
	case ChoiceNone, ChoiceGoing, ChoiceMaybe, ChoiceCant:
		return true
	}
	return false
}

// Counts is the aggregate RSVP tally for one event. Values never go
// negative; decrements are floor-clamped at zero.
type Counts struct {
	Going int `json:"going"`
	Maybe int `json:"maybe"`
	Cant  int `json:"cant"`
}

// RsvpState is the viewer-local RSVP bookkeeping for one event, keyed by
// canonical event id.
type RsvpState struct {
	Choice Choice `json:"choice"`
	Counts Counts `json:"counts"`
}

// Viewer is the current session's identity. A nil Viewer means the session
// is anonymous.
type Viewer struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
