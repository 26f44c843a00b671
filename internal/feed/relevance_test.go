package feed

import (
	"testing"

	"gathergrove/internal/models"
)

func TestIsRelevant(t *testing.T) {
	me := &models.Viewer{ID: "u1", Label: "Sam"}
	tests := []struct {
		name   string
		event  models.Event
		viewer *models.Viewer
		want   bool
	}{
		{"broadcast to anyone", models.Event{ID: "e"}, me, true},
		{"broadcast to anonymous", models.Event{ID: "e"}, nil, true},
		{"targeted to anonymous", models.Event{ID: "e", RecipientIDs: []string{"u2"}}, nil, true},
		{"targeted by id", models.Event{ID: "e", RecipientIDs: []string{"u1"}}, me, true},
		{"targeted by label", models.Event{ID: "e", RecipientLabels: []string{"Sam"}}, me, true},
		{"targeted elsewhere", models.Event{ID: "e", RecipientIDs: []string{"u2"}}, me, false},
		{"author always sees it", models.Event{ID: "e", RecipientIDs: []string{"u2"}, CreatedBy: &models.Person{ID: "u1"}}, me, true},
		{"author by label fallback", models.Event{ID: "e", RecipientIDs: []string{"u2"}, CreatedBy: &models.Person{Label: "Sam"}}, me, true},
		{"author by host ref", models.Event{ID: "e", RecipientIDs: []string{"u2"}, HostRef: "u1"}, me, true},
	}
	for _, tt := range tests {
		if got := IsRelevant(tt.event, tt.viewer); got != tt.want {
			t.Fatalf("%s: got %v want %v", tt.name, got, tt.want)
		}
	}
}
