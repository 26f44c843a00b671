package gathergrove

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"gathergrove/internal/models"
)

// RsvpBuckets holds the three respondent lists the backend returns for one
// event.
type RsvpBuckets struct {
	Going []models.Person
	Maybe []models.Person
	Cant  []models.Person
}

// Counts collapses the buckets into the aggregate tally.
func (b RsvpBuckets) Counts() models.Counts {
	return models.Counts{
		Going: len(b.Going),
		Maybe: len(b.Maybe),
		Cant:  len(b.Cant),
	}
}

// GetRsvps fetches the authoritative RSVP buckets for an event. The can't-go
// bucket has been renamed twice upstream, so all known spellings are probed.
func (c *Client) GetRsvps(ctx context.Context, eventID string) (*RsvpBuckets, error) {
	if eventID == "" {
		return nil, fmt.Errorf("event id is required")
	}
	path := fmt.Sprintf("/v1/events/%s/rsvps", url.PathEscape(eventID))
	body, err := c.doRequest(ctx, "GET", path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parseRsvpBuckets(body)
}

// SubmitRsvp records the viewer's choice for an event.
func (c *Client) SubmitRsvp(ctx context.Context, eventID string, choice models.Choice) error {
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}
	if choice == models.ChoiceNone || !choice.Valid() {
		return fmt.Errorf("invalid choice %q", choice)
	}
	body, _ := json.Marshal(map[string]string{"choice": string(choice)})
	path := fmt.Sprintf("/v1/events/%s/rsvp", url.PathEscape(eventID))
	_, err := c.doRequest(ctx, "POST", path, nil, body)
	return err
}

// WithdrawRsvp clears the viewer's choice for an event.
func (c *Client) WithdrawRsvp(ctx context.Context, eventID string) error {
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}
	path := fmt.Sprintf("/v1/events/%s/rsvp", url.PathEscape(eventID))
	_, err := c.doRequest(ctx, "DELETE", path, nil, nil)
	return err
}

func parseRsvpBuckets(body []byte) (*RsvpBuckets, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	// Some deployments wrap the buckets one level down.
	if inner, ok := raw["rsvps"]; ok {
		var innerMap map[string]json.RawMessage
		if err := json.Unmarshal(inner, &innerMap); err == nil {
			raw = innerMap
		}
	}
	b := &RsvpBuckets{
		Going: parsePersonListRaw(firstRaw(raw, "going")),
		Maybe: parsePersonListRaw(firstRaw(raw, "maybe")),
		Cant:  parsePersonListRaw(firstRaw(raw, "cant", "cantgo", "cant_go", "not_going", "notGoing")),
	}
	return b, nil
}

func parsePersonListRaw(b json.RawMessage) []models.Person {
	if len(b) == 0 {
		return nil
	}
	var list []json.RawMessage
	if err := json.Unmarshal(b, &list); err != nil {
		return nil
	}
	out := make([]models.Person, 0, len(list))
	for _, item := range list {
		if p := parsePersonRaw(item); p != nil {
			out = append(out, *p)
		}
	}
	return out
}
