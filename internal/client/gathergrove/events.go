package gathergrove

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gathergrove/internal/models"
)

// ListEvents fetches the event listing and normalizes every record. Records
// whose status marks cancellation are filtered out; records with no usable
// id are dropped and reported through the second return value.
func (c *Client) ListEvents(ctx context.Context) ([]models.Event, int, error) {
	body, err := c.doRequest(ctx, "GET", "/v1/events", nil, nil)
	if err != nil {
		return nil, 0, err
	}
	items, err := parseEventItems(body)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now().UTC()
	events := make([]models.Event, 0, len(items))
	dropped := 0
	for _, item := range items {
		e, ok := normalizeEvent(item, now)
		if !ok {
			dropped++
			continue
		}
		if e.Cancelled {
			continue
		}
		events = append(events, e)
	}
	return events, dropped, nil
}

func parseEventItems(body []byte) ([]json.RawMessage, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Events []json.RawMessage `json:"events"`
		Data   []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		if len(wrapped.Events) > 0 {
			return wrapped.Events, nil
		}
		if len(wrapped.Data) > 0 {
			return wrapped.Data, nil
		}
		return nil, nil
	}
	return nil, fmt.Errorf("unknown event listing format")
}
