package notifications

import "encoding/json"

// FeedChannel is the Redis channel carrying feed events between instances.
const FeedChannel = "pulse:feed"

// Feed event types.
const (
	EventPostCreated    = "post_created"
	EventPostDeleted    = "post_deleted"
	EventPostEngagement = "post_engagement"
)

// Event is the envelope written to WebSocket clients.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeEvent wraps payload in an Event envelope.
func EncodeEvent(eventType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Type: eventType, Payload: raw})
}
