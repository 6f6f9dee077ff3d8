package models

// Event is a domain notification published on the message bus.
type Event struct {
	Name       string         `json:"name"`
	EntityType string         `json:"entity_type"`
	Method     string         `json:"method"`
	EntityID   string         `json:"entity_id"`
	SessionID  string         `json:"session_id,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Timestamp  int64          `json:"timestamp"`
}
