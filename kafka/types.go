package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope of every published domain event.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Source    string         `json:"source"`
	Version   string         `json:"version"`
	Timestamp time.Time      `json:"timestamp"`
	Subject   string         `json:"subject,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent stamps a new event with a random id and the current time.
// Subject doubles as the partition key.
func NewEvent(eventType, subject string, data map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    "linguacast",
		Version:   "1.0",
		Timestamp: time.Now().UTC(),
		Subject:   subject,
		Data:      data,
	}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Key returns the partition key: the subject, or the id when unset.
func (e Event) Key() string {
	if e.Subject != "" {
		return e.Subject
	}
	return e.ID
}
