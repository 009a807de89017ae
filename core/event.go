package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultEventMediaExpiry is how long after its timestamp an event's media
// remains fetchable. Camera backends invalidate event image URLs shortly
// after publishing the event, so fetches past this window are refused.
const DefaultEventMediaExpiry = 30 * time.Second

// EventRecord is a normalized per-trait event. A record belongs to an event
// session: a thread of related sub-events sharing one SessionID that
// represents a single real-world occurrence (e.g. motion that escalates to a
// person detection). SessionID is the cache identity; EventID identifies the
// most recent concrete sub-event within the session.
type EventRecord struct {
	// EventID identifies the concrete sub-event within the session.
	EventID string `json:"eventId"`
	// SessionID groups related sub-events into one logical event.
	SessionID string `json:"eventSessionId"`
	// Type is the trait qualified event name, e.g. "cam.events.CameraMotion.Motion".
	Type string `json:"-"`
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"-"`
	// ExpiresAt is when the media fetch window for this event closes.
	// Always >= Timestamp.
	ExpiresAt time.Time `json:"-"`
	// PreviewURL carries an inline media URL for clip preview events. Empty
	// for events whose media must be generated through a device command.
	PreviewURL string `json:"previewUrl,omitempty"`
}

// IsExpired reports whether the media fetch window has closed relative to now.
func (e EventRecord) IsExpired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// EventMessage is the wire envelope delivered by the event feed. A single
// message can carry several per-trait event records that share the envelope
// timestamp, plus raw trait value updates for the device.
type EventMessage struct {
	// EventID identifies the envelope itself, not the contained events.
	EventID string
	// Timestamp is when the message was published.
	Timestamp time.Time
	// ResourceUpdateName is the device resource the message applies to.
	ResourceUpdateName string
	// Events maps trait qualified event names to their normalized records.
	Events map[string]EventRecord
	// Traits holds raw trait value updates keyed by trait name.
	Traits map[string]json.RawMessage
}

type rawEventMessage struct {
	EventID        string `json:"eventId"`
	Timestamp      string `json:"timestamp"`
	ResourceUpdate *struct {
		Name   string                     `json:"name"`
		Events map[string]json.RawMessage `json:"events"`
		Traits map[string]json.RawMessage `json:"traits"`
	} `json:"resourceUpdate"`
}

// ParseEventMessage decodes a wire envelope into an EventMessage, normalizing
// each per-trait payload into an EventRecord. Records inherit the envelope
// timestamp and expire DefaultEventMediaExpiry later. Malformed envelopes and
// records missing a session id are rejected.
func ParseEventMessage(data []byte) (*EventMessage, error) {
	var raw rawEventMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode event message: %w", err)
	}
	if raw.EventID == "" {
		return nil, fmt.Errorf("event message missing eventId")
	}
	ts, err := time.Parse(time.RFC3339, raw.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("event message timestamp: %w", err)
	}
	msg := &EventMessage{
		EventID:   raw.EventID,
		Timestamp: ts.UTC(),
		Events:    map[string]EventRecord{},
	}
	if raw.ResourceUpdate == nil {
		return msg, nil
	}
	msg.ResourceUpdateName = raw.ResourceUpdate.Name
	msg.Traits = raw.ResourceUpdate.Traits
	for name, payload := range raw.ResourceUpdate.Events {
		var rec EventRecord
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decode event %q: %w", name, err)
		}
		if rec.SessionID == "" {
			return nil, fmt.Errorf("event %q missing eventSessionId", name)
		}
		rec.Type = name
		rec.Timestamp = msg.Timestamp
		rec.ExpiresAt = msg.Timestamp.Add(DefaultEventMediaExpiry)
		msg.Events[name] = rec
	}
	return msg, nil
}
