package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/camkit/camkit/core"
)

// EventBuilder provides a fluent helper for constructing event records in
// tests. Example:
//
//	rec := NewEventBuilder("cam.events.CameraMotion.Motion").Session("sess-1").Build()
//
// Chain only the parts you need; sensible defaults are applied: a uuid event
// id, a fresh timestamp and the default media expiry window.
type EventBuilder struct {
	eventID    string
	sessionID  string
	eventType  string
	timestamp  time.Time
	expiresAt  *time.Time
	previewURL string
}

// NewEventBuilder creates a builder for the given trait qualified event name.
func NewEventBuilder(eventType string) *EventBuilder {
	return &EventBuilder{
		eventID:   uuid.NewString(),
		sessionID: uuid.NewString(),
		eventType: eventType,
		timestamp: time.Now().UTC(),
	}
}

// ID overrides the auto-generated event id (chainable).
func (b *EventBuilder) ID(id string) *EventBuilder { b.eventID = id; return b }

// Session sets the event session id (chainable).
func (b *EventBuilder) Session(id string) *EventBuilder { b.sessionID = id; return b }

// At sets the event timestamp (chainable).
func (b *EventBuilder) At(ts time.Time) *EventBuilder { b.timestamp = ts; return b }

// ExpiresAt overrides the expiry instant (chainable).
func (b *EventBuilder) ExpiresAt(ts time.Time) *EventBuilder { b.expiresAt = &ts; return b }

// Expired marks the record as already expired at build time (chainable).
func (b *EventBuilder) Expired() *EventBuilder {
	ts := b.timestamp
	b.expiresAt = &ts
	return b
}

// PreviewURL sets an inline clip preview URL (chainable).
func (b *EventBuilder) PreviewURL(url string) *EventBuilder { b.previewURL = url; return b }

// Build materializes the event record.
func (b *EventBuilder) Build() core.EventRecord {
	expires := b.timestamp.Add(core.DefaultEventMediaExpiry)
	if b.expiresAt != nil {
		expires = *b.expiresAt
	}
	return core.EventRecord{
		EventID:    b.eventID,
		SessionID:  b.sessionID,
		Type:       b.eventType,
		Timestamp:  b.timestamp,
		ExpiresAt:  expires,
		PreviewURL: b.previewURL,
	}
}
