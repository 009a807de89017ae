package core

import "context"

// EventImageGenerator is the per-trait capability consumed by the event media
// manager. A trait that generates event media tracks the most recent event it
// has seen, reports whether that event is still active, and produces a
// fetchable descriptor for a given event record.
type EventImageGenerator interface {
	// EventName returns the trait qualified event name this generator handles.
	EventName() string

	// HandleEvent records an incoming event, updating the trait's notion of
	// its last and active event.
	HandleEvent(event EventRecord)

	// ActiveEvent returns the trait's current event while it is unexpired,
	// or nil when the trait has no active event.
	ActiveEvent() *EventRecord

	// LastEvent returns the most recently received event regardless of
	// expiry, or nil when no event has been seen.
	LastEvent() *EventRecord

	// CanGenerateImage reports whether the trait can produce media at all,
	// without side effects. Requests against a trait that cannot fail with
	// ErrUnsupportedMedia regardless of the event's expiry state.
	CanGenerateImage() bool

	// GenerateImage produces a fetchable descriptor for the event. Traits
	// that cannot produce media return ErrUnsupportedMedia.
	GenerateImage(ctx context.Context, event EventRecord) (*ImageDescriptor, error)
}

// Fetcher downloads the bytes behind an image descriptor. It is implemented
// by the transport layer; failures surface as *FetchError. The fetcher does
// not retry; callers decide whether to ask again.
type Fetcher interface {
	FetchBytes(ctx context.Context, desc ImageDescriptor) ([]byte, error)
}
