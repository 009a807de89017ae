package core

// MediaStore persists raw event media under deterministic keys. The canonical
// interface lives here to keep domain contracts central; implementation
// packages (in-memory, sqlite, object stores) provide backends that can be
// swapped without touching calling code.
//
// Implementations must be safe for concurrent use: a single store instance
// may be shared by the media managers of several devices.
type MediaStore interface {
	// Save stores (or idempotently overwrites) the media bytes for the key.
	Save(key string, data []byte) error
	// Load returns the stored bytes or ErrMediaNotFound when absent.
	Load(key string) ([]byte, error)
	// Remove deletes the media for the key. Removing an absent key is a no-op.
	Remove(key string) error
}

// StoreKeyFunc derives the store key for a device's event. It must be a pure
// function of its inputs so keys stay stable across processes. Callers
// needing predictable keys (test doubles, external addressing schemes) can
// substitute their own.
type StoreKeyFunc func(deviceID string, event EventRecord) string

// DefaultStoreKey keys media by device id and event session id. Sub-events of
// one session share a key, so a session's media is replaced in place as the
// thread evolves.
func DefaultStoreKey(deviceID string, event EventRecord) string {
	return deviceID + "/" + event.SessionID
}
