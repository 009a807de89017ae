package store

import (
	"sync"

	"github.com/camkit/camkit/core"
)

// InMemoryStore is a trivial in-process MediaStore implementation useful for
// tests, examples and single-process prototypes. It keeps all media in a map
// guarded by an RWMutex. Data is copied on save / load to avoid accidental
// external mutation of internal buffers.
//
// The mapping is unbounded; bounding cached media is the event media
// manager's job, not the store's. For durability across process restarts,
// prefer SQLiteStore or another persistent backend.
type InMemoryStore struct {
	mu    sync.RWMutex
	media map[string][]byte
}

// NewInMemoryStore returns an empty in-memory media store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{media: make(map[string][]byte)}
}

// Save stores (or overwrites) the media bytes for the given key. The input
// slice is copied before storage.
func (s *InMemoryStore) Save(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.media[key] = cp
	return nil
}

// Load returns a copy of the stored media bytes or core.ErrMediaNotFound.
func (s *InMemoryStore) Load(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.media[key]
	if !ok {
		return nil, core.ErrMediaNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

// Remove deletes the media for the key. Removing an absent key is a no-op.
func (s *InMemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.media, key)
	return nil
}

// Len returns the number of stored media entries (for testing/monitoring).
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.media)
}
