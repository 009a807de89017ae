package eventmedia

import (
	"sync"

	"github.com/camkit/camkit/core"
)

// DefaultCacheSize is the number of event sessions kept in memory per device
// when no explicit size is configured.
const DefaultCacheSize = 2

// CachePolicy configures how much event media a Manager keeps and where it
// persists fetched bytes. A policy is mutable at any time; a decrease of the
// cache size takes effect on the next write, not immediately.
type CachePolicy struct {
	mu             sync.RWMutex
	eventCacheSize int
	prefetch       bool
	store          core.MediaStore
	keyFunc        core.StoreKeyFunc
}

// NewCachePolicy returns a policy with the default cache size, prefetch
// disabled and no backing store.
func NewCachePolicy() *CachePolicy {
	return &CachePolicy{
		eventCacheSize: DefaultCacheSize,
		keyFunc:        core.DefaultStoreKey,
	}
}

// EventCacheSize returns the number of event sessions to keep in memory.
func (p *CachePolicy) EventCacheSize() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.eventCacheSize
}

// SetEventCacheSize updates the in-memory bound. Values below 1 are clamped
// to 1. Shrinking does not evict immediately; the bound is enforced on the
// next mutating operation.
func (p *CachePolicy) SetEventCacheSize(size int) {
	if size < 1 {
		size = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eventCacheSize = size
}

// Prefetch reports whether media is eagerly fetched and persisted on event
// arrival.
func (p *CachePolicy) Prefetch() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.prefetch
}

// SetPrefetch updates the prefetch behavior.
func (p *CachePolicy) SetPrefetch(prefetch bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prefetch = prefetch
}

// Store returns the configured persistent media store, or nil.
func (p *CachePolicy) Store() core.MediaStore {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store
}

// SetStore swaps the persistent media store. Existing entries are not
// migrated; the new store only receives future fetches and evictions.
func (p *CachePolicy) SetStore(store core.MediaStore) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.store = store
}

// KeyFunc returns the store key derivation function.
func (p *CachePolicy) KeyFunc() core.StoreKeyFunc {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.keyFunc
}

// SetKeyFunc substitutes the store key derivation, e.g. for test doubles or
// external addressing schemes. A nil value restores the default.
func (p *CachePolicy) SetKeyFunc(fn core.StoreKeyFunc) {
	if fn == nil {
		fn = core.DefaultStoreKey
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keyFunc = fn
}

// snapshot returns a consistent view of the policy for a single operation.
func (p *CachePolicy) snapshot() policySnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return policySnapshot{
		size:     p.eventCacheSize,
		prefetch: p.prefetch,
		store:    p.store,
		keyFunc:  p.keyFunc,
	}
}

type policySnapshot struct {
	size     int
	prefetch bool
	store    core.MediaStore
	keyFunc  core.StoreKeyFunc
}
