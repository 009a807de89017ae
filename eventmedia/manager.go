package eventmedia

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/camkit/camkit/core"
	"github.com/camkit/camkit/logging"
)

// Options configures a Manager.
type Options struct {
	// Policy is the cache policy. Defaults to NewCachePolicy().
	Policy *CachePolicy
	// Fetcher downloads descriptor bytes. Without a fetcher, on-demand and
	// prefetch downloads fail; cache bookkeeping still works.
	Fetcher core.Fetcher
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Manager is responsible for recent events of a single device and for
// fetching their associated media. It keeps a bounded LRU of event sessions,
// merges sub-events of one session into a single logical event, and serves
// media from a configured store before reaching for the network.
//
// HandleEvents is expected to be driven by a single ingestion stream per
// device; the retrieval operations may be called concurrently with it.
type Manager struct {
	deviceID string
	traits   map[string]core.EventImageGenerator // event name -> generator
	fetcher  core.Fetcher
	logger   logging.Logger

	mu     sync.Mutex
	cache  *eventCache
	policy *CachePolicy
}

// NewManager creates a Manager for the device. The trait map keys are trait
// qualified event names; events without a mapped generator are still cached
// for listing, but media requests for them fail.
func NewManager(deviceID string, traits map[string]core.EventImageGenerator, optFns ...func(o *Options)) *Manager {
	opts := Options{
		Policy: NewCachePolicy(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Policy == nil {
		opts.Policy = NewCachePolicy()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if traits == nil {
		traits = map[string]core.EventImageGenerator{}
	}
	return &Manager{
		deviceID: deviceID,
		traits:   traits,
		fetcher:  opts.Fetcher,
		logger:   opts.Logger,
		cache:    newEventCache(),
		policy:   opts.Policy,
	}
}

// CachePolicy returns the current cache policy.
func (m *Manager) CachePolicy() *CachePolicy {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.policy
}

// SetCachePolicy replaces the cache policy. The new bound is enforced on the
// next mutating operation.
func (m *Manager) SetCachePolicy(policy *CachePolicy) {
	if policy == nil {
		policy = NewCachePolicy()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policy = policy
}

// fetchPlan is the pure "should fetch" decision computed under the lock so
// the network I/O can happen outside of it.
type fetchPlan struct {
	record    core.EventRecord
	generator core.EventImageGenerator
	store     core.MediaStore
	key       string
}

// HandleEvents ingests the per-trait event records of one feed message.
// Records are inserted, or merged into their existing session slot, and the
// slot is touched. Once the cache exceeds the policy bound the least recently
// touched sessions are evicted, cascading into the backing store. With
// prefetch enabled, media of unexpired events is fetched and persisted before
// returning; prefetch failures are logged and never propagated.
func (m *Manager) HandleEvents(ctx context.Context, events map[string]core.EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	now := time.Now()

	m.mu.Lock()
	pol := m.policy.snapshot()
	var plans []fetchPlan
	for name, rec := range events {
		gen, supported := m.traits[name]
		if supported {
			gen.HandleEvent(rec)
		}
		merged := m.cache.put(rec)
		m.logger.Debug("event update", "device", m.deviceID, "event", name, "session", rec.SessionID, "merged", merged)
		if pol.prefetch && supported && gen.CanGenerateImage() && pol.store != nil && !rec.IsExpired(now) {
			plans = append(plans, fetchPlan{
				record:    rec,
				generator: gen,
				store:     pol.store,
				key:       pol.keyFunc(m.deviceID, rec),
			})
		}
	}
	var evicted []core.EventRecord
	for m.cache.len() > pol.size {
		rec, ok := m.cache.evictOldest()
		if !ok {
			break
		}
		evicted = append(evicted, rec)
	}
	m.mu.Unlock()

	for _, rec := range evicted {
		m.logger.Debug("evicting event session", "device", m.deviceID, "session", rec.SessionID)
		if pol.store == nil {
			continue
		}
		if err := pol.store.Remove(pol.keyFunc(m.deviceID, rec)); err != nil {
			m.logger.Warn("failed to remove evicted media", "session", rec.SessionID, "error", err)
		}
	}
	for _, plan := range plans {
		if err := m.prefetch(ctx, plan); err != nil {
			m.logger.Warn("prefetch failed", "device", m.deviceID, "session", plan.record.SessionID, "error", err)
		}
	}
	return nil
}

// prefetch fetches and persists one event's media. The event stays cached
// without media on failure; a later GetMedia retries on demand.
func (m *Manager) prefetch(ctx context.Context, plan fetchPlan) error {
	m.mu.Lock()
	cur, alive := m.cache.get(plan.record.SessionID)
	m.mu.Unlock()
	if !alive || cur.EventID != plan.record.EventID {
		return nil
	}

	data, _, err := m.download(ctx, plan.generator, plan.record)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}

	// The session may have been evicted while the download was in flight, in
	// the same batch or by a concurrent writer; its slot must not come back
	// into the store.
	m.mu.Lock()
	cur, alive = m.cache.get(plan.record.SessionID)
	m.mu.Unlock()
	if !alive || cur.EventID != plan.record.EventID {
		return nil
	}
	return plan.store.Save(plan.key, data)
}

// Events returns a snapshot of all cached event records ordered by timestamp
// descending (most recent first), independent of LRU order.
func (m *Manager) Events() []core.EventRecord {
	m.mu.Lock()
	records := m.cache.snapshot()
	m.mu.Unlock()

	sortRecordsByTimestampDesc(records)
	return records
}

// GetMedia returns the media for the event session, or (nil, nil) when the
// session is unknown, evicted, or its fetch window has closed. The lookup
// counts as a use for LRU purposes. Stored media is served without a network
// call; otherwise the trait generates a descriptor and the bytes are fetched
// through the transport and, when a store is configured, persisted for next
// time.
func (m *Manager) GetMedia(ctx context.Context, sessionID string) (*core.EventMedia, error) {
	m.mu.Lock()
	rec, ok := m.cache.get(sessionID)
	if !ok {
		m.mu.Unlock()
		return nil, nil
	}
	m.cache.touch(sessionID)
	gen, supported := m.traits[rec.Type]
	pol := m.policy.snapshot()
	m.mu.Unlock()

	if !supported {
		return nil, fmt.Errorf("%q: %w", rec.Type, core.ErrUnsupportedTrait)
	}
	// Capability misuse surfaces before the store lookup and before the
	// stale-fetch refusal, so an expired event on a media-less trait is an
	// error, not an absence.
	if !gen.CanGenerateImage() {
		return nil, fmt.Errorf("%q: %w", rec.Type, core.ErrUnsupportedMedia)
	}

	key := pol.keyFunc(m.deviceID, rec)
	if pol.store != nil {
		data, err := pol.store.Load(key)
		if err == nil {
			return &core.EventMedia{Event: rec, Media: core.NewMedia(data, mediaTypeFor(rec))}, nil
		}
		if !errors.Is(err, core.ErrMediaNotFound) {
			m.logger.Warn("media store load failed", "key", key, "error", err)
		}
	}

	data, imageType, err := m.download(ctx, gen, rec)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	media := core.NewMedia(data, imageType)

	// Re-check that the session survived the fetch; a slot evicted while the
	// download was in flight must not be resurrected in the store.
	m.mu.Lock()
	cur, alive := m.cache.get(sessionID)
	m.mu.Unlock()
	if pol.store != nil && alive && cur.EventID == rec.EventID {
		if err := pol.store.Save(key, data); err != nil {
			m.logger.Warn("media store save failed", "key", key, "error", err)
		}
	}
	return &core.EventMedia{Event: rec, Media: media}, nil
}

// download resolves a descriptor for the record and fetches its bytes. It
// returns (nil, 0, nil) when the fetch window has closed or the trait has no
// descriptor to offer. Must be called without holding the cache lock.
func (m *Manager) download(ctx context.Context, gen core.EventImageGenerator, rec core.EventRecord) ([]byte, core.ImageType, error) {
	if rec.IsExpired(time.Now()) {
		m.logger.Debug("refusing stale media fetch", "session", rec.SessionID)
		return nil, 0, nil
	}
	desc, err := gen.GenerateImage(ctx, rec)
	if err != nil {
		return nil, 0, err
	}
	if desc == nil {
		return nil, 0, nil
	}
	if m.fetcher == nil {
		return nil, 0, core.NewFetchError(desc.URL, 0, "no fetcher configured", nil)
	}
	data, err := m.fetcher.FetchBytes(ctx, *desc)
	if err != nil {
		return nil, 0, err
	}
	return data, desc.Type, nil
}

// GetActiveEventMedia returns media for the device's currently active event,
// or (nil, nil) when no trait reports one. When several traits are active at
// once, the event expected to remain valid longest wins.
func (m *Manager) GetActiveEventMedia(ctx context.Context) (*core.EventMedia, error) {
	gen := m.activeEventTrait()
	if gen == nil {
		return nil, nil
	}
	active := gen.ActiveEvent()
	if active == nil {
		return nil, nil
	}
	return m.GetMedia(ctx, active.SessionID)
}

// activeEventTrait selects among traits with an active (unexpired) event the
// one whose current event has the latest expiration.
func (m *Manager) activeEventTrait() core.EventImageGenerator {
	var selected core.EventImageGenerator
	var selectedEvent *core.EventRecord
	for _, gen := range m.traits {
		active := gen.ActiveEvent()
		if active == nil {
			continue
		}
		if selectedEvent == nil || active.ExpiresAt.After(selectedEvent.ExpiresAt) {
			selected = gen
			selectedEvent = active
		}
	}
	return selected
}

// mediaTypeFor classifies store-served bytes for a record: a clip preview
// session carries its URL inline, everything else is a generated still.
func mediaTypeFor(rec core.EventRecord) core.ImageType {
	if rec.PreviewURL != "" {
		return core.ImageTypeClipPreview
	}
	return core.ImageTypeJPEG
}

func sortRecordsByTimestampDesc(records []core.EventRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
}
