package testutil

import (
	"context"
	"sync"

	"github.com/camkit/camkit/core"
)

// FakeGenerator is a configurable core.EventImageGenerator. It remembers the
// last handled event, reports it active while unexpired (or as pinned via
// SetActive) and serves a fixed descriptor.
type FakeGenerator struct {
	mu         sync.Mutex
	eventName  string
	descriptor *core.ImageDescriptor
	err        error
	noMedia    bool
	lastEvent  *core.EventRecord
	active     *core.EventRecord
	generated  int
}

// NewFakeGenerator creates a generator for the event name serving desc.
func NewFakeGenerator(eventName string, desc *core.ImageDescriptor) *FakeGenerator {
	return &FakeGenerator{eventName: eventName, descriptor: desc}
}

// WithoutMedia models a trait that declares no media capability.
func (g *FakeGenerator) WithoutMedia() *FakeGenerator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.noMedia = true
	return g
}

// FailWith makes GenerateImage return err.
func (g *FakeGenerator) FailWith(err error) *FakeGenerator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
	return g
}

// SetActive pins the active event regardless of handled events.
func (g *FakeGenerator) SetActive(rec *core.EventRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = rec
}

// Generated returns how many descriptors were produced.
func (g *FakeGenerator) Generated() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generated
}

func (g *FakeGenerator) EventName() string { return g.eventName }

func (g *FakeGenerator) HandleEvent(rec core.EventRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastEvent = &rec
	g.active = &rec
}

func (g *FakeGenerator) ActiveEvent() *core.EventRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

func (g *FakeGenerator) LastEvent() *core.EventRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastEvent
}

func (g *FakeGenerator) CanGenerateImage() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.noMedia
}

func (g *FakeGenerator) GenerateImage(_ context.Context, _ core.EventRecord) (*core.ImageDescriptor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.noMedia {
		return nil, core.ErrUnsupportedMedia
	}
	if g.err != nil {
		return nil, g.err
	}
	g.generated++
	return g.descriptor, nil
}

// FakeFetcher is a core.Fetcher returning canned bytes per descriptor URL
// and counting fetches.
type FakeFetcher struct {
	mu        sync.Mutex
	responses map[string][]byte
	err       error
	fetches   int
}

// NewFakeFetcher creates a fetcher with no canned responses.
func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{responses: make(map[string][]byte)}
}

// Respond registers the bytes served for a descriptor URL.
func (f *FakeFetcher) Respond(url string, data []byte) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[url] = data
	return f
}

// FailWith makes every fetch return err.
func (f *FakeFetcher) FailWith(err error) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	return f
}

// Fetches returns how many downloads were attempted.
func (f *FakeFetcher) Fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *FakeFetcher) FetchBytes(_ context.Context, desc core.ImageDescriptor) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.responses[desc.URL]
	if !ok {
		return nil, core.NewFetchError(desc.URL, 404, "no canned response", nil)
	}
	return data, nil
}
