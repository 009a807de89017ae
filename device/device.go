package device

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/camkit/camkit/core"
	"github.com/camkit/camkit/eventmedia"
	"github.com/camkit/camkit/logging"
	"github.com/camkit/camkit/trait"
)

// Relation links a device to the room or structure containing it.
type Relation struct {
	Parent      string `json:"parent"`
	DisplayName string `json:"displayName"`
}

// Data is the raw device resource returned by the management API.
type Data struct {
	Name            string                     `json:"name"`
	Type            string                     `json:"type"`
	Traits          map[string]json.RawMessage `json:"traits"`
	ParentRelations []Relation                 `json:"parentRelations"`
}

// Options configures device construction.
type Options struct {
	// Executor runs device commands; required for event image generation.
	Executor trait.CommandExecutor
	// Fetcher downloads event media bytes.
	Fetcher core.Fetcher
	// Policy is the device's cache policy. Defaults to a fresh policy.
	Policy *eventmedia.CachePolicy
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Device represents one camera device: its trait set, raw trait values and
// the event media manager correlating its events with media.
type Device struct {
	name   string
	typ    string
	traits map[string]trait.Trait
	media  *eventmedia.Manager
	logger logging.Logger

	mu           sync.Mutex
	traitData    map[string]json.RawMessage
	traitEventTS map[string]time.Time
	relations    map[string]string
	callbacks    []*eventCallback
}

type eventCallback struct {
	fn func(msg *core.EventMessage)
}

// New builds a device from its raw resource data, constructing the declared
// traits and wiring the event media manager.
func New(data Data, optFns ...func(o *Options)) (*Device, error) {
	if data.Name == "" {
		return nil, fmt.Errorf("device data missing name")
	}
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	traits := trait.BuildTraits(data.Name, data.Traits, opts.Executor)
	media := eventmedia.NewManager(data.Name, trait.EventTraitMap(traits), func(o *eventmedia.Options) {
		o.Fetcher = opts.Fetcher
		o.Logger = opts.Logger
		if opts.Policy != nil {
			o.Policy = opts.Policy
		}
	})

	relations := map[string]string{}
	for _, rel := range data.ParentRelations {
		if rel.Parent == "" || rel.DisplayName == "" {
			continue
		}
		relations[rel.Parent] = rel.DisplayName
	}

	traitData := make(map[string]json.RawMessage, len(data.Traits))
	for name, payload := range data.Traits {
		traitData[name] = payload
	}

	return &Device{
		name:         data.Name,
		typ:          data.Type,
		traits:       traits,
		media:        media,
		logger:       opts.Logger,
		traitData:    traitData,
		traitEventTS: map[string]time.Time{},
		relations:    relations,
	}, nil
}

// Name returns the resource name of the device, e.g. "enterprises/p/devices/d".
func (d *Device) Name() string { return d.name }

// Type returns the device type for display purposes. The type should not be
// used to infer functionality; use the trait set instead.
func (d *Device) Type() string { return d.typ }

// Traits returns the device's constructed trait set keyed by trait name.
func (d *Device) Traits() map[string]trait.Trait { return d.traits }

// TraitData returns the raw value payload last seen for the trait.
func (d *Device) TraitData(name string) (json.RawMessage, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.traitData[name]
	return data, ok
}

// ParentRelations returns the room or structure display names keyed by
// parent resource.
func (d *Device) ParentRelations() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]string, len(d.relations))
	for k, v := range d.relations {
		out[k] = v
	}
	return out
}

// EventMediaManager returns the device's event media manager.
func (d *Device) EventMediaManager() *eventmedia.Manager { return d.media }

// AddEventCallback registers a callback notified after each processed event
// message. The returned function unregisters it.
func (d *Device) AddEventCallback(fn func(msg *core.EventMessage)) func() {
	cb := &eventCallback{fn: fn}
	d.mu.Lock()
	d.callbacks = append(d.callbacks, cb)
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, c := range d.callbacks {
			if c == cb {
				d.callbacks = append(d.callbacks[:i], d.callbacks[i+1:]...)
				return
			}
		}
	}
}

// HandleEventMessage processes one feed message addressed to this device:
// trait value updates are applied (stale ones discarded), event records are
// ingested into the media manager and callbacks are notified.
func (d *Device) HandleEventMessage(ctx context.Context, msg *core.EventMessage) error {
	if msg.ResourceUpdateName == "" {
		return fmt.Errorf("message %q is not a resource update", msg.EventID)
	}
	if msg.ResourceUpdateName != d.name {
		return fmt.Errorf("message for %q routed to %q", msg.ResourceUpdateName, d.name)
	}
	d.logger.Debug("processing update", "device", d.name, "message", msg.EventID)

	d.applyTraitUpdates(msg)
	if err := d.media.HandleEvents(ctx, msg.Events); err != nil {
		return err
	}

	d.mu.Lock()
	callbacks := make([]*eventCallback, len(d.callbacks))
	copy(callbacks, d.callbacks)
	d.mu.Unlock()
	for _, cb := range callbacks {
		cb.fn(msg)
	}
	return nil
}

// applyTraitUpdates merges raw trait values from the message, discarding
// updates older than a previously applied one. There is still a race where
// values read from the API on startup are overwritten by old messages; later
// messages are assumed to eventually correct that.
func (d *Device) applyTraitUpdates(msg *core.EventMessage) {
	if len(msg.Traits) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for name, payload := range msg.Traits {
		if ts, ok := d.traitEventTS[name]; ok && ts.After(msg.Timestamp) {
			continue
		}
		d.traitData[name] = payload
		d.traitEventTS[name] = msg.Timestamp
	}
}
