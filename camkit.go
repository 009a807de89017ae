// Package camkit provides a high-level façade over the camera management
// API, the device registry and the event feed subscriber. Most applications
// interact with this package by:
//  1. Creating a CamKit via New() with a project id and token provider
//  2. Calling Start() to load devices and begin consuming the event feed
//  3. Looking up devices and reading their event media
//
// The façade delegates event correlation to eventmedia.Manager, one per
// device. All defaults are safe for local development and testing; production
// deployments typically supply a durable media store and a structured logger.
package camkit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/camkit/camkit/api"
	"github.com/camkit/camkit/core"
	"github.com/camkit/camkit/device"
	"github.com/camkit/camkit/eventmedia"
	"github.com/camkit/camkit/logging"
	"github.com/camkit/camkit/store"
	"github.com/camkit/camkit/subscriber"
)

// Options configures the CamKit instance.
type Options struct {
	// BaseURL of the management API.
	BaseURL string
	// FeedURL of the websocket event feed. Leave empty to disable the feed;
	// events can then be injected via HandleEventMessage.
	FeedURL string

	// Store persists fetched event media across cache evictions. Defaults to
	// an in-memory store.
	Store core.MediaStore
	// CacheSize bounds the per-device event cache.
	CacheSize int
	// Prefetch downloads media eagerly when events arrive.
	Prefetch bool

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// CamKit is the high-level façade aggregating the API client, the device
// registry and the event feed subscriber.
type CamKit struct {
	opts    Options
	client  *api.Client
	tokens  api.TokenProvider
	devices *device.Manager
	feed    *subscriber.Subscriber
	logger  logging.Logger
}

// New creates a CamKit instance for the project with optional overrides.
func New(projectID string, tokens api.TokenProvider, optFns ...func(o *Options)) *CamKit {
	opts := Options{
		BaseURL:   api.DefaultBaseURL,
		Store:     store.NewInMemoryStore(),
		CacheSize: eventmedia.DefaultCacheSize,
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	client := api.NewClient(projectID, tokens, func(o *api.Options) {
		o.BaseURL = opts.BaseURL
		o.Logger = opts.Logger
	})

	return &CamKit{
		opts:    opts,
		client:  client,
		tokens:  tokens,
		devices: device.NewManager(func(o *device.ManagerOptions) { o.Logger = opts.Logger }),
		logger:  opts.Logger,
	}
}

// Client returns the underlying API client.
func (k *CamKit) Client() *api.Client { return k.client }

// Devices returns the device registry.
func (k *CamKit) Devices() *device.Manager { return k.devices }

// Device looks up a device by its full resource name.
func (k *CamKit) Device(name string) (*device.Device, bool) {
	return k.devices.Get(name)
}

// Start loads the project's devices and, when a feed URL is configured,
// begins consuming the event feed in the background.
func (k *CamKit) Start(ctx context.Context) error {
	if err := k.RefreshDevices(ctx); err != nil {
		return err
	}
	if k.opts.FeedURL == "" {
		return nil
	}

	header := http.Header{}
	if k.tokens != nil {
		token, err := k.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("resolve feed token: %w", err)
		}
		header.Set("Authorization", "Bearer "+token)
	}
	k.feed = subscriber.New(k.opts.FeedURL, k.devices.HandleEvent, func(o *subscriber.Options) {
		o.Header = header
		o.Logger = k.logger
	})
	return k.feed.Start(ctx)
}

// Stop shuts down the event feed. Devices and their cached media stay usable.
func (k *CamKit) Stop() {
	if k.feed != nil {
		k.feed.Stop()
		k.feed = nil
	}
}

// RefreshDevices reloads the device list from the API, registering devices
// that appeared since the last load. Existing devices keep their cache state.
func (k *CamKit) RefreshDevices(ctx context.Context) error {
	list, err := k.client.GetDevices(ctx)
	if err != nil {
		return err
	}
	for _, data := range list {
		if _, ok := k.devices.Get(data.Name); ok {
			continue
		}
		d, err := k.newDevice(data)
		if err != nil {
			k.logger.Warn("skipping device", "device", data.Name, "error", err)
			continue
		}
		k.devices.Add(d)
	}
	return nil
}

// HandleEventMessage injects a feed message directly, bypassing the
// subscriber. Useful when the application owns the feed transport.
func (k *CamKit) HandleEventMessage(ctx context.Context, msg *core.EventMessage) error {
	return k.devices.HandleEvent(ctx, msg)
}

func (k *CamKit) newDevice(data device.Data) (*device.Device, error) {
	policy := eventmedia.NewCachePolicy()
	policy.SetEventCacheSize(k.opts.CacheSize)
	policy.SetPrefetch(k.opts.Prefetch)
	policy.SetStore(k.opts.Store)
	return device.New(data, func(o *device.Options) {
		o.Executor = k.client
		o.Fetcher = k.client
		o.Policy = policy
		o.Logger = k.logger
	})
}
