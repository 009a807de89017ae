package subscriber

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/camkit/camkit/core"
	"github.com/camkit/camkit/logging"
)

// Handler processes one decoded event message. A non-nil error leaves the
// message unacknowledged so the feed redelivers it.
type Handler func(ctx context.Context, msg *core.EventMessage) error

// Conn is the subset of a websocket connection the subscriber needs.
// *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// DialFunc establishes a feed connection.
type DialFunc func(ctx context.Context, url string, header http.Header) (Conn, error)

func gorillaDial(ctx context.Context, url string, header http.Header) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Options configures the subscriber.
type Options struct {
	// Header is sent with the websocket handshake, e.g. authorization.
	Header http.Header
	// Dial overrides the websocket dialer, mainly for tests.
	Dial DialFunc
	// InitialBackoff is the delay before the first reconnect attempt.
	// Subsequent attempts double it up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Subscriber reads the event feed and dispatches messages to a handler.
type Subscriber struct {
	feedURL string
	handler Handler
	header  http.Header
	dial    DialFunc
	initial time.Duration
	max     time.Duration
	logger  logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a subscriber for the feed URL. Start must be called to begin
// consuming.
func New(feedURL string, handler Handler, optFns ...func(o *Options)) *Subscriber {
	opts := Options{
		Dial:           gorillaDial,
		InitialBackoff: time.Second,
		MaxBackoff:     time.Minute,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Dial == nil {
		opts.Dial = gorillaDial
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Subscriber{
		feedURL: feedURL,
		handler: handler,
		header:  opts.Header,
		dial:    opts.Dial,
		initial: opts.InitialBackoff,
		max:     opts.MaxBackoff,
		logger:  opts.Logger,
	}
}

// Start begins consuming the feed in the background until ctx is cancelled
// or Stop is called.
func (s *Subscriber) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return errors.New("subscriber already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
	return nil
}

// Stop cancels the feed connection and waits for the read loop to exit.
func (s *Subscriber) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Subscriber) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	backoff := s.initial
	for {
		conn, err := s.dial(ctx, s.feedURL, s.header)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("feed connect failed", "url", s.feedURL, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > s.max {
				backoff = s.max
			}
			continue
		}
		backoff = s.initial
		s.logger.Info("feed connected", "url", s.feedURL)
		s.readLoop(ctx, conn)
		if ctx.Err() != nil {
			return
		}
	}
}

func (s *Subscriber) readLoop(ctx context.Context, conn Conn) {
	// Closing the connection is the only way to unblock ReadMessage.
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
			conn.Close()
		}
	}()
	defer close(stop)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("feed read failed", "error", err)
			}
			return
		}
		if err := s.dispatch(ctx, conn, data); err != nil {
			s.logger.Error("feed message failed", "error", err)
		}
	}
}

func (s *Subscriber) dispatch(ctx context.Context, conn Conn, data []byte) error {
	msg, err := core.ParseEventMessage(data)
	if err != nil {
		return fmt.Errorf("decode feed message: %w", err)
	}
	if s.handler != nil {
		if err := s.handler(ctx, msg); err != nil {
			return fmt.Errorf("handle message %q: %w", msg.EventID, err)
		}
	}
	ack := fmt.Sprintf(`{"ack":%q}`, msg.EventID)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(ack)); err != nil {
		return fmt.Errorf("ack message %q: %w", msg.EventID, err)
	}
	return nil
}
