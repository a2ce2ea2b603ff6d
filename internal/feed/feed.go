// Package feed maintains the single streaming connection to the pump-portal
// trade feed: connect, subscribe to a dynamic token set, detect disconnects,
// and reconnect with exponential backoff.
package feed

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Creat0r69/faith/internal/domain"
	"github.com/Creat0r69/faith/internal/platform/pumpportal"
)

const (
	// baseReconnectDelay is the first reconnect delay after a drop; each
	// consecutive failure doubles it up to maxReconnectDelay.
	baseReconnectDelay = 3 * time.Second
	maxReconnectDelay  = 60 * time.Second

	dialTimeout = 15 * time.Second
)

// Conn is the transport surface the feed manager drives. The production
// implementation is pumpportal.Conn over gorilla/websocket.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteJSON(v any) error
	Close() error
}

// Dialer opens feed connections.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, url string) (Conn, error)

// Dial implements Dialer.
func (f DialerFunc) Dial(ctx context.Context, url string) (Conn, error) {
	return f(ctx, url)
}

// wsDialer is the default gorilla-websocket-backed dialer.
var wsDialer = DialerFunc(func(ctx context.Context, url string) (Conn, error) {
	return pumpportal.Dial(ctx, url)
})

// TickHandler receives each normalized trade tick.
type TickHandler func(domain.TradeTick)

// NewTokenHandler receives each token-creation event.
type NewTokenHandler func(domain.NewTokenEvent)

// Options configures a TradeFeed.
type Options struct {
	// URL of the feed endpoint; defaults to pumpportal.DefaultEndpoint.
	URL string

	// BaseDelay and MaxDelay override the reconnect backoff bounds. Zero
	// values use the production defaults. Tests shrink these.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Dialer overrides the websocket dialer. Zero value uses gorilla.
	Dialer Dialer

	// NewTokens additionally subscribes to token-creation events.
	NewTokens bool

	OnTick     TickHandler
	OnNewToken NewTokenHandler

	Logger *slog.Logger

	// Now overrides the clock used to stamp normalized events.
	Now func() time.Time
}

// TradeFeed owns one live feed connection for a mutable token set. All
// connection state lives on a single event-loop goroutine, so no two dials
// are ever in flight at once; the exported methods only post commands to
// that loop. Reconnection retries forever with capped exponential backoff
// until Stop, which is terminal.
type TradeFeed struct {
	opts Options

	mu      sync.Mutex
	started bool
	stopped bool

	cmds      chan []string
	done      chan struct{}
	stopOnce  sync.Once
	connected atomic.Bool
}

// New creates a TradeFeed. The feed is idle until Start or SetTokens is
// called with a non-empty token set.
func New(opts Options) *TradeFeed {
	if opts.URL == "" {
		opts.URL = pumpportal.DefaultEndpoint
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = baseReconnectDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = maxReconnectDelay
	}
	if opts.Dialer == nil {
		opts.Dialer = wsDialer
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Logger = opts.Logger.With(slog.String("component", "trade_feed"))
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &TradeFeed{
		opts: opts,
		cmds: make(chan []string),
		done: make(chan struct{}),
	}
}

// Start begins the connection loop for the given token set. It is a no-op
// when the set is empty or the feed has already been started or stopped.
func (f *TradeFeed) Start(mints []string) {
	if len(mints) == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started || f.stopped {
		return
	}
	f.started = true
	go f.run(append([]string(nil), mints...))
}

// SetTokens replaces the tracked token set. While connected, a fresh
// subscribe covering the whole new set is sent; subscriptions are additive
// upstream, so removed tokens are simply no longer aggregated. An empty set
// stops the feed. Calling SetTokens on an idle feed starts it.
func (f *TradeFeed) SetTokens(mints []string) {
	if len(mints) == 0 {
		f.Stop()
		return
	}

	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	if !f.started {
		f.started = true
		f.mu.Unlock()
		go f.run(append([]string(nil), mints...))
		return
	}
	f.mu.Unlock()

	select {
	case f.cmds <- append([]string(nil), mints...):
	case <-f.done:
	}
}

// Stop closes the connection and cancels any pending reconnect. It is
// terminal: a stopped feed never reconnects.
func (f *TradeFeed) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
	f.stopOnce.Do(func() {
		close(f.done)
	})
	f.connected.Store(false)
}

// Connected reports whether a live connection is currently established.
func (f *TradeFeed) Connected() bool {
	return f.connected.Load()
}

func (f *TradeFeed) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// connEvent is what a connection's reader goroutine posts to the loop. A
// non-nil err means the connection is gone.
type connEvent struct {
	gen int
	msg []byte
	err error
}

// run is the event loop. It owns the connection, the subscription set, and
// the reconnect timer; everything else talks to it through channels.
func (f *TradeFeed) run(mints []string) {
	var (
		conn    Conn
		gen     int
		attempt int
		retryC  <-chan time.Time
	)
	events := make(chan connEvent, 64)

	scheduleRetry := func() {
		delay := backoffDelay(f.opts.BaseDelay, f.opts.MaxDelay, attempt)
		attempt++
		f.opts.Logger.Warn("feed disconnected, reconnecting",
			slog.Duration("delay", delay),
			slog.Int("attempt", attempt),
		)
		retryC = time.After(delay)
	}

	dial := func() {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		c, err := f.opts.Dialer.Dial(ctx, f.opts.URL)
		cancel()
		if err != nil {
			scheduleRetry()
			return
		}
		conn = c
		gen++
		attempt = 0
		f.connected.Store(true)
		f.subscribe(conn, mints)
		f.opts.Logger.Info("feed connected", slog.Int("tokens", len(mints)))
		go f.readLoop(conn, gen, events)
	}

	dial()

	for {
		select {
		case <-f.done:
			if conn != nil {
				conn.Close()
			}
			return

		case next := <-f.cmds:
			mints = next
			if conn != nil {
				f.subscribe(conn, mints)
			}

		case <-retryC:
			retryC = nil
			if f.isStopped() {
				continue
			}
			dial()

		case ev := <-events:
			if ev.gen != gen {
				continue // stale reader from a replaced connection
			}
			if ev.err != nil {
				f.connected.Store(false)
				conn.Close()
				conn = nil
				scheduleRetry()
				continue
			}
			f.dispatch(ev.msg)
		}
	}
}

// readLoop pumps messages from one connection into the event loop until the
// connection fails or the feed stops.
func (f *TradeFeed) readLoop(conn Conn, gen int, events chan<- connEvent) {
	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case events <- connEvent{gen: gen, err: err}:
			case <-f.done:
			}
			return
		}
		select {
		case events <- connEvent{gen: gen, msg: msg}:
		case <-f.done:
			return
		}
	}
}

// subscribe sends the subscription commands covering the full token set.
// Write failures are logged only; the reader will surface the broken
// connection and trigger a reconnect.
func (f *TradeFeed) subscribe(conn Conn, mints []string) {
	cmd := pumpportal.SubscribeCommand{
		Method: pumpportal.MethodSubscribeTokenTrade,
		Keys:   mints,
	}
	if err := conn.WriteJSON(cmd); err != nil {
		f.opts.Logger.Warn("subscribe failed", slog.String("error", err.Error()))
		return
	}
	if f.opts.NewTokens {
		create := pumpportal.SubscribeCommand{Method: pumpportal.MethodSubscribeNewToken}
		if err := conn.WriteJSON(create); err != nil {
			f.opts.Logger.Warn("new-token subscribe failed", slog.String("error", err.Error()))
		}
	}
}

// dispatch normalizes one raw payload and invokes the handlers. Rejected
// payloads are dropped silently; the feed carries plenty of traffic that is
// not a trade.
func (f *TradeFeed) dispatch(raw []byte) {
	ev, ok := pumpportal.Parse(raw, f.opts.Now())
	if !ok {
		return
	}
	if ev.Created != nil && f.opts.OnNewToken != nil {
		f.opts.OnNewToken(*ev.Created)
	}
	if ev.Trade != nil && f.opts.OnTick != nil {
		f.opts.OnTick(*ev.Trade)
	}
}

// backoffDelay returns min(base * 2^attempt, max).
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	if attempt > 30 {
		return max
	}
	d := base << uint(attempt)
	if d > max || d <= 0 {
		return max
	}
	return d
}
