// Package notify keeps the client's notification state in sync with the
// backend. The Poller owns the one piece of background concurrency in the
// system — a fixed-interval timer loop — and fans out changes to listeners.
// The Feed adapts the poller plus direct fetches into snapshot state for a
// single consumer.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/campease/client/internal/domain"
)

// API defines the backend operations the poller and feed depend on.
type API interface {
	UnreadCount(ctx context.Context) (int, error)
	Notifications(ctx context.Context, p domain.PaginationParams) ([]domain.Notification, int, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}

// Listener receives a NotificationUpdate each time the unread count changes.
// Listeners are invoked synchronously from the poll goroutine; a panicking
// listener is recovered and logged so it cannot block the others.
type Listener func(domain.NotificationUpdate)

// DefaultInterval is the poll interval used when Start is given a
// non-positive one.
const DefaultInterval = 30 * time.Second

// Poller periodically fetches the unread notification count and notifies
// listeners when it changes. Construct exactly one per process at
// application start and hand it to consumers by reference — it is the
// explicit replacement for a hidden module-level singleton.
//
// State machine: Stopped → Start → Polling → Stop → Stopped. Start and Stop
// are both idempotent. Listeners may attach and detach freely in either
// state without affecting polling.
type Poller struct {
	api API
	log *slog.Logger

	mu        sync.Mutex
	listeners map[int]Listener
	nextID    int
	lastCount int
	running   bool
	cancel    context.CancelFunc

	// inFlight guards against a tick that outlives a Stop/Start cycle
	// racing the restarted poller: polls within one Start are serialized
	// by the loop goroutine, so overlap can only arise across a restart,
	// and the later poll is skipped rather than run concurrently.
	inFlight atomic.Bool
}

// NewPoller constructs a stopped Poller.
func NewPoller(api API, log *slog.Logger) *Poller {
	return &Poller{
		api:       api,
		log:       log,
		listeners: make(map[int]Listener),
	}
}

// Start begins polling at the given interval (DefaultInterval when
// non-positive). An immediate poll runs before the first timer fire.
// Calling Start while already polling is a no-op: there is never more than
// one active timer.
func (p *Poller) Start(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.running = true
	p.cancel = cancel
	p.mu.Unlock()

	p.log.Info("notification polling started", "interval", interval)

	go func() {
		// Ticks run on their own context: Stop cancels future ticks but
		// must not abort a fetch already in flight, whose result still
		// updates the last-known count.
		p.poll(context.Background())

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(context.Background())
			}
		}
	}()
}

// Stop cancels future ticks. Idempotent. An in-flight tick is not
// interrupted: its result may still update the last-known count, but
// listeners removed before it completes are not called.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	p.cancel()
	p.cancel = nil
	p.log.Info("notification polling stopped")
}

// AddListener registers a listener and returns a handle for RemoveListener.
func (p *Poller) AddListener(fn Listener) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.listeners[id] = fn
	return id
}

// RemoveListener detaches a listener. Unknown handles are ignored.
func (p *Poller) RemoveListener(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.listeners, id)
}

// SetCurrentUnreadCount seeds the last-known count, so a consumer that has
// already fetched the current value does not trigger a spurious
// first-change notification.
func (p *Poller) SetCurrentUnreadCount(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastCount = n
}

// poll runs one tick: fetch the unread count, and only when it differs from
// the last observed value fetch the latest unread notifications and fan the
// update out. A failed tick is logged and skipped; polling continues at the
// same cadence with no backoff. The last-known count advances only after
// both fetches succeed.
func (p *Poller) poll(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.log.Debug("poll tick skipped, previous tick still running")
		return
	}
	defer p.inFlight.Store(false)

	count, err := p.api.UnreadCount(ctx)
	if err != nil {
		p.log.Warn("poll tick failed", "error", err)
		return
	}

	p.mu.Lock()
	unchanged := count == p.lastCount
	p.mu.Unlock()
	if unchanged {
		return
	}

	latest, _, err := p.api.Notifications(ctx, domain.NewPaginationParams(1, domain.MaxLatestNotifications, true))
	if err != nil {
		p.log.Warn("poll tick failed fetching latest", "error", err)
		return
	}
	if len(latest) > domain.MaxLatestNotifications {
		latest = latest[:domain.MaxLatestNotifications]
	}

	update := domain.NotificationUpdate{UnreadCount: count, Latest: latest}

	p.mu.Lock()
	p.lastCount = count
	listeners := make([]Listener, 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.mu.Unlock()

	p.log.Debug("unread count changed", "count", count, "latest", len(latest))
	for _, fn := range listeners {
		p.dispatch(fn, update)
	}
}

// dispatch invokes one listener with its own panic boundary, so one failing
// subscriber cannot block the rest.
func (p *Poller) dispatch(fn Listener, update domain.NotificationUpdate) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("notification listener panicked", "panic", r)
		}
	}()
	fn(update)
}
