package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/campease/client/internal/domain"
)

// FeedState is a point-in-time snapshot of the feed for rendering.
type FeedState struct {
	UnreadCount int
	Latest      []domain.Notification
	Loading     bool
}

// Feed adapts the shared Poller plus direct fetches into per-consumer
// state. Its lifecycle is bound to the session: HandleSessionChange(true)
// refreshes immediately and starts polling, HandleSessionChange(false)
// stops polling and zeroes the state. The poller listener it registers is
// an acquired resource — Close releases it on every consumer teardown path.
type Feed struct {
	poller   *Poller
	api      API
	log      *slog.Logger
	interval time.Duration

	mu         sync.RWMutex
	unread     int
	latest     []domain.Notification
	loading    bool
	listenerID int
	attached   bool
}

// NewFeed constructs a Feed over the shared poller. interval is passed to
// Poller.Start when a session appears (non-positive means DefaultInterval).
func NewFeed(poller *Poller, api API, interval time.Duration, log *slog.Logger) *Feed {
	return &Feed{poller: poller, api: api, interval: interval, log: log}
}

// State returns the current snapshot.
func (f *Feed) State() FeedState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	latest := make([]domain.Notification, len(f.latest))
	copy(latest, f.latest)
	return FeedState{UnreadCount: f.unread, Latest: latest, Loading: f.loading}
}

// HandleSessionChange binds the feed to authentication state. Wire it to
// session.Store.OnChange. With a session present the feed attaches its
// listener, refreshes once, and starts polling; on session loss it stops
// polling and zeroes its state. Both directions are idempotent.
func (f *Feed) HandleSessionChange(ctx context.Context, authenticated bool) {
	if !authenticated {
		f.poller.Stop()
		f.zero()
		return
	}

	f.mu.Lock()
	if !f.attached {
		f.listenerID = f.poller.AddListener(f.apply)
		f.attached = true
	}
	f.mu.Unlock()

	f.Refresh(ctx)
	f.poller.Start(f.interval)
}

// Refresh performs one immediate synchronization: unread count plus the
// latest unread notifications. It also seeds the poller's baseline so the
// next tick does not re-announce the value the consumer already has.
// Failures leave the previous state in place.
func (f *Feed) Refresh(ctx context.Context) {
	f.setLoading(true)
	defer f.setLoading(false)

	count, err := f.api.UnreadCount(ctx)
	if err != nil {
		f.log.Warn("feed refresh failed", "error", err)
		return
	}
	latest, _, err := f.api.Notifications(ctx, domain.NewPaginationParams(1, domain.MaxLatestNotifications, true))
	if err != nil {
		f.log.Warn("feed refresh failed fetching latest", "error", err)
		return
	}

	f.mu.Lock()
	f.unread = count
	f.latest = latest
	f.mu.Unlock()

	f.poller.SetCurrentUnreadCount(count)
}

// MarkAsRead marks one notification as read on the backend, then
// re-synchronizes with a full refresh.
func (f *Feed) MarkAsRead(ctx context.Context, id string) error {
	if err := f.api.MarkNotificationRead(ctx, id); err != nil {
		return fmt.Errorf("notify.Feed.MarkAsRead: %w", err)
	}
	f.Refresh(ctx)
	return nil
}

// MarkAllAsRead zeroes the local state optimistically — the consumer sees
// unread=0 immediately, independent of network latency — and then issues
// the backend mutation. On failure the state is re-synchronized so the
// optimistic zero cannot stick erroneously.
func (f *Feed) MarkAllAsRead(ctx context.Context) error {
	f.zero()

	if err := f.api.MarkAllNotificationsRead(ctx); err != nil {
		f.Refresh(ctx)
		return fmt.Errorf("notify.Feed.MarkAllAsRead: %w", err)
	}
	return nil
}

// Close releases the feed's poller listener and stops polling. Call it on
// every consumer teardown path; it is idempotent.
func (f *Feed) Close() {
	f.mu.Lock()
	if f.attached {
		f.poller.RemoveListener(f.listenerID)
		f.attached = false
	}
	f.mu.Unlock()
	f.poller.Stop()
}

// apply is the poller listener: copy the update into the snapshot state.
func (f *Feed) apply(u domain.NotificationUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unread = u.UnreadCount
	f.latest = u.Latest
}

// zero resets the snapshot and the poller baseline to "nothing unread".
func (f *Feed) zero() {
	f.mu.Lock()
	f.unread = 0
	f.latest = nil
	f.loading = false
	f.mu.Unlock()
	f.poller.SetCurrentUnreadCount(0)
}

func (f *Feed) setLoading(v bool) {
	f.mu.Lock()
	f.loading = v
	f.mu.Unlock()
}
