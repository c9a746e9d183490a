// Package booking aggregates the three backend booking kinds into the
// unified list the presentation layer consumes. No wire access lives here —
// the aggregator depends on the api package through an interface.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	"github.com/campease/client/internal/domain"
)

// API defines the backend operations the aggregator depends on.
type API interface {
	CampsiteBookings(ctx context.Context) ([]domain.Booking, error)
	ActivityBookings(ctx context.Context) ([]domain.Booking, error)
	EquipmentBookings(ctx context.Context) ([]domain.Booking, error)
	CancelBooking(ctx context.Context, id string) error
}

// fetchRetries is the per-kind retry budget: one initial try plus this many
// retries with fibonacci backoff starting at retryBase.
const (
	fetchRetries = 2
	retryBase    = 100 * time.Millisecond
)

// Aggregator fetches and unifies the caller's bookings.
// The unified list is deliberately re-fetched on demand and never persisted:
// the in-memory cache below exists only for the current view and is wiped
// whenever the session ends.
type Aggregator struct {
	api API
	log *slog.Logger

	mu     sync.RWMutex
	cached []domain.Booking
}

// NewAggregator constructs an Aggregator backed by the provided API.
func NewAggregator(api API, log *slog.Logger) *Aggregator {
	return &Aggregator{api: api, log: log}
}

// FetchAll fetches all three kinds and returns their concatenation in the
// fixed contract order: campsite, then activity, then equipment, each kind
// in backend order.
//
// The three fetches run concurrently and are independently fault-tolerant:
// a kind whose endpoint fails (after bounded retries) contributes zero
// bookings instead of aborting the aggregation. On total failure — for
// example, no active session — the result is an empty list, never stale
// cached data.
func (a *Aggregator) FetchAll(ctx context.Context) []domain.Booking {
	fetches := []struct {
		kind  domain.BookingKind
		fetch func(context.Context) ([]domain.Booking, error)
	}{
		{domain.KindCampsite, a.api.CampsiteBookings},
		{domain.KindActivity, a.api.ActivityBookings},
		{domain.KindEquipment, a.api.EquipmentBookings},
	}

	// Fixed slots keep the contract order regardless of completion order.
	results := make([][]domain.Booking, len(fetches))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range fetches {
		i, f := i, f
		g.Go(func() error {
			bookings, err := a.fetchKind(gctx, f.fetch)
			if err != nil {
				// Degrade this kind to zero bookings; the others proceed.
				a.log.Warn("booking kind unavailable", "kind", f.kind, "error", err)
				return nil
			}
			results[i] = bookings
			return nil
		})
	}
	// The goroutines never return errors; failures degrade per kind above.
	_ = g.Wait()

	unified := make([]domain.Booking, 0, len(results[0])+len(results[1])+len(results[2]))
	for _, r := range results {
		unified = append(unified, r...)
	}

	a.mu.Lock()
	a.cached = unified
	a.mu.Unlock()

	return unified
}

// fetchKind runs one kind fetch with bounded fibonacci-backoff retries.
// Unauthorized is permanent — retrying a missing session is pointless.
func (a *Aggregator) fetchKind(ctx context.Context, fetch func(context.Context) ([]domain.Booking, error)) ([]domain.Booking, error) {
	var bookings []domain.Booking
	backoff := retry.WithMaxRetries(fetchRetries, retry.NewFibonacci(retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		bookings, err = fetch(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			return err
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// Cached returns a copy of the bookings from the most recent FetchAll for
// the current session. Empty after Reset or before the first fetch.
func (a *Aggregator) Cached() []domain.Booking {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]domain.Booking, len(a.cached))
	copy(out, a.cached)
	return out
}

// Refresh implements session.Refresher: re-fetch the unified list for a
// freshly established session.
func (a *Aggregator) Refresh(ctx context.Context) {
	a.FetchAll(ctx)
}

// Reset implements session.Refresher: drop the in-memory list when the
// session ends, so a later login never sees another user's bookings.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.cached = nil
	a.mu.Unlock()
}

// Cancel cancels a campsite booking and refreshes the unified list so the
// caller immediately sees the new status.
func (a *Aggregator) Cancel(ctx context.Context, id string) error {
	if err := a.api.CancelBooking(ctx, id); err != nil {
		return err
	}
	a.FetchAll(ctx)
	return nil
}
