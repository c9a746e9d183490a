package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campease/client/internal/api"
	"github.com/campease/client/internal/notify"
	"github.com/campease/client/testutil"
)

// TestPoller_AgainstFakeBackend exercises the full wire path: real client,
// real poller, fake backend. A notification seeded mid-poll must surface as
// exactly one update with the backend's authoritative count.
func TestPoller_AgainstFakeBackend(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.SeedUser("camper@example.com", "hunter2", "Camper", "user")

	ctx := context.Background()
	sess, err := api.New(srv.URL, nil, nil, testLogger()).Login(ctx, "camper@example.com", "hunter2")
	require.NoError(t, err)
	client := api.New(srv.URL, nil, api.StaticToken(sess.Token), testLogger())

	p := notify.NewPoller(client, testLogger())
	defer p.Stop()
	rec := &updateRecorder{}
	p.AddListener(rec.listen)

	p.Start(20 * time.Millisecond)

	// Quiet backend: ticks run, nothing is announced.
	time.Sleep(60 * time.Millisecond)
	require.Zero(t, rec.count())

	srv.SeedNotification("Booking approved", "See you at Pine Hollow", "booking", false)

	require.Eventually(t, func() bool { return rec.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	update := rec.last()
	assert.Equal(t, 1, update.UnreadCount)
	require.Len(t, update.Latest, 1)
	assert.Equal(t, "Booking approved", update.Latest[0].Title)
	assert.Equal(t, "booking", update.Latest[0].Category)
}

// TestFeed_AgainstFakeBackend drives the feed lifecycle over the wire:
// refresh, optimistic mark-all, and the backend count landing at zero.
func TestFeed_AgainstFakeBackend(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.SeedUser("camper@example.com", "hunter2", "Camper", "user")
	for i := 0; i < 3; i++ {
		srv.SeedNotification("Update", "msg", "system", false)
	}

	ctx := context.Background()
	sess, err := api.New(srv.URL, nil, nil, testLogger()).Login(ctx, "camper@example.com", "hunter2")
	require.NoError(t, err)
	client := api.New(srv.URL, nil, api.StaticToken(sess.Token), testLogger())

	p := notify.NewPoller(client, testLogger())
	defer p.Stop()
	feed := notify.NewFeed(p, client, time.Hour, testLogger())
	defer feed.Close()

	feed.HandleSessionChange(ctx, true)
	state := feed.State()
	require.Equal(t, 3, state.UnreadCount)
	require.Len(t, state.Latest, 3)

	require.NoError(t, feed.MarkAllAsRead(ctx))

	assert.Zero(t, feed.State().UnreadCount)
	assert.Zero(t, srv.UnreadCount(), "backend state was actually mutated")
}
