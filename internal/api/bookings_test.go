package api_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campease/client/internal/domain"
	"github.com/campease/client/testutil"
)

func date(d int) time.Time {
	return time.Date(2025, 8, d, 12, 0, 0, 0, time.UTC)
}

func TestCampsiteBookings_Normalization(t *testing.T) {
	srv := testutil.NewServer(t)
	client := loginAs(t, srv, "camper@example.com", "user")
	id := srv.SeedCampsiteBooking("Pine Hollow", date(1), date(4), 2, 180.50, "approved")

	got, err := client.CampsiteBookings(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	b := got[0]
	assert.Equal(t, id, b.ID)
	assert.Equal(t, domain.KindCampsite, b.Kind)
	assert.Equal(t, "Pine Hollow", b.DisplayName)
	assert.Equal(t, 3, b.Duration, "three nights between check-in and check-out")
	assert.Equal(t, 2, b.Guests)
	assert.Equal(t, 180.50, b.Price)
	assert.Equal(t, domain.StatusApproved, b.Status)
	require.NotNil(t, b.SecondaryDate)
	assert.Equal(t, date(4), *b.SecondaryDate)
}

func TestActivityBookings_Normalization(t *testing.T) {
	srv := testutil.NewServer(t)
	client := loginAs(t, srv, "camper@example.com", "user")
	srv.SeedActivityBooking("Kayak Tour", date(10), "09:00", 4, 120, "pending")

	got, err := client.ActivityBookings(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	b := got[0]
	assert.Equal(t, domain.KindActivity, b.Kind)
	assert.Equal(t, "Kayak Tour", b.DisplayName)
	assert.Equal(t, "09:00", b.TimeSlot)
	assert.Equal(t, 4, b.Participants)
	assert.Equal(t, 0, b.Duration, "activities have no day span")
	assert.Nil(t, b.SecondaryDate)
}

func TestEquipmentBookings_Normalization(t *testing.T) {
	srv := testutil.NewServer(t)
	client := loginAs(t, srv, "camper@example.com", "user")
	srv.SeedEquipmentBooking("4-person tent", date(5), date(7), 1, 60, "completed")

	got, err := client.EquipmentBookings(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	b := got[0]
	assert.Equal(t, domain.KindEquipment, b.Kind)
	assert.Equal(t, 2, b.Duration, "two rental days")
	assert.Equal(t, 1, b.Quantity)
	assert.Equal(t, domain.StatusCompleted, b.Status)
}

// TestBookings_MalformedEntriesSkipped verifies the tolerant-decoding rule:
// entries without a usable identity or primary date are dropped, not
// propagated as zero values and not fatal to the rest of the list.
func TestBookings_MalformedEntriesSkipped(t *testing.T) {
	srv := testutil.NewServer(t)
	client := loginAs(t, srv, "camper@example.com", "user")

	srv.SeedRawBooking("campsite", map[string]any{
		// No id at all.
		"campsite": map[string]any{"name": "Ghost Site"},
		"checkIn":  date(1).Format(time.RFC3339),
	})
	srv.SeedRawBooking("campsite", map[string]any{
		"_id":      "no-dates",
		"campsite": map[string]any{"name": "Dateless"},
		"checkIn":  "not a date",
	})
	good := srv.SeedCampsiteBooking("Pine Hollow", date(1), date(2), 2, 50, "pending")

	got, err := client.CampsiteBookings(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, good, got[0].ID)
}

// TestBookings_DefaultsApplied verifies per-field default fallbacks:
// unknown status maps to pending, "id" works as well as "_id", and a bare
// date layout parses.
func TestBookings_DefaultsApplied(t *testing.T) {
	srv := testutil.NewServer(t)
	client := loginAs(t, srv, "camper@example.com", "user")

	srv.SeedRawBooking("campsite", map[string]any{
		"id":       "b-1",
		"campsite": map[string]any{"name": "Birch Flat"},
		"checkIn":  "2025-08-01",
		"status":   "definitely-not-a-status",
	})

	got, err := client.CampsiteBookings(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b-1", got[0].ID)
	assert.Equal(t, domain.StatusPending, got[0].Status)
	assert.Nil(t, got[0].SecondaryDate)
}

func TestBookings_Unauthorized(t *testing.T) {
	srv := testutil.NewServer(t)

	_, err := newClient(srv, "").CampsiteBookings(context.Background())

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCancelBooking(t *testing.T) {
	srv := testutil.NewServer(t)
	client := loginAs(t, srv, "camper@example.com", "user")
	id := srv.SeedCampsiteBooking("Pine Hollow", date(1), date(4), 2, 180, "approved")

	require.NoError(t, client.CancelBooking(context.Background(), id))

	got, err := client.CampsiteBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.StatusCancelled, got[0].Status)
}

func TestCancelBooking_NotFound(t *testing.T) {
	srv := testutil.NewServer(t)
	client := loginAs(t, srv, "camper@example.com", "user")

	err := client.CancelBooking(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
