package api_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campease/client/internal/api"
	"github.com/campease/client/internal/domain"
	"github.com/campease/client/testutil"
)

// ---- helpers ---------------------------------------------------------------

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newClient builds a Client against the fake backend with a fixed token.
func newClient(srv *testutil.Server, token string) *api.Client {
	return api.New(srv.URL, nil, api.StaticToken(token), testLogger())
}

// loginAs seeds a user and returns a client authenticated as them.
func loginAs(t *testing.T, srv *testutil.Server, email, role string) *api.Client {
	t.Helper()
	srv.SeedUser(email, "hunter2", "Test User", role)

	sess, err := newClient(srv, "").Login(context.Background(), email, "hunter2")
	require.NoError(t, err)
	return newClient(srv, sess.Token)
}

// ---- Login -----------------------------------------------------------------

func TestLogin_Valid(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.SeedUser("camper@example.com", "hunter2", "Camper", "user")

	sess, err := newClient(srv, "").Login(context.Background(), "camper@example.com", "hunter2")

	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "camper@example.com", sess.User.Email)
	assert.Equal(t, "Camper", sess.User.DisplayName)
	assert.Equal(t, domain.RoleUser, sess.User.Role)
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.SeedUser("camper@example.com", "hunter2", "Camper", "user")

	_, err := newClient(srv, "").Login(context.Background(), "camper@example.com", "wrong")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ---- Register --------------------------------------------------------------

func TestRegister_EstablishesSession(t *testing.T) {
	srv := testutil.NewServer(t)

	sess, err := newClient(srv, "").Register(context.Background(), "New Camper", "new@example.com", "secret", map[string]string{"phone": "555-0100"})

	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "new@example.com", sess.User.Email)

	// The fresh token must be valid for authenticated calls.
	user, err := newClient(srv, sess.Token).Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
}

// ---- Profile ---------------------------------------------------------------

func TestProfile_InvalidToken(t *testing.T) {
	srv := testutil.NewServer(t)

	_, err := newClient(srv, "bogus").Profile(context.Background())

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// TestProfile_SoftFailure verifies that a 200 response carrying
// success=false is treated the same as a 401: unauthorized.
func TestProfile_SoftFailure(t *testing.T) {
	srv := testutil.NewServer(t)
	client := loginAs(t, srv, "camper@example.com", "user")
	srv.SoftFailProfile(true)

	_, err := client.Profile(context.Background())

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
