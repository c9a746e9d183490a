package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campease/client/internal/domain"
	"github.com/campease/client/internal/session"
	"github.com/campease/client/internal/store"
)

// mockAPI is a hand-written test double for session.API.
// Each method is a function field — set only the ones your test needs.
type mockAPI struct {
	login    func(ctx context.Context, email, password string) (domain.Session, error)
	register func(ctx context.Context, name, email, password string, extra map[string]string) (domain.Session, error)
	profile  func(ctx context.Context) (domain.User, error)
}

func (m *mockAPI) Login(ctx context.Context, email, password string) (domain.Session, error) {
	return m.login(ctx, email, password)
}
func (m *mockAPI) Register(ctx context.Context, name, email, password string, extra map[string]string) (domain.Session, error) {
	return m.register(ctx, name, email, password, extra)
}
func (m *mockAPI) Profile(ctx context.Context) (domain.User, error) {
	return m.profile(ctx)
}

// compile-time check: mockAPI must satisfy session.API.
var _ session.API = (*mockAPI)(nil)

// mockRefresher records Refresh/Reset calls.
type mockRefresher struct {
	refreshed int
	resets    int
}

func (m *mockRefresher) Refresh(context.Context) { m.refreshed++ }
func (m *mockRefresher) Reset()                  { m.resets++ }

var _ session.Refresher = (*mockRefresher)(nil)

// mockPersister is a function-field double for session.Persister, for the
// failure modes a real FileStore in a temp dir cannot produce.
type mockPersister struct {
	save  func(domain.Session) error
	load  func() (domain.Session, error)
	clear func() error
}

func (m *mockPersister) Save(sess domain.Session) error { return m.save(sess) }
func (m *mockPersister) Load() (domain.Session, error)  { return m.load() }
func (m *mockPersister) Clear() error                   { return m.clear() }

var _ session.Persister = (*mockPersister)(nil)

// ---- helpers ---------------------------------------------------------------

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func userFixture(role domain.Role) domain.User {
	return domain.User{ID: "u-1", Email: "camper@example.com", DisplayName: "Camper", Role: role}
}

func sessionFixture(role domain.Role) domain.Session {
	return domain.Session{User: userFixture(role), Token: "T1"}
}

// newStore builds a Store over a real FileStore in a temp dir, so the
// persistence side effects of every mutation are observable.
func newStore(t *testing.T, api session.API, opts ...session.Option) (*session.Store, *store.FileStore) {
	t.Helper()
	fs := store.NewFileStore(t.TempDir())
	return session.NewStore(api, fs, testLogger(), opts...), fs
}

// ---- Login -----------------------------------------------------------------

func TestLogin_Success(t *testing.T) {
	api := &mockAPI{
		login: func(_ context.Context, email, password string) (domain.Session, error) {
			require.Equal(t, "camper@example.com", email)
			require.Equal(t, "hunter2", password)
			return sessionFixture(domain.RoleUser), nil
		},
	}
	s, fs := newStore(t, api)
	refresher := &mockRefresher{}
	s.SetRefresher(refresher)

	ok := s.Login(context.Background(), "camper@example.com", "hunter2")

	require.True(t, ok)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "T1", s.Token())
	assert.Equal(t, 1, refresher.refreshed, "login must trigger a booking refresh")

	// The persisted token equals the token in the response.
	persisted, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, "T1", persisted.Token)
}

func TestLogin_BadCredentials(t *testing.T) {
	api := &mockAPI{
		login: func(context.Context, string, string) (domain.Session, error) {
			return domain.Session{}, domain.ErrUnauthorized
		},
	}
	var notices []string
	s, fs := newStore(t, api, session.WithNotice(func(msg string) { notices = append(notices, msg) }))

	ok := s.Login(context.Background(), "camper@example.com", "wrong")

	// Fails silently: false return plus a side-channel message, no error.
	require.False(t, ok)
	assert.False(t, s.IsAuthenticated())
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0], "invalid credentials")

	_, err := fs.Load()
	assert.ErrorIs(t, err, store.ErrNoSession)
}

func TestLogin_EmptyInput(t *testing.T) {
	// No API call may be issued for empty credentials.
	s, _ := newStore(t, &mockAPI{})

	assert.False(t, s.Login(context.Background(), "", "hunter2"))
	assert.False(t, s.Login(context.Background(), "camper@example.com", ""))
}

// ---- AdminLogin ------------------------------------------------------------

func TestAdminLogin_Admin(t *testing.T) {
	api := &mockAPI{
		login: func(context.Context, string, string) (domain.Session, error) {
			return sessionFixture(domain.RoleAdmin), nil
		},
	}
	s, _ := newStore(t, api)

	assert.True(t, s.AdminLogin(context.Background(), "admin@example.com", "hunter2"))
	assert.True(t, s.IsAuthenticated())
}

// TestAdminLogin_NonAdminDenied verifies that a valid non-admin credential
// is rejected with an access-denied notice and that no session is created
// or persisted.
func TestAdminLogin_NonAdminDenied(t *testing.T) {
	api := &mockAPI{
		login: func(context.Context, string, string) (domain.Session, error) {
			return sessionFixture(domain.RoleUser), nil
		},
	}
	var notices []string
	s, fs := newStore(t, api, session.WithNotice(func(msg string) { notices = append(notices, msg) }))

	ok := s.AdminLogin(context.Background(), "camper@example.com", "hunter2")

	require.False(t, ok)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0], "access denied")

	_, err := fs.Load()
	assert.ErrorIs(t, err, store.ErrNoSession)
}

// ---- Register --------------------------------------------------------------

func TestRegister_EstablishesSession(t *testing.T) {
	api := &mockAPI{
		register: func(_ context.Context, name, email, _ string, extra map[string]string) (domain.Session, error) {
			require.Equal(t, "Camper", name)
			require.Equal(t, "555-0100", extra["phone"])
			return sessionFixture(domain.RoleUser), nil
		},
	}
	s, fs := newStore(t, api)

	ok := s.Register(context.Background(), "Camper", "camper@example.com", "hunter2", map[string]string{"phone": "555-0100"})

	require.True(t, ok)
	assert.True(t, s.IsAuthenticated())
	persisted, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, "T1", persisted.Token)
}

// ---- Logout ----------------------------------------------------------------

func TestLogout_ClearsEverything(t *testing.T) {
	api := &mockAPI{
		login: func(context.Context, string, string) (domain.Session, error) {
			return sessionFixture(domain.RoleUser), nil
		},
	}
	s, fs := newStore(t, api)
	refresher := &mockRefresher{}
	s.SetRefresher(refresher)

	var changes []bool
	s.OnChange(func(authenticated bool) { changes = append(changes, authenticated) })

	require.True(t, s.Login(context.Background(), "camper@example.com", "hunter2"))
	s.Logout()

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	assert.Equal(t, 1, refresher.resets, "logout must clear in-memory bookings")
	assert.Equal(t, []bool{true, false}, changes)

	_, err := fs.Load()
	assert.ErrorIs(t, err, store.ErrNoSession)
}

// ---- Restore ---------------------------------------------------------------

func TestRestore_ValidSession(t *testing.T) {
	api := &mockAPI{
		profile: func(context.Context) (domain.User, error) {
			return userFixture(domain.RoleUser), nil
		},
	}
	s, fs := newStore(t, api)
	require.NoError(t, fs.Save(sessionFixture(domain.RoleUser)))

	s.Restore(context.Background())

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "T1", s.Token())
}

// TestRestore_FailedValidationPurges covers the fail-closed scenario: a
// persisted session whose token the backend rejects is purged entirely —
// both keys removed, isAuthenticated false.
func TestRestore_FailedValidationPurges(t *testing.T) {
	api := &mockAPI{
		profile: func(context.Context) (domain.User, error) {
			return domain.User{}, domain.ErrUnauthorized
		},
	}
	s, fs := newStore(t, api)
	require.NoError(t, fs.Save(sessionFixture(domain.RoleUser)))

	s.Restore(context.Background())

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
	_, err := fs.Load()
	assert.ErrorIs(t, err, store.ErrNoSession)
}

// TestRestore_NetworkErrorPurges: transient startup errors also clear the
// session — never trust stale unvalidated credentials.
func TestRestore_NetworkErrorPurges(t *testing.T) {
	api := &mockAPI{
		profile: func(context.Context) (domain.User, error) {
			return domain.User{}, errors.New("connection refused")
		},
	}
	s, fs := newStore(t, api)
	require.NoError(t, fs.Save(sessionFixture(domain.RoleUser)))

	s.Restore(context.Background())

	assert.False(t, s.IsAuthenticated())
	_, err := fs.Load()
	assert.ErrorIs(t, err, store.ErrNoSession)
}

// TestRestore_ExpiredJWTSkipsRemoteValidation: a token whose exp claim is
// already past is purged locally without any backend call.
func TestRestore_ExpiredJWTSkipsRemoteValidation(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Hour))
	api := &mockAPI{
		profile: func(context.Context) (domain.User, error) {
			t.Fatal("Profile must not be called for a locally expired token")
			return domain.User{}, nil
		},
	}
	s, fs := newStore(t, api)
	sess := sessionFixture(domain.RoleUser)
	sess.Token = expired
	require.NoError(t, fs.Save(sess))

	s.Restore(context.Background())

	assert.False(t, s.IsAuthenticated())
	_, err := fs.Load()
	assert.ErrorIs(t, err, store.ErrNoSession)
}

// TestRestore_UnreadableStatePurges: a Load failure that is not a clean
// "no session" (an unreadable token file, say) clears the persisted pair
// instead of leaving half-readable state behind.
func TestRestore_UnreadableStatePurges(t *testing.T) {
	var cleared bool
	persist := &mockPersister{
		load:  func() (domain.Session, error) { return domain.Session{}, errors.New("permission denied") },
		clear: func() error { cleared = true; return nil },
	}
	s := session.NewStore(&mockAPI{}, persist, testLogger())

	s.Restore(context.Background())

	assert.False(t, s.IsAuthenticated())
	assert.True(t, cleared, "unreadable persisted state must be cleared")
}

func TestRestore_NothingPersisted(t *testing.T) {
	s, _ := newStore(t, &mockAPI{})

	s.Restore(context.Background())

	assert.False(t, s.IsAuthenticated())
}

// signedToken builds a real HS256 JWT with the given expiry. The store only
// peeks at claims without verifying, but a well-formed token keeps the test
// honest.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}
