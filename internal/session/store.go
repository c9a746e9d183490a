// Package session holds the authenticated identity for the client process.
// The Store is the single owner of "who is logged in": it validates
// credentials against the backend, persists the session between runs, and
// tells interested parties when authentication state changes. User-facing
// operations report failure as a boolean plus a notice message — errors
// never escape to the caller as Go errors, mirroring the rule that nothing
// may throw into the presentation layer.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/campease/client/internal/domain"
	"github.com/campease/client/internal/store"
)

// API defines the backend operations the Store depends on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets Store
// tests inject a mock without a running backend.
type API interface {
	Login(ctx context.Context, email, password string) (domain.Session, error)
	Register(ctx context.Context, name, email, password string, extra map[string]string) (domain.Session, error)
	Profile(ctx context.Context) (domain.User, error)
}

// Persister is the durable client storage for the session pair.
type Persister interface {
	Save(sess domain.Session) error
	Load() (domain.Session, error)
	Clear() error
}

// Refresher receives the booking-cache side effects of session changes:
// Refresh after a session is established, Reset when it is destroyed.
type Refresher interface {
	Refresh(ctx context.Context)
	Reset()
}

// NoticeFunc is the side channel for user-facing messages (the toast
// analog). It must not block.
type NoticeFunc func(msg string)

// Store is the client's session store.
// All methods are safe for concurrent use.
type Store struct {
	api     API
	persist Persister
	log     *slog.Logger
	notice  NoticeFunc
	now     func() time.Time

	mu        sync.RWMutex
	current   *domain.Session
	refresher Refresher
	listeners []func(authenticated bool)
}

// Option configures a Store.
type Option func(*Store)

// WithNotice sets the side channel for user-facing messages.
// The default logs notices at warn level.
func WithNotice(fn NoticeFunc) Option {
	return func(s *Store) { s.notice = fn }
}

// WithClock overrides the time source, for tests of token-expiry handling.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore constructs a Store. Call Restore before first use to pick up a
// persisted session from a previous run.
func NewStore(api API, persist Persister, log *slog.Logger, opts ...Option) *Store {
	s := &Store{
		api:     api,
		persist: persist,
		log:     log,
		now:     time.Now,
	}
	s.notice = func(msg string) { log.Warn("notice", "message", msg) }
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRefresher attaches the booking-cache refresher.
// Set once during wiring, before any login.
func (s *Store) SetRefresher(r Refresher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresher = r
}

// OnChange registers a callback invoked after every authentication state
// change (login, register, restore, logout, purge). Callbacks run on the
// mutating goroutine; keep them short.
func (s *Store) OnChange(fn func(authenticated bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Token implements api.TokenSource. Returns "" when no session is active.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Current returns the active session, if any.
func (s *Store) Current() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Session{}, false
	}
	return *s.current, true
}

// IsAuthenticated reports whether a session is active.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

// Login validates credentials against the backend and establishes a session.
// On failure it returns false and reports the reason via the notice side
// channel; it never returns an error.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		s.notice("email and password are required")
		return false
	}

	sess, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.reportAuthFailure("login", err)
		return false
	}

	s.establish(ctx, sess)
	return true
}

// AdminLogin behaves like Login but additionally requires the admin role.
// A valid non-admin credential is rejected with an "access denied" notice
// and no session is created.
func (s *Store) AdminLogin(ctx context.Context, email, password string) bool {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		s.notice("email and password are required")
		return false
	}

	sess, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.reportAuthFailure("admin login", err)
		return false
	}
	if !sess.IsAdmin() {
		s.log.Warn("admin login rejected", "email", email, "role", sess.User.Role)
		s.notice("access denied: admin privileges required")
		return false
	}

	s.establish(ctx, sess)
	return true
}

// Register creates an account and establishes a session identically to Login.
func (s *Store) Register(ctx context.Context, name, email, password string, extra map[string]string) bool {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		s.notice("name, email and password are required")
		return false
	}

	sess, err := s.api.Register(ctx, name, email, password, extra)
	if err != nil {
		s.reportAuthFailure("registration", err)
		return false
	}

	s.establish(ctx, sess)
	return true
}

// Logout destroys the session: in-memory state, persisted pair, and the
// booking cache are all cleared. Safe to call when not logged in.
func (s *Store) Logout() {
	s.purge("logout")
}

// Restore picks up a persisted session from a previous run and validates
// its token against the backend. Fail-closed: any failure — expired token,
// rejected token, network error — purges the persisted pair rather than
// trusting stale credentials.
func (s *Store) Restore(ctx context.Context) {
	sess, err := s.persist.Load()
	if err != nil {
		if errors.Is(err, store.ErrNoSession) {
			s.log.Debug("no session to restore")
			return
		}
		// Half-readable state is never trusted.
		s.log.Warn("persisted session unreadable, purging", "error", err)
		s.purge("unreadable persisted state")
		return
	}

	if tokenExpired(sess.Token, s.now()) {
		s.log.Info("persisted token expired, purging session")
		s.purge("expired token")
		return
	}

	// Install the token before validation so Profile is sent authenticated.
	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()

	user, err := s.api.Profile(ctx)
	if err != nil {
		s.log.Warn("persisted session failed validation, purging", "error", err)
		s.purge("failed validation")
		return
	}

	sess.User = user
	s.establish(ctx, sess)
	s.log.Info("session restored", "user", user.Email)
}

// establish installs the session, persists it, and fans out the change.
func (s *Store) establish(ctx context.Context, sess domain.Session) {
	s.mu.Lock()
	s.current = &sess
	refresher := s.refresher
	listeners := append([]func(bool){}, s.listeners...)
	s.mu.Unlock()

	if err := s.persist.Save(sess); err != nil {
		// The in-memory session is still valid; only restart persistence
		// is lost.
		s.log.Error("failed to persist session", "error", err)
	}

	for _, fn := range listeners {
		fn(true)
	}
	if refresher != nil {
		refresher.Refresh(ctx)
	}
}

// purge clears every trace of the session: memory, persisted pair, booking
// cache, then fans out the change.
func (s *Store) purge(reason string) {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	refresher := s.refresher
	listeners := append([]func(bool){}, s.listeners...)
	s.mu.Unlock()

	if err := s.persist.Clear(); err != nil {
		s.log.Error("failed to clear persisted session", "error", err)
	}
	if refresher != nil {
		refresher.Reset()
	}
	if had {
		s.log.Info("session cleared", "reason", reason)
		for _, fn := range listeners {
			fn(false)
		}
	}
}

// reportAuthFailure logs an auth operation failure and emits the
// user-facing notice, distinguishing bad credentials from transport faults.
func (s *Store) reportAuthFailure(op string, err error) {
	s.log.Warn(op+" failed", "error", err)
	if errors.Is(err, domain.ErrUnauthorized) {
		s.notice(fmt.Sprintf("%s failed: invalid credentials", op))
		return
	}
	s.notice(fmt.Sprintf("%s failed: please try again", op))
}
