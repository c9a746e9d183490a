// Package store persists the client session between runs.
// It is the local-storage analog: two keys — the session user object and the
// auth token — written and removed together, never one without the other.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/campease/client/internal/domain"
)

const (
	userFile  = "user.json"
	tokenFile = "token"
)

// ErrNoSession is returned by Load when no persisted session exists, or when
// only one of the two keys is present (a torn write is treated as absent).
var ErrNoSession = errors.New("no persisted session")

// FileStore keeps the session under a single directory with 0600 files.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir. The directory is created
// lazily on the first Save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Save persists the session. The token is written first and the user object
// second; Load refuses half-written state, so the pair is effectively atomic
// from the reader's point of view.
func (s *FileStore) Save(sess domain.Session) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("store.FileStore.Save: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(sess.Token), 0o600); err != nil {
		return fmt.Errorf("store.FileStore.Save: token: %w", err)
	}
	b, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("store.FileStore.Save: marshal user: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, userFile), b, 0o600); err != nil {
		return fmt.Errorf("store.FileStore.Save: user: %w", err)
	}
	return nil
}

// Load returns the persisted session.
// Returns ErrNoSession when either key is missing or empty; a corrupt user
// object also reads as absent, because an unvalidated half-session must
// never be trusted.
func (s *FileStore) Load() (domain.Session, error) {
	tok, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Session{}, ErrNoSession
		}
		return domain.Session{}, fmt.Errorf("store.FileStore.Load: token: %w", err)
	}
	if len(tok) == 0 {
		return domain.Session{}, ErrNoSession
	}

	ub, err := os.ReadFile(filepath.Join(s.dir, userFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Session{}, ErrNoSession
		}
		return domain.Session{}, fmt.Errorf("store.FileStore.Load: user: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(ub, &user); err != nil {
		return domain.Session{}, ErrNoSession
	}

	return domain.Session{User: user, Token: string(tok)}, nil
}

// Clear removes both keys. Removing an already-absent session is not an
// error, so Clear is safe to call on every logout and failed validation.
func (s *FileStore) Clear() error {
	var errs []error
	for _, name := range []string{userFile, tokenFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("store.FileStore.Clear: %w", errors.Join(errs...))
	}
	return nil
}
