package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bloghub/bloghub/pkg/domain"
)

// ErrIncompleteSession is returned by Set for a session that does not satisfy
// the presence invariant.
var ErrIncompleteSession = errors.New("incomplete session")

// Reader reads the current session. ok is false when the user is a guest.
type Reader interface {
	Get() (sess domain.Session, ok bool)
}

// ReadWriter is the full store contract, held only by the auth gateway.
type ReadWriter interface {
	Reader
	Set(sess domain.Session) error
	Clear() error
}

// Store maps a Session onto the well-known keys of a Backend.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// NewStore returns a Store over backend.
func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{backend: backend, logger: logger}
}

// Get returns the stored session. Any missing, unreadable, or inconsistent
// field makes the whole record absent.
func (s *Store) Get() (domain.Session, bool) {
	access, ok := s.load(KeyAccessToken)
	if !ok || access == "" {
		return domain.Session{}, false
	}
	rawUser, ok := s.load(KeyUser)
	if !ok {
		return domain.Session{}, false
	}
	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.logger.Warn("discarding corrupt session user", "error", err)
		return domain.Session{}, false
	}
	rawRole, ok := s.load(KeyRole)
	if !ok {
		return domain.Session{}, false
	}
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		s.logger.Warn("discarding session with unknown role", "role", rawRole)
		return domain.Session{}, false
	}
	refresh, _ := s.load(KeyRefreshToken)

	sess := domain.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
		Role:         role,
	}
	if !sess.Complete() {
		s.logger.Warn("discarding inconsistent session", "role", role, "user_role", user.Role)
		return domain.Session{}, false
	}
	return sess, true
}

// Set persists sess. The access token is written last so an interrupted
// write reads back as absent. A failed write restores the keys it touched to
// their previous values, so an earlier session survives a failed Set.
func (s *Store) Set(sess domain.Session) error {
	if !sess.Complete() {
		return fmt.Errorf("session.Set: %w", ErrIncompleteSession)
	}
	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("session.Set: encode user: %w", err)
	}

	prev := s.snapshot()
	steps := []struct {
		key   string
		value string
	}{
		{KeyUser, string(user)},
		{KeyRole, sess.Role.String()},
		{KeyRefreshToken, sess.RefreshToken},
		{KeyAccessToken, sess.AccessToken},
	}
	var touched []string
	for _, st := range steps {
		touched = append(touched, st.key)
		if err := s.put(st.key, st.value); err != nil {
			s.restore(prev, touched)
			return fmt.Errorf("session.Set: %w", err)
		}
	}
	return nil
}

// put saves value under key; an empty value deletes the key.
func (s *Store) put(key, value string) error {
	if value == "" {
		return s.backend.Delete(key)
	}
	return s.backend.Save(key, value)
}

// snapshot reads the current raw values. Unreadable keys are recorded as
// absent.
func (s *Store) snapshot() map[string]string {
	prev := make(map[string]string, len(Keys))
	for _, key := range Keys {
		if v, err := s.backend.Load(key); err == nil {
			prev[key] = v
		}
	}
	return prev
}

// restore puts keys back to their snapshot values, access token first.
func (s *Store) restore(prev map[string]string, keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		key := keys[i]
		if err := s.put(key, prev[key]); err != nil {
			s.logger.Warn("rollback of partial session failed", "key", key, "error", err)
		}
	}
}

// Clear removes every key, access token first. All keys are attempted even
// when one fails.
func (s *Store) Clear() error {
	var errs []error
	for _, key := range Keys {
		if err := s.backend.Delete(key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("session.Clear: %w", err)
	}
	return nil
}

// AccessToken returns the current access token, or "" for a guest. It has the
// shape of client.TokenSource.
func (s *Store) AccessToken() string {
	sess, ok := s.Get()
	if !ok {
		return ""
	}
	return sess.AccessToken
}

func (s *Store) load(key string) (string, bool) {
	v, err := s.backend.Load(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Debug("session read failed", "key", key, "error", err)
		}
		return "", false
	}
	return v, true
}
