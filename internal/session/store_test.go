package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloghub/bloghub/pkg/domain"
)

func sampleSession() domain.Session {
	return domain.Session{
		AccessToken:  "tok1",
		RefreshToken: "ref1",
		User:         domain.User{ID: "u1", Name: "A", Email: "a@b.com", Role: domain.RoleAuthor},
		Role:         domain.RoleAuthor,
	}
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	fb, err := NewFileBackend(filepath.Join(t.TempDir(), "session"))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   fb,
		"redis":  NewRedisBackend(rdb, "test"),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := NewStore(b, nil)
			_, ok := s.Get()
			require.False(t, ok, "fresh store should be absent")

			want := sampleSession()
			require.NoError(t, s.Set(want))

			got, ok := s.Get()
			require.True(t, ok)
			assert.Equal(t, want, got)
			assert.Equal(t, "tok1", s.AccessToken())
		})
	}
}

func TestStoreRoundTripWithoutRefresh(t *testing.T) {
	s := NewStore(NewMemoryBackend(), nil)
	first := sampleSession()
	require.NoError(t, s.Set(first))

	second := sampleSession()
	second.RefreshToken = ""
	second.AccessToken = "tok2"
	require.NoError(t, s.Set(second))

	got, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, second, got, "stale refresh token must not survive a new session")
}

func TestStoreClear(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := NewStore(b, nil)
			require.NoError(t, s.Set(sampleSession()))
			require.NoError(t, s.Clear())
			_, ok := s.Get()
			assert.False(t, ok)
			require.NoError(t, s.Clear(), "clearing an empty store is not an error")
			assert.Equal(t, "", s.AccessToken())
		})
	}
}

func TestStoreUnreadableRecordsAreAbsent(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *MemoryBackend)
	}{
		{"corrupt user json", func(b *MemoryBackend) { _ = b.Save(KeyUser, "{not json") }},
		{"missing user", func(b *MemoryBackend) { _ = b.Delete(KeyUser) }},
		{"missing role", func(b *MemoryBackend) { _ = b.Delete(KeyRole) }},
		{"unknown role", func(b *MemoryBackend) { _ = b.Save(KeyRole, "editor") }},
		{"role mismatch", func(b *MemoryBackend) { _ = b.Save(KeyRole, "admin") }},
		{"empty token", func(b *MemoryBackend) { _ = b.Save(KeyAccessToken, "") }},
		{"missing token", func(b *MemoryBackend) { _ = b.Delete(KeyAccessToken) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewMemoryBackend()
			s := NewStore(b, nil)
			require.NoError(t, s.Set(sampleSession()))
			tt.mutate(b)
			_, ok := s.Get()
			assert.False(t, ok)
		})
	}
}

func TestStoreAcceptsLegacyRoleAlias(t *testing.T) {
	b := NewMemoryBackend()
	_ = b.Save(KeyAccessToken, "tok")
	_ = b.Save(KeyUser, `{"_id":"u1","name":"R","role":"user"}`)
	_ = b.Save(KeyRole, "user")

	got, ok := NewStore(b, nil).Get()
	require.True(t, ok)
	assert.Equal(t, domain.RoleReader, got.Role)
	assert.Equal(t, "u1", got.User.ID)
}

func TestStoreSetRejectsIncomplete(t *testing.T) {
	s := NewStore(NewMemoryBackend(), nil)
	sess := sampleSession()
	sess.Role = ""
	err := s.Set(sess)
	require.ErrorIs(t, err, ErrIncompleteSession)
	_, ok := s.Get()
	assert.False(t, ok)
}

type failingBackend struct {
	*MemoryBackend
	failSave string
	failLoad bool
}

func (f *failingBackend) Save(key, value string) error {
	if key == f.failSave {
		return errors.New("disk full")
	}
	return f.MemoryBackend.Save(key, value)
}

func (f *failingBackend) Load(key string) (string, error) {
	if f.failLoad {
		return "", errors.New("permission denied")
	}
	return f.MemoryBackend.Load(key)
}

func TestStoreSetRollsBackOnFailure(t *testing.T) {
	b := &failingBackend{MemoryBackend: NewMemoryBackend(), failSave: KeyAccessToken}
	s := NewStore(b, nil)
	err := s.Set(sampleSession())
	require.Error(t, err)

	for _, key := range Keys {
		_, loadErr := b.MemoryBackend.Load(key)
		assert.ErrorIs(t, loadErr, ErrNotFound, "key %s left behind", key)
	}
}

func TestStoreFailedSetKeepsPreviousSession(t *testing.T) {
	b := &failingBackend{MemoryBackend: NewMemoryBackend()}
	s := NewStore(b, nil)
	old := sampleSession()
	require.NoError(t, s.Set(old))

	next := domain.Session{
		AccessToken: "tok2",
		User:        domain.User{ID: "u2", Name: "B", Email: "b@c.com", Role: domain.RoleReader},
		Role:        domain.RoleReader,
	}
	b.failSave = KeyAccessToken
	require.Error(t, s.Set(next))

	got, ok := s.Get()
	require.True(t, ok, "earlier session should survive a failed Set")
	assert.Equal(t, old, got)
}

func TestStoreUnreadableBackendIsAbsent(t *testing.T) {
	b := &failingBackend{MemoryBackend: NewMemoryBackend()}
	s := NewStore(b, nil)
	require.NoError(t, s.Set(sampleSession()))
	b.failLoad = true
	_, ok := s.Get()
	assert.False(t, ok)
}

func TestFileBackendPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, fb.Save(KeyAccessToken, "secret"))

	info, err := os.Stat(filepath.Join(dir, KeyAccessToken))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = fb.Load("../escape")
	assert.Error(t, err)
	_, err = NewFileBackend("  ")
	assert.Error(t, err)
}

func TestRedisBackendNamespacing(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	work := NewStore(NewRedisBackend(rdb, "work"), nil)
	home := NewStore(NewRedisBackend(rdb, ""), nil)
	require.NoError(t, work.Set(sampleSession()))

	_, ok := home.Get()
	assert.False(t, ok, "profiles must not share a session")
	assert.True(t, mr.Exists("bloghub:work:accessToken"))
}

func TestRedisBackendDownIsAbsent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	s := NewStore(NewRedisBackend(rdb, "x"), nil)
	require.NoError(t, s.Set(sampleSession()))

	mr.Close()
	_, ok := s.Get()
	assert.False(t, ok)
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"opaque token", "tok1", false},
		{"future exp", signed(t, now.Add(time.Hour)), false},
		{"past exp", signed(t, now.Add(-time.Minute)), true},
		{"garbage jwt shape", "a.b.c", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := sampleSession()
			sess.AccessToken = tt.token
			assert.Equal(t, tt.want, Expired(sess, now))
		})
	}
}
