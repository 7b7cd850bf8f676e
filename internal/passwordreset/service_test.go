package passwordreset

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaklandbooks/bookstore-api/internal/auth"
	"github.com/oaklandbooks/bookstore-api/internal/user"
)

type stubUserRepo struct {
	byEmail map[string]*user.User
}

func (s *stubUserRepo) Create(ctx context.Context, u *user.User) error { return nil }
func (s *stubUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}
func (s *stubUserRepo) UpdateProfile(ctx context.Context, id int64, up user.ProfileUpdate) error {
	return nil
}
func (s *stubUserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error { return nil }

// stubTokenRepo mirrors the SQL semantics: validity means unused and
// unexpired, consume flips used exactly once.
type storedToken struct {
	id        int64
	userID    int64
	hash      string
	expiresAt time.Time
	used      bool
}

type stubTokenRepo struct {
	tokens    []*storedToken
	nextID    int64
	passwords map[int64]string
	now       func() time.Time
}

func newStubTokenRepo(now func() time.Time) *stubTokenRepo {
	return &stubTokenRepo{nextID: 1, passwords: map[int64]string{}, now: now}
}

func (s *stubTokenRepo) Supersede(ctx context.Context, userID int64) error {
	for _, t := range s.tokens {
		if t.userID == userID && !t.used {
			t.used = true
		}
	}
	return nil
}

func (s *stubTokenRepo) Insert(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	s.tokens = append(s.tokens, &storedToken{
		id: s.nextID, userID: userID, hash: tokenHash, expiresAt: expiresAt,
	})
	s.nextID++
	return nil
}

func (s *stubTokenRepo) FindValid(ctx context.Context, tokenHash string) (*Token, error) {
	for _, t := range s.tokens {
		if t.hash == tokenHash && !t.used && t.expiresAt.After(s.now()) {
			return &Token{ID: t.id, UserID: t.userID, Email: "reader@example.com", ExpiresAt: t.expiresAt}, nil
		}
	}
	return nil, ErrInvalidToken
}

func (s *stubTokenRepo) Consume(ctx context.Context, tokenID, userID int64, passwordHash string) error {
	for _, t := range s.tokens {
		if t.id == tokenID && !t.used && t.expiresAt.After(s.now()) {
			t.used = true
			s.passwords[userID] = passwordHash
			return nil
		}
	}
	return ErrInvalidToken
}

type stubSink struct{ published int }

func (s *stubSink) Publish(key, value []byte) { s.published++ }

func newTestService(t *testing.T) (*Service, *stubTokenRepo, *stubSink) {
	t.Helper()
	now := func() time.Time { return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC) }
	users := &stubUserRepo{byEmail: map[string]*user.User{
		"reader@example.com": {ID: 7, Username: "reader", Email: "reader@example.com"},
	}}
	tokens := newStubTokenRepo(now)
	sink := &stubSink{}
	svc := NewService(users, tokens, sink, 4, "http://localhost:80").WithClock(now)
	return svc, tokens, sink
}

func TestRequest_UnknownEmailIsSilent(t *testing.T) {
	svc, tokens, sink := newTestService(t)

	plain, err := svc.Request(context.Background(), "nobody@example.com")
	require.NoError(t, err, "unknown email must not error")
	assert.Empty(t, plain)
	assert.Empty(t, tokens.tokens, "no token stored for unknown email")
	assert.Zero(t, sink.published)
}

func TestRequest_StoresOnlyDigest(t *testing.T) {
	svc, tokens, sink := newTestService(t)

	plain, err := svc.Request(context.Background(), "reader@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, plain)
	require.Len(t, tokens.tokens, 1)
	assert.NotEqual(t, plain, tokens.tokens[0].hash)
	assert.Equal(t, HashToken(plain), tokens.tokens[0].hash)
	assert.Equal(t, 1, sink.published)
}

func TestRequest_SupersedesPreviousToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	first, err := svc.Request(context.Background(), "reader@example.com")
	require.NoError(t, err)
	second, err := svc.Request(context.Background(), "reader@example.com")
	require.NoError(t, err)

	// The first token is dead even though its TTL has not elapsed.
	_, err = svc.Verify(context.Background(), first)
	assert.ErrorIs(t, err, ErrInvalidToken)

	email, err := svc.Verify(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", email)
}

func TestReset_SingleUse(t *testing.T) {
	svc, tokens, _ := newTestService(t)

	plain, err := svc.Request(context.Background(), "reader@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(context.Background(), plain, "N3wPassword!"))

	hash, ok := tokens.passwords[7]
	require.True(t, ok)
	assert.True(t, auth.CheckPassword(hash, "N3wPassword!"))

	// Replay fails.
	err = svc.Reset(context.Background(), plain, "An0therPassword!")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_ExpiredToken(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	users := &stubUserRepo{byEmail: map[string]*user.User{
		"reader@example.com": {ID: 7, Username: "reader", Email: "reader@example.com"},
	}}
	tokens := newStubTokenRepo(func() time.Time { return now })
	svc := NewService(users, tokens, nil, 4, "http://localhost:80").WithClock(clock)

	plain, err := svc.Request(context.Background(), "reader@example.com")
	require.NoError(t, err)

	// Advance past the 1h TTL.
	now = now.Add(2 * time.Hour)

	_, err = svc.Verify(context.Background(), plain)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
