package passwordreset

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/oaklandbooks/bookstore-api/internal/auth"
	"github.com/oaklandbooks/bookstore-api/internal/events"
	kafkax "github.com/oaklandbooks/bookstore-api/internal/kafka"
	"github.com/oaklandbooks/bookstore-api/internal/user"
)

const tokenTTL = time.Hour

type EventSink interface {
	Publish(key, value []byte)
}

type Service struct {
	users      user.Repository
	tokens     Repository
	sink       EventSink
	bcryptCost int
	baseURL    string
	now        func() time.Time
}

func NewService(users user.Repository, tokens Repository, sink EventSink, bcryptCost int, frontendURL string) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		sink:       sink,
		bcryptCost: bcryptCost,
		baseURL:    frontendURL,
		now:        time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// HashToken is the one-way digest under which tokens are stored and looked
// up. SHA-256 rather than bcrypt: lookup is by exact digest.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Request issues a token for a known email and stays silent about unknown
// ones: the caller gets the identical outcome either way, so responses
// cannot be used to enumerate accounts. Issuing supersedes every earlier
// outstanding token for the user. The plaintext token is returned for the
// handler to expose in development mode only.
func (s *Service) Request(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	plain, err := newToken()
	if err != nil {
		return "", err
	}
	if err := s.tokens.Supersede(ctx, u.ID); err != nil {
		return "", err
	}
	if err := s.tokens.Insert(ctx, u.ID, HashToken(plain), s.now().Add(tokenTTL)); err != nil {
		return "", err
	}

	s.publishRequested(u.ID, fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, plain))
	return plain, nil
}

// Verify reports the account email behind a live token.
func (s *Service) Verify(ctx context.Context, plainToken string) (string, error) {
	t, err := s.tokens.FindValid(ctx, HashToken(plainToken))
	if err != nil {
		return "", err
	}
	return t.Email, nil
}

// Reset consumes the token and stores the new password hash. Single use:
// a replay of the same token fails at consume time.
func (s *Service) Reset(ctx context.Context, plainToken, newPassword string) error {
	t, err := s.tokens.FindValid(ctx, HashToken(plainToken))
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.tokens.Consume(ctx, t.ID, t.UserID, hash)
}

func (s *Service) publishRequested(userID int64, resetURL string) {
	if s.sink == nil {
		return
	}
	env, err := events.New(uuid.NewString(), events.EventPasswordResetRequested, "bookstore-api",
		events.PasswordResetRequestedPayload{UserID: userID, ResetURL: resetURL})
	if err != nil {
		log.Printf("[passwordreset] marshal event: %v", err)
		return
	}
	s.sink.Publish(events.PartitionKey(userID), kafkax.MustMarshal(env))
}
