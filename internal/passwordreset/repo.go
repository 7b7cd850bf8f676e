package passwordreset

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInvalidToken = errors.New("invalid or expired reset token")

// Token is the stored digest form; the plaintext value never touches the
// database.
type Token struct {
	ID        int64
	UserID    int64
	Email     string
	ExpiresAt time.Time
}

type Repository interface {
	// Supersede marks every outstanding token of the user as used.
	Supersede(ctx context.Context, userID int64) error
	Insert(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	// FindValid returns the token only if it is unused and unexpired.
	FindValid(ctx context.Context, tokenHash string) (*Token, error)
	// Consume atomically marks the token used and stores the new password
	// hash; a second consume of the same token fails.
	Consume(ctx context.Context, tokenID, userID int64, passwordHash string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Supersede(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		UPDATE password_reset_tokens SET used = TRUE
		WHERE user_id = $1 AND used = FALSE
	`, userID)
	return err
}

func (r *PGRepo) Insert(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO password_reset_tokens (user_id, token_hash, expires_at)
		VALUES ($1,$2,$3)
	`, userID, tokenHash, expiresAt)
	return err
}

func (r *PGRepo) FindValid(ctx context.Context, tokenHash string) (*Token, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var t Token
	err := r.db.QueryRow(ctx, `
		SELECT t.token_id, t.user_id, t.expires_at, u.email
		FROM password_reset_tokens t
		JOIN users u ON t.user_id = u.user_id
		WHERE t.token_hash = $1 AND t.used = FALSE AND t.expires_at > NOW()
	`, tokenHash).Scan(&t.ID, &t.UserID, &t.ExpiresAt, &t.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGRepo) Consume(ctx context.Context, tokenID, userID int64, passwordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE password_reset_tokens SET used = TRUE
		WHERE token_id = $1 AND used = FALSE AND expires_at > NOW()
	`, tokenID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidToken
	}

	if _, err := tx.Exec(ctx, `
		UPDATE users SET password_hash = $2 WHERE user_id = $1
	`, userID, passwordHash); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
