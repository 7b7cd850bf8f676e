package wishlist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrBookNotFound = errors.New("book not found")
	ErrAlreadyAdded = errors.New("book already in wishlist")
	ErrNotInList    = errors.New("book not found in wishlist")
)

// Entry is a wishlisted book with its catalog data joined in.
type Entry struct {
	WishlistID      int64     `json:"wishlist_id"`
	AddedAt         time.Time `json:"added_at"`
	ISBN            string    `json:"isbn"`
	Title           string    `json:"title"`
	Price           string    `json:"price"`
	Category        string    `json:"category"`
	QuantityInStock int       `json:"quantity_in_stock"`
	PublisherName   string    `json:"publisher_name"`
	Authors         string    `json:"authors"`
}

type Repository interface {
	List(ctx context.Context, userID int64) ([]Entry, error)
	Add(ctx context.Context, userID int64, isbn string) error
	Remove(ctx context.Context, userID int64, isbn string) error
	Contains(ctx context.Context, userID int64, isbn string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) List(ctx context.Context, userID int64) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT w.wishlist_id, w.added_at,
		       b.isbn, b.title, b.price::text, b.category, b.quantity_in_stock,
		       p.publisher_name,
		       COALESCE(string_agg(a.author_name, ', '), '')
		FROM wishlists w
		JOIN books b ON w.book_isbn = b.isbn
		JOIN publishers p ON b.publisher_id = p.publisher_id
		LEFT JOIN book_authors ba ON b.isbn = ba.book_isbn
		LEFT JOIN authors a ON ba.author_id = a.author_id
		WHERE w.user_id = $1
		GROUP BY w.wishlist_id, b.isbn, p.publisher_name
		ORDER BY w.added_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.WishlistID, &e.AddedAt, &e.ISBN, &e.Title,
			&e.Price, &e.Category, &e.QuantityInStock, &e.PublisherName, &e.Authors); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PGRepo) Add(ctx context.Context, userID int64, isbn string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)`, isbn).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrBookNotFound
	}

	// UNIQUE(user_id, book_isbn) catches the duplicate race.
	_, err := r.db.Exec(ctx,
		`INSERT INTO wishlists (user_id, book_isbn) VALUES ($1, $2)`, userID, isbn)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyAdded
		}
		return err
	}
	return nil
}

func (r *PGRepo) Remove(ctx context.Context, userID int64, isbn string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx,
		`DELETE FROM wishlists WHERE user_id = $1 AND book_isbn = $2`, userID, isbn)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotInList
	}
	return nil
}

func (r *PGRepo) Contains(ctx context.Context, userID int64, isbn string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var in bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM wishlists WHERE user_id = $1 AND book_isbn = $2)`,
		userID, isbn).Scan(&in)
	return in, err
}
