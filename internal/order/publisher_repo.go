package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PublisherRepository manages replenishment orders to publishers.
type PublisherRepository interface {
	List(ctx context.Context, status string) ([]PublisherOrder, error)
	Create(ctx context.Context, bookISBN string, quantity int, createdBy int64) (int64, error)
	Confirm(ctx context.Context, orderID, adminID int64) error
}

type PGPublisherRepo struct{ db *pgxpool.Pool }

func NewPGPublisherRepo(db *pgxpool.Pool) *PGPublisherRepo { return &PGPublisherRepo{db: db} }

func (r *PGPublisherRepo) List(ctx context.Context, status string) ([]PublisherOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if status == "" {
		status = StatusPending
	}
	rows, err := r.db.Query(ctx, `
		SELECT po.order_id, po.book_isbn, b.title, po.publisher_id, p.publisher_name,
		       po.order_quantity, po.order_date, po.status, po.confirmed_date,
		       COALESCE(u1.username,''), COALESCE(u2.username,''),
		       CASE WHEN po.created_by IS NULL THEN 'Auto-generated' ELSE 'Manual' END
		FROM publisher_orders po
		JOIN books b ON po.book_isbn = b.isbn
		JOIN publishers p ON po.publisher_id = p.publisher_id
		LEFT JOIN users u1 ON po.confirmed_by = u1.user_id
		LEFT JOIN users u2 ON po.created_by = u2.user_id
		WHERE po.status = $1
		ORDER BY po.order_date DESC
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PublisherOrder
	for rows.Next() {
		var po PublisherOrder
		if err := rows.Scan(&po.OrderID, &po.BookISBN, &po.Title, &po.PublisherID,
			&po.PublisherName, &po.OrderQuantity, &po.OrderDate, &po.Status,
			&po.ConfirmedDate, &po.ConfirmedBy, &po.CreatedBy, &po.OrderType); err != nil {
			return nil, err
		}
		out = append(out, po)
	}
	return out, rows.Err()
}

func (r *PGPublisherRepo) Create(ctx context.Context, bookISBN string, quantity int, createdBy int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var publisherID int64
	err := r.db.QueryRow(ctx, `
		SELECT publisher_id FROM books WHERE isbn = $1
	`, bookISBN).Scan(&publisherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, &BookNotFoundError{ISBN: bookISBN}
		}
		return 0, err
	}

	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO publisher_orders (book_isbn, publisher_id, order_quantity, status, created_by)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING order_id
	`, bookISBN, publisherID, quantity, StatusPending, createdBy).Scan(&id)
	return id, err
}

// Confirm is the single pending->confirmed transition. The status read and
// the update share a transaction with the row locked, so a concurrent
// confirm of the same order fails with ErrNotPending rather than applying
// twice.
func (r *PGPublisherRepo) Confirm(ctx context.Context, orderID, adminID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	err = tx.QueryRow(ctx, `
		SELECT status FROM publisher_orders WHERE order_id = $1 FOR UPDATE
	`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPublisherOrderNotFound
		}
		return err
	}
	if status != StatusPending {
		return ErrNotPending
	}

	if _, err := tx.Exec(ctx, `
		UPDATE publisher_orders
		SET status = $2, confirmed_date = NOW(), confirmed_by = $3
		WHERE order_id = $1
	`, orderID, StatusConfirmed, adminID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
