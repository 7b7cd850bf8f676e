package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oaklandbooks/bookstore-api/internal/payment"
)

type PlaceRequest struct {
	UserID int64
	Items  []ItemRequest
	Card   payment.Card
}

type Repository interface {
	Place(ctx context.Context, req PlaceRequest) (*Order, []Item, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	GetByID(ctx context.Context, orderID, userID int64) (*Order, []Item, error)
	ListAll(ctx context.Context, limit, offset int) ([]OrderWithUser, int, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// Place runs the whole placement as one transaction. Stock rows are read
// FOR UPDATE so two concurrent orders for the same book serialize on the row
// lock and the second sees the decremented quantity; oversell is impossible.
// Any item failure rolls back everything.
func (r *PGRepo) Place(ctx context.Context, req PlaceRequest) (*Order, []Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	type line struct {
		isbn      string
		title     string
		qty       int
		price     decimal.Decimal
		stock     int
		threshold int
		publisher int64
	}

	total := decimal.Zero
	lines := make([]line, 0, len(req.Items))
	for _, it := range req.Items {
		var l line
		var priceText string
		err := tx.QueryRow(ctx, `
			SELECT isbn, title, price::text, quantity_in_stock, threshold_quantity, publisher_id
			FROM books WHERE isbn = $1
			FOR UPDATE
		`, it.ISBN).Scan(&l.isbn, &l.title, &priceText, &l.stock, &l.threshold, &l.publisher)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil, &BookNotFoundError{ISBN: it.ISBN}
			}
			return nil, nil, err
		}
		if l.stock < it.Quantity {
			return nil, nil, &InsufficientStockError{ISBN: it.ISBN, Available: l.stock, Requested: it.Quantity}
		}
		l.price, err = decimal.NewFromString(priceText)
		if err != nil {
			return nil, nil, err
		}
		l.qty = it.Quantity
		lines = append(lines, l)
		total = total.Add(l.price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	o := &Order{
		UserID:      req.UserID,
		TotalAmount: total.StringFixed(2),
		CardNumber:  req.Card.MaskedNumber,
		CardExpiry:  req.Card.NormalizedExpiry,
	}
	if err := tx.QueryRow(ctx, `
		INSERT INTO customer_orders (user_id, total_amount, credit_card_number, credit_card_expiry)
		VALUES ($1,$2,$3,$4)
		RETURNING order_id, order_date
	`, o.UserID, o.TotalAmount, o.CardNumber, o.CardExpiry).Scan(&o.ID, &o.OrderDate); err != nil {
		return nil, nil, err
	}

	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		it := Item{
			OrderID:         o.ID,
			BookISBN:        l.isbn,
			Title:           l.title,
			Quantity:        l.qty,
			PriceAtPurchase: l.price.StringFixed(2),
		}
		if err := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, book_isbn, quantity, price_at_purchase)
			VALUES ($1,$2,$3,$4)
			RETURNING order_item_id
		`, it.OrderID, it.BookISBN, it.Quantity, it.PriceAtPurchase).Scan(&it.OrderItemID); err != nil {
			return nil, nil, err
		}
		items = append(items, it)
	}

	// Decrement stock and, where the threshold is crossed, raise a pending
	// replenishment order unless one already exists for the book.
	for _, l := range lines {
		newStock := l.stock - l.qty
		if _, err := tx.Exec(ctx, `
			UPDATE books SET quantity_in_stock = $2 WHERE isbn = $1
		`, l.isbn, newStock); err != nil {
			return nil, nil, err
		}
		if newStock > l.threshold {
			continue
		}
		var pending bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM publisher_orders WHERE book_isbn = $1 AND status = $2)
		`, l.isbn, StatusPending).Scan(&pending); err != nil {
			return nil, nil, err
		}
		if pending {
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO publisher_orders (book_isbn, publisher_id, order_quantity, status, created_by)
			VALUES ($1,$2,$3,$4,NULL)
		`, l.isbn, l.publisher, reorderQuantity(l.threshold), StatusPending); err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return o, items, nil
}

// reorderQuantity restocks to twice the threshold, the smallest amount that
// keeps a book out of the low-stock report for a while.
func reorderQuantity(threshold int) int {
	if threshold <= 0 {
		return 10
	}
	return threshold * 2
}

func (r *PGRepo) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT order_id, user_id, order_date, total_amount::text,
		       credit_card_number, credit_card_expiry
		FROM customer_orders
		WHERE user_id = $1
		ORDER BY order_date DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.OrderDate, &o.TotalAmount,
			&o.CardNumber, &o.CardExpiry); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetByID is scoped to the owner; asking for someone else's order reads as
// not found.
func (r *PGRepo) GetByID(ctx context.Context, orderID, userID int64) (*Order, []Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	err := r.db.QueryRow(ctx, `
		SELECT order_id, user_id, order_date, total_amount::text,
		       credit_card_number, credit_card_expiry
		FROM customer_orders
		WHERE order_id = $1 AND user_id = $2
	`, orderID, userID).Scan(&o.ID, &o.UserID, &o.OrderDate, &o.TotalAmount,
		&o.CardNumber, &o.CardExpiry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT oi.order_item_id, oi.order_id, oi.book_isbn, b.title, oi.quantity,
		       oi.price_at_purchase::text,
		       (oi.quantity * oi.price_at_purchase)::text
		FROM order_items oi
		JOIN books b ON oi.book_isbn = b.isbn
		WHERE oi.order_id = $1
	`, orderID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.OrderItemID, &it.OrderID, &it.BookISBN, &it.Title,
			&it.Quantity, &it.PriceAtPurchase, &it.Subtotal); err != nil {
			return nil, nil, err
		}
		items = append(items, it)
	}
	return &o, items, rows.Err()
}

func (r *PGRepo) ListAll(ctx context.Context, limit, offset int) ([]OrderWithUser, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, `
		SELECT co.order_id, co.user_id, co.order_date, co.total_amount::text,
		       u.username, u.email, COALESCE(u.first_name,''), COALESCE(u.last_name,'')
		FROM customer_orders co
		JOIN users u ON co.user_id = u.user_id
		ORDER BY co.order_date DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []OrderWithUser
	for rows.Next() {
		var o OrderWithUser
		if err := rows.Scan(&o.ID, &o.UserID, &o.OrderDate, &o.TotalAmount,
			&o.Username, &o.Email, &o.FirstName, &o.LastName); err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customer_orders`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
