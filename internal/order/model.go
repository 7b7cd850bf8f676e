package order

import (
	"errors"
	"fmt"
	"time"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

var (
	ErrNotFound               = errors.New("order not found")
	ErrEmptyOrder             = errors.New("order must contain at least one item")
	ErrPublisherOrderNotFound = errors.New("publisher order not found")
	ErrNotPending             = errors.New("order is not in pending status")
)

// BookNotFoundError fails the whole placement when any requested ISBN is
// unknown.
type BookNotFoundError struct{ ISBN string }

func (e *BookNotFoundError) Error() string {
	return fmt.Sprintf("Book %s not found", e.ISBN)
}

// InsufficientStockError names the ISBN and what was actually available.
type InsufficientStockError struct {
	ISBN      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %d", e.ISBN, e.Available)
}

type Order struct {
	ID          int64     `json:"order_id"`
	UserID      int64     `json:"user_id"`
	OrderDate   time.Time `json:"order_date"`
	TotalAmount string    `json:"total_amount"` // NUMERIC -> string
	CardNumber  string    `json:"credit_card_number"` // masked form only
	CardExpiry  string    `json:"credit_card_expiry"` // normalized MM/YY
}

type Item struct {
	OrderItemID     int64  `json:"order_item_id,omitempty"`
	OrderID         int64  `json:"order_id"`
	BookISBN        string `json:"book_isbn"`
	Title           string `json:"title,omitempty"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase string `json:"price_at_purchase"` // snapshot, never recomputed
	Subtotal        string `json:"subtotal,omitempty"`
}

// OrderWithUser is the admin listing row.
type OrderWithUser struct {
	Order
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type PublisherOrder struct {
	OrderID       int64      `json:"order_id"`
	BookISBN      string     `json:"book_isbn"`
	Title         string     `json:"title,omitempty"`
	PublisherID   int64      `json:"publisher_id"`
	PublisherName string     `json:"publisher_name,omitempty"`
	OrderQuantity int        `json:"order_quantity"`
	OrderDate     time.Time  `json:"order_date"`
	Status        string     `json:"status"`
	ConfirmedDate *time.Time `json:"confirmed_date,omitempty"`
	ConfirmedBy   string     `json:"confirmed_by,omitempty"`
	CreatedBy     string     `json:"created_by,omitempty"`
	OrderType     string     `json:"order_type"` // Auto-generated | Manual
}
