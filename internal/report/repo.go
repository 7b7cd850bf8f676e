package report

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrBookNotFound = errors.New("book not found")

type MonthlySales struct {
	Month        string `json:"month"`
	TotalSales   string `json:"total_sales"`
	NumOrders    int    `json:"num_orders"`
	NumCustomers int    `json:"num_customers"`
}

type DateSales struct {
	SaleDate     string `json:"sale_date"`
	TotalSales   string `json:"total_sales"`
	NumOrders    int    `json:"num_orders"`
	NumCustomers int    `json:"num_customers"`
}

type TopCustomer struct {
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
	CustomerName string `json:"customer_name"`
	Email        string `json:"email"`
	TotalSpent   string `json:"total_spent"`
	NumOrders    int    `json:"num_orders"`
}

type TopBook struct {
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Category        string `json:"category"`
	PublisherName   string `json:"publisher_name"`
	TotalCopiesSold int    `json:"total_copies_sold"`
	TotalRevenue    string `json:"total_revenue"`
}

type ReorderCount struct {
	ISBN               string `json:"isbn"`
	Title              string `json:"title"`
	Category           string `json:"category"`
	PublisherName      string `json:"publisher_name"`
	TimesReordered     int    `json:"times_reordered"`
	TotalUnitsReceived int    `json:"total_units_received"`
	PendingUnits       int    `json:"pending_units"`
}

type DailySales struct {
	SaleDate   string `json:"sale_date"`
	TotalSales string `json:"total_sales"`
	NumOrders  int    `json:"num_orders"`
}

type InventoryItem struct {
	ISBN              string `json:"isbn"`
	Title             string `json:"title"`
	Category          string `json:"category"`
	QuantityInStock   int    `json:"quantity_in_stock"`
	ThresholdQuantity int    `json:"threshold_quantity"`
	PublisherName     string `json:"publisher_name"`
	StockStatus       string `json:"stock_status"`
}

type RecentOrder struct {
	OrderID     int64     `json:"order_id"`
	OrderDate   time.Time `json:"order_date"`
	TotalAmount string    `json:"total_amount"`
	Username    string    `json:"username"`
}

type DashboardStats struct {
	TotalBooks             int           `json:"totalBooks"`
	TotalCustomers         int           `json:"totalCustomers"`
	TotalOrders            int           `json:"totalOrders"`
	TotalRevenue           string        `json:"totalRevenue"`
	LowStockBooks          int           `json:"lowStockBooks"`
	PendingPublisherOrders int           `json:"pendingPublisherOrders"`
	RecentOrders           []RecentOrder `json:"recentOrders"`
}

type Repository interface {
	PreviousMonthSales(ctx context.Context) (*MonthlySales, error)
	SalesByDate(ctx context.Context, date string) (*DateSales, error)
	TopCustomers(ctx context.Context) ([]TopCustomer, error)
	TopBooks(ctx context.Context) ([]TopBook, error)
	BookReorderCount(ctx context.Context, isbn string) (*ReorderCount, error)
	DailySales(ctx context.Context, startDate, endDate string) ([]DailySales, error)
	InventoryStatus(ctx context.Context) ([]InventoryItem, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// PreviousMonthSales covers the whole calendar month before the current
// one. A month with no orders yields zeros rather than no row.
func (r *PGRepo) PreviousMonthSales(ctx context.Context) (*MonthlySales, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out := &MonthlySales{TotalSales: "0", NumOrders: 0, NumCustomers: 0}
	err := r.db.QueryRow(ctx, `
		SELECT to_char(order_date, 'YYYY-MM'),
		       SUM(total_amount)::text,
		       COUNT(*),
		       COUNT(DISTINCT user_id)
		FROM customer_orders
		WHERE order_date >= date_trunc('month', CURRENT_DATE) - INTERVAL '1 month'
		  AND order_date < date_trunc('month', CURRENT_DATE)
		GROUP BY to_char(order_date, 'YYYY-MM')`).Scan(
		&out.Month, &out.TotalSales, &out.NumOrders, &out.NumCustomers)
	if err == pgx.ErrNoRows {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepo) SalesByDate(ctx context.Context, date string) (*DateSales, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out := &DateSales{SaleDate: date, TotalSales: "0"}
	err := r.db.QueryRow(ctx, `
		SELECT order_date::date::text,
		       SUM(total_amount)::text,
		       COUNT(*),
		       COUNT(DISTINCT user_id)
		FROM customer_orders
		WHERE order_date::date = $1::date
		GROUP BY order_date::date`, date).Scan(
		&out.SaleDate, &out.TotalSales, &out.NumOrders, &out.NumCustomers)
	if err == pgx.ErrNoRows {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepo) TopCustomers(ctx context.Context) ([]TopCustomer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT u.user_id, u.username,
		       TRIM(COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, '')),
		       u.email,
		       SUM(co.total_amount)::text,
		       COUNT(co.order_id)
		FROM users u
		JOIN customer_orders co ON u.user_id = co.user_id
		WHERE co.order_date >= CURRENT_DATE - INTERVAL '3 months'
		GROUP BY u.user_id, u.username, u.first_name, u.last_name, u.email
		ORDER BY SUM(co.total_amount) DESC
		LIMIT 5`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TopCustomer{}
	for rows.Next() {
		var c TopCustomer
		if err := rows.Scan(&c.UserID, &c.Username, &c.CustomerName, &c.Email,
			&c.TotalSpent, &c.NumOrders); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) TopBooks(ctx context.Context) ([]TopBook, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT b.isbn, b.title, b.category, p.publisher_name,
		       SUM(oi.quantity),
		       SUM(oi.quantity * oi.price_at_purchase)::text
		FROM books b
		JOIN order_items oi ON b.isbn = oi.book_isbn
		JOIN customer_orders co ON oi.order_id = co.order_id
		JOIN publishers p ON b.publisher_id = p.publisher_id
		WHERE co.order_date >= CURRENT_DATE - INTERVAL '3 months'
		GROUP BY b.isbn, b.title, b.category, p.publisher_name
		ORDER BY SUM(oi.quantity) DESC
		LIMIT 10`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TopBook{}
	for rows.Next() {
		var b TopBook
		if err := rows.Scan(&b.ISBN, &b.Title, &b.Category, &b.PublisherName,
			&b.TotalCopiesSold, &b.TotalRevenue); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PGRepo) BookReorderCount(ctx context.Context, isbn string) (*ReorderCount, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rc ReorderCount
	err := r.db.QueryRow(ctx, `
		SELECT b.isbn, b.title, b.category, p.publisher_name,
		       COUNT(po.order_id),
		       COALESCE(SUM(po.order_quantity) FILTER (WHERE po.status = 'confirmed'), 0),
		       COALESCE(SUM(po.order_quantity) FILTER (WHERE po.status = 'pending'), 0)
		FROM books b
		JOIN publishers p ON b.publisher_id = p.publisher_id
		LEFT JOIN publisher_orders po ON b.isbn = po.book_isbn
		WHERE b.isbn = $1
		GROUP BY b.isbn, b.title, b.category, p.publisher_name`, isbn).Scan(
		&rc.ISBN, &rc.Title, &rc.Category, &rc.PublisherName,
		&rc.TimesReordered, &rc.TotalUnitsReceived, &rc.PendingUnits)
	if err == pgx.ErrNoRows {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

// DailySales returns per-day totals, newest first, capped at 30 days.
// Empty bounds widen the range.
func (r *PGRepo) DailySales(ctx context.Context, startDate, endDate string) ([]DailySales, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q := `
		SELECT order_date::date::text, SUM(total_amount)::text, COUNT(*)
		FROM customer_orders`
	args := []any{}
	switch {
	case startDate != "" && endDate != "":
		q += ` WHERE order_date BETWEEN $1::date AND $2::date`
		args = append(args, startDate, endDate)
	case startDate != "":
		q += ` WHERE order_date >= $1::date`
		args = append(args, startDate)
	}
	q += ` GROUP BY order_date::date ORDER BY order_date::date DESC LIMIT 30`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DailySales{}
	for rows.Next() {
		var d DailySales
		if err := rows.Scan(&d.SaleDate, &d.TotalSales, &d.NumOrders); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PGRepo) InventoryStatus(ctx context.Context) ([]InventoryItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT b.isbn, b.title, b.category, b.quantity_in_stock, b.threshold_quantity,
		       p.publisher_name,
		       CASE
		         WHEN b.quantity_in_stock = 0 THEN 'OUT_OF_STOCK'
		         WHEN b.quantity_in_stock < b.threshold_quantity THEN 'LOW_STOCK'
		         ELSE 'IN_STOCK'
		       END
		FROM books b
		JOIN publishers p ON b.publisher_id = p.publisher_id
		WHERE b.quantity_in_stock < b.threshold_quantity
		ORDER BY b.quantity_in_stock ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []InventoryItem{}
	for rows.Next() {
		var it InventoryItem
		if err := rows.Scan(&it.ISBN, &it.Title, &it.Category, &it.QuantityInStock,
			&it.ThresholdQuantity, &it.PublisherName, &it.StockStatus); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PGRepo) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	s := &DashboardStats{RecentOrders: []RecentOrder{}}
	err := r.db.QueryRow(ctx, `
		SELECT
		  (SELECT COUNT(*) FROM books),
		  (SELECT COUNT(*) FROM users WHERE user_type = 'customer'),
		  (SELECT COUNT(*) FROM customer_orders),
		  (SELECT COALESCE(SUM(total_amount), 0)::text FROM customer_orders),
		  (SELECT COUNT(*) FROM books WHERE quantity_in_stock < threshold_quantity),
		  (SELECT COUNT(*) FROM publisher_orders WHERE status = 'pending')`).Scan(
		&s.TotalBooks, &s.TotalCustomers, &s.TotalOrders, &s.TotalRevenue,
		&s.LowStockBooks, &s.PendingPublisherOrders)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT co.order_id, co.order_date, co.total_amount::text, u.username
		FROM customer_orders co
		JOIN users u ON co.user_id = u.user_id
		ORDER BY co.order_date DESC
		LIMIT 5`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var o RecentOrder
		if err := rows.Scan(&o.OrderID, &o.OrderDate, &o.TotalAmount, &o.Username); err != nil {
			return nil, err
		}
		s.RecentOrders = append(s.RecentOrders, o)
	}
	return s, rows.Err()
}
