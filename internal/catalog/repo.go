package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("book not found")
	ErrAlreadyExist  = errors.New("book already exists")
	ErrInvalidSearch = errors.New("invalid search type")
)

type BookUpdate struct {
	Price           *string
	QuantityInStock *int
}

// FullSearchFilter narrows a free-text search. Zero values mean "no filter".
type FullSearchFilter struct {
	Query    string
	Category string
	MinPrice *string
	MaxPrice *string
	InStock  bool
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, b *Book, authorIDs []int64) error
	Update(ctx context.Context, isbn string, up BookUpdate) error
	GetByISBN(ctx context.Context, isbn string) (*Book, error)
	List(ctx context.Context, limit, offset int) ([]Book, int, error)
	Search(ctx context.Context, typ SearchType, value string) ([]Book, error)
	FullSearch(ctx context.Context, f FullSearchFilter) ([]Book, int, error)
	ListByCategory(ctx context.Context, category string) ([]Book, error)
	Categories(ctx context.Context) ([]CategoryCount, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// bookSelect joins publisher and aggregated author names; every book query
// shares it so the Book shape stays uniform.
const bookSelect = `
	SELECT b.isbn, b.title, b.publisher_id, p.publisher_name,
	       COALESCE(string_agg(DISTINCT a.author_name, ', '), ''),
	       COALESCE(b.publication_year, 0), b.price::text, b.category,
	       b.quantity_in_stock, b.threshold_quantity, b.created_at
	FROM books b
	JOIN publishers p ON b.publisher_id = p.publisher_id
	LEFT JOIN book_authors ba ON b.isbn = ba.book_isbn
	LEFT JOIN authors a ON ba.author_id = a.author_id
`

const bookGroup = ` GROUP BY b.isbn, p.publisher_name`

func scanBooks(rows pgx.Rows) ([]Book, error) {
	defer rows.Close()
	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ISBN, &b.Title, &b.PublisherID, &b.PublisherName,
			&b.Authors, &b.PublicationYear, &b.Price, &b.Category,
			&b.QuantityInStock, &b.ThresholdQuantity, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PGRepo) Create(ctx context.Context, b *Book, authorIDs []int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO books (isbn, title, publisher_id, publication_year,
		                   price, category, quantity_in_stock, threshold_quantity)
		VALUES ($1,$2,$3,NULLIF($4,0),$5,$6,$7,$8)
	`, b.ISBN, b.Title, b.PublisherID, b.PublicationYear, b.Price, b.Category,
		b.QuantityInStock, b.ThresholdQuantity); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExist
		}
		return err
	}

	for _, id := range authorIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO book_authors (book_isbn, author_id) VALUES ($1,$2)
		`, b.ISBN, id); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Update touches price and stock only; everything else on a book is
// immutable once cataloged.
func (r *PGRepo) Update(ctx context.Context, isbn string, up BookUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE books
		SET price             = COALESCE($2::numeric, price),
		    quantity_in_stock = COALESCE($3, quantity_in_stock)
		WHERE isbn = $1
	`, isbn, up.Price, up.QuantityInStock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) GetByISBN(ctx context.Context, isbn string) (*Book, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, bookSelect+` WHERE b.isbn = $1`+bookGroup, isbn)
	if err != nil {
		return nil, err
	}
	books, err := scanBooks(rows)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, ErrNotFound
	}
	return &books[0], nil
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Book, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, bookSelect+bookGroup+`
		ORDER BY b.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	books, err := scanBooks(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// Search matches one typed field. Each type maps to a fixed parameterized
// clause; user input only ever travels as a bind parameter.
func (r *PGRepo) Search(ctx context.Context, typ SearchType, value string) ([]Book, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var where string
	arg := value
	switch typ {
	case SearchByISBN:
		where = ` WHERE b.isbn = $1`
	case SearchByTitle:
		where = ` WHERE b.title ILIKE '%'||$1||'%'`
	case SearchByAuthor:
		where = ` WHERE a.author_name ILIKE '%'||$1||'%'`
	case SearchByCategory:
		where = ` WHERE b.category = $1`
	case SearchByPublisher:
		where = ` WHERE p.publisher_name ILIKE '%'||$1||'%'`
	default:
		return nil, ErrInvalidSearch
	}

	rows, err := r.db.Query(ctx, bookSelect+where+bookGroup, arg)
	if err != nil {
		return nil, err
	}
	return scanBooks(rows)
}

// FullSearch matches the query against title, ISBN, author and publisher at
// once, then applies the optional filters. Built with numbered bind
// parameters; filters only append fixed clause text.
func (r *PGRepo) FullSearch(ctx context.Context, f FullSearchFilter) ([]Book, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := ` WHERE (b.title ILIKE '%'||$1||'%' OR b.isbn ILIKE '%'||$1||'%'
		OR a.author_name ILIKE '%'||$1||'%' OR p.publisher_name ILIKE '%'||$1||'%')`
	args := []any{f.Query}
	if f.Category != "" {
		args = append(args, f.Category)
		where += ` AND b.category = $` + strconv.Itoa(len(args))
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		where += ` AND b.price >= $` + strconv.Itoa(len(args)) + `::numeric`
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		where += ` AND b.price <= $` + strconv.Itoa(len(args)) + `::numeric`
	}
	if f.InStock {
		where += ` AND b.quantity_in_stock > 0`
	}

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(DISTINCT b.isbn) FROM books b
		 JOIN publishers p ON b.publisher_id = p.publisher_id
		 LEFT JOIN book_authors ba ON b.isbn = ba.book_isbn
		 LEFT JOIN authors a ON ba.author_id = a.author_id`+where,
		args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitPos := len(args) + 1
	args = append(args, f.Limit, f.Offset)
	rows, err := r.db.Query(ctx, bookSelect+where+bookGroup+
		` ORDER BY b.title LIMIT $`+strconv.Itoa(limitPos)+` OFFSET $`+strconv.Itoa(limitPos+1), args...)
	if err != nil {
		return nil, 0, err
	}
	books, err := scanBooks(rows)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}
func (r *PGRepo) ListByCategory(ctx context.Context, category string) ([]Book, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, bookSelect+` WHERE b.category = $1`+bookGroup+`
		ORDER BY b.title`, category)
	if err != nil {
		return nil, err
	}
	return scanBooks(rows)
}

func (r *PGRepo) Categories(ctx context.Context) ([]CategoryCount, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT category, COUNT(*) FROM books GROUP BY category ORDER BY category
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.BookCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
