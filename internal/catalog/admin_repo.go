package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrPublisherNotFound = errors.New("publisher not found")
	ErrAuthorNotFound    = errors.New("author not found")
	ErrHasBooks          = errors.New("books exist for this record")
)

// AdminRepository manages publishers and authors (admin console).
type AdminRepository interface {
	ListPublishers(ctx context.Context) ([]Publisher, error)
	GetPublisher(ctx context.Context, id int64) (*Publisher, error)
	CreatePublisher(ctx context.Context, p *Publisher) error
	UpdatePublisher(ctx context.Context, p *Publisher) error
	DeletePublisher(ctx context.Context, id int64) error

	ListAuthors(ctx context.Context) ([]Author, error)
	GetAuthor(ctx context.Context, id int64) (*Author, error)
	CreateAuthor(ctx context.Context, a *Author) error
	UpdateAuthor(ctx context.Context, a *Author) error
	DeleteAuthor(ctx context.Context, id int64) error
}

type PGAdminRepo struct{ db *pgxpool.Pool }

func NewPGAdminRepo(db *pgxpool.Pool) *PGAdminRepo { return &PGAdminRepo{db: db} }

func (r *PGAdminRepo) ListPublishers(ctx context.Context) ([]Publisher, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT p.publisher_id, p.publisher_name,
		       COALESCE(p.address,''), COALESCE(p.phone_number,''),
		       COUNT(b.isbn)
		FROM publishers p
		LEFT JOIN books b ON p.publisher_id = b.publisher_id
		GROUP BY p.publisher_id
		ORDER BY p.publisher_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Publisher
	for rows.Next() {
		var p Publisher
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.PhoneNumber, &p.BookCount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGAdminRepo) GetPublisher(ctx context.Context, id int64) (*Publisher, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p Publisher
	err := r.db.QueryRow(ctx, `
		SELECT publisher_id, publisher_name, COALESCE(address,''), COALESCE(phone_number,'')
		FROM publishers WHERE publisher_id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Address, &p.PhoneNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPublisherNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGAdminRepo) CreatePublisher(ctx context.Context, p *Publisher) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO publishers (publisher_name, address, phone_number)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''))
		RETURNING publisher_id
	`, p.Name, p.Address, p.PhoneNumber).Scan(&p.ID)
}

func (r *PGAdminRepo) UpdatePublisher(ctx context.Context, p *Publisher) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE publishers
		SET publisher_name = COALESCE(NULLIF($2,''), publisher_name),
		    address        = NULLIF($3,''),
		    phone_number   = NULLIF($4,'')
		WHERE publisher_id = $1
	`, p.ID, p.Name, p.Address, p.PhoneNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPublisherNotFound
	}
	return nil
}

// DeletePublisher refuses while books reference the publisher.
func (r *PGAdminRepo) DeletePublisher(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var count int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM books WHERE publisher_id = $1
	`, id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrHasBooks
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM publishers WHERE publisher_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPublisherNotFound
	}
	return nil
}

func (r *PGAdminRepo) ListAuthors(ctx context.Context) ([]Author, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT a.author_id, a.author_name, COUNT(ba.book_isbn)
		FROM authors a
		LEFT JOIN book_authors ba ON a.author_id = ba.author_id
		GROUP BY a.author_id
		ORDER BY a.author_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name, &a.BookCount); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGAdminRepo) GetAuthor(ctx context.Context, id int64) (*Author, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var a Author
	err := r.db.QueryRow(ctx, `
		SELECT author_id, author_name FROM authors WHERE author_id = $1
	`, id).Scan(&a.ID, &a.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT b.isbn, b.title, COALESCE(b.publication_year, 0), b.category
		FROM books b
		JOIN book_authors ba ON b.isbn = ba.book_isbn
		WHERE ba.author_id = $1
		ORDER BY b.publication_year DESC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ISBN, &b.Title, &b.PublicationYear, &b.Category); err != nil {
			return nil, err
		}
		a.Books = append(a.Books, b)
	}
	return &a, rows.Err()
}

func (r *PGAdminRepo) CreateAuthor(ctx context.Context, a *Author) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO authors (author_name) VALUES ($1) RETURNING author_id
	`, a.Name).Scan(&a.ID)
}

func (r *PGAdminRepo) UpdateAuthor(ctx context.Context, a *Author) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE authors SET author_name = $2 WHERE author_id = $1
	`, a.ID, a.Name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAuthorNotFound
	}
	return nil
}

func (r *PGAdminRepo) DeleteAuthor(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var count int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM book_authors WHERE author_id = $1
	`, id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrHasBooks
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM authors WHERE author_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAuthorNotFound
	}
	return nil
}
