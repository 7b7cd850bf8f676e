package review

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	ListForBook(ctx context.Context, isbn string, limit, offset int) ([]ReviewWithUser, *Stats, error)
	Upsert(ctx context.Context, isbn string, userID int64, rating int, title, text string) (created bool, err error)
	Delete(ctx context.Context, isbn string, userID int64) error
	GetOwn(ctx context.Context, isbn string, userID int64) (*Review, error)
	Recommendations(ctx context.Context, userID int64, limit int) ([]Recommendation, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) ListForBook(ctx context.Context, isbn string, limit, offset int) ([]ReviewWithUser, *Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT r.review_id, r.rating, r.review_title, r.review_text,
		       r.created_at, r.updated_at,
		       u.username, COALESCE(u.first_name, ''), COALESCE(u.last_name, '')
		FROM book_reviews r
		JOIN users u ON r.user_id = u.user_id
		WHERE r.book_isbn = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3`, isbn, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	reviews := []ReviewWithUser{}
	for rows.Next() {
		var rv ReviewWithUser
		if err := rows.Scan(&rv.ID, &rv.Rating, &rv.Title, &rv.Text,
			&rv.CreatedAt, &rv.UpdatedAt,
			&rv.Username, &rv.FirstName, &rv.LastName); err != nil {
			return nil, nil, err
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	stats := &Stats{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	var avg *string
	var d5, d4, d3, d2, d1 int
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       ROUND(AVG(rating)::numeric, 1)::text,
		       COUNT(*) FILTER (WHERE rating = 5),
		       COUNT(*) FILTER (WHERE rating = 4),
		       COUNT(*) FILTER (WHERE rating = 3),
		       COUNT(*) FILTER (WHERE rating = 2),
		       COUNT(*) FILTER (WHERE rating = 1)
		FROM book_reviews
		WHERE book_isbn = $1`, isbn).Scan(
		&stats.TotalReviews, &avg,
		&d5, &d4, &d3, &d2, &d1)
	if err != nil {
		return nil, nil, err
	}
	stats.Distribution[5], stats.Distribution[4], stats.Distribution[3] = d5, d4, d3
	stats.Distribution[2], stats.Distribution[1] = d2, d1
	if avg != nil {
		stats.AverageRating = *avg
	}
	return reviews, stats, nil
}

// Upsert creates the caller's review or replaces the existing one. The
// caller must have purchased the book; one review per user per book.
func (r *PGRepo) Upsert(ctx context.Context, isbn string, userID int64, rating int, title, text string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)`, isbn).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ErrBookNotFound
	}

	var purchased bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM order_items oi
			JOIN customer_orders co ON oi.order_id = co.order_id
			WHERE co.user_id = $1 AND oi.book_isbn = $2
		)`, userID, isbn).Scan(&purchased)
	if err != nil {
		return false, err
	}
	if !purchased {
		return false, ErrNotPurchased
	}

	var created bool
	err = r.db.QueryRow(ctx, `
		INSERT INTO book_reviews (book_isbn, user_id, rating, review_title, review_text)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (book_isbn, user_id)
		DO UPDATE SET rating = EXCLUDED.rating,
		              review_title = EXCLUDED.review_title,
		              review_text = EXCLUDED.review_text,
		              updated_at = NOW()
		RETURNING (xmax = 0)`, isbn, userID, rating, title, text).Scan(&created)
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *PGRepo) Delete(ctx context.Context, isbn string, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx,
		`DELETE FROM book_reviews WHERE book_isbn = $1 AND user_id = $2`, isbn, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) GetOwn(ctx context.Context, isbn string, userID int64) (*Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rv Review
	err := r.db.QueryRow(ctx, `
		SELECT review_id, rating, review_title, review_text, created_at, updated_at
		FROM book_reviews
		WHERE book_isbn = $1 AND user_id = $2`, isbn, userID).Scan(
		&rv.ID, &rv.Rating, &rv.Title, &rv.Text, &rv.CreatedAt, &rv.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

const recoSelect = `
	SELECT b.isbn, b.title, b.category, b.price::text, b.quantity_in_stock,
	       p.publisher_name,
	       COALESCE(string_agg(DISTINCT a.author_name, ', '), ''),
	       ROUND(COALESCE(AVG(r.rating), 0)::numeric, 1)::text,
	       COUNT(DISTINCT r.review_id)
	FROM books b
	JOIN publishers p ON b.publisher_id = p.publisher_id
	LEFT JOIN book_authors ba ON b.isbn = ba.book_isbn
	LEFT JOIN authors a ON ba.author_id = a.author_id
	LEFT JOIN book_reviews r ON b.isbn = r.book_isbn
`

// Recommendations is "customers who bought X also bought Y": in-stock books
// bought by users who share a purchase with this user, minus the user's own
// purchases, ranked by review aggregate. Popular books top up the list when
// the collaborative pass comes back short.
func (r *PGRepo) Recommendations(ctx context.Context, userID int64, limit int) ([]Recommendation, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, recoSelect+`
		WHERE b.isbn IN (
			SELECT DISTINCT oi2.book_isbn
			FROM order_items oi1
			JOIN customer_orders co1 ON oi1.order_id = co1.order_id
			JOIN order_items oi_shared ON oi_shared.book_isbn = oi1.book_isbn
			JOIN customer_orders co2 ON oi_shared.order_id = co2.order_id AND co2.user_id <> co1.user_id
			JOIN customer_orders co2b ON co2b.user_id = co2.user_id
			JOIN order_items oi2 ON co2b.order_id = oi2.order_id
			WHERE co1.user_id = $1
			AND oi2.book_isbn NOT IN (
				SELECT oi3.book_isbn
				FROM order_items oi3
				JOIN customer_orders co3 ON oi3.order_id = co3.order_id
				WHERE co3.user_id = $1
			)
		)
		AND b.quantity_in_stock > 0
		GROUP BY b.isbn, p.publisher_name
		ORDER BY COALESCE(AVG(r.rating), 0) DESC, COUNT(DISTINCT r.review_id) DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	recos, err := scanRecommendations(rows)
	if err != nil {
		return nil, err
	}

	if len(recos) >= limit {
		return recos, nil
	}

	exclude := make([]string, 0, len(recos))
	for _, rec := range recos {
		exclude = append(exclude, rec.ISBN)
	}
	rows, err = r.db.Query(ctx, recoSelect+`
		WHERE b.quantity_in_stock > 0
		AND b.isbn <> ALL($2)
		AND b.isbn NOT IN (
			SELECT oi.book_isbn
			FROM order_items oi
			JOIN customer_orders co ON oi.order_id = co.order_id
			WHERE co.user_id = $1
		)
		GROUP BY b.isbn, p.publisher_name
		ORDER BY COALESCE(AVG(r.rating), 0) DESC, COUNT(DISTINCT r.review_id) DESC
		LIMIT $3`, userID, exclude, limit-len(recos))
	if err != nil {
		return nil, err
	}
	popular, err := scanRecommendations(rows)
	if err != nil {
		return nil, err
	}
	return append(recos, popular...), nil
}

func scanRecommendations(rows pgx.Rows) ([]Recommendation, error) {
	defer rows.Close()
	out := []Recommendation{}
	for rows.Next() {
		var rec Recommendation
		if err := rows.Scan(&rec.ISBN, &rec.Title, &rec.Category, &rec.Price,
			&rec.QuantityInStock, &rec.PublisherName, &rec.Authors,
			&rec.AvgRating, &rec.ReviewCount); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
