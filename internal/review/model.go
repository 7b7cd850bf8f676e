package review

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("review not found")
	ErrBookNotFound = errors.New("book not found")
	// ErrNotPurchased gates review creation: only buyers review.
	ErrNotPurchased = errors.New("you can only review books you have purchased")
)

type Review struct {
	ID        int64     `json:"review_id"`
	BookISBN  string    `json:"book_isbn,omitempty"`
	Rating    int       `json:"rating"`
	Title     string    `json:"review_title"`
	Text      string    `json:"review_text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReviewWithUser struct {
	Review
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Stats aggregates a book's reviews. AverageRating is rendered with one
// decimal place and is empty when the book has no reviews yet.
type Stats struct {
	TotalReviews  int         `json:"totalReviews"`
	AverageRating string      `json:"averageRating,omitempty"`
	Distribution  map[int]int `json:"distribution"`
}

// Recommendation is a catalog entry scored by its review aggregate.
type Recommendation struct {
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Category        string `json:"category"`
	Price           string `json:"price"`
	QuantityInStock int    `json:"quantity_in_stock"`
	PublisherName   string `json:"publisher_name"`
	Authors         string `json:"authors"`
	AvgRating       string `json:"avg_rating"`
	ReviewCount     int    `json:"review_count"`
}
