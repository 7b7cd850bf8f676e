package catalog

import "time"

// Valid book categories, enforced at validation time and by a DB CHECK.
var Categories = []string{"Science", "Art", "Religion", "History", "Geography"}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type Book struct {
	ISBN              string    `json:"isbn"`
	Title             string    `json:"title"`
	PublisherID       int64     `json:"publisher_id"`
	PublisherName     string    `json:"publisher_name,omitempty"`
	Authors           string    `json:"authors,omitempty"` // comma-joined author names
	PublicationYear   int       `json:"publication_year,omitempty"`
	Price             string    `json:"price"` // NUMERIC -> string
	Category          string    `json:"category"`
	QuantityInStock   int       `json:"quantity_in_stock"`
	ThresholdQuantity int       `json:"threshold_quantity"`
	CreatedAt         time.Time `json:"created_at"`
}

type Publisher struct {
	ID          int64  `json:"publisher_id"`
	Name        string `json:"publisher_name"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	BookCount   int    `json:"book_count,omitempty"`
}

type Author struct {
	ID        int64  `json:"author_id"`
	Name      string `json:"author_name"`
	BookCount int    `json:"book_count,omitempty"`
	Books     []Book `json:"books,omitempty"`
}

type CategoryCount struct {
	Category  string `json:"category"`
	BookCount int    `json:"book_count"`
}

// SearchType selects the single indexed field a catalog search matches on.
type SearchType string

const (
	SearchByISBN      SearchType = "ISBN"
	SearchByTitle     SearchType = "TITLE"
	SearchByAuthor    SearchType = "AUTHOR"
	SearchByCategory  SearchType = "CATEGORY"
	SearchByPublisher SearchType = "PUBLISHER"
)
