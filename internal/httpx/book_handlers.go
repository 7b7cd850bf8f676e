package httpx

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oaklandbooks/bookstore-api/internal/catalog"
)

type addBookRequest struct {
	ISBN              string  `json:"isbn" binding:"required,min=10,max=13"`
	Title             string  `json:"title" binding:"required"`
	PublisherID       int64   `json:"publisher_id" binding:"required"`
	PublicationYear   int     `json:"publication_year"`
	Price             string  `json:"price" binding:"required"`
	Category          string  `json:"category" binding:"required"`
	QuantityInStock   int     `json:"quantity_in_stock" binding:"min=0"`
	ThresholdQuantity int     `json:"threshold_quantity" binding:"min=0"`
	AuthorIDs         []int64 `json:"author_ids"`
}

type updateBookRequest struct {
	Price           *string `json:"price"`
	QuantityInStock *int    `json:"quantity_in_stock" binding:"omitempty,min=0"`
}

func listBooksHandler(books catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if page < 1 {
			page = 1
		}

		list, total, err := books.List(c.Request.Context(), limit, (page-1)*limit)
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, gin.H{
			"books":      list,
			"pagination": Pagination{Page: page, Limit: limit, Total: total},
		})
	}
}

func getBookHandler(books catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := books.GetByISBN(c.Request.Context(), c.Param("isbn"))
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, b)
	}
}

func categoriesHandler(books catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := books.Categories(c.Request.Context())
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, cats)
	}
}

func booksByCategoryHandler(books catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.Param("category")
		if !catalog.ValidCategory(category) {
			Fail(c, http.StatusBadRequest, "Invalid category")
			return
		}
		list, err := books.ListByCategory(c.Request.Context(), category)
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, list)
	}
}

func searchBooksHandler(books catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		typ := catalog.SearchType(c.Query("type"))
		value := c.Query("value")
		if value == "" {
			Fail(c, http.StatusBadRequest, "Search value is required")
			return
		}
		list, err := books.Search(c.Request.Context(), typ, value)
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, list)
	}
}

func fullSearchHandler(books catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Query("q")
		if q == "" {
			Fail(c, http.StatusBadRequest, "Search query is required")
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if page < 1 {
			page = 1
		}

		f := catalog.FullSearchFilter{
			Query:    q,
			Category: c.Query("category"),
			InStock:  c.Query("inStock") == "true",
			Limit:    limit,
			Offset:   (page - 1) * limit,
		}
		if v := c.Query("minPrice"); v != "" {
			f.MinPrice = &v
		}
		if v := c.Query("maxPrice"); v != "" {
			f.MaxPrice = &v
		}

		list, total, err := books.FullSearch(c.Request.Context(), f)
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, gin.H{
			"query":      q,
			"books":      list,
			"pagination": Pagination{Page: page, Limit: limit, Total: total},
		})
	}
}

func addBookHandler(books catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addBookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}
		if !catalog.ValidCategory(req.Category) {
			Fail(c, http.StatusBadRequest, "Invalid category")
			return
		}

		b := &catalog.Book{
			ISBN:              req.ISBN,
			Title:             req.Title,
			PublisherID:       req.PublisherID,
			PublicationYear:   req.PublicationYear,
			Price:             req.Price,
			Category:          req.Category,
			QuantityInStock:   req.QuantityInStock,
			ThresholdQuantity: req.ThresholdQuantity,
		}
		if err := books.Create(c.Request.Context(), b, req.AuthorIDs); err != nil {
			Error(c, err)
			return
		}
		Created(c, "Book added successfully", gin.H{"isbn": b.ISBN})
	}
}

func updateBookHandler(books catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateBookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}
		if req.Price == nil && req.QuantityInStock == nil {
			Fail(c, http.StatusBadRequest, "Nothing to update")
			return
		}

		err := books.Update(c.Request.Context(), c.Param("isbn"), catalog.BookUpdate{
			Price:           req.Price,
			QuantityInStock: req.QuantityInStock,
		})
		if err != nil {
			Error(c, err)
			return
		}
		Message(c, "Book updated successfully")
	}
}
