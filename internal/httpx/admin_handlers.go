package httpx

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oaklandbooks/bookstore-api/internal/catalog"
)

type publisherRequest struct {
	PublisherName string `json:"publisher_name" binding:"required,max=100"`
	Address       string `json:"address"`
	PhoneNumber   string `json:"phone_number"`
}

type authorRequest struct {
	AuthorName string `json:"author_name" binding:"required,max=100"`
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		Fail(c, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}

func listPublishersHandler(repo catalog.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := repo.ListPublishers(c.Request.Context())
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, list)
	}
}

func getPublisherHandler(repo catalog.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		p, err := repo.GetPublisher(c.Request.Context(), id)
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, p)
	}
}

func addPublisherHandler(repo catalog.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req publisherRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}

		p := &catalog.Publisher{Name: req.PublisherName, Address: req.Address, PhoneNumber: req.PhoneNumber}
		if err := repo.CreatePublisher(c.Request.Context(), p); err != nil {
			Error(c, err)
			return
		}
		Created(c, "Publisher added successfully", gin.H{"publisher_id": p.ID})
	}
}

func updatePublisherHandler(repo catalog.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req publisherRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}

		p := &catalog.Publisher{ID: id, Name: req.PublisherName, Address: req.Address, PhoneNumber: req.PhoneNumber}
		if err := repo.UpdatePublisher(c.Request.Context(), p); err != nil {
			Error(c, err)
			return
		}
		Message(c, "Publisher updated successfully")
	}
}

func deletePublisherHandler(repo catalog.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := repo.DeletePublisher(c.Request.Context(), id); err != nil {
			Error(c, err)
			return
		}
		Message(c, "Publisher deleted successfully")
	}
}

func listAuthorsHandler(repo catalog.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := repo.ListAuthors(c.Request.Context())
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, list)
	}
}

func getAuthorHandler(repo catalog.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		a, err := repo.GetAuthor(c.Request.Context(), id)
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, a)
	}
}

func addAuthorHandler(repo catalog.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req authorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}

		a := &catalog.Author{Name: req.AuthorName}
		if err := repo.CreateAuthor(c.Request.Context(), a); err != nil {
			Error(c, err)
			return
		}
		Created(c, "Author added successfully", gin.H{"author_id": a.ID})
	}
}

func updateAuthorHandler(repo catalog.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req authorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}

		if err := repo.UpdateAuthor(c.Request.Context(), &catalog.Author{ID: id, Name: req.AuthorName}); err != nil {
			Error(c, err)
			return
		}
		Message(c, "Author updated successfully")
	}
}

func deleteAuthorHandler(repo catalog.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := repo.DeleteAuthor(c.Request.Context(), id); err != nil {
			Error(c, err)
			return
		}
		Message(c, "Author deleted successfully")
	}
}
