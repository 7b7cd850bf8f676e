package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/oaklandbooks/bookstore-api/internal/wishlist"
)

type addWishlistRequest struct {
	ISBN string `json:"isbn" binding:"required"`
}

func getWishlistHandler(repo wishlist.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := repo.List(c.Request.Context(), Principal(c).UserID)
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, list)
	}
}

func addToWishlistHandler(repo wishlist.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addWishlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}
		if err := repo.Add(c.Request.Context(), Principal(c).UserID, req.ISBN); err != nil {
			Error(c, err)
			return
		}
		Created(c, "Book added to wishlist", nil)
	}
}

func removeFromWishlistHandler(repo wishlist.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := repo.Remove(c.Request.Context(), Principal(c).UserID, c.Param("isbn")); err != nil {
			Error(c, err)
			return
		}
		Message(c, "Book removed from wishlist")
	}
}

func checkWishlistHandler(repo wishlist.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, err := repo.Contains(c.Request.Context(), Principal(c).UserID, c.Param("isbn"))
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, gin.H{"inWishlist": in})
	}
}
