package httpx

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oaklandbooks/bookstore-api/internal/review"
)

type reviewRequest struct {
	Rating      int    `json:"rating" binding:"required,min=1,max=5"`
	ReviewTitle string `json:"review_title" binding:"max=200"`
	ReviewText  string `json:"review_text" binding:"max=5000"`
}

func bookReviewsHandler(repo review.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > 100 {
			limit = 10
		}

		reviews, stats, err := repo.ListForBook(c.Request.Context(), c.Param("isbn"), limit, (page-1)*limit)
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, gin.H{
			"reviews":    reviews,
			"stats":      stats,
			"pagination": Pagination{Page: page, Limit: limit, Total: stats.TotalReviews},
		})
	}
}

func myReviewHandler(repo review.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		rv, err := repo.GetOwn(c.Request.Context(), c.Param("isbn"), Principal(c).UserID)
		if err != nil {
			// No own review is an empty result, not a failure.
			if errors.Is(err, review.ErrNotFound) {
				OK(c, nil)
				return
			}
			Error(c, err)
			return
		}
		OK(c, rv)
	}
}

func upsertReviewHandler(repo review.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}

		created, err := repo.Upsert(c.Request.Context(), c.Param("isbn"), Principal(c).UserID,
			req.Rating, req.ReviewTitle, req.ReviewText)
		if err != nil {
			Error(c, err)
			return
		}
		if created {
			Created(c, "Review created successfully", nil)
			return
		}
		Message(c, "Review updated successfully")
	}
}

func deleteReviewHandler(repo review.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := repo.Delete(c.Request.Context(), c.Param("isbn"), Principal(c).UserID); err != nil {
			Error(c, err)
			return
		}
		Message(c, "Review deleted successfully")
	}
}

func recommendationsHandler(reco *review.Recommender) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
		if limit < 1 || limit > 50 {
			limit = 8
		}

		list, err := reco.Recommendations(c.Request.Context(), Principal(c).UserID, limit)
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, list)
	}
}
