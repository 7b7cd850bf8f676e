package httpx

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaklandbooks/bookstore-api/internal/auth"
	"github.com/oaklandbooks/bookstore-api/internal/review"
	"github.com/oaklandbooks/bookstore-api/internal/user"
)

type stubReviewRepo struct {
	purchased map[string]bool
	reviews   map[string]*review.Review
}

func (s *stubReviewRepo) ListForBook(ctx context.Context, isbn string, limit, offset int) ([]review.ReviewWithUser, *review.Stats, error) {
	stats := &review.Stats{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	out := []review.ReviewWithUser{}
	if rv, ok := s.reviews[isbn]; ok {
		out = append(out, review.ReviewWithUser{Review: *rv, Username: "reader"})
		stats.TotalReviews = 1
		stats.Distribution[rv.Rating] = 1
	}
	return out, stats, nil
}

func (s *stubReviewRepo) Upsert(ctx context.Context, isbn string, userID int64, rating int, title, text string) (bool, error) {
	if !s.purchased[isbn] {
		return false, review.ErrNotPurchased
	}
	_, existed := s.reviews[isbn]
	s.reviews[isbn] = &review.Review{ID: 1, BookISBN: isbn, Rating: rating, Title: title, Text: text}
	return !existed, nil
}

func (s *stubReviewRepo) Delete(ctx context.Context, isbn string, userID int64) error {
	if _, ok := s.reviews[isbn]; !ok {
		return review.ErrNotFound
	}
	delete(s.reviews, isbn)
	return nil
}

func (s *stubReviewRepo) GetOwn(ctx context.Context, isbn string, userID int64) (*review.Review, error) {
	if rv, ok := s.reviews[isbn]; ok {
		return rv, nil
	}
	return nil, review.ErrNotFound
}

func (s *stubReviewRepo) Recommendations(ctx context.Context, userID int64, limit int) ([]review.Recommendation, error) {
	return []review.Recommendation{}, nil
}

func reviewRouter(repo *stubReviewRepo) (*gin.Engine, string) {
	users := newStubUserRepo()
	users.users[1] = &user.User{ID: 1, Username: "reader", UserType: auth.UserTypeCustomer}
	token, _ := testIssuer().Sign(1, "reader", auth.UserTypeCustomer)

	r := gin.New()
	authn := Auth(testIssuer(), users)
	r.GET("/api/reviews/book/:isbn", bookReviewsHandler(repo))
	r.GET("/api/reviews/book/:isbn/my-review", authn, myReviewHandler(repo))
	r.POST("/api/reviews/book/:isbn", authn, upsertReviewHandler(repo))
	r.DELETE("/api/reviews/book/:isbn", authn, deleteReviewHandler(repo))
	return r, token
}

func TestCreateReview_RequiresPurchase(t *testing.T) {
	repo := &stubReviewRepo{purchased: map[string]bool{}, reviews: map[string]*review.Review{}}
	r, token := reviewRouter(repo)

	w := doJSON(t, r, http.MethodPost, "/api/reviews/book/1111111111", token, gin.H{
		"rating": 5, "review_title": "Great", "review_text": "Loved it",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "you can only review books you have purchased", envelope(t, w)["message"])
}

func TestCreateReview_ThenUpdate(t *testing.T) {
	repo := &stubReviewRepo{
		purchased: map[string]bool{"1111111111": true},
		reviews:   map[string]*review.Review{},
	}
	r, token := reviewRouter(repo)

	w := doJSON(t, r, http.MethodPost, "/api/reviews/book/1111111111", token, gin.H{
		"rating": 5, "review_title": "Great",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Second post from the same user replaces, not duplicates.
	w = doJSON(t, r, http.MethodPost, "/api/reviews/book/1111111111", token, gin.H{
		"rating": 3, "review_title": "On reflection",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Review updated successfully", envelope(t, w)["message"])
	assert.Equal(t, 3, repo.reviews["1111111111"].Rating)
}

func TestCreateReview_RatingBounds(t *testing.T) {
	repo := &stubReviewRepo{purchased: map[string]bool{"1111111111": true}, reviews: map[string]*review.Review{}}
	r, token := reviewRouter(repo)

	w := doJSON(t, r, http.MethodPost, "/api/reviews/book/1111111111", token, gin.H{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/reviews/book/1111111111", token, gin.H{"rating": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMyReview_NoneIsEmptySuccess(t *testing.T) {
	repo := &stubReviewRepo{purchased: map[string]bool{}, reviews: map[string]*review.Review{}}
	r, token := reviewRouter(repo)

	w := doJSON(t, r, http.MethodGet, "/api/reviews/book/1111111111/my-review", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := envelope(t, w)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["data"])
}

func TestDeleteReview_NotFound(t *testing.T) {
	repo := &stubReviewRepo{purchased: map[string]bool{}, reviews: map[string]*review.Review{}}
	r, token := reviewRouter(repo)

	w := doJSON(t, r, http.MethodDelete, "/api/reviews/book/1111111111", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
