package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/oaklandbooks/bookstore-api/internal/auth"
	"github.com/oaklandbooks/bookstore-api/internal/catalog"
	"github.com/oaklandbooks/bookstore-api/internal/order"
	"github.com/oaklandbooks/bookstore-api/internal/passwordreset"
	"github.com/oaklandbooks/bookstore-api/internal/payment"
	"github.com/oaklandbooks/bookstore-api/internal/report"
	"github.com/oaklandbooks/bookstore-api/internal/review"
	"github.com/oaklandbooks/bookstore-api/internal/user"
	"github.com/oaklandbooks/bookstore-api/internal/wishlist"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}

// BindError renders a 400 for a failed ShouldBindJSON/ShouldBindQuery,
// flattening validator output into one readable line.
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldError(fe))
		}
		Fail(c, http.StatusBadRequest, strings.Join(msgs, "; "))
		return
	}
	Fail(c, http.StatusBadRequest, "invalid request body")
}

func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Error maps a domain error to its status. Anything unmapped is a 500 with
// the detail kept out of the response body.
func Error(c *gin.Context, err error) {
	var bookNF *order.BookNotFoundError
	var stock *order.InsufficientStockError

	switch {
	case errors.As(err, &bookNF):
		Fail(c, http.StatusNotFound, bookNF.Error())
	case errors.As(err, &stock):
		Fail(c, http.StatusConflict, stock.Error())
	case errors.Is(err, order.ErrEmptyOrder):
		Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotPending):
		Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, order.ErrPublisherOrderNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, catalog.ErrPublisherNotFound),
		errors.Is(err, catalog.ErrAuthorNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, review.ErrNotFound),
		errors.Is(err, review.ErrBookNotFound),
		errors.Is(err, wishlist.ErrBookNotFound),
		errors.Is(err, wishlist.ErrNotInList),
		errors.Is(err, report.ErrBookNotFound):
		Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrAlreadyExist),
		errors.Is(err, user.ErrAlreadyExist):
		Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrHasBooks),
		errors.Is(err, catalog.ErrInvalidSearch),
		errors.Is(err, wishlist.ErrAlreadyAdded):
		Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, review.ErrNotPurchased):
		Fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, payment.ErrInvalidNumber),
		errors.Is(err, payment.ErrInvalidExpiry),
		errors.Is(err, payment.ErrCardExpired):
		Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, passwordreset.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidToken):
		Fail(c, http.StatusBadRequest, err.Error())
	default:
		rid, _ := c.Get("rid")
		logError(rid, c.FullPath(), err)
		Fail(c, http.StatusInternalServerError, "Internal server error")
	}
}
