package httpx

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oaklandbooks/bookstore-api/internal/invoice"
	"github.com/oaklandbooks/bookstore-api/internal/order"
	"github.com/oaklandbooks/bookstore-api/internal/user"
)

func placeOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}

		o, items, err := svc.PlaceOrder(c.Request.Context(), Principal(c).UserID, req)
		if err != nil {
			Error(c, err)
			return
		}
		Created(c, "Order placed successfully", gin.H{"order": o, "items": items})
	}
}

func myOrdersHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.ListByUser(c.Request.Context(), Principal(c).UserID)
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, list)
	}
}

func orderDetailsHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
		if err != nil {
			Fail(c, http.StatusBadRequest, "Invalid order ID")
			return
		}

		o, items, err := orders.GetByID(c.Request.Context(), orderID, Principal(c).UserID)
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, gin.H{"order": o, "items": items})
	}
}

// downloadInvoiceHandler renders the invoice on demand from the stored
// price snapshots, so it stays correct even after catalog prices move.
func downloadInvoiceHandler(orders order.Repository, users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
		if err != nil {
			Fail(c, http.StatusBadRequest, "Invalid order ID")
			return
		}

		p := Principal(c)
		o, items, err := orders.GetByID(c.Request.Context(), orderID, p.UserID)
		if err != nil {
			Error(c, err)
			return
		}
		u, err := users.GetByID(c.Request.Context(), p.UserID)
		if err != nil {
			Error(c, err)
			return
		}

		pdf, err := invoice.Generate(o, items, u)
		if err != nil {
			Error(c, err)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%d.pdf", o.ID))
		c.Data(http.StatusOK, "application/pdf", pdf)
	}
}

func listAllOrdersHandler(orders order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if page < 1 {
			page = 1
		}

		list, total, err := orders.ListAll(c.Request.Context(), limit, (page-1)*limit)
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, gin.H{
			"orders":     list,
			"pagination": Pagination{Page: page, Limit: limit, Total: total},
		})
	}
}

func listPublisherOrdersHandler(repo order.PublisherRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := repo.List(c.Request.Context(), c.Query("status"))
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, list)
	}
}

func placePublisherOrderHandler(repo order.PublisherRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.PlacePublisherOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}

		id, err := repo.Create(c.Request.Context(), req.BookISBN, req.OrderQuantity, Principal(c).UserID)
		if err != nil {
			Error(c, err)
			return
		}
		Created(c, "Publisher order placed successfully", gin.H{"order_id": id})
	}
}

func confirmPublisherOrderHandler(repo order.PublisherRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
		if err != nil {
			Fail(c, http.StatusBadRequest, "Invalid order ID")
			return
		}

		if err := repo.Confirm(c.Request.Context(), orderID, Principal(c).UserID); err != nil {
			Error(c, err)
			return
		}
		Message(c, "Publisher order confirmed successfully")
	}
}
