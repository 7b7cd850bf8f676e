package httpx

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oaklandbooks/bookstore-api/internal/report"
)

func dashboardHandler(svc *report.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.DashboardStats(c.Request.Context())
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, stats)
	}
}

func previousMonthSalesHandler(svc *report.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sales, err := svc.PreviousMonthSales(c.Request.Context())
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, sales)
	}
}

func salesByDateHandler(svc *report.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Query("date")
		if _, err := time.Parse("2006-01-02", date); err != nil {
			Fail(c, http.StatusBadRequest, "Date parameter is required (format: YYYY-MM-DD)")
			return
		}
		sales, err := svc.SalesByDate(c.Request.Context(), date)
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, sales)
	}
}

func dailySalesHandler(svc *report.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		start, end := c.Query("start_date"), c.Query("end_date")
		for _, d := range []string{start, end} {
			if d == "" {
				continue
			}
			if _, err := time.Parse("2006-01-02", d); err != nil {
				Fail(c, http.StatusBadRequest, "Dates must be in YYYY-MM-DD format")
				return
			}
		}
		sales, err := svc.DailySales(c.Request.Context(), start, end)
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, sales)
	}
}

func topCustomersHandler(svc *report.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		customers, err := svc.TopCustomers(c.Request.Context())
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, customers)
	}
}

func topBooksHandler(svc *report.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		books, err := svc.TopBooks(c.Request.Context())
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, books)
	}
}

func bookReordersHandler(svc *report.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, err := svc.BookReorderCount(c.Request.Context(), c.Param("isbn"))
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, rc)
	}
}

func inventoryStatusHandler(svc *report.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.InventoryStatus(c.Request.Context())
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, items)
	}
}
