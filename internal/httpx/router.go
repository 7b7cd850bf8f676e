package httpx

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/oaklandbooks/bookstore-api/internal/auth"
	"github.com/oaklandbooks/bookstore-api/internal/catalog"
	"github.com/oaklandbooks/bookstore-api/internal/order"
	"github.com/oaklandbooks/bookstore-api/internal/passwordreset"
	"github.com/oaklandbooks/bookstore-api/internal/report"
	"github.com/oaklandbooks/bookstore-api/internal/review"
	"github.com/oaklandbooks/bookstore-api/internal/user"
	"github.com/oaklandbooks/bookstore-api/internal/wishlist"
)

// Deps is everything the routes need, wired once in cmd/api.
type Deps struct {
	Issuer *auth.TokenIssuer

	Users     user.Repository
	UserSvc   *user.Service
	Books     catalog.Repository
	Admin     catalog.AdminRepository
	Orders    order.Repository
	OrderSvc  *order.Service
	PubOrders order.PublisherRepository
	Wishlist  wishlist.Repository
	Reviews   review.Repository
	Reco      *review.Recommender
	Reports   *report.Service
	Reset     *passwordreset.Service

	// Development exposes debug aids such as the plaintext reset token.
	Development bool
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(), gin.Recovery())

	r.GET("/health", healthHandler())
	r.GET("/api-docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	authn := Auth(d.Issuer, d.Users)

	ag := api.Group("/auth")
	{
		ag.POST("/register", registerHandler(d.UserSvc))
		ag.POST("/login", loginHandler(d.UserSvc))
		ag.POST("/logout", authn, logoutHandler())
		ag.GET("/profile", authn, getProfileHandler(d.Users))
		ag.PUT("/profile", authn, updateProfileHandler(d.Users))
		ag.PUT("/change-password", authn, changePasswordHandler(d.UserSvc))
	}

	bg := api.Group("/books")
	{
		bg.GET("", listBooksHandler(d.Books))
		bg.GET("/categories", categoriesHandler(d.Books))
		bg.GET("/category/:category", booksByCategoryHandler(d.Books))
		bg.GET("/search", searchBooksHandler(d.Books))
		bg.GET("/full-search", fullSearchHandler(d.Books))
		bg.GET("/:isbn", getBookHandler(d.Books))
		bg.POST("", authn, RequireAdmin(), addBookHandler(d.Books))
		bg.PUT("/:isbn", authn, RequireAdmin(), updateBookHandler(d.Books))
	}

	og := api.Group("/orders", authn)
	{
		og.POST("/place-order", RequireCustomer(), placeOrderHandler(d.OrderSvc))
		og.GET("/my-orders", RequireCustomer(), myOrdersHandler(d.Orders))
		og.GET("/my-orders/:orderId", RequireCustomer(), orderDetailsHandler(d.Orders))
		og.GET("/my-orders/:orderId/invoice", RequireCustomer(), downloadInvoiceHandler(d.Orders, d.Users))
		og.GET("", RequireAdmin(), listAllOrdersHandler(d.Orders))
		og.GET("/publisher-orders", RequireAdmin(), listPublisherOrdersHandler(d.PubOrders))
		og.POST("/publisher-orders", RequireAdmin(), placePublisherOrderHandler(d.PubOrders))
		og.PUT("/publisher-orders/:orderId/confirm", RequireAdmin(), confirmPublisherOrderHandler(d.PubOrders))
	}

	wg := api.Group("/wishlist", authn)
	{
		wg.GET("", getWishlistHandler(d.Wishlist))
		wg.POST("", addToWishlistHandler(d.Wishlist))
		wg.GET("/:isbn", checkWishlistHandler(d.Wishlist))
		wg.DELETE("/:isbn", removeFromWishlistHandler(d.Wishlist))
	}

	rg := api.Group("/reviews")
	{
		rg.GET("/book/:isbn", bookReviewsHandler(d.Reviews))
		rg.GET("/book/:isbn/my-review", authn, myReviewHandler(d.Reviews))
		rg.POST("/book/:isbn", authn, upsertReviewHandler(d.Reviews))
		rg.DELETE("/book/:isbn", authn, deleteReviewHandler(d.Reviews))
		rg.GET("/recommendations", authn, recommendationsHandler(d.Reco))
	}

	pg := api.Group("/reports", authn, RequireAdmin())
	{
		pg.GET("/dashboard", dashboardHandler(d.Reports))
		pg.GET("/sales/previous-month", previousMonthSalesHandler(d.Reports))
		pg.GET("/sales/by-date", salesByDateHandler(d.Reports))
		pg.GET("/sales/daily", dailySalesHandler(d.Reports))
		pg.GET("/customers/top", topCustomersHandler(d.Reports))
		pg.GET("/books/top", topBooksHandler(d.Reports))
		pg.GET("/books/:isbn/reorders", bookReordersHandler(d.Reports))
		pg.GET("/inventory/status", inventoryStatusHandler(d.Reports))
	}

	adm := api.Group("/admin", authn, RequireAdmin())
	{
		adm.GET("/publishers", listPublishersHandler(d.Admin))
		adm.GET("/publishers/:id", getPublisherHandler(d.Admin))
		adm.POST("/publishers", addPublisherHandler(d.Admin))
		adm.PUT("/publishers/:id", updatePublisherHandler(d.Admin))
		adm.DELETE("/publishers/:id", deletePublisherHandler(d.Admin))
		adm.GET("/authors", listAuthorsHandler(d.Admin))
		adm.GET("/authors/:id", getAuthorHandler(d.Admin))
		adm.POST("/authors", addAuthorHandler(d.Admin))
		adm.PUT("/authors/:id", updateAuthorHandler(d.Admin))
		adm.DELETE("/authors/:id", deleteAuthorHandler(d.Admin))
	}

	prg := api.Group("/password-reset")
	{
		prg.POST("/request", requestResetHandler(d.Reset, d.Development))
		prg.GET("/verify/:token", verifyResetHandler(d.Reset))
		prg.POST("/reset", resetPasswordHandler(d.Reset))
	}

	return r
}

func healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	}
}
