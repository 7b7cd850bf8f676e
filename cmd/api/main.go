// @title        Bookstore API
// @version      1.0
// @description  Online bookstore backend: catalog, orders, reviews, wishlists and reports.
// @BasePath     /api
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/oaklandbooks/bookstore-api/docs"
	"github.com/oaklandbooks/bookstore-api/internal/auth"
	"github.com/oaklandbooks/bookstore-api/internal/catalog"
	"github.com/oaklandbooks/bookstore-api/internal/config"
	"github.com/oaklandbooks/bookstore-api/internal/events"
	"github.com/oaklandbooks/bookstore-api/internal/httpx"
	kafkax "github.com/oaklandbooks/bookstore-api/internal/kafka"
	"github.com/oaklandbooks/bookstore-api/internal/order"
	"github.com/oaklandbooks/bookstore-api/internal/passwordreset"
	"github.com/oaklandbooks/bookstore-api/internal/postgres"
	"github.com/oaklandbooks/bookstore-api/internal/redisx"
	"github.com/oaklandbooks/bookstore-api/internal/report"
	"github.com/oaklandbooks/bookstore-api/internal/review"
	"github.com/oaklandbooks/bookstore-api/internal/user"
	"github.com/oaklandbooks/bookstore-api/internal/wishlist"
	"github.com/oaklandbooks/bookstore-api/migrations"
)

// sink adapts the producer to the narrow Publish interface the services
// depend on.
type sink struct{ p *kafkax.Producer }

func (s sink) Publish(key, value []byte) { s.p.Publish(key, value) }

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	cache := redisx.New(cfg.RedisAddr)
	defer func() { _ = cache.Close() }()

	producer := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicNotifications, 256)
	producer.Start()
	bus := sink{p: producer}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)

	users := user.NewPGRepo(db)
	books := catalog.NewPGRepo(db)
	admin := catalog.NewPGAdminRepo(db)
	orders := order.NewPGRepo(db)
	pubOrders := order.NewPGPublisherRepo(db)
	wish := wishlist.NewPGRepo(db)
	reviews := review.NewPGRepo(db)
	reco := review.NewRecommender(reviews, cache)
	reports := report.NewService(report.NewPGRepo(db), cache)
	reset := passwordreset.NewService(users, passwordreset.NewPGRepo(db), bus, cfg.BcryptCost, cfg.FrontendURL)

	router := httpx.NewRouter(httpx.Deps{
		Issuer:      issuer,
		Users:       users,
		UserSvc:     user.NewService(users, issuer, bus, cfg.BcryptCost),
		Books:       books,
		Admin:       admin,
		Orders:      orders,
		OrderSvc:    order.NewService(orders, bus, recoInvalidator{reco}),
		PubOrders:   pubOrders,
		Wishlist:    wish,
		Reviews:     reviews,
		Reco:        reco,
		Reports:     reports,
		Reset:       reset,
		Development: cfg.Development(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("api listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	// Requests drained above may have enqueued events; flush them before exit.
	producer.Close()
}

// recoInvalidator narrows the recommender for the order service and keeps
// cache errors off the order path.
type recoInvalidator struct{ r *review.Recommender }

func (ri recoInvalidator) InvalidateRecommendations(ctx context.Context, userID int64) {
	if err := ri.r.InvalidateRecommendations(ctx, userID); err != nil {
		log.Printf("[reco] invalidate user %d: %v", userID, err)
	}
}
