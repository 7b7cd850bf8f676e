package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/oaklandbooks/bookstore-api/internal/config"
	"github.com/oaklandbooks/bookstore-api/internal/events"
	kafkax "github.com/oaklandbooks/bookstore-api/internal/kafka"
	"github.com/oaklandbooks/bookstore-api/internal/mailer"
	"github.com/oaklandbooks/bookstore-api/internal/order"
	"github.com/oaklandbooks/bookstore-api/internal/postgres"
	"github.com/oaklandbooks/bookstore-api/internal/user"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	sender := mailer.NewSender(mailer.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	})
	dispatcher := mailer.NewDispatcher(sender, user.NewPGRepo(db), order.NewPGRepo(db), cfg.FrontendURL)

	consumer := kafkax.NewConsumer(cfg.KafkaBrokers, "bookstore-mailer", events.TopicNotifications, 4)
	log.Printf("mailer consuming %s", events.TopicNotifications)
	if err := consumer.Start(ctx, dispatcher.Handle); err != nil && ctx.Err() == nil {
		log.Fatalf("consumer: %v", err)
	}
	log.Printf("mailer stopped")
}
