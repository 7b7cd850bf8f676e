package order

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/oaklandbooks/bookstore-api/internal/events"
	kafkax "github.com/oaklandbooks/bookstore-api/internal/kafka"
	"github.com/oaklandbooks/bookstore-api/internal/payment"
)

// EventSink decouples the service from the concrete producer; Publish must
// never block the caller.
type EventSink interface {
	Publish(key, value []byte)
}

// RecoInvalidator drops a user's cached recommendations after their purchase
// history changes.
type RecoInvalidator interface {
	InvalidateRecommendations(ctx context.Context, userID int64)
}

type Service struct {
	repo Repository
	sink EventSink
	reco RecoInvalidator
	now  func() time.Time
}

func NewService(repo Repository, sink EventSink, reco RecoInvalidator) *Service {
	return &Service{repo: repo, sink: sink, reco: reco, now: time.Now}
}

// WithClock overrides the card-expiry reference time; tests use it.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// PlaceOrder validates the request, runs the placement transaction and, only
// after commit, hands the confirmation off to the notification queue. A
// queue or cache failure never affects the committed order.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, req PlaceOrderRequest) (*Order, []Item, error) {
	if len(req.Items) == 0 {
		return nil, nil, ErrEmptyOrder
	}
	card, err := payment.ValidateCard(req.CreditCardNumber, req.CreditCardExpiry, s.now())
	if err != nil {
		return nil, nil, err
	}

	o, items, err := s.repo.Place(ctx, PlaceRequest{UserID: userID, Items: req.Items, Card: card})
	if err != nil {
		return nil, nil, err
	}

	s.publishPlaced(o)
	if s.reco != nil {
		s.reco.InvalidateRecommendations(ctx, userID)
	}
	return o, items, nil
}

func (s *Service) publishPlaced(o *Order) {
	if s.sink == nil {
		return
	}
	env, err := events.New(uuid.NewString(), events.EventOrderPlaced, "bookstore-api",
		events.OrderPlacedPayload{OrderID: o.ID, UserID: o.UserID})
	if err != nil {
		log.Printf("[order] marshal event: %v", err)
		return
	}
	s.sink.Publish(events.PartitionKey(o.UserID), kafkax.MustMarshal(env))
}
