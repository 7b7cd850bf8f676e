package mailer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/oaklandbooks/bookstore-api/internal/events"
	kafkax "github.com/oaklandbooks/bookstore-api/internal/kafka"
	"github.com/oaklandbooks/bookstore-api/internal/order"
	"github.com/oaklandbooks/bookstore-api/internal/user"
)

type stubUsers struct{ u *user.User }

func (s *stubUsers) Create(ctx context.Context, u *user.User) error { return nil }
func (s *stubUsers) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if s.u != nil && s.u.ID == id {
		return s.u, nil
	}
	return nil, user.ErrNotFound
}
func (s *stubUsers) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (s *stubUsers) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, user.ErrNotFound
}
func (s *stubUsers) UpdateProfile(ctx context.Context, id int64, up user.ProfileUpdate) error {
	return nil
}
func (s *stubUsers) UpdatePassword(ctx context.Context, id int64, hash string) error { return nil }

type stubOrders struct {
	o     *order.Order
	items []order.Item
}

func (s *stubOrders) Place(ctx context.Context, req order.PlaceRequest) (*order.Order, []order.Item, error) {
	return nil, nil, nil
}
func (s *stubOrders) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	return nil, nil
}
func (s *stubOrders) GetByID(ctx context.Context, orderID, userID int64) (*order.Order, []order.Item, error) {
	if s.o != nil && s.o.ID == orderID && s.o.UserID == userID {
		return s.o, s.items, nil
	}
	return nil, nil, order.ErrNotFound
}
func (s *stubOrders) ListAll(ctx context.Context, limit, offset int) ([]order.OrderWithUser, int, error) {
	return nil, 0, nil
}

type sentMail struct {
	to, subject string
}

func captureSender(t *testing.T, sent *[]sentMail) *Sender {
	t.Helper()
	s := NewSender(SMTPConfig{User: "mail@example.com", Host: "localhost", Port: 587})
	s.send = func(m *gomail.Message) error {
		*sent = append(*sent, sentMail{
			to:      m.GetHeader("To")[0],
			subject: m.GetHeader("Subject")[0],
		})
		return nil
	}
	return s
}

func message(t *testing.T, eventType string, payload any) kafkago.Message {
	t.Helper()
	env, err := events.New(uuid.NewString(), eventType, "test", payload)
	require.NoError(t, err)
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func testDispatcher(t *testing.T, sent *[]sentMail) *Dispatcher {
	t.Helper()
	u := &user.User{ID: 7, Username: "reader", Email: "reader@example.com", FirstName: "Pat"}
	o := &order.Order{ID: 42, UserID: 7, OrderDate: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
		TotalAmount: "75.00", CardNumber: "**** **** **** 4242", CardExpiry: "12/27"}
	items := []order.Item{{
		OrderItemID: 1, OrderID: 42, BookISBN: "9780000000001", Title: "Go in Practice",
		Quantity: 3, PriceAtPurchase: "25.00", Subtotal: "75.00",
	}}
	return NewDispatcher(captureSender(t, sent), &stubUsers{u: u}, &stubOrders{o: o, items: items},
		"http://localhost:80")
}

func TestHandle_OrderPlaced(t *testing.T) {
	var sent []sentMail
	d := testDispatcher(t, &sent)

	err := d.Handle(context.Background(), message(t, events.EventOrderPlaced,
		events.OrderPlacedPayload{OrderID: 42, UserID: 7}))
	require.NoError(t, err)

	require.Len(t, sent, 1)
	assert.Equal(t, "reader@example.com", sent[0].to)
	assert.Equal(t, "Order Confirmation #42", sent[0].subject)
}

func TestHandle_UserRegistered(t *testing.T) {
	var sent []sentMail
	d := testDispatcher(t, &sent)

	err := d.Handle(context.Background(), message(t, events.EventUserRegistered,
		events.UserRegisteredPayload{UserID: 7}))
	require.NoError(t, err)

	require.Len(t, sent, 1)
	assert.Equal(t, "Welcome to Bookstore Online!", sent[0].subject)
}

func TestHandle_PasswordResetRequested(t *testing.T) {
	var sent []sentMail
	d := testDispatcher(t, &sent)

	err := d.Handle(context.Background(), message(t, events.EventPasswordResetRequested,
		events.PasswordResetRequestedPayload{UserID: 7, ResetURL: "http://localhost:80/reset-password?token=abc"}))
	require.NoError(t, err)

	require.Len(t, sent, 1)
	assert.Equal(t, "Reset your Bookstore password", sent[0].subject)
}

func TestHandle_UnknownEventTypeIsCommitted(t *testing.T) {
	var sent []sentMail
	d := testDispatcher(t, &sent)

	err := d.Handle(context.Background(), message(t, "SomethingNew", map[string]any{}))
	require.NoError(t, err)
	assert.Empty(t, sent)
}

func TestHandle_UndecodableMessageIsDropped(t *testing.T) {
	var sent []sentMail
	d := testDispatcher(t, &sent)

	err := d.Handle(context.Background(), kafkago.Message{Value: []byte("{not json")})
	require.NoError(t, err)
	assert.Empty(t, sent)
}

func TestSend_SkipsWhenSMTPUnconfigured(t *testing.T) {
	s := NewSender(SMTPConfig{})
	called := false
	s.send = func(m *gomail.Message) error { called = true; return nil }

	require.NoError(t, s.Send("reader@example.com", "hi", "<p>hi</p>"))
	assert.False(t, called)
}
