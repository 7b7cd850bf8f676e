package mailer

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/oaklandbooks/bookstore-api/internal/events"
	"github.com/oaklandbooks/bookstore-api/internal/invoice"
	kafkax "github.com/oaklandbooks/bookstore-api/internal/kafka"
	"github.com/oaklandbooks/bookstore-api/internal/order"
	"github.com/oaklandbooks/bookstore-api/internal/user"
)

// Dispatcher consumes notification envelopes and sends the matching email.
// Unknown event types are logged and committed so the group never wedges on
// a newer producer.
type Dispatcher struct {
	sender      *Sender
	users       user.Repository
	orders      order.Repository
	frontendURL string
}

func NewDispatcher(sender *Sender, users user.Repository, orders order.Repository, frontendURL string) *Dispatcher {
	return &Dispatcher{sender: sender, users: users, orders: orders, frontendURL: frontendURL}
}

func (d *Dispatcher) Handle(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		log.Printf("[mailer] drop undecodable message at offset %d: %v", m.Offset, err)
		return nil
	}

	switch env.EventType {
	case events.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[events.OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		return d.orderPlaced(ctx, p)
	case events.EventUserRegistered:
		p, err := kafkax.UnwrapPayload[events.UserRegisteredPayload](env.Payload)
		if err != nil {
			return err
		}
		return d.userRegistered(ctx, p)
	case events.EventPasswordResetRequested:
		p, err := kafkax.UnwrapPayload[events.PasswordResetRequestedPayload](env.Payload)
		if err != nil {
			return err
		}
		return d.resetRequested(ctx, p)
	default:
		log.Printf("[mailer] ignoring event type %q (id %s)", env.EventType, env.EventID)
		return nil
	}
}

func (d *Dispatcher) orderPlaced(ctx context.Context, p events.OrderPlacedPayload) error {
	u, err := d.users.GetByID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", p.UserID, err)
	}
	o, items, err := d.orders.GetByID(ctx, p.OrderID, p.UserID)
	if err != nil {
		return fmt.Errorf("load order %d: %w", p.OrderID, err)
	}

	pdf, err := invoice.Generate(o, items, u)
	if err != nil {
		return fmt.Errorf("render invoice: %w", err)
	}

	var lines strings.Builder
	for _, it := range items {
		sub, _ := decimal.NewFromString(it.Subtotal)
		fmt.Fprintf(&lines, "<li>%s (x%d) - $%s</li>", html.EscapeString(it.Title),
			it.Quantity, sub.StringFixed(2))
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		  <h1>Order Confirmed!</h1>
		  <p>Hello %s,</p>
		  <p>Thank you for your order! We're excited to confirm that your order has been placed successfully.</p>
		  <h3>Order #%d</h3>
		  <p><strong>Date:</strong> %s</p>
		  <p><strong>Total:</strong> $%s</p>
		  <h3>Items Ordered:</h3>
		  <ul>%s</ul>
		  <p>Your invoice is attached to this email as a PDF.</p>
		  <p><a href="%s/my-orders/%d">View Order Details</a></p>
		  <p>Thank you for shopping with Bookstore Online!</p>
		</div>`,
		html.EscapeString(greeting(u)), o.ID, o.OrderDate.Format("Jan 2, 2006"),
		o.TotalAmount, lines.String(), d.frontendURL, o.ID)

	return d.sender.Send(u.Email, fmt.Sprintf("Order Confirmation #%d", o.ID), body,
		Attachment{
			Filename:    fmt.Sprintf("invoice-%d.pdf", o.ID),
			ContentType: "application/pdf",
			Content:     pdf,
		})
}

func (d *Dispatcher) userRegistered(ctx context.Context, p events.UserRegisteredPayload) error {
	u, err := d.users.GetByID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", p.UserID, err)
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		  <h1>Welcome to Bookstore!</h1>
		  <p>Hello %s,</p>
		  <p>Thank you for joining Bookstore Online! We're thrilled to have you as part of our community of book lovers.</p>
		  <h3>What you can do:</h3>
		  <ul>
		    <li>Browse our extensive collection of books</li>
		    <li>Create wishlists for books you want to read</li>
		    <li>Read and write reviews</li>
		    <li>Get personalized recommendations</li>
		  </ul>
		  <p><a href="%s/books">Start Browsing</a></p>
		  <p>Happy reading!</p>
		</div>`,
		html.EscapeString(greeting(u)), d.frontendURL)

	return d.sender.Send(u.Email, "Welcome to Bookstore Online!", body)
}

func (d *Dispatcher) resetRequested(ctx context.Context, p events.PasswordResetRequestedPayload) error {
	u, err := d.users.GetByID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("load user %d: %w", p.UserID, err)
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		  <h1>Password Reset</h1>
		  <p>Hello %s,</p>
		  <p>We received a request to reset your password. The link below is valid for one hour and works once.</p>
		  <p><a href="%s">Reset Password</a></p>
		  <p>If you did not request this, you can safely ignore this email.</p>
		</div>`,
		html.EscapeString(greeting(u)), p.ResetURL)

	return d.sender.Send(u.Email, "Reset your Bookstore password", body)
}

func greeting(u *user.User) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}
