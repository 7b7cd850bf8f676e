// Package events defines the JSON envelope published to Kafka after state
// changes commit. The API produces; cmd/mailer consumes.
package events

import (
	"encoding/json"
	"strconv"
	"time"
)

const TopicNotifications = "bookstore.notifications"

const (
	EventOrderPlaced            = "OrderPlaced"
	EventUserRegistered         = "UserRegistered"
	EventPasswordResetRequested = "PasswordResetRequested"
)

type Envelope struct {
	EventID      string          `json:"event_id"`   // uuid
	EventType    string          `json:"event_type"` // one of the consts above
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"` // e.g. "bookstore-api"
	Payload      json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID int64 `json:"order_id"`
	UserID  int64 `json:"user_id"`
}

type UserRegisteredPayload struct {
	UserID int64 `json:"user_id"`
}

type PasswordResetRequestedPayload struct {
	UserID   int64  `json:"user_id"`
	ResetURL string `json:"reset_url"`
}

// PartitionKey keeps every event for one user in order.
func PartitionKey(userID int64) []byte {
	return []byte(strconv.FormatInt(userID, 10))
}

// New wraps a payload in a ready-to-publish envelope.
func New(eventID, eventType, producer string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:      eventID,
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     producer,
		Payload:      raw,
	}, nil
}
