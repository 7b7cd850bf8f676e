package user

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/oaklandbooks/bookstore-api/internal/auth"
	"github.com/oaklandbooks/bookstore-api/internal/events"
	kafkax "github.com/oaklandbooks/bookstore-api/internal/kafka"
)

var (
	ErrInvalidCredentials = errors.New("Invalid username or password")
	ErrWrongPassword      = errors.New("Current password is incorrect")
)

type EventSink interface {
	Publish(key, value []byte)
}

// Service covers registration and credentials. Profile reads and writes go
// straight to the repository; they carry no logic worth a layer.
type Service struct {
	repo       Repository
	issuer     *auth.TokenIssuer
	sink       EventSink
	bcryptCost int
}

func NewService(repo Repository, issuer *auth.TokenIssuer, sink EventSink, bcryptCost int) *Service {
	return &Service{repo: repo, issuer: issuer, sink: sink, bcryptCost: bcryptCost}
}

type Registration struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
}

// Register creates a customer account and signs its first token. Accounts
// created here are always customers; admins are provisioned out of band.
func (s *Service) Register(ctx context.Context, reg Registration) (*User, string, error) {
	hash, err := auth.HashPassword(reg.Password, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	u := &User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		PhoneNumber:  reg.PhoneNumber,
		Address:      reg.Address,
		UserType:     auth.UserTypeCustomer,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.issuer.Sign(u.ID, u.Username, u.UserType)
	if err != nil {
		return nil, "", err
	}

	s.publishRegistered(u.ID)
	return u, token, nil
}

// Login verifies credentials without leaking which half failed.
func (s *Service) Login(ctx context.Context, username, password string) (*User, string, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issuer.Sign(u.ID, u.Username, u.UserType)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return ErrWrongPassword
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}

func (s *Service) publishRegistered(userID int64) {
	if s.sink == nil {
		return
	}
	env, err := events.New(uuid.NewString(), events.EventUserRegistered, "bookstore-api",
		events.UserRegisteredPayload{UserID: userID})
	if err != nil {
		log.Printf("[user] marshal event: %v", err)
		return
	}
	s.sink.Publish(events.PartitionKey(userID), kafkax.MustMarshal(env))
}
