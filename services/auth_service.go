package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

const RoleOrganizer = "organizer"

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*Organizer, error)
}

type LoginInput struct {
	Password string `json:"password"`
}

// Organizer is the identity behind every write to the tournament.
type Organizer struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type authService struct {
	organizerName string
	passwordHash  []byte
	logger        *slog.Logger
}

// NewAuthService checks organizer logins against a bcrypt hash taken from
// configuration.
func NewAuthService(organizerName, passwordHash string, logger *slog.Logger) AuthService {
	if organizerName == "" {
		organizerName = RoleOrganizer
	}
	return &authService{
		organizerName: organizerName,
		passwordHash:  []byte(passwordHash),
		logger:        loggerOrDefault(logger),
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*Organizer, error) {
	if input.Password == "" {
		return nil, ErrAuthInvalidCredentials
	}
	err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.WarnContext(ctx, "organizer login rejected")
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}
	return &Organizer{Name: s.organizerName, Role: RoleOrganizer}, nil
}
