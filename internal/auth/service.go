package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/chatrelay/internal/store"
)

var (
	// ErrUserExists is returned when trying to sign up with an existing username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

// Tokens is the access/refresh pair handed out at sign-up.
type Tokens struct {
	Access  string
	Refresh string
}

// Service issues credentials for directory users.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
	}
}

// Signup creates a user with a hashed password and returns it with fresh tokens.
func (s *Service) Signup(ctx context.Context, username, password string) (*store.User, *Tokens, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 32 {
		return nil, nil, ErrInvalidUsername
	}
	if len(password) < 6 {
		return nil, nil, ErrInvalidPassword
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, hashedPassword)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, nil, ErrUserExists
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.IssueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Login validates credentials and returns the user with fresh tokens.
func (s *Service) Login(ctx context.Context, username, password string) (*store.User, *Tokens, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return nil, nil, err
	}

	tokens, err := s.IssueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// IssueTokens mints an access and a refresh token for userID.
func (s *Service) IssueTokens(userID int64) (*Tokens, error) {
	access, err := GenerateToken(s.jwtConfig, userID, TokenTypeAccess, s.jwtConfig.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := GenerateToken(s.jwtConfig, userID, TokenTypeRefresh, s.jwtConfig.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	return &Tokens{Access: access, Refresh: refresh}, nil
}
