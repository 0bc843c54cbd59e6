package auth

import (
	"context"
	"fmt"
	"time"
)

// Logger is the narrow logging interface used by the auth service.
type Logger interface {
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Service authenticates accounts and issues access tokens.
type Service struct {
	repo       UserRepository
	jwtSecret  string
	ttlMinutes int
	logger     Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewService creates an auth service.
func NewService(repo UserRepository, jwtSecret string, ttlMinutes int) *Service {
	return &Service{
		repo:       repo,
		jwtSecret:  jwtSecret,
		ttlMinutes: ttlMinutes,
		logger:     noopLogger{},
		now:        time.Now,
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// Authenticate verifies credentials and returns the account with a signed
// access token. Unknown usernames and wrong passwords both return
// ErrInvalidCredentials so callers cannot probe for account existence.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, string, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	match, err := VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return nil, "", ErrInvalidCredentials
	}

	token, err := GenerateAccessToken(user, s.jwtSecret, s.ttlMinutes)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}

	// Login bookkeeping is best-effort: a failed write must not block a
	// valid login, but it should not vanish silently either.
	now := s.now()
	if err := s.repo.RecordLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("recording login time failed", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}

	return user, token, nil
}

// CreateUser registers a new account with a hashed password.
func (s *Service) CreateUser(ctx context.Context, username, password string, role Role) (*User, error) {
	if !IsValidRole(role) {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Verify parses an access token and returns its claims.
func (s *Service) Verify(tokenString string) (*CustomClaims, error) {
	return ParseToken(tokenString, s.jwtSecret)
}
