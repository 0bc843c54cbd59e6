package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockUserRepo implements UserRepository for service tests.
type mockUserRepo struct {
	UserRepository

	users      map[string]*User
	loginIDs   []string
	createErr  error
	recordErr  error
	getErrOnce error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*User{}}
}

func (m *mockUserRepo) Create(_ context.Context, user *User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if user.ID == "" {
		user.ID = "usr-" + user.Username
	}
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	if m.getErrOnce != nil {
		err := m.getErrOnce
		m.getErrOnce = nil
		return nil, err
	}
	u, ok := m.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) RecordLogin(_ context.Context, id string, _ time.Time) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.loginIDs = append(m.loginIDs, id)
	return nil
}

func seedUser(t *testing.T, repo *mockUserRepo, username, password string, role Role) *User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	u := &User{ID: "usr-" + username, Username: username, PasswordHash: hash, Role: role}
	repo.users[username] = u
	return u
}

func TestAuthenticateSuccess(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(t, repo, "nurse", "s3cret", RoleUser)
	svc := NewService(repo, "jwt-secret", 15)

	user, token, err := svc.Authenticate(context.Background(), "nurse", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if user.Username != "nurse" {
		t.Errorf("Username = %q, want nurse", user.Username)
	}
	if user.LastLoginAt == nil {
		t.Error("LastLoginAt not stamped on successful login")
	}
	if len(repo.loginIDs) != 1 || repo.loginIDs[0] != user.ID {
		t.Errorf("RecordLogin calls = %v, want [%s]", repo.loginIDs, user.ID)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if claims.Subject != user.ID || claims.Role != RoleUser {
		t.Errorf("claims = subject %q role %q, want %q/%q", claims.Subject, claims.Role, user.ID, RoleUser)
	}
}

func TestAuthenticateUniformFailure(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(t, repo, "nurse", "s3cret", RoleUser)
	svc := NewService(repo, "jwt-secret", 15)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "ghost", "s3cret"},
		{"wrong password", "nurse", "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Authenticate(context.Background(), tt.username, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

// capturingLogger records warn calls for assertions.
type capturingLogger struct {
	warnings []string
}

func (l *capturingLogger) Warn(msg string, _ ...any) {
	l.warnings = append(l.warnings, msg)
}

func TestAuthenticateRecordLoginFailureIsNonFatal(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(t, repo, "nurse", "s3cret", RoleUser)
	repo.recordErr = errors.New("db gone")
	svc := NewService(repo, "jwt-secret", 15)
	logger := &capturingLogger{}
	svc.SetLogger(logger)

	user, token, err := svc.Authenticate(context.Background(), "nurse", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if token == "" {
		t.Error("token is empty despite successful authentication")
	}
	if user.LastLoginAt != nil {
		t.Error("LastLoginAt stamped even though RecordLogin failed")
	}
	if len(logger.warnings) != 1 {
		t.Errorf("warnings = %v, want the failed write logged once", logger.warnings)
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo, "jwt-secret", 15)

	user, err := svc.CreateUser(context.Background(), "admin", "hunter2", RoleAdmin)
	if err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	if user.PasswordHash == "hunter2" {
		t.Error("password stored in plain text")
	}
	match, err := VerifyPassword("hunter2", user.PasswordHash)
	if err != nil || !match {
		t.Errorf("stored hash does not verify: match=%v err=%v", match, err)
	}
}

func TestCreateUserInvalidRole(t *testing.T) {
	svc := NewService(newMockUserRepo(), "jwt-secret", 15)

	if _, err := svc.CreateUser(context.Background(), "x", "pw", Role("superuser")); err == nil {
		t.Error("CreateUser() accepted an invalid role")
	}
}
