package auth

import (
	"errors"
	"testing"
)

func TestGenerateAndParseToken(t *testing.T) {
	user := &User{ID: "usr-abc12345", Username: "nurse", Role: RoleUser}

	token, err := GenerateAccessToken(user, "test-secret", 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}

	claims, err := ParseToken(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseToken() error: %v", err)
	}
	if claims.Subject != user.ID {
		t.Errorf("Subject = %q, want %q", claims.Subject, user.ID)
	}
	if claims.Username != user.Username {
		t.Errorf("Username = %q, want %q", claims.Username, user.Username)
	}
	if claims.Role != RoleUser {
		t.Errorf("Role = %q, want %q", claims.Role, RoleUser)
	}
	if claims.ID == "" {
		t.Error("token ID (jti) is empty")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	user := &User{ID: "usr-abc12345", Username: "nurse", Role: RoleUser}

	token, err := GenerateAccessToken(user, "right-secret", 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error: %v", err)
	}

	if _, err := ParseToken(token, "wrong-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("not.a.token", "secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
	}
}
