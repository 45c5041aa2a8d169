package service

import (
	"errors"
	"testing"

	"github.com/ICMM2025/icmm-server/internal/config"
	"github.com/ICMM2025/icmm-server/internal/repository"
)

func TestAuthLoginIssuesParsableToken(t *testing.T) {
	db := openServiceTestDB(t)
	svc := NewAuthService(config.JWTConfig{SecretKey: "test-secret-key-0123456789", ExpireHours: 1}, repository.NewAdminRepository(db))

	if _, err := svc.CreateAdmin("staff", "pass-1234"); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	if _, _, _, err := svc.Login("staff", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, _, err := svc.Login("nobody", "pass-1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
	admin, token, _, err := svc.Login("staff", "pass-1234")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if admin.LastLoginAt == nil {
		t.Fatalf("expected last login to be set")
	}
	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Username != "staff" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	other := NewAuthService(config.JWTConfig{SecretKey: "another-secret-key-987654"}, repository.NewAdminRepository(db))
	if _, err := other.ParseJWT(token); err == nil {
		t.Fatalf("token signed with another key must be rejected")
	}
}

func TestCreateAdminResetsPasswordForExistingUser(t *testing.T) {
	db := openServiceTestDB(t)
	svc := NewAuthService(config.JWTConfig{SecretKey: "test-secret-key-0123456789"}, repository.NewAdminRepository(db))
	first, err := svc.CreateAdmin("staff", "old-pass")
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	second, err := svc.CreateAdmin("staff", "new-pass")
	if err != nil {
		t.Fatalf("reset admin failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same admin, got %d and %d", first.ID, second.ID)
	}
	if _, _, _, err := svc.Login("staff", "new-pass"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}
