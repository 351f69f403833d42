// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/storekeep/storekeep/internal/config"
	"github.com/storekeep/storekeep/internal/database"
	"github.com/storekeep/storekeep/internal/models"
)

const testSecret = "test-secret-0123456789-0123456789-ok"

func newTestJWT(t *testing.T, timeout time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      testSecret,
		SessionTimeout: timeout,
	})
	if err != nil {
		t.Fatalf("NewJWTManager failed: %v", err)
	}
	return m
}

func TestJWTManagerSecretValidation(t *testing.T) {
	if _, err := NewJWTManager(&config.SecurityConfig{JWTSecret: ""}); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := NewJWTManager(&config.SecurityConfig{JWTSecret: "short"}); err == nil {
		t.Error("expected error for short secret")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := newTestJWT(t, time.Hour)

	token, err := m.GenerateToken("alice", models.RoleEditor)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Username != "alice" || claims.Role != models.RoleEditor {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestJWTExpiredToken(t *testing.T) {
	m := newTestJWT(t, -time.Minute)

	token, err := m.GenerateToken("alice", models.RoleViewer)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := m.ValidateToken(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestJWTWrongSecret(t *testing.T) {
	m := newTestJWT(t, time.Hour)
	token, err := m.GenerateToken("alice", models.RoleViewer)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	other, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      strings.Repeat("x", 32),
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager failed: %v", err)
	}
	if _, err := other.ValidateToken(token); err == nil {
		t.Error("expected token signed with a different secret to be rejected")
	}
}

func TestJWTTamperedToken(t *testing.T) {
	m := newTestJWT(t, time.Hour)
	token, err := m.GenerateToken("alice", models.RoleViewer)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	tampered := token[:len(token)-4] + "AAAA"
	if _, err := m.ValidateToken(tampered); err == nil {
		t.Error("expected tampered token to be rejected")
	}
}

func TestHashPasswordRejectsShort(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Error("expected short password to be rejected")
	}
}

func setupAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewAuthenticator(db, newTestJWT(t, time.Hour))
}

func TestLogin(t *testing.T) {
	a := setupAuthenticator(t)
	ctx := context.Background()

	if _, err := a.CreateUser(ctx, "alice", "correct-horse", models.RoleEditor); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user, token, err := a.Login(ctx, "alice", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Role != models.RoleEditor || token == "" {
		t.Errorf("unexpected login result: role=%s token=%q", user.Role, token)
	}

	if _, _, err := a.Login(ctx, "alice", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := a.Login(ctx, "nobody", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	a := setupAuthenticator(t)
	if _, err := a.CreateUser(context.Background(), "bob", "password123", "superuser"); err == nil {
		t.Error("expected unknown role to be rejected")
	}
}

func TestEnsureAdminNeverOverwrites(t *testing.T) {
	a := setupAuthenticator(t)
	ctx := context.Background()

	if err := a.EnsureAdmin(ctx, "admin", "first-password"); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	if err := a.EnsureAdmin(ctx, "admin", "second-password"); err != nil {
		t.Fatalf("second EnsureAdmin failed: %v", err)
	}

	if _, _, err := a.Login(ctx, "admin", "first-password"); err != nil {
		t.Errorf("original password must keep working, got: %v", err)
	}
	if _, _, err := a.Login(ctx, "admin", "second-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("changed env password must not rotate credentials, got: %v", err)
	}
}
