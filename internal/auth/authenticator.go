// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/storekeep/storekeep/internal/database"
	"github.com/storekeep/storekeep/internal/logging"
	"github.com/storekeep/storekeep/internal/models"
)

// ErrInvalidCredentials is returned for any failed login. Unknown username
// and wrong password are deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid username or password")

// dummyHash is a bcrypt hash of a random value, compared against when the
// username does not exist so that login latency does not reveal whether an
// account exists.
var dummyHash = []byte("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")

// Authenticator verifies credentials against the user store and issues
// session tokens.
type Authenticator struct {
	db  *database.DB
	jwt *JWTManager
}

// NewAuthenticator wires the authenticator.
func NewAuthenticator(db *database.DB, jwt *JWTManager) *Authenticator {
	return &Authenticator{db: db, jwt: jwt}
}

// Login verifies a username/password pair and returns the user together
// with a signed session token.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := a.db.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Burn the same bcrypt work as a real comparison.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if !VerifyPassword(user.PasswordHash, password) {
		logging.Warn().Str("username", username).Msg("failed login attempt")
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.jwt.GenerateToken(user.Username, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// CreateUser registers a new user with the given role.
func (a *Authenticator) CreateUser(ctx context.Context, username, password, role string) (*models.User, error) {
	if err := validRole(role); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := a.db.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangeRole updates a user's role.
func (a *Authenticator) ChangeRole(ctx context.Context, id, role string) error {
	if err := validRole(role); err != nil {
		return err
	}
	return a.db.UpdateUserRole(ctx, id, role)
}

// EnsureAdmin creates the bootstrap admin account if it does not exist.
// An existing account is never overwritten, so a changed environment
// password does not silently rotate credentials.
func (a *Authenticator) EnsureAdmin(ctx context.Context, username, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("admin password rejected: %w", err)
	}
	return a.db.EnsureAdminUser(ctx, username, hash)
}

func validRole(role string) error {
	switch role {
	case models.RoleViewer, models.RoleEditor, models.RoleAdmin:
		return nil
	}
	return fmt.Errorf("unknown role %q", role)
}
