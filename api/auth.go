// Copyright 2025 Complia
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin may read any user's artifacts; everyone else only their own.
const RoleAdmin = "admin"

var ErrInvalidCredentials = errors.New("invalid credentials")

// User is an authenticated principal.
type User struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// UserStore resolves login credentials to a user.
type UserStore interface {
	Authenticate(username, password string) (User, error)
}

// MemoryUserStore is a credential table held in memory. Passwords are
// stored as SHA-256 digests and compared in constant time.
type MemoryUserStore struct {
	users map[string]memoryUser
}

type memoryUser struct {
	passwordHash [sha256.Size]byte
	user         User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]memoryUser)}
}

// AddUser registers a user; it replaces any existing entry for username.
func (s *MemoryUserStore) AddUser(username, password, role string) {
	s.users[username] = memoryUser{
		passwordHash: sha256.Sum256([]byte(password)),
		user:         User{ID: username, Role: role},
	}
}

func (s *MemoryUserStore) Authenticate(username, password string) (User, error) {
	entry, ok := s.users[username]
	if !ok {
		// Burn a comparison anyway so missing users cost the same
		// as wrong passwords.
		h := sha256.Sum256([]byte(password))
		subtle.ConstantTimeCompare(h[:], h[:])
		return User{}, ErrInvalidCredentials
	}
	h := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(h[:], entry.passwordHash[:]) != 1 {
		return User{}, ErrInvalidCredentials
	}
	return entry.user, nil
}

// TokenAuthority issues and verifies HS256 bearer tokens.
type TokenAuthority struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenAuthority(secret []byte, ttl time.Duration) *TokenAuthority {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenAuthority{secret: secret, ttl: ttl}
}

// Issue mints a signed token carrying the user's identity and role.
func (a *TokenAuthority) Issue(user User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  time.Now().Add(a.ttl).Unix(),
	})
	return token.SignedString(a.secret)
}

// Verify parses and validates a token string, returning the principal.
func (a *TokenAuthority) Verify(tokenString string) (User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return User{}, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return User{}, errors.New("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return User{}, errors.New("token missing subject")
	}
	return User{ID: sub, Role: role}, nil
}

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext returns the authenticated user set by the auth middleware.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userContextKey).(User)
	return u, ok
}

func withUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// bearerToken extracts a Bearer token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", false
	}
	return token, true
}
