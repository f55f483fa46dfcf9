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
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUserStoreAuthenticate(t *testing.T) {
	store := NewMemoryUserStore()
	store.AddUser("alice", "s3cret", "auditor")

	user, err := store.Authenticate("alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.ID)
	assert.Equal(t, "auditor", user.Role)

	_, err = store.Authenticate("alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = store.Authenticate("nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenAuthorityRoundTrip(t *testing.T) {
	auth := NewTokenAuthority([]byte("test-secret"), time.Hour)

	token, err := auth.Issue(User{ID: "alice", Role: "auditor"})
	require.NoError(t, err)

	user, err := auth.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.ID)
	assert.Equal(t, "auditor", user.Role)
}

func TestTokenAuthorityRejectsWrongSecret(t *testing.T) {
	issued, err := NewTokenAuthority([]byte("secret-a"), time.Hour).Issue(User{ID: "alice"})
	require.NoError(t, err)

	_, err = NewTokenAuthority([]byte("secret-b"), time.Hour).Verify(issued)
	assert.Error(t, err)
}

func TestTokenAuthorityRejectsExpired(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "alice",
		"role": "auditor",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewTokenAuthority([]byte("test-secret"), time.Hour).Verify(signed)
	assert.Error(t, err)
}

func TestTokenAuthorityRejectsUnexpectedAlgorithm(t *testing.T) {
	// alg=none must never verify.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenAuthority([]byte("test-secret"), time.Hour).Verify(signed)
	assert.Error(t, err)
}

func TestTokenAuthorityRejectsMissingSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "auditor",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewTokenAuthority([]byte("test-secret"), time.Hour).Verify(signed)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, ok := bearerToken(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "Basic abc")
	_, ok = bearerToken(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "Bearer abc.def.ghi")
	token, ok := bearerToken(r)
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)
}
