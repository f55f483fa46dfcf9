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
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRateLimiter(t *testing.T, limitPerMinute int) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rl, err := NewRateLimiter("redis://"+mr.Addr(), limitPerMinute)
	require.NoError(t, err)
	t.Cleanup(func() { rl.Close() })
	return rl, mr
}

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow(ctx, "u1"), "request %d should be allowed", i)
	}
	assert.False(t, rl.Allow(ctx, "u1"))
}

func TestRateLimiterIsolatesUsers(t *testing.T) {
	rl, _ := newTestRateLimiter(t, 1)
	ctx := context.Background()

	assert.True(t, rl.Allow(ctx, "u1"))
	assert.False(t, rl.Allow(ctx, "u1"))

	// A different user has their own window.
	assert.True(t, rl.Allow(ctx, "u2"))
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl, mr := newTestRateLimiter(t, 2)
	ctx := context.Background()

	assert.True(t, rl.Allow(ctx, "u1"))
	assert.True(t, rl.Allow(ctx, "u1"))
	assert.False(t, rl.Allow(ctx, "u1"))

	// Once the key's expiry elapses the window resets.
	mr.FastForward(3 * time.Minute)
	assert.True(t, rl.Allow(ctx, "u1"))
}

func TestRateLimiterFailsOpen(t *testing.T) {
	rl, mr := newTestRateLimiter(t, 1)
	mr.Close()

	assert.True(t, rl.Allow(context.Background(), "u1"))
}

func TestNewRateLimiterBadURL(t *testing.T) {
	_, err := NewRateLimiter("not-a-url", 10)
	assert.Error(t, err)
}
