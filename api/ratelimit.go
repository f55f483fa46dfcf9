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
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"complia/platform/shared/logger"
)

// RateLimiter enforces a per-user sliding-window request limit backed
// by a Redis sorted set. When Redis is unreachable the limiter fails
// open: availability of the service wins over strict enforcement.
type RateLimiter struct {
	client         *redis.Client
	limitPerMinute int
	log            *logger.Logger
}

// NewRateLimiter connects to Redis at redisURL (redis://host:port[/db]).
func NewRateLimiter(redisURL string, limitPerMinute int) (*RateLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RateLimiter{
		client:         client,
		limitPerMinute: limitPerMinute,
		log:            logger.New("rate-limiter"),
	}, nil
}

// Allow reports whether userID may make another request in the current
// one-minute window. The request is recorded as part of the check.
func (rl *RateLimiter) Allow(ctx context.Context, userID string) bool {
	now := time.Now()
	key := "ratelimit:" + userID

	pipe := rl.client.Pipeline()

	// Drop timestamps that fell out of the window, count what
	// remains, then record this request.
	minScore := now.Add(-time.Minute).UnixNano()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", minScore))
	count := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, &redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	pipe.Expire(ctx, key, 2*time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		rl.log.Warn(userID, "", "rate limit check failed, allowing request", map[string]interface{}{
			"error": err.Error(),
		})
		return true
	}

	return count.Val() < int64(rl.limitPerMinute)
}

// Close releases the Redis connection pool.
func (rl *RateLimiter) Close() error {
	return rl.client.Close()
}
