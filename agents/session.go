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

package agents

import (
	"sync"
	"time"
)

// Session is a conversational identity handle passed through to the
// model backend. It carries no mutable pipeline state.
type Session struct {
	UserID    string
	SessionID string
	CreatedAt time.Time
	LastUsed  time.Time
}

// SessionService tracks conversational sessions explicitly instead of
// creating them implicitly per invocation.
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionService creates an empty in-memory session registry.
func NewSessionService() *SessionService {
	return &SessionService{sessions: make(map[string]*Session)}
}

func sessionKey(userID, sessionID string) string {
	return userID + "/" + sessionID
}

// Ensure returns the session for the given identity, creating it on
// first use and refreshing its last-used time on every call.
func (s *SessionService) Ensure(userID, sessionID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(userID, sessionID)
	now := time.Now()

	session, ok := s.sessions[key]
	if !ok {
		session = &Session{
			UserID:    userID,
			SessionID: sessionID,
			CreatedAt: now,
		}
		s.sessions[key] = session
	}
	session.LastUsed = now
	return session
}

// Count returns the number of tracked sessions.
func (s *SessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Purge removes sessions idle for longer than maxIdle and returns how
// many were removed.
func (s *SessionService) Purge(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for key, session := range s.sessions {
		if session.LastUsed.Before(cutoff) {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed
}
