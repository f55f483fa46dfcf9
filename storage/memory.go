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

package storage

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory ArtifactStore for tests and local
// development.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	descs map[string]Artifact

	// Clock is overridable so tests can control upload timestamps.
	Clock func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
		descs: make(map[string]Artifact),
		Clock: time.Now,
	}
}

// Put stores a blob under a generated UUID.
func (s *MemoryStore) Put(ctx context.Context, filename string, data io.Reader, meta Metadata) (string, error) {
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	s.blobs[id] = content
	s.descs[id] = Artifact{
		ID:         id,
		Filename:   filename,
		Length:     int64(len(content)),
		UploadedAt: s.Clock(),
		Metadata:   meta,
	}
	return id, nil
}

// Get returns a stored blob and its descriptor.
func (s *MemoryStore) Get(ctx context.Context, id string) ([]byte, *Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.blobs[id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	desc := s.descs[id]
	return append([]byte(nil), content...), &desc, nil
}

// Query lists descriptors matching the filter.
func (s *MemoryStore) Query(ctx context.Context, q Query) ([]Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Artifact
	for _, desc := range s.descs {
		if q.OwnerID != "" && desc.Metadata.OwnerID != q.OwnerID {
			continue
		}
		if q.Kind != "" && desc.Metadata.Kind != q.Kind {
			continue
		}
		out = append(out, desc)
	}

	if q.NewestFirst {
		sort.Slice(out, func(i, j int) bool {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		})
	}
	return out, nil
}

// Delete removes a stored blob.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[id]; !ok {
		return ErrNotFound
	}
	delete(s.blobs, id)
	delete(s.descs, id)
	return nil
}
