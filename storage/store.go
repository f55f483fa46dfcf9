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
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when no artifact exists for an ID.
var ErrNotFound = errors.New("artifact not found")

// Kind distinguishes documents a user submitted from reports the
// platform produced.
type Kind string

const (
	KindUploaded  Kind = "uploaded"
	KindGenerated Kind = "generated"
)

// Metadata is attached to every stored artifact and is queryable.
type Metadata struct {
	OwnerID     string `bson:"user_id" json:"user_id"`
	Kind        Kind   `bson:"type" json:"type"`
	CompanyName string `bson:"company_name,omitempty" json:"company_name,omitempty"`
	Score       int    `bson:"score" json:"score"`
	ProjectID   string `bson:"project_id,omitempty" json:"project_id,omitempty"`
}

// Artifact describes a stored blob without its content.
type Artifact struct {
	ID         string
	Filename   string
	Length     int64
	UploadedAt time.Time
	Metadata   Metadata
}

// Query filters artifacts by metadata. Zero-valued fields match
// everything.
type Query struct {
	OwnerID string
	Kind    Kind

	// NewestFirst orders results by upload time descending.
	NewestFirst bool
}

// ArtifactStore persists binary artifacts keyed by generated IDs with
// queryable metadata.
type ArtifactStore interface {
	// Put stores a blob and returns its generated ID.
	Put(ctx context.Context, filename string, data io.Reader, meta Metadata) (string, error)

	// Get returns an artifact's content and descriptor, or ErrNotFound.
	Get(ctx context.Context, id string) ([]byte, *Artifact, error)

	// Query lists artifact descriptors matching the filter.
	Query(ctx context.Context, q Query) ([]Artifact, error)

	// Delete removes an artifact. Deleting a missing artifact returns
	// ErrNotFound.
	Delete(ctx context.Context, id string) error
}
