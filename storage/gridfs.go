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
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore persists artifacts in a MongoDB GridFS bucket. It is the
// production ArtifactStore.
type GridFSStore struct {
	bucket *gridfs.Bucket
	files  *mongo.Collection
}

// gridfsFile mirrors the fs.files document shape.
type gridfsFile struct {
	ID         primitive.ObjectID `bson:"_id"`
	Filename   string             `bson:"filename"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
	Metadata   Metadata           `bson:"metadata"`
}

// NewGridFSStore creates a store over the given database and ensures
// the metadata index used by history queries.
func NewGridFSStore(ctx context.Context, db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db)
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}

	store := &GridFSStore{
		bucket: bucket,
		files:  db.Collection("fs.files"),
	}

	_, err = store.files.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "metadata.user_id", Value: 1},
			{Key: "metadata.type", Value: 1},
			{Key: "uploadDate", Value: -1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gridfs index: %w", err)
	}

	return store, nil
}

// applyDeadline propagates a request deadline to the bucket's stream
// operations, which predate context support in the v1 driver.
func (s *GridFSStore) applyDeadline(ctx context.Context) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetWriteDeadline(deadline)
		_ = s.bucket.SetReadDeadline(deadline)
	}
}

// Put streams a blob into the bucket and returns its ID as a hex
// string.
func (s *GridFSStore) Put(ctx context.Context, filename string, data io.Reader, meta Metadata) (string, error) {
	s.applyDeadline(ctx)

	id, err := s.bucket.UploadFromStream(filename, data,
		options.GridFSUpload().SetMetadata(meta))
	if err != nil {
		return "", fmt.Errorf("gridfs upload %s: %w", filename, err)
	}
	return id.Hex(), nil
}

// Get reads an artifact's content and descriptor.
func (s *GridFSStore) Get(ctx context.Context, id string) ([]byte, *Artifact, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil, ErrNotFound
	}

	var file gridfsFile
	err = s.files.FindOne(ctx, bson.M{"_id": oid}).Decode(&file)
	if err == mongo.ErrNoDocuments {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("gridfs lookup %s: %w", id, err)
	}

	s.applyDeadline(ctx)
	var buf bytes.Buffer
	if _, err := s.bucket.DownloadToStream(oid, &buf); err != nil {
		return nil, nil, fmt.Errorf("gridfs download %s: %w", id, err)
	}

	artifact := file.toArtifact()
	return buf.Bytes(), &artifact, nil
}

// Query lists artifacts matching the metadata filter.
func (s *GridFSStore) Query(ctx context.Context, q Query) ([]Artifact, error) {
	filter := bson.M{}
	if q.OwnerID != "" {
		filter["metadata.user_id"] = q.OwnerID
	}
	if q.Kind != "" {
		filter["metadata.type"] = string(q.Kind)
	}

	findOpts := options.Find()
	if q.NewestFirst {
		findOpts.SetSort(bson.D{{Key: "uploadDate", Value: -1}})
	}

	cursor, err := s.files.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("gridfs query: %w", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var artifacts []Artifact
	for cursor.Next(ctx) {
		var file gridfsFile
		if err := cursor.Decode(&file); err != nil {
			return nil, fmt.Errorf("gridfs decode: %w", err)
		}
		artifacts = append(artifacts, file.toArtifact())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("gridfs cursor: %w", err)
	}
	return artifacts, nil
}

// Delete removes an artifact and its chunks.
func (s *GridFSStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	s.applyDeadline(ctx)
	if err := s.bucket.Delete(oid); err != nil {
		if err == gridfs.ErrFileNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("gridfs delete %s: %w", id, err)
	}
	return nil
}

func (f gridfsFile) toArtifact() Artifact {
	return Artifact{
		ID:         f.ID.Hex(),
		Filename:   f.Filename,
		Length:     f.Length,
		UploadedAt: f.UploadDate,
		Metadata:   f.Metadata,
	}
}
