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
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

const s3KeyPrefix = "artifacts/"

// S3API is the subset of the S3 client the store uses (enables testing).
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store persists artifacts as S3 objects with metadata stored as
// object metadata. It is an alternative ArtifactStore for deployments
// without MongoDB. Query performance degrades with bucket size since S3
// cannot filter listings by metadata.
type S3Store struct {
	client S3API
	bucket string
}

// NewS3Store creates a store over the default AWS credential chain.
func NewS3Store(ctx context.Context, region, bucket string) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &S3Store{client: s3.NewFromConfig(awsCfg), bucket: bucket}, nil
}

// NewS3StoreWithClient creates a store with an injected client (tests).
func NewS3StoreWithClient(client S3API, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// Put stores a blob as an S3 object keyed by a generated UUID.
func (s *S3Store) Put(ctx context.Context, filename string, data io.Reader, meta Metadata) (string, error) {
	id := uuid.New().String()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(s3KeyPrefix + id),
		Body:     data,
		Metadata: encodeS3Metadata(filename, meta),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", filename, err)
	}
	return id, nil
}

// Get reads an artifact's content and descriptor.
func (s *S3Store) Get(ctx context.Context, id string) ([]byte, *Artifact, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3KeyPrefix + id),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("s3 get %s: %w", id, err)
	}
	defer func() {
		_ = out.Body.Close()
	}()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("s3 read %s: %w", id, err)
	}

	artifact := Artifact{
		ID:       id,
		Length:   int64(len(data)),
		Metadata: decodeS3Metadata(out.Metadata),
	}
	artifact.Filename = out.Metadata["filename"]
	if out.LastModified != nil {
		artifact.UploadedAt = *out.LastModified
	}
	return data, &artifact, nil
}

// Query lists artifacts matching the metadata filter. Each candidate
// object requires a HeadObject call to read its metadata.
func (s *S3Store) Query(ctx context.Context, q Query) ([]Artifact, error) {
	var artifacts []Artifact
	var continuation *string

	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s3KeyPrefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 list: %w", err)
		}

		for _, obj := range page.Contents {
			head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			})
			if err != nil {
				return nil, fmt.Errorf("s3 head %s: %w", aws.ToString(obj.Key), err)
			}

			meta := decodeS3Metadata(head.Metadata)
			if q.OwnerID != "" && meta.OwnerID != q.OwnerID {
				continue
			}
			if q.Kind != "" && meta.Kind != q.Kind {
				continue
			}

			artifact := Artifact{
				ID:       strings.TrimPrefix(aws.ToString(obj.Key), s3KeyPrefix),
				Filename: head.Metadata["filename"],
				Length:   aws.ToInt64(obj.Size),
				Metadata: meta,
			}
			if obj.LastModified != nil {
				artifact.UploadedAt = *obj.LastModified
			}
			artifacts = append(artifacts, artifact)
		}

		if !aws.ToBool(page.IsTruncated) {
			break
		}
		continuation = page.NextContinuationToken
	}

	if q.NewestFirst {
		sort.Slice(artifacts, func(i, j int) bool {
			return artifacts[i].UploadedAt.After(artifacts[j].UploadedAt)
		})
	}
	return artifacts, nil
}

// Delete removes an artifact object.
func (s *S3Store) Delete(ctx context.Context, id string) error {
	// S3 deletes are idempotent, so probe first to honor ErrNotFound
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3KeyPrefix + id),
	})
	if err != nil {
		if isS3NotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("s3 head %s: %w", id, err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s3KeyPrefix + id),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", id, err)
	}
	return nil
}

func encodeS3Metadata(filename string, meta Metadata) map[string]string {
	out := map[string]string{
		"filename": filename,
		"user-id":  meta.OwnerID,
		"type":     string(meta.Kind),
	}
	if meta.CompanyName != "" {
		out["company-name"] = meta.CompanyName
	}
	if meta.Score != 0 {
		out["score"] = strconv.Itoa(meta.Score)
	}
	if meta.ProjectID != "" {
		out["project-id"] = meta.ProjectID
	}
	return out
}

func decodeS3Metadata(raw map[string]string) Metadata {
	meta := Metadata{
		OwnerID:     raw["user-id"],
		Kind:        Kind(raw["type"]),
		CompanyName: raw["company-name"],
		ProjectID:   raw["project-id"],
	}
	if score, err := strconv.Atoi(raw["score"]); err == nil {
		meta.Score = score
	}
	return meta
}

func isS3NotFound(err error) bool {
	var noKey *s3types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *s3types.NotFound
	return errors.As(err, &notFound)
}
