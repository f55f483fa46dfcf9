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
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory S3API double.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeS3Object
}

type fakeS3Object struct {
	data     []byte
	metadata map[string]string
	modified time.Time
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeS3Object)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = fakeS3Object{
		data:     data,
		metadata: in.Metadata,
		modified: time.Now(),
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:         io.NopCloser(bytes.NewReader(obj.data)),
		Metadata:     obj.metadata,
		LastModified: aws.Time(obj.modified),
	}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NotFound{}
	}
	return &s3.HeadObjectOutput{Metadata: obj.metadata}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var contents []s3types.Object
	for key, obj := range f.objects {
		if !strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			continue
		}
		contents = append(contents, s3types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(obj.data))),
			LastModified: aws.Time(obj.modified),
		})
	}
	return &s3.ListObjectsV2Output{
		Contents:    contents,
		IsTruncated: aws.Bool(false),
	}, nil
}

func TestS3StoreRoundTrip(t *testing.T) {
	store := NewS3StoreWithClient(newFakeS3(), "test-bucket")
	ctx := context.Background()

	id, err := store.Put(ctx, "report.pdf", strings.NewReader("pdf bytes"),
		Metadata{OwnerID: "u1", Kind: KindGenerated, CompanyName: "Acme", Score: 70, ProjectID: "p1"})
	require.NoError(t, err)

	data, artifact, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), data)
	assert.Equal(t, "report.pdf", artifact.Filename)
	assert.Equal(t, "u1", artifact.Metadata.OwnerID)
	assert.Equal(t, KindGenerated, artifact.Metadata.Kind)
	assert.Equal(t, "Acme", artifact.Metadata.CompanyName)
	assert.Equal(t, 70, artifact.Metadata.Score)
	assert.Equal(t, "p1", artifact.Metadata.ProjectID)
}

func TestS3StoreGetMissing(t *testing.T) {
	store := NewS3StoreWithClient(newFakeS3(), "test-bucket")

	_, _, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3StoreQueryByOwnerAndKind(t *testing.T) {
	store := NewS3StoreWithClient(newFakeS3(), "test-bucket")
	ctx := context.Background()

	_, err := store.Put(ctx, "a.pdf", strings.NewReader("a"), Metadata{OwnerID: "u1", Kind: KindUploaded})
	require.NoError(t, err)
	_, err = store.Put(ctx, "b.pdf", strings.NewReader("b"), Metadata{OwnerID: "u1", Kind: KindGenerated})
	require.NoError(t, err)
	_, err = store.Put(ctx, "c.pdf", strings.NewReader("c"), Metadata{OwnerID: "u2", Kind: KindGenerated})
	require.NoError(t, err)

	items, err := store.Query(ctx, Query{OwnerID: "u1", Kind: KindGenerated})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b.pdf", items[0].Filename)
}

func TestS3StoreDelete(t *testing.T) {
	store := NewS3StoreWithClient(newFakeS3(), "test-bucket")
	ctx := context.Background()

	id, err := store.Put(ctx, "a.pdf", strings.NewReader("a"), Metadata{OwnerID: "u1", Kind: KindUploaded})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))
	assert.ErrorIs(t, store.Delete(ctx, id), ErrNotFound)
}
