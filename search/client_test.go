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

package search

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockHTTPClient struct {
	lastRequest *http.Request
	status      int
	body        string
	err         error
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.status,
		Body:       io.NopCloser(strings.NewReader(m.body)),
	}, nil
}

func newTestClient(t *testing.T, mock *mockHTTPClient) *Client {
	t.Helper()
	client, err := NewClient(Config{
		APIKey:   "test-key",
		EngineID: "test-cx",
		Client:   mock,
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{EngineID: "cx"})
	assert.Error(t, err)

	_, err = NewClient(Config{APIKey: "key"})
	assert.Error(t, err)
}

func TestSearchFormatsResults(t *testing.T) {
	mock := &mockHTTPClient{
		status: http.StatusOK,
		body: `{"items": [
			{"title": "Austin Development Services", "link": "https://austintexas.gov/permits", "snippet": "Solar permit requirements."},
			{"title": "Texas PUC", "link": "https://puc.texas.gov", "snippet": "Statewide interconnection rules."}
		]}`,
	}
	client := newTestClient(t, mock)

	out, err := client.Search(context.Background(), "Austin solar permit rules")
	require.NoError(t, err)

	assert.Contains(t, out, "Austin Development Services: Solar permit requirements. (https://austintexas.gov/permits)")
	assert.Contains(t, out, "Texas PUC")

	// Query parameters carry the credentials and the query.
	q := mock.lastRequest.URL.Query()
	assert.Equal(t, "test-key", q.Get("key"))
	assert.Equal(t, "test-cx", q.Get("cx"))
	assert.Equal(t, "Austin solar permit rules", q.Get("q"))
	assert.Equal(t, "5", q.Get("num"))
}

func TestSearchNoResults(t *testing.T) {
	client := newTestClient(t, &mockHTTPClient{status: http.StatusOK, body: `{}`})

	out, err := client.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Equal(t, "No results found.", out)
}

func TestSearchErrorStatus(t *testing.T) {
	client := newTestClient(t, &mockHTTPClient{status: http.StatusForbidden, body: `{"error": {}}`})

	_, err := client.Search(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSearchMalformedBody(t *testing.T) {
	client := newTestClient(t, &mockHTTPClient{status: http.StatusOK, body: "not json"})

	_, err := client.Search(context.Background(), "q")
	assert.Error(t, err)
}
