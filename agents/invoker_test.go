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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complia/platform/llm"
)

// scriptedProvider returns canned completions in order.
type scriptedProvider struct {
	replies []string
	prompts []string
	err     error
}

func (p *scriptedProvider) Name() string               { return "scripted" }
func (p *scriptedProvider) Type() llm.ProviderType     { return llm.ProviderTypeCustom }
func (p *scriptedProvider) IsHealthy() bool            { return true }
func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.prompts = append(p.prompts, req.Prompt)
	if p.err != nil {
		return nil, p.err
	}
	if len(p.replies) == 0 {
		return &llm.CompletionResponse{Content: ""}, nil
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return &llm.CompletionResponse{Content: reply}, nil
}

func newTestInvoker(provider llm.Provider) *LLMInvoker {
	inv := NewLLMInvoker(provider, NewSessionService())
	inv.retry = llm.RetryConfig{MaxRetries: 0, RetryIf: llm.DefaultRetryable}
	return inv
}

func TestInvokeReturnsModelText(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"plain answer"}}
	inv := newTestInvoker(provider)

	out, err := inv.Invoke(context.Background(), InvokeRequest{
		Agent:     "test_agent",
		Prompt:    "do the thing",
		UserID:    "u1",
		SessionID: "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, "plain answer", out)
}

func TestInvokeRegistersSession(t *testing.T) {
	provider := &scriptedProvider{replies: []string{"ok"}}
	sessions := NewSessionService()
	inv := NewLLMInvoker(provider, sessions)
	inv.retry = llm.RetryConfig{MaxRetries: 0}

	_, err := inv.Invoke(context.Background(), InvokeRequest{
		Agent: "a", Prompt: "p", UserID: "u1", SessionID: "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sessions.Count())
}

func TestInvokeRunsToolAndContinues(t *testing.T) {
	searched := ""
	tool := NewSearchTool(func(ctx context.Context, query string) (string, error) {
		searched = query
		return "search results here", nil
	})

	provider := &scriptedProvider{replies: []string{
		`{"tool": "web_search", "input": "austin solar rules"}`,
		`{"region_specific_rules": []}`,
	}}
	inv := newTestInvoker(provider)

	out, err := inv.Invoke(context.Background(), InvokeRequest{
		Agent:     "location_agent",
		Prompt:    "find the rules",
		UserID:    "u1",
		SessionID: "s1",
		Tools:     []Tool{tool},
	})
	require.NoError(t, err)

	assert.Equal(t, "austin solar rules", searched)
	assert.Equal(t, `{"region_specific_rules": []}`, out)

	// Second round carries the observation back to the model
	require.Len(t, provider.prompts, 2)
	assert.Contains(t, provider.prompts[1], "search results here")
}

func TestInvokeToolLoopBounded(t *testing.T) {
	tool := NewSearchTool(func(ctx context.Context, query string) (string, error) {
		return "more results", nil
	})

	// Model asks for the tool on every round
	replies := make([]string, maxToolRounds+2)
	for i := range replies {
		replies[i] = `{"tool": "web_search", "input": "again"}`
	}
	provider := &scriptedProvider{replies: replies}
	inv := newTestInvoker(provider)

	_, err := inv.Invoke(context.Background(), InvokeRequest{
		Agent: "a", Prompt: "p", UserID: "u", SessionID: "s",
		Tools: []Tool{tool},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool loop")
}

func TestInvokeIgnoresUnknownTool(t *testing.T) {
	tool := NewSearchTool(func(ctx context.Context, query string) (string, error) {
		t.Fatal("tool should not be called")
		return "", nil
	})

	provider := &scriptedProvider{replies: []string{`{"tool": "delete_everything", "input": "x"}`}}
	inv := newTestInvoker(provider)

	out, err := inv.Invoke(context.Background(), InvokeRequest{
		Agent: "a", Prompt: "p", UserID: "u", SessionID: "s",
		Tools: []Tool{tool},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"tool": "delete_everything", "input": "x"}`, out)
}

func TestInvokeProviderError(t *testing.T) {
	provider := &scriptedProvider{err: &llm.APIError{StatusCode: 400, Message: "bad request"}}
	inv := newTestInvoker(provider)

	_, err := inv.Invoke(context.Background(), InvokeRequest{
		Agent: "intent_extractor", Prompt: "p", UserID: "u", SessionID: "s",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intent_extractor")
}

func TestSessionServiceEnsureAndPurge(t *testing.T) {
	s := NewSessionService()

	first := s.Ensure("u1", "s1")
	again := s.Ensure("u1", "s1")
	assert.Same(t, first, again)
	assert.Equal(t, 1, s.Count())

	s.Ensure("u2", "s1")
	assert.Equal(t, 2, s.Count())

	first.LastUsed = time.Now().Add(-2 * time.Hour)
	removed := s.Purge(time.Hour)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Count())
}
