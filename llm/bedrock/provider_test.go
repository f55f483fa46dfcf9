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

package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complia/platform/llm"
)

// fakeInvokeAPI records the last input and returns a canned output.
type fakeInvokeAPI struct {
	lastInput *bedrockruntime.InvokeModelInput
	output    *bedrockruntime.InvokeModelOutput
	err       error
}

func (f *fakeInvokeAPI) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.lastInput = params
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func anthropicOutput(text string) *bedrockruntime.InvokeModelOutput {
	body, _ := json.Marshal(map[string]any{
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 20, "output_tokens": 8},
	})
	return &bedrockruntime.InvokeModelOutput{Body: body}
}

func TestCompleteAnthropicModel(t *testing.T) {
	fake := &fakeInvokeAPI{output: anthropicOutput("Bedrock says hi")}
	p := NewProviderWithClient(fake, "", "")

	assert.Equal(t, "bedrock", p.Name())
	assert.Equal(t, llm.ProviderTypeBedrock, p.Type())

	resp, err := p.Complete(context.Background(), llm.CompletionRequest{
		Prompt:       "Say hi",
		SystemPrompt: "Be terse",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bedrock says hi", resp.Content)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, DefaultModel, resp.Model)
	assert.Equal(t, 28, resp.Usage.TotalTokens)
	assert.True(t, p.IsHealthy())

	// Request body carries the system prompt and user message
	var sent map[string]any
	require.NoError(t, json.Unmarshal(fake.lastInput.Body, &sent))
	assert.Equal(t, "bedrock-2023-05-31", sent["anthropic_version"])
	assert.Equal(t, "Be terse", sent["system"])
	messages := sent["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "Say hi", messages[0].(map[string]any)["content"])
}

func TestCompleteTitanModel(t *testing.T) {
	body, _ := json.Marshal(map[string]any{
		"inputTextTokenCount": 15,
		"results": []map[string]any{
			{"tokenCount": 6, "outputText": "Titan reply", "completionReason": "FINISH"},
		},
	})
	fake := &fakeInvokeAPI{output: &bedrockruntime.InvokeModelOutput{Body: body}}
	p := NewProviderWithClient(fake, "us-west-2", "amazon.titan-text-express-v1")

	resp, err := p.Complete(context.Background(), llm.CompletionRequest{Prompt: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "Titan reply", resp.Content)
	assert.Equal(t, "finish", resp.StopReason)
	assert.Equal(t, 21, resp.Usage.TotalTokens)
}

func TestCompleteInvokeErrorMarksUnhealthy(t *testing.T) {
	fake := &fakeInvokeAPI{err: errors.New("throttled")}
	p := NewProviderWithClient(fake, "", "")

	_, err := p.Complete(context.Background(), llm.CompletionRequest{Prompt: "hello"})
	require.Error(t, err)
	assert.False(t, p.IsHealthy())
}

func TestCompleteUnsupportedModelFamily(t *testing.T) {
	fake := &fakeInvokeAPI{}
	p := NewProviderWithClient(fake, "", "cohere.command-text-v14")

	_, err := p.Complete(context.Background(), llm.CompletionRequest{Prompt: "hello"})
	require.Error(t, err)
	assert.Nil(t, fake.lastInput)
}

func TestDetectModelFamily(t *testing.T) {
	tests := []struct {
		model, want string
	}{
		{"anthropic.claude-3-5-sonnet-20240620-v1:0", "anthropic"},
		{"amazon.titan-text-express-v1", "amazon"},
		{"meta.llama3-8b-instruct-v1:0", "meta"},
		{"mistral.mistral-7b-instruct-v0:2", "mistral"},
		{"cohere.command-text-v14", "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, detectModelFamily(tt.model))
	}
}
