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
	"encoding/json"
	"fmt"
	"strings"

	"complia/platform/llm"
	"complia/platform/shared/logger"
)

// maxToolRounds bounds the tool-call loop so a model that keeps asking
// for tools cannot spin forever.
const maxToolRounds = 4

// Tool is a named capability a sub-agent may offer the model during an
// invocation, such as a web search or document lookup.
type Tool struct {
	Name        string
	Description string
	Call        func(ctx context.Context, input string) (string, error)
}

// InvokeRequest carries one templated prompt to the model backend.
type InvokeRequest struct {
	Agent       string
	Prompt      string
	Instruction string
	UserID      string
	SessionID   string
	Tools       []Tool
}

// Invoker sends a prompt/instruction pair to a model backend and
// returns its raw text reply.
type Invoker interface {
	Invoke(ctx context.Context, req InvokeRequest) (string, error)
}

// LLMInvoker implements Invoker on top of an llm.Provider. Transient
// provider failures are retried with backoff; tool requests from the
// model are served in a bounded loop.
type LLMInvoker struct {
	provider llm.Provider
	sessions *SessionService
	retry    llm.RetryConfig
	log      *logger.Logger
}

// NewLLMInvoker creates an invoker over the given provider.
func NewLLMInvoker(provider llm.Provider, sessions *SessionService) *LLMInvoker {
	return &LLMInvoker{
		provider: provider,
		sessions: sessions,
		retry:    llm.DefaultRetryConfig(),
		log:      logger.New("agent-invoker"),
	}
}

// Invoke renders the request against the provider and returns the raw
// model text. When the request carries tools, the model may reply with
// a tool call; the observation is fed back and the model is re-invoked,
// up to maxToolRounds times.
func (inv *LLMInvoker) Invoke(ctx context.Context, req InvokeRequest) (string, error) {
	inv.sessions.Ensure(req.UserID, req.SessionID)

	system := req.Instruction
	if len(req.Tools) > 0 {
		system = system + "\n\n" + toolProtocol(req.Tools)
	}

	prompt := req.Prompt
	for round := 0; round <= maxToolRounds; round++ {
		resp, err := llm.RetryWithBackoff(ctx, inv.retry, func(ctx context.Context) (*llm.CompletionResponse, error) {
			return inv.provider.Complete(ctx, llm.CompletionRequest{
				Prompt:       prompt,
				SystemPrompt: system,
			})
		})
		if err != nil {
			inv.log.Error(req.UserID, "", "agent invocation failed", map[string]interface{}{
				"session_id": req.SessionID,
				"agent":      req.Agent,
				"error":      err.Error(),
			})
			return "", fmt.Errorf("invoke %s: %w", req.Agent, err)
		}

		tool, input, isCall := parseToolCall(resp.Content, req.Tools)
		if !isCall {
			return resp.Content, nil
		}

		observation, err := tool.Call(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			observation = fmt.Sprintf("tool %s failed: %v", tool.Name, err)
		}

		inv.log.Info(req.UserID, "", "agent tool call", map[string]interface{}{
			"session_id": req.SessionID,
			"agent":      req.Agent,
			"tool":       tool.Name,
		})
		prompt = fmt.Sprintf("%s\n\nObservation from tool %q:\n%s\n\nContinue with the original task using this observation.",
			prompt, tool.Name, observation)
	}

	return "", fmt.Errorf("invoke %s: tool loop exceeded %d rounds", req.Agent, maxToolRounds)
}

// toolProtocol describes the available tools and the call format the
// model must use to request one.
func toolProtocol(tools []Tool) string {
	var b strings.Builder
	b.WriteString("You have access to the following tools:\n")
	for _, t := range tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
	}
	b.WriteString("\nTo use a tool, reply with only this JSON object and nothing else:\n")
	b.WriteString("{\"tool\": \"<tool name>\", \"input\": \"<tool input>\"}\n")
	b.WriteString("When you have everything you need, reply with your final answer instead.")
	return b.String()
}

// parseToolCall checks whether a reply is a tool request for one of the
// offered tools.
func parseToolCall(reply string, tools []Tool) (Tool, string, bool) {
	if len(tools) == 0 {
		return Tool{}, "", false
	}

	ex := ExtractJSON(reply)
	if ex.Status != ExtractOK || len(ex.Object) != 2 {
		return Tool{}, "", false
	}

	var name, input string
	if err := json.Unmarshal(ex.Object["tool"], &name); err != nil {
		return Tool{}, "", false
	}
	if err := json.Unmarshal(ex.Object["input"], &input); err != nil {
		return Tool{}, "", false
	}

	for _, t := range tools {
		if t.Name == name {
			return t, input, true
		}
	}
	return Tool{}, "", false
}
