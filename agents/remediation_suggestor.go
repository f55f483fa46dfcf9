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
	"fmt"

	"complia/platform/shared/types"
)

const remediationSuggestorInstruction = "You are an AI Remediation Specialist. Follow the prompt and return only the requested JSON."

// RemediationSuggestor proposes a concrete fix for a single compliance
// issue.
type RemediationSuggestor struct {
	invoker Invoker
	prompt  string
}

// NewRemediationSuggestor creates the remediation sub-agent.
func NewRemediationSuggestor(invoker Invoker) *RemediationSuggestor {
	return &RemediationSuggestor{
		invoker: invoker,
		prompt:  mustPrompt("remediation_suggestor.txt"),
	}
}

// Recommend returns a remediation recommendation for the issue. The
// caller decides how to degrade when this fails; sibling lookups are
// never affected.
func (a *RemediationSuggestor) Recommend(ctx context.Context, issue types.Issue, userID, sessionID string) (string, error) {
	prompt := renderPrompt(a.prompt, map[string]string{
		"severity":    issue.Severity.String(),
		"description": issue.Description,
	})

	raw, err := a.invoker.Invoke(ctx, InvokeRequest{
		Agent:       "remediation_suggestor",
		Prompt:      prompt,
		Instruction: remediationSuggestorInstruction,
		UserID:      userID,
		SessionID:   sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("remediation: %w", err)
	}

	ex := ExtractJSON(raw)
	if ex.Status != ExtractOK {
		return "", &ParseError{Agent: "remediation_suggestor", Raw: ex.Raw}
	}

	recommendation, ok := FieldAs[string](ex, "recommendation")
	if !ok || recommendation == "" {
		return "", &ParseError{Agent: "remediation_suggestor", Raw: ex.Raw}
	}
	return recommendation, nil
}
