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

	"complia/platform/shared/types"
)

const policyExpertInstruction = "You are an AI Policy Expert. Your analysis should be general and not consider location."

// PolicyExpert lists the permit documents a project generally requires,
// independent of location.
type PolicyExpert struct {
	invoker Invoker
	prompt  string
}

// NewPolicyExpert creates the general-policy sub-agent.
func NewPolicyExpert(invoker Invoker) *PolicyExpert {
	return &PolicyExpert{
		invoker: invoker,
		prompt:  mustPrompt("policy_expert.txt"),
	}
}

// GeneralRequirements returns the location-independent document
// requirements for the summarized project. A reply that parses but
// names no documents yields an empty list, not an error.
func (a *PolicyExpert) GeneralRequirements(ctx context.Context, summary types.ProjectSummary, userID, sessionID string) ([]types.RequiredDocument, error) {
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("policy expert: encode summary: %w", err)
	}

	prompt := renderPrompt(a.prompt, map[string]string{
		"project_summary": string(summaryJSON),
	})

	raw, err := a.invoker.Invoke(ctx, InvokeRequest{
		Agent:       "policy_expert",
		Prompt:      prompt,
		Instruction: policyExpertInstruction,
		UserID:      userID,
		SessionID:   sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("policy expert: %w", err)
	}

	ex := ExtractJSON(raw)
	if ex.Status != ExtractOK {
		return nil, &ParseError{Agent: "policy_expert", Raw: ex.Raw}
	}

	documents, _ := FieldAs[[]types.RequiredDocument](ex, "required_documents")
	return documents, nil
}
