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

const intentExtractorInstruction = "You are an AI assistant that extracts structured data from user descriptions."

// IntentExtractor turns a free-text project description into a
// structured project summary. A failure here short-circuits the permit
// pipeline, so invocation and parse failures surface as errors.
type IntentExtractor struct {
	invoker Invoker
	prompt  string
}

// NewIntentExtractor creates the intent extraction sub-agent.
func NewIntentExtractor(invoker Invoker) *IntentExtractor {
	return &IntentExtractor{
		invoker: invoker,
		prompt:  mustPrompt("intent_extractor.txt"),
	}
}

// ExtractIntent analyzes a project description and returns its
// structured summary.
func (a *IntentExtractor) ExtractIntent(ctx context.Context, projectDescription, userID, sessionID string) (types.ProjectSummary, error) {
	prompt := renderPrompt(a.prompt, map[string]string{
		"project_description": projectDescription,
	})

	raw, err := a.invoker.Invoke(ctx, InvokeRequest{
		Agent:       "intent_extractor",
		Prompt:      prompt,
		Instruction: intentExtractorInstruction,
		UserID:      userID,
		SessionID:   sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("intent extraction: %w", err)
	}

	ex := ExtractJSON(raw)
	if ex.Status != ExtractOK {
		return nil, &ParseError{Agent: "intent_extractor", Raw: ex.Raw}
	}

	summary := make(types.ProjectSummary, len(ex.Object))
	for key, value := range ex.Object {
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			continue
		}
		summary[key] = decoded
	}
	return summary, nil
}
