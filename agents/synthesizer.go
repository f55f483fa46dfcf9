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

const synthesizerInstruction = "Synthesize the research findings into a single, clear answer to the user's original question."

// Synthesizer folds a set of research findings into one plain-language
// answer to the user's original question.
type Synthesizer struct {
	invoker Invoker
	prompt  string
}

// NewSynthesizer creates the synthesis sub-agent.
func NewSynthesizer(invoker Invoker) *Synthesizer {
	return &Synthesizer{
		invoker: invoker,
		prompt:  mustPrompt("synthesizer.txt"),
	}
}

// Synthesize returns a single explanation string covering the findings.
func (a *Synthesizer) Synthesize(ctx context.Context, query string, findings []types.Finding, userID, sessionID string) (string, error) {
	findingsJSON, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("synthesizer: encode findings: %w", err)
	}

	prompt := renderPrompt(a.prompt, map[string]string{
		"user_query":        query,
		"research_findings": string(findingsJSON),
	})

	raw, err := a.invoker.Invoke(ctx, InvokeRequest{
		Agent:       "synthesizer",
		Prompt:      prompt,
		Instruction: synthesizerInstruction,
		UserID:      userID,
		SessionID:   sessionID,
	})
	if err != nil {
		return "", fmt.Errorf("synthesizer: %w", err)
	}

	ex := ExtractJSON(raw)
	if ex.Status != ExtractOK {
		return "", &ParseError{Agent: "synthesizer", Raw: ex.Raw}
	}

	explanation, ok := FieldAs[string](ex, "explanation")
	if !ok || explanation == "" {
		return "", &ParseError{Agent: "synthesizer", Raw: ex.Raw}
	}
	return explanation, nil
}
