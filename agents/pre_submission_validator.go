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

const preSubmissionValidatorInstruction = "You are an AI Pre-Submission Validator. Your job is to create a final checklist for a user."

// PreSubmissionValidator folds the general and region-specific
// requirements into one actionable checklist.
type PreSubmissionValidator struct {
	invoker Invoker
	prompt  string
}

// NewPreSubmissionValidator creates the checklist sub-agent.
func NewPreSubmissionValidator(invoker Invoker) *PreSubmissionValidator {
	return &PreSubmissionValidator{
		invoker: invoker,
		prompt:  mustPrompt("pre_submission_validator.txt"),
	}
}

// CreateChecklist combines both requirement sets into a pre-submission
// checklist.
func (a *PreSubmissionValidator) CreateChecklist(ctx context.Context, documents []types.RequiredDocument, rules []types.RegionSpecificRule, userID, sessionID string) ([]types.ChecklistItem, error) {
	documentsJSON, err := json.MarshalIndent(documents, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("validator: encode documents: %w", err)
	}
	rulesJSON, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("validator: encode rules: %w", err)
	}

	prompt := renderPrompt(a.prompt, map[string]string{
		"required_documents":    string(documentsJSON),
		"region_specific_rules": string(rulesJSON),
	})

	raw, err := a.invoker.Invoke(ctx, InvokeRequest{
		Agent:       "pre_submission_validator",
		Prompt:      prompt,
		Instruction: preSubmissionValidatorInstruction,
		UserID:      userID,
		SessionID:   sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}

	ex := ExtractJSON(raw)
	if ex.Status != ExtractOK {
		return nil, &ParseError{Agent: "pre_submission_validator", Raw: ex.Raw}
	}

	checklist, _ := FieldAs[[]types.ChecklistItem](ex, "pre_submission_checklist")
	return checklist, nil
}
