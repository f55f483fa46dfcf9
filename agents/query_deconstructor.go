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
)

const queryDeconstructorInstruction = "Deconstruct the user's complex query into a list of simple, researchable questions."

// QueryDeconstructor breaks a free-text regulatory question into
// independently researchable sub-questions.
type QueryDeconstructor struct {
	invoker Invoker
	prompt  string
}

// NewQueryDeconstructor creates the query deconstruction sub-agent.
func NewQueryDeconstructor(invoker Invoker) *QueryDeconstructor {
	return &QueryDeconstructor{
		invoker: invoker,
		prompt:  mustPrompt("query_deconstructor.txt"),
	}
}

// Deconstruct returns the sub-questions for a query. A reply that
// parses but names no sub-questions yields an empty list.
func (a *QueryDeconstructor) Deconstruct(ctx context.Context, query, userID, sessionID string) ([]string, error) {
	prompt := renderPrompt(a.prompt, map[string]string{
		"user_query": query,
	})

	raw, err := a.invoker.Invoke(ctx, InvokeRequest{
		Agent:       "query_deconstructor",
		Prompt:      prompt,
		Instruction: queryDeconstructorInstruction,
		UserID:      userID,
		SessionID:   sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("query deconstruction: %w", err)
	}

	ex := ExtractJSON(raw)
	if ex.Status != ExtractOK {
		return nil, &ParseError{Agent: "query_deconstructor", Raw: ex.Raw}
	}

	subQuestions, _ := FieldAs[[]string](ex, "sub_questions")
	return subQuestions, nil
}
