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
	"strings"

	"complia/platform/shared/types"
)

const regulationFinderInstruction = "For each question, perform a targeted web search using the provided tools and return the findings."

// RegulationFinder researches a set of sub-questions against official
// sources using a web-search tool.
type RegulationFinder struct {
	invoker Invoker
	prompt  string
	tools   []Tool
}

// NewRegulationFinder creates the regulatory research sub-agent.
func NewRegulationFinder(invoker Invoker, tools ...Tool) *RegulationFinder {
	return &RegulationFinder{
		invoker: invoker,
		prompt:  mustPrompt("regulation_finder.txt"),
		tools:   tools,
	}
}

// FindRegulations returns one or more findings for the sub-question
// set.
func (a *RegulationFinder) FindRegulations(ctx context.Context, subQuestions []string, userID, sessionID string) ([]types.Finding, error) {
	prompt := renderPrompt(a.prompt, map[string]string{
		"sub_questions": strings.Join(subQuestions, "\n- "),
	})

	raw, err := a.invoker.Invoke(ctx, InvokeRequest{
		Agent:       "regulation_finder",
		Prompt:      prompt,
		Instruction: regulationFinderInstruction,
		UserID:      userID,
		SessionID:   sessionID,
		Tools:       a.tools,
	})
	if err != nil {
		return nil, fmt.Errorf("regulation finder: %w", err)
	}

	ex := ExtractJSON(raw)
	if ex.Status != ExtractOK {
		return nil, &ParseError{Agent: "regulation_finder", Raw: ex.Raw}
	}

	findings, _ := FieldAs[[]types.Finding](ex, "results")
	return findings, nil
}
