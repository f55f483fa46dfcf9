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

const locationAgentInstruction = "You are an AI Location Specialist. You must use your search tool to find official government websites."

// LocationAgent finds rules specific to a project's location, using a
// web-search tool to consult official sources.
type LocationAgent struct {
	invoker Invoker
	prompt  string
	tools   []Tool
}

// NewLocationAgent creates the region-specific-rule sub-agent. Tools
// are offered to the model on every invocation.
func NewLocationAgent(invoker Invoker, tools ...Tool) *LocationAgent {
	return &LocationAgent{
		invoker: invoker,
		prompt:  mustPrompt("location_agent.txt"),
		tools:   tools,
	}
}

// RegionalRules returns the location-specific requirements for the
// summarized project.
func (a *LocationAgent) RegionalRules(ctx context.Context, summary types.ProjectSummary, location, userID, sessionID string) ([]types.RegionSpecificRule, error) {
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("location agent: encode summary: %w", err)
	}

	prompt := renderPrompt(a.prompt, map[string]string{
		"project_summary": string(summaryJSON),
		"location":        location,
	})

	raw, err := a.invoker.Invoke(ctx, InvokeRequest{
		Agent:       "location_agent",
		Prompt:      prompt,
		Instruction: locationAgentInstruction,
		UserID:      userID,
		SessionID:   sessionID,
		Tools:       a.tools,
	})
	if err != nil {
		return nil, fmt.Errorf("location agent: %w", err)
	}

	ex := ExtractJSON(raw)
	if ex.Status != ExtractOK {
		return nil, &ParseError{Agent: "location_agent", Raw: ex.Raw}
	}

	rules, _ := FieldAs[[]types.RegionSpecificRule](ex, "region_specific_rules")
	return rules, nil
}
