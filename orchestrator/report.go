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

package orchestrator

import (
	"fmt"

	"complia/platform/shared/types"
)

// AssembleReport folds a finished issue collection into a score, an
// overall severity, and the report sections. Pure: deterministic for a
// given issue ordering, no I/O.
//
// Scoring starts at 100 and subtracts each issue's severity weight,
// flooring at 0. Overall severity is the maximum severity present and
// is used only for report coloring.
func AssembleReport(issues []types.Issue) (int, types.Severity, []types.ReportSection) {
	score := 100
	overall := types.SeverityNone
	for _, issue := range issues {
		score -= issue.Severity.Weight()
		overall = overall.Max(issue.Severity)
	}
	if score < 0 {
		score = 0
	}

	sections := make([]types.ReportSection, 0, len(issues)+1)
	for _, issue := range issues {
		description := issue.Description
		if description == "" {
			description = "N/A"
		}
		recommendation := issue.Recommendation
		if recommendation == "" {
			recommendation = "N/A"
		}
		sections = append(sections, types.ReportSection{
			Title:   fmt.Sprintf("Issue: %s", description),
			Content: fmt.Sprintf("Severity: %s\n\nRecommendation: %s", issue.Severity, recommendation),
			Flagged: true,
		})
	}

	if len(issues) == 0 {
		sections = append(sections, types.ReportSection{
			Title:   "No Compliance Issues Found",
			Content: "Based on the provided documents and control families, no compliance gaps were identified.",
			Flagged: false,
		})
	}

	return score, overall, sections
}
