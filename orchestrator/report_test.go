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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complia/platform/shared/types"
)

func TestAssembleReportScoring(t *testing.T) {
	tests := []struct {
		name        string
		issues      []types.Issue
		wantScore   int
		wantOverall types.Severity
	}{
		{
			name:        "empty",
			issues:      nil,
			wantScore:   100,
			wantOverall: types.SeverityNone,
		},
		{
			name: "one of each severity",
			issues: []types.Issue{
				{Severity: types.SeverityHigh, Description: "a"},
				{Severity: types.SeverityMedium, Description: "b"},
				{Severity: types.SeverityLow, Description: "c"},
			},
			wantScore:   55,
			wantOverall: types.SeverityHigh,
		},
		{
			name: "unknown severity weighs like low",
			issues: []types.Issue{
				{Severity: "Critical", Description: "a"},
			},
			wantScore:   95,
			wantOverall: types.SeverityNone,
		},
		{
			name: "score floors at zero",
			issues: []types.Issue{
				{Severity: types.SeverityHigh, Description: "a"},
				{Severity: types.SeverityHigh, Description: "b"},
				{Severity: types.SeverityHigh, Description: "c"},
				{Severity: types.SeverityHigh, Description: "d"},
			},
			wantScore:   0,
			wantOverall: types.SeverityHigh,
		},
		{
			name: "medium dominates low",
			issues: []types.Issue{
				{Severity: types.SeverityLow, Description: "a"},
				{Severity: types.SeverityMedium, Description: "b"},
			},
			wantScore:   85,
			wantOverall: types.SeverityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, overall, sections := AssembleReport(tt.issues)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantOverall, overall)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
			if len(tt.issues) == 0 {
				require.Len(t, sections, 1)
				assert.False(t, sections[0].Flagged)
			} else {
				assert.Len(t, sections, len(tt.issues))
			}
		})
	}
}

func TestAssembleReportSections(t *testing.T) {
	issues := []types.Issue{
		{Severity: types.SeverityHigh, Description: "No access reviews", Recommendation: "Review quarterly"},
		{Severity: types.SeverityLow, Description: "Stale policy"},
	}

	_, _, sections := AssembleReport(issues)
	require.Len(t, sections, 2)

	assert.Equal(t, "Issue: No access reviews", sections[0].Title)
	assert.Contains(t, sections[0].Content, "Severity: High")
	assert.Contains(t, sections[0].Content, "Recommendation: Review quarterly")
	assert.True(t, sections[0].Flagged)

	// Missing recommendation shows as N/A
	assert.Contains(t, sections[1].Content, "Recommendation: N/A")
}

func TestAssembleReportNoIssuesSection(t *testing.T) {
	score, overall, sections := AssembleReport(nil)

	assert.Equal(t, 100, score)
	assert.Equal(t, types.SeverityNone, overall)
	require.Len(t, sections, 1)
	assert.Equal(t, "No Compliance Issues Found", sections[0].Title)
	assert.False(t, sections[0].Flagged)
}

func TestAssembleReportDeterministic(t *testing.T) {
	issues := []types.Issue{
		{Severity: types.SeverityMedium, Description: "b"},
		{Severity: types.SeverityHigh, Description: "a"},
	}

	score1, overall1, sections1 := AssembleReport(issues)
	score2, overall2, sections2 := AssembleReport(issues)

	assert.Equal(t, score1, score2)
	assert.Equal(t, overall1, overall2)
	assert.Equal(t, sections1, sections2)
}
