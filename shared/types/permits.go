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

package types

// ProjectSummary is the structured intent extracted from a free-text
// project description. No fixed schema is enforced here; the shape is
// defined by the intent-extractor prompt and validated only at the
// boundary where downstream agents consume it.
type ProjectSummary map[string]any

// RequiredDocument is one general permit document requirement produced
// by the policy expert.
type RequiredDocument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Authority   string `json:"authority,omitempty"`
}

// RegionSpecificRule is one location-dependent rule produced by the
// location agent from its web-search results.
type RegionSpecificRule struct {
	Rule      string `json:"rule"`
	Authority string `json:"authority,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

// ChecklistItem is one entry of the final pre-submission checklist.
type ChecklistItem struct {
	Item     string `json:"item"`
	Details  string `json:"details,omitempty"`
	Required bool   `json:"required"`
}

// PermitAnalysis is the assembled response of the permit pipeline.
type PermitAnalysis struct {
	ProjectSummary         ProjectSummary       `json:"project_summary"`
	RequiredDocuments      []RequiredDocument   `json:"required_documents"`
	RegionSpecificRules    []RegionSpecificRule `json:"region_specific_rules"`
	PreSubmissionChecklist []ChecklistItem      `json:"pre_submission_checklist"`
}
