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

// Package types provides shared type definitions used across Complia components.
// This file defines the compliance-audit data model: issues, severities,
// report sections, and audit results.
package types

// Severity is the ordinal rating of a compliance issue.
// Ordering for report coloring is High > Medium > Low > None.
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
	SeverityNone   Severity = "None"
)

// severityWeights maps each known severity to its score penalty.
// Unknown severities fall back to the Low weight so a malformed LLM
// response can never break score aggregation.
var severityWeights = map[Severity]int{
	SeverityHigh:   30,
	SeverityMedium: 10,
	SeverityLow:    5,
}

// Weight returns the score penalty for this severity.
// Unknown severities default to the Low weight (5).
func (s Severity) Weight() int {
	if w, ok := severityWeights[s]; ok {
		return w
	}
	return severityWeights[SeverityLow]
}

// rank returns the ordering position used by Max. Higher is more severe.
func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Max returns the more severe of two severities.
func (s Severity) Max(other Severity) Severity {
	if other.rank() > s.rank() {
		return other
	}
	return s
}

// String returns the string representation of the Severity.
func (s Severity) String() string {
	return string(s)
}

// Issue is a single compliance gap discovered by the scanner.
// The recommendation is attached exactly once by the remediation
// suggestor; an issue is never mutated after aggregation.
type Issue struct {
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// ReportSection is one human-readable block of the audit report.
// Sections are derived deterministically from issues and are immutable
// once created.
type ReportSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Flagged bool   `json:"flagged"`
}

// AuditResult is the assembled outcome of a full audit pipeline run.
type AuditResult struct {
	Score           int             `json:"score"`
	OverallSeverity Severity        `json:"overall_severity"`
	Issues          []Issue         `json:"issues"`
	ReportSections  []ReportSection `json:"report_sections"`
	ArtifactURL     string          `json:"pdf_url"`
}

// AuditHistoryItem is the summary projection of one persisted audit report.
type AuditHistoryItem struct {
	AuditID     string `json:"audit_id"`
	CompanyName string `json:"company_name"`
	RunDate     string `json:"run_date"`
	Score       int    `json:"score"`
	ArtifactURL string `json:"pdf_url"`
	ProjectID   string `json:"project_id,omitempty"`
}
