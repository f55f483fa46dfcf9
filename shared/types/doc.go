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

/*
Package types provides shared type definitions used across Complia components.

# Overview

This package contains the data model that flows between the sub-agents,
the orchestrators, and the API layer. It provides a single source of
truth for shared data structures:

  - Compliance audits: Severity, Issue, ReportSection, AuditResult
  - Permit analysis: ProjectSummary, RequiredDocument, RegionSpecificRule,
    ChecklistItem, PermitAnalysis
  - Regulatory explanations: Finding, Explanation

# Severity Aggregation

Severity drives score aggregation. Every severity maps to a known weight
(High=30, Medium=10, Low=5); unknown severities default to the Low weight
rather than failing aggregation, so a malformed LLM response degrades
instead of breaking a pipeline.

# Thread Safety

All types in this package are value types and are safe for concurrent use.
*/
package types
