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
Package orchestrator coordinates the sub-agent pipelines.

Three orchestrators cover the product surface:

  - AuditOrchestrator uploads evidence documents concurrently, consumes
    the compliance scanner's issue stream, fans out one remediation
    request per issue as it arrives, and assembles a scored PDF report.
    Remediation results join in discovery order regardless of
    completion order; a failed remediation degrades to a placeholder
    recommendation instead of aborting the audit.

  - PermitOrchestrator extracts structured intent from a free-text
    project description, then resolves general document requirements
    and region-specific rules in parallel before synthesizing a
    pre-submission checklist. Intent extraction is the gate: its
    failure short-circuits the whole request.

  - ExplanationOrchestrator deconstructs a regulatory question into
    sub-questions, researches them, and synthesizes an answer with the
    findings attached as sources. Empty or failed stages short-circuit
    with user-facing messages rather than errors.

Scoring is pure and lives in AssembleReport: 100 minus the summed
severity weights, floored at zero, with exactly one report section per
issue (or a single unflagged section for a clean audit).
*/
package orchestrator
