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
	"strings"

	"complia/platform/shared/types"
)

const complianceScannerInstruction = "You are an AI Compliance Analyst. Follow the prompt and return only the requested JSON."

// ScanParams carries everything the scanner needs for one audit pass.
type ScanParams struct {
	AuditType       string
	CompanyName     string
	AuditScope      string
	ControlFamilies []string
	DocumentIDs     []string
	UserID          string
	SessionID       string
	ProjectID       string
}

// ScanResult is one element of the scanner's issue stream. Exactly one
// of Issue and Err is meaningful.
type ScanResult struct {
	Issue types.Issue
	Err   error
}

// ComplianceScanner discovers compliance gaps across a set of stored
// documents. It makes one model call per scan and re-emits the
// discovered issues one at a time so consumers can start follow-up work
// before the full batch is materialized.
type ComplianceScanner struct {
	invoker Invoker
	prompt  string
	tools   []Tool
}

// NewComplianceScanner creates the scanning sub-agent. The document
// tool lets the model read the documents under audit.
func NewComplianceScanner(invoker Invoker, tools ...Tool) *ComplianceScanner {
	return &ComplianceScanner{
		invoker: invoker,
		prompt:  mustPrompt("compliance_scanner.txt"),
		tools:   tools,
	}
}

// StreamIssues runs one scan and returns a channel of discovered
// issues in the order the model reported them. The channel is closed
// when the batch is exhausted or the context is cancelled. Scan-level
// failures arrive as a single ScanResult with Err set.
func (a *ComplianceScanner) StreamIssues(ctx context.Context, p ScanParams) <-chan ScanResult {
	out := make(chan ScanResult)

	go func() {
		defer close(out)

		prompt := renderPrompt(a.prompt, map[string]string{
			"audit_type":       p.AuditType,
			"company_name":     p.CompanyName,
			"audit_scope":      p.AuditScope,
			"control_families": strings.Join(p.ControlFamilies, ", "),
			"doc_ids":          strings.Join(p.DocumentIDs, ", "),
		})

		raw, err := a.invoker.Invoke(ctx, InvokeRequest{
			Agent:       "compliance_scanner",
			Prompt:      prompt,
			Instruction: complianceScannerInstruction,
			UserID:      p.UserID,
			SessionID:   p.SessionID,
			Tools:       a.tools,
		})
		if err != nil {
			emitScanResult(ctx, out, ScanResult{Err: err})
			return
		}

		ex := ExtractJSON(raw)
		if ex.Status != ExtractOK {
			emitScanResult(ctx, out, ScanResult{Err: &ParseError{Agent: "compliance_scanner", Raw: ex.Raw}})
			return
		}

		issues, _ := FieldAs[[]types.Issue](ex, "issues")
		for _, issue := range issues {
			if !emitScanResult(ctx, out, ScanResult{Issue: issue}) {
				return
			}
		}
	}()

	return out
}

func emitScanResult(ctx context.Context, out chan<- ScanResult, r ScanResult) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}
