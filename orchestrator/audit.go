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
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"complia/platform/agents"
	"complia/platform/report"
	"complia/platform/shared/logger"
	"complia/platform/shared/types"
	"complia/platform/storage"
)

// remediationPlaceholder fills in for an issue whose remediation lookup
// failed. The issue still reaches the report with its discovered state.
const remediationPlaceholder = "No recommendation available."

// Document is one file submitted for audit.
type Document struct {
	Filename string
	Content  io.Reader
}

// AuditRequest carries everything needed for one audit run.
type AuditRequest struct {
	AuditType       string
	CompanyName     string
	AuditScope      string
	ControlFamilies []string
	Documents       []Document
	UserID          string
	SessionID       string
	ProjectID       string
}

// AuditOrchestrator runs the audit pipeline: upload documents, stream
// issue discovery with remediation fanned out per issue, assemble the
// report, and persist the PDF.
type AuditOrchestrator struct {
	scanner    *agents.ComplianceScanner
	remediator *agents.RemediationSuggestor
	store      storage.ArtifactStore
	log        *logger.Logger
}

// NewAuditOrchestrator wires the audit pipeline.
func NewAuditOrchestrator(scanner *agents.ComplianceScanner, remediator *agents.RemediationSuggestor, store storage.ArtifactStore) *AuditOrchestrator {
	return &AuditOrchestrator{
		scanner:    scanner,
		remediator: remediator,
		store:      store,
		log:        logger.New("audit-orchestrator"),
	}
}

// remediationTask tracks one in-flight remediation lookup. The pointer
// stays stable while the consumer loop keeps appending, so the worker
// goroutine can write results without racing the slice.
type remediationTask struct {
	issue types.Issue
	rec   string
	err   error
}

// RunAudit executes the full audit pipeline for one request.
//
// Uploads are join-all fail-fast: a single failed upload fails the
// request before any scanning starts. Remediation lookups are dispatched
// as each issue is discovered and the enriched collection keeps
// discovery order regardless of completion order. A failed remediation
// only affects its own issue.
func (o *AuditOrchestrator) RunAudit(ctx context.Context, req AuditRequest) (*types.AuditResult, error) {
	start := time.Now()

	result, err := o.runAudit(ctx, req)
	promAuditDuration.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		promAuditsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	promAuditsTotal.WithLabelValues("success").Inc()
	return result, nil
}

func (o *AuditOrchestrator) runAudit(ctx context.Context, req AuditRequest) (*types.AuditResult, error) {
	// Stage 1: persist all submitted documents before scanning starts
	docIDs := make([]string, len(req.Documents))
	g, gctx := errgroup.WithContext(ctx)
	for i, doc := range req.Documents {
		i, doc := i, doc
		g.Go(func() error {
			id, err := o.store.Put(gctx, doc.Filename, doc.Content, storage.Metadata{
				OwnerID: req.UserID,
				Kind:    storage.KindUploaded,
			})
			if err != nil {
				return fmt.Errorf("upload %s: %w", doc.Filename, err)
			}
			docIDs[i] = id
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Stage 2: dispatch remediation per issue as the scan yields it
	var wg sync.WaitGroup
	var tasks []*remediationTask
	var scanErr error

	stream := o.scanner.StreamIssues(ctx, agents.ScanParams{
		AuditType:       req.AuditType,
		CompanyName:     req.CompanyName,
		AuditScope:      req.AuditScope,
		ControlFamilies: req.ControlFamilies,
		DocumentIDs:     docIDs,
		UserID:          req.UserID,
		SessionID:       req.SessionID,
		ProjectID:       req.ProjectID,
	})
	for scanned := range stream {
		if scanned.Err != nil {
			scanErr = scanned.Err
			continue
		}

		task := &remediationTask{issue: scanned.Issue}
		tasks = append(tasks, task)

		wg.Add(1)
		go func(t *remediationTask) {
			defer wg.Done()
			t.rec, t.err = o.remediator.Recommend(ctx, t.issue, req.UserID, req.SessionID)
		}(task)
	}
	wg.Wait()

	if scanErr != nil {
		return nil, fmt.Errorf("compliance scan: %w", scanErr)
	}

	// Fold in discovery order, isolating per-issue remediation failures
	enriched := make([]types.Issue, 0, len(tasks))
	for _, task := range tasks {
		issue := task.issue
		if task.err != nil {
			o.log.Warn(req.UserID, "", "remediation failed, keeping issue without recommendation", map[string]interface{}{
				"session_id": req.SessionID,
				"issue":      issue.Description,
				"error":      task.err.Error(),
			})
			issue.Recommendation = remediationPlaceholder
		} else {
			issue.Recommendation = task.rec
		}
		enriched = append(enriched, issue)
	}
	promAuditIssues.Add(float64(len(enriched)))

	// Stages 3-5: scoring, overall severity, section synthesis
	score, overall, sections := AssembleReport(enriched)

	// Stage 6: render and persist the PDF report
	var pdf bytes.Buffer
	if err := report.WritePDF(&pdf, score, overall, enriched, sections); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	pdfID, err := o.store.Put(ctx, fmt.Sprintf("audit_report_%s.pdf", req.UserID), &pdf, storage.Metadata{
		OwnerID:     req.UserID,
		Kind:        storage.KindGenerated,
		CompanyName: req.CompanyName,
		Score:       score,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("persist report: %w", err)
	}

	o.log.Info(req.UserID, "", "audit complete", map[string]interface{}{
		"session_id": req.SessionID,
		"score":      score,
		"issues":     len(enriched),
		"company":    req.CompanyName,
	})

	return &types.AuditResult{
		Score:           score,
		OverallSeverity: overall,
		Issues:          enriched,
		ReportSections:  sections,
		ArtifactURL:     ArtifactURL(pdfID),
	}, nil
}

// GetHistory lists a user's past audit reports, newest first.
func (o *AuditOrchestrator) GetHistory(ctx context.Context, userID string) ([]types.AuditHistoryItem, error) {
	artifacts, err := o.store.Query(ctx, storage.Query{
		OwnerID:     userID,
		Kind:        storage.KindGenerated,
		NewestFirst: true,
	})
	if err != nil {
		return nil, fmt.Errorf("audit history: %w", err)
	}

	items := make([]types.AuditHistoryItem, 0, len(artifacts))
	for _, artifact := range artifacts {
		companyName := artifact.Metadata.CompanyName
		if companyName == "" {
			companyName = "N/A"
		}
		items = append(items, types.AuditHistoryItem{
			AuditID:     artifact.ID,
			CompanyName: companyName,
			RunDate:     artifact.UploadedAt.Format("2006-01-02 15:04:05"),
			Score:       artifact.Metadata.Score,
			ArtifactURL: ArtifactURL(artifact.ID),
			ProjectID:   artifact.Metadata.ProjectID,
		})
	}
	return items, nil
}

// ArtifactURL is the API path a stored report is served from.
func ArtifactURL(id string) string {
	return "/api/v1/audit/pdf/" + id
}
