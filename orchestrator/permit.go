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
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"complia/platform/agents"
	"complia/platform/shared/logger"
	"complia/platform/shared/types"
)

// ErrIntentExtraction marks a permit request that failed before any
// requirement lookup ran. The API layer reports it verbatim.
var ErrIntentExtraction = errors.New("Failed at intent extraction stage")

// PermitOrchestrator runs the permit analysis pipeline: intent
// extraction, then general-policy and region-specific lookups in
// parallel, then checklist synthesis.
type PermitOrchestrator struct {
	intent    *agents.IntentExtractor
	policy    *agents.PolicyExpert
	location  *agents.LocationAgent
	validator *agents.PreSubmissionValidator
	log       *logger.Logger
}

// NewPermitOrchestrator wires the permit pipeline.
func NewPermitOrchestrator(intent *agents.IntentExtractor, policy *agents.PolicyExpert, location *agents.LocationAgent, validator *agents.PreSubmissionValidator) *PermitOrchestrator {
	return &PermitOrchestrator{
		intent:    intent,
		policy:    policy,
		location:  location,
		validator: validator,
		log:       logger.New("permit-orchestrator"),
	}
}

// AnalyzePermitRequest produces the full permit analysis for a project
// description and location. Intent extraction failure short-circuits
// the whole request; the two lookup branches run concurrently and both
// must succeed before checklist synthesis.
func (o *PermitOrchestrator) AnalyzePermitRequest(ctx context.Context, projectDescription, location, userID, sessionID string) (*types.PermitAnalysis, error) {
	summary, err := o.intent.ExtractIntent(ctx, projectDescription, userID, sessionID)
	if err != nil {
		promPermitRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %w", ErrIntentExtraction, err)
	}

	var documents []types.RequiredDocument
	var rules []types.RegionSpecificRule

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		documents, err = o.policy.GeneralRequirements(gctx, summary, userID, sessionID)
		return err
	})
	g.Go(func() error {
		var err error
		rules, err = o.location.RegionalRules(gctx, summary, location, userID, sessionID)
		return err
	})
	if err := g.Wait(); err != nil {
		promPermitRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("requirements lookup: %w", err)
	}

	checklist, err := o.validator.CreateChecklist(ctx, documents, rules, userID, sessionID)
	if err != nil {
		promPermitRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("checklist synthesis: %w", err)
	}

	o.log.Info(userID, "", "permit analysis complete", map[string]interface{}{
		"session_id":      sessionID,
		"documents":       len(documents),
		"regional_rules":  len(rules),
		"checklist_items": len(checklist),
	})
	promPermitRequests.WithLabelValues("success").Inc()

	return &types.PermitAnalysis{
		ProjectSummary:         summary,
		RequiredDocuments:      documents,
		RegionSpecificRules:    rules,
		PreSubmissionChecklist: checklist,
	}, nil
}
