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

	"complia/platform/agents"
	"complia/platform/shared/logger"
	"complia/platform/shared/types"
)

// User-facing short-circuit messages for the explanation pipeline.
const (
	msgCouldNotUnderstand = "Could not understand the question. Please rephrase it."
	msgNoInformation      = "Could not find any relevant information for your query."
	msgSynthesisFailed    = "Could not synthesize an explanation."
)

// ExplanationOrchestrator runs the strictly sequential explanation
// pipeline: deconstruct the query, research the sub-questions, then
// synthesize one answer.
type ExplanationOrchestrator struct {
	deconstructor *agents.QueryDeconstructor
	finder        *agents.RegulationFinder
	synthesizer   *agents.Synthesizer
	log           *logger.Logger
}

// NewExplanationOrchestrator wires the explanation pipeline.
func NewExplanationOrchestrator(deconstructor *agents.QueryDeconstructor, finder *agents.RegulationFinder, synthesizer *agents.Synthesizer) *ExplanationOrchestrator {
	return &ExplanationOrchestrator{
		deconstructor: deconstructor,
		finder:        finder,
		synthesizer:   synthesizer,
		log:           logger.New("explanation-orchestrator"),
	}
}

// GetExplanation answers a free-text regulatory question. Each stage
// depends on the previous one; an empty or failed stage short-circuits
// with a user-facing message rather than an error.
func (o *ExplanationOrchestrator) GetExplanation(ctx context.Context, query, userID, sessionID string) (*types.Explanation, error) {
	subQuestions, err := o.deconstructor.Deconstruct(ctx, query, userID, sessionID)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil || len(subQuestions) == 0 {
		o.logShortCircuit(userID, sessionID, "deconstruction", err)
		promExplanations.WithLabelValues("no_understanding").Inc()
		return &types.Explanation{Explanation: msgCouldNotUnderstand, Sources: []types.Finding{}}, nil
	}

	findings, err := o.finder.FindRegulations(ctx, subQuestions, userID, sessionID)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil || len(findings) == 0 {
		o.logShortCircuit(userID, sessionID, "research", err)
		promExplanations.WithLabelValues("no_findings").Inc()
		return &types.Explanation{Explanation: msgNoInformation, Sources: []types.Finding{}}, nil
	}

	explanation, err := o.synthesizer.Synthesize(ctx, query, findings, userID, sessionID)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		o.logShortCircuit(userID, sessionID, "synthesis", err)
		explanation = msgSynthesisFailed
	}

	promExplanations.WithLabelValues("success").Inc()
	return &types.Explanation{
		Explanation: explanation,
		Sources:     findings,
	}, nil
}

func (o *ExplanationOrchestrator) logShortCircuit(userID, sessionID, stage string, err error) {
	fields := map[string]interface{}{
		"session_id": sessionID,
		"stage":      stage,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	o.log.Warn(userID, "", "explanation stage short-circuited", fields)
}
