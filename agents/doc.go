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

// Package agents contains the single-purpose sub-agents that power the
// orchestration pipelines. Each sub-agent renders one prompt template,
// sends it through an Invoker, and extracts one named field from the
// JSON fragment in the model's free-text reply.
//
// Sub-agents never retry internally and never panic on bad model output.
// Invocation and parse failures come back as errors; consumers decide
// whether a failure short-circuits a pipeline or degrades to an empty
// result. Prompt templates are embedded in the binary and missing
// templates fail at process startup, not per request.
package agents
