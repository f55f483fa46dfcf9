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

// Package main is the entry point for the Complia compliance service.
//
// The service exposes three AI-agent pipelines over HTTP:
// - Audit: scan uploaded evidence for compliance issues, suggest
//   remediations, and produce a scored PDF report
// - Permits: analyze a project description into required documents,
//   regional rules, and a pre-submission checklist
// - Explain: answer free-text regulatory questions with cited sources
//
// Usage:
//
//	./server
//
// Environment Variables:
//
//	CONFIG_PATH - path to the YAML config file (default: config.yaml)
package main

import (
	"complia/platform/api"
)

func main() {
	api.Run()
}
