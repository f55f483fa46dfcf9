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
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// jsonFence matches the first ```json fenced block in a model reply.
var jsonFence = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// ExtractStatus tags the outcome of extracting JSON from a model reply.
type ExtractStatus int

const (
	// ExtractOK means a JSON object was recovered.
	ExtractOK ExtractStatus = iota

	// ExtractParseError means text was present but no JSON object could
	// be parsed out of it.
	ExtractParseError

	// ExtractNoResult means the reply was empty.
	ExtractNoResult
)

// Extraction is the tagged result of parsing a model reply. On
// ExtractParseError the Raw field carries the full reply for
// diagnostics.
type Extraction struct {
	Status ExtractStatus
	Object map[string]json.RawMessage
	Raw    string
}

// ExtractJSON recovers a single JSON object from raw model text. It
// prefers the interior of the first ```json fenced block; if no fence is
// present, it tries the whole text. Failures are returned as data, never
// as a panic.
func ExtractJSON(raw string) Extraction {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Extraction{Status: ExtractNoResult}
	}

	candidate := trimmed
	if m := jsonFence.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return Extraction{Status: ExtractParseError, Raw: raw}
	}

	return Extraction{Status: ExtractOK, Object: obj, Raw: raw}
}

// FieldAs decodes one named field of an extraction into T. A missing
// field or a field that does not fit T reports ok=false with T's zero
// value, so callers can default to empty collections.
func FieldAs[T any](ex Extraction, name string) (T, bool) {
	var out T
	if ex.Status != ExtractOK {
		return out, false
	}

	raw, present := ex.Object[name]
	if !present {
		return out, false
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false
	}
	return out, true
}

// ParseError reports that an agent's reply contained no usable JSON.
// Raw carries the full reply for diagnostics.
type ParseError struct {
	Agent string
	Raw   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("agent %s returned unparsable output", e.Agent)
}
