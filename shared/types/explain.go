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

package types

// Finding is one piece of regulatory research returned by the
// regulation finder and cited as a source in the final explanation.
type Finding struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// Explanation is the assembled response of the explanation pipeline.
type Explanation struct {
	Explanation string    `json:"explanation"`
	Sources     []Finding `json:"sources"`
}
