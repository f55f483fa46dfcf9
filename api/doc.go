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
Package api exposes the audit, permit, and explanation pipelines over
HTTP.

Routes are registered on a gorilla/mux router wrapped in CORS. All
pipeline endpoints sit behind JWT bearer authentication; report
downloads additionally enforce that the caller owns the artifact or
holds the admin role. An optional Redis-backed rate limiter throttles
authenticated requests per user with a one-minute sliding window.
*/
package api
