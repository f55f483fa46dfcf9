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

import "context"

// SearchFunc performs a web search and returns a text summary of the
// results.
type SearchFunc func(ctx context.Context, query string) (string, error)

// NewSearchTool wraps a search capability as an agent tool.
func NewSearchTool(search SearchFunc) Tool {
	return Tool{
		Name:        "web_search",
		Description: "Search the web for official government and regulatory sources. Input is the search query.",
		Call:        search,
	}
}

// DocumentFetchFunc retrieves the text content of a stored document by
// its ID.
type DocumentFetchFunc func(ctx context.Context, documentID string) (string, error)

// NewDocumentContentTool wraps a document lookup as an agent tool so
// the scanner can read the documents under audit.
func NewDocumentContentTool(fetch DocumentFetchFunc) Tool {
	return Tool{
		Name:        "get_document_content",
		Description: "Retrieve the text content of a document given its document ID. Use this to read the documents provided to you.",
		Call:        fetch,
	}
}
