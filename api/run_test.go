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

package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complia/platform/config"
)

func TestSearchToolsWiredWhenConfigured(t *testing.T) {
	cfg := &config.Config{}
	cfg.Search.APIKey = "key"
	cfg.Search.EngineID = "cx"

	tools, err := searchTools(cfg)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "web_search", tools[0].Name)
	assert.NotNil(t, tools[0].Call)
}

func TestSearchToolsAbsentWhenUnconfigured(t *testing.T) {
	tools, err := searchTools(&config.Config{})
	require.NoError(t, err)
	assert.Empty(t, tools)
}
