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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
server:
  port: 9090
auth:
  jwt_secret: "top-secret"
llm:
  provider: gemini
  gemini:
    api_key: "key-123"
storage:
  backend: memory
redis:
  url: "redis://localhost:6379"
  rate_limit_per_minute: 30
users:
  - username: alice
    password: s3cret
    role: auditor
`

func TestParseValidConfig(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "top-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "key-123", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 30, cfg.Redis.RateLimitPerMinute)
	require.Len(t, cfg.Users, 1)
	assert.Equal(t, "auditor", cfg.Users[0].Role)

	// Defaults fill unset fields.
	assert.Equal(t, 24*60, cfg.Auth.TokenTTLMinutes)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Gemini.Model)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_JWT_SECRET", "from-env")

	cfg, err := Parse([]byte(`
auth:
  jwt_secret: ${TEST_JWT_SECRET}
llm:
  provider: gemini
  gemini:
    api_key: ${UNSET_VAR:-fallback-key}
storage:
  backend: memory
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "fallback-key", cfg.LLM.Gemini.APIKey)
}

func TestValidateErrors(t *testing.T) {
	cases := map[string]string{
		"missing jwt secret": `
llm:
  provider: gemini
  gemini: {api_key: k}
storage: {backend: memory}
`,
		"gemini without key": `
auth: {jwt_secret: s}
llm:
  provider: gemini
storage: {backend: memory}
`,
		"unknown provider": `
auth: {jwt_secret: s}
llm:
  provider: openai
storage: {backend: memory}
`,
		"gridfs without mongo uri": `
auth: {jwt_secret: s}
llm:
  provider: gemini
  gemini: {api_key: k}
storage: {backend: gridfs}
`,
		"s3 without bucket": `
auth: {jwt_secret: s}
llm:
  provider: gemini
  gemini: {api_key: k}
storage: {backend: s3}
`,
		"search missing engine id": `
auth: {jwt_secret: s}
llm:
  provider: gemini
  gemini: {api_key: k}
storage: {backend: memory}
search: {api_key: k}
`,
		"unknown backend": `
auth: {jwt_secret: s}
llm:
  provider: gemini
  gemini: {api_key: k}
storage: {backend: floppy}
`,
	}

	for name, yaml := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(yaml))
			assert.Error(t, err)
		})
	}
}

func TestSearchConfigEnabled(t *testing.T) {
	assert.False(t, SearchConfig{}.Enabled())
	assert.False(t, SearchConfig{APIKey: "k"}.Enabled())
	assert.True(t, SearchConfig{APIKey: "k", EngineID: "cx"}.Enabled())
}

func TestValidateAcceptsSecretARNInPlaceOfKey(t *testing.T) {
	cfg, err := Parse([]byte(`
auth: {jwt_secret: s}
llm:
  provider: gemini
  gemini:
    api_key_secret_arn: "arn:aws:secretsmanager:us-east-1:123456789012:secret:gemini-key"
storage: {backend: memory}
`))
	require.NoError(t, err)
	assert.Empty(t, cfg.LLM.Gemini.APIKey)
	assert.NotEmpty(t, cfg.LLM.Gemini.APIKeySecretARN)
}

type fakeSecrets struct {
	value string
	err   error
}

func (f *fakeSecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(f.value)}, nil
}

func TestResolveSecrets(t *testing.T) {
	arn := "arn:aws:secretsmanager:us-east-1:123456789012:secret:gemini-key"

	t.Run("json secret", func(t *testing.T) {
		cfg := &Config{}
		cfg.LLM.Gemini.APIKeySecretARN = arn
		err := ResolveSecrets(context.Background(), cfg, &fakeSecrets{value: `{"api_key": "resolved-key"}`})
		require.NoError(t, err)
		assert.Equal(t, "resolved-key", cfg.LLM.Gemini.APIKey)
	})

	t.Run("plain string secret", func(t *testing.T) {
		cfg := &Config{}
		cfg.LLM.Gemini.APIKeySecretARN = arn
		err := ResolveSecrets(context.Background(), cfg, &fakeSecrets{value: "raw-key"})
		require.NoError(t, err)
		assert.Equal(t, "raw-key", cfg.LLM.Gemini.APIKey)
	})

	t.Run("inline key wins", func(t *testing.T) {
		cfg := &Config{}
		cfg.LLM.Gemini.APIKey = "inline"
		cfg.LLM.Gemini.APIKeySecretARN = arn
		err := ResolveSecrets(context.Background(), cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, "inline", cfg.LLM.Gemini.APIKey)
	})

	t.Run("fetch failure", func(t *testing.T) {
		cfg := &Config{}
		cfg.LLM.Gemini.APIKeySecretARN = arn
		err := ResolveSecrets(context.Background(), cfg, &fakeSecrets{err: errors.New("denied")})
		assert.Error(t, err)
	})

	t.Run("no client when arn set", func(t *testing.T) {
		cfg := &Config{}
		cfg.LLM.Gemini.APIKeySecretARN = arn
		err := ResolveSecrets(context.Background(), cfg, nil)
		assert.Error(t, err)
	})
}

func TestMaskARN(t *testing.T) {
	assert.Equal(t, "***:gemini-key",
		maskARN("arn:aws:secretsmanager:us-east-1:123456789012:secret:gemini-key"))
	assert.Equal(t, "***", maskARN("short"))
}
