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

// Package config loads the service configuration from a YAML file with
// environment variable expansion. API keys may be given inline, via
// ${ENV_VAR} references, or as an AWS Secrets Manager ARN resolved at
// startup.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root of the service configuration file.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	LLM     LLMConfig     `yaml:"llm"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis,omitempty"`
	Search  SearchConfig  `yaml:"search,omitempty"`
	Users   []UserConfig  `yaml:"users,omitempty"`
}

// SearchConfig enables the web-search tool offered to the location and
// regulation agents. Both fields must be set together.
type SearchConfig struct {
	APIKey   string `yaml:"api_key,omitempty"`
	EngineID string `yaml:"engine_id,omitempty"`
}

// Enabled reports whether a search backend is configured.
func (s SearchConfig) Enabled() bool {
	return s.APIKey != "" && s.EngineID != ""
}

// UserConfig seeds one login credential. Passwords normally arrive via
// ${ENV_VAR} references rather than literals.
type UserConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role,omitempty"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes,omitempty"`
}

// LLMConfig selects and configures the model backend.
type LLMConfig struct {
	Provider string        `yaml:"provider"` // gemini or bedrock
	Gemini   GeminiConfig  `yaml:"gemini,omitempty"`
	Bedrock  BedrockConfig `yaml:"bedrock,omitempty"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	// APIKeySecretARN points at an AWS Secrets Manager secret holding
	// the key; it takes effect only when api_key is empty.
	APIKeySecretARN string `yaml:"api_key_secret_arn,omitempty"`
	Model           string `yaml:"model,omitempty"`
}

type BedrockConfig struct {
	Region string `yaml:"region,omitempty"`
	Model  string `yaml:"model,omitempty"`
}

// StorageConfig selects and configures the artifact store backend.
type StorageConfig struct {
	Backend  string `yaml:"backend"` // gridfs, s3, or memory
	MongoURI string `yaml:"mongo_uri,omitempty"`
	Database string `yaml:"database,omitempty"`
	Bucket   string `yaml:"bucket,omitempty"` // S3 bucket name
	Region   string `yaml:"region,omitempty"`
}

type RedisConfig struct {
	URL                string `yaml:"url,omitempty"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute,omitempty"`
}

// Load reads, expands, parses, and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses raw YAML config content. Environment variable references
// are expanded before parsing.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Auth.TokenTTLMinutes == 0 {
		c.Auth.TokenTTLMinutes = 24 * 60
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.LLM.Gemini.Model == "" {
		c.LLM.Gemini.Model = "gemini-2.0-flash"
	}
	if c.LLM.Bedrock.Region == "" {
		c.LLM.Bedrock.Region = "us-east-1"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "gridfs"
	}
	if c.Storage.Database == "" {
		c.Storage.Database = "complia"
	}
	if c.Redis.RateLimitPerMinute == 0 {
		c.Redis.RateLimitPerMinute = 60
	}
}

// Validate checks cross-field requirements that zero values cannot
// express. Secret ARNs are accepted in place of literal keys.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	switch c.LLM.Provider {
	case "gemini":
		if c.LLM.Gemini.APIKey == "" && c.LLM.Gemini.APIKeySecretARN == "" {
			return fmt.Errorf("llm.gemini requires api_key or api_key_secret_arn")
		}
	case "bedrock":
		if c.LLM.Bedrock.Model == "" {
			return fmt.Errorf("llm.bedrock.model is required")
		}
	default:
		return fmt.Errorf("unknown llm.provider %q", c.LLM.Provider)
	}

	if (c.Search.APIKey == "") != (c.Search.EngineID == "") {
		return fmt.Errorf("search requires both api_key and engine_id")
	}

	for _, u := range c.Users {
		if u.Username == "" || u.Password == "" {
			return fmt.Errorf("users entries require username and password")
		}
	}

	switch c.Storage.Backend {
	case "gridfs":
		if c.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for gridfs")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for s3")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}

	return nil
}

// envVarRegex matches ${VAR_NAME} or $VAR_NAME patterns
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars expands environment variable references. Both
// ${VAR_NAME} and $VAR_NAME forms are supported, plus defaults via
// ${VAR_NAME:-default}. Undefined variables expand to the empty string.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		defaultVal := ""
		if idx := strings.Index(varName, ":-"); idx != -1 {
			defaultVal = varName[idx+2:]
			varName = varName[:idx]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultVal
	})
}
