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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsAPI is the Secrets Manager subset used at startup.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// NewSecretsClient builds a Secrets Manager client from the ambient
// AWS configuration.
func NewSecretsClient(ctx context.Context, region string) (SecretsAPI, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// ResolveSecrets replaces secret ARN references in cfg with the
// fetched values. It is a no-op when no ARNs are configured, so a nil
// client is fine in that case.
func ResolveSecrets(ctx context.Context, cfg *Config, client SecretsAPI) error {
	if cfg.LLM.Gemini.APIKey != "" || cfg.LLM.Gemini.APIKeySecretARN == "" {
		return nil
	}
	if client == nil {
		return fmt.Errorf("llm.gemini.api_key_secret_arn set but no secrets client available")
	}

	value, err := fetchSecret(ctx, client, cfg.LLM.Gemini.APIKeySecretARN, "api_key")
	if err != nil {
		return fmt.Errorf("resolve gemini api key: %w", err)
	}
	cfg.LLM.Gemini.APIKey = value
	return nil
}

// fetchSecret reads one secret. JSON secrets yield the named field;
// plain-string secrets yield the whole value.
func fetchSecret(ctx context.Context, client SecretsAPI, arn, field string) (string, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(arn),
	})
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", maskARN(arn), err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", maskARN(arn))
	}

	var fields map[string]string
	if err := json.Unmarshal([]byte(*out.SecretString), &fields); err == nil {
		if v, ok := fields[field]; ok && v != "" {
			return v, nil
		}
		return "", fmt.Errorf("secret %s has no %q field", maskARN(arn), field)
	}
	return *out.SecretString, nil
}

// maskARN keeps only the trailing secret name for log-safe output.
func maskARN(arn string) string {
	parts := strings.Split(arn, ":")
	if len(parts) < 7 {
		return "***"
	}
	return "***:" + parts[len(parts)-1]
}
