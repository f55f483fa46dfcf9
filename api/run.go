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
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"complia/platform/agents"
	"complia/platform/config"
	"complia/platform/llm"
	"complia/platform/llm/bedrock"
	"complia/platform/llm/gemini"
	"complia/platform/orchestrator"
	"complia/platform/search"
	"complia/platform/shared/logger"
	"complia/platform/storage"
)

// Run is the exported entry point for the Complia service.
//
// It loads configuration, resolves secret references, wires the LLM
// provider, artifact store, and the three pipelines, and serves HTTP
// until the process exits.
//
// The config file path comes from CONFIG_PATH (default: config.yaml).
func Run() {
	log := logger.New("server")
	ctx := context.Background()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error("", "", "failed to load configuration", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	if cfg.LLM.Gemini.APIKeySecretARN != "" && cfg.LLM.Gemini.APIKey == "" {
		secrets, err := config.NewSecretsClient(ctx, cfg.LLM.Bedrock.Region)
		if err == nil {
			err = config.ResolveSecrets(ctx, cfg, secrets)
		}
		if err != nil {
			log.Error("", "", "failed to resolve secrets", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}

	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		log.Error("", "", "failed to initialize LLM provider", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		log.Error("", "", "failed to initialize artifact store", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	invoker := agents.NewLLMInvoker(provider, agents.NewSessionService())

	// Location and regulation agents consult official sources through
	// a web-search tool when a search backend is configured.
	regionalTools, err := searchTools(cfg)
	if err != nil {
		log.Error("", "", "failed to initialize web search", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	if len(regionalTools) == 0 {
		log.Warn("", "", "web search not configured, regional lookups run without a search tool", nil)
	}

	// The scanner can pull uploaded evidence back out of the store. A
	// bounded snippet keeps prompts within model context limits.
	docTool := agents.NewDocumentContentTool(func(ctx context.Context, id string) (string, error) {
		data, _, err := store.Get(ctx, id)
		if err != nil {
			return "", err
		}
		const maxSnippet = 16 << 10
		if len(data) > maxSnippet {
			data = data[:maxSnippet]
		}
		return string(data), nil
	})

	audit := orchestrator.NewAuditOrchestrator(
		agents.NewComplianceScanner(invoker, docTool),
		agents.NewRemediationSuggestor(invoker),
		store,
	)
	permits := orchestrator.NewPermitOrchestrator(
		agents.NewIntentExtractor(invoker),
		agents.NewPolicyExpert(invoker),
		agents.NewLocationAgent(invoker, regionalTools...),
		agents.NewPreSubmissionValidator(invoker),
	)
	explain := orchestrator.NewExplanationOrchestrator(
		agents.NewQueryDeconstructor(invoker),
		agents.NewRegulationFinder(invoker, regionalTools...),
		agents.NewSynthesizer(invoker),
	)

	users := NewMemoryUserStore()
	for _, u := range cfg.Users {
		role := u.Role
		if role == "" {
			role = "user"
		}
		users.AddUser(u.Username, u.Password, role)
	}

	var limiter *RateLimiter
	if cfg.Redis.URL != "" {
		limiter, err = NewRateLimiter(cfg.Redis.URL, cfg.Redis.RateLimitPerMinute)
		if err != nil {
			log.Error("", "", "failed to connect to redis", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
		defer limiter.Close()
	}

	server := NewServer(ServerConfig{
		Audit:       audit,
		Permits:     permits,
		Explain:     explain,
		Store:       store,
		Users:       users,
		Tokens:      NewTokenAuthority([]byte(cfg.Auth.JWTSecret), time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute),
		RateLimiter: limiter,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("", "", "listening", map[string]interface{}{
		"addr":     addr,
		"llm":      cfg.LLM.Provider,
		"storage":  cfg.Storage.Backend,
		"ratelimit": limiter != nil,
	})
	if err := http.ListenAndServe(addr, server.Handler()); err != nil {
		log.Error("", "", "server stopped", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

// searchTools builds the web-search tool for the location and
// regulation agents. An unconfigured search backend yields no tools;
// the agents then answer from model knowledge alone.
func searchTools(cfg *config.Config) ([]agents.Tool, error) {
	if !cfg.Search.Enabled() {
		return nil, nil
	}
	client, err := search.NewClient(search.Config{
		APIKey:   cfg.Search.APIKey,
		EngineID: cfg.Search.EngineID,
	})
	if err != nil {
		return nil, err
	}
	return []agents.Tool{agents.NewSearchTool(client.Search)}, nil
}

func buildProvider(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		return gemini.NewProvider(gemini.Config{
			APIKey: cfg.LLM.Gemini.APIKey,
			Model:  cfg.LLM.Gemini.Model,
		})
	case "bedrock":
		return bedrock.NewProvider(ctx, cfg.LLM.Bedrock.Region, cfg.LLM.Bedrock.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func buildStore(ctx context.Context, cfg *config.Config) (storage.ArtifactStore, error) {
	switch cfg.Storage.Backend {
	case "gridfs":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Storage.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		return storage.NewGridFSStore(ctx, client.Database(cfg.Storage.Database))
	case "s3":
		return storage.NewS3Store(ctx, cfg.Storage.Region, cfg.Storage.Bucket)
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
