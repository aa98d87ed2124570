package cli

import (
	"context"
	"fmt"
	"time"

	"resumechat/internal/ai"
	"resumechat/internal/config"
	"resumechat/internal/conversation"
	"resumechat/internal/errors"
	"resumechat/internal/observability"
	"resumechat/internal/resume"
)

const keywordReloadDebounce = time.Second

// runtime holds the components shared by the chat shell and the HTTP server
type runtime struct {
	cfg        *config.Config
	logger     *errors.Logger
	obs        *observability.ObservabilityManager
	ai         *ai.Service
	watcher    *conversation.KeywordWatcher
	controller *conversation.Controller
}

// newRuntime wires observability, the model gateway, the keyword table and the
// turn controller from configuration. The gateway is only required by the
// per-field policy; with turn counting it is created when a key is available
// so health checks can report on it.
func newRuntime(cfg *config.Config, logger *errors.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger}

	obs, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	rt.obs = obs

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		rt.Close(context.Background())
		return nil, fmt.Errorf("failed to load secrets from vault: %w", err)
	}

	policy := cfg.Conversation.CompletionPolicy
	if policy == config.PolicyPerField || cfg.AI.APIKey != "" {
		if err := cfg.ValidateSecrets(); err != nil {
			rt.Close(context.Background())
			return nil, err
		}
		service, err := ai.NewService(cfg, logger, obs)
		if err != nil {
			rt.Close(context.Background())
			return nil, fmt.Errorf("failed to create AI service: %w", err)
		}
		rt.ai = service
	}

	keywords, err := rt.loadKeywords()
	if err != nil {
		rt.Close(context.Background())
		return nil, err
	}

	// A nil *ai.Service must not reach the evaluator as a non-nil interface.
	var judge conversation.FieldJudge
	if rt.ai != nil {
		judge = rt.ai
	}

	schema := resume.DefaultSchema()
	evaluator, err := conversation.NewEvaluator(policy, schema, keywords, judge, cfg.Conversation.MaxTopicTurns)
	if err != nil {
		rt.Close(context.Background())
		return nil, err
	}

	rt.controller = conversation.NewController(schema, evaluator, keywords, logger, obs)
	logger.Info("Conversation runtime ready",
		"completion_policy", evaluator.Policy(),
		"model_gateway", rt.ai != nil,
		"keywords_file", cfg.Conversation.KeywordsFile,
		"observability", obs.Enabled())
	return rt, nil
}

// loadKeywords returns the built-in table, the configured file, or a watcher over it
func (rt *runtime) loadKeywords() (conversation.KeywordSource, error) {
	path := rt.cfg.Conversation.KeywordsFile
	if path == "" {
		return conversation.NewStaticKeywords(nil), nil
	}

	if !rt.cfg.Conversation.WatchKeywords {
		table, err := conversation.LoadKeywordTable(path)
		if err != nil {
			return nil, err
		}
		return conversation.NewStaticKeywords(table), nil
	}

	watcher, err := conversation.NewKeywordWatcher(path, keywordReloadDebounce, rt.logger)
	if err != nil {
		return nil, err
	}
	watcher.OnReload(func(table *conversation.KeywordTable) {
		rt.logger.Info("Keyword table reloaded", "path", path, "role_titles", len(table.RoleTitles))
	})
	if err := watcher.Start(); err != nil {
		return nil, fmt.Errorf("failed to watch keyword table: %w", err)
	}
	rt.watcher = watcher
	return watcher, nil
}

// Close stops the watcher, the gateway and telemetry
func (rt *runtime) Close(ctx context.Context) {
	if rt.watcher != nil {
		if err := rt.watcher.Stop(); err != nil {
			rt.logger.LogError(err, "Failed to stop keyword watcher")
		}
	}
	if rt.ai != nil {
		if err := rt.ai.Close(); err != nil {
			rt.logger.LogError(err, "Failed to close AI service")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := rt.obs.Shutdown(shutdownCtx); err != nil {
		rt.logger.LogError(err, "Failed to shutdown observability")
	}
}
