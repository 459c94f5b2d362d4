// Package app wires adapters into the core services. Drivers (CLI, HTTP,
// MCP, watch) share one App per process.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/reqsift/internal/adapters/driven/ai"
	"github.com/custodia-labs/reqsift/internal/adapters/driven/config/file"
	"github.com/custodia-labs/reqsift/internal/adapters/driven/storage"
	"github.com/custodia-labs/reqsift/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
	"github.com/custodia-labs/reqsift/internal/core/services"
	"github.com/custodia-labs/reqsift/internal/logger"
	"github.com/custodia-labs/reqsift/internal/providers"
)

// DefaultCacheSize is the provider cache size for long-running drivers.
const DefaultCacheSize = 256

// Options controls how the App is assembled.
type Options struct {
	// ConfigDir overrides ~/.reqsift. Empty uses the default.
	ConfigDir string

	// NoConfig uses in-memory settings and built-in prompts.
	NoConfig bool

	// NeedLLM requires a reachable LLM. Commands that only read stored
	// runs leave it false.
	NeedLLM bool

	// CacheSize enables the provider result cache.
	CacheSize int

	// Runner overrides the external command runner.
	Runner driven.CommandRunner
}

// NewSettings creates the settings service backed by the config file,
// or by memory when opts.NoConfig is set.
func NewSettings(opts Options) (*services.SettingsService, error) {
	var store driven.ConfigStore
	if opts.NoConfig {
		store = memory.NewConfigStore()
	} else {
		fileStore, err := file.NewConfigStore(opts.ConfigDir)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		store = fileStore
	}
	return services.NewSettingsService(store, ai.NewConfigValidator()), nil
}

// App holds the services and the resources they own.
type App struct {
	Extraction *services.ExtractionService
	Store      driven.RequirementStore
	LLM        driven.LLMService
	Prompts    driven.PromptStore
	Registry   *providers.Registry
}

// Build assembles the extraction pipeline from settings.
func Build(ctx context.Context, settings *domain.AppSettings, opts Options) (*App, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: settings are required", domain.ErrInvalidInput)
	}

	registry := providers.NewRegistry()
	providerOpts := providers.OptionsFromSettings(settings.Extraction)
	providerOpts.CacheSize = opts.CacheSize
	providerOpts.Runner = opts.Runner
	if err := providers.RegisterDefaults(registry, providerOpts); err != nil {
		return nil, fmt.Errorf("register providers: %w", err)
	}

	a := &App{Registry: registry}

	if opts.NeedLLM {
		if !settings.LLM.IsConfigured() {
			return nil, fmt.Errorf("%w: %s is not configured. Run 'reqsift settings llm' or set %s",
				domain.ErrLLMUnavailable, settings.LLM.Provider, settings.LLM.Provider.APIKeyEnv())
		}
		llm, err := ai.CreateAndValidateLLMService(&settings.LLM)
		if err != nil {
			return nil, err
		}
		a.LLM = llm
		logger.Debug("llm: %s (%s)", settings.LLM.Provider, llm.ModelName())
	}

	store, err := storage.OpenRequirementStore(ctx, settings.Store)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.Store = store
	logger.Debug("store: %s", settings.Store.Backend)

	a.Extraction = services.NewExtractionService(registry, a.LLM, store, services.ExtractionConfig{
		ChunkSize:    settings.Extraction.ChunkSize,
		ModelTimeout: settings.Extraction.ModelTimeout,
		Workers:      settings.Extraction.Workers,
	})

	if !opts.NoConfig {
		prompts, err := file.NewPromptStore(promptDir(opts.ConfigDir))
		if err != nil {
			logger.Warn("prompt store unavailable, using built-in prompt: %v", err)
		} else {
			a.Prompts = prompts
			a.Extraction.SetPromptStore(prompts)
		}
	}

	return a, nil
}

// Close releases the store and LLM.
func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.LLM != nil {
		errs = append(errs, a.LLM.Close())
	}
	return errors.Join(errs...)
}

// promptDir returns <configDir>/prompts, or "" for the default location.
func promptDir(configDir string) string {
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "prompts")
}
