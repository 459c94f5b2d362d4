package services

import (
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
	"github.com/custodia-labs/reqsift/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider  = "llm.provider"
	keyLLMModel     = "llm.model"
	keyLLMBaseURL   = "llm.base_url"
	keyLLMAPIKey    = "llm.api_key"
	keyLLMRateLimit = "llm.rate_limit"
	keyStoreBackend = "store.backend"
	keyStoreDSN     = "store.dsn"
	keyChunkSize    = "extraction.chunk_size"
	keyModelTimeout = "extraction.model_timeout_seconds"
	keyWorkers      = "extraction.workers"
	keyOCR          = "extraction.ocr"
	keyWhisperModel = "extraction.whisper_model"
)

const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// An unset API key is read from the provider's environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(defaults.LLM.Provider)
	model := s.configStore.GetString(keyLLMModel)
	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:  provider,
			Model:     model,
			BaseURL:   s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:    s.apiKey(provider),
			RateLimit: s.configStore.GetInt(keyLLMRateLimit),
		},
		Store: domain.StoreSettings{
			Backend: s.getBackend(defaults.Store.Backend),
			DSN:     s.configStore.GetString(keyStoreDSN),
		},
		Extraction: domain.ExtractionSettings{
			ChunkSize:    s.getInt(keyChunkSize, defaults.Extraction.ChunkSize),
			ModelTimeout: s.getSeconds(keyModelTimeout, defaults.Extraction.ModelTimeout),
			Workers:      s.getInt(keyWorkers, defaults.Extraction.Workers),
			OCR:          s.getBool(keyOCR, defaults.Extraction.OCR),
			WhisperModel: s.getString(keyWhisperModel, defaults.Extraction.WhisperModel),
		},
	}

	return settings, nil
}

// Save persists application settings.
// An API key equal to the environment fallback is not written to disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	// Save LLM settings
	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" && settings.LLM.APIKey != s.envKey(settings.LLM.Provider) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyLLMRateLimit, settings.LLM.RateLimit); err != nil {
		return fmt.Errorf("save llm rate_limit: %w", err)
	}

	// Save store settings
	if err := s.configStore.Set(keyStoreBackend, settings.Store.Backend.String()); err != nil {
		return fmt.Errorf("save store backend: %w", err)
	}
	if err := s.configStore.Set(keyStoreDSN, settings.Store.DSN); err != nil {
		return fmt.Errorf("save store dsn: %w", err)
	}

	// Save extraction settings
	if err := s.configStore.Set(keyChunkSize, settings.Extraction.ChunkSize); err != nil {
		return fmt.Errorf("save chunk size: %w", err)
	}
	if err := s.configStore.Set(keyModelTimeout, int(settings.Extraction.ModelTimeout/time.Second)); err != nil {
		return fmt.Errorf("save model timeout: %w", err)
	}
	if err := s.configStore.Set(keyWorkers, settings.Extraction.Workers); err != nil {
		return fmt.Errorf("save workers: %w", err)
	}
	if err := s.configStore.Set(keyOCR, settings.Extraction.OCR); err != nil {
		return fmt.Errorf("save ocr: %w", err)
	}
	if err := s.configStore.Set(keyWhisperModel, settings.Extraction.WhisperModel); err != nil {
		return fmt.Errorf("save whisper model: %w", err)
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
// An empty apiKey is accepted when the provider's environment variable is set.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" && s.envKey(provider) == "" {
		return fmt.Errorf("API key required for %s (or set %s)", provider, provider.APIKeyEnv())
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		defaults := domain.DefaultLLMModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.LLM.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.LLM.BaseURL = ""
	}

	// Set API key
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetStore configures the requirement store backend.
func (s *SettingsService) SetStore(backend domain.StoreBackend, dsn string) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid store backend: %s", backend)
	}
	if backend.RequiresDSN() && dsn == "" {
		return fmt.Errorf("connection string required for %s", backend)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Store.Backend = backend
	settings.Store.DSN = dsn

	return s.Save(settings)
}

// Validate checks that current settings are usable for extraction.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		if settings.LLM.Provider.RequiresAPIKey() {
			return fmt.Errorf(
				"LLM provider %q requires an API key: run 'reqsift settings llm' or set %s",
				settings.LLM.Provider.Description(), settings.LLM.Provider.APIKeyEnv(),
			)
		}
		return fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider)
	}

	if settings.Store.Backend.RequiresDSN() && settings.Store.DSN == "" {
		return fmt.Errorf("store backend %q requires a connection string", settings.Store.Backend.Description())
	}

	if settings.Extraction.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", settings.Extraction.ChunkSize)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Second
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(keyLLMProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	val := s.configStore.GetString(keyStoreBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.StoreBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) apiKey(provider domain.AIProvider) string {
	if key := s.configStore.GetString(keyLLMAPIKey); key != "" {
		return key
	}
	return s.envKey(provider)
}

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	name := provider.APIKeyEnv()
	if name == "" || s.getenv == nil {
		return ""
	}
	return s.getenv(name)
}
