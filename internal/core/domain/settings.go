package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOpenRouter is the OpenRouter gateway (OpenAI-compatible API).
	AIProviderOpenRouter AIProvider = "openrouter"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderGemini is Google Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenRouter, AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p.IsValid() && p != AIProviderOllama
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// APIKeyEnv returns the environment variable consulted when no key is configured.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case AIProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOpenRouter:
		return "OpenRouter (cloud gateway)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// StoreBackend identifies a requirement store implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendSQLite is a local SQLite file.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendPostgres is a PostgreSQL database.
	StoreBackendPostgres StoreBackend = "postgres"

	// StoreBackendRedis is a Redis server.
	StoreBackendRedis StoreBackend = "redis"

	// StoreBackendMemory keeps runs in process memory only.
	StoreBackendMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendSQLite, StoreBackendPostgres, StoreBackendRedis, StoreBackendMemory:
		return true
	default:
		return false
	}
}

// RequiresDSN returns true if the backend needs a connection string.
func (b StoreBackend) RequiresDSN() bool {
	return b == StoreBackendPostgres || b == StoreBackendRedis
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StoreBackend) Description() string {
	switch b {
	case StoreBackendSQLite:
		return "SQLite (local file)"
	case StoreBackendPostgres:
		return "PostgreSQL"
	case StoreBackendRedis:
		return "Redis"
	case StoreBackendMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key. Empty falls back to Provider.APIKeyEnv().
	APIKey string

	// RateLimit caps requests per minute. Zero disables limiting.
	RateLimit int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// StoreSettings holds requirement store configuration.
type StoreSettings struct {
	// Backend selects the store implementation.
	Backend StoreBackend

	// DSN is the connection string or file path.
	// Empty uses ~/.reqsift/data/requirements.db for sqlite.
	DSN string
}

// ExtractionSettings holds pipeline tuning.
type ExtractionSettings struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// ModelTimeout bounds each model call.
	ModelTimeout time.Duration

	// Workers bounds how many files are extracted concurrently.
	Workers int

	// OCR enables OCR of PDF pages with no text layer.
	OCR bool

	// WhisperModel is the transcription model name.
	WhisperModel string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Store holds requirement store settings.
	Store StoreSettings

	// Extraction holds pipeline settings.
	Extraction ExtractionSettings
}

// Defaults for extraction settings.
const (
	DefaultChunkSize    = 2000
	DefaultModelTimeout = 30 * time.Second
	DefaultWorkers      = 1
	DefaultWhisperModel = "base"
)

// DefaultAppSettings returns settings with sensible defaults.
// The LLM provider defaults to OpenRouter; its key usually comes from the environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Provider: AIProviderOpenRouter,
			Model:    DefaultLLMModels()[AIProviderOpenRouter],
		},
		Store: StoreSettings{
			Backend: StoreBackendSQLite,
		},
		Extraction: ExtractionSettings{
			ChunkSize:    DefaultChunkSize,
			ModelTimeout: DefaultModelTimeout,
			Workers:      DefaultWorkers,
			OCR:          true,
			WhisperModel: DefaultWhisperModel,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenRouter,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderOllama,
		AIProviderGemini,
	}
}

// AllStoreBackends returns every store backend.
func AllStoreBackends() []StoreBackend {
	return []StoreBackend{
		StoreBackendSQLite,
		StoreBackendPostgres,
		StoreBackendRedis,
		StoreBackendMemory,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenRouter: "nvidia/llama-3.3-nemotron-super-49b-v1:free",
		AIProviderOpenAI:     "gpt-4o-mini",
		AIProviderAnthropic:  "claude-3-5-sonnet-latest",
		AIProviderOllama:     "llama3.2",
		AIProviderGemini:     "gemini-1.5-flash",
	}
}
