package driving

import "github.com/custodia-labs/reqsift/internal/core/domain"

// SettingsService reads and changes the persisted configuration: the
// model provider, the requirement store and the extraction tuning.
type SettingsService interface {
	// Get merges stored values over the defaults. An unset API key is
	// taken from the provider's environment variable.
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error
	GetDefaults() domain.AppSettings

	// SetLLMProvider switches provider. An empty model selects the
	// provider's default model.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error
	SetStore(backend domain.StoreBackend, dsn string) error

	// Validate checks the settings offline; ValidateLLMConfig pings the provider.
	Validate() error
	ValidateLLMConfig() error
}
