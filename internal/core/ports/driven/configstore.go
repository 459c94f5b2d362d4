package driven

// ConfigStore holds settings under dotted keys such as "llm.provider"
// or "extraction.chunk_size". File-backed stores map the first segment
// to a table; Set writes through.
type ConfigStore interface {
	// Get returns the raw value and whether the key is present.
	Get(key string) (any, bool)

	// Typed getters return the zero value for a missing or unconvertible key.
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetStringSlice(key string) []string

	Set(key string, value any) error
	Save() error
	// Load replaces the in-memory values with what is persisted.
	Load() error

	// Path identifies the backing file, or ":memory:".
	Path() string
}
