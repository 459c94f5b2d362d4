package driven

import (
	"context"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

// ContentProvider extracts text and tables from files of one category.
type ContentProvider interface {
	// Category returns the category this provider handles.
	Category() domain.Category

	// Extract reads the file at path.
	// An empty result is valid; errors are reported per file.
	Extract(ctx context.Context, path string) (*domain.ExtractedContent, error)
}

// ProviderRegistry selects the provider for a category.
type ProviderRegistry interface {
	// Register adds a provider, replacing any existing one for its category.
	Register(provider ContentProvider)

	// Get returns the provider for a category.
	// Returns domain.ErrUnsupportedType if none is registered.
	Get(category domain.Category) (ContentProvider, error)

	// Categories returns the registered categories in processing order.
	Categories() []domain.Category
}

// CommandRunner executes external programs.
// Providers that shell out to OCR or transcription tools use it so tests
// can substitute canned output.
type CommandRunner interface {
	// Run executes name with args and returns its standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
