package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

// mockProvider is a test double for ContentProvider.
type mockProvider struct {
	category domain.Category
	text     string
	calls    int
}

func (m *mockProvider) Category() domain.Category { return m.category }

func (m *mockProvider) Extract(_ context.Context, path string) (*domain.ExtractedContent, error) {
	m.calls++
	return &domain.ExtractedContent{Path: path, Text: m.text}, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	p := &mockProvider{category: domain.CategoryPDF}
	r.Register(p)

	got, err := r.Get(domain.CategoryPDF)
	require.NoError(t, err)
	assert.Same(t, p, got)
}

func TestRegistry_GetUnregistered(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get(domain.CategoryAudio)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_ReplacesExisting(t *testing.T) {
	r := NewRegistry()
	first := &mockProvider{category: domain.CategoryDOCX, text: "first"}
	second := &mockProvider{category: domain.CategoryDOCX, text: "second"}
	r.Register(first)
	r.Register(second)

	got, err := r.Get(domain.CategoryDOCX)
	require.NoError(t, err)
	assert.Same(t, second, got)
}

func TestRegistry_IgnoresUnsupported(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{category: domain.CategoryUnsupported})
	r.Register(nil)

	assert.Empty(t, r.Categories())
}

func TestRegistry_CategoriesInProcessingOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockProvider{category: domain.CategoryEmail})
	r.Register(&mockProvider{category: domain.CategoryPDF})
	r.Register(&mockProvider{category: domain.CategoryExcel})

	assert.Equal(t, []domain.Category{domain.CategoryPDF, domain.CategoryExcel, domain.CategoryEmail}, r.Categories())
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterDefaults(r, Options{OCR: true}))

	assert.Equal(t, domain.AllCategories(), r.Categories())
	for _, c := range domain.AllCategories() {
		p, err := r.Get(c)
		require.NoError(t, err)
		assert.Equal(t, c, p.Category())
	}
}

func TestRegisterDefaults_WithCache(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterDefaults(r, Options{CacheSize: 4}))

	p, err := r.Get(domain.CategoryDOCX)
	require.NoError(t, err)
	assert.IsType(t, &CachingProvider{}, p)
}

func TestOptionsFromSettings(t *testing.T) {
	opts := OptionsFromSettings(domain.DefaultAppSettings().Extraction)
	assert.True(t, opts.OCR)
	assert.Equal(t, "base", opts.WhisperModel)
	assert.Nil(t, opts.Runner)
}
