package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

// mockExtractionService is a mock implementation of driving.ExtractionService.
type mockExtractionService struct {
	mu   sync.Mutex
	reqs []domain.ExtractionRequest
	errs map[string]error
}

func (m *mockExtractionService) Run(_ context.Context, req domain.ExtractionRequest) (*domain.ExtractionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reqs = append(m.reqs, req)
	if err := m.errs[filepath.Base(req.Paths[0])]; err != nil {
		return nil, err
	}
	return &domain.ExtractionResult{
		Requirements: []domain.Requirement{{Feature: filepath.Base(req.Paths[0])}},
		Added:        1,
	}, nil
}

func (m *mockExtractionService) Previous(context.Context, string) ([]domain.Requirement, error) {
	return nil, domain.ErrNotFound
}

func (m *mockExtractionService) Runs(context.Context, string) ([]domain.ExtractionRun, error) {
	return nil, nil
}

func TestProcessor_Process(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.docx")
	c := filepath.Join(dir, "c.eml")
	writeFile(t, a, "x")
	writeFile(t, b, "x")
	writeFile(t, c, "x")

	mock := &mockExtractionService{errs: map[string]error{
		"b.docx": domain.ErrNoRequirements,
	}}
	p := NewProcessor(mock, "proj", "watcher", "focus on security")

	type outcome struct {
		path string
		err  error
	}
	var outcomes []outcome
	p.OnResult = func(path string, _ *domain.ExtractionResult, err error) {
		outcomes = append(outcomes, outcome{path, err})
	}

	files := make(chan string, 4)
	files <- a
	files <- filepath.Join(dir, "missing.pdf")
	files <- b
	files <- c
	close(files)

	require.NoError(t, p.Process(context.Background(), files))

	require.Len(t, mock.reqs, 3, "missing file must not be extracted")
	for _, req := range mock.reqs {
		assert.Equal(t, "proj", req.ProjectID)
		assert.Equal(t, "watcher", req.UserID)
		assert.Equal(t, "focus on security", req.Instruction)
		assert.Len(t, req.Paths, 1)
	}
	assert.Equal(t, []string{a}, mock.reqs[0].Paths)
	assert.Equal(t, []string{b}, mock.reqs[1].Paths)
	assert.Equal(t, []string{c}, mock.reqs[2].Paths)

	require.Len(t, outcomes, 3)
	assert.NoError(t, outcomes[0].err)
	assert.ErrorIs(t, outcomes[1].err, domain.ErrNoRequirements)
	assert.NoError(t, outcomes[2].err)
}

func TestProcessor_StopsOnCancel(t *testing.T) {
	mock := &mockExtractionService{}
	p := NewProcessor(mock, "proj", "watcher", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := make(chan string)
	assert.NoError(t, p.Process(ctx, files))
	assert.Empty(t, mock.reqs)
}

func TestProcessor_ContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	writeFile(t, a, "x")
	writeFile(t, b, "x")

	mock := &mockExtractionService{errs: map[string]error{"a.pdf": errors.New("model down")}}
	p := NewProcessor(mock, "proj", "watcher", "")

	files := make(chan string, 2)
	files <- a
	files <- b
	close(files)

	require.NoError(t, p.Process(context.Background(), files))
	assert.Len(t, mock.reqs, 2)
}
