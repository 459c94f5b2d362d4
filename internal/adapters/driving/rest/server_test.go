package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

// mockExtraction implements driving.ExtractionService.
type mockExtraction struct {
	result  *domain.ExtractionResult
	err     error
	runs    []domain.ExtractionRun
	runsErr error

	gotReq   domain.ExtractionRequest
	existed  []bool
	contents []string
}

func (m *mockExtraction) Run(_ context.Context, req domain.ExtractionRequest) (*domain.ExtractionResult, error) {
	m.gotReq = req
	for _, p := range req.Paths {
		data, err := os.ReadFile(p)
		m.existed = append(m.existed, err == nil)
		m.contents = append(m.contents, string(data))
	}
	return m.result, m.err
}

func (m *mockExtraction) Previous(context.Context, string) ([]domain.Requirement, error) {
	return nil, domain.ErrNotFound
}

func (m *mockExtraction) Runs(context.Context, string) ([]domain.ExtractionRun, error) {
	return m.runs, m.runsErr
}

type uploadFile struct {
	name, content string
}

func uploadRequest(t *testing.T, fields map[string]string, files ...uploadFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(t *testing.T, s *Server, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func sampleResult() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		RunID:     "run-1",
		ProjectID: "p1",
		UserID:    "u1",
		Requirements: []domain.Requirement{
			{Feature: "Login", Description: "Users can log in"},
		},
	}
}

func TestHealth(t *testing.T) {
	s := NewServer(&mockExtraction{}, Config{})
	rec, body := serve(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestUpload_Success(t *testing.T) {
	uploadDir := t.TempDir()
	mock := &mockExtraction{result: sampleResult()}
	s := NewServer(mock, Config{UploadDir: uploadDir})

	req := uploadRequest(t,
		map[string]string{"userId": "u1", "projectId": "p1", "prompt": "Only security"},
		uploadFile{"spec.pdf", "pdf-bytes"},
		uploadFile{"notes.eml", "eml-bytes"},
	)
	rec, body := serve(t, s, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Processed & saved to DB", body["message"])
	assert.Equal(t, "run-1", body["runId"])
	result, ok := body["result"].([]any)
	require.True(t, ok)
	require.Len(t, result, 1)

	assert.Equal(t, "p1", mock.gotReq.ProjectID)
	assert.Equal(t, "u1", mock.gotReq.UserID)
	assert.Equal(t, "Only security", mock.gotReq.Instruction)
	assert.False(t, mock.gotReq.SkipStore)
	require.Len(t, mock.gotReq.Paths, 2)
	assert.Equal(t, ".pdf", filepath.Ext(mock.gotReq.Paths[0]))
	assert.Equal(t, ".eml", filepath.Ext(mock.gotReq.Paths[1]))
	assert.Equal(t, []bool{true, true}, mock.existed)
	assert.Equal(t, []string{"pdf-bytes", "eml-bytes"}, mock.contents)

	// Staged files are removed after the run.
	for _, p := range mock.gotReq.Paths {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), "expected %s to be removed", p)
	}
	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_FilenameCannotEscapeUploadDir(t *testing.T) {
	mock := &mockExtraction{result: sampleResult()}
	s := NewServer(mock, Config{UploadDir: t.TempDir()})

	req := uploadRequest(t, map[string]string{"userId": "u1", "projectId": "p1"},
		uploadFile{"../../etc/evil.docx", "x"})
	rec, _ := serve(t, s, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, mock.gotReq.Paths, 1)
	assert.Equal(t, "00-evil.docx", filepath.Base(mock.gotReq.Paths[0]))
}

func TestUpload_BadRequests(t *testing.T) {
	tooMany := make([]uploadFile, DefaultMaxFiles+1)
	for i := range tooMany {
		tooMany[i] = uploadFile{fmt.Sprintf("f%d.pdf", i), "x"}
	}

	tests := []struct {
		name    string
		req     func(t *testing.T) *http.Request
		message string
	}{
		{
			name: "no files",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, map[string]string{"userId": "u1", "projectId": "p1"})
			},
			message: "No files uploaded.",
		},
		{
			name: "not multipart",
			req: func(*testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("{}"))
			},
			message: "No files uploaded.",
		},
		{
			name: "missing project",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, map[string]string{"userId": "u1"}, uploadFile{"a.pdf", "x"})
			},
			message: "User ID or Project ID is missing.",
		},
		{
			name: "missing user",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, map[string]string{"projectId": "p1"}, uploadFile{"a.pdf", "x"})
			},
			message: "User ID or Project ID is missing.",
		},
		{
			name: "too many files",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, map[string]string{"userId": "u1", "projectId": "p1"}, tooMany...)
			},
			message: "At most 10 files per upload.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockExtraction{result: sampleResult()}
			s := NewServer(mock, Config{UploadDir: t.TempDir()})

			rec, body := serve(t, s, tt.req(t))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, body["message"])
			assert.Empty(t, mock.gotReq.Paths, "extraction must not run")
		})
	}
}

func TestUpload_RunFailure(t *testing.T) {
	mock := &mockExtraction{err: domain.ErrNoRequirements}
	s := NewServer(mock, Config{UploadDir: t.TempDir()})

	req := uploadRequest(t, map[string]string{"userId": "u1", "projectId": "p1"}, uploadFile{"a.pdf", "x"})
	rec, body := serve(t, s, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, body["message"], "no requirements extracted")
	assert.Equal(t, []any{}, body["result"])
}

func TestUpload_PersistenceFailureKeepsRecords(t *testing.T) {
	result := sampleResult()
	result.RunID = ""
	mock := &mockExtraction{result: result, err: fmt.Errorf("store run: %w", domain.ErrPersistence)}
	s := NewServer(mock, Config{UploadDir: t.TempDir()})

	req := uploadRequest(t, map[string]string{"userId": "u1", "projectId": "p1"}, uploadFile{"a.pdf", "x"})
	rec, body := serve(t, s, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, body["message"], "not saved")
	records, ok := body["result"].([]any)
	require.True(t, ok)
	assert.Len(t, records, 1)
}

func TestUpload_InvalidInputFromService(t *testing.T) {
	mock := &mockExtraction{err: fmt.Errorf("%w: bad", domain.ErrInvalidInput)}
	s := NewServer(mock, Config{UploadDir: t.TempDir()})

	req := uploadRequest(t, map[string]string{"userId": "u1", "projectId": "p1"}, uploadFile{"a.pdf", "x"})
	rec, _ := serve(t, s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequirements(t *testing.T) {
	runs := []domain.ExtractionRun{{ID: "run-2", ProjectID: "p1"}, {ID: "run-1", ProjectID: "p1"}}

	tests := []struct {
		name    string
		body    string
		mock    *mockExtraction
		status  int
		message string
	}{
		{name: "found", body: `{"projectId":"p1"}`, mock: &mockExtraction{runs: runs}, status: http.StatusOK, message: "Requirements found"},
		{name: "none", body: `{"projectId":"p1"}`, mock: &mockExtraction{runs: []domain.ExtractionRun{}}, status: http.StatusNotFound, message: "No requirements found"},
		{name: "missing id", body: `{}`, mock: &mockExtraction{}, status: http.StatusBadRequest, message: "Project ID is required"},
		{name: "invalid json", body: `{`, mock: &mockExtraction{}, status: http.StatusBadRequest, message: "Project ID is required"},
		{name: "store error", body: `{"projectId":"p1"}`, mock: &mockExtraction{runsErr: errors.New("down")}, status: http.StatusInternalServerError, message: "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(tt.mock, Config{})
			req := httptest.NewRequest(http.MethodPost, "/requirements", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			rec, body := serve(t, s, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, body["message"])
			if tt.status == http.StatusOK {
				list, ok := body["requirements"].([]any)
				require.True(t, ok)
				assert.Len(t, list, 2)
			}
		})
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := NewServer(&mockExtraction{}, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Run(ctx, "127.0.0.1:0"))
}
