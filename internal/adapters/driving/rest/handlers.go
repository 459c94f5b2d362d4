package rest

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/logger"
)

// requirementsRequest is the POST /requirements body.
type requirementsRequest struct {
	ProjectID string `json:"projectId"`
}

// handleUpload stages the uploaded files, runs extraction and removes them.
func (s *Server) handleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No files uploaded."})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No files uploaded."})
		return
	}
	if len(files) > s.maxFiles {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("At most %d files per upload.", s.maxFiles)})
		return
	}

	userID := strings.TrimSpace(c.PostForm("userId"))
	projectID := strings.TrimSpace(c.PostForm("projectId"))
	if userID == "" || projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User ID or Project ID is missing."})
		return
	}

	dir, err := os.MkdirTemp(s.uploadDir, "reqsift-upload-*")
	if err != nil {
		logger.Error("creating upload dir: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not stage uploads.", "result": []any{}})
		return
	}
	defer os.RemoveAll(dir)

	paths := make([]string, 0, len(files))
	for i, fh := range files {
		// The extension selects the provider, so it is kept.
		path := filepath.Join(dir, fmt.Sprintf("%02d-%s", i, filepath.Base(fh.Filename)))
		if err := c.SaveUploadedFile(fh, path); err != nil {
			logger.Error("saving upload %s: %v", fh.Filename, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not stage uploads.", "result": []any{}})
			return
		}
		paths = append(paths, path)
	}

	result, err := s.extraction.Run(c.Request.Context(), domain.ExtractionRequest{
		ProjectID:   projectID,
		UserID:      userID,
		Paths:       paths,
		Instruction: c.PostForm("prompt"),
	})

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"message": "Processed & saved to DB",
			"result":  result.Requirements,
			"stats":   result.Stats,
			"runId":   result.RunID,
		})
	case result != nil:
		// Extraction worked but the run was not stored.
		logger.Error("upload for %s: %v", projectID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Processed but not saved: " + err.Error(),
			"result":  result.Requirements,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "result": []any{}})
	default:
		logger.Error("upload for %s: %v", projectID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error(), "result": []any{}})
	}
}

// handleRequirements returns every stored run for a project.
func (s *Server) handleRequirements(c *gin.Context) {
	var req requirementsRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ProjectID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Project ID is required"})
		return
	}

	runs, err := s.extraction.Runs(c.Request.Context(), req.ProjectID)
	if err != nil {
		logger.Error("listing runs for %s: %v", req.ProjectID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong"})
		return
	}
	if len(runs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No requirements found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Requirements found",
		"requirements": runs,
	})
}
