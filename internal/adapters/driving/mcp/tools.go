package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

// ExtractInput is the input schema for the extract_requirements tool.
type ExtractInput struct {
	ProjectID string   `json:"project_id" jsonschema:"project whose requirement set is extended"`
	UserID    string   `json:"user_id,omitempty" jsonschema:"user recorded with the run (default mcp)"`
	Paths     []string `json:"paths" jsonschema:"absolute paths of the files to read (at most 10)"`
	Prompt    string   `json:"prompt,omitempty" jsonschema:"extra instruction for the model"`
	NoStore   bool     `json:"no_store,omitempty" jsonschema:"do not persist the result"`
}

// ExtractOutput is the output schema for the extract_requirements tool.
type ExtractOutput struct {
	RunID        string              `json:"run_id,omitempty"`
	Requirements []RequirementOutput `json:"requirements"`
	Count        int                 `json:"count"`
	Added        int                 `json:"added"`
	Processed    int                 `json:"files_processed"`
	Skipped      int                 `json:"files_skipped"`
	Failed       int                 `json:"files_failed"`
}

// GetInput is the input schema for the get_requirements tool.
type GetInput struct {
	ProjectID string `json:"project_id" jsonschema:"project to read"`
	All       bool   `json:"all,omitempty" jsonschema:"return every stored run instead of the latest requirements"`
}

// GetOutput is the output schema for the get_requirements tool.
type GetOutput struct {
	Requirements []RequirementOutput `json:"requirements,omitempty"`
	Runs         []RunOutput         `json:"runs,omitempty"`
	Count        int                 `json:"count"`
}

// RequirementOutput is a single requirement record.
type RequirementOutput struct {
	Feature     string `json:"feature"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Type        string `json:"type"`
	MoSCoW      string `json:"moscow"`
	Question    string `json:"question"`
	Answer      string `json:"answer,omitempty"`
}

// RunOutput is a stored run summary.
type RunOutput struct {
	ID           string              `json:"id"`
	UserID       string              `json:"user_id"`
	CreatedAt    string              `json:"created_at"`
	Requirements []RequirementOutput `json:"requirements"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_requirements",
		Description: "Extract software requirements from local files and add them to a project",
	}, s.handleExtract)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_requirements",
		Description: "Read the stored requirements of a project",
	}, s.handleGet)
}

// handleExtract handles the extract_requirements tool invocation.
func (s *Server) handleExtract(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		userID = DefaultUserID
	}

	result, err := s.ports.Extraction.Run(ctx, domain.ExtractionRequest{
		ProjectID:   input.ProjectID,
		UserID:      userID,
		Paths:       input.Paths,
		Instruction: input.Prompt,
		SkipStore:   input.NoStore,
	})
	if err != nil {
		if result != nil {
			return nil, ExtractOutput{}, fmt.Errorf("requirements were extracted but not saved: %w", err)
		}
		return nil, ExtractOutput{}, err
	}

	return nil, ExtractOutput{
		RunID:        result.RunID,
		Requirements: toRequirementOutputs(result.Requirements),
		Count:        len(result.Requirements),
		Added:        result.Added,
		Processed:    result.Stats.FilesProcessed,
		Skipped:      result.Stats.FilesSkipped,
		Failed:       result.Stats.FilesFailed,
	}, nil
}

// handleGet handles the get_requirements tool invocation.
// A project with no runs yields an empty result, not an error.
func (s *Server) handleGet(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetInput,
) (*mcp.CallToolResult, GetOutput, error) {
	if strings.TrimSpace(input.ProjectID) == "" {
		return nil, GetOutput{}, fmt.Errorf("%w: project_id is required", domain.ErrInvalidInput)
	}

	if input.All {
		runs, err := s.ports.Extraction.Runs(ctx, input.ProjectID)
		if err != nil {
			return nil, GetOutput{}, err
		}
		out := GetOutput{Runs: make([]RunOutput, len(runs)), Count: len(runs)}
		for i := range runs {
			out.Runs[i] = RunOutput{
				ID:           runs[i].ID,
				UserID:       runs[i].UserID,
				CreatedAt:    runs[i].CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
				Requirements: toRequirementOutputs(runs[i].Requirements),
			}
		}
		return nil, out, nil
	}

	records, err := s.ports.Extraction.Previous(ctx, input.ProjectID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, GetOutput{}, nil
	}
	if err != nil {
		return nil, GetOutput{}, err
	}
	return nil, GetOutput{Requirements: toRequirementOutputs(records), Count: len(records)}, nil
}

func toRequirementOutputs(records []domain.Requirement) []RequirementOutput {
	out := make([]RequirementOutput, len(records))
	for i, r := range records {
		out[i] = RequirementOutput{
			Feature:     r.Feature,
			Description: r.Description,
			Priority:    r.Priority,
			Type:        r.Type,
			MoSCoW:      r.MoSCoW,
			Question:    r.Question,
			Answer:      r.Answer,
		}
	}
	return out
}
