package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

var (
	extractProject string
	extractUser    string
	extractPrompt  string
	extractFormat  string
	extractNoStore bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract requirements from files",
	Long: `Extract requirements from one or more files and store them for the project.

Supported inputs: .pdf, .docx, .xlsx, .eml, .mp3/.wav/.m4a, .mp4/.mov/.mkv.
Unsupported files are skipped. The requirement list is written to stdout
as JSON (or YAML with --format yaml); a summary is written to stderr.

Examples:
  reqsift extract --project acme spec.pdf meeting.mp3
  reqsift extract --project acme --prompt "Only security requirements" rfp.docx
  reqsift extract --project acme --no-store --format yaml notes.eml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractProject, "project", "p", "", "project ID (required)")
	extractCmd.Flags().StringVarP(&extractUser, "user", "u", "cli", "user ID recorded with the run")
	extractCmd.Flags().StringVar(&extractPrompt, "prompt", "", "extra instruction for the model")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", formatJSON, "output format: json or yaml")
	extractCmd.Flags().BoolVar(&extractNoStore, "no-store", false, "do not persist the result")
	_ = extractCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if err := validateFormat(extractFormat); err != nil {
		return err
	}

	svc, err := requireExtraction(cmd.Context(), true, 0)
	if err != nil {
		return err
	}

	result, runErr := svc.Run(cmd.Context(), domain.ExtractionRequest{
		ProjectID:   extractProject,
		UserID:      extractUser,
		Paths:       args,
		Instruction: extractPrompt,
		SkipStore:   extractNoStore,
	})
	if result == nil {
		if errors.Is(runErr, domain.ErrNoRequirements) {
			return fmt.Errorf("no requirements were extracted from %d file(s)", len(args))
		}
		return fmt.Errorf("extraction failed: %w", runErr)
	}

	// Records are printed even when persistence fails.
	if err := writeFormatted(cmd.OutOrStdout(), extractFormat, result.Requirements); err != nil {
		return fmt.Errorf("failed to write requirements: %w", err)
	}
	writeSummary(cmd.ErrOrStderr(), result)

	if runErr != nil {
		return fmt.Errorf("requirements were extracted but not saved: %w", runErr)
	}
	return nil
}
