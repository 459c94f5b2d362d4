package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

var (
	requirementsAll    bool
	requirementsFormat string
)

var requirementsCmd = &cobra.Command{
	Use:   "requirements [project]",
	Short: "Show stored requirements for a project",
	Long: `Print the requirements of the project's latest run.

Use --all to print every stored run, newest first.`,
	Args: cobra.ExactArgs(1),
	RunE: runRequirements,
}

func init() {
	requirementsCmd.Flags().BoolVarP(&requirementsAll, "all", "a", false, "list every stored run")
	requirementsCmd.Flags().StringVarP(&requirementsFormat, "format", "f", formatJSON, "output format: json or yaml")
	rootCmd.AddCommand(requirementsCmd)
}

func runRequirements(cmd *cobra.Command, args []string) error {
	projectID := args[0]
	if err := validateFormat(requirementsFormat); err != nil {
		return err
	}

	svc, err := requireExtraction(cmd.Context(), false, 0)
	if err != nil {
		return err
	}

	if requirementsAll {
		runs, err := svc.Runs(cmd.Context(), projectID)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			return fmt.Errorf("no requirements found for project %q", projectID)
		}
		return writeFormatted(cmd.OutOrStdout(), requirementsFormat, runs)
	}

	records, err := svc.Previous(cmd.Context(), projectID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no requirements found for project %q", projectID)
	}
	if err != nil {
		return fmt.Errorf("failed to get requirements: %w", err)
	}
	return writeFormatted(cmd.OutOrStdout(), requirementsFormat, records)
}
