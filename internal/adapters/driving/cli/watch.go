package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqsift/internal/adapters/driving/watch"
	"github.com/custodia-labs/reqsift/internal/app"
	"github.com/custodia-labs/reqsift/internal/core/domain"
)

var (
	watchProject     string
	watchUser        string
	watchPrompt      string
	watchInitialScan bool
	watchDebounce    time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir> [dirs...]",
	Short: "Extract requirements from files as they appear",
	Long: `Watch directories and run an extraction for every supported file that
is created or updated. Each file is its own run, so every new document
continues from the project's latest requirements.

Writes are debounced: a file is processed once it has been quiet for
--debounce. Hidden files and directories are ignored.

Examples:
  reqsift watch --project acme ~/Inbox
  reqsift watch --project acme --initial-scan --debounce 5s ./docs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchProject, "project", "p", "", "project ID (required)")
	watchCmd.Flags().StringVarP(&watchUser, "user", "u", "watch", "user ID recorded with each run")
	watchCmd.Flags().StringVar(&watchPrompt, "prompt", "", "extra instruction for the model")
	watchCmd.Flags().BoolVar(&watchInitialScan, "initial-scan", false, "process files already in the directories")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a file is processed")
	_ = watchCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	w, err := watch.New(watch.Config{
		Roots:       args,
		InitialScan: watchInitialScan,
		Debounce:    watchDebounce,
	})
	if err != nil {
		return err
	}

	svc, err := requireExtraction(cmd.Context(), true, app.DefaultCacheSize)
	if err != nil {
		return err
	}

	files, err := w.Watch(cmd.Context())
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	p := watch.NewProcessor(svc, watchProject, watchUser, watchPrompt)
	p.OnResult = func(path string, result *domain.ExtractionResult, err error) {
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
		}
		if result != nil {
			writeSummary(stderr, result)
		}
	}

	fmt.Fprintf(stderr, "watching %d director(ies) for project %s\n", len(args), watchProject)
	return p.Process(cmd.Context(), files)
}
