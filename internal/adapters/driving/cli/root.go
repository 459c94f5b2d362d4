// Package cli provides the reqsift command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqsift/internal/app"
	"github.com/custodia-labs/reqsift/internal/core/ports/driving"
	"github.com/custodia-labs/reqsift/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	verbose   bool
	noConfig  bool
	configDir string
)

// Services used by commands. Tests inject mocks directly.
var (
	settingsService   driving.SettingsService
	extractionService driving.ExtractionService
	closers           []func() error
)

var rootCmd = &cobra.Command{
	Use:   "reqsift",
	Short: "Extract software requirements from documents",
	Long: `reqsift reads PDFs, Word documents, spreadsheets, emails, audio and video,
asks a language model to pull out the software requirements they contain,
and stores a deduplicated list per project.

Each run continues from the project's latest stored requirements, so
re-running with new documents only adds what is new.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  initSettings,
	PersistentPostRunE: closeServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")
	rootCmd.PersistentFlags().BoolVar(&noConfig, "no-config", false, "ignore ~/.reqsift/config.toml and use defaults")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.reqsift)")
}

// SetVersion sets the version reported by 'reqsift version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func initSettings(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if settingsService != nil {
		return nil
	}
	svc, err := app.NewSettings(app.Options{ConfigDir: configDir, NoConfig: noConfig})
	if err != nil {
		return err
	}
	settingsService = svc
	return nil
}

// requireExtraction returns the extraction service, building it from
// settings on first use.
func requireExtraction(ctx context.Context, needLLM bool, cacheSize int) (driving.ExtractionService, error) {
	if extractionService != nil {
		return extractionService, nil
	}
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	a, err := app.Build(ctx, settings, app.Options{
		ConfigDir: configDir,
		NoConfig:  noConfig,
		NeedLLM:   needLLM,
		CacheSize: cacheSize,
	})
	if err != nil {
		return nil, err
	}

	closers = append(closers, a.Close)
	extractionService = a.Extraction
	return extractionService, nil
}

// closeServices releases anything requireExtraction opened.
func closeServices(_ *cobra.Command, _ []string) error {
	if len(closers) == 0 {
		return nil
	}
	var errs []error
	for _, closeFn := range closers {
		errs = append(errs, closeFn())
	}
	closers = nil
	extractionService = nil
	return errors.Join(errs...)
}
