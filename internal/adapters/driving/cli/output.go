package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

// Output formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// writeFormatted encodes v to w as JSON or YAML.
func writeFormatted(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "", formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: unknown format %q (use json or yaml)", domain.ErrInvalidInput, format)
	}
}

// validateFormat rejects unknown formats before any work is done.
func validateFormat(format string) error {
	switch strings.ToLower(format) {
	case "", formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("%w: unknown format %q (use json or yaml)", domain.ErrInvalidInput, format)
	}
}

// summaryStyles styles the run summary on an interactive terminal.
type summaryStyles struct {
	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	warn  lipgloss.Style
	box   lipgloss.Style
}

func newSummaryStyles() summaryStyles {
	return summaryStyles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		label: lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		value: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
		warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1),
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeSummary prints run statistics, styled when w is a terminal.
func writeSummary(w io.Writer, result *domain.ExtractionResult) {
	if result == nil {
		return
	}

	rows := [][2]string{
		{"Project", result.ProjectID},
		{"Requirements", fmt.Sprintf("%d (%d new)", len(result.Requirements), result.Added)},
		{"Files", fmt.Sprintf("%d processed, %d skipped, %d failed",
			result.Stats.FilesProcessed, result.Stats.FilesSkipped, result.Stats.FilesFailed)},
		{"Chunks", fmt.Sprintf("%d (%d failed)", result.Stats.Chunks, result.Stats.FailedChunks)},
		{"Tables", fmt.Sprintf("%d", len(result.Tables))},
	}
	if result.RunID != "" {
		rows = append(rows, [2]string{"Run", result.RunID})
	}

	if !isTerminal(w) {
		for _, row := range rows {
			fmt.Fprintf(w, "%s: %s\n", row[0], row[1])
		}
		for _, nd := range result.NearDuplicates {
			fmt.Fprintf(w, "Near-duplicate (%.2f): %q ~ %q\n", nd.Similarity, nd.First.Feature, nd.Second.Feature)
		}
		return
	}

	s := newSummaryStyles()
	lines := []string{s.title.Render("Extraction complete")}
	for _, row := range rows {
		lines = append(lines, s.label.Render(fmt.Sprintf("%-13s", row[0]))+s.value.Render(row[1]))
	}
	for _, nd := range result.NearDuplicates {
		lines = append(lines, s.warn.Render(
			fmt.Sprintf("near-duplicate %.2f: %s ~ %s", nd.Similarity, nd.First.Feature, nd.Second.Feature)))
	}
	fmt.Fprintln(w, s.box.Render(strings.Join(lines, "\n")))
}
