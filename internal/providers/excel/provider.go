// Package excel extracts sheets from spreadsheets with excelize.
package excel

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.ContentProvider = (*Provider)(nil)

// Provider handles XLSX workbooks.
type Provider struct{}

// New creates a new Excel provider.
func New() *Provider {
	return &Provider{}
}

// Category returns CategoryExcel.
func (p *Provider) Category() domain.Category {
	return domain.CategoryExcel
}

// Extract renders every sheet as a header line followed by its rows,
// and returns each sheet as a table. Rows are padded to the sheet width.
// Legacy .xls workbooks are not readable and fail with ErrUnsupportedType.
func (p *Provider) Extract(ctx context.Context, path string) (*domain.ExtractedContent, error) {
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return nil, fmt.Errorf("%w: legacy .xls workbook %s, save it as .xlsx", domain.ErrUnsupportedType, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	var tables []domain.Table

	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		rows = padRows(rows)

		fmt.Fprintf(&sb, "\n\nSheet: %s\n", sheet)
		for _, row := range rows {
			sb.WriteString(strings.Join(row, " | "))
			sb.WriteString("\n")
		}
		tables = append(tables, domain.Table(rows))
	}

	return &domain.ExtractedContent{
		Path:   path,
		Text:   sb.String(),
		Tables: tables,
	}, nil
}

// padRows extends every row to the width of the widest one.
func padRows(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		out[i] = padded
	}
	return out
}
