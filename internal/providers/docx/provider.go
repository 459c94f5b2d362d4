// Package docx extracts paragraphs and tables from Word documents.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.ContentProvider = (*Provider)(nil)

// documentPart is the main document entry inside the archive.
const documentPart = "word/document.xml"

// Provider handles DOCX documents.
type Provider struct{}

// New creates a new DOCX provider.
func New() *Provider {
	return &Provider{}
}

// Category returns CategoryDOCX.
func (p *Provider) Category() domain.Category {
	return domain.CategoryDOCX
}

// Extract returns the body paragraphs, one per line, and every top-level table.
func (p *Provider) Extract(_ context.Context, path string) (*domain.ExtractedContent, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a docx archive: %v", domain.ErrInvalidInput, path, err)
	}
	defer reader.Close()

	data, err := readPart(&reader.Reader, documentPart)
	if err != nil {
		return nil, err
	}

	text, tables, err := parseDocumentXML(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidInput, documentPart, err)
	}

	return &domain.ExtractedContent{
		Path:   path,
		Text:   text,
		Tables: tables,
	}, nil
}

// readPart returns the contents of one archive entry.
// A document without the entry reads as empty.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
		Tables     []table     `xml:"tbl"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

type table struct {
	Rows []tableRow `xml:"tr"`
}

type tableRow struct {
	Cells []tableCell `xml:"tc"`
}

type tableCell struct {
	Paragraphs []paragraph `xml:"p"`
}

func (p paragraph) text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			sb.WriteString(t.Content)
		}
	}
	return sb.String()
}

func (c tableCell) text() string {
	parts := make([]string, len(c.Paragraphs))
	for i, p := range c.Paragraphs {
		parts[i] = p.text()
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// parseDocumentXML returns the paragraph text and the tables of the body.
// Each paragraph is followed by a newline, so empty paragraphs keep their line.
func parseDocumentXML(data []byte) (string, []domain.Table, error) {
	if len(data) == 0 {
		return "", nil, nil
	}

	var doc documentXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	for _, para := range doc.Body.Paragraphs {
		sb.WriteString(para.text())
		sb.WriteString("\n")
	}

	tables := make([]domain.Table, 0, len(doc.Body.Tables))
	for _, tbl := range doc.Body.Tables {
		rows := make(domain.Table, 0, len(tbl.Rows))
		for _, tr := range tbl.Rows {
			cells := make([]string, len(tr.Cells))
			for i, tc := range tr.Cells {
				cells[i] = tc.text()
			}
			rows = append(rows, cells)
		}
		tables = append(tables, rows)
	}

	return sb.String(), tables, nil
}
