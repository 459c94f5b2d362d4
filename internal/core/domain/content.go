package domain

import (
	"fmt"
	"strings"
)

// Table is a tabular region recovered from a file.
// Each row is an ordered list of cell strings.
type Table [][]string

// ExtractedContent is what a capability provider produced for one file.
type ExtractedContent struct {
	// Path is the source file.
	Path string

	// Text is the plain text of the file. May be empty.
	Text string

	// Tables are any tables found in the file, in document order.
	Tables []Table
}

// FileTable is a table tagged with the file it came from.
type FileTable struct {
	// Path is the source file.
	Path string `json:"path" yaml:"path"`

	// Rows are the table cells.
	Rows Table `json:"rows" yaml:"rows"`
}

// CategoryBucket holds the aggregated content for one category in a run.
// Contributions are appended in input order.
type CategoryBucket struct {
	// Category identifies the bucket.
	Category Category

	// Text is the concatenated text of all contributing files.
	Text string

	// Tables are all tables from contributing files.
	Tables []FileTable

	// Files lists the contributing file paths, in input order.
	Files []string
}

// NewCategoryBucket creates an empty bucket for a category.
func NewCategoryBucket(c Category) *CategoryBucket {
	return &CategoryBucket{Category: c}
}

// Append merges one file's content into the bucket.
// The file text is joined with a blank-line separator even when empty.
// Each table is rendered into the text and kept in Tables.
func (b *CategoryBucket) Append(content *ExtractedContent) {
	if content == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(b.Text)
	sb.WriteString("\n\n")
	sb.WriteString(content.Text)

	for i, table := range content.Tables {
		fmt.Fprintf(&sb, "\n\nTable %d from %s:\n", i+1, content.Path)
		sb.WriteString(table.Render())
		b.Tables = append(b.Tables, FileTable{Path: content.Path, Rows: table})
	}

	b.Text = sb.String()
	b.Files = append(b.Files, content.Path)
}

// IsEmpty returns true if no file has contributed to the bucket.
func (b *CategoryBucket) IsEmpty() bool {
	return len(b.Files) == 0
}

// Render writes the table as text, one row per line with cells joined by " | ".
func (t Table) Render() string {
	var sb strings.Builder
	for _, row := range t {
		sb.WriteString(strings.Join(row, " | "))
		sb.WriteString("\n")
	}
	return sb.String()
}
