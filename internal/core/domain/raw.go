package domain

import (
	"path/filepath"
	"sort"
	"strings"
)

// Category identifies which capability provider handles a file.
type Category string

// Supported categories.
const (
	// CategoryPDF is a PDF document.
	CategoryPDF Category = "PDF"

	// CategoryDOCX is a Word document.
	CategoryDOCX Category = "DOCX"

	// CategoryAudio is an audio recording.
	CategoryAudio Category = "AUDIO"

	// CategoryVideo is a video recording.
	CategoryVideo Category = "VIDEO"

	// CategoryExcel is a spreadsheet.
	CategoryExcel Category = "EXCEL"

	// CategoryEmail is an RFC 822 email message.
	CategoryEmail Category = "EMAIL"

	// CategoryUnsupported is any file no provider handles.
	CategoryUnsupported Category = "UNSUPPORTED"
)

// categoryByExtension maps lowercase file extensions to categories.
var categoryByExtension = map[string]Category{
	".pdf":  CategoryPDF,
	".docx": CategoryDOCX,
	".mp3":  CategoryAudio,
	".wav":  CategoryAudio,
	".m4a":  CategoryAudio,
	".mpga": CategoryAudio,
	".mp4":  CategoryVideo,
	".avi":  CategoryVideo,
	".mov":  CategoryVideo,
	".mkv":  CategoryVideo,
	".xlsx": CategoryExcel,
	".xls":  CategoryExcel,
	".eml":  CategoryEmail,
}

// CategoryFromPath detects the category of a file from its extension.
// Unknown extensions yield CategoryUnsupported.
func CategoryFromPath(path string) Category {
	ext := strings.ToLower(filepath.Ext(path))
	if c, ok := categoryByExtension[ext]; ok {
		return c
	}
	return CategoryUnsupported
}

// AllCategories returns the supported categories in processing order.
// CategoryUnsupported is never included.
func AllCategories() []Category {
	return []Category{
		CategoryPDF,
		CategoryDOCX,
		CategoryAudio,
		CategoryVideo,
		CategoryExcel,
		CategoryEmail,
	}
}

// IsSupported returns true if a provider can exist for this category.
func (c Category) IsSupported() bool {
	switch c {
	case CategoryPDF, CategoryDOCX, CategoryAudio, CategoryVideo, CategoryExcel, CategoryEmail:
		return true
	default:
		return false
	}
}

// Extensions returns the file extensions that map to this category, sorted.
func (c Category) Extensions() []string {
	var exts []string
	for ext, cat := range categoryByExtension {
		if cat == c {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// RawDocument is an input file queued for extraction.
// It is immutable once created.
type RawDocument struct {
	// Path is the file location on disk.
	Path string

	// Category is detected from the file extension at ingestion time.
	Category Category
}

// NewRawDocument creates a RawDocument with its category detected from path.
func NewRawDocument(path string) RawDocument {
	return RawDocument{
		Path:     path,
		Category: CategoryFromPath(path),
	}
}

// NewRawDocuments creates RawDocuments for paths, preserving order.
func NewRawDocuments(paths []string) []RawDocument {
	docs := make([]RawDocument, len(paths))
	for i, p := range paths {
		docs[i] = NewRawDocument(p)
	}
	return docs
}
