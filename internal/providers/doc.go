// Package providers holds the capability providers that turn input files
// into text and tables, one provider per file category.
//
// Providers live in sub-packages:
//
//   - pdf: text layer via ledongthuc/pdf, OCR fallback via pdftoppm and tesseract
//   - docx: paragraphs and tables from word/document.xml
//   - excel: one table per sheet via excelize
//   - eml: headers, body and PDF/Excel attachments
//   - media: audio transcription via whisper, video via ffmpeg then whisper
//   - runner: the os/exec CommandRunner the tool-based providers share
//
// This package provides the Registry that maps categories to providers,
// RegisterDefaults to wire them all, and an LRU caching decorator.
package providers
