// Package pdf extracts text from PDF files.
//
// The text layer is read with github.com/ledongthuc/pdf. Pages without a
// text layer are rendered with pdftoppm and read back with tesseract when
// OCR is enabled.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
	"github.com/custodia-labs/reqsift/internal/logger"
	"github.com/custodia-labs/reqsift/internal/providers/runner"
)

// Ensure Provider implements the interface.
var _ driven.ContentProvider = (*Provider)(nil)

// OCR tool binaries.
const (
	RenderTool = "pdftoppm"
	OCRTool    = "tesseract"
)

// ocrDPI is the render resolution for OCR.
const ocrDPI = 300

// ErrOCRToolsNotFound indicates pdftoppm or tesseract is missing.
var ErrOCRToolsNotFound = errors.New("pdftoppm and tesseract are required for OCR")

// Provider handles PDF documents.
type Provider struct {
	runner driven.CommandRunner
	ocr    bool
	check  ToolCheck
}

// ToolCheck returns the names that are not installed.
type ToolCheck func(names ...string) []string

// Option configures the provider.
type Option func(*Provider)

// WithOCR enables or disables OCR of pages without a text layer.
func WithOCR(enabled bool) Option {
	return func(p *Provider) {
		p.ocr = enabled
	}
}

// WithToolCheck verifies the OCR tools once at construction. When one is
// missing OCR is switched off with a single warning, instead of failing
// on every blank page.
func WithToolCheck(check ToolCheck) Option {
	return func(p *Provider) {
		p.check = check
	}
}

// New creates a PDF provider that shells out with os/exec and checks
// PATH for the OCR tools.
func New(opts ...Option) *Provider {
	return NewWithRunner(runner.Exec{}, append([]Option{WithToolCheck(runner.CheckAvailable)}, opts...)...)
}

// NewWithRunner creates a PDF provider with a custom command runner.
// No tool check runs unless WithToolCheck is given.
func NewWithRunner(cmd driven.CommandRunner, opts ...Option) *Provider {
	p := &Provider{runner: cmd, ocr: true}
	for _, opt := range opts {
		opt(p)
	}
	if p.ocr && p.check != nil {
		if err := checkOCR(p.check); err != nil {
			logger.Warn("%v; OCR of scanned pages disabled", err)
			p.ocr = false
		}
	}
	return p
}

// OCREnabled reports whether blank pages will be OCR'd.
func (p *Provider) OCREnabled() bool {
	return p.ocr
}

// Category returns CategoryPDF.
func (p *Provider) Category() domain.Category {
	return domain.CategoryPDF
}

// Extract reads every page. Page texts are joined with newlines.
// PDF table detection is not supported, so Tables is always empty.
func (p *Provider) Extract(ctx context.Context, path string) (*domain.ExtractedContent, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := pageText(r, i)
		if strings.TrimSpace(text) == "" && p.ocr {
			ocrText, err := p.ocrPage(ctx, path, i)
			if err != nil {
				logger.Warn("OCR of %s page %d failed: %v", path, i, err)
			} else {
				text = ocrText
			}
		}
		pages = append(pages, text)
	}

	return &domain.ExtractedContent{
		Path: path,
		Text: strings.Join(pages, "\n"),
	}, nil
}

// pageText returns the text layer of one page, empty if it has none.
func pageText(r *pdf.Reader, i int) string {
	page := r.Page(i)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		logger.Debug("page %d: no text layer: %v", i, err)
		return ""
	}
	return text
}

// ocrPage renders one page to PNG and runs tesseract over it.
func (p *Provider) ocrPage(ctx context.Context, path string, page int) (string, error) {
	dir, err := os.MkdirTemp("", "reqsift-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	n := strconv.Itoa(page)
	if _, err := p.runner.Run(ctx, RenderTool,
		"-f", n, "-l", n, "-r", strconv.Itoa(ocrDPI), "-png", "-singlefile", path, prefix); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}

	out, err := p.runner.Run(ctx, OCRTool, prefix+".png", "stdout")
	if err != nil {
		return "", fmt.Errorf("ocr page: %w", err)
	}
	return string(out), nil
}

// checkOCR returns ErrOCRToolsNotFound if either OCR tool is missing.
func checkOCR(check ToolCheck) error {
	if missing := check(RenderTool, OCRTool); len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrOCRToolsNotFound, strings.Join(missing, ", "))
	}
	return nil
}

// InstallInstructions returns instructions for installing the OCR tools.
func InstallInstructions() string {
	return `PDF OCR requires pdftoppm (poppler) and tesseract.

Install:
  macOS:  brew install poppler tesseract
  Ubuntu: sudo apt install poppler-utils tesseract-ocr
  Fedora: sudo dnf install poppler-utils tesseract`
}
