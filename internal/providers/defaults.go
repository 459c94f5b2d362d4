package providers

import (
	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
	"github.com/custodia-labs/reqsift/internal/providers/docx"
	"github.com/custodia-labs/reqsift/internal/providers/eml"
	"github.com/custodia-labs/reqsift/internal/providers/excel"
	"github.com/custodia-labs/reqsift/internal/providers/media"
	"github.com/custodia-labs/reqsift/internal/providers/pdf"
	"github.com/custodia-labs/reqsift/internal/providers/runner"
)

// Options configures the built-in providers.
type Options struct {
	// OCR enables OCR of PDF pages without a text layer.
	OCR bool

	// WhisperModel is the transcription model. Empty uses the whisper default.
	WhisperModel string

	// Runner executes external tools. Nil uses os/exec.
	Runner driven.CommandRunner

	// CacheSize wraps each provider in an LRU cache of this many files.
	// Zero disables caching.
	CacheSize int
}

// OptionsFromSettings derives provider options from extraction settings.
func OptionsFromSettings(s domain.ExtractionSettings) Options {
	return Options{
		OCR:          s.OCR,
		WhisperModel: s.WhisperModel,
	}
}

// RegisterDefaults registers a provider for every supported category.
// Email attachments reuse the PDF and Excel providers.
func RegisterDefaults(r *Registry, opts Options) error {
	cmd := opts.Runner
	pdfOpts := []pdf.Option{pdf.WithOCR(opts.OCR)}
	if cmd == nil {
		cmd = runner.Exec{}
		pdfOpts = append(pdfOpts, pdf.WithToolCheck(runner.CheckAvailable))
	}

	pdfProvider := pdf.NewWithRunner(cmd, pdfOpts...)
	excelProvider := excel.New()
	transcriber := media.NewTranscriber(cmd, opts.WhisperModel)

	all := []driven.ContentProvider{
		pdfProvider,
		docx.New(),
		media.NewAudio(transcriber),
		media.NewVideo(cmd, transcriber),
		excelProvider,
		eml.New(pdfProvider, excelProvider),
	}

	for _, p := range all {
		if opts.CacheSize > 0 {
			cached, err := NewCachingProvider(p, opts.CacheSize)
			if err != nil {
				return err
			}
			p = cached
		}
		r.Register(p)
	}
	return nil
}
