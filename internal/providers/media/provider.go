// Package media transcribes audio and video recordings.
//
// Audio is transcribed with the whisper CLI. Video has its soundtrack
// extracted with ffmpeg first, then goes through the same transcription.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
	"github.com/custodia-labs/reqsift/internal/logger"
	"github.com/custodia-labs/reqsift/internal/providers/runner"
)

// Tool binaries.
const (
	TranscribeTool = "whisper"
	AudioTool      = "ffmpeg"
)

// DefaultModel is the whisper model used when none is configured.
const DefaultModel = domain.DefaultWhisperModel

// Transcriber turns an audio file into text with whisper.
type Transcriber struct {
	runner driven.CommandRunner
	model  string
}

// NewTranscriber creates a transcriber. An empty model uses DefaultModel.
func NewTranscriber(cmd driven.CommandRunner, model string) *Transcriber {
	if cmd == nil {
		cmd = runner.Exec{}
	}
	if model == "" {
		model = DefaultModel
	}
	return &Transcriber{runner: cmd, model: model}
}

// Model returns the whisper model name.
func (t *Transcriber) Model() string {
	return t.model
}

// Transcribe runs whisper over path and returns the transcript.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	dir, err := os.MkdirTemp("", "reqsift-whisper-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	logger.Debug("transcribing %s with model %s", path, t.model)
	if _, err := t.runner.Run(ctx, TranscribeTool, path,
		"--model", t.model,
		"--output_format", "txt",
		"--output_dir", dir); err != nil {
		return "", fmt.Errorf("transcribe %s: %w", path, err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	data, err := os.ReadFile(filepath.Join(dir, base+".txt"))
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Ensure the providers implement the interface.
var (
	_ driven.ContentProvider = (*AudioProvider)(nil)
	_ driven.ContentProvider = (*VideoProvider)(nil)
)

// AudioProvider handles audio recordings.
type AudioProvider struct {
	transcriber *Transcriber
}

// NewAudio creates an audio provider.
func NewAudio(t *Transcriber) *AudioProvider {
	return &AudioProvider{transcriber: t}
}

// Category returns CategoryAudio.
func (p *AudioProvider) Category() domain.Category {
	return domain.CategoryAudio
}

// Extract returns the transcript. Recordings never contain tables.
func (p *AudioProvider) Extract(ctx context.Context, path string) (*domain.ExtractedContent, error) {
	text, err := p.transcriber.Transcribe(ctx, path)
	if err != nil {
		return nil, err
	}
	return &domain.ExtractedContent{Path: path, Text: text}, nil
}

// VideoProvider handles video recordings.
type VideoProvider struct {
	runner      driven.CommandRunner
	transcriber *Transcriber
}

// NewVideo creates a video provider. cmd runs ffmpeg.
func NewVideo(cmd driven.CommandRunner, t *Transcriber) *VideoProvider {
	if cmd == nil {
		cmd = runner.Exec{}
	}
	return &VideoProvider{runner: cmd, transcriber: t}
}

// Category returns CategoryVideo.
func (p *VideoProvider) Category() domain.Category {
	return domain.CategoryVideo
}

// Extract pulls a 16 kHz mono soundtrack from the video and transcribes it.
func (p *VideoProvider) Extract(ctx context.Context, path string) (*domain.ExtractedContent, error) {
	dir, err := os.MkdirTemp("", "reqsift-video-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	audio := filepath.Join(dir, "audio.wav")
	if _, err := p.runner.Run(ctx, AudioTool,
		"-y", "-i", path,
		"-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1",
		audio); err != nil {
		return nil, fmt.Errorf("extract audio from %s: %w", path, err)
	}

	text, err := p.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return nil, err
	}
	return &domain.ExtractedContent{Path: path, Text: text}, nil
}
