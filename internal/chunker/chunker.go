// Package chunker splits aggregated text into line-aligned chunks
// bounded by a maximum character count.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

// DefaultMaxSize is the default maximum number of characters per chunk.
const DefaultMaxSize = domain.DefaultChunkSize

// Chunker splits text on line boundaries.
// Concatenating its output in order reproduces the input exactly.
type Chunker struct {
	maxSize int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxSize sets the chunk size limit in characters.
// Non-positive values are ignored.
func WithMaxSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.maxSize = size
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxSize returns the configured limit.
func (c *Chunker) MaxSize() int {
	return c.maxSize
}

// Split partitions text into chunks of whole lines.
// A line is accumulated into the pending chunk unless doing so would push
// it past the limit, in which case the pending chunk is sealed first.
// A single line longer than the limit becomes its own oversized chunk.
// Empty text yields no chunks.
func (c *Chunker) Split(text string) []domain.Chunk {
	if text == "" {
		return nil
	}

	var (
		chunks  []domain.Chunk
		pending strings.Builder
		size    int
	)

	seal := func() {
		chunks = append(chunks, domain.Chunk{
			Index: len(chunks) + 1,
			Text:  pending.String(),
		})
		pending.Reset()
		size = 0
	}

	for _, line := range splitLines(text) {
		n := utf8.RuneCountInString(line)
		if size > 0 && size+n > c.maxSize {
			seal()
		}
		pending.WriteString(line)
		size += n
	}
	if size > 0 {
		seal()
	}

	return chunks
}

// Split partitions text using a chunker limited to maxSize.
func Split(text string, maxSize int) []domain.Chunk {
	return New(WithMaxSize(maxSize)).Split(text)
}

// splitLines cuts text after each line terminator, keeping it attached.
// "\r\n" stays one terminator. A trailing fragment without one is its own line.
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i+1])
			start = i + 1
		case '\r':
			end := i + 1
			if end < len(text) && text[end] == '\n' {
				end++
				i++
			}
			lines = append(lines, text[start:end])
			start = end
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
