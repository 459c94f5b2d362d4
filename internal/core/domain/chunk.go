package domain

import "unicode/utf8"

// Chunk is a bounded, line-aligned slice of bucket text.
// A Chunk exceeds the size limit only when it holds a single oversized line.
type Chunk struct {
	// Index is the 1-based position of the chunk in its sequence.
	Index int

	// Text is the chunk content, line terminators included.
	Text string
}

// Size returns the chunk length in characters.
func (c Chunk) Size() int {
	return utf8.RuneCountInString(c.Text)
}

// JoinChunks concatenates chunk texts in order.
// For any output of the chunker this reproduces the input exactly.
func JoinChunks(chunks []Chunk) string {
	n := 0
	for _, c := range chunks {
		n += len(c.Text)
	}
	buf := make([]byte, 0, n)
	for _, c := range chunks {
		buf = append(buf, c.Text...)
	}
	return string(buf)
}
