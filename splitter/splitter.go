package splitter

import (
	"fmt"
	"regexp"
	"strings"

	"audiobook/types"
)

// Method selects how a document is segmented.
type Method string

const (
	// MethodSentences splits on sentence-terminal punctuation.
	MethodSentences Method = "sentences"
	// MethodChunks slides a word window with overlap over the text.
	MethodChunks Method = "chunks"
)

// Original product defaults: 400-word windows with 50 words of overlap.
const (
	DefaultChunkSize = 400
	DefaultOverlap   = 50
)

// Options configures the chunks method. Ignored for sentences.
type Options struct {
	ChunkSize int
	Overlap   int
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	sentenceEnd  = regexp.MustCompile(`([.!?]+)\s+`)
)

// Split segments text into an ordered list of indexable units. The same
// input and parameters always produce the same sequence; the indexing
// pipeline relies on that for idempotent re-indexing.
func Split(text string, method Method, opts Options) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, types.ErrEmptyInput
	}

	switch method {
	case MethodSentences, "":
		return splitSentences(text), nil
	case MethodChunks:
		return splitChunks(text, opts)
	default:
		return nil, fmt.Errorf("%w: unknown split method %q", types.ErrInvalidConfig, method)
	}
}

// splitSentences splits on ., ! or ? followed by whitespace, with runs of
// whitespace collapsed first. Empty results are dropped.
func splitSentences(text string) []string {
	flat := strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	parts := sentenceEnd.ReplaceAllString(flat, "$1\x00")

	var sentences []string
	for _, s := range strings.Split(parts, "\x00") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		sentences = append(sentences, s)
	}
	return sentences
}

// splitChunks slides a window of chunkSize words advancing by
// chunkSize-overlap, so consecutive chunks share exactly overlap words.
// The last chunk may be shorter.
func splitChunks(text string, opts Options) ([]string, error) {
	size := opts.ChunkSize
	if size == 0 {
		size = DefaultChunkSize
	}
	overlap := opts.Overlap
	if opts.ChunkSize == 0 && opts.Overlap == 0 {
		overlap = DefaultOverlap
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive, got %d", types.ErrInvalidConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap must satisfy 0 <= overlap < chunk_size, got %d/%d",
			types.ErrInvalidConfig, overlap, size)
	}

	words := strings.Fields(text)
	var chunks []string
	for start := 0; start < len(words); start += size - overlap {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks, nil
}
