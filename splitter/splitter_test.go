package splitter

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audiobook/types"
)

func TestSplitSentences(t *testing.T) {
	t.Parallel()

	units, err := Split("The cat sat. The dog ran. Birds fly high.", MethodSentences, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"The cat sat.", "The dog ran.", "Birds fly high."}, units)
}

func TestSplitSentencesCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	units, err := Split("First  one.\n\n  Second   one!   Third?", MethodSentences, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"First one.", "Second one!", "Third?"}, units)
}

func TestSplitSentencesNoTerminalPunctuation(t *testing.T) {
	t.Parallel()

	units, err := Split("no punctuation here", MethodSentences, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"no punctuation here"}, units)
}

func TestSplitDeterminism(t *testing.T) {
	t.Parallel()

	text := "One two three four five six seven eight nine ten eleven twelve."
	for _, method := range []Method{MethodSentences, MethodChunks} {
		first, err := Split(text, method, Options{ChunkSize: 4, Overlap: 1})
		require.NoError(t, err)
		second, err := Split(text, method, Options{ChunkSize: 4, Overlap: 1})
		require.NoError(t, err)
		assert.Equal(t, first, second, "method %s", method)
	}
}

func TestSplitChunksInvariants(t *testing.T) {
	t.Parallel()

	words := make([]string, 23)
	for i := range words {
		words[i] = string(rune('a' + i))
	}
	const size, overlap = 5, 2

	units, err := Split(strings.Join(words, " "), MethodChunks, Options{ChunkSize: size, Overlap: overlap})
	require.NoError(t, err)
	require.NotEmpty(t, units)

	for i, u := range units {
		got := strings.Fields(u)
		if i < len(units)-1 {
			assert.Len(t, got, size, "unit %d", i)
		} else {
			assert.LessOrEqual(t, len(got), size, "last unit")
		}
		if i > 0 {
			prev := strings.Fields(units[i-1])
			shared := prev[len(prev)-overlap:]
			assert.Equal(t, shared, got[:overlap], "units %d and %d share overlap", i-1, i)
		}
	}

	// The full word sequence is covered in order.
	var reassembled []string
	for i, u := range units {
		got := strings.Fields(u)
		if i == 0 {
			reassembled = append(reassembled, got...)
		} else {
			reassembled = append(reassembled, got[overlap:]...)
		}
	}
	assert.Equal(t, words, reassembled)
}

func TestSplitChunksShortText(t *testing.T) {
	t.Parallel()

	units, err := Split("just four little words", MethodChunks, Options{ChunkSize: 10, Overlap: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"just four little words"}, units)
}

func TestSplitErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		method Method
		opts   Options
		want   error
	}{
		{"empty input", "   \n\t ", MethodSentences, Options{}, types.ErrEmptyInput},
		{"overlap equals size", "some text here", MethodChunks, Options{ChunkSize: 3, Overlap: 3}, types.ErrInvalidConfig},
		{"overlap above size", "some text here", MethodChunks, Options{ChunkSize: 3, Overlap: 5}, types.ErrInvalidConfig},
		{"negative overlap", "some text here", MethodChunks, Options{ChunkSize: 3, Overlap: -1}, types.ErrInvalidConfig},
		{"negative size", "some text here", MethodChunks, Options{ChunkSize: -2}, types.ErrInvalidConfig},
		{"unknown method", "some text here", Method("paragraphs"), Options{}, types.ErrInvalidConfig},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Split(tc.text, tc.method, tc.opts)
			assert.True(t, errors.Is(err, tc.want), "got %v, want %v", err, tc.want)
		})
	}
}
