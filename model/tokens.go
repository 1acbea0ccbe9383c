package model

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter measures prompt text against the context budget.
type TokenCounter interface {
	Count(text string) int
}

// TiktokenCounter counts with the gpt-3.5-turbo BPE, which is close enough
// for budgeting across the models the service talks to. If the encoding
// cannot be loaded it falls back to a words-per-token estimate instead of
// failing answer requests.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func NewTiktokenCounter() *TiktokenCounter {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return &TiktokenCounter{}
	}
	return &TiktokenCounter{enc: enc}
}

func (c *TiktokenCounter) Count(text string) int {
	if c.enc == nil {
		return len(strings.Fields(text)) * 4 / 3
	}
	return len(c.enc.Encode(text, nil, nil))
}

// WordCounter budgets by word count. Used in tests and wherever the BPE
// files are unavailable.
type WordCounter struct{}

func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}
