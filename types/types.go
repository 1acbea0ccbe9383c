package types

import (
	"fmt"
	"time"
)

// Unit is one retrievable segment of a document together with its embedding.
type Unit struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Index      int       `json:"index"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"-"`
	Score      float64   `json:"score,omitempty"`
}

// UnitID builds the deterministic identifier for a document segment, so
// re-indexing the same document yields the same ids.
func UnitID(documentID string, index int) string {
	return fmt.Sprintf("%s_%d", documentID, index)
}

// Source points at a unit that contributed to an answer.
type Source struct {
	UnitID     string  `json:"unit_id"`
	DocumentID string  `json:"document_id"`
	Index      int     `json:"index"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// ConversationTurn is one completed question/answer exchange. Turns are
// appended after a successful answer and never mutated.
type ConversationTurn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources"`
	Degraded  bool      `json:"degraded,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AnswerResult is what the answer synthesizer returns to the caller.
type AnswerResult struct {
	Answer     string    `json:"answer"`
	Sources    []Source  `json:"sources"`
	Confidence float64   `json:"confidence"`
	Degraded   bool      `json:"degraded"`
	SessionID  string    `json:"session_id"`
	Timestamp  time.Time `json:"timestamp"`
}
