package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexParamsValidate(t *testing.T) {
	t.Parallel()

	valid := IndexParams{Name: "doc1", Text: "some text", Method: "sentences"}
	assert.Empty(t, valid.Validate())

	noMethod := IndexParams{Name: "doc1", Text: "some text"}
	assert.Empty(t, noMethod.Validate(), "method is optional")

	missing := IndexParams{Method: "chunks"}
	errs := missing.Validate()
	assert.Contains(t, errs, "Name")
	assert.Contains(t, errs, "Text")

	badMethod := IndexParams{Name: "doc1", Text: "text", Method: "paragraphs"}
	assert.Contains(t, badMethod.Validate(), "Method")

	badChunk := IndexParams{Name: "doc1", Text: "text", ChunkSize: -1}
	assert.Contains(t, badChunk.Validate(), "ChunkSize")
}

func TestAskParamsValidate(t *testing.T) {
	t.Parallel()

	valid := AskParams{Question: "who?", TopK: 3, SessionID: "3b241101-e2bb-4255-8caf-4136c566a962"}
	assert.Empty(t, valid.Validate())

	bare := AskParams{Question: "who?"}
	assert.Empty(t, bare.Validate(), "top_k and session_id are optional")

	assert.Contains(t, (&AskParams{}).Validate(), "Question")
	assert.Contains(t, (&AskParams{Question: "q", TopK: -2}).Validate(), "TopK")
	assert.Contains(t, (&AskParams{Question: "q", SessionID: "not-a-uuid"}).Validate(), "SessionID")
}

func TestUnitID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "doc1_0", UnitID("doc1", 0))
	assert.Equal(t, "my_book_12", UnitID("my_book", 12))
}
