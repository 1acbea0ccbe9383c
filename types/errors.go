package types

import "errors"

// Domain error taxonomy. Components wrap these with %w so callers can
// classify failures with errors.Is regardless of which layer they crossed.
var (
	// ErrInvalidConfig marks bad parameters, fatal to the call.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyInput is returned when a document's text trims to nothing.
	ErrEmptyInput = errors.New("input text is empty")

	// ErrEmptyQuery is returned when a query trims to nothing.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrEmbeddingUnavailable means the embedding provider could not be
	// reached or timed out. Indexing aborts: a partial index is worse
	// than no index.
	ErrEmbeddingUnavailable = errors.New("embedding model unavailable")

	// ErrLLMUnavailable means the language model could not be reached or
	// timed out.
	ErrLLMUnavailable = errors.New("language model unavailable")

	// ErrLLMQuotaExceeded means the language model rejected the request
	// for quota or rate reasons.
	ErrLLMQuotaExceeded = errors.New("language model quota exceeded")

	// ErrNoActiveCollection means no document has been indexed yet.
	ErrNoActiveCollection = errors.New("no active document collection")

	// ErrNoEvidence means retrieval produced zero units for a question.
	ErrNoEvidence = errors.New("no relevant content found in the document")

	// ErrIndexingFailed means the index may hold a partial collection
	// after a mid-write failure; the caller must re-index before asking
	// questions.
	ErrIndexingFailed = errors.New("indexing failed")

	// ErrUnsupportedFormat is returned for uploads the text extractor
	// does not handle.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtractionFailed is returned when an upload cannot be decoded.
	ErrExtractionFailed = errors.New("text extraction failed")
)
