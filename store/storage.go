package store

import (
	"context"

	"audiobook/types"
)

// VectorStorer owns unit storage and durability, keyed by document id.
//
// Exactly one collection is "active" at a time: Activate moves the pointer
// and retrieval only ever searches the active collection, so a question
// about one document can never surface stale units from another.
type VectorStorer interface {
	// Init prepares backing storage (schema, extensions).
	Init(ctx context.Context) error

	// ClearCollection removes every unit of the document. Clearing a
	// collection that does not exist is not an error.
	ClearCollection(ctx context.Context, documentID string) error

	// UpsertUnits inserts units, replacing any existing unit with the
	// same id. Writes are durable before it returns.
	UpsertUnits(ctx context.Context, documentID string, units []types.Unit) error

	// Query returns up to topK units of the document ordered by cosine
	// similarity to the vector, descending; ties break on ascending id.
	// An empty or absent collection yields an empty result, not an error.
	Query(ctx context.Context, documentID string, vector []float32, topK int) ([]types.Unit, error)

	// Activate marks the document's collection as the sole retrieval
	// target, replacing whichever collection was active before.
	Activate(ctx context.Context, documentID string) error

	// ActiveCollection returns the active document id, or "" when no
	// document has been activated yet.
	ActiveCollection(ctx context.Context) (string, error)

	Close() error
}
