// Package records is the generic durable record store behind the Tasks and
// Transcriptions agents: free-form documents grouped into named collections,
// addressed by containment filters. All mutations are single-document
// operations; the store implements no multi-step transactions.
package records

import (
	"context"
)

// Filter matches documents containing all of its key/value pairs.
type Filter map[string]any

// Document is a stored record including its assigned id.
type Document map[string]any

// Store is the record storage boundary.
type Store interface {
	// Find returns up to limit documents of a collection matching the filter.
	Find(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error)
	// Insert stores a new document and returns its id.
	Insert(ctx context.Context, collection string, doc Document) (string, error)
	// Update merges set into every matching document, returning the count.
	Update(ctx context.Context, collection string, filter Filter, set Document) (int64, error)
	// Delete removes matching documents, returning the count.
	Delete(ctx context.Context, collection string, filter Filter) (int64, error)
}
