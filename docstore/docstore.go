// Package docstore resolves company documents by title and lists available
// document names.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no document matches the requested title.
var ErrNotFound = errors.New("document not found")

// Store is the document storage boundary.
type Store interface {
	// FindByTitle returns a link to the best matching document.
	FindByTitle(ctx context.Context, title string) (string, error)
	// ListNames returns document names for the 1-indexed inclusive range
	// [start, end], ordered by name.
	ListNames(ctx context.Context, start, end int) ([]string, error)
}
