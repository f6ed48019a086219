package records

import (
	"context"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore is a volatile Store useful for tests and demos. Filter
// matching mirrors the jsonb containment used by PostgresStore at top level.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]Document // collection -> documents
}

// NewInMemoryStore constructs an empty in-memory record store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: map[string][]Document{}}
}

// Find returns up to limit matching documents in insertion order.
func (s *InMemoryStore) Find(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Document
	for _, doc := range s.docs[collection] {
		if len(out) >= limit {
			break
		}
		if matches(doc, filter) {
			out = append(out, clone(doc))
		}
	}

	return out, nil
}

// Insert stores a new document and returns its generated id.
func (s *InMemoryStore) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := clone(doc)
	id := uuid.NewString()
	stored["id"] = id
	s.docs[collection] = append(s.docs[collection], stored)

	return id, nil
}

// Update merges set into every matching document.
func (s *InMemoryStore) Update(ctx context.Context, collection string, filter Filter, set Document) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, doc := range s.docs[collection] {
		if !matches(doc, filter) {
			continue
		}
		for k, v := range set {
			doc[k] = v
		}
		n++
	}

	return n, nil
}

// Delete removes matching documents.
func (s *InMemoryStore) Delete(ctx context.Context, collection string, filter Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.docs[collection][:0]
	var n int64
	for _, doc := range s.docs[collection] {
		if matches(doc, filter) {
			n++
			continue
		}
		kept = append(kept, doc)
	}
	s.docs[collection] = kept

	return n, nil
}

// matches compares with DeepEqual because model-supplied filters may carry
// non-comparable values (objects, arrays) that would make == panic.
func matches(doc Document, filter Filter) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func clone(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
