package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_InsertAndFind(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	id, err := store.Insert(ctx, "tasks", Document{"title": "ship release", "status": "open"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = store.Insert(ctx, "tasks", Document{"title": "write notes", "status": "done"})
	require.NoError(t, err)

	docs, err := store.Find(ctx, "tasks", Filter{"status": "open"}, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "ship release", docs[0]["title"])
	assert.Equal(t, id, docs[0]["id"])
}

func TestInMemoryStore_EmptyFilterMatchesAll(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Insert(ctx, "tasks", Document{"n": i})
		require.NoError(t, err)
	}

	docs, err := store.Find(ctx, "tasks", Filter{}, 10)
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	limited, err := store.Find(ctx, "tasks", Filter{}, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestInMemoryStore_Update(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_, err := store.Insert(ctx, "tasks", Document{"title": "ship release", "status": "open"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, "tasks", Document{"title": "write notes", "status": "open"})
	require.NoError(t, err)

	n, err := store.Update(ctx, "tasks", Filter{"title": "ship release"}, Document{"status": "done"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	docs, err := store.Find(ctx, "tasks", Filter{"status": "done"}, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "ship release", docs[0]["title"])
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_, err := store.Insert(ctx, "transcriptions", Document{"meeting": "standup"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, "transcriptions", Document{"meeting": "retro"})
	require.NoError(t, err)

	n, err := store.Delete(ctx, "transcriptions", Filter{"meeting": "standup"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	remaining, err := store.Find(ctx, "transcriptions", Filter{}, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "retro", remaining[0]["meeting"])
}

func TestInMemoryStore_NonComparableFilterValues(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_, err := store.Insert(ctx, "tasks", Document{
		"title": "ship release",
		"tags":  []any{"q3", "infra"},
	})
	require.NoError(t, err)

	// Object and array filter values must match structurally, not panic.
	docs, err := store.Find(ctx, "tasks", Filter{"tags": []any{"q3", "infra"}}, 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "ship release", docs[0]["title"])

	docs, err = store.Find(ctx, "tasks", Filter{"tags": []any{"other"}}, 10)
	require.NoError(t, err)
	assert.Empty(t, docs)

	n, err := store.Delete(ctx, "tasks", Filter{"tags": map[string]any{"nested": true}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInMemoryStore_CollectionsAreIsolated(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_, err := store.Insert(ctx, "tasks", Document{"title": "a"})
	require.NoError(t, err)

	docs, err := store.Find(ctx, "transcriptions", Filter{}, 10)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestInMemoryStore_ResultsAreCopies(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_, err := store.Insert(ctx, "tasks", Document{"title": "a"})
	require.NoError(t, err)

	docs, err := store.Find(ctx, "tasks", Filter{}, 10)
	require.NoError(t, err)
	docs[0]["title"] = "mutated"

	again, err := store.Find(ctx, "tasks", Filter{}, 10)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0]["title"])
}
