package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T, sessionID string, turns ...Turn) *InMemoryStore {
	t.Helper()

	store := NewInMemoryStore()
	for i := range turns {
		turns[i].SessionID = sessionID
	}
	require.NoError(t, store.Append(context.Background(), turns...))

	return store
}

func TestAssembler_Assemble(t *testing.T) {
	tests := []struct {
		name   string
		window int
		turns  []Turn
		want   []string
	}{
		{
			name:   "empty session",
			window: 3,
			turns:  nil,
			want:   []string{},
		},
		{
			name:   "alternating conversation",
			window: 3,
			turns: []Turn{
				{Role: RoleUser, Content: "u1"},
				{Role: RoleAgent, Content: "a1"},
				{Role: RoleUser, Content: "u2"},
				{Role: RoleAgent, Content: "a2"},
			},
			want: []string{"u1", "a1", "u2", "a2"},
		},
		{
			name:   "window keeps only the freshest turns per role",
			window: 3,
			turns: []Turn{
				{Role: RoleUser, Content: "u1"},
				{Role: RoleAgent, Content: "a1"},
				{Role: RoleUser, Content: "u2"},
				{Role: RoleAgent, Content: "a2"},
				{Role: RoleUser, Content: "u3"},
				{Role: RoleAgent, Content: "a3"},
				{Role: RoleUser, Content: "u4"},
				{Role: RoleAgent, Content: "a4"},
			},
			want: []string{"u2", "a2", "u3", "a3", "u4", "a4"},
		},
		{
			name:   "unanswered latest message",
			window: 3,
			turns: []Turn{
				{Role: RoleUser, Content: "u1"},
				{Role: RoleAgent, Content: "a1"},
				{Role: RoleUser, Content: "u2"},
			},
			want: []string{"u1", "a1", "u2"},
		},
		{
			name:   "agent-heavy stream",
			window: 2,
			turns: []Turn{
				{Role: RoleAgent, Content: "a1"},
				{Role: RoleAgent, Content: "a2"},
				{Role: RoleAgent, Content: "a3"},
				{Role: RoleUser, Content: "u1"},
			},
			want: []string{"u1", "a2", "a3"},
		},
		{
			name:   "window of one",
			window: 1,
			turns: []Turn{
				{Role: RoleUser, Content: "u1"},
				{Role: RoleAgent, Content: "a1"},
				{Role: RoleUser, Content: "u2"},
				{Role: RoleAgent, Content: "a2"},
			},
			want: []string{"u2", "a2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seedStore(t, "C1", tt.turns...)
			assembler := NewAssembler(store, func(o *AssemblerOptions) {
				o.Window = tt.window
			})

			mixed, err := assembler.Assemble(context.Background(), "C1")
			require.NoError(t, err)

			got := make([]string, 0, len(mixed))
			for _, turn := range mixed {
				got = append(got, turn.Content)
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAssembler_SessionsAreIsolated(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Append(context.Background(),
		Turn{SessionID: "C1", Role: RoleUser, Content: "in channel one"},
		Turn{SessionID: "C2", Role: RoleUser, Content: "in channel two"},
	))

	assembler := NewAssembler(store)

	mixed, err := assembler.Assemble(context.Background(), "C1")
	require.NoError(t, err)
	require.Len(t, mixed, 1)
	assert.Equal(t, "in channel one", mixed[0].Content)
}

func TestAssembler_StoreErrorPropagates(t *testing.T) {
	assembler := NewAssembler(failingStore{})

	_, err := assembler.Assemble(context.Background(), "C1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch user turns")
}

type failingStore struct{}

func (failingStore) Recent(ctx context.Context, sessionID string, role Role, limit int) ([]Turn, error) {
	return nil, fmt.Errorf("connection refused")
}

func (failingStore) Append(ctx context.Context, turns ...Turn) error {
	return fmt.Errorf("connection refused")
}
