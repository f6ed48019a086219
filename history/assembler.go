package history

import (
	"context"
	"fmt"
)

// DefaultWindow is the number of turns kept per role in the assembled context.
const DefaultWindow = 3

// Assembler produces the bounded context window handed to the supervisor.
//
// Storage returns reverse-chronological pages per role, so the assembler
// reverses each role stream to chronological order and interleaves them
// user[i], agent[i]. Interleaving restores a plausible conversation even
// when one role has fewer stored turns (e.g. the bot never answered the
// latest user message); it assumes turns alternate roughly 1:1 and is a
// design choice, not a cross-role ordering guarantee.
type Assembler struct {
	store  Store
	window int
}

// AssemblerOptions configures an Assembler.
type AssemblerOptions struct {
	Window int
}

// NewAssembler constructs an Assembler over a Store.
func NewAssembler(store Store, optFns ...func(o *AssemblerOptions)) *Assembler {
	opts := AssemblerOptions{Window: DefaultWindow}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Assembler{store: store, window: opts.Window}
}

// Assemble returns the interleaved context window for a session, oldest
// first. A session with no history yields an empty slice.
func (a *Assembler) Assemble(ctx context.Context, sessionID string) ([]Turn, error) {
	userTurns, err := a.store.Recent(ctx, sessionID, RoleUser, a.window)
	if err != nil {
		return nil, fmt.Errorf("fetch user turns: %w", err)
	}

	agentTurns, err := a.store.Recent(ctx, sessionID, RoleAgent, a.window)
	if err != nil {
		return nil, fmt.Errorf("fetch agent turns: %w", err)
	}

	reverse(userTurns)
	reverse(agentTurns)

	mixed := make([]Turn, 0, len(userTurns)+len(agentTurns))
	steps := len(userTurns)
	if len(agentTurns) > steps {
		steps = len(agentTurns)
	}
	for i := 0; i < steps; i++ {
		if i < len(userTurns) {
			mixed = append(mixed, userTurns[i])
		}
		if i < len(agentTurns) {
			mixed = append(mixed, agentTurns[i])
		}
	}

	return mixed, nil
}

func reverse(turns []Turn) {
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
}
