// Package history persists conversation turns per session and reassembles a
// bounded chronological context window from them.
package history

import (
	"context"
	"time"
)

// Role distinguishes who produced a turn.
type Role string

const (
	// RoleUser marks turns written by a workspace member.
	RoleUser Role = "user"
	// RoleAgent marks turns written by the bot.
	RoleAgent Role = "agent"
)

// Turn is one persisted conversation entry.
type Turn struct {
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists turns. Recent returns up to limit turns for one role,
// most-recent-first; Append adds completed turns.
type Store interface {
	Recent(ctx context.Context, sessionID string, role Role, limit int) ([]Turn, error)
	Append(ctx context.Context, turns ...Turn) error
}
