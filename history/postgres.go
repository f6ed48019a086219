package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists turns in a Postgres table via pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// TurnsSchema creates the backing table. Callers run it once at startup.
const TurnsSchema = `
CREATE TABLE IF NOT EXISTS turns (
	id         BIGSERIAL PRIMARY KEY,
	session_id TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS turns_session_role_idx ON turns (session_id, role, id DESC);
`

// NewPostgresStore constructs a Store over an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Init ensures the backing table exists.
func (s *PostgresStore) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, TurnsSchema); err != nil {
		return fmt.Errorf("create turns table: %w", err)
	}
	return nil
}

// Recent returns up to limit turns for a role, most-recent-first.
func (s *PostgresStore) Recent(ctx context.Context, sessionID string, role Role, limit int) ([]Turn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT session_id, role, content, created_at
		 FROM turns
		 WHERE session_id = $1 AND role = $2
		 ORDER BY id DESC
		 LIMIT $3`, sessionID, string(role), limit)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var out []Turn
	for rows.Next() {
		var t Turn
		var roleStr string
		if err := rows.Scan(&t.SessionID, &roleStr, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.Role = Role(roleStr)
		out = append(out, t)
	}

	return out, rows.Err()
}

// Append inserts turns in order.
func (s *PostgresStore) Append(ctx context.Context, turns ...Turn) error {
	for _, t := range turns {
		created := t.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		if _, err := s.pool.Exec(ctx,
			`INSERT INTO turns (session_id, role, content, created_at) VALUES ($1, $2, $3, $4)`,
			t.SessionID, string(t.Role), t.Content, created); err != nil {
			return fmt.Errorf("insert turn: %w", err)
		}
	}
	return nil
}
