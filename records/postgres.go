package records

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecordsSchema creates the backing table. Callers run it once at startup.
const RecordsSchema = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	collection TEXT NOT NULL,
	doc        JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS records_collection_idx ON records (collection);
CREATE INDEX IF NOT EXISTS records_doc_idx ON records USING gin (doc);
`

// PostgresStore implements Store on a jsonb documents table. Filters map to
// jsonb containment, which covers the equality-style queries the agents
// issue.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a Store over an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Init ensures the backing table exists.
func (s *PostgresStore) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, RecordsSchema); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

// Find returns up to limit matching documents, oldest first.
func (s *PostgresStore) Find(ctx context.Context, collection string, filter Filter, limit int) ([]Document, error) {
	filterJSON, err := marshalFilter(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, doc FROM records
		 WHERE collection = $1 AND doc @> $2::jsonb
		 ORDER BY created_at
		 LIMIT $3`, collection, filterJSON, limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		doc := Document{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", id, err)
		}
		doc["id"] = id
		out = append(out, doc)
	}

	return out, rows.Err()
}

// Insert stores a new document and returns its generated id.
func (s *PostgresStore) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	id := uuid.NewString()
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO records (id, collection, doc) VALUES ($1, $2, $3::jsonb)`,
		id, collection, raw); err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}

	return id, nil
}

// Update merges set into every matching document.
func (s *PostgresStore) Update(ctx context.Context, collection string, filter Filter, set Document) (int64, error) {
	filterJSON, err := marshalFilter(filter)
	if err != nil {
		return 0, err
	}
	setJSON, err := json.Marshal(set)
	if err != nil {
		return 0, fmt.Errorf("encode update: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE records SET doc = doc || $3::jsonb
		 WHERE collection = $1 AND doc @> $2::jsonb`,
		collection, filterJSON, setJSON)
	if err != nil {
		return 0, fmt.Errorf("update records: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Delete removes matching documents.
func (s *PostgresStore) Delete(ctx context.Context, collection string, filter Filter) (int64, error) {
	filterJSON, err := marshalFilter(filter)
	if err != nil {
		return 0, err
	}

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM records WHERE collection = $1 AND doc @> $2::jsonb`,
		collection, filterJSON)
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}

	return tag.RowsAffected(), nil
}

func marshalFilter(filter Filter) ([]byte, error) {
	if filter == nil {
		filter = Filter{}
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	return raw, nil
}
