package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"audiobook/types"
)

// PostgresStore keeps units in Postgres with pgvector for similarity
// search. One row per unit; the active-collection pointer is a single-row
// table so it survives restarts.
type PostgresStore struct {
	pool      *pgxpool.Pool
	dimension int
}

func NewPostgresStore(ctx context.Context, connStr string, dimension int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool:      pool,
		dimension: dimension,
	}, nil
}

func (p *PostgresStore) Init(ctx context.Context) error {
	query := fmt.Sprintf(`
    CREATE EXTENSION IF NOT EXISTS vector;

    CREATE TABLE IF NOT EXISTS units (
        id TEXT PRIMARY KEY,
        doc_id TEXT NOT NULL,
        position INT NOT NULL,
        content TEXT NOT NULL,
        embedding vector(%d) NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_units_doc_id ON units(doc_id);

    CREATE INDEX IF NOT EXISTS idx_units_embedding ON units
    USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);

    CREATE TABLE IF NOT EXISTS active_collection (
        id INT PRIMARY KEY CHECK (id = 1),
        doc_id TEXT NOT NULL
    );
    `, p.dimension)
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) ClearCollection(ctx context.Context, documentID string) error {
	_, err := p.pool.Exec(ctx, "DELETE FROM units WHERE doc_id = $1", documentID)
	return err
}

func (p *PostgresStore) UpsertUnits(ctx context.Context, documentID string, units []types.Unit) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
    INSERT INTO units (id, doc_id, position, content, embedding)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (id) DO UPDATE SET
        doc_id = EXCLUDED.doc_id,
        position = EXCLUDED.position,
        content = EXCLUDED.content,
        embedding = EXCLUDED.embedding
    `
	for _, u := range units {
		if len(u.Embedding) != p.dimension {
			return fmt.Errorf("unit %s: embedding dimension %d, store expects %d",
				u.ID, len(u.Embedding), p.dimension)
		}
		if _, err := tx.Exec(ctx, query,
			u.ID, documentID, u.Index, u.Text, pgvector.NewVector(u.Embedding),
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (p *PostgresStore) Query(ctx context.Context, documentID string, vector []float32, topK int) ([]types.Unit, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", types.ErrInvalidConfig, topK)
	}

	query := `
    SELECT id, doc_id, position, content, 1 - (embedding <=> $2) AS score
    FROM units
    WHERE doc_id = $1
    ORDER BY embedding <=> $2 ASC, id ASC
    LIMIT $3
    `
	rows, err := p.pool.Query(ctx, query, documentID, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []types.Unit
	for rows.Next() {
		var u types.Unit
		if err := rows.Scan(&u.ID, &u.DocumentID, &u.Index, &u.Text, &u.Score); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (p *PostgresStore) Activate(ctx context.Context, documentID string) error {
	_, err := p.pool.Exec(ctx, `
    INSERT INTO active_collection (id, doc_id) VALUES (1, $1)
    ON CONFLICT (id) DO UPDATE SET doc_id = EXCLUDED.doc_id
    `, documentID)
	return err
}

func (p *PostgresStore) ActiveCollection(ctx context.Context) (string, error) {
	var docID string
	err := p.pool.QueryRow(ctx, "SELECT doc_id FROM active_collection WHERE id = 1").Scan(&docID)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return docID, nil
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
