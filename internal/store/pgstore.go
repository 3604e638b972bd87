package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/sentientiq/collective/internal/model"
)

// PgStore is the pgvector-backed similarity store behind retrieval and the
// ingest write path.
type PgStore struct {
	db *sql.DB
}

func NewPgStore(conn string, embedDim int) (*PgStore, error) {
	db, err := sql.Open("postgres", conn)
	if err != nil {
		return nil, err
	}
	if err := ensureSchema(db, embedDim); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return &PgStore{db: db}, nil
}

func (s *PgStore) Add(ctx context.Context, doc string, sn model.Snippet, vec []float32) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snippets (doc_name, snippet_id, text, embedding)
		VALUES ($1, $2, $3, $4::vector)
	`, doc, sn.ID, sn.Text, vectorLiteral(vec))
	return err
}

func (s *PgStore) Search(ctx context.Context, vec []float32, topK int) ([]model.Snippet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT snippet_id, text, doc_name
		FROM snippets
		ORDER BY embedding <-> $1::vector
		LIMIT $2
	`, vectorLiteral(vec), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []model.Snippet
	for rows.Next() {
		var sn model.Snippet
		if err := rows.Scan(&sn.ID, &sn.Text, &sn.Source); err != nil {
			return nil, err
		}
		res = append(res, sn)
	}
	return res, rows.Err()
}

func (s *PgStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func vectorLiteral(v []float32) string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, f := range v {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(fmt.Sprintf("%.6f", float64(f)))
	}
	sb.WriteString("]")
	return sb.String()
}
