package store

import (
	"database/sql"
	"fmt"
)

// ensureSchema creates the extension, table and ivfflat index used by Search.
func ensureSchema(db *sql.DB, embedDim int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS snippets (
			id SERIAL PRIMARY KEY,
			doc_name TEXT,
			snippet_id TEXT,
			text TEXT,
			embedding vector(%d)
		)`, embedDim),
		`DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM pg_class c
				JOIN pg_namespace n ON n.oid=c.relnamespace
				WHERE c.relname='snippets_embedding_ivfflat_idx'
			) THEN
				EXECUTE 'CREATE INDEX snippets_embedding_ivfflat_idx ON snippets USING ivfflat (embedding vector_cosine_ops) WITH (lists=100)';
			END IF;
		END $$;`,
	}

	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}

	// ANALYZE so the ivfflat planner has statistics
	_, _ = db.Exec(`ANALYZE snippets`)
	return nil
}
