package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"github.com/lib/pq"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// --- EmbeddingStore ------------------------------------------------------------
//
// Backed by the pgvector extension (see migrations/0001_init.up.sql); the
// column is left dimension-unconstrained so it works across embedding
// models, which rules out an ivfflat index and falls back to an exact
// sequential scan ordered by the <=> cosine-distance operator.

func (s *Store) Upsert(ctx context.Context, e domain.Embedding) error {
	metaJSON, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO embeddings (content_type, content_id, content_text, vector, metadata, updated_at)
		VALUES ($1, $2, $3, $4::vector, $5, now())
		ON CONFLICT (content_type, content_id) DO UPDATE
			SET content_text = $3, vector = $4::vector, metadata = $5, updated_at = now()
	`, e.ContentType, e.ContentID, e.ContentText, vectorLiteral(e.Vector), metaJSON)
	return err
}

func (s *Store) Delete(ctx context.Context, contentType, contentID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM embeddings WHERE content_type = $1 AND content_id = $2
	`, contentType, contentID)
	return err
}

func (s *Store) SearchSimilar(ctx context.Context, queryVector []float32, contentTypes []string, limit int) ([]store.EmbeddingMatch, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT content_type, content_id, content_text, metadata, 1 - (vector <=> $1::vector) AS similarity
		FROM embeddings
		WHERE (array_length($2::text[], 1) IS NULL OR content_type = ANY($2::text[]))
		ORDER BY vector <=> $1::vector
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, vectorLiteral(queryVector), pq.Array(contentTypes), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.EmbeddingMatch
	for rows.Next() {
		var m store.EmbeddingMatch
		var metaRaw []byte
		if err := rows.Scan(&m.ContentType, &m.ContentID, &m.ContentText, &metaRaw, &m.Similarity); err != nil {
			return nil, err
		}
		if len(metaRaw) > 0 {
			_ = json.Unmarshal(metaRaw, &m.Metadata)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// vectorLiteral renders a float32 slice as the pgvector text input format,
// e.g. "[0.1,0.2,0.3]".
func vectorLiteral(v []float32) string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	buf.WriteByte(']')
	return buf.String()
}
