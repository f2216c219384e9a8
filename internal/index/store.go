// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index persists validated chunks with their embedding vectors and
// answers nearest-neighbor queries over them. The store is a single SQLite
// database; vector distance comes from the sqlite-vec extension.
// Implements: prd004-index (R1-R3);
//
//	docs/ARCHITECTURE § Index.
package index

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-agent/internal/llm"
	"github.com/pdiddy/research-agent/pkg/types"
)

// DefaultMaxResults is the retrieval limit when the caller passes none.
const DefaultMaxResults = 10

// resultSeparator joins retrieved chunks into one context string. Chunks
// carry their own Source/Section headers, so the separator only has to keep
// them visually apart for the model.
const resultSeparator = "\n\n---\n\n"

const dbFile = "research.db"

// ErrNoChunks is returned by Rebuild when there is nothing to index. The
// existing index, if any, is left untouched in that case (R1.3).
var ErrNoChunks = errors.New("no chunks to index")

// Store is the embedding index over validated chunks.
type Store struct {
	db  *sql.DB
	cfg types.IndexConfig
}

// Open opens (creating if needed) the index database under cfg.IndexDir.
func Open(cfg types.IndexConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	path := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("verifying index database: %w", err)
	}
	return &Store{db: db, cfg: cfg}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Rebuild replaces the index with embeddings of the given chunks. The build
// is all-or-nothing: every chunk is embedded into a staging table first, and
// only when all succeed is the live table swapped out in one transaction.
// An embedding failure or an empty chunk list leaves the previous index
// intact (R1.2, R1.3).
func (s *Store) Rebuild(ctx context.Context, embedder llm.Embedder, chunks []string, w io.Writer) error {
	if len(chunks) == 0 {
		return ErrNoChunks
	}

	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS chunks_new`); err != nil {
		return fmt.Errorf("clearing staging table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE chunks_new (
			id        INTEGER PRIMARY KEY,
			content   TEXT NOT NULL,
			embedding BLOB NOT NULL
		)`); err != nil {
		return fmt.Errorf("creating staging table: %w", err)
	}

	for i, chunk := range chunks {
		vec, err := embedder.Embed(ctx, chunk)
		if err != nil {
			s.db.ExecContext(ctx, `DROP TABLE IF EXISTS chunks_new`)
			return fmt.Errorf("embedding chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO chunks_new (content, embedding) VALUES (?, ?)`,
			chunk, encodeVector(vec)); err != nil {
			s.db.ExecContext(ctx, `DROP TABLE IF EXISTS chunks_new`)
			return fmt.Errorf("storing chunk %d/%d: %w", i+1, len(chunks), err)
		}
		fmt.Fprintf(w, "embedded %d/%d\n", i+1, len(chunks))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting index swap: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS chunks`); err != nil {
		return fmt.Errorf("dropping previous index: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `ALTER TABLE chunks_new RENAME TO chunks`); err != nil {
		return fmt.Errorf("activating new index: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index swap: %w", err)
	}

	fmt.Fprintf(w, "\nindexed %d chunks (model %s)\n", len(chunks), embedder.Model())
	return nil
}

// Ready reports whether an index has been built in this store.
func (s *Store) Ready(ctx context.Context) (bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'chunks'`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking index: %w", err)
	}
	return true, nil
}

// Search embeds the query and returns the limit nearest chunks joined into
// one context string, nearest first. A store with no built index returns the
// empty string without error: retrieval against a missing knowledge base is
// an empty result, not a failure (R2.3).
func (s *Store) Search(ctx context.Context, embedder llm.Embedder, query string, limit int) (string, error) {
	ready, err := s.Ready(ctx)
	if err != nil {
		return "", err
	}
	if !ready {
		return "", nil
	}

	if limit <= 0 {
		limit = s.cfg.MaxResults
	}
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	vec, err := embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT content, vec_distance_cosine(embedding, ?) AS distance
		FROM chunks
		ORDER BY distance ASC
		LIMIT ?`, encodeVector(vec), limit)
	if err != nil {
		return "", fmt.Errorf("searching index: %w", err)
	}
	defer rows.Close()

	var contents []string
	for rows.Next() {
		var (
			content  string
			distance float64
		)
		if err := rows.Scan(&content, &distance); err != nil {
			return "", fmt.Errorf("scanning result: %w", err)
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterating results: %w", err)
	}

	return strings.Join(contents, resultSeparator), nil
}

// Count returns the number of indexed chunks, zero when no index exists.
func (s *Store) Count(ctx context.Context) (int, error) {
	ready, err := s.Ready(ctx)
	if err != nil || !ready {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// encodeVector serializes a float32 vector as the little-endian blob
// sqlite-vec expects.
func encodeVector(vec []float32) []byte {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		return nil
	}
	return buf.Bytes()
}
