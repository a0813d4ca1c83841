package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

// ErrEmptySource is returned when chunks are saved without a source name.
var ErrEmptySource = errors.New("knowledge source must not be empty")

// Store is the knowledge passage store.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveChunks replaces every passage of source with chunks, in order.
	SaveChunks(ctx context.Context, source string, chunks []string) (int, error)

	// Search returns up to k passages ranked by relevance to query. No match
	// is an empty result, not an error.
	Search(ctx context.Context, query string, k int) ([]string, error)

	// SearchChunks is Search with passage metadata.
	SearchChunks(ctx context.Context, query string, k int) ([]Chunk, error)

	// Count returns the number of stored passages.
	Count(ctx context.Context) (int, error)

	// Sources lists the loaded documents with their passage counts.
	Sources(ctx context.Context) ([]SourceStat, error)

	// RunSQLMaintenance optimizes the full-text index and compacts the file.
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store over a migrated database.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "knowledge_store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveChunks(ctx context.Context, source string, chunks []string) (n int, err error) {
	if strings.TrimSpace(source) == "" {
		return 0, ErrEmptySource
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.ErrorContext(ctx, "Failed to roll back chunk save", "source", source, "error", rbErr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM knowledge_chunks WHERE source = ?`, source); err != nil {
		return 0, fmt.Errorf("failed to clear source %q: %w", source, err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO knowledge_chunks (source, chunk_index, content) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if _, err = stmt.ExecContext(ctx, source, n, chunk); err != nil {
			return 0, fmt.Errorf("failed to insert chunk %d of %q: %w", n, source, err)
		}
		n++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit chunks: %w", err)
	}
	s.logger.InfoContext(ctx, "Saved knowledge chunks", "source", source, "count", n)
	return n, nil
}

func (s *sqlxStore) Search(ctx context.Context, query string, k int) ([]string, error) {
	chunks, err := s.SearchChunks(ctx, query, k)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Content)
	}
	return out, nil
}

func (s *sqlxStore) SearchChunks(ctx context.Context, query string, k int) ([]Chunk, error) {
	match := MatchExpression(query)
	if match == "" || k <= 0 {
		return []Chunk{}, nil
	}

	var chunks []Chunk
	err := s.db.SelectContext(ctx, &chunks, `
		SELECT c.id, c.source, c.chunk_index, c.content, c.created_at
		FROM knowledge_fts
		JOIN knowledge_chunks c ON c.id = knowledge_fts.rowid
		WHERE knowledge_fts MATCH ?
		ORDER BY bm25(knowledge_fts), c.id
		LIMIT ?`, match, k)
	if err != nil {
		s.logger.ErrorContext(ctx, "Knowledge search failed", "query", query, "error", err)
		return nil, fmt.Errorf("knowledge search failed: %w", err)
	}
	if chunks == nil {
		chunks = []Chunk{}
	}
	s.logger.DebugContext(ctx, "Knowledge search", "query", query, "k", k, "hits", len(chunks))
	return chunks, nil
}

func (s *sqlxStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM knowledge_chunks`); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

func (s *sqlxStore) Sources(ctx context.Context) ([]SourceStat, error) {
	var stats []SourceStat
	err := s.db.SelectContext(ctx, &stats, `
		SELECT source, COUNT(*) AS chunks
		FROM knowledge_chunks
		GROUP BY source
		ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return stats, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled before maintenance", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance...")
	steps := []struct {
		name  string
		query string
	}{
		{"fts_optimize", `INSERT INTO knowledge_fts (knowledge_fts) VALUES ('optimize')`},
		{"analyze", `ANALYZE`},
		// VACUUM cannot run inside a transaction.
		{"vacuum", `VACUUM`},
	}
	for _, step := range steps {
		if _, err := s.db.ExecContext(ctx, step.query); err != nil {
			s.logger.ErrorContext(ctx, "Maintenance step failed", "step", step.name, "error", err)
			return fmt.Errorf("maintenance step %s failed: %w", step.name, err)
		}
	}
	s.logger.InfoContext(ctx, "Database maintenance completed")
	return nil
}

// MatchExpression turns free text into an FTS5 query that matches any of
// its words. Punctuation is dropped, so user input can never produce FTS5
// syntax errors. Empty input yields "".
func MatchExpression(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := lo.Map(lo.Uniq(words), func(w string, _ int) string {
		return `"` + w + `"`
	})
	return strings.Join(terms, " OR ")
}
