package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/logger"
)

// lexicalIndex implements driven.LexicalIndex on the messages table and its
// FTS5 shadow. Every write is one statement; the triggers update the index in
// the same implicit transaction.
type lexicalIndex struct {
	store *Store
}

var _ driven.LexicalIndex = (*lexicalIndex)(nil)

// Upsert inserts or replaces a message keyed by id. created_at survives
// re-ingestion, missing links keep their previous value and the row is
// un-deleted.
func (x *lexicalIndex) Upsert(ctx context.Context, doc *domain.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	now := x.store.now().UnixMilli()

	_, err := x.store.db.ExecContext(ctx, `
		INSERT INTO messages (id, collection_id, ts, thread_ts, author_id, text_norm, permalink, created_at, updated_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET
			text_norm = excluded.text_norm,
			permalink = COALESCE(excluded.permalink, messages.permalink),
			thread_ts = COALESCE(excluded.thread_ts, messages.thread_ts),
			author_id = COALESCE(excluded.author_id, messages.author_id),
			updated_at = excluded.updated_at,
			deleted = 0
	`,
		doc.ID, doc.CollectionID, doc.Timestamp,
		nullString(doc.ThreadTimestamp), nullString(doc.AuthorID),
		doc.Text, nullString(doc.CitationURI),
		now, now,
	)
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %w", domain.ErrStoreConsistency, doc.ID, err)
	}
	return nil
}

// Tombstone marks a message deleted. Its index entry stays; searches filter
// on the deleted column.
func (x *lexicalIndex) Tombstone(ctx context.Context, id string) error {
	res, err := x.store.db.ExecContext(ctx,
		"UPDATE messages SET deleted = 1, updated_at = ? WHERE id = ?",
		x.store.now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("tombstone %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("tombstone %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Search runs an FTS5 MATCH scoped to one collection, ranked by bm25 (negated
// so higher is better) then timestamp. A query the FTS5 grammar rejects is
// answered by substring matching instead, as is a query in an unspaced
// script that the unicode61 tokenizer could not match.
func (x *lexicalIndex) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchOutcome, error) {
	if len(q.Terms) == 0 || q.Limit <= 0 {
		return &domain.SearchOutcome{Hits: []domain.SearchHit{}, Mode: domain.RetrievalRanked}, nil
	}

	match := matchExpression(q)
	hits, err := x.queryHits(ctx, `
		SELECT m.id, m.text_norm, COALESCE(m.permalink, ''), COALESCE(m.author_id, ''), m.ts,
			-bm25(messages_fts) AS score
		FROM messages_fts
		JOIN messages AS m ON m.doc_rowid = messages_fts.rowid
		WHERE messages_fts MATCH ? AND m.collection_id = ? AND m.deleted = 0
		ORDER BY score DESC, CAST(m.ts AS REAL) DESC
		LIMIT ?
	`, match, q.CollectionID, q.Limit)
	switch {
	case err == nil && (len(hits) > 0 || !domain.HasUnsegmentedScript(q.Terms)):
		return &domain.SearchOutcome{Hits: hits, Mode: domain.RetrievalRanked}, nil
	case err == nil:
		logger.Debug("No ranked hits for unsegmented %q, using substring match", match)
	case isQuerySyntaxError(err):
		logger.Debug("FTS5 rejected %q (%v), using substring match", match, err)
	default:
		return nil, fmt.Errorf("search: %w", err)
	}

	hits, err = x.substringSearch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fallback search: %w", err)
	}
	return &domain.SearchOutcome{Hits: hits, Mode: domain.RetrievalFallback}, nil
}

// matchExpression renders sanitised terms as an FTS5 query. Each term is a
// string literal, so words like OR and NOT never act as operators; the
// literals are joined by spaces (implicit AND). Phrase mode quotes all terms
// as one literal. Sanitised terms hold no double quotes.
func matchExpression(q domain.SearchQuery) string {
	if q.Mode == domain.MatchPhrase {
		return `"` + strings.Join(q.Terms, " ") + `"`
	}
	quoted := make([]string, len(q.Terms))
	for i, t := range q.Terms {
		quoted[i] = `"` + t + `"`
	}
	return strings.Join(quoted, " ")
}

// isQuerySyntaxError reports whether err came from the FTS5 query parser.
func isQuerySyntaxError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "fts5:") || strings.Contains(msg, "malformed MATCH")
}

// substringSearch requires every term (or the whole phrase) as a
// case-insensitive substring, newest first.
func (x *lexicalIndex) substringSearch(ctx context.Context, q domain.SearchQuery) ([]domain.SearchHit, error) {
	patterns := q.Terms
	if q.Mode == domain.MatchPhrase {
		patterns = []string{strings.Join(q.Terms, " ")}
	}

	var (
		where strings.Builder
		args  = []any{q.CollectionID}
	)
	for _, p := range patterns {
		where.WriteString(` AND m.text_norm LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(p)+"%")
	}
	args = append(args, q.Limit)

	return x.queryHits(ctx, `
		SELECT m.id, m.text_norm, COALESCE(m.permalink, ''), COALESCE(m.author_id, ''), m.ts, 0.0 AS score
		FROM messages AS m
		WHERE m.collection_id = ? AND m.deleted = 0`+where.String()+`
		ORDER BY CAST(m.ts AS REAL) DESC
		LIMIT ?
	`, args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (x *lexicalIndex) queryHits(ctx context.Context, query string, args ...any) ([]domain.SearchHit, error) {
	rows, err := x.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hits := make([]domain.SearchHit, 0)
	for rows.Next() {
		var h domain.SearchHit
		if err := rows.Scan(&h.ID, &h.Text, &h.CitationURI, &h.AuthorID, &h.Timestamp, &h.Score); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return hits, nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, collection_id, ts, COALESCE(thread_ts, ''), COALESCE(author_id, ''),
	text_norm, COALESCE(permalink, ''), created_at, updated_at, deleted`

// Get retrieves a document by ID, including tombstoned documents.
func (s *documentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM messages WHERE id = ?", id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return doc, nil
}

// List returns documents in a collection, newest first.
func (s *documentStore) List(ctx context.Context, collectionID string, includeDeleted bool) ([]domain.Document, error) {
	query := "SELECT " + documentColumns + " FROM messages WHERE collection_id = ?"
	if !includeDeleted {
		query += " AND deleted = 0"
	}
	query += " ORDER BY CAST(ts AS REAL) DESC"

	rows, err := s.store.db.QueryContext(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// Count returns the number of live and tombstoned documents in a collection.
func (s *documentStore) Count(ctx context.Context, collectionID string) (live, deleted int, err error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(deleted = 0), 0), COALESCE(SUM(deleted = 1), 0)
		FROM messages WHERE collection_id = ?
	`, collectionID)
	if err := row.Scan(&live, &deleted); err != nil {
		return 0, 0, fmt.Errorf("counting documents: %w", err)
	}
	return live, deleted, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*domain.Document, error) {
	var (
		doc              domain.Document
		created, updated int64
		deleted          int
	)
	err := row.Scan(
		&doc.ID, &doc.CollectionID, &doc.Timestamp, &doc.ThreadTimestamp, &doc.AuthorID,
		&doc.Text, &doc.CitationURI, &created, &updated, &deleted,
	)
	if err != nil {
		return nil, err
	}
	doc.CreatedAt = time.UnixMilli(created)
	doc.UpdatedAt = time.UnixMilli(updated)
	doc.Deleted = deleted != 0
	return &doc, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
