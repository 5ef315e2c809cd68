package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/logger"
	"github.com/custodia-labs/archivist/internal/metrics"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// grammarChars are quote and operator characters with meaning to the index's
// query grammar.
var grammarChars = strings.NewReplacer(
	"\"", " ", "'", " ", "“", " ", "”", " ", "‘", " ", "’", " ",
	"*", " ", "^", " ", ":", " ", "(", " ", ")", " ", "{", " ", "}", " ",
	"+", " ", "-", " ",
)

// nonTermRun matches runs of characters that cannot be part of a term.
// Letters, digits, marks and underscore from any script are term characters,
// as are the CJK symbol and punctuation block, kana and CJK ideographs.
var nonTermRun = regexp.MustCompile(
	`[^\p{L}\p{N}\p{M}_\x{3000}-\x{303F}\x{3040}-\x{30FF}\x{31F0}-\x{31FF}\x{4E00}-\x{9FFF}]+`,
)

// SanitizeQuery strips grammar characters and collapses non-term runs to
// single spaces. The result is safe to hand to the index and sanitising it
// again returns it unchanged.
func SanitizeQuery(q string) string {
	q = grammarChars.Replace(q)
	q = nonTermRun.ReplaceAllString(q, " ")
	return strings.Join(strings.Fields(q), " ")
}

// QueryTerms returns the sanitised terms of q.
func QueryTerms(q string) []string {
	return strings.Fields(SanitizeQuery(q))
}

// isPhraseQuery reports whether the trimmed query is wrapped in double quotes.
func isPhraseQuery(q string) bool {
	return len(q) >= 2 && strings.HasPrefix(q, "\"") && strings.HasSuffix(q, "\"")
}

// RetrievalService sanitises free-text queries and runs scoped lexical search.
type RetrievalService struct {
	index driven.LexicalIndex
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(index driven.LexicalIndex) *RetrievalService {
	return &RetrievalService{index: index}
}

// Retrieve returns at most k hits from collectionID for query.
func (s *RetrievalService) Retrieve(
	ctx context.Context, query, collectionID string, k int,
) (*domain.SearchOutcome, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q, collection: %q, k: %d", query, collectionID, k)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		metrics.SearchTotal.WithLabelValues(string(domain.RetrievalEmpty)).Inc()
		return domain.EmptyOutcome(), nil
	}
	if collectionID == "" {
		logger.Debug("No collection scope, returning no results")
		metrics.SearchTotal.WithLabelValues(string(domain.RetrievalEmpty)).Inc()
		return domain.EmptyOutcome(), nil
	}

	terms := QueryTerms(query)
	if len(terms) == 0 {
		logger.Debug("Query has no searchable terms, returning no results")
		metrics.SearchTotal.WithLabelValues(string(domain.RetrievalEmpty)).Inc()
		return domain.EmptyOutcome(), nil
	}

	mode := domain.MatchAll
	if isPhraseQuery(query) {
		mode = domain.MatchPhrase
	}
	logger.Debug("Terms: %v, mode: %s", terms, mode)

	start := time.Now()
	outcome, err := s.index.Search(ctx, domain.SearchQuery{
		CollectionID: collectionID,
		Terms:        terms,
		Mode:         mode,
		Limit:        max(1, k),
	})
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Warn("Search failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}

	outcome.Truncate(k)
	if outcome.Hits == nil {
		outcome.Hits = []domain.SearchHit{}
	}
	metrics.SearchTotal.WithLabelValues(string(outcome.Mode)).Inc()
	if outcome.Mode == domain.RetrievalFallback {
		logger.Warn("Ranking engine rejected %q, served substring fallback", strings.Join(terms, " "))
	}
	logger.Info("Retrieved %d hits (%s)", len(outcome.Hits), outcome.Mode)

	return outcome, nil
}
