package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// Ensure LexicalIndex implements the interfaces.
var (
	_ driven.LexicalIndex  = (*LexicalIndex)(nil)
	_ driven.DocumentStore = (*LexicalIndex)(nil)
)

// Okapi BM25 parameters.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// LexicalIndex is an in-memory document store with a BM25-ranked inverted
// index. Term statistics cover every indexed document, tombstoned or not.
type LexicalIndex struct {
	mu       sync.RWMutex
	entries  map[string]*indexEntry
	df       map[string]int
	totalLen int
	now      func() time.Time
}

type indexEntry struct {
	doc    domain.Document
	tokens []string
	tf     map[string]int
}

// NewLexicalIndex creates a new in-memory lexical index.
func NewLexicalIndex() *LexicalIndex {
	return &LexicalIndex{
		entries: make(map[string]*indexEntry),
		df:      make(map[string]int),
		now:     time.Now,
	}
}

// Tokenize lowercases text and splits it on anything that is not a letter,
// number or mark.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsMark(r)
	})
}

// Upsert inserts or replaces a document keyed by ID.
func (x *LexicalIndex) Upsert(_ context.Context, doc *domain.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	tokens := Tokenize(doc.Text)
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	stored := *doc
	stored.Deleted = false
	stored.UpdatedAt = x.now()
	stored.CreatedAt = stored.UpdatedAt

	if old, ok := x.entries[doc.ID]; ok {
		stored.CreatedAt = old.doc.CreatedAt
		if stored.CitationURI == "" {
			stored.CitationURI = old.doc.CitationURI
		}
		if stored.ThreadTimestamp == "" {
			stored.ThreadTimestamp = old.doc.ThreadTimestamp
		}
		if stored.AuthorID == "" {
			stored.AuthorID = old.doc.AuthorID
		}
		x.unindex(old)
	}

	entry := &indexEntry{doc: stored, tokens: tokens, tf: tf}
	for t := range tf {
		x.df[t]++
	}
	x.totalLen += len(tokens)
	x.entries[doc.ID] = entry
	return nil
}

func (x *LexicalIndex) unindex(e *indexEntry) {
	for t := range e.tf {
		x.df[t]--
		if x.df[t] == 0 {
			delete(x.df, t)
		}
	}
	x.totalLen -= len(e.tokens)
}

// Tombstone marks a document deleted. Its terms stay indexed.
func (x *LexicalIndex) Tombstone(_ context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	e, ok := x.entries[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.doc.Deleted = true
	e.doc.UpdatedAt = x.now()
	return nil
}

// Search ranks live documents in the query's collection by BM25, then by
// timestamp descending. This engine accepts every sanitised query. When a
// term in an unspaced script matches no token, it falls back to substring
// containment like the SQLite index does.
func (x *LexicalIndex) Search(_ context.Context, q domain.SearchQuery) (*domain.SearchOutcome, error) {
	phrases := queryPhrases(q)
	if len(phrases) == 0 || q.Limit <= 0 {
		return &domain.SearchOutcome{Hits: []domain.SearchHit{}, Mode: domain.RetrievalRanked}, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	type scored struct {
		hit domain.SearchHit
		ts  float64
	}
	var matches []scored

	for _, e := range x.entries {
		if e.doc.CollectionID != q.CollectionID || e.doc.Deleted {
			continue
		}
		if !matchesAll(e.tokens, phrases) {
			continue
		}
		matches = append(matches, scored{
			hit: domain.SearchHit{
				ID:          e.doc.ID,
				Text:        e.doc.Text,
				CitationURI: e.doc.CitationURI,
				AuthorID:    e.doc.AuthorID,
				Timestamp:   e.doc.Timestamp,
				Score:       x.score(e, phrases),
			},
			ts: domain.TimestampValue(e.doc.Timestamp),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].hit.Score != matches[j].hit.Score {
			return matches[i].hit.Score > matches[j].hit.Score
		}
		if matches[i].ts != matches[j].ts {
			return matches[i].ts > matches[j].ts
		}
		return matches[i].hit.ID > matches[j].hit.ID
	})

	if len(matches) == 0 && domain.HasUnsegmentedScript(q.Terms) {
		return &domain.SearchOutcome{Hits: x.substringSearch(q), Mode: domain.RetrievalFallback}, nil
	}

	if len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}
	hits := make([]domain.SearchHit, len(matches))
	for i := range matches {
		hits[i] = matches[i].hit
	}
	return &domain.SearchOutcome{Hits: hits, Mode: domain.RetrievalRanked}, nil
}

// substringSearch requires every term (or the whole phrase) as a
// case-insensitive substring, newest first. Caller holds the read lock.
func (x *LexicalIndex) substringSearch(q domain.SearchQuery) []domain.SearchHit {
	patterns := make([]string, 0, len(q.Terms))
	if q.Mode == domain.MatchPhrase {
		patterns = append(patterns, strings.ToLower(strings.Join(q.Terms, " ")))
	} else {
		for _, t := range q.Terms {
			patterns = append(patterns, strings.ToLower(t))
		}
	}

	var matched []*indexEntry
	for _, e := range x.entries {
		if e.doc.CollectionID != q.CollectionID || e.doc.Deleted {
			continue
		}
		text := strings.ToLower(e.doc.Text)
		ok := true
		for _, p := range patterns {
			if !strings.Contains(text, p) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, e)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		ti, tj := domain.TimestampValue(matched[i].doc.Timestamp), domain.TimestampValue(matched[j].doc.Timestamp)
		if ti != tj {
			return ti > tj
		}
		return matched[i].doc.ID > matched[j].doc.ID
	})
	if len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	hits := make([]domain.SearchHit, len(matched))
	for i, e := range matched {
		hits[i] = domain.SearchHit{
			ID:          e.doc.ID,
			Text:        e.doc.Text,
			CitationURI: e.doc.CitationURI,
			AuthorID:    e.doc.AuthorID,
			Timestamp:   e.doc.Timestamp,
		}
	}
	return hits
}

// queryPhrases turns query terms into token sequences that must each occur
// consecutively. In phrase mode all terms form a single sequence.
func queryPhrases(q domain.SearchQuery) [][]string {
	var phrases [][]string
	if q.Mode == domain.MatchPhrase {
		var all []string
		for _, term := range q.Terms {
			all = append(all, Tokenize(term)...)
		}
		if len(all) > 0 {
			phrases = append(phrases, all)
		}
		return phrases
	}
	for _, term := range q.Terms {
		if toks := Tokenize(term); len(toks) > 0 {
			phrases = append(phrases, toks)
		}
	}
	return phrases
}

func matchesAll(tokens []string, phrases [][]string) bool {
	for _, p := range phrases {
		if phraseCount(tokens, p) == 0 {
			return false
		}
	}
	return true
}

// phraseCount returns how many times phrase occurs consecutively in tokens.
func phraseCount(tokens, phrase []string) int {
	n := 0
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j := range phrase {
			if tokens[i+j] != phrase[j] {
				match = false
				break
			}
		}
		if match {
			n++
		}
	}
	return n
}

// score sums the BM25 contribution of each phrase. Caller holds the lock.
func (x *LexicalIndex) score(e *indexEntry, phrases [][]string) float64 {
	n := float64(len(x.entries))
	avgdl := 1.0
	if len(x.entries) > 0 && x.totalLen > 0 {
		avgdl = float64(x.totalLen) / n
	}
	dl := float64(len(e.tokens))

	var total float64
	for _, p := range phrases {
		// A phrase's document frequency is bounded by its rarest token.
		df := math.MaxInt
		for _, t := range p {
			df = min(df, x.df[t])
		}
		idf := math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)

		tf := float64(phraseCount(e.tokens, p))
		total += idf * (tf * (bm25K1 + 1)) / (tf + bm25K1*(1-bm25B+bm25B*dl/avgdl))
	}
	return total
}

// Get retrieves a document by ID, including tombstoned documents.
func (x *LexicalIndex) Get(_ context.Context, id string) (*domain.Document, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := e.doc
	return &doc, nil
}

// List returns documents in a collection, newest first.
func (x *LexicalIndex) List(_ context.Context, collectionID string, includeDeleted bool) ([]domain.Document, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	docs := make([]domain.Document, 0)
	for _, e := range x.entries {
		if e.doc.CollectionID != collectionID || (e.doc.Deleted && !includeDeleted) {
			continue
		}
		docs = append(docs, e.doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		return domain.TimestampValue(docs[i].Timestamp) > domain.TimestampValue(docs[j].Timestamp)
	})
	return docs, nil
}

// Count returns the number of live and tombstoned documents in a collection.
func (x *LexicalIndex) Count(_ context.Context, collectionID string) (live, deleted int, err error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	for _, e := range x.entries {
		if e.doc.CollectionID != collectionID {
			continue
		}
		if e.doc.Deleted {
			deleted++
		} else {
			live++
		}
	}
	return live, deleted, nil
}
