package domain

import "unicode"

// MatchMode selects how query terms must occur in a document.
type MatchMode string

const (
	// MatchAll requires every term to occur anywhere in the text (implicit AND).
	MatchAll MatchMode = "all"

	// MatchPhrase requires the terms to occur consecutively, in order.
	MatchPhrase MatchMode = "phrase"
)

// SearchQuery is a sanitised, scoped lexical query.
type SearchQuery struct {
	// CollectionID confines the search to exactly one collection.
	CollectionID string

	// Terms are sanitised query terms. They never contain grammar characters.
	Terms []string

	// Mode is the term-matching policy.
	Mode MatchMode

	// Limit is the maximum number of hits.
	Limit int
}

// SearchHit is a read-only projection of a matching document.
// Score follows a single convention: higher is more relevant.
type SearchHit struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	CitationURI string  `json:"citation_uri"`
	AuthorID    string  `json:"author_id,omitempty"`
	Timestamp   string  `json:"timestamp"`
	Score       float64 `json:"score"`
}

// RetrievalMode tags how a result set was produced.
type RetrievalMode string

const (
	// RetrievalRanked means the lexical ranking engine served the query.
	RetrievalRanked RetrievalMode = "ranked"

	// RetrievalFallback means a substring-containment match was used
	// because the engine rejected the query, or because it could not
	// segment a term written in an unspaced script.
	RetrievalFallback RetrievalMode = "fallback"

	// RetrievalEmpty means the query had no searchable terms and the
	// index was not consulted.
	RetrievalEmpty RetrievalMode = "empty"
)

// SearchOutcome is a ranked hit list together with how it was produced.
type SearchOutcome struct {
	Hits []SearchHit   `json:"hits"`
	Mode RetrievalMode `json:"mode"`
}

// EmptyOutcome returns an outcome for a query that never reached the index.
func EmptyOutcome() *SearchOutcome {
	return &SearchOutcome{Hits: []SearchHit{}, Mode: RetrievalEmpty}
}

// Truncate limits the outcome to at most k hits.
func (o *SearchOutcome) Truncate(k int) {
	if k < 0 {
		k = 0
	}
	if len(o.Hits) > k {
		o.Hits = o.Hits[:k]
	}
}

// HasUnsegmentedScript reports whether any term contains Han, Hiragana or
// Katakana characters. Text in these scripts is written without spaces, so
// word tokenizers may index a whole run as one token.
func HasUnsegmentedScript(terms []string) bool {
	for _, t := range terms {
		for _, r := range t {
			if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) {
				return true
			}
		}
	}
	return false
}
