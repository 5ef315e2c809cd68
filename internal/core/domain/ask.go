package domain

// AskRequest is a question from a user about a collection's history.
type AskRequest struct {
	// UserID identifies the asker. Used to resolve a saved scope.
	UserID string

	// CollectionID overrides the saved scope when set.
	CollectionID string

	// Query is the raw question text.
	Query string

	// K is the number of passages to ground the answer on.
	K int
}

// AskResult is everything the presentation layer needs to render an answer.
type AskResult struct {
	// CollectionID is the scope the question was answered in.
	CollectionID string

	// Answer is the synthesised text. Empty when answering failed.
	Answer string

	// Hits are the passages the answer was grounded on, in rank order.
	Hits []SearchHit

	// Mode tags how Hits were produced.
	Mode RetrievalMode

	// NeedsScope is true when no collection was given or saved.
	NeedsScope bool

	// UserMessage is a user-visible error message, set when answering failed.
	UserMessage string

	// Err carries the underlying failure for diagnostics.
	Err error `json:"-"`
}

// Failed reports whether answering failed after retrieval.
func (r *AskResult) Failed() bool {
	return r.Err != nil
}
