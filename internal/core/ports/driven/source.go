package driven

import (
	"context"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

// MessageSource fetches a collection's message history page by page.
type MessageSource interface {
	// FetchPage returns the page at cursor. An empty cursor starts from the
	// beginning. The returned NextCursor is empty when no pages remain.
	FetchPage(ctx context.Context, collectionID, cursor string) (*domain.MessagePage, error)

	// Close releases resources.
	Close() error
}

// ChangeNotifier is implemented by sources that can signal new messages.
type ChangeNotifier interface {
	// Changes emits a value whenever the collection may have new messages.
	// The channel is closed when ctx is cancelled.
	Changes(ctx context.Context, collectionID string) (<-chan struct{}, error)
}
