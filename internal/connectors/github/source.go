package github

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.MessageSource = (*Source)(nil)

// Source serves repository comments as pages of messages.
type Source struct {
	client *Client

	mu     sync.Mutex
	closed bool
}

// New creates a source over client.
func New(client *Client) *Source {
	return &Source{client: client}
}

// ParseCollection splits "owner/repo".
func ParseCollection(collectionID string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(collectionID, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("%w: github collection must be owner/repo, got %q", domain.ErrInvalidInput, collectionID)
	}
	return owner, repo, nil
}

// Validate checks that the repository behind collectionID is readable.
func (s *Source) Validate(ctx context.Context, collectionID string) error {
	owner, repo, err := ParseCollection(collectionID)
	if err != nil {
		return err
	}
	if _, err := s.client.GetRepository(ctx, owner, repo); err != nil {
		return fmt.Errorf("validate %s: %w", collectionID, err)
	}
	return nil
}

// FetchPage returns the comments on the page named by cursor. An empty
// cursor starts at page one.
func (s *Source) FetchPage(ctx context.Context, collectionID, cursor string) (*domain.MessagePage, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("%w: github source closed", domain.ErrSourceUnavailable)
	}

	owner, repo, err := ParseCollection(collectionID)
	if err != nil {
		return nil, err
	}
	page, err := parseCursor(cursor)
	if err != nil {
		return nil, err
	}

	comments, next, err := s.client.ListComments(ctx, owner, repo, page)
	if err != nil {
		return nil, err
	}

	msgs := make([]domain.RawMessage, 0, len(comments))
	for _, c := range comments {
		if m, ok := convert(c); ok {
			msgs = append(msgs, m)
		}
	}

	out := &domain.MessagePage{Messages: msgs}
	if next > 0 {
		out.NextCursor = strconv.Itoa(next)
	}
	logger.Debug("github: %s page %d: %d comments, remaining quota %d",
		collectionID, page, len(msgs), s.client.RateLimiter().Remaining())
	return out, nil
}

func parseCursor(cursor string) (int, error) {
	if cursor == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(cursor)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCursor, cursor)
	}
	return page, nil
}

// convert maps a comment onto a RawMessage. Comments without a creation
// time are dropped.
func convert(c *gh.IssueComment) (domain.RawMessage, bool) {
	created := c.GetCreatedAt()
	if created.IsZero() {
		return domain.RawMessage{}, false
	}
	ts := Timestamp(created.Unix(), c.GetID())
	return domain.RawMessage{
		SourceID:  strconv.FormatInt(c.GetID(), 10),
		Text:      c.GetBody(),
		Timestamp: ts,
		AuthorID:  c.GetUser().GetLogin(),
		Link:      c.GetHTMLURL(),
	}, true
}

// Timestamp renders a creation time as "seconds.micros", using the comment
// ID to fill the fractional part.
func Timestamp(unix, id int64) string {
	frac := id % 1_000_000
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%06d", unix, frac)
}

// Close stops further fetches.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
