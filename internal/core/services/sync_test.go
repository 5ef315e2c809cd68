package services

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/archivist/internal/core/domain"
)

// --- Mock implementations for ingest testing ---

// pagedSource serves fixed pages keyed by cursor. Page "" is the first.
type pagedSource struct {
	mu      stdsync.Mutex
	pages   map[string]domain.MessagePage
	fetches []string
	failAt  string
	gate    chan struct{}
	entered chan struct{}
	changes chan struct{}
}

func newPagedSource(pages ...domain.MessagePage) *pagedSource {
	src := &pagedSource{pages: make(map[string]domain.MessagePage)}
	cursor := ""
	for i, p := range pages {
		if i < len(pages)-1 {
			p.NextCursor = string(rune('a' + i))
		}
		src.pages[cursor] = p
		cursor = p.NextCursor
	}
	return src
}

func (s *pagedSource) FetchPage(ctx context.Context, _ string, cursor string) (*domain.MessagePage, error) {
	if s.gate != nil {
		s.entered <- struct{}{}
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches = append(s.fetches, cursor)
	if s.failAt != "" && cursor == s.failAt {
		return nil, errors.New("source unavailable")
	}
	p := s.pages[cursor]
	return &p, nil
}

func (s *pagedSource) Close() error { return nil }

func (s *pagedSource) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fetches)
}

// watchableSource adds change notifications to pagedSource.
type watchableSource struct {
	*pagedSource
}

func (s watchableSource) Changes(ctx context.Context, _ string) (<-chan struct{}, error) {
	out := make(chan struct{})
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v := <-s.changes:
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func msg(ts, text string) domain.RawMessage {
	return domain.RawMessage{SourceID: ts, Timestamp: ts, Text: text, Link: "https://example.test/p" + ts}
}

func newIngestFixture(src *pagedSource) (*IngestService, *memory.LexicalIndex, *memory.SyncStateStore) {
	index := memory.NewLexicalIndex()
	syncStore := memory.NewSyncStateStore()
	return NewIngestService(src, index, syncStore, 0), index, syncStore
}

func TestIngestService_SyncAllPages(t *testing.T) {
	src := newPagedSource(
		domain.MessagePage{Messages: []domain.RawMessage{msg("1.0", "deploy failed"), msg("2.0", "  rollback started  ")}},
		domain.MessagePage{Messages: []domain.RawMessage{msg("3.0", "deploy succeeded")}},
	)
	svc, index, _ := newIngestFixture(src)
	ctx := context.Background()

	report, err := svc.Sync(ctx, "C1")

	require.NoError(t, err)
	assert.Equal(t, 2, report.Pages)
	assert.Equal(t, 3, report.Upserted)
	assert.NotEmpty(t, report.RunID)

	doc, err := index.Get(ctx, "C1-2.0")
	require.NoError(t, err)
	assert.Equal(t, "rollback started", doc.Text)
	assert.Equal(t, "https://example.test/p2.0", doc.CitationURI)
}

func TestIngestService_RerunIsIdempotent(t *testing.T) {
	src := newPagedSource(domain.MessagePage{Messages: []domain.RawMessage{msg("1.0", "deploy"), msg("2.0", "deploy again")}})
	svc, index, _ := newIngestFixture(src)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "C1")
	require.NoError(t, err)
	_, err = svc.Sync(ctx, "C1")
	require.NoError(t, err)

	live, deleted, err := index.Count(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, 2, live)
	assert.Equal(t, 0, deleted)
}

func TestIngestService_SkipsEmptyAndTombstones(t *testing.T) {
	src := newPagedSource(
		domain.MessagePage{Messages: []domain.RawMessage{msg("1.0", "deploy"), msg("2.0", "   ")}},
		domain.MessagePage{Messages: []domain.RawMessage{
			{Timestamp: "1.0", Deleted: true},
			{Timestamp: "9.0", Deleted: true},
		}},
	)
	svc, index, _ := newIngestFixture(src)
	ctx := context.Background()

	report, err := svc.Sync(ctx, "C1")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Upserted)
	assert.Equal(t, 1, report.Tombstoned)
	assert.Equal(t, 2, report.Skipped)

	live, deleted, err := index.Count(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, 0, live)
	assert.Equal(t, 1, deleted)
}

func TestIngestService_EditedToEmptyTombstonesExisting(t *testing.T) {
	src := newPagedSource(domain.MessagePage{Messages: []domain.RawMessage{msg("1.0", "deploy failed")}})
	svc, index, _ := newIngestFixture(src)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "C1")
	require.NoError(t, err)

	src.pages[""] = domain.MessagePage{Messages: []domain.RawMessage{msg("1.0", "  ")}}
	report, err := svc.Sync(ctx, "C1")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Tombstoned)
	assert.Equal(t, 0, report.Skipped)

	doc, err := index.Get(ctx, "C1-1.0")
	require.NoError(t, err)
	assert.True(t, doc.Deleted)
	assert.Equal(t, "deploy failed", doc.Text)

	out, err := index.Search(ctx, domain.SearchQuery{CollectionID: "C1", Terms: []string{"deploy"}, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, out.Hits)
}

func TestIngestService_SkipsMessagesWithoutTimestamp(t *testing.T) {
	src := newPagedSource(domain.MessagePage{Messages: []domain.RawMessage{{Text: "deploy"}, {Deleted: true}}})
	svc, index, _ := newIngestFixture(src)

	report, err := svc.Sync(context.Background(), "C1")

	require.NoError(t, err)
	assert.Equal(t, 2, report.Skipped)
	live, deleted, err := index.Count(context.Background(), "C1")
	require.NoError(t, err)
	assert.Zero(t, live+deleted)
}

func TestIngestService_SavesStateAndStatus(t *testing.T) {
	src := newPagedSource(domain.MessagePage{Messages: []domain.RawMessage{msg("1.0", "deploy")}})
	svc, _, _ := newIngestFixture(src)
	ctx := context.Background()

	report, err := svc.Sync(ctx, "C1")
	require.NoError(t, err)

	state, err := svc.Status(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, report.RunID, state.RunID)
	assert.Empty(t, state.Cursor)
	assert.Equal(t, 1, state.Documents)
}

func TestIngestService_StatusUnknown(t *testing.T) {
	svc, _, _ := newIngestFixture(newPagedSource())

	_, err := svc.Status(context.Background(), "C9")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestService_ResumesFromSavedCursor(t *testing.T) {
	src := newPagedSource(
		domain.MessagePage{Messages: []domain.RawMessage{msg("1.0", "one")}},
		domain.MessagePage{Messages: []domain.RawMessage{msg("2.0", "two")}},
	)
	src.failAt = "a"
	svc, _, syncStore := newIngestFixture(src)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "C1")
	require.Error(t, err)

	state, err := syncStore.Get(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "a", state.Cursor)

	src.failAt = ""
	report, err := svc.Sync(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pages)
	assert.Equal(t, []string{"", "a", "a"}, src.fetches)
}

func TestIngestService_RejectsConcurrentSync(t *testing.T) {
	src := newPagedSource(domain.MessagePage{Messages: []domain.RawMessage{msg("1.0", "deploy")}})
	src.gate = make(chan struct{})
	src.entered = make(chan struct{}, 1)
	svc, _, _ := newIngestFixture(src)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Sync(ctx, "C1")
		done <- err
	}()

	<-src.entered
	_, err := svc.Sync(ctx, "C1")
	assert.ErrorIs(t, err, domain.ErrSyncInProgress)

	close(src.gate)
	require.NoError(t, <-done)
}

func TestIngestService_Validation(t *testing.T) {
	svc, _, _ := newIngestFixture(newPagedSource())
	_, err := svc.Sync(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	noSource := NewIngestService(nil, memory.NewLexicalIndex(), memory.NewSyncStateStore(), 0)
	_, err = noSource.Sync(context.Background(), "C1")
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestIngestService_WatchUnsupported(t *testing.T) {
	svc, _, _ := newIngestFixture(newPagedSource())

	err := svc.Watch(context.Background(), "C1")

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestIngestService_WatchResyncsOnChange(t *testing.T) {
	paged := newPagedSource(domain.MessagePage{Messages: []domain.RawMessage{msg("1.0", "deploy")}})
	paged.changes = make(chan struct{})
	index := memory.NewLexicalIndex()
	svc := NewIngestService(watchableSource{paged}, index, memory.NewSyncStateStore(), 0)
	svc.SetDebounce(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Watch(ctx, "C1") }()

	require.Eventually(t, func() bool { return paged.fetchCount() == 1 }, time.Second, 5*time.Millisecond)

	paged.changes <- struct{}{}
	paged.changes <- struct{}{}

	require.Eventually(t, func() bool { return paged.fetchCount() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
