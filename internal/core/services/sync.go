package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
	"github.com/custodia-labs/archivist/internal/logger"
	"github.com/custodia-labs/archivist/internal/metrics"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultWatchDebounce coalesces bursts of change notifications.
const DefaultWatchDebounce = 500 * time.Millisecond

// IngestService pulls pages from a message source into the lexical index.
//
// Each run is a bounded pull loop: fetch page, apply each record, advance
// the cursor, repeat until the source reports no further pages. Records are
// keyed by DocumentID so re-running a collection never duplicates documents.
type IngestService struct {
	source    driven.MessageSource
	index     driven.LexicalIndex
	syncStore driven.SyncStateStore
	limiter   *rate.Limiter
	debounce  time.Duration
	now       func() time.Time

	mu     sync.Mutex
	active map[string]bool
}

// NewIngestService creates a new ingest service.
// requestsPerSecond paces page fetches; zero or less disables pacing.
func NewIngestService(
	source driven.MessageSource,
	index driven.LexicalIndex,
	syncStore driven.SyncStateStore,
	requestsPerSecond float64,
) *IngestService {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &IngestService{
		source:    source,
		index:     index,
		syncStore: syncStore,
		limiter:   rate.NewLimiter(limit, 1),
		debounce:  DefaultWatchDebounce,
		now:       time.Now,
		active:    make(map[string]bool),
	}
}

// SetDebounce overrides the watch debounce interval.
func (s *IngestService) SetDebounce(d time.Duration) {
	s.debounce = d
}

// Sync runs one ingestion pass for a collection. A pass interrupted part
// way resumes from the last saved cursor.
func (s *IngestService) Sync(ctx context.Context, collectionID string) (*domain.SyncReport, error) {
	collectionID = strings.TrimSpace(collectionID)
	if collectionID == "" {
		return nil, fmt.Errorf("%w: collection id is required", domain.ErrInvalidInput)
	}
	if s.source == nil {
		return nil, domain.ErrSourceUnavailable
	}
	if !s.acquire(collectionID) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSyncInProgress, collectionID)
	}
	defer s.release(collectionID)

	logger.Section("Ingest")
	start := s.now()

	cursor := ""
	prev, err := s.syncStore.Get(ctx, collectionID)
	switch {
	case err == nil && prev.Cursor != "":
		cursor = prev.Cursor
		logger.Info("Resuming %s from cursor %s", collectionID, cursor)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get sync state: %w", err)
	}

	report := &domain.SyncReport{CollectionID: collectionID, RunID: uuid.NewString()}
	logger.Info("Starting ingest run %s for %s", report.RunID, collectionID)

	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return report, fmt.Errorf("wait for rate limiter: %w", err)
		}

		page, err := s.source.FetchPage(ctx, collectionID, cursor)
		if err != nil {
			return report, fmt.Errorf("fetch page: %w", err)
		}
		report.Pages++

		for i := range page.Messages {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			s.apply(ctx, collectionID, &page.Messages[i], report)
		}

		cursor = page.NextCursor
		if err := s.saveState(ctx, collectionID, report, cursor); err != nil {
			return report, err
		}
		if cursor == "" {
			break
		}
		logger.Debug("Advancing %s to cursor %s", collectionID, cursor)
	}

	report.Duration = s.now().Sub(start)
	logger.Info("Ingest complete for %s: %d upserted, %d tombstoned, %d skipped, %d errors in %s",
		collectionID, report.Upserted, report.Tombstoned, report.Skipped, report.Errors, report.Duration)
	return report, nil
}

// apply writes one record. Per-record failures are counted, not fatal;
// re-running the collection retries them. A message edited down to empty
// text is tombstoned, since it can no longer be recalled.
func (s *IngestService) apply(
	ctx context.Context, collectionID string, msg *domain.RawMessage, report *domain.SyncReport,
) {
	if msg.Timestamp == "" {
		report.Skipped++
		metrics.IngestedDocuments.WithLabelValues(collectionID, "skip").Inc()
		return
	}
	id := domain.DocumentID(collectionID, msg.Timestamp)
	text := strings.TrimSpace(msg.Text)

	if msg.Deleted || text == "" {
		err := s.index.Tombstone(ctx, id)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			report.Skipped++
			metrics.IngestedDocuments.WithLabelValues(collectionID, "skip").Inc()
		case err != nil:
			report.Errors++
			metrics.IngestedDocuments.WithLabelValues(collectionID, "error").Inc()
			logger.Warn("Tombstone %s failed: %v", id, err)
		default:
			report.Tombstoned++
			metrics.IngestedDocuments.WithLabelValues(collectionID, "tombstone").Inc()
		}
		return
	}

	doc := &domain.Document{
		ID:              id,
		CollectionID:    collectionID,
		Timestamp:       msg.Timestamp,
		ThreadTimestamp: msg.ThreadTimestamp,
		AuthorID:        msg.AuthorID,
		Text:            text,
		CitationURI:     msg.Link,
		UpdatedAt:       s.now(),
	}
	if err := s.index.Upsert(ctx, doc); err != nil {
		report.Errors++
		metrics.IngestedDocuments.WithLabelValues(collectionID, "error").Inc()
		logger.Warn("Upsert %s failed: %v", id, err)
		return
	}
	report.Upserted++
	metrics.IngestedDocuments.WithLabelValues(collectionID, "upsert").Inc()
}

func (s *IngestService) saveState(
	ctx context.Context, collectionID string, report *domain.SyncReport, cursor string,
) error {
	state := domain.SyncState{
		CollectionID: collectionID,
		RunID:        report.RunID,
		Cursor:       cursor,
		LastSync:     s.now(),
		Documents:    report.Upserted + report.Tombstoned,
		Errors:       report.Errors,
	}
	if err := s.syncStore.Save(ctx, state); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}
	return nil
}

// Watch syncs the collection, then re-syncs whenever the source signals
// changes, until ctx is cancelled. Bursts of changes are debounced.
func (s *IngestService) Watch(ctx context.Context, collectionID string) error {
	notifier, ok := s.source.(driven.ChangeNotifier)
	if !ok {
		return fmt.Errorf("%w: source does not support watching", domain.ErrUnsupportedType)
	}

	if _, err := s.Sync(ctx, collectionID); err != nil {
		return err
	}

	changes, err := notifier.Changes(ctx, collectionID)
	if err != nil {
		return fmt.Errorf("watch changes: %w", err)
	}
	logger.Info("Watching %s for changes", collectionID)

	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			timer.Reset(s.debounce)
		case <-timer.C:
			if _, err := s.Sync(ctx, collectionID); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("Watch sync for %s failed: %v", collectionID, err)
			}
		}
	}
}

// Status returns the last recorded sync state for a collection.
func (s *IngestService) Status(ctx context.Context, collectionID string) (*domain.SyncState, error) {
	state, err := s.syncStore.Get(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("get sync state: %w", err)
	}
	return state, nil
}

func (s *IngestService) acquire(collectionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[collectionID] {
		return false
	}
	s.active[collectionID] = true
	return true
}

func (s *IngestService) release(collectionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, collectionID)
}
