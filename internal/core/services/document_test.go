package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/archivist/internal/core/domain"
)

func setupDocumentService(t *testing.T) (*DocumentService, *memory.LexicalIndex) {
	t.Helper()
	idx := memory.NewLexicalIndex()
	ctx := context.Background()
	for _, ts := range []string{"1.0", "2.0", "3.0"} {
		require.NoError(t, idx.Upsert(ctx, &domain.Document{
			ID: domain.DocumentID("C1", ts), CollectionID: "C1", Timestamp: ts, Text: "msg " + ts,
		}))
	}
	require.NoError(t, idx.Tombstone(ctx, "C1-2.0"))
	return NewDocumentService(idx), idx
}

func TestDocumentService_ListByCollection(t *testing.T) {
	svc, _ := setupDocumentService(t)

	docs, err := svc.ListByCollection(context.Background(), " C1 ")

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "C1-3.0", docs[0].ID)
	assert.Equal(t, "C1-1.0", docs[1].ID)

	_, err = svc.ListByCollection(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentService_Get(t *testing.T) {
	svc, _ := setupDocumentService(t)

	doc, err := svc.Get(context.Background(), "C1-2.0")
	require.NoError(t, err)
	assert.True(t, doc.Deleted)

	_, err = svc.Get(context.Background(), "C1-9.0")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentService_Stats(t *testing.T) {
	svc, _ := setupDocumentService(t)

	stats, err := svc.Stats(context.Background(), "C1")

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Live)
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, "C1", stats.CollectionID)
}
