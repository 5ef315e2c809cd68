package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/archivist/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driven"
)

// engines returns every LexicalIndex implementation, seeded with the same
// documents.
func engines(t *testing.T, docs ...*domain.Document) map[string]driven.LexicalIndex {
	t.Helper()

	store, err := sqlite.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	out := map[string]driven.LexicalIndex{
		"memory": memory.NewLexicalIndex(),
		"sqlite": store.LexicalIndex(),
	}
	for _, index := range out {
		for _, d := range docs {
			doc := *d
			require.NoError(t, index.Upsert(context.Background(), &doc))
		}
	}
	return out
}

func engineDoc(collection, ts, text string) *domain.Document {
	return &domain.Document{
		ID:           domain.DocumentID(collection, ts),
		CollectionID: collection,
		Timestamp:    ts,
		Text:         text,
		CitationURI:  "https://example.test/" + collection + "/p" + ts,
	}
}

func TestRetrievalService_EnginesAgree(t *testing.T) {
	indexes := engines(t,
		engineDoc("C1", "100", "deploy failed due to timeout"),
		engineDoc("C1", "200", "deploy succeeded"),
		engineDoc("C1", "300", "本番デプロイ失敗"),
		engineDoc("C2", "100", "deploy OR zebra NOT timeout"),
	)

	tests := []struct {
		query string
		mode  domain.RetrievalMode
		want  []string
	}{
		{"deploy OR zebra", domain.RetrievalRanked, []string{}},
		{"deploy NOT timeout", domain.RetrievalRanked, []string{}},
		{"zebra OR timeout", domain.RetrievalRanked, []string{}},
		{"timeout AND", domain.RetrievalRanked, []string{}},
		{"deploy", domain.RetrievalRanked, []string{"C1-200", "C1-100"}},
		{"deploy timeout", domain.RetrievalRanked, []string{"C1-100"}},
		{`"deploy succeeded"`, domain.RetrievalRanked, []string{"C1-200"}},
		{"デプロイ", domain.RetrievalFallback, []string{"C1-300"}},
	}

	for name, index := range indexes {
		svc := NewRetrievalService(index)
		for _, tt := range tests {
			t.Run(name+"/"+tt.query, func(t *testing.T) {
				out, err := svc.Retrieve(context.Background(), tt.query, "C1", 5)
				require.NoError(t, err)

				got := make([]string, len(out.Hits))
				for i, h := range out.Hits {
					got[i] = h.ID
				}
				assert.Equal(t, tt.mode, out.Mode)
				assert.Equal(t, tt.want, got)
			})
		}
	}
}
