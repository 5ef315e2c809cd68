package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/archivist/internal/core/domain"
)

type askFixture struct {
	index *memory.LexicalIndex
	scope *ScopeService
	llm   *mockCompletion
	svc   *AskService
}

func newAskFixture(t *testing.T) *askFixture {
	t.Helper()

	index := memory.NewLexicalIndex()
	ctx := context.Background()
	for _, doc := range []domain.Document{
		{CollectionID: "C1", Timestamp: "100.000001", Text: "deploy failed due to timeout", CitationURI: "https://example.test/C1/p100"},
		{CollectionID: "C1", Timestamp: "200.000001", Text: "deploy succeeded after retry", CitationURI: "https://example.test/C1/p200"},
		{CollectionID: "C2", Timestamp: "300.000001", Text: "deploy in another channel", CitationURI: "https://example.test/C2/p300"},
	} {
		doc.ID = domain.DocumentID(doc.CollectionID, doc.Timestamp)
		require.NoError(t, index.Upsert(ctx, &doc))
	}

	scope := NewScopeService(memory.NewPreferenceStore())
	llm := &mockCompletion{answer: "Deploy failed on a timeout [1]."}
	answers := NewAnswerGenerator(llm, newMockPrompts(), fastAnswerConfig())

	return &askFixture{
		index: index,
		scope: scope,
		llm:   llm,
		svc:   NewAskService(scope, NewRetrievalService(index), answers, 5),
	}
}

func TestAskService_NeedsScope(t *testing.T) {
	f := newAskFixture(t)

	res, err := f.svc.Ask(context.Background(), domain.AskRequest{UserID: "U1", Query: "deploy"})

	require.NoError(t, err)
	assert.True(t, res.NeedsScope)
	assert.Empty(t, res.Hits)
	assert.Equal(t, 0, f.llm.callCount())
}

func TestAskService_UsesSavedScope(t *testing.T) {
	f := newAskFixture(t)
	ctx := context.Background()
	require.NoError(t, f.scope.SetScope(ctx, "U1", "C2"))

	res, err := f.svc.Ask(ctx, domain.AskRequest{UserID: "U1", Query: "deploy"})

	require.NoError(t, err)
	assert.Equal(t, "C2", res.CollectionID)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "C2-300.000001", res.Hits[0].ID)
}

func TestAskService_ExplicitCollectionWins(t *testing.T) {
	f := newAskFixture(t)
	ctx := context.Background()
	require.NoError(t, f.scope.SetScope(ctx, "U1", "C2"))

	res, err := f.svc.Ask(ctx, domain.AskRequest{UserID: "U1", CollectionID: "C1", Query: "deploy timeout"})

	require.NoError(t, err)
	assert.Equal(t, "C1", res.CollectionID)
	assert.Equal(t, "Deploy failed on a timeout [1].", res.Answer)
	assert.False(t, res.Failed())
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "C1-100.000001", res.Hits[0].ID)
	assert.Contains(t, f.llm.lastUser, "https://example.test/C1/p100")
}

func TestAskService_EmptyQuery(t *testing.T) {
	f := newAskFixture(t)

	res, err := f.svc.Ask(context.Background(), domain.AskRequest{CollectionID: "C1", Query: "   "})

	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.Equal(t, domain.RetrievalEmpty, res.Mode)
	assert.Equal(t, 0, f.llm.callCount())
}

func TestAskService_CompletionFailureIsUserFacing(t *testing.T) {
	f := newAskFixture(t)
	f.llm.errs = []error{permanentErr()}

	res, err := f.svc.Ask(context.Background(), domain.AskRequest{CollectionID: "C1", Query: "deploy"})

	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Equal(t, domain.UserFacingMessage, res.UserMessage)
	assert.ErrorIs(t, res.Err, domain.ErrPermanentService)
	assert.Empty(t, res.Answer)
	assert.NotEmpty(t, res.Hits)
}

func TestAskService_NoCompletionService(t *testing.T) {
	index := memory.NewLexicalIndex()
	svc := NewAskService(nil, NewRetrievalService(index), nil, 0)

	res, err := svc.Ask(context.Background(), domain.AskRequest{CollectionID: "C1", Query: "deploy"})

	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, domain.ErrCompletionUnavailable)
	assert.Equal(t, domain.UserFacingMessage, res.UserMessage)
}

func TestAskService_DefaultK(t *testing.T) {
	index := memory.NewLexicalIndex()
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		ts := fmt.Sprintf("%d.000100", 1000+i)
		doc := domain.Document{CollectionID: "C1", Timestamp: ts, Text: "deploy note", CitationURI: "u"}
		doc.ID = domain.DocumentID("C1", ts)
		require.NoError(t, index.Upsert(ctx, &doc))
	}
	svc := NewAskService(nil, NewRetrievalService(index), &AnswerGenerator{}, 3)

	res, err := svc.Ask(ctx, domain.AskRequest{CollectionID: "C1", Query: "deploy"})

	require.NoError(t, err)
	assert.Len(t, res.Hits, 3)
}
