package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

func TestBuildContext_NumbersInRankOrder(t *testing.T) {
	hits := []domain.SearchHit{
		{ID: "C1-200", Text: "deploy succeeded", CitationURI: "https://example.test/p200", Score: 2},
		{ID: "C1-100", Text: "deploy failed\ndue to timeout", CitationURI: "https://example.test/p100", Score: 1},
	}

	got := BuildContext(hits)

	want := "[1] deploy succeeded\n<https://example.test/p200>\n\n" +
		"[2] deploy failed due to timeout\n<https://example.test/p100>"
	assert.Equal(t, want, got)
}

func TestBuildContext_DoesNotResort(t *testing.T) {
	hits := []domain.SearchHit{
		{Text: "low", CitationURI: "a", Score: 0.1},
		{Text: "high", CitationURI: "b", Score: 9},
	}

	got := BuildContext(hits)

	assert.Less(t, strings.Index(got, "[1] low"), strings.Index(got, "[2] high"))
}

func TestBuildContext_Empty(t *testing.T) {
	assert.Equal(t, "", BuildContext(nil))
}

func TestBoundContext_FitsUnchanged(t *testing.T) {
	text := strings.Repeat("a", 100)
	assert.Equal(t, text, BoundContext(text, 100))
	assert.Equal(t, text, BoundContext(text, 8000))
}

func TestBoundContext_HeadAndTail(t *testing.T) {
	head := strings.Repeat("H", 5000)
	tail := strings.Repeat("T", 5000)
	text := head + tail

	got := BoundContext(text, 8000)

	assert.Equal(t, 8000, utf8.RuneCountInString(got))
	assert.True(t, strings.HasPrefix(got, "HHHHHHHHHH"))
	assert.True(t, strings.HasSuffix(got, "TTTTTTTTTT"))
	assert.Contains(t, got, ElisionMarker)

	parts := strings.SplitN(got, ElisionMarker, 2)
	budget := 8000 - utf8.RuneCountInString(ElisionMarker)
	assert.Equal(t, budget*7/10, utf8.RuneCountInString(parts[0]))
	assert.Equal(t, budget-budget*7/10, utf8.RuneCountInString(parts[1]))
}

func TestBoundContext_LengthIndependentOfInput(t *testing.T) {
	for _, n := range []int{8001, 10000, 100000} {
		got := BoundContext(strings.Repeat("x", n), 8000)
		assert.Equal(t, 8000, utf8.RuneCountInString(got), "input length %d", n)
	}
}

func TestBoundContext_CountsRunes(t *testing.T) {
	text := strings.Repeat("デプロイ", 100)

	got := BoundContext(text, 100)

	assert.Equal(t, 100, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}

func TestBoundContext_PanicsBelowFloor(t *testing.T) {
	assert.Panics(t, func() {
		BoundContext("anything", domain.MinContextChars-1)
	})
}
