package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

func sampleHits() []domain.SearchHit {
	return []domain.SearchHit{
		{ID: "c1-1", Text: "release train leaves friday", Timestamp: "1700000000.000100", AuthorID: "U1", Score: 2.5},
		{ID: "c1-2", Text: "rollback done", Timestamp: "1700000001.000100", Score: 1.1},
	}
}

func TestHitList_Empty(t *testing.T) {
	l := NewHitList(nil)

	assert.Nil(t, l.SelectedHit())
	assert.Contains(t, l.View(), "No matching messages")
}

func TestHitList_Navigation(t *testing.T) {
	l := NewHitList(nil)
	l.SetHits(sampleHits(), domain.RetrievalRanked)

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, l.Selected())

	l.MoveDown()
	assert.Equal(t, 1, l.Selected(), "stays on last hit")

	l, _ = l.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 0, l.Selected())

	l.MoveUp()
	hit := l.SelectedHit()
	require.NotNil(t, hit)
	assert.Equal(t, "c1-1", hit.ID)
}

func TestHitList_View(t *testing.T) {
	l := NewHitList(nil)
	l.SetSize(100, 20)
	l.SetHits(sampleHits(), domain.RetrievalRanked)

	out := l.View()

	assert.Contains(t, out, "Results (2)")
	assert.Contains(t, out, "release train leaves friday")
	assert.Contains(t, out, "U1")
	assert.NotContains(t, out, "substring match")
}

func TestHitList_FallbackIsFlagged(t *testing.T) {
	l := NewHitList(nil)
	l.SetHits(sampleHits(), domain.RetrievalFallback)

	assert.Contains(t, l.View(), "substring match")
	assert.Equal(t, domain.RetrievalFallback, l.Mode())
}

func TestHitList_SetHitsResetsSelection(t *testing.T) {
	l := NewHitList(nil)
	l.SetHits(sampleHits(), domain.RetrievalRanked)
	l.MoveDown()

	l.SetHits(sampleHits()[:1], domain.RetrievalRanked)

	assert.Equal(t, 0, l.Selected())
	assert.Equal(t, 1, l.Len())

	l.Clear()
	assert.Zero(t, l.Len())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "abc", 10, "abc"},
		{"cut", "abcdefghij", 6, "abc..."},
		{"multibyte", "héllo wörld", 8, "héllo..."},
		{"tiny limit", "abcdefgh", 1, "a..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}
