// Package list provides the hit list component for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/archivist/internal/core/domain"
)

// linesPerHit is the rendered height of one hit.
const linesPerHit = 2

// HitList displays ranked hits in a navigable list.
type HitList struct {
	hits     []domain.SearchHit
	mode     domain.RetrievalMode
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewHitList creates an empty hit list.
func NewHitList(s *styles.Styles) *HitList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &HitList{styles: s, width: 80, height: 10}
}

// Init initialises the hit list.
func (l *HitList) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys.
func (l *HitList) Update(msg tea.Msg) (*HitList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the visible window of hits around the selection.
func (l *HitList) View() string {
	if len(l.hits) == 0 {
		return l.styles.Muted.Render("No matching messages")
	}

	header := fmt.Sprintf("Results (%d)", len(l.hits))
	if l.mode == domain.RetrievalFallback {
		header += l.styles.Warning.Render("  substring match")
	}
	lines := make([]string, 0, len(l.hits)*linesPerHit+2)
	lines = append(lines, l.styles.Subtitle.Render(header), "")

	visible := (l.height - 2) / linesPerHit
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.hits) {
		end = len(l.hits)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderHit(i, &l.hits[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *HitList) renderHit(index int, hit *domain.SearchHit) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	head := fmt.Sprintf("[%d] %s", index+1, hit.Timestamp)
	if hit.AuthorID != "" {
		head += "  " + hit.AuthorID
	}
	score := fmt.Sprintf("%.2f", hit.Score)

	var headLine string
	if index == l.selected {
		headLine = l.styles.Selected.Render(indicator + head + "  " + score)
	} else {
		headLine = l.styles.Normal.Render(indicator+head+"  ") + l.styles.Muted.Render(score)
	}

	preview := strings.Join(strings.Fields(hit.Text), " ")
	preview = Truncate(preview, l.width-6)
	return headLine + "\n" + l.styles.Muted.Render("    "+preview)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// SetHits replaces the list contents and resets the selection.
func (l *HitList) SetHits(hits []domain.SearchHit, mode domain.RetrievalMode) {
	l.hits = hits
	l.mode = mode
	l.selected = 0
}

// Hits returns the current hits.
func (l *HitList) Hits() []domain.SearchHit {
	return l.hits
}

// Mode returns how the current hits were produced.
func (l *HitList) Mode() domain.RetrievalMode {
	return l.mode
}

// Len returns the number of hits.
func (l *HitList) Len() int {
	return len(l.hits)
}

// Selected returns the index of the selected hit.
func (l *HitList) Selected() int {
	return l.selected
}

// SelectedHit returns the selected hit, or nil when the list is empty.
func (l *HitList) SelectedHit() *domain.SearchHit {
	if l.selected < 0 || l.selected >= len(l.hits) {
		return nil
	}
	return &l.hits[l.selected]
}

// MoveUp moves the selection up.
func (l *HitList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the selection down.
func (l *HitList) MoveDown() {
	if l.selected < len(l.hits)-1 {
		l.selected++
	}
}

// SetSize sets the rendering area.
func (l *HitList) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// Clear empties the list.
func (l *HitList) Clear() {
	l.hits = nil
	l.mode = ""
	l.selected = 0
}
