// Package hit provides the detail view for a single search hit.
package hit

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/archivist/internal/core/domain"
)

// View shows one hit's metadata and full text, scrollable.
type View struct {
	styles *styles.Styles
	hit    *domain.SearchHit
	offset int
	width  int
	height int
}

// NewView creates an empty hit view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, width: 80, height: 24}
}

// SetHit shows hit and scrolls to the top.
func (v *View) SetHit(hit domain.SearchHit) {
	v.hit = &hit
	v.offset = 0
}

// Hit returns the displayed hit, or nil.
func (v *View) Hit() *domain.SearchHit {
	return v.hit
}

// Offset returns the scroll offset in lines.
func (v *View) Offset() int {
	return v.offset
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles scrolling and navigation back to search.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "backspace":
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewSearch} }
		case "up", "k":
			if v.offset > 0 {
				v.offset--
			}
		case "down", "j":
			if v.offset < v.maxOffset() {
				v.offset++
			}
		case "g":
			v.offset = 0
		case "G":
			v.offset = v.maxOffset()
		}
	}
	return v, nil
}

func (v *View) bodyLines() []string {
	if v.hit == nil {
		return nil
	}
	width := v.width - 4
	if width < 20 {
		width = 20
	}
	return strings.Split(lipgloss.NewStyle().Width(width).Render(v.hit.Text), "\n")
}

func (v *View) visibleLines() int {
	n := v.height - 10
	if n < 1 {
		n = 1
	}
	return n
}

func (v *View) maxOffset() int {
	m := len(v.bodyLines()) - v.visibleLines()
	if m < 0 {
		return 0
	}
	return m
}

// View renders the hit.
func (v *View) View() string {
	if v.hit == nil {
		return v.styles.Muted.Render("No message selected")
	}
	h := v.hit

	meta := []string{
		v.styles.Title.Render(h.ID),
		v.field("Time", h.Timestamp),
	}
	if h.AuthorID != "" {
		meta = append(meta, v.field("Author", h.AuthorID))
	}
	meta = append(meta, v.field("Score", fmt.Sprintf("%.4f", h.Score)))
	if h.CitationURI != "" {
		meta = append(meta, v.styles.Muted.Render("Link:   ")+v.styles.Citation.Render(h.CitationURI))
	}

	lines := v.bodyLines()
	end := v.offset + v.visibleLines()
	if end > len(lines) {
		end = len(lines)
	}
	body := strings.Join(lines[v.offset:end], "\n")

	help := v.styles.Help.Render("↑/↓ scroll | esc: back")
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinVertical(lipgloss.Left, meta...),
		"",
		v.styles.Border.Width(v.width-2).Render(body),
		help,
	)
}

func (v *View) field(label, value string) string {
	return v.styles.Muted.Render(fmt.Sprintf("%-8s", label+":")) + v.styles.Normal.Render(value)
}

// SetDimensions sets the view size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	if v.offset > v.maxOffset() {
		v.offset = v.maxOffset()
	}
}
