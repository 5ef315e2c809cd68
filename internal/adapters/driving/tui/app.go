package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/views/hit"
	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/views/search"
)

// App is the root Bubbletea model. It routes messages between views.
type App struct {
	ctx    context.Context
	styles *styles.Styles

	searchView *search.View
	hitView    *hit.View

	currentView messages.ViewType
	width       int
	height      int
	ready       bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the TUI application.
func NewApp(ports *Ports, opts Options) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	return &App{
		ctx:    context.Background(),
		styles: s,
		searchView: search.NewView(s, km, search.Config{
			Retrieval:  ports.Retrieval,
			Ask:        ports.Ask,
			Scope:      ports.Scope,
			Collection: opts.Collection,
			User:       opts.User,
			K:          opts.K,
		}),
		hitView:     hit.NewView(s),
		currentView: messages.ViewSearch,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("archivist"),
		a.searchView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.currentView {
		case messages.ViewSearch:
			a.searchView, cmd = a.searchView.Update(msg)
		case messages.ViewHit:
			a.hitView, cmd = a.hitView.Update(msg)
		case messages.ViewHelp:
			if msg.Type == tea.KeyEsc || msg.String() == "?" || msg.String() == "q" {
				a.currentView = messages.ViewSearch
			}
		}
		return a, cmd

	case messages.HitSelected:
		a.hitView.SetHit(msg.Hit)
		a.currentView = messages.ViewHit
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.Quit:
		return a, tea.Quit

	case messages.SearchCompleted, messages.AskCompleted, messages.ErrorOccurred:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd
	}

	if a.currentView == messages.ViewSearch {
		a.searchView, cmd = a.searchView.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	switch a.currentView {
	case messages.ViewHit:
		return a.hitView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewSearch:
	}
	return a.searchView.View()
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Query:
  (type)      Enter a search or a question
  tab         Switch between search and ask
  enter       Submit
  esc         Quit

Results:
  j/k, ↑/↓    Navigate hits
  enter       Open hit
  n, /        New query
  esc         Edit query

Hit:
  j/k, ↑/↓    Scroll
  esc         Back to results

ctrl+c quits from anywhere. [esc] back`
}

// Run starts the program and blocks until it exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.WithContext(ctx)
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// SearchView returns the search view.
func (a *App) SearchView() *search.View {
	return a.searchView
}

// HitView returns the hit view.
func (a *App) HitView() *hit.View {
	return a.hitView
}

// Ready returns whether a window size has been received.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal size on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.searchView.SetDimensions(width, height)
	a.hitView.SetDimensions(width, height)
}
