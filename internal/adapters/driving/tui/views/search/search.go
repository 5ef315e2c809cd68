// Package search provides the query view for the TUI: one input that
// either searches a collection or asks a question about it.
package search

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/archivist/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

// ErrNoRetrievalService indicates that no retrieval service was provided.
var ErrNoRetrievalService = errors.New("retrieval service is required")

// Mode selects what submitting the input does.
type Mode int

const (
	// ModeSearch lists ranked hits.
	ModeSearch Mode = iota
	// ModeAsk generates a cited answer.
	ModeAsk
)

// Config holds the services and scope for a view.
type Config struct {
	Retrieval  driving.RetrievalService
	Ask        driving.AskService
	Scope      driving.ScopeService
	Collection string
	User       string
	K          int
}

// View is the input, answer, hit list and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.HitList
	statusbar *status.Bar

	cfg Config
	ctx context.Context

	mode       Mode
	answer     string
	collection string
	width      int
	height     int
	err        error
	focusInput bool
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, cfg Config) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if cfg.K <= 0 {
		cfg.K = 5
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s),
		list:       list.NewHitList(s),
		statusbar:  status.NewBar(s, km),
		cfg:        cfg,
		ctx:        context.Background(),
		collection: cfg.Collection,
		width:      80,
		height:     24,
		focusInput: true,
	}
	v.statusbar.SetCollection(cfg.Collection)
	return v
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.AskCompleted:
		v.handleAskCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		return v.handleInputKey(msg)
	}
	return v.handleResultsKey(msg)
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return v, func() tea.Msg { return messages.Quit{} }
	case tea.KeyTab:
		v.ToggleMode()
		return v, nil
	case tea.KeyEnter:
		return v, v.submit()
	default:
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleResultsKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case msg.Type == tea.KeyEsc || keymap.Matches(k, v.keymap.NewQuery):
		v.focusInput = true
		if keymap.Matches(k, v.keymap.NewQuery) {
			v.input.SetValue("")
		}
		return v, v.input.Focus()
	case keymap.Matches(k, v.keymap.Select):
		if hit := v.list.SelectedHit(); hit != nil {
			selected := *hit
			return v, func() tea.Msg { return messages.HitSelected{Hit: selected} }
		}
		return v, nil
	case keymap.Matches(k, v.keymap.Help):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// ToggleMode switches between search and ask. Ask is unavailable
// without an ask service.
func (v *View) ToggleMode() {
	if v.mode == ModeAsk || v.cfg.Ask == nil {
		v.mode = ModeSearch
		v.input.SetMode("Search", "Search the archive...")
		return
	}
	v.mode = ModeAsk
	v.input.SetMode("Ask", "Ask a question...")
}

// Mode returns the active mode.
func (v *View) Mode() Mode {
	return v.mode
}

func (v *View) submit() tea.Cmd {
	query := strings.TrimSpace(v.input.Value())
	if query == "" {
		return nil
	}
	if v.cfg.Retrieval == nil {
		v.setError(ErrNoRetrievalService)
		return nil
	}

	v.err = nil
	v.answer = ""
	v.input.Blur()
	v.focusInput = false

	if v.mode == ModeAsk {
		v.statusbar.SetState(status.StateAnswering)
		return v.askCmd(query)
	}
	v.statusbar.SetState(status.StateSearching)
	return v.searchCmd(query)
}

func (v *View) searchCmd(query string) tea.Cmd {
	ctx, cfg := v.ctx, v.cfg
	return func() tea.Msg {
		collection, err := resolveCollection(ctx, cfg)
		if err != nil {
			return messages.SearchCompleted{Err: err}
		}
		outcome, err := cfg.Retrieval.Retrieve(ctx, query, collection, cfg.K)
		return messages.SearchCompleted{Collection: collection, Outcome: outcome, Err: err}
	}
}

func (v *View) askCmd(query string) tea.Cmd {
	ctx, cfg := v.ctx, v.cfg
	return func() tea.Msg {
		result, err := cfg.Ask.Ask(ctx, domain.AskRequest{
			UserID:       cfg.User,
			CollectionID: cfg.Collection,
			Query:        query,
			K:            cfg.K,
		})
		return messages.AskCompleted{Result: result, Err: err}
	}
}

// resolveCollection prefers the configured collection over the saved scope.
func resolveCollection(ctx context.Context, cfg Config) (string, error) {
	if cfg.Collection != "" {
		return cfg.Collection, nil
	}
	if cfg.Scope == nil {
		return "", domain.ErrNoScope
	}
	collection, ok, err := cfg.Scope.GetScope(ctx, cfg.User)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrNoScope
	}
	return collection, nil
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.setCollection(msg.Collection)
	outcome := msg.Outcome
	if outcome == nil {
		outcome = domain.EmptyOutcome()
	}
	v.list.SetHits(outcome.Hits, outcome.Mode)
	v.statusbar.SetHitCount(len(outcome.Hits))
	v.statusbar.SetState(status.StateResults)
}

func (v *View) handleAskCompleted(msg messages.AskCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	r := msg.Result
	if r == nil {
		v.setError(errors.New("no answer returned"))
		return
	}
	if r.NeedsScope {
		v.setError(domain.ErrNoScope)
		return
	}

	v.setCollection(r.CollectionID)
	v.list.SetHits(r.Hits, r.Mode)
	v.statusbar.SetHitCount(len(r.Hits))
	if r.Failed() {
		v.err = r.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(r.UserMessage)
		return
	}
	v.answer = r.Answer
	v.statusbar.SetState(status.StateAnswered)
}

func (v *View) setCollection(collection string) {
	if collection == "" {
		return
	}
	v.collection = collection
	v.statusbar.SetCollection(collection)
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(errorMessage(err))
	v.focusInput = true
	v.input.Focus()
}

func errorMessage(err error) string {
	if errors.Is(err, domain.ErrNoScope) {
		return "No collection selected. Start with --collection or run 'archivist scope set'."
	}
	return err.Error()
}

// View renders the search view.
func (v *View) View() string {
	sections := []string{
		v.styles.Title.Render("archivist"),
		"",
		v.input.View(),
		"",
	}

	if v.answer != "" {
		sections = append(sections, v.styles.Answer.Width(v.width-4).Render(v.answer), "")
	}
	if v.list.Len() > 0 || v.statusbar.State() == status.StateResults {
		sections = append(sections, v.list.View())
	}

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	gap := v.height - lipgloss.Height(body) - 1
	if gap < 1 {
		gap = 1
	}
	return body + strings.Repeat("\n", gap) + v.statusbar.View()
}

// SetDimensions sizes the view and its components.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	listHeight := height - 8
	if v.answer != "" {
		listHeight -= lipgloss.Height(v.answer) + 1
	}
	v.list.SetSize(width, listHeight)
	v.statusbar.SetWidth(width)
}

// Answer returns the last generated answer.
func (v *View) Answer() string {
	return v.answer
}

// Hits returns the currently listed hits.
func (v *View) Hits() []domain.SearchHit {
	return v.list.Hits()
}

// Collection returns the collection of the last successful query.
func (v *View) Collection() string {
	return v.collection
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// InputFocused reports whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Query returns the current input text.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the input text.
func (v *View) SetQuery(q string) {
	v.input.SetValue(q)
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeAsk {
		return "ask"
	}
	return "search"
}
