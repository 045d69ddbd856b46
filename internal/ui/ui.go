package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/popcorn/internal/fetch"
	"github.com/desertthunder/popcorn/internal/models"
	"github.com/desertthunder/popcorn/internal/services"
	"github.com/desertthunder/popcorn/internal/shared"
	"github.com/desertthunder/popcorn/internal/state"
)

// DefaultWindowTitle is the terminal title while no movie details are open.
const DefaultWindowTitle = "popcorn"

// Focus identifies the pane receiving key presses.
type Focus int

const (
	SearchFocus Focus = iota
	ResultsFocus
	WatchedFocus
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	logger  *log.Logger
	search  *fetch.Controller[[]models.SearchResult]
	detail  *fetch.Controller[*models.MovieDetail]
	watched *state.Cell[models.WatchedList]
	open    func(url string) error

	focus       Focus
	input       textinput.Model
	resultList  list.Model
	watchedList list.Model

	searchState fetch.State[[]models.SearchResult]
	detailState fetch.State[*models.MovieDetail]
	selectedID  string
	userRating  int
	revisions   int

	title  string
	status string
	err    error
	width  int
	height int
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model. The model owns the search and detail controllers and closes them on [Model.Close].
func NewModel(ctx context.Context, movies services.MovieService, watched *state.Cell[models.WatchedList], logger *log.Logger) *Model {
	if logger == nil {
		logger = shared.NopLogger()
	}

	input := textinput.New()
	input.Placeholder = "Search movies..."
	input.Prompt = "🔎 "
	input.CharLimit = 120
	input.Focus()

	m := &Model{
		ctx:         ctx,
		logger:      logger,
		search:      fetch.NewMovieSearch(ctx, movies, logger),
		detail:      fetch.NewMovieDetail(ctx, movies, logger),
		watched:     watched,
		open:        shared.OpenBrowser,
		focus:       SearchFocus,
		input:       input,
		resultList:  newList("Results", nil),
		watchedList: newList("Watched", watchedItems(watched.Get())),
		help:        help.New(),
		keys:        newKeyMap(),
		title:       DefaultWindowTitle,
	}
	return m
}

// Init starts listening to both controllers.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.SetWindowTitle(m.title), m.waitForSearch(), m.waitForDetail())
}

// Close stops in-flight requests. Pending waits return [MsgControllerClosed].
func (m *Model) Close() {
	m.search.Close()
	m.detail.Close()
}

// Err returns the last error shown to the user.
func (m *Model) Err() error {
	return m.err
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.update(msg)
	if title := m.WindowTitle(); title != m.title {
		m.title = title
		cmd = tea.Batch(cmd, tea.SetWindowTitle(title))
	}
	return model, cmd
}

// WindowTitle reports the terminal title for the current state: "Movie | <title>" while details are shown.
func (m *Model) WindowTitle() string {
	if d := m.detailState.Results; m.selectedID != "" && d != nil && !m.detailState.Loading {
		return "Movie | " + d.Title
	}
	return DefaultWindowTitle
}

func (m *Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateFocused(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSearchUpdate:
		s := msg.data.(fetch.State[[]models.SearchResult])
		m.searchState = s
		cmd := m.resultList.SetItems(resultItems(s.Results))
		return m, tea.Batch(cmd, m.waitForSearch())

	case MsgDetailUpdate:
		s := msg.data.(fetch.State[*models.MovieDetail])
		if s.Query == m.selectedID {
			m.detailState = s
		}
		return m, m.waitForDetail()

	case MsgControllerClosed:
		m.logger.Debug("controller closed", "name", msg.data)
		return m, nil

	case MsgBrowserOpened:
		data := msg.data.(struct {
			url string
			err error
		})
		if data.err != nil {
			m.setError(data.err)
		} else {
			m.setStatus("Opened " + data.url)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		m.cycleFocus()
		return m, nil
	case key.Matches(msg, m.keys.back) && m.selectedID != "":
		m.closeDetail()
		return m, nil
	}

	switch m.focus {
	case SearchFocus:
		return m.handleSearchKeys(msg)
	case ResultsFocus:
		return m.handleResultKeys(msg)
	case WatchedFocus:
		return m.handleWatchedKeys(msg)
	}
	return m, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.enter) {
		m.setFocus(ResultsFocus)
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if query := m.input.Value(); query != before {
		m.search.Observe(query)
	}
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		m.focusSearch()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.resultList.SelectedItem().(resultItem); ok {
			m.toggleSelection(item.result.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.rate) && m.selectedID != "":
		m.rate(ratingFromKey(msg.String()))
		return m, nil
	case key.Matches(msg, m.keys.add) && m.selectedID != "":
		m.addWatched()
		return m, nil
	case key.Matches(msg, m.keys.open) && m.selectedID != "":
		return m, m.openIMDb(m.selectedID)
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) handleWatchedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		m.focusSearch()
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.watchedList.SelectedItem().(watchedItem); ok {
			m.removeWatched(item.entry.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.open):
		if item, ok := m.watchedList.SelectedItem().(watchedItem); ok {
			return m, m.openIMDb(item.entry.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.watchedList, cmd = m.watchedList.Update(msg)
	return m, cmd
}

func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case SearchFocus:
		m.input, cmd = m.input.Update(msg)
	case ResultsFocus:
		m.resultList, cmd = m.resultList.Update(msg)
	case WatchedFocus:
		m.watchedList, cmd = m.watchedList.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(f Focus) {
	m.focus = f
	if f == SearchFocus {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *Model) cycleFocus() {
	m.setFocus((m.focus + 1) % 3)
}

// focusSearch focuses the input and clears the query.
func (m *Model) focusSearch() {
	m.setFocus(SearchFocus)
	m.input.SetValue("")
	m.search.Observe("")
}

// toggleSelection opens the detail pane for id, or closes it when id is already selected.
func (m *Model) toggleSelection(id string) {
	if id == m.selectedID {
		m.closeDetail()
		return
	}

	m.selectedID = id
	m.userRating = 0
	m.revisions = 0
	m.detailState = fetch.State[*models.MovieDetail]{Query: id, Loading: true}
	m.status = ""
	m.detail.Observe(id)
}

func (m *Model) closeDetail() {
	m.selectedID = ""
	m.userRating = 0
	m.revisions = 0
	m.detailState = fetch.State[*models.MovieDetail]{}
	m.detail.Observe("")
}

// rate sets the pending rating. Every change to a new value counts as a decision, the first one included.
func (m *Model) rate(r int) {
	if m.watched.Get().Contains(m.selectedID) {
		m.setStatus("Already rated this movie")
		return
	}
	if r == m.userRating {
		return
	}
	m.revisions++
	m.userRating = r
}

func (m *Model) addWatched() {
	detail := m.detailState.Results
	if detail == nil || m.detailState.Loading {
		m.setStatus("Details are still loading")
		return
	}
	if m.watched.Get().Contains(detail.ID) {
		m.setStatus("Already in your watched list")
		return
	}
	if m.userRating == 0 {
		m.setStatus("Rate the movie first")
		return
	}

	entry, err := models.NewWatchedEntry(*detail, m.userRating, m.revisions)
	if err != nil {
		m.setError(err)
		return
	}

	entries, err := m.watched.Update(func(old models.WatchedList) models.WatchedList { return old.Add(entry) })
	if err != nil {
		m.setError(err)
	} else {
		m.setStatus(fmt.Sprintf("Added %s", entry.Title))
	}
	m.watchedList.SetItems(watchedItems(entries))
	m.closeDetail()
}

func (m *Model) removeWatched(id string) {
	entries, err := m.watched.Update(func(old models.WatchedList) models.WatchedList { return old.Remove(id) })
	if err != nil {
		m.setError(err)
	} else {
		m.setStatus("Removed " + id)
	}
	m.watchedList.SetItems(watchedItems(entries))
}

func (m *Model) openIMDb(id string) tea.Cmd {
	url := shared.IMDbURL(id)
	open := m.open
	return func() tea.Msg {
		return browserOpenedMsg(url, open(url))
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.err = nil
}

func (m *Model) setError(err error) {
	m.logger.Error("tui action failed", "error", err)
	m.err = err
	m.status = ""
}

func (m *Model) waitForSearch() tea.Cmd {
	updates := m.search.Updates()
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return controllerClosedMsg("search")
		}
		return searchUpdateMsg(s)
	}
}

func (m *Model) waitForDetail() tea.Cmd {
	updates := m.detail.Updates()
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return controllerClosedMsg("detail")
		}
		return detailUpdateMsg(s)
	}
}

func (m *Model) resize() {
	w := max(m.width/2-4, 20)
	h := max(m.height-10, 5)
	m.resultList.SetSize(w, h)
	m.watchedList.SetSize(w, h-6)
	m.input.Width = w - 4
}

// ratingFromKey maps 1-9 to themselves and 0 to 10.
func ratingFromKey(k string) int {
	if k == "0" {
		return models.MaxUserRating
	}
	return int(k[0] - '0')
}

// View renders the search pane beside the details or watched pane.
func (m *Model) View() string {
	left := styles.Pane(m.focus != WatchedFocus).Render(m.renderSearch())

	var right string
	if m.selectedID != "" {
		right = styles.Pane(m.focus == ResultsFocus).Render(m.renderDetail())
	} else {
		right = styles.Pane(m.focus == WatchedFocus).Render(m.renderWatched())
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return fmt.Sprintf("%s\n%s\n%s\n%s",
		styles.title.Render("🍿 popcorn"), body, m.renderStatus(), m.renderHelp())
}

func (m *Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(styles.help.Render(fmt.Sprintf("Found %d results", len(m.searchState.Results))))
	b.WriteString("\n\n")

	switch {
	case m.searchState.Loading:
		b.WriteString("Loading...")
	case m.searchState.Error != "":
		b.WriteString(styles.err.Render("⛔️ " + m.searchState.Error))
	default:
		b.WriteString(m.resultList.View())
	}
	return b.String()
}

func (m *Model) renderDetail() string {
	s := m.detailState
	switch {
	case s.Loading:
		return "Loading..."
	case s.Error != "":
		return styles.err.Render("⛔️ " + s.Error)
	case s.Results == nil:
		return ""
	}

	d := s.Results
	var b strings.Builder
	b.WriteString(styles.title.Render(d.Title))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s • %s\n%s\n⭐️ %s IMDb rating\n\n", d.Released, d.Runtime, d.Genre, d.IMDbRating))

	if entry, ok := m.watched.Get().Find(d.ID); ok {
		b.WriteString(styles.ok.Render(fmt.Sprintf("You rated this movie %d ⭐️", entry.UserRating)))
	} else {
		b.WriteString(renderStars(m.userRating))
		if m.userRating > 0 {
			b.WriteString(fmt.Sprintf("  %d/10", m.userRating))
		}
	}

	b.WriteString(fmt.Sprintf("\n\n%s\nStarring %s\nDirected by %s", d.Plot, d.Actors, d.Director))
	return b.String()
}

func (m *Model) renderWatched() string {
	entries := m.watched.Get()
	summary := entries.Summary()

	var b strings.Builder
	b.WriteString(styles.title.Render("Movies you watched"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("#️⃣ %d movies  ⭐️ %.2f  🌟 %.2f  ⏳ %.0f min\n\n",
		summary.Count, summary.AvgExternalRating, summary.AvgUserRating, summary.AvgRuntime))
	if len(entries) == 0 {
		b.WriteString(styles.help.Render("Nothing here yet"))
	} else {
		b.WriteString(m.watchedList.View())
	}
	return b.String()
}

func (m *Model) renderStatus() string {
	switch {
	case m.err != nil:
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	case m.status != "":
		return styles.ok.Render(m.status)
	default:
		return ""
	}
}

func (m *Model) renderHelp() string {
	var keys []key.Binding
	switch m.focus {
	case SearchFocus:
		keys = []key.Binding{m.keys.enter, m.keys.tab, m.keys.back}
	case ResultsFocus:
		keys = []key.Binding{m.keys.enter, m.keys.rate, m.keys.add, m.keys.open, m.keys.search, m.keys.quit}
	case WatchedFocus:
		keys = []key.Binding{m.keys.remove, m.keys.open, m.keys.search, m.keys.quit}
	}
	return m.help.ShortHelpView(keys)
}

func renderStars(n int) string {
	return styles.warn.Render(strings.Repeat("★", n)) + styles.help.Render(strings.Repeat("☆", models.MaxUserRating-n))
}
