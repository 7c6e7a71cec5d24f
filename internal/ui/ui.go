package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"reelist/internal/events"
	"reelist/internal/models"
	"reelist/internal/session"
	"reelist/internal/watchlist"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	BrowseView ViewState = iota
	WatchlistView
	ConfirmRemoveView
)

// MovieBrowser fetches browsable movies. Implemented by services.MetadataAPI.
type MovieBrowser interface {
	Trending(ctx context.Context) ([]models.Movie, error)
	Search(ctx context.Context, query string) ([]models.Movie, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	session    *session.Manager
	controller *watchlist.Controller
	browser    MovieBrowser

	width  int
	height int

	movieList  list.Model
	movies     []models.Movie
	savedList  list.Model
	selected   map[models.MovieID]bool
	user       *models.User
	toast      string
	toastLevel string
	err        error

	eventChan   chan events.Event
	unsubscribe func()

	help help.Model
	keys keyMap
}

type moviesFetchedMsg struct {
	movies []models.Movie
	err    error
}

type toggleDoneMsg struct {
	added bool
	title string
	err   error
}

type bulkRemoveDoneMsg struct {
	result watchlist.BulkRemoveResult
}

type busEventMsg events.Event

// NewModel creates a new TUI model with the provided dependencies.
//
// The model subscribes to the broadcast bus; events are buffered onto an
// internal channel and drained through the bubbletea message loop.
func NewModel(ctx context.Context, mgr *session.Manager, ctrl *watchlist.Controller, browser MovieBrowser, bus *events.Bus) *Model {
	m := &Model{
		ctx:        ctx,
		view:       BrowseView,
		session:    mgr,
		controller: ctrl,
		browser:    browser,
		selected:   make(map[models.MovieID]bool),
		eventChan:  make(chan events.Event, 50),
		help:       help.New(),
		keys:       newKeyMap(),
	}

	if user, ok := mgr.Current(); ok {
		m.user = user
	}

	if bus != nil {
		m.unsubscribe = bus.Subscribe(func(ev events.Event) {
			select {
			case m.eventChan <- ev:
			default:
			}
		})
	}

	return m
}

// Init initializes the TUI by fetching trending movies and arming the event bridge.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchTrending(), m.waitForEvent())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.movieList.Width() == 0 {
			m.movieList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.savedList.Width() == 0 {
			m.savedList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case BrowseView:
			return m.handleBrowseKeys(msg)
		case WatchlistView:
			return m.handleWatchlistKeys(msg)
		case ConfirmRemoveView:
			return m.handleConfirmKeys(msg)
		}

	case moviesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.movies = msg.movies
		m.movieList = list.New(m.movieItems(), list.NewDefaultDelegate(), 0, 0)
		m.movieList.Title = "Trending Movies"
		m.movieList.SetSize(m.width-4, m.height-8)
		return m, nil

	case toggleDoneMsg:
		if msg.err != nil {
			m.setToast(fmt.Sprintf("Failed: %v", msg.err), events.ToastError)
		} else if msg.added {
			m.setToast(fmt.Sprintf("Added to watchlist: %s", msg.title), events.ToastSuccess)
		} else {
			m.setToast(fmt.Sprintf("Removed from watchlist: %s", msg.title), events.ToastSuccess)
		}
		m.refreshLists()
		return m, nil

	case bulkRemoveDoneMsg:
		if len(msg.result.Failed) > 0 {
			m.setToast(fmt.Sprintf("Removed %d, failed %d", len(msg.result.Removed), len(msg.result.Failed)), events.ToastError)
		} else {
			m.setToast(fmt.Sprintf("Removed %d movies", len(msg.result.Removed)), events.ToastSuccess)
		}
		m.selected = make(map[models.MovieID]bool)
		m.view = WatchlistView
		m.refreshLists()
		return m, nil

	case busEventMsg:
		m.handleBusEvent(events.Event(msg))
		return m, m.waitForEvent()
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	header := m.renderHeader()

	var body string
	switch m.view {
	case BrowseView:
		body = m.renderBrowse()
	case WatchlistView:
		body = m.renderWatchlist()
	case ConfirmRemoveView:
		body = m.renderConfirm()
	}

	toast := m.renderToast()
	if toast != "" {
		return fmt.Sprintf("%s\n%s\n%s", header, body, toast)
	}
	return fmt.Sprintf("%s\n%s", header, body)
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		m.view = WatchlistView
		m.refreshLists()
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		selected := m.movieList.SelectedItem()
		if selected != nil {
			if mi, ok := selected.(movieItem); ok {
				return m, m.toggleSave(mi.movie)
			}
		}
	}

	var cmd tea.Cmd
	m.movieList, cmd = m.movieList.Update(msg)
	return m, cmd
}

func (m *Model) handleWatchlistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab), key.Matches(msg, m.keys.back):
		m.view = BrowseView
		m.refreshLists()
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		selected := m.savedList.SelectedItem()
		if selected != nil {
			if wi, ok := selected.(watchlistItem); ok {
				m.selected[wi.item.MovieID] = !m.selected[wi.item.MovieID]
				m.refreshLists()
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if len(m.selectedIDs()) > 0 {
			m.view = ConfirmRemoveView
			return m, nil
		}
		selected := m.savedList.SelectedItem()
		if selected != nil {
			if wi, ok := selected.(watchlistItem); ok {
				return m, m.removeOne(wi.item)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.savedList, cmd = m.savedList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = WatchlistView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		return m, m.removeSelected()
	case key.Matches(msg, m.keys.quit):
		m.close()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case BrowseView:
		m.movieList, cmd = m.movieList.Update(msg)
	case WatchlistView:
		m.savedList, cmd = m.savedList.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleBusEvent(ev events.Event) {
	switch ev.Kind {
	case events.Login:
		m.user = ev.User
		m.refreshLists()
	case events.Logout:
		m.user = nil
		m.refreshLists()
	case events.SessionExpired:
		m.user = nil
		m.setToast(ev.Message, events.ToastError)
		m.refreshLists()
	case events.WatchlistAdded, events.WatchlistRemoved:
		m.refreshLists()
	case events.Toast:
		m.setToast(ev.Message, ev.Level)
	}
}

func (m *Model) fetchTrending() tea.Cmd {
	return func() tea.Msg {
		movies, err := m.browser.Trending(m.ctx)
		return moviesFetchedMsg{movies: movies, err: err}
	}
}

func (m *Model) toggleSave(movie models.Movie) tea.Cmd {
	return func() tea.Msg {
		if m.controller.IsSaved(movie.ID) {
			err := m.controller.Remove(m.ctx, movie.ID)
			return toggleDoneMsg{added: false, title: movie.Title, err: err}
		}
		_, err := m.controller.Add(m.ctx, models.ItemFromMovie(movie))
		return toggleDoneMsg{added: true, title: movie.Title, err: err}
	}
}

func (m *Model) removeOne(item models.WatchlistItem) tea.Cmd {
	return func() tea.Msg {
		err := m.controller.Remove(m.ctx, item.MovieID)
		return toggleDoneMsg{added: false, title: item.Title, err: err}
	}
}

func (m *Model) removeSelected() tea.Cmd {
	ids := m.selectedIDs()
	return func() tea.Msg {
		result := m.controller.RemoveBulk(m.ctx, ids)
		return bulkRemoveDoneMsg{result: result}
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.eventChan
		if !ok {
			return nil
		}
		return busEventMsg(ev)
	}
}

func (m *Model) selectedIDs() []models.MovieID {
	ids := make([]models.MovieID, 0, len(m.selected))
	for id, on := range m.selected {
		if on {
			ids = append(ids, id)
		}
	}
	return ids
}

// refreshLists rebuilds both list views so saved markers and checkboxes match
// the controller state.
func (m *Model) refreshLists() {
	if len(m.movies) > 0 {
		m.movieList.SetItems(m.movieItems())
	}

	items := m.controller.Items()
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = watchlistItem{item: item, selected: m.selected[item.MovieID]}
	}
	if m.savedList.Width() == 0 {
		m.savedList = list.New(listItems, list.NewDefaultDelegate(), m.width-4, m.height-8)
	} else {
		m.savedList.SetItems(listItems)
	}
	m.savedList.Title = fmt.Sprintf("Watchlist (%d)", len(items))
}

func (m *Model) movieItems() []list.Item {
	items := make([]list.Item, len(m.movies))
	for i, movie := range m.movies {
		items[i] = movieItem{movie: movie, saved: m.controller.IsSaved(movie.ID)}
	}
	return items
}

func (m *Model) setToast(message, level string) {
	m.toast = message
	m.toastLevel = level
}

func (m *Model) close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Model) renderHeader() string {
	who := "not signed in"
	if m.user != nil {
		who = m.user.Username
	}
	badge := fmt.Sprintf("♥ %d", m.controller.Count())
	return styles.title.Render(fmt.Sprintf("reelist • %s • %s", who, badge))
}

func (m *Model) renderBrowse() string {
	helpKeys := []key.Binding{m.keys.toggle, m.keys.tab, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.movieList.View(), helpView)
}

func (m *Model) renderWatchlist() string {
	helpKeys := []key.Binding{m.keys.toggle, m.keys.remove, m.keys.tab, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.savedList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	count := len(m.selectedIDs())
	title := styles.title.Render(fmt.Sprintf("Remove %d movies from your watchlist?", count))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n\n%s", title, helpView)
}

func (m *Model) renderToast() string {
	if m.toast == "" {
		return ""
	}
	switch m.toastLevel {
	case events.ToastError:
		return styles.err.Render(m.toast)
	case events.ToastSuccess:
		return styles.ok.Render(m.toast)
	default:
		return styles.warn.Render(m.toast)
	}
}
