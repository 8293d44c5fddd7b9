package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/localdb/internal/models"
	"github.com/desertthunder/localdb/internal/shared"
	"github.com/desertthunder/localdb/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	SongListView
	ConfirmView
	ExportView
	ResultView
)

// Library is the read side of the store the browser needs.
type Library interface {
	Playlists(ctx context.Context) ([]*models.Playlist, error)
	Export(ctx context.Context, id int64) (*models.PlaylistExport, error)
}

// Exporter writes playlists to disk.
type Exporter interface {
	BulkExport(ctx context.Context, prog chan<- tasks.ProgressUpdate, ids []int64, opts tasks.BulkExportOpts) (*tasks.BulkExportResult, error)
}

var (
	_ Library  = (*tasks.PlaylistEngine)(nil)
	_ Exporter = (*tasks.PlaylistEngine)(nil)
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	library      Library
	exporter     Exporter
	opts         tasks.BulkExportOpts
	width        int
	height       int
	playlistList list.Model
	playlists    []*models.Playlist
	songList     list.Model
	selected     *models.PlaylistExport
	progressChan chan tasks.ProgressUpdate
	doneChan     chan exportPayload
	progress     tasks.ProgressUpdate
	result       *tasks.BulkExportResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
//
// A nil exporter disables exporting from the song list.
func NewModel(ctx context.Context, library Library, exporter Exporter, opts tasks.BulkExportOpts) *Model {
	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		library:      library,
		exporter:     exporter,
		opts:         opts,
		playlistList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		songList:     list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// ViewState returns the current view.
func (m *Model) ViewState() ViewState { return m.view }

// Init initializes the TUI by fetching stored playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(m.listSize())
		m.songList.SetSize(m.listSize())
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case SongListView:
			return m.handleSongListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ExportView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlaylistsFetched:
		data := msg.data.(playlistsPayload)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.playlists = data.playlists
		items := make([]list.Item, len(data.playlists))
		for i, pl := range data.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Playlists"
		m.playlistList.SetSize(m.listSize())
		return m, nil

	case MsgSongsFetched:
		data := msg.data.(songsPayload)
		if data.err != nil {
			m.err = data.err
			m.view = PlaylistListView
			return m, nil
		}
		m.err = nil
		m.selected = data.export
		items := make([]list.Item, len(data.export.Songs))
		for i, song := range data.export.Songs {
			items[i] = songItem{position: i + 1, song: song}
		}
		m.songList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.songList.Title = fmt.Sprintf("Songs in '%s'", data.export.Playlist.Name())
		m.songList.SetSize(m.listSize())
		m.view = SongListView
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgExportComplete:
		data := msg.data.(exportPayload)
		m.result = data.result
		m.err = data.err
		m.view = ResultView
		m.progressChan = nil
		m.doneChan = nil
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + m.help.ShortHelpView([]key.Binding{m.keys.quit})
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case SongListView:
		return m.renderSongList()
	case ConfirmView:
		return m.renderConfirm()
	case ExportView:
		return m.renderExport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) listSize() (int, int) {
	return max(m.width-4, 0), max(m.height-8, 0)
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.open):
		if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			return m, m.fetchSongs(pl.playlist.ID())
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleSongListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.songList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		m.selected = nil
		return m, nil
	case key.Matches(msg, m.keys.export):
		if m.exporter != nil {
			m.view = ConfirmView
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit), key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = SongListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = ExportView
		m.progress = tasks.ProgressUpdate{}
		return m, m.startExport()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = PlaylistListView
		m.selected = nil
		m.result = nil
		m.err = nil
		return m, m.fetchPlaylists()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case SongListView:
		m.songList, cmd = m.songList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		return playlistsFetchedMsg(m.library.Playlists(m.ctx))
	}
}

func (m *Model) fetchSongs(id int64) tea.Cmd {
	return func() tea.Msg {
		return songsFetchedMsg(m.library.Export(m.ctx, id))
	}
}

func (m *Model) startExport() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan exportPayload, 1)
	m.progressChan = progress
	m.doneChan = done

	ids := []int64{m.selected.Playlist.ID()}
	go func() {
		result, err := m.exporter.BulkExport(m.ctx, progress, ids, m.opts)
		close(progress)
		done <- exportPayload{result, err}
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.doneChan
	return func() tea.Msg {
		if progress == nil {
			return exportCompleteMsg(m.result, m.err)
		}

		update, ok := <-progress
		if !ok {
			d := <-done
			return exportCompleteMsg(d.result, d.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.open, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderSongList() string {
	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	if m.exporter != nil {
		helpKeys = []key.Binding{m.keys.export, m.keys.back, m.keys.quit}
	}

	var missing string
	if n := len(m.selected.Missing); n > 0 {
		missing = "\n" + styles.missing.Render(fmt.Sprintf("%d songs not in library: %s", n, joinIDs(m.selected.Missing)))
	}

	return fmt.Sprintf("%s%s\n\n%s", m.songList.View(), missing, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	name := m.selected.Playlist.Name()
	title := styles.title.Render(fmt.Sprintf("Export '%s'?", name))

	dir := m.opts.OutputDir
	if dir == "" {
		dir = "(new directory)"
	}
	info := fmt.Sprintf("\nPlaylist: %s\nSongs: %d\nDuration: %s\nFormat: %s\nDirectory: %s\n",
		name,
		len(m.selected.Songs),
		shared.FormatDuration(m.selected.Duration()),
		m.opts.Format,
		dir,
	)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderExport() string {
	title := styles.title.Render("Exporting Playlist")

	message := m.progress.Message
	if message == "" {
		message = "Starting..."
	}
	return fmt.Sprintf("%s\n\n%s", title, message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Export failed: %v", m.err)) + "\n\n" + helpView
	}
	if m.result == nil {
		return styles.err.Render("No result available") + "\n\n" + helpView
	}

	var b strings.Builder
	if m.result.FailedExports == 0 {
		b.WriteString(styles.ok.Render("✓ Export Complete!"))
	} else {
		b.WriteString(styles.err.Render(fmt.Sprintf("Export finished with %d failures", m.result.FailedExports)))
	}
	b.WriteString("\n")

	for _, res := range m.result.Results {
		if !res.Success {
			b.WriteString(fmt.Sprintf("\n  ✗ %s: %s", res.PlaylistName, res.ErrorMessage))
			continue
		}
		for _, f := range res.Files {
			b.WriteString(fmt.Sprintf("\n  • %s", f))
		}
		if len(res.Missing) > 0 {
			b.WriteString("\n" + styles.missing.Render(fmt.Sprintf("  %d songs missing from library", len(res.Missing))))
		}
	}
	if m.result.ManifestPath != "" {
		b.WriteString(fmt.Sprintf("\n\nManifest: %s", m.result.ManifestPath))
	}

	return b.String() + "\n\n" + helpView
}

func joinIDs(ids []int64) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = fmt.Sprint(id)
	}
	return strings.Join(s, ", ")
}
