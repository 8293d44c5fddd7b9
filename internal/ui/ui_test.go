package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/localdb/internal/tasks"
	th "github.com/desertthunder/localdb/internal/testing"
)

type mockExporter struct {
	result *tasks.BulkExportResult
	err    error
	ids    []int64
	opts   tasks.BulkExportOpts
}

func (m *mockExporter) BulkExport(ctx context.Context, prog chan<- tasks.ProgressUpdate, ids []int64, opts tasks.BulkExportOpts) (*tasks.BulkExportResult, error) {
	m.ids = ids
	m.opts = opts
	prog <- tasks.ProgressUpdate{Phase: tasks.ExportPlaylist, Step: 1, Total: 1, Message: "[1/1] Exporting: Road Trip..."}
	return m.result, m.err
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send delivers msg to the model and returns the resulting command
func send(t *testing.T, m *Model, msg tea.Msg) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(msg)
	return cmd
}

// drain runs cmd and every follow-up command produced by custom messages
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 20; i++ {
		msg, ok := cmd().(Msg)
		if !ok {
			return
		}
		cmd = send(t, m, msg)
	}
}

func newTestModel(t *testing.T, exporter Exporter) *Model {
	t.Helper()
	m := NewModel(context.Background(), th.NewMockLibrary(th.FixtureExport(t)), exporter, tasks.BulkExportOpts{Format: "json", OutputDir: "out"})
	send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	drain(t, m, m.Init())
	return m
}

func TestModel(t *testing.T) {
	t.Run("Init Fetches Playlists", func(t *testing.T) {
		m := newTestModel(t, nil)

		if len(m.playlists) != 1 || m.playlists[0].Name() != "Road Trip" {
			t.Fatalf("unexpected playlists: %v", m.playlists)
		}
		if m.ViewState() != PlaylistListView {
			t.Errorf("expected PlaylistListView, got %d", m.ViewState())
		}
		if !strings.Contains(m.View(), "Playlists") {
			t.Errorf("expected list title in view:\n%s", m.View())
		}
	})

	t.Run("Open Playlist", func(t *testing.T) {
		m := newTestModel(t, nil)
		drain(t, m, send(t, m, tea.KeyMsg{Type: tea.KeyEnter}))

		if m.ViewState() != SongListView {
			t.Fatalf("expected SongListView, got %d", m.ViewState())
		}
		if len(m.songList.Items()) != 2 {
			t.Errorf("expected 2 songs, got %d", len(m.songList.Items()))
		}
		if !strings.Contains(m.View(), "1 songs not in library: 11") {
			t.Errorf("expected missing songs in view:\n%s", m.View())
		}
	})

	t.Run("Back", func(t *testing.T) {
		m := newTestModel(t, nil)
		drain(t, m, send(t, m, tea.KeyMsg{Type: tea.KeyEnter}))
		send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

		if m.ViewState() != PlaylistListView {
			t.Errorf("expected PlaylistListView, got %d", m.ViewState())
		}
	})

	t.Run("Export Disabled Without Exporter", func(t *testing.T) {
		m := newTestModel(t, nil)
		drain(t, m, send(t, m, tea.KeyMsg{Type: tea.KeyEnter}))
		send(t, m, keyRunes("e"))

		if m.ViewState() != SongListView {
			t.Errorf("expected SongListView, got %d", m.ViewState())
		}
	})

	t.Run("Export", func(t *testing.T) {
		exporter := &mockExporter{result: &tasks.BulkExportResult{
			TotalPlaylists:    1,
			SuccessfulExports: 1,
			ManifestPath:      "out/export_manifest.json",
			Results: []tasks.PlaylistExportResult{
				{PlaylistID: 1, PlaylistName: "Road Trip", Success: true, Files: []string{"out/playlist_1.json"}, Missing: []int64{11}},
			},
		}}
		m := newTestModel(t, exporter)
		drain(t, m, send(t, m, tea.KeyMsg{Type: tea.KeyEnter}))
		send(t, m, keyRunes("e"))

		if m.ViewState() != ConfirmView {
			t.Fatalf("expected ConfirmView, got %d", m.ViewState())
		}
		for _, want := range []string{"Export 'Road Trip'?", "Duration: 7:22", "Format: json", "Directory: out"} {
			if !strings.Contains(m.View(), want) {
				t.Errorf("confirm view missing %q:\n%s", want, m.View())
			}
		}

		drain(t, m, send(t, m, keyRunes("y")))

		if m.ViewState() != ResultView {
			t.Fatalf("expected ResultView, got %d", m.ViewState())
		}
		if len(exporter.ids) != 1 || exporter.ids[0] != 1 {
			t.Errorf("unexpected exported ids: %v", exporter.ids)
		}
		if m.progress.Message != "[1/1] Exporting: Road Trip..." {
			t.Errorf("progress not recorded: %+v", m.progress)
		}
		for _, want := range []string{"Export Complete", "out/playlist_1.json", "1 songs missing", "Manifest: out/export_manifest.json"} {
			if !strings.Contains(m.View(), want) {
				t.Errorf("result view missing %q:\n%s", want, m.View())
			}
		}
	})

	t.Run("Decline Export", func(t *testing.T) {
		m := newTestModel(t, &mockExporter{})
		drain(t, m, send(t, m, tea.KeyMsg{Type: tea.KeyEnter}))
		send(t, m, keyRunes("e"))
		send(t, m, keyRunes("n"))

		if m.ViewState() != SongListView {
			t.Errorf("expected SongListView, got %d", m.ViewState())
		}
	})

	t.Run("Export Failure", func(t *testing.T) {
		m := newTestModel(t, &mockExporter{err: errors.New("disk full")})
		drain(t, m, send(t, m, tea.KeyMsg{Type: tea.KeyEnter}))
		send(t, m, keyRunes("e"))
		drain(t, m, send(t, m, keyRunes("y")))

		if !strings.Contains(m.View(), "Export failed: disk full") {
			t.Errorf("expected failure in view:\n%s", m.View())
		}

		drain(t, m, send(t, m, keyRunes("r")))
		if m.ViewState() != PlaylistListView || m.err != nil {
			t.Errorf("expected reset to PlaylistListView, got %d (%v)", m.ViewState(), m.err)
		}
	})

	t.Run("Library Error", func(t *testing.T) {
		lib := th.NewMockLibrary()
		lib.Err = errors.New("database is locked")

		m := NewModel(context.Background(), lib, nil, tasks.BulkExportOpts{})
		drain(t, m, m.Init())

		if !strings.Contains(m.View(), "Error: database is locked") {
			t.Errorf("expected error in view:\n%s", m.View())
		}
	})

	t.Run("Quit", func(t *testing.T) {
		m := newTestModel(t, nil)
		cmd := send(t, m, keyRunes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestSongItem(t *testing.T) {
	export := th.FixtureExport(t)

	item := songItem{position: 1, song: export.Songs[0]}
	if item.Title() != "1. Xtal" {
		t.Errorf("unexpected title: %s", item.Title())
	}
	if item.Description() != "Aphex Twin • SAW 85-92 • 4:51" {
		t.Errorf("unexpected description: %s", item.Description())
	}

	pl := playlistItem{playlist: export.Playlist}
	if pl.Description() != "#1 • 3 songs" {
		t.Errorf("unexpected playlist description: %s", pl.Description())
	}
}
