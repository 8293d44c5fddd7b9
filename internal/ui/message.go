package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/localdb/internal/models"
	"github.com/desertthunder/localdb/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgSongsFetched
	MsgProgressUpdate
	MsgExportComplete
)

type playlistsPayload struct {
	playlists []*models.Playlist
	err       error
}

type songsPayload struct {
	export *models.PlaylistExport
	err    error
}

type exportPayload struct {
	result *tasks.BulkExportResult
	err    error
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []*models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsPayload{playlists, err}}
}

// songsFetchedMsg is the constructor for [MsgSongsFetched]
func songsFetchedMsg(export *models.PlaylistExport, err error) Msg {
	return Msg{kind: MsgSongsFetched, data: songsPayload{export, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// exportCompleteMsg is the constructor for [MsgExportComplete]
func exportCompleteMsg(result *tasks.BulkExportResult, err error) Msg {
	return Msg{kind: MsgExportComplete, data: exportPayload{result, err}}
}
