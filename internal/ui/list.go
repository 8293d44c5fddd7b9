package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/localdb/internal/models"
	"github.com/desertthunder/localdb/internal/shared"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = songItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist *models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name() }
func (i playlistItem) Title() string       { return i.playlist.Name() }
func (i playlistItem) Description() string {
	return fmt.Sprintf("#%d • %d songs", i.playlist.ID(), i.playlist.Len())
}

// songItem wraps [models.Song] with its position to implement [list.Item].
type songItem struct {
	position int
	song     *models.Song
}

func (i songItem) FilterValue() string { return i.song.Title() }
func (i songItem) Title() string       { return fmt.Sprintf("%d. %s", i.position, i.song.Title()) }
func (i songItem) Description() string {
	parts := []string{}
	for _, s := range []string{i.song.Artist(), i.song.Album()} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if i.song.Duration() > 0 {
		parts = append(parts, shared.FormatDuration(i.song.Duration()))
	}
	return strings.Join(parts, " • ")
}
