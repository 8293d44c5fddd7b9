package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/localdb/internal/models"
	"github.com/desertthunder/localdb/internal/shared"
	"github.com/desertthunder/localdb/internal/storage"
)

// ComparisonResult contains song comparison details between two playlists.
type ComparisonResult struct {
	SourcePlaylist *models.PlaylistExport // Source playlist
	DestPlaylist   *models.PlaylistExport // Destination playlist
	MatchedCount   int                    // Songs found in both
	MissingInDest  []int64                // Songs in source but not in dest
	ExtraInDest    []int64                // Songs in dest but not in source
}

// DumpResult holds every committed song and playlist.
type DumpResult struct {
	Songs     []*models.Song     `json:"songs"`
	Playlists []*models.Playlist `json:"playlists"`
}

// Engine defines playlist operations backed by a storage context.
type Engine interface {
	// Playlists lists committed playlists ordered by id.
	Playlists(ctx context.Context) ([]*models.Playlist, error)

	// Export resolves a playlist's songs in playlist order, reporting unknown song ids as missing.
	Export(ctx context.Context, id int64) (*models.PlaylistExport, error)

	// Diff compares the song lists of two playlists.
	Diff(ctx context.Context, sourceID, destID int64, progress chan<- ProgressUpdate) (*ComparisonResult, error)

	// Dump reads every song and playlist for backup.
	Dump(ctx context.Context, progress chan<- ProgressUpdate) (*DumpResult, error)
}

var _ Engine = (*PlaylistEngine)(nil)

// PlaylistEngine implements Engine over a [storage.Context].
type PlaylistEngine struct {
	store  *storage.Context
	logger *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine reading from store.
func NewPlaylistEngine(store *storage.Context, logger *log.Logger) *PlaylistEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistEngine{store: store, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *PlaylistEngine) Playlists(ctx context.Context) ([]*models.Playlist, error) {
	playlists, err := e.store.Playlists().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	return playlists, nil
}

func (e *PlaylistEngine) Export(ctx context.Context, id int64) (*models.PlaylistExport, error) {
	playlist, err := e.store.Playlists().Find(ctx, id)
	if err != nil {
		return nil, err
	}

	export, err := e.store.Resolve(ctx, playlist)
	if err != nil {
		return nil, err
	}

	if len(export.Missing) > 0 {
		e.logger.Warn("playlist references unknown songs", "playlist", id, "missing", export.Missing)
	}
	return export, nil
}

// Diff compares two playlists by song id.
//
// Matching is by multiset, so a song listed twice in the source needs two entries in the destination.
func (e *PlaylistEngine) Diff(ctx context.Context, sourceID, destID int64, progress chan<- ProgressUpdate) (*ComparisonResult, error) {
	e.sendProgress(progress, fetchSourceUpdate(1, 2, sourceID))
	source, err := e.Export(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to export source playlist: %w", err)
	}

	e.sendProgress(progress, fetchDestUpdate(2, 2, destID))
	dest, err := e.Export(ctx, destID)
	if err != nil {
		return nil, fmt.Errorf("failed to export destination playlist: %w", err)
	}

	e.sendProgress(progress, compareUpdate(1, 1))

	result := &ComparisonResult{SourcePlaylist: source, DestPlaylist: dest}

	remaining := make(map[int64]int)
	for _, id := range dest.Playlist.Songs() {
		remaining[id]++
	}

	for _, id := range source.Playlist.Songs() {
		if remaining[id] > 0 {
			remaining[id]--
			result.MatchedCount++
			continue
		}
		result.MissingInDest = append(result.MissingInDest, id)
	}

	for _, id := range dest.Playlist.Songs() {
		if remaining[id] > 0 {
			remaining[id]--
			result.ExtraInDest = append(result.ExtraInDest, id)
		}
	}

	return result, nil
}

func (e *PlaylistEngine) Dump(ctx context.Context, progress chan<- ProgressUpdate) (*DumpResult, error) {
	e.sendProgress(progress, fetchSongsUpdate(1, 2))
	songs, err := e.store.Songs().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}

	e.sendProgress(progress, fetchPlaylistsUpdate(2, 2))
	playlists, err := e.Playlists(ctx)
	if err != nil {
		return nil, err
	}

	return &DumpResult{Songs: songs, Playlists: playlists}, nil
}
