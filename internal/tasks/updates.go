package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	FetchDest
	Compare
	FetchSongs
	FetchPlaylists
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case FetchDest:
		return "fetch_dest"
	case Compare:
		return "compare"
	case FetchSongs:
		return "fetch_songs"
	case FetchPlaylists:
		return "fetch_playlists"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func fetchSourceUpdate(step, total int, id int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loading source playlist %d...", id),
	}
}

func fetchDestUpdate(step, total int, id int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDest,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loading destination playlist %d...", id),
	}
}

func compareUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Compare,
		Step:    step,
		Total:   total,
		Message: "Comparing songs...",
	}
}

func fetchSongsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSongs,
		Step:    step,
		Total:   total,
		Message: "Reading songs...",
	}
}

func fetchPlaylistsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    step,
		Total:   total,
		Message: "Reading playlists...",
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
