// Package ui implements an interactive terminal browser for the local library using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow:
//  1. [PlaylistListView] : Browse stored playlists
//  2. [SongListView] : Preview a playlist's songs in order, with missing songs flagged
//  3. [ConfirmView] : Confirm exporting the playlist to disk
//  4. [ExportView] : Monitor real-time progress updates
//  5. [ResultView] : Display written files and failures
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the export task, providing non-blocking status reporting.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, e, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
