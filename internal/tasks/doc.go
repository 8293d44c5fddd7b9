// Package tasks runs playlist operations over a storage context with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines the read operations:
//
//  1. [Engine.Playlists] : List stored playlists ordered by id
//
//  2. [Engine.Export] : Resolve a playlist into its songs
//     - Songs come back in playlist order, duplicates included
//     - Song ids with no stored song are reported as missing
//
//  3. [Engine.Diff] : Compare two stored playlists
//     - Matches songs by id
//     - Reports matched count, missing songs, and extra songs
//
//  4. [Engine.Dump] : Read every song and playlist for backup
//
// [PlaylistEngine.BulkExport] writes many playlists to disk in one of the formatter package's formats.
// A single producer resolves playlists under a rate limit and a pool of workers writes files.
// A manifest named export_manifest.json records per-playlist outcomes.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
