// Package repositories implements SQL persistence for songs and playlists.
//
// Each repository runs over a [Querier], which is either a *sql.DB or a *sql.Tx.
// Multi-statement writes open their own transaction when handed a *sql.DB and join
// the caller's transaction when handed a *sql.Tx, so the storage context can commit
// a batch of writes atomically.
//
// Key Implementations:
//   - [SongRepository] : Song rows with exact-match filtering on title, artist and album
//   - [PlaylistRepository] : Playlists plus their ordered song ids in the playlist_songs join table
//
// Queries are written with '?' placeholders and rebound per [shared.Dialect], so the same
// repositories serve SQLite (mattn/go-sqlite3, modernc.org/sqlite) and Postgres (pgx, lib/pq).
// A zero id on Create is replaced with [NextID], computed inside the inserting transaction.
package repositories
