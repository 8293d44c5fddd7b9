package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/localdb/internal/models"
	"github.com/desertthunder/localdb/internal/shared"
)

var _ models.Repository[*models.Playlist] = (*PlaylistRepository)(nil)

// PlaylistRepository implements models.Repository[*models.Playlist].
//
// Song order lives in playlist_songs as dense positions starting at 0, rewritten on every update.
type PlaylistRepository struct {
	q       Querier
	dialect shared.Dialect
}

// NewPlaylistRepository creates a new PlaylistRepository over a database or transaction
func NewPlaylistRepository(q Querier, d shared.Dialect) *PlaylistRepository {
	return &PlaylistRepository{q: q, dialect: d}
}

// Create inserts a playlist and its song list. A zero id is replaced with the next free id.
func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return inTx(ctx, r.q, func(q Querier) error {
		id := playlist.ID()
		if id == 0 {
			next, err := NextID(ctx, q, "playlists")
			if err != nil {
				return err
			}
			id = next
		}

		query := "INSERT INTO playlists (id, name) VALUES (?, ?)"
		if _, err := q.ExecContext(ctx, r.dialect.Rebind(query), id, playlist.Name()); err != nil {
			return classifyInsert(err, "playlist", id)
		}

		if err := r.insertSongs(ctx, q, id, playlist.Songs()); err != nil {
			return err
		}

		playlist.SetID(id)
		return nil
	})
}

// Get retrieves a playlist and its ordered song list
func (r *PlaylistRepository) Get(ctx context.Context, id int64) (*models.Playlist, error) {
	var name string
	query := "SELECT id, name FROM playlists WHERE id = ?"
	err := r.q.QueryRowContext(ctx, r.dialect.Rebind(query), id).Scan(&id, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: playlist %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	return r.load(ctx, id, name)
}

// Update renames the playlist and replaces its song list
func (r *PlaylistRepository) Update(ctx context.Context, playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return inTx(ctx, r.q, func(q Querier) error {
		query := "UPDATE playlists SET name = ? WHERE id = ?"
		result, err := q.ExecContext(ctx, r.dialect.Rebind(query), playlist.Name(), playlist.ID())
		if err != nil {
			return fmt.Errorf("failed to update playlist: %w", err)
		}
		if err := expectAffected(result, "playlist", playlist.ID()); err != nil {
			return err
		}

		return r.replaceSongs(ctx, q, playlist.ID(), playlist.Songs())
	})
}

// Delete removes a playlist and its song entries
func (r *PlaylistRepository) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.q, func(q Querier) error {
		result, err := q.ExecContext(ctx, r.dialect.Rebind("DELETE FROM playlists WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("failed to delete playlist: %w", err)
		}
		if err := expectAffected(result, "playlist", id); err != nil {
			return err
		}

		query := "DELETE FROM playlist_songs WHERE playlist_id = ?"
		if _, err := q.ExecContext(ctx, r.dialect.Rebind(query), id); err != nil {
			return fmt.Errorf("failed to delete playlist songs: %w", err)
		}
		return nil
	})
}

// List retrieves playlists ordered by id.
//
// Criteria: "name" matches exactly, "song_id" keeps playlists that contain the song.
func (r *PlaylistRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Playlist, error) {
	query := "SELECT id, name FROM playlists WHERE 1 = 1"
	args := []any{}

	if name, ok := criteriaString(criteria, "name"); ok {
		query += " AND name = ?"
		args = append(args, name)
	}

	if songID, ok := criteriaID(criteria, "song_id"); ok {
		query += " AND id IN (SELECT playlist_id FROM playlist_songs WHERE song_id = ?)"
		args = append(args, songID)
	}

	query += " ORDER BY id ASC"

	heads, err := r.listHeads(ctx, query, args)
	if err != nil {
		return nil, err
	}

	playlists := make([]*models.Playlist, 0, len(heads))
	for _, h := range heads {
		playlist, err := r.load(ctx, h.id, h.name)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	return playlists, nil
}

type playlistHead struct {
	id   int64
	name string
}

// listHeads reads id and name rows and closes the result set before songs are loaded.
func (r *PlaylistRepository) listHeads(ctx context.Context, query string, args []any) ([]playlistHead, error) {
	rows, err := r.q.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var heads []playlistHead
	for rows.Next() {
		var h playlistHead
		if err := rows.Scan(&h.id, &h.name); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		heads = append(heads, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return heads, nil
}

func (r *PlaylistRepository) load(ctx context.Context, id int64, name string) (*models.Playlist, error) {
	songs, err := r.songIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	playlist, err := models.NewPlaylist(id, name, songs...)
	if err != nil {
		return nil, fmt.Errorf("stored playlist %d is invalid: %w", id, err)
	}
	return playlist, nil
}

// songIDs returns the playlist's song ids in position order
func (r *PlaylistRepository) songIDs(ctx context.Context, playlistID int64) ([]int64, error) {
	query := "SELECT song_id FROM playlist_songs WHERE playlist_id = ? ORDER BY position ASC"
	rows, err := r.q.QueryContext(ctx, r.dialect.Rebind(query), playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist songs: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan playlist song: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

func (r *PlaylistRepository) replaceSongs(ctx context.Context, q Querier, playlistID int64, songs []int64) error {
	query := "DELETE FROM playlist_songs WHERE playlist_id = ?"
	if _, err := q.ExecContext(ctx, r.dialect.Rebind(query), playlistID); err != nil {
		return fmt.Errorf("failed to clear playlist songs: %w", err)
	}
	return r.insertSongs(ctx, q, playlistID, songs)
}

func (r *PlaylistRepository) insertSongs(ctx context.Context, q Querier, playlistID int64, songs []int64) error {
	query := r.dialect.Rebind("INSERT INTO playlist_songs (playlist_id, position, song_id) VALUES (?, ?, ?)")
	for pos, songID := range songs {
		if _, err := q.ExecContext(ctx, query, playlistID, pos, songID); err != nil {
			return fmt.Errorf("failed to insert playlist song at position %d: %w", pos, err)
		}
	}
	return nil
}
