package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/localdb/internal/models"
	"github.com/desertthunder/localdb/internal/shared"
)

var _ models.Repository[*models.Song] = (*SongRepository)(nil)

// SongRepository implements models.Repository[*models.Song].
type SongRepository struct {
	q       Querier
	dialect shared.Dialect
}

// NewSongRepository creates a new SongRepository over a database or transaction
func NewSongRepository(q Querier, d shared.Dialect) *SongRepository {
	return &SongRepository{q: q, dialect: d}
}

// Create inserts a song. A zero id is replaced with the next free id.
func (r *SongRepository) Create(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return inTx(ctx, r.q, func(q Querier) error {
		id := song.ID()
		if id == 0 {
			next, err := NextID(ctx, q, "songs")
			if err != nil {
				return err
			}
			id = next
		}

		query := "INSERT INTO songs (id, title, artist, album, duration) VALUES (?, ?, ?, ?, ?)"
		if _, err := q.ExecContext(ctx, r.dialect.Rebind(query),
			id, song.Title(), song.Artist(), song.Album(), song.Duration(),
		); err != nil {
			return classifyInsert(err, "song", id)
		}

		song.SetID(id)
		return nil
	})
}

// Get retrieves a song by ID
func (r *SongRepository) Get(ctx context.Context, id int64) (*models.Song, error) {
	query := "SELECT id, title, artist, album, duration FROM songs WHERE id = ?"
	return r.scanOne(r.q.QueryRowContext(ctx, r.dialect.Rebind(query), id), id)
}

// Update overwrites the stored fields of an existing song
func (r *SongRepository) Update(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := "UPDATE songs SET title = ?, artist = ?, album = ?, duration = ? WHERE id = ?"
	result, err := r.q.ExecContext(ctx, r.dialect.Rebind(query),
		song.Title(), song.Artist(), song.Album(), song.Duration(), song.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	return expectAffected(result, "song", song.ID())
}

// Delete removes a song. Playlists referencing it are left untouched.
func (r *SongRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, r.dialect.Rebind("DELETE FROM songs WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	return expectAffected(result, "song", id)
}

// List retrieves songs matching title, artist or album exactly, ordered by id
func (r *SongRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Song, error) {
	query := "SELECT id, title, artist, album, duration FROM songs WHERE 1 = 1"
	args := []any{}

	for _, key := range []string{"title", "artist", "album"} {
		if v, ok := criteriaString(criteria, key); ok {
			query += " AND " + key + " = ?"
			args = append(args, v)
		}
	}

	query += " ORDER BY id ASC"

	rows, err := r.q.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	songs := []*models.Song{}
	for rows.Next() {
		song, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// GetMany resolves ids to songs, preserving the order of ids.
//
// Ids without a stored song are returned in missing. Repeated ids resolve to the same song.
func (r *SongRepository) GetMany(ctx context.Context, ids []int64) (songs []*models.Song, missing []int64, err error) {
	cache := make(map[int64]*models.Song, len(ids))
	songs = []*models.Song{}

	for _, id := range ids {
		song, ok := cache[id]
		if !ok {
			song, err = r.Get(ctx, id)
			if errors.Is(err, shared.ErrNotFound) {
				cache[id] = nil
				missing = append(missing, id)
				continue
			}
			if err != nil {
				return nil, nil, err
			}
			cache[id] = song
		}
		if song == nil {
			missing = append(missing, id)
			continue
		}
		songs = append(songs, song)
	}

	return songs, missing, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanOne scans a single row into a [models.Song]
func (r *SongRepository) scanOne(row *sql.Row, id int64) (*models.Song, error) {
	song, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: song %d", shared.ErrNotFound, id)
	}
	return song, err
}

func (r *SongRepository) scan(row rowScanner) (*models.Song, error) {
	var (
		id   int64
		info models.SongInfo
	)

	if err := row.Scan(&id, &info.Title, &info.Artist, &info.Album, &info.Duration); err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	song, err := models.NewSong(id, info)
	if err != nil {
		return nil, fmt.Errorf("stored song %d is invalid: %w", id, err)
	}
	return song, nil
}
