package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/localdb/internal/models"
	"github.com/desertthunder/localdb/internal/repositories"
	"github.com/desertthunder/localdb/internal/shared"
)

// Op names a staged write.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
)

// Change describes one staged write.
type Change struct {
	Set string
	Op  Op
	ID  int64 // 0 for adds the store will number
}

type change struct {
	Change
	apply func(ctx context.Context, q repositories.Querier) error
	reset func() // undoes id assignment after a failed save, may be nil
}

// Context is a storage session over one database connection.
type Context struct {
	id      string
	db      *sql.DB
	dialect shared.Dialect
	logger  *log.Logger
	pending []change

	songs     *Set[*models.Song]
	playlists *Set[*models.Playlist]
}

// Open validates cfg, connects, ensures the schema exists and returns a ready [Context].
//
// Configuration problems wrap [shared.ErrInvalidConfig]; an unreachable database wraps [shared.ErrConnection].
func Open(ctx context.Context, cfg shared.DatabaseConfig, logger *log.Logger) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dialect, err := shared.DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := shared.OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, cfg)

	if err := shared.EnsureSchema(ctx, db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return New(db, dialect, logger), nil
}

// New creates a [Context] over an existing connection whose schema is already in place.
func New(db *sql.DB, dialect shared.Dialect, logger *log.Logger) *Context {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	id := shared.GenerateID()
	c := &Context{
		id:      id,
		db:      db,
		dialect: dialect,
		logger:  shared.WithLogger(logger, "session", id[:8], "dialect", dialect),
	}

	c.songs = newSet(c, "songs", func(q repositories.Querier, d shared.Dialect) models.Repository[*models.Song] {
		return repositories.NewSongRepository(q, d)
	})
	c.playlists = newSet(c, "playlists", func(q repositories.Querier, d shared.Dialect) models.Repository[*models.Playlist] {
		return repositories.NewPlaylistRepository(q, d)
	})

	c.logger.Debug("storage context opened")
	return c
}

// ID returns the session identifier used to tag log entries.
func (c *Context) ID() string { return c.id }

// Dialect returns the SQL dialect of the underlying connection.
func (c *Context) Dialect() shared.Dialect { return c.dialect }

func (c *Context) Songs() *Set[*models.Song]         { return c.songs }
func (c *Context) Playlists() *Set[*models.Playlist] { return c.playlists }

// Ping checks the connection is still alive.
func (c *Context) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrConnection, err)
	}
	return nil
}

// Pending returns the number of staged changes across all sets.
func (c *Context) Pending() int { return len(c.pending) }

// Changes describes the staged changes in the order they will be applied.
func (c *Context) Changes() []Change {
	out := make([]Change, len(c.pending))
	for i, ch := range c.pending {
		out[i] = ch.Change
	}
	return out
}

// Discard drops every staged change.
func (c *Context) Discard() {
	if len(c.pending) > 0 {
		c.logger.Debug("discarding staged changes", "count", len(c.pending))
	}
	c.pending = nil
}

// SaveChanges applies all staged changes in one transaction and returns how many were applied.
//
// On failure nothing is committed, the staged changes are kept, and the returned error wraps the store's error.
func (c *Context) SaveChanges(ctx context.Context) (int, error) {
	if len(c.pending) == 0 {
		return 0, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i, ch := range c.pending {
		if err := ch.apply(ctx, tx); err != nil {
			c.abort(tx)
			c.logger.Error("failed to save changes", "change", i, "set", ch.Set, "op", ch.Op, "id", ch.ID, "err", err)
			return 0, fmt.Errorf("failed to %s %s %d: %w", ch.Op, ch.Set, ch.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		c.abort(nil)
		return 0, fmt.Errorf("failed to commit changes: %w", err)
	}

	n := len(c.pending)
	c.pending = nil
	c.logger.Info("saved changes", "count", n)
	return n, nil
}

// Close releases the connection. Unsaved changes are dropped with a warning.
func (c *Context) Close() error {
	if n := len(c.pending); n > 0 {
		c.logger.Warn("closing storage context with unsaved changes", "count", n)
		c.pending = nil
	}

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// abort rolls back tx, when given, and clears ids assigned during the failed attempt.
func (c *Context) abort(tx *sql.Tx) {
	if tx != nil {
		if err := tx.Rollback(); err != nil {
			c.logger.Warn("rollback failed", "err", err)
		}
	}
	for _, ch := range c.pending {
		if ch.reset != nil {
			ch.reset()
		}
	}
}

func (c *Context) stage(ch change) {
	c.pending = append(c.pending, ch)
	c.logger.Debug("staged change", "set", ch.Set, "op", ch.Op, "id", ch.ID)
}

// Resolve turns a playlist into a [models.PlaylistExport], looking its songs up in committed state.
func (c *Context) Resolve(ctx context.Context, playlist *models.Playlist) (*models.PlaylistExport, error) {
	songs, missing, err := repositories.NewSongRepository(c.db, c.dialect).GetMany(ctx, playlist.Songs())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve playlist %d: %w", playlist.ID(), err)
	}
	return &models.PlaylistExport{Playlist: playlist, Songs: songs, Missing: missing}, nil
}
