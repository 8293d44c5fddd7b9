package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/localdb/internal/models"
	"github.com/desertthunder/localdb/internal/shared"
	"github.com/desertthunder/localdb/internal/storage"
)

// PlaylistCreate stages and saves a new playlist.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().Get(0)
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	songs, err := shared.ParseIDs(cmd.String("songs"))
	if err != nil {
		return err
	}

	store, err := r.storage(ctx)
	if err != nil {
		return err
	}

	playlist, err := models.NewPlaylist(int64(cmd.Int("id")), name, songs...)
	if err != nil {
		return err
	}

	if err := store.Playlists().Add(playlist); err != nil {
		return err
	}
	if err := r.save(ctx, store); err != nil {
		return err
	}

	r.logger.Info("playlist created", "id", playlist.ID(), "songs", playlist.Len())
	return r.writePlain("✓ Created playlist %d: %s (%d songs)\n", playlist.ID(), playlist.Name(), playlist.Len())
}

// PlaylistGet prints a playlist with its songs resolved in order.
func (r *Runner) PlaylistGet(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, 0, "playlist id")
	if err != nil {
		return err
	}

	engine, err := r.playlistEngine(ctx)
	if err != nil {
		return err
	}

	export, err := engine.Export(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(export, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (#%d)", export.Playlist.Name(), export.Playlist.ID()))
	r.writePlain("Songs: %d  Duration: %s\n\n", len(export.Songs), shared.FormatDuration(export.Duration()))
	for i, s := range export.Songs {
		r.writePlain("%3d. %s [%s]\n", i+1, s, shared.FormatDuration(s.Duration()))
	}
	if len(export.Missing) > 0 {
		r.writePlainln("Missing songs: %v", export.Missing)
	}
	return nil
}

// PlaylistList prints playlists, optionally only those with the given name or song.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.storage(ctx)
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if name := cmd.String("name"); name != "" {
		criteria["name"] = name
	}
	if cmd.IsSet("song") {
		criteria["song_id"] = int64(cmd.Int("song"))
	}

	playlists, err := store.Playlists().List(ctx, criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists found\n")
	}
	for _, p := range playlists {
		r.writePlain("%4d  %s (%d songs)\n", p.ID(), p.Name(), p.Len())
	}
	return r.writePlainln("%d playlists", len(playlists))
}

// PlaylistRename changes a playlist's name.
func (r *Runner) PlaylistRename(ctx context.Context, cmd *cli.Command) error {
	name := strings.Join(cmd.Args().Tail(), " ")
	if name == "" {
		return fmt.Errorf("%w: new playlist name", shared.ErrMissingArgument)
	}

	return r.editPlaylist(ctx, cmd, func(p *models.Playlist) (string, error) {
		old := p.Name()
		if err := p.SetName(name); err != nil {
			return "", err
		}
		return fmt.Sprintf("renamed %q to %q", old, p.Name()), nil
	})
}

// PlaylistAddSong inserts a song, appending when no position is given.
func (r *Runner) PlaylistAddSong(ctx context.Context, cmd *cli.Command) error {
	songID := int64(cmd.Int("song"))
	if songID <= 0 {
		return fmt.Errorf("%w: --song must be a positive song id", shared.ErrInvalidFlag)
	}

	return r.editPlaylist(ctx, cmd, func(p *models.Playlist) (string, error) {
		pos := p.Len()
		if cmd.IsSet("position") {
			var err error
			if pos, err = flagPosition(cmd, "position"); err != nil {
				return "", err
			}
		}
		if err := p.InsertSong(pos, songID); err != nil {
			return "", err
		}
		return fmt.Sprintf("added song %d at position %d", songID, pos+1), nil
	})
}

// PlaylistRemoveSong removes the entry at a position.
func (r *Runner) PlaylistRemoveSong(ctx context.Context, cmd *cli.Command) error {
	pos, err := flagPosition(cmd, "position")
	if err != nil {
		return err
	}

	return r.editPlaylist(ctx, cmd, func(p *models.Playlist) (string, error) {
		songID, err := p.RemoveSongAt(pos)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("removed song %d from position %d", songID, pos+1), nil
	})
}

// PlaylistMoveSong moves an entry to a new position.
func (r *Runner) PlaylistMoveSong(ctx context.Context, cmd *cli.Command) error {
	from, err := flagPosition(cmd, "from")
	if err != nil {
		return err
	}
	to, err := flagPosition(cmd, "to")
	if err != nil {
		return err
	}

	return r.editPlaylist(ctx, cmd, func(p *models.Playlist) (string, error) {
		if err := p.MoveSong(from, to); err != nil {
			return "", err
		}
		return fmt.Sprintf("moved position %d to %d", from+1, to+1), nil
	})
}

// PlaylistDelete deletes a playlist and its song list.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, 0, "playlist id")
	if err != nil {
		return err
	}

	store, err := r.storage(ctx)
	if err != nil {
		return err
	}

	if err := store.Playlists().Remove(id); err != nil {
		return err
	}
	if err := r.save(ctx, store); err != nil {
		return err
	}

	r.logger.Info("playlist deleted", "id", id)
	return r.writePlain("✓ Deleted playlist %d\n", id)
}

// PlaylistDiff compares two playlists by song id.
func (r *Runner) PlaylistDiff(ctx context.Context, cmd *cli.Command) error {
	sourceID, err := argID(cmd, 0, "source playlist id")
	if err != nil {
		return err
	}
	destID, err := argID(cmd, 1, "destination playlist id")
	if err != nil {
		return err
	}

	engine, err := r.playlistEngine(ctx)
	if err != nil {
		return err
	}

	result, err := engine.Diff(ctx, sourceID, destID, nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"source":          sourceID,
			"destination":     destID,
			"matched":         result.MatchedCount,
			"missing_in_dest": result.MissingInDest,
			"extra_in_dest":   result.ExtraInDest,
		}, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s → %s", result.SourcePlaylist.Playlist.Name(), result.DestPlaylist.Playlist.Name()))
	r.writePlain("Matched: %d\n", result.MatchedCount)
	r.writePlain("Missing in destination: %v\n", result.MissingInDest)
	return r.writePlain("Extra in destination: %v\n", result.ExtraInDest)
}

// editPlaylist loads the playlist named by the first argument, applies edit and saves it.
func (r *Runner) editPlaylist(ctx context.Context, cmd *cli.Command, edit func(*models.Playlist) (string, error)) error {
	id, err := argID(cmd, 0, "playlist id")
	if err != nil {
		return err
	}

	store, err := r.storage(ctx)
	if err != nil {
		return err
	}

	playlist, err := store.Playlists().Find(ctx, id)
	if err != nil {
		return err
	}

	summary, err := edit(playlist)
	if err != nil {
		return err
	}

	if err := r.savePlaylist(ctx, store, playlist); err != nil {
		return err
	}

	r.logger.Info("playlist updated", "id", id, "change", summary)
	return r.writePlain("✓ Playlist %d: %s\n", id, summary)
}

func (r *Runner) savePlaylist(ctx context.Context, store *storage.Context, p *models.Playlist) error {
	if err := store.Playlists().Update(p); err != nil {
		return err
	}
	return r.save(ctx, store)
}
