package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/localdb/internal/models"
	"github.com/desertthunder/localdb/internal/shared"
)

// SongAdd stages and saves a new song.
func (r *Runner) SongAdd(ctx context.Context, cmd *cli.Command) error {
	store, err := r.storage(ctx)
	if err != nil {
		return err
	}

	song, err := models.NewSong(int64(cmd.Int("id")), models.SongInfo{
		Title:    cmd.String("title"),
		Artist:   cmd.String("artist"),
		Album:    cmd.String("album"),
		Duration: cmd.Int("duration"),
	})
	if err != nil {
		return err
	}

	if err := store.Songs().Add(song); err != nil {
		return err
	}
	if err := r.save(ctx, store); err != nil {
		return err
	}

	r.logger.Info("song added", "id", song.ID())
	return r.writePlain("✓ Added song %d: %s\n", song.ID(), song)
}

// SongGet prints one song.
func (r *Runner) SongGet(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, 0, "song id")
	if err != nil {
		return err
	}

	store, err := r.storage(ctx)
	if err != nil {
		return err
	}

	song, err := store.Songs().Find(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(song, cmd.Bool("pretty"))
	}

	r.writePlainHeader(song.String())
	r.writePlain("ID:       %d\n", song.ID())
	r.writePlain("Title:    %s\n", song.Title())
	r.writePlain("Artist:   %s\n", song.Artist())
	r.writePlain("Album:    %s\n", song.Album())
	return r.writePlain("Duration: %s\n", shared.FormatDuration(song.Duration()))
}

// SongList prints songs matching the filter flags.
func (r *Runner) SongList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.storage(ctx)
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	for _, key := range []string{"title", "artist", "album"} {
		if v := cmd.String(key); v != "" {
			criteria[key] = v
		}
	}

	songs, err := store.Songs().List(ctx, criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}

	if len(songs) == 0 {
		return r.writePlain("No songs found\n")
	}
	for _, s := range songs {
		r.writePlain("%4d  %s [%s]\n", s.ID(), s, shared.FormatDuration(s.Duration()))
	}
	return r.writePlainln("%d songs", len(songs))
}

// SongUpdate changes the fields given as flags and saves the song.
func (r *Runner) SongUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, 0, "song id")
	if err != nil {
		return err
	}

	store, err := r.storage(ctx)
	if err != nil {
		return err
	}

	song, err := store.Songs().Find(ctx, id)
	if err != nil {
		return err
	}

	info := song.Info()
	changed := false
	if cmd.IsSet("title") {
		info.Title, changed = cmd.String("title"), true
	}
	if cmd.IsSet("artist") {
		info.Artist, changed = cmd.String("artist"), true
	}
	if cmd.IsSet("album") {
		info.Album, changed = cmd.String("album"), true
	}
	if cmd.IsSet("duration") {
		info.Duration, changed = cmd.Int("duration"), true
	}
	if !changed {
		return fmt.Errorf("%w: nothing to update, pass --title, --artist, --album or --duration", shared.ErrMissingArgument)
	}

	if err := song.SetInfo(info); err != nil {
		return err
	}
	if err := store.Songs().Update(song); err != nil {
		return err
	}
	if err := r.save(ctx, store); err != nil {
		return err
	}

	r.logger.Info("song updated", "id", id)
	return r.writePlain("✓ Updated song %d: %s\n", id, song)
}

// SongRemove deletes a song.
func (r *Runner) SongRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, 0, "song id")
	if err != nil {
		return err
	}

	store, err := r.storage(ctx)
	if err != nil {
		return err
	}

	if err := store.Songs().Remove(id); err != nil {
		return err
	}
	if err := r.save(ctx, store); err != nil {
		return err
	}

	r.logger.Info("song removed", "id", id)
	return r.writePlain("✓ Removed song %d\n", id)
}
