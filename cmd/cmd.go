// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/localdb/internal/formatter"
)

var formatUsage = "Export format (" + strings.Join(formatter.Formats, ", ") + ")"

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

func prettyFlag() cli.Flag {
	return &cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output", Value: true}
}

func songInfoFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Song title", Required: required},
		&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Usage: "Artist name"},
		&cli.StringFlag{Name: "album", Usage: "Album name"},
		&cli.IntFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Duration in seconds"},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml from the default template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Connect to the configured database and create the schema",
				Action: r.SetupDatabase,
			},
		},
	}
}

// songCommand handles song records
func songCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "song",
		Aliases: []string{"songs"},
		Usage:   "Manage songs",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a song",
				Flags: append(songInfoFlags(true),
					&cli.IntFlag{Name: "id", Usage: "Song ID (assigned by the store when omitted)"},
				),
				Action: r.SongAdd,
			},
			{
				Name:      "get",
				Usage:     "Show a song",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{jsonFlag(), prettyFlag()},
				Action:    r.SongGet,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List songs, optionally filtered by exact title, artist or album",
				Flags:   append(songInfoFlags(false)[:3], jsonFlag(), prettyFlag()),
				Action:  r.SongList,
			},
			{
				Name:      "update",
				Usage:     "Change a song's details",
				ArgsUsage: "<id>",
				Flags:     songInfoFlags(false),
				Action:    r.SongUpdate,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Delete a song (playlists keep referencing its id)",
				ArgsUsage: "<id>",
				Action:    r.SongRemove,
			},
		},
	}
}

// playlistCommand handles playlists and their song lists
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage playlists",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Create a playlist",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "id", Usage: "Playlist ID (assigned by the store when omitted)"},
					&cli.StringFlag{Name: "songs", Usage: "Comma-separated song IDs, in order"},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:      "get",
				Usage:     "Show a playlist and its songs",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{jsonFlag(), prettyFlag()},
				Action:    r.PlaylistGet,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List playlists",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Exact playlist name"},
					&cli.IntFlag{Name: "song", Usage: "Only playlists containing this song ID"},
					jsonFlag(),
					prettyFlag(),
				},
				Action: r.PlaylistList,
			},
			{
				Name:      "rename",
				Usage:     "Rename a playlist",
				ArgsUsage: "<id> <name>",
				Action:    r.PlaylistRename,
			},
			{
				Name:      "add-song",
				Usage:     "Add a song to a playlist",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "song", Aliases: []string{"s"}, Usage: "Song ID", Required: true},
					&cli.IntFlag{Name: "position", Aliases: []string{"p"}, Usage: "1-based position (default: append)"},
				},
				Action: r.PlaylistAddSong,
			},
			{
				Name:      "remove-song",
				Usage:     "Remove the song at a position",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "position", Aliases: []string{"p"}, Usage: "1-based position", Required: true},
				},
				Action: r.PlaylistRemoveSong,
			},
			{
				Name:      "move-song",
				Usage:     "Move a song to another position",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "from", Usage: "1-based current position", Required: true},
					&cli.IntFlag{Name: "to", Usage: "1-based new position", Required: true},
				},
				Action: r.PlaylistMoveSong,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a playlist",
				ArgsUsage: "<id>",
				Action:    r.PlaylistDelete,
			},
			{
				Name:      "diff",
				Usage:     "Compare the songs of two playlists",
				ArgsUsage: "<source-id> <dest-id>",
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.PlaylistDiff,
			},
		},
	}
}

// exportCommand handles writing playlists to files
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export playlists to files",
		Commands: []*cli.Command{
			{
				Name:      "playlist",
				Usage:     "Export one playlist",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: formatUsage, Value: formatter.FormatJSON},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output path (stdout when omitted)"},
				},
				Action: r.ExportPlaylist,
			},
			{
				Name:      "all",
				Usage:     "Export every playlist, or the IDs given as arguments",
				ArgsUsage: "[id...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: formatUsage, Value: formatter.FormatJSON},
					&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "Output directory (default: localdb_export_{epoch})"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent writers (max 10)", Value: 5},
					&cli.FloatFlag{Name: "rate", Usage: "Playlists read per second", Value: 20},
				},
				Action: r.ExportAll,
			},
			{
				Name:  "dump",
				Usage: "Dump every song and playlist as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file (stdout when omitted)"},
					prettyFlag(),
				},
				Action: r.ExportDump,
			},
		},
	}
}

// browseCommand returns the top-level TUI command for interactive browsing.
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"tui", "ui"},
		Usage:   "Browse playlists interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: formatUsage, Value: formatter.FormatJSON},
			&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "Directory for exports started from the browser"},
			&cli.StringFlag{Name: "log-file", Usage: "Log file while the TUI owns the terminal", Value: "localdb-tui.log"},
		},
		Action: r.Browse,
	}
}
