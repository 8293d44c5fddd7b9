package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/localdb/internal/formatter"
	"github.com/desertthunder/localdb/internal/shared"
	"github.com/desertthunder/localdb/internal/tasks"
)

// ExportPlaylist renders one playlist to --output, or stdout when no path is given.
func (r *Runner) ExportPlaylist(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, 0, "playlist id")
	if err != nil {
		return err
	}

	format, err := formatter.NormalizeFormat(cmd.String("format"))
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

	output := cmd.String("output")
	if output == "" {
		data, err := formatter.Render(export, format)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	var files []string
	switch format {
	case formatter.FormatCSV:
		res, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		files = []string{res.SongsFile, res.MetadataFile}
	case formatter.FormatMarkdown:
		file, err := formatter.WriteMarkdownExport(export, output)
		if err != nil {
			return err
		}
		files = []string{file}
	case formatter.FormatText:
		file, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		files = []string{file}
	default:
		file, err := formatter.WriteJSONExport(export, output)
		if err != nil {
			return err
		}
		files = []string{file}
	}

	r.logger.Info("playlist exported", "id", id, "format", format, "files", len(files))
	for _, f := range files {
		r.writePlain("✓ %s\n", f)
	}
	return nil
}

// ExportAll exports playlists concurrently and prints a summary.
func (r *Runner) ExportAll(ctx context.Context, cmd *cli.Command) error {
	ids := []int64{}
	for _, arg := range cmd.Args().Slice() {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("%w: playlist id must be a positive integer, got %q", shared.ErrInvalidArgument, arg)
		}
		ids = append(ids, id)
	}

	engine, err := r.playlistEngine(ctx)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()

	result, err := engine.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output-dir"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlainHeader("Export Summary")
	r.writePlain("Directory:  %s\n", result.OutputDirectory)
	r.writePlain("Playlists:  %d\n", result.TotalPlaylists)
	r.writePlain("Successful: %d\n", result.SuccessfulExports)
	r.writePlain("Failed:     %d\n", result.FailedExports)
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  ✗ %s: %s\n", res.PlaylistName, res.ErrorMessage)
		}
	}
	return r.writePlainln("Manifest: %s", result.ManifestPath)
}

// ExportDump writes every song and playlist as one JSON document.
func (r *Runner) ExportDump(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.playlistEngine(ctx)
	if err != nil {
		return err
	}

	dump, err := engine.Dump(ctx, nil)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		return r.writeJSON(dump, cmd.Bool("pretty"))
	}

	data, err := shared.MarshalJSON(dump)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write dump: %w", err)
	}

	r.logger.Info("dump written", "path", output, "songs", len(dump.Songs), "playlists", len(dump.Playlists))
	return r.writePlain("✓ Dumped %d songs and %d playlists to %s\n", len(dump.Songs), len(dump.Playlists), output)
}
