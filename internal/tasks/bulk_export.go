package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/localdb/internal/formatter"
	"github.com/desertthunder/localdb/internal/models"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: localdb_export_{epoch})
	NumWorkers int     // Concurrent writers (default: 5, max: 10)
	RateLimit  float64 // Playlists read per second (default: 20)
}

// PlaylistExportJob is a resolved playlist waiting to be written.
//
// Err is set when the playlist could not be loaded; the worker records it as a failure.
type PlaylistExportJob struct {
	PlaylistID int64
	Export     *models.PlaylistExport
	Err        error
}

// PlaylistExportResult is the outcome of exporting one playlist.
type PlaylistExportResult struct {
	PlaylistID   int64    `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Missing      []int64  `json:"missing,omitempty"`
	Error        error    `json:"-"`
	ErrorMessage string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"-"`
	Results           []PlaylistExportResult `json:"results"`
}

// BulkExport exports playlists concurrently with rate limiting and progress tracking.
//
// A single producer reads playlists from the store, throttled by the limiter, and hands them to a pool of workers that render and write files.
// An empty ids list exports every stored playlist. Per-playlist failures are recorded in the result and the manifest.
func (e *PlaylistEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []int64,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	format, err := formatter.NormalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	opts.Format = format

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("localdb_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20.0
	}

	if len(ids) == 0 {
		playlists, err := e.Playlists(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range playlists {
			ids = append(ids, p.ID())
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan PlaylistExportJob, len(ids))
	results := make(chan PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			export, err := e.Export(ctx, id)
			if err != nil {
				jobs <- PlaylistExportJob{PlaylistID: id, Err: fmt.Errorf("failed to load playlist: %w", err)}
				continue
			}

			e.sendProgress(prog, exportingPlaylistUpdate(i+1, len(ids), export.Playlist.Name()))
			jobs <- PlaylistExportJob{PlaylistID: id, Export: export}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			res.ErrorMessage = res.Error.Error()
		}
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.PlaylistName, res.Error))
		}
	}

	slices.SortFunc(result.Results, func(a, b PlaylistExportResult) int {
		return int(a.PlaylistID - b.PlaylistID)
	})

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("bulk export interrupted: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	e.logger.Info("bulk export finished", "ok", result.SuccessfulExports, "failed", result.FailedExports, "dir", opts.OutputDir)
	return result, nil
}

// exportWorker writes playlists from the jobs channel until it is closed.
//
// Only workers send on results, so results can be closed once they all return.
// After cancellation remaining jobs are drained and recorded as failures.
func (e *PlaylistEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan PlaylistExportJob,
	results chan<- PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if job.Err == nil {
			job.Err = ctx.Err()
		}
		if job.Err != nil {
			results <- PlaylistExportResult{
				PlaylistID:   job.PlaylistID,
				PlaylistName: jobName(job),
				Error:        job.Err,
			}
			continue
		}

		results <- e.exportSinglePlaylist(job, opts)
	}
}

func jobName(j PlaylistExportJob) string {
	if j.Export == nil {
		return fmt.Sprintf("Unknown (%d)", j.PlaylistID)
	}
	return j.Export.Playlist.Name()
}

// exportSinglePlaylist writes a single playlist in the requested format.
func (e *PlaylistEngine) exportSinglePlaylist(j PlaylistExportJob, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID:   j.PlaylistID,
		PlaylistName: j.Export.Playlist.Name(),
		Missing:      j.Export.Missing,
		Files:        []string{},
	}

	files, err := formatter.WriteExport(j.Export, opts.Format, opts.OutputDir)
	if err != nil {
		result.Error = err
		return result
	}

	result.Files = files
	result.Success = true
	return result
}
