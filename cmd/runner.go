package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/localdb/internal/shared"
	"github.com/desertthunder/localdb/internal/storage"
	"github.com/desertthunder/localdb/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The storage context is opened on first use so setup commands can run against a missing database.
type Runner struct {
	config     *shared.Config
	configPath string
	envPath    string
	logger     *log.Logger
	output     io.Writer
	store      *storage.Context
	engine     *tasks.PlaylistEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	EnvPath    string
	Logger     *log.Logger
	Output     io.Writer
	Store      *storage.Context
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.EnvPath == "" {
		opts.EnvPath = ".env"
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		envPath:    opts.EnvPath,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	if opts.Store != nil {
		r.setStore(opts.Store)
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, songCommand, playlistCommand, exportCommand, browseCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config file named by --config, then .env and LOCALDB_* overrides, and configures the logger.
//
// A missing config file falls back to defaults.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		}
	}

	if err := shared.LoadEnvFile(r.envPath); err != nil {
		return ctx, err
	}
	r.config.ApplyEnv()

	if err := shared.ConfigureLogger(r.logger, r.config.Logging); err != nil {
		return ctx, err
	}
	return ctx, nil
}

// After closes the storage context if a command opened one.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// Close releases the storage context.
func (r *Runner) Close() error {
	if r.store == nil {
		return nil
	}
	err := r.store.Close()
	r.store = nil
	r.engine = nil
	return err
}

// SetLogger swaps the logger, e.g. to keep logs off the terminal while the TUI runs.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// storage returns the open storage context, connecting on first use.
func (r *Runner) storage(ctx context.Context) (*storage.Context, error) {
	if r.store != nil {
		return r.store, nil
	}

	r.logger.Debug("opening storage", "driver", r.config.Database.Driver)
	store, err := storage.Open(ctx, r.config.Database, r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	r.setStore(store)
	return store, nil
}

func (r *Runner) setStore(store *storage.Context) {
	r.store = store
	r.engine = tasks.NewPlaylistEngine(store, r.logger)
}

// playlistEngine returns the engine over the open storage context.
func (r *Runner) playlistEngine(ctx context.Context) (*tasks.PlaylistEngine, error) {
	if _, err := r.storage(ctx); err != nil {
		return nil, err
	}
	return r.engine, nil
}

// save commits staged changes, discarding them on failure so the next command starts clean.
func (r *Runner) save(ctx context.Context, store *storage.Context) error {
	n, err := store.SaveChanges(ctx)
	if err != nil {
		store.Discard()
		return fmt.Errorf("failed to save changes: %w", err)
	}
	r.logger.Debug("changes saved", "count", n)
	return nil
}

// argID parses the positional argument at i as an entity id.
func argID(cmd *cli.Command, i int, name string) (int64, error) {
	s := cmd.Args().Get(i)
	if s == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", shared.ErrInvalidArgument, name, s)
	}
	return id, nil
}

// flagPosition reads a 1-based position flag and returns it 0-based.
func flagPosition(cmd *cli.Command, name string) (int, error) {
	pos := cmd.Int(name)
	if pos < 1 {
		return 0, fmt.Errorf("%w: --%s must be at least 1, got %d", shared.ErrInvalidFlag, name, pos)
	}
	return pos - 1, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
