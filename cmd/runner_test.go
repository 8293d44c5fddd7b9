package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/localdb/internal/models"
	"github.com/desertthunder/localdb/internal/shared"
	th "github.com/desertthunder/localdb/internal/testing"
)

// clearEnv blanks LOCALDB_* overrides so the host environment can't leak into a test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		shared.EnvDatabaseDriver, shared.EnvDatabaseDSN, shared.EnvDatabaseURL, shared.EnvLogLevel, shared.EnvLogFormat,
	} {
		t.Setenv(key, "")
	}
}

// setupRunner returns a Runner over a SQLite file in a temp dir, with output captured
func setupRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	clearEnv(t)

	dir := t.TempDir()
	config := shared.DefaultConfig()
	config.Database.Driver = "sqlite3"
	config.Database.DSN = filepath.Join(dir, "test.db")
	config.Database.ConnectTimeout = 0

	output := &bytes.Buffer{}
	r := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: filepath.Join(dir, "config.toml"),
		EnvPath:    filepath.Join(dir, ".env"),
		Logger:     shared.NewLogger(&bytes.Buffer{}),
		Output:     output,
	})
	t.Cleanup(func() { r.Close() })
	return r, output
}

// run executes the CLI with args and returns what it printed
func run(t *testing.T, r *Runner, output *bytes.Buffer, args ...string) (string, error) {
	t.Helper()
	output.Reset()
	argv := append([]string{"localdb", "--config", r.configPath}, args...)
	err := newApp(r).Run(context.Background(), argv)
	return output.String(), err
}

func mustRun(t *testing.T, r *Runner, output *bytes.Buffer, args ...string) string {
	t.Helper()
	out, err := run(t, r, output, args...)
	if err != nil {
		t.Fatalf("%v failed: %v", args, err)
	}
	return out
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.store != nil || runner.engine != nil {
				t.Error("storage should open lazily")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.envPath != ".env" {
				t.Errorf("expected .env default, got %s", runner.envPath)
			}
		})
	})

	t.Run("Before", func(t *testing.T) {
		t.Run("loads config file", func(t *testing.T) {
			r, output := setupRunner(t)
			dsn := filepath.Join(t.TempDir(), "from-file.db")
			content := "[database]\ndriver = \"sqlite\"\ndsn = \"" + filepath.ToSlash(dsn) + "\"\n\n[logging]\nlevel = \"debug\"\n"
			if err := os.WriteFile(r.configPath, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}

			mustRun(t, r, output, "setup", "database")

			if r.config.Database.Driver != "sqlite" || r.config.Database.DSN != filepath.ToSlash(dsn) {
				t.Errorf("config file not applied: %+v", r.config.Database)
			}
			if r.logger.GetLevel() != log.DebugLevel {
				t.Errorf("expected debug level, got %v", r.logger.GetLevel())
			}
			th.AssertFileExists(t, dsn)
		})

		t.Run("env overrides", func(t *testing.T) {
			r, output := setupRunner(t)
			dsn := filepath.Join(t.TempDir(), "from-env.db")
			t.Setenv(shared.EnvDatabaseDSN, dsn)

			mustRun(t, r, output, "setup", "database")

			if r.config.Database.DSN != dsn {
				t.Errorf("expected env DSN, got %s", r.config.Database.DSN)
			}
		})

		t.Run("dotenv file", func(t *testing.T) {
			r, output := setupRunner(t)
			if err := os.WriteFile(r.envPath, []byte(shared.EnvLogFormat+"=json\n"), 0644); err != nil {
				t.Fatal(err)
			}
			os.Unsetenv(shared.EnvLogFormat)

			mustRun(t, r, output, "song", "list")

			if r.config.Logging.Format != "json" {
				t.Errorf("expected json format from .env, got %q", r.config.Logging.Format)
			}
		})

		t.Run("invalid log level", func(t *testing.T) {
			r, output := setupRunner(t)
			t.Setenv(shared.EnvLogLevel, "loud")

			if _, err := run(t, r, output, "song", "list"); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})

	t.Run("Setup", func(t *testing.T) {
		t.Run("config", func(t *testing.T) {
			r, output := setupRunner(t)

			out := mustRun(t, r, output, "setup", "config")
			if !strings.Contains(out, "Wrote "+r.configPath) {
				t.Errorf("unexpected output: %s", out)
			}
			th.AssertFileExists(t, r.configPath)

			if _, err := run(t, r, output, "setup", "config"); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput on second run, got %v", err)
			}
		})

		t.Run("database", func(t *testing.T) {
			r, output := setupRunner(t)

			out := mustRun(t, r, output, "setup", "database")
			if !strings.Contains(out, "Database ready (sqlite") {
				t.Errorf("unexpected output: %s", out)
			}
			if r.store != nil {
				t.Error("storage should be closed after the command")
			}
		})

		t.Run("unreachable database", func(t *testing.T) {
			r, output := setupRunner(t)
			r.config.Database.DSN = "file:/nonexistent/dir/x.db?mode=ro"

			if _, err := run(t, r, output, "setup", "database"); !errors.Is(err, shared.ErrConnection) {
				t.Errorf("expected ErrConnection, got %v", err)
			}
		})
	})
}

func TestCommands(t *testing.T) {
	r, output := setupRunner(t)

	t.Run("song add", func(t *testing.T) {
		out := mustRun(t, r, output, "song", "add", "--title", "Xtal", "--artist", "Aphex Twin", "--album", "SAW 85-92", "--duration", "291")
		if !strings.Contains(out, "Added song 1: Aphex Twin - Xtal") {
			t.Errorf("unexpected output: %s", out)
		}

		out = mustRun(t, r, output, "song", "add", "-t", "Roygbiv", "-a", "Boards of Canada", "-d", "151")
		if !strings.Contains(out, "Added song 2") {
			t.Errorf("unexpected output: %s", out)
		}
	})

	t.Run("song add duplicate id", func(t *testing.T) {
		_, err := run(t, r, output, "song", "add", "--id", "1", "--title", "Again")
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("song add invalid", func(t *testing.T) {
		_, err := run(t, r, output, "song", "add", "--title", "Neg", "--duration=-5")
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("song get", func(t *testing.T) {
		out := mustRun(t, r, output, "song", "get", "1")
		for _, want := range []string{"Aphex Twin - Xtal", "Album:    SAW 85-92", "Duration: 4:51"} {
			if !strings.Contains(out, want) {
				t.Errorf("song get missing %q:\n%s", want, out)
			}
		}

		if _, err := run(t, r, output, "song", "get", "99"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := run(t, r, output, "song", "get", "abc"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if _, err := run(t, r, output, "song", "get"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("song list", func(t *testing.T) {
		out := mustRun(t, r, output, "song", "list", "--json", "--artist", "Boards of Canada")
		if !strings.Contains(out, `"title": "Roygbiv"`) || strings.Contains(out, "Xtal") {
			t.Errorf("unexpected filtered list: %s", out)
		}

		out = mustRun(t, r, output, "song", "list")
		if !strings.Contains(out, "2 songs") {
			t.Errorf("unexpected list: %s", out)
		}
	})

	t.Run("song update", func(t *testing.T) {
		out := mustRun(t, r, output, "song", "update", "--album", "Music Has the Right to Children", "2")
		if !strings.Contains(out, "Updated song 2") {
			t.Errorf("unexpected output: %s", out)
		}

		out = mustRun(t, r, output, "song", "get", "--json", "2")
		if !strings.Contains(out, "Music Has the Right to Children") || !strings.Contains(out, `"title": "Roygbiv"`) {
			t.Errorf("update not applied: %s", out)
		}

		if _, err := run(t, r, output, "song", "update", "2"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("playlist create", func(t *testing.T) {
		out := mustRun(t, r, output, "playlist", "create", "--songs", "1,2,9", "Road Trip")
		if !strings.Contains(out, "Created playlist 1: Road Trip (3 songs)") {
			t.Errorf("unexpected output: %s", out)
		}

		mustRun(t, r, output, "playlist", "create", "--id", "5", "--songs", "1", "Other")

		if _, err := run(t, r, output, "playlist", "create", "--songs", "1,x", "Bad"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("playlist get", func(t *testing.T) {
		out := mustRun(t, r, output, "playlist", "get", "1")
		for _, want := range []string{"Road Trip (#1)", "1. Aphex Twin - Xtal", "2. Boards of Canada - Roygbiv", "Missing songs: [9]"} {
			if !strings.Contains(out, want) {
				t.Errorf("playlist get missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("playlist edits", func(t *testing.T) {
		mustRun(t, r, output, "playlist", "add-song", "--song", "2", "--position", "1", "1")
		out := mustRun(t, r, output, "playlist", "move-song", "--from", "4", "--to", "1", "1")
		if !strings.Contains(out, "moved position 4 to 1") {
			t.Errorf("unexpected output: %s", out)
		}

		out = mustRun(t, r, output, "playlist", "remove-song", "--position", "1", "1")
		if !strings.Contains(out, "removed song 9 from position 1") {
			t.Errorf("unexpected output: %s", out)
		}

		out = mustRun(t, r, output, "playlist", "rename", "1", " Long", "Drive ")
		if !strings.Contains(out, `to "Long Drive"`) {
			t.Errorf("rename should report the stored name: %s", out)
		}

		out = mustRun(t, r, output, "playlist", "get", "--json", "1")
		if !strings.Contains(out, `"name": "Long Drive"`) || !strings.Contains(out, "\"songs\": [\n      2,\n      1,\n      2\n    ]") {
			t.Errorf("edits not applied: %s", out)
		}

		if _, err := run(t, r, output, "playlist", "remove-song", "--position", "9", "1"); !errors.Is(err, models.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
		if _, err := run(t, r, output, "playlist", "move-song", "--from", "0", "--to", "1", "1"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("playlist list", func(t *testing.T) {
		out := mustRun(t, r, output, "playlist", "list", "--song", "2")
		if !strings.Contains(out, "Long Drive") || strings.Contains(out, "Other") {
			t.Errorf("unexpected list: %s", out)
		}

		out = mustRun(t, r, output, "playlist", "list")
		if !strings.Contains(out, "2 playlists") {
			t.Errorf("unexpected list: %s", out)
		}
	})

	t.Run("playlist diff", func(t *testing.T) {
		out := mustRun(t, r, output, "playlist", "diff", "--json", "1", "5")
		for _, want := range []string{`"matched": 1`, `"missing_in_dest": [`, `"extra_in_dest": null`} {
			if !strings.Contains(out, want) {
				t.Errorf("diff missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("export playlist", func(t *testing.T) {
		out := mustRun(t, r, output, "export", "playlist", "--format", "csv", "1")
		if !strings.HasPrefix(out, "Position,ID,Title,Artist,Album,Duration\n1,2,Roygbiv") {
			t.Errorf("unexpected CSV: %s", out)
		}

		path := filepath.Join(t.TempDir(), "long_drive.txt")
		mustRun(t, r, output, "export", "playlist", "-f", "txt", "-o", path, "1")
		if !strings.Contains(th.MustReadFile(t, path), "Playlist: Long Drive") {
			t.Errorf("text export missing header")
		}

		if _, err := run(t, r, output, "export", "playlist", "--format", "xml", "1"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("export all", func(t *testing.T) {
		dir := t.TempDir()
		out := mustRun(t, r, output, "export", "all", "--format", "md", "--output-dir", dir, "--rate", "100")
		if !strings.Contains(out, "Successful: 2") || !strings.Contains(out, "Failed:     0") {
			t.Errorf("unexpected summary: %s", out)
		}
		th.AssertFileExists(t, filepath.Join(dir, "playlist_1", "README.md"))
		th.AssertFileExists(t, filepath.Join(dir, "playlist_5", "README.md"))
		th.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
	})

	t.Run("export dump", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dump.json")
		out := mustRun(t, r, output, "export", "dump", "--output", path)
		if !strings.Contains(out, "Dumped 2 songs and 2 playlists") {
			t.Errorf("unexpected output: %s", out)
		}
		if !strings.Contains(th.MustReadFile(t, path), "Xtal") {
			t.Error("dump missing songs")
		}
	})

	t.Run("song remove leaves references", func(t *testing.T) {
		mustRun(t, r, output, "song", "remove", "1")

		out := mustRun(t, r, output, "playlist", "get", "1")
		if !strings.Contains(out, "Missing songs: [1]") {
			t.Errorf("expected removed song reported missing:\n%s", out)
		}

		if _, err := run(t, r, output, "song", "remove", "1"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("playlist delete", func(t *testing.T) {
		mustRun(t, r, output, "playlist", "delete", "5")

		if _, err := run(t, r, output, "playlist", "get", "5"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestIsUserError(t *testing.T) {
	tt := map[error]bool{
		shared.ErrNotFound:      true,
		shared.ErrInvalidFlag:   true,
		models.ErrValidation:    true,
		shared.ErrConnection:    false,
		shared.ErrInvalidConfig: false,
		errors.New("disk I/O"):  false,
	}
	for err, want := range tt {
		if got := isUserError(err); got != want {
			t.Errorf("isUserError(%v) = %v, want %v", err, got, want)
		}
	}
}

func TestRunnerOutput(t *testing.T) {
	t.Run("write failure", func(t *testing.T) {
		r := NewRunner(RunnerOpts{Output: &th.FWriter{}, Logger: shared.NewLogger(&bytes.Buffer{})})

		if err := r.writePlain("hello"); err == nil || !strings.Contains(err.Error(), "failed to write output") {
			t.Errorf("expected write error, got %v", err)
		}
		if err := r.writeJSON(map[string]int{"a": 1}, false); err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("newline failure", func(t *testing.T) {
		buf := &bytes.Buffer{}
		w := th.NewLimitedWriter(1, 0, buf)
		r := NewRunner(RunnerOpts{Output: &w, Logger: shared.NewLogger(&bytes.Buffer{})})

		err := r.writeJSON(map[string]int{"a": 1}, false)
		if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
			t.Errorf("expected newline error, got %v", err)
		}
		if buf.String() != `{"a":1}` {
			t.Errorf("expected JSON before failure, got %q", buf.String())
		}
	})
}

func TestArgs(t *testing.T) {
	tt := []struct {
		name    string
		args    []string
		wantID  int64
		wantErr error
	}{
		{name: "valid", args: []string{"42"}, wantID: 42},
		{name: "missing", args: nil, wantErr: shared.ErrMissingArgument},
		{name: "zero", args: []string{"0"}, wantErr: shared.ErrInvalidArgument},
		{name: "negative", args: []string{"-3"}, wantErr: shared.ErrInvalidArgument},
		{name: "text", args: []string{"12abc"}, wantErr: shared.ErrInvalidArgument},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var gotID int64
			var gotErr error
			cmd := &cli.Command{
				Name: "probe",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					gotID, gotErr = argID(cmd, 0, "id")
					return nil
				},
			}
			argv := append([]string{"probe", "--"}, tc.args...)
			if err := cmd.Run(context.Background(), argv); err != nil {
				t.Fatalf("run failed: %v", err)
			}

			if tc.wantErr != nil {
				if !errors.Is(gotErr, tc.wantErr) {
					t.Errorf("expected %v, got %v", tc.wantErr, gotErr)
				}
				return
			}
			if gotErr != nil || gotID != tc.wantID {
				t.Errorf("argID = %d, %v; want %d", gotID, gotErr, tc.wantID)
			}
		})
	}
}

func TestInterruptContext(t *testing.T) {
	ctx, stop := interruptContext()
	defer stop()

	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("failed to find own process: %v", err)
	}
	if err := proc.Signal(os.Interrupt); err != nil {
		t.Fatalf("failed to signal: %v", err)
	}

	select {
	case <-ctx.Done():
		if !errors.Is(ctx.Err(), context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", ctx.Err())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled by interrupt")
	}
}
