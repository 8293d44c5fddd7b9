package shared

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		seconds int
		want    string
	}{
		{seconds: 0, want: "0:00"},
		{seconds: 59, want: "0:59"},
		{seconds: 291, want: "4:51"},
		{seconds: 3600, want: "1:00:00"},
		{seconds: 3725, want: "1:02:05"},
		{seconds: -3, want: "0:00"},
	}

	for _, tt := range tc {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.want {
				t.Errorf("FormatDuration(%d) = %v, want %v", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestParseIDs(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := ParseIDs("10, 11,12,,")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(got, []int64{10, 11, 12}) {
			t.Errorf("unexpected ids: %v", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		got, err := ParseIDs("")
		if err != nil || got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %v (%v)", got, err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := ParseIDs("1,two"); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestConfigureLogger(t *testing.T) {
	t.Run("json at debug", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&buf)
		if err := ConfigureLogger(l, LoggingConfig{Level: "debug", Format: "json"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		l.Debug("saved", "changes", 3)
		out := buf.String()
		if !strings.Contains(out, `"msg":"saved"`) {
			t.Errorf("expected JSON output, got %s", out)
		}
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&buf)
		if err := ConfigureLogger(l, LoggingConfig{Level: "error"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l.GetLevel() != log.ErrorLevel {
			t.Errorf("expected error level, got %v", l.GetLevel())
		}

		l.Info("hidden")
		if buf.Len() != 0 {
			t.Errorf("info should be filtered, got %s", buf.String())
		}
	})

	t.Run("invalid", func(t *testing.T) {
		l := NewLogger(&bytes.Buffer{})
		if err := ConfigureLogger(l, LoggingConfig{Level: "loud"}); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for level, got %v", err)
		}
		if err := ConfigureLogger(l, LoggingConfig{Format: "xml"}); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for format, got %v", err)
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("ids should be unique")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string, got %s", a)
	}
}

func TestNewFileLogger(t *testing.T) {
	t.Run("appends", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "browse.log")

		l, closer, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		l.Info("opened playlist", "id", 7)
		if err := closer.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log: %v", err)
		}
		if !strings.Contains(string(data), "opened playlist") {
			t.Errorf("log file missing entry: %s", data)
		}
	})

	t.Run("missing dir", func(t *testing.T) {
		if _, _, err := NewFileLogger(filepath.Join(t.TempDir(), "nope", "browse.log")); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
