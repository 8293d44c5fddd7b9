// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"testing"

	"github.com/desertthunder/localdb/internal/models"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// FixtureExport builds the "Road Trip" playlist export used across package tests.
//
// Songs 10 and 12 resolve; 11 is missing from the library.
func FixtureExport(t *testing.T) *models.PlaylistExport {
	t.Helper()

	playlist, err := models.NewPlaylist(1, "Road Trip", 10, 11, 12)
	if err != nil {
		t.Fatalf("failed to build fixture playlist: %v", err)
	}

	xtal, err := models.NewSong(10, models.SongInfo{Title: "Xtal", Artist: "Aphex Twin", Album: "SAW 85-92", Duration: 291})
	if err != nil {
		t.Fatalf("failed to build fixture song: %v", err)
	}
	roygbiv, err := models.NewSong(12, models.SongInfo{Title: "Roygbiv", Artist: "Boards of Canada", Duration: 151})
	if err != nil {
		t.Fatalf("failed to build fixture song: %v", err)
	}

	return &models.PlaylistExport{
		Playlist: playlist,
		Songs:    []*models.Song{xtal, roygbiv},
		Missing:  []int64{11},
	}
}

// MockLibrary is an in-memory stand-in for the storage-backed playlist library
type MockLibrary struct {
	Exports map[int64]*models.PlaylistExport
	Err     error
}

// NewMockLibrary indexes exports by playlist id
func NewMockLibrary(exports ...*models.PlaylistExport) *MockLibrary {
	m := &MockLibrary{Exports: map[int64]*models.PlaylistExport{}}
	for _, e := range exports {
		m.Exports[e.Playlist.ID()] = e
	}
	return m
}

func (m *MockLibrary) Playlists(ctx context.Context) ([]*models.Playlist, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	playlists := []*models.Playlist{}
	for _, id := range slices.Sorted(maps.Keys(m.Exports)) {
		playlists = append(playlists, m.Exports[id].Playlist)
	}
	return playlists, nil
}

func (m *MockLibrary) Export(ctx context.Context, id int64) (*models.PlaylistExport, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	e, ok := m.Exports[id]
	if !ok {
		return nil, fmt.Errorf("playlist %d not found", id)
	}
	return e, nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
