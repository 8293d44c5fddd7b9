// package formatter provides functions to export playlist data to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/localdb/internal/models"
	"github.com/desertthunder/localdb/internal/shared"
)

// Supported export formats
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// Formats lists the supported export formats.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// NormalizeFormat maps aliases such as "md" and "text" to a supported format.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatText, "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q (want one of %s)", shared.ErrInvalidArgument, format, strings.Join(Formats, ", "))
	}
}

// ExportToCSV converts a PlaylistExport to CSV format with columns: Position, ID, Title, Artist, Album, Duration
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "ID", "Title", "Artist", "Album", "Duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, song := range export.Songs {
		record := []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(song.ID(), 10),
			song.Title(),
			song.Artist(),
			song.Album(),
			strconv.Itoa(song.Duration()),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a PlaylistExport to Markdown format
func ExportToMarkdown(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.Playlist.Name()))
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n", len(export.Songs)))
	buf.WriteString(fmt.Sprintf("**Duration**: %s\n\n", shared.FormatDuration(export.Duration())))

	buf.WriteString("## Songs\n\n")
	for i, song := range export.Songs {
		duration := shared.FormatDuration(song.Duration())
		albumPart := ""
		if song.Album() != "" {
			albumPart = fmt.Sprintf(" (%s)", song.Album())
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s [%s]\n", i+1, song, albumPart, duration))
	}

	if len(export.Missing) > 0 {
		buf.WriteString("\n## Missing\n\n")
		for _, id := range export.Missing {
			buf.WriteString(fmt.Sprintf("- song %d\n", id))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text format
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", export.Playlist.Name()))
	buf.WriteString(fmt.Sprintf("Songs: %d\n", len(export.Songs)))
	if len(export.Missing) > 0 {
		buf.WriteString(fmt.Sprintf("Missing: %d\n", len(export.Missing)))
	}
	buf.WriteString("\n")

	for i, song := range export.Songs {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, song))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a PlaylistExport to indented JSON
func ExportToJSON(export *models.PlaylistExport) ([]byte, error) {
	return shared.MarshalJSON(export)
}

// Render converts a PlaylistExport to the given format.
func Render(export *models.PlaylistExport, format string) ([]byte, error) {
	format, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	default:
		return ExportToJSON(export)
	}
}

// Metadata summarizes a playlist export without its songs.
type Metadata struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	SongCount int     `json:"song_count"`
	Duration  int     `json:"duration"`
	Missing   []int64 `json:"missing,omitempty"`
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without songs)
func ToMetadataJSON(export *models.PlaylistExport) ([]byte, error) {
	return shared.MarshalJSON(Metadata{
		ID:        export.Playlist.ID(),
		Name:      export.Playlist.Name(),
		SongCount: len(export.Songs),
		Duration:  export.Duration(),
		Missing:   export.Missing,
	})
}

// DefaultBasename returns the file stem used for a playlist when no path is given.
func DefaultBasename(playlist *models.Playlist) string {
	return fmt.Sprintf("playlist_%d", playlist.ID())
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	SongsFile    string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Creates {base}_songs.csv and {base}_metadata.json.
func WriteCSVExport(export *models.PlaylistExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = DefaultBasename(export.Playlist)
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	songsFile := baseFilepath + "_songs.csv"
	if err := os.WriteFile(songsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{SongsFile: songsFile, MetadataFile: metadataFile}, nil
}

// WriteMarkdownExport exports a playlist to {outputDir}/README.md and returns the file path.
func WriteMarkdownExport(export *models.PlaylistExport, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = DefaultBasename(export.Playlist)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to playlist_{id}_songs.txt as the filename.
func WriteTextExport(export *models.PlaylistExport, path string) (string, error) {
	if path == "" {
		path = DefaultBasename(export.Playlist) + "_songs.txt"
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport exports a playlist to a JSON file.
func WriteJSONExport(export *models.PlaylistExport, path string) (string, error) {
	if path == "" {
		path = DefaultBasename(export.Playlist) + ".json"
	}

	data, err := ExportToJSON(export)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}

// WriteExport writes a playlist in the given format under dir and returns the files created.
func WriteExport(export *models.PlaylistExport, format, dir string) ([]string, error) {
	format, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}

	base := filepath.Join(dir, DefaultBasename(export.Playlist))

	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(export, base)
		if err != nil {
			return nil, fmt.Errorf("CSV export failed: %w", err)
		}
		return []string{res.SongsFile, res.MetadataFile}, nil
	case FormatMarkdown:
		file, err := WriteMarkdownExport(export, base)
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		return []string{file}, nil
	case FormatText:
		file, err := WriteTextExport(export, base+"_songs.txt")
		if err != nil {
			return nil, fmt.Errorf("text export failed: %w", err)
		}
		return []string{file}, nil
	default:
		file, err := WriteJSONExport(export, base+".json")
		if err != nil {
			return nil, fmt.Errorf("JSON export failed: %w", err)
		}
		return []string{file}, nil
	}
}

type manifest struct {
	Format      string    `json:"format"`
	GeneratedAt time.Time `json:"generated_at"`
	Result      any       `json:"result"`
}

// WriteBulkExportManifest writes a JSON summary of a bulk export to path.
func WriteBulkExportManifest(result any, format, path string) error {
	data, err := shared.MarshalJSON(manifest{Format: format, GeneratedAt: time.Now().UTC(), Result: result})
	if err != nil {
		return fmt.Errorf("failed to generate manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
