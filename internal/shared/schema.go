package shared

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed sql/sqlite/*.sql sql/postgres/*.sql
var schemaFiles embed.FS

// Tables created by [EnsureSchema], in dependency order.
var Tables = []string{"songs", "playlists", "playlist_songs"}

// schemaStatements returns the statements for a dialect, ordered by file name.
func schemaStatements(d Dialect) ([]string, error) {
	dir := path.Join("sql", d.String())
	entries, err := fs.ReadDir(schemaFiles, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var statements []string
	for _, name := range names {
		content, err := schemaFiles.ReadFile(path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file %s: %w", name, err)
		}

		for _, stmt := range strings.Split(string(content), ";") {
			stmt = strings.TrimSpace(removeComments(stmt))
			if stmt != "" {
				statements = append(statements, stmt)
			}
		}
	}

	return statements, nil
}

// EnsureSchema creates any missing tables and indexes for the dialect.
//
// Every statement is idempotent, so running it against an existing database is a no-op.
func EnsureSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	statements, err := schemaStatements(d)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w\nStatement: %s", err, stmt)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	return nil
}

// removeComments removes SQL comments from a statement.
func removeComments(sql string) string {
	lines := strings.Split(sql, "\n")
	var result []string
	for _, line := range lines {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
