package shared

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const pingInterval = 500 * time.Millisecond

// NewDatabase opens a connection to a SQLite database at the specified path.
// The path can be ":memory:" for an in-memory database.
func NewDatabase(path string) (*sql.DB, error) {
	return OpenDatabase(context.Background(), DatabaseConfig{Driver: "sqlite3", DSN: path})
}

// OpenDatabase opens the configured driver and pings it.
//
// When ConnectTimeout is positive the ping is retried until it succeeds or the timeout elapses.
// In-memory SQLite databases are pinned to a single connection since each connection would get its own database.
func OpenDatabase(ctx context.Context, cfg DatabaseConfig) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", ErrConnection, err)
	}

	if IsMemoryDSN(cfg.DSN) {
		db.SetMaxOpenConns(1)
	}

	if err := pingWithRetry(ctx, db, time.Duration(cfg.ConnectTimeout)*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %w", ErrConnection, err)
	}

	return db, nil
}

// ConfigureDatabase sets connection pool settings for the database.
//
// Zero values keep the driver defaults. In-memory databases keep their single connection.
func ConfigureDatabase(db *sql.DB, cfg DatabaseConfig) {
	if IsMemoryDSN(cfg.DSN) {
		return
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)
}

// IsMemoryDSN reports whether dsn names an in-memory SQLite database.
func IsMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

func pingWithRetry(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout <= 0 {
		return db.PingContext(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up after %s: %w", timeout, err)
		case <-ticker.C:
		}
	}
}
