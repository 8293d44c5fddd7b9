package shared

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Dialect identifies the SQL flavour spoken by a driver.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// drivers maps supported database/sql driver names to their dialect.
var drivers = map[string]Dialect{
	"sqlite3":  SQLite,   // github.com/mattn/go-sqlite3
	"sqlite":   SQLite,   // modernc.org/sqlite
	"pgx":      Postgres, // github.com/jackc/pgx/v5/stdlib
	"postgres": Postgres, // github.com/lib/pq
}

// DialectFor returns the [Dialect] of a supported driver name.
func DialectFor(driver string) (Dialect, error) {
	d, ok := drivers[strings.ToLower(strings.TrimSpace(driver))]
	if !ok {
		return 0, fmt.Errorf("%w: unsupported database driver %q", ErrInvalidConfig, driver)
	}
	return d, nil
}

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	default:
		return "unknown"
	}
}

// Rebind rewrites '?' placeholders into the dialect's bind syntax.
//
// Queries are written with '?' throughout; Postgres needs ordinal $n placeholders.
// Placeholders inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d != Postgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	quoted := false
	for _, r := range query {
		switch {
		case r == '\'':
			quoted = !quoted
			b.WriteRune(r)
		case r == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsUniqueViolation reports whether err came from a primary key or unique constraint for any supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	// modernc.org/sqlite only exposes the message text
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
