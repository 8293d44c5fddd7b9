// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type,
// handling CRUD operations, playlist song ordering, and id assignment.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/localdb/internal/shared"
)

// Querier is the subset of [sql.DB] and [sql.Tx] the repositories need.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// idTables lists the tables [NextID] may be asked about.
var idTables = map[string]bool{"songs": true, "playlists": true}

// inTx runs fn in a new transaction when q can begin one, otherwise in the caller's transaction.
func inTx(ctx context.Context, q Querier, fn func(Querier) error) error {
	b, ok := q.(txBeginner)
	if !ok {
		return fn(q)
	}

	tx, err := b.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// NextID returns the next free identifier for the given table.
//
// Run it inside the transaction that inserts the row so concurrent writers serialize on the store.
func NextID(ctx context.Context, q Querier, table string) (int64, error) {
	if !idTables[table] {
		return 0, fmt.Errorf("%w: no id sequence for table %q", shared.ErrInvalidArgument, table)
	}

	var id int64
	query := fmt.Sprintf("SELECT COALESCE(MAX(id), 0) + 1 FROM %s", table)
	if err := q.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get next id: %w", err)
	}
	return id, nil
}

// expectAffected turns a zero row count into [shared.ErrNotFound].
func expectAffected(result sql.Result, entity string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %d", shared.ErrNotFound, entity, id)
	}
	return nil
}

// classifyInsert wraps unique violations with [shared.ErrDuplicate].
func classifyInsert(err error, entity string, id int64) error {
	if shared.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s %d: %w", shared.ErrDuplicate, entity, id, err)
	}
	return fmt.Errorf("failed to insert %s: %w", entity, err)
}

func criteriaString(criteria map[string]any, key string) (string, bool) {
	v, ok := criteria[key].(string)
	return v, ok && v != ""
}

func criteriaID(criteria map[string]any, key string) (int64, bool) {
	switch v := criteria[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	default:
		return 0, false
	}
}
