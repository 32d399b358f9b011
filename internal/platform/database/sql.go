package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so stores run unchanged inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres SQLSTATE codes the stores translate into sentinel errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func IsUniqueViolation(err error) bool {
	return hasSQLState(err, uniqueViolation)
}

func IsForeignKeyViolation(err error) bool {
	return hasSQLState(err, foreignKeyViolation)
}

// ConstraintName returns the violated constraint, or "" for other errors.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// JSONList scans a json array column (for example a json_agg subquery) into a slice.
type JSONList[T any] struct {
	Dst *[]T
}

func (l JSONList[T]) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l.Dst = []T{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan json list: unsupported type %T", src)
	}
	out := []T{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan json list: %w", err)
	}
	*l.Dst = out
	return nil
}

// IDs wraps dst for scanning a json array of ids.
func IDs(dst *[]int64) sql.Scanner { return JSONList[int64]{Dst: dst} }

// Strings wraps dst for scanning a json array of strings.
func Strings(dst *[]string) sql.Scanner { return JSONList[string]{Dst: dst} }

// NullableID scans a nullable bigint into an optional id.
type NullableID struct {
	Dst **int64
}

func (n NullableID) Scan(src any) error {
	var v sql.NullInt64
	if err := v.Scan(src); err != nil {
		return err
	}
	if !v.Valid {
		*n.Dst = nil
		return nil
	}
	id := v.Int64
	*n.Dst = &id
	return nil
}

// QueryIDs runs a single-column id query.
func QueryIDs(ctx context.Context, db DBTX, query string, args ...any) ([]int64, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountExisting returns how many of ids exist in table. Table names are
// compile-time constants supplied by the stores, never user input.
func CountExisting(ctx context.Context, db DBTX, table string, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int
	err := db.QueryRowContext(ctx, `SELECT count(*) FROM `+table+` WHERE id = ANY($1)`, ids).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
