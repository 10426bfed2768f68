package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"

	"fallen-dragon-server/shared/interfaces"
)

// getOne scans a single row into a new T. Returns sql.ErrNoRows when the query is empty.
func getOne[T any](ctx context.Context, querier interfaces.DBTX, query string, args ...any) (*T, error) {
	var dst T
	if err := sqlscan.Get(ctx, querier, &dst, query, args...); err != nil {
		return nil, err
	}
	return &dst, nil
}

// selectAll scans every row into a slice. An empty result is an empty, non-nil slice.
func selectAll[T any](ctx context.Context, querier interfaces.DBTX, query string, args ...any) ([]*T, error) {
	dst := make([]*T, 0)
	if err := sqlscan.Select(ctx, querier, &dst, query, args...); err != nil {
		return nil, err
	}
	return dst, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
