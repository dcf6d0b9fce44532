// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package database

import (
	"context"
	"database/sql"
	"strings"
)

// queryBuilder helps construct SQL queries with filters. The base query
// must already end in a WHERE clause; filters are AND-ed onto it.
type queryBuilder struct {
	baseQuery string
	args      []interface{}
	filters   []string
}

// newQueryBuilder creates a new query builder with a base query.
func newQueryBuilder(baseQuery string, args ...interface{}) *queryBuilder {
	qb := &queryBuilder{
		baseQuery: baseQuery,
		args:      make([]interface{}, 0, 8),
		filters:   make([]string, 0, 4),
	}
	qb.args = append(qb.args, args...)
	return qb
}

// addFilter adds a custom filter condition
func (qb *queryBuilder) addFilter(condition string, args ...interface{}) *queryBuilder {
	qb.filters = append(qb.filters, condition)
	qb.args = append(qb.args, args...)
	return qb
}

// addDateRange adds inclusive bounds on column for whichever of start and
// end is set.
func (qb *queryBuilder) addDateRange(column, start, end string) *queryBuilder {
	if start != "" {
		qb.addFilter(column+" >= ?", start)
	}
	if end != "" {
		qb.addFilter(column+" <= ?", end)
	}
	return qb
}

// build constructs the final query and returns it with args
func (qb *queryBuilder) build(suffix string, suffixArgs ...interface{}) (string, []interface{}) {
	query := qb.baseQuery
	if len(qb.filters) > 0 {
		query += " AND " + strings.Join(qb.filters, " AND ")
	}
	if suffix != "" {
		query += " " + suffix
	}
	return query, append(qb.args, suffixArgs...)
}

// scanFunc is a function that scans a single row into a result type
type scanFunc[T any] func(*sql.Rows) (T, error)

// queryAndScan executes a query and scans all rows using the provided scan
// function. The result is never nil.
func queryAndScan[T any](ctx context.Context, db *sql.DB, query string, args []interface{}, scan scanFunc[T]) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
