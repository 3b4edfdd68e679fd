package scoping

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gmcdash/gmcdash/internal/contexts"
	"github.com/gmcdash/gmcdash/internal/isolation"
)

// Querier is the subset of pgx a scoped store needs. *pgxpool.Pool and
// pgx.Tx both satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// List runs a scoped SELECT and collects rows into T by column name. The
// project predicate is taken from the request context; a request without a
// resolved project context fails closed.
func List[T any](ctx context.Context, q Querier, query Query, opts ...ScopeOption) ([]T, error) {
	scoped, err := scopeFromContext(ctx, query, opts...)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, scoped.SQL, scoped.Args...)
	if err != nil {
		return nil, fmt.Errorf("scoped query: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}

	return items, nil
}

// One runs a scoped SELECT expected to return a single row.
func One[T any](ctx context.Context, q Querier, query Query, opts ...ScopeOption) (*T, error) {
	scoped, err := scopeFromContext(ctx, query, opts...)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, scoped.SQL, scoped.Args...)
	if err != nil {
		return nil, fmt.Errorf("scoped query: %w", err)
	}

	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// Exec runs a scoped UPDATE or DELETE and reports affected rows.
func Exec(ctx context.Context, q Querier, query Query, opts ...ScopeOption) (int64, error) {
	scoped, err := scopeFromContext(ctx, query, opts...)
	if err != nil {
		return 0, err
	}

	tag, err := q.Exec(ctx, scoped.SQL, scoped.Args...)
	if err != nil {
		return 0, fmt.Errorf("scoped exec: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Insert writes a row into table, forcing the project_id column from the
// request context. A caller-supplied project_id value is rejected rather than
// silently overwritten.
func Insert(ctx context.Context, q Querier, table string, values map[string]any) error {
	pc, ok := contexts.GetProjectContext(ctx)
	if !ok {
		return fmt.Errorf("%w: no project context", isolation.ErrQueryScoping)
	}

	if !identifierRe.MatchString(table) {
		return fmt.Errorf("%w: invalid table name %q", isolation.ErrQueryScoping, table)
	}

	if _, ok := values["project_id"]; ok {
		return fmt.Errorf("%w: project_id must come from the request context", isolation.ErrQueryScoping)
	}

	columns := make([]string, 0, len(values)+1)
	for column := range values {
		if !identifierRe.MatchString(column) {
			return fmt.Errorf("%w: invalid column name %q", isolation.ErrQueryScoping, column)
		}

		columns = append(columns, column)
	}

	sort.Strings(columns)
	columns = append(columns, "project_id")

	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))

	for i, column := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if column == "project_id" {
			args[i] = pc.ProjectID().String()
		} else {
			args[i] = values[column]
		}
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("scoped insert: %w", err)
	}

	return nil
}

func scopeFromContext(ctx context.Context, query Query, opts ...ScopeOption) (Query, error) {
	pc, ok := contexts.GetProjectContext(ctx)
	if !ok {
		return Query{}, fmt.Errorf("%w: no project context", isolation.ErrQueryScoping)
	}

	return scope(query, pc, opts...)
}
