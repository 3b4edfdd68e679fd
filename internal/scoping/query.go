// Package scoping confines SQL queries to a single project. The project id is
// only ever attached as a bound parameter; it is never interpolated into the
// statement text.
package scoping

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gmcdash/gmcdash/internal/isolation"
)

// Query is a SQL statement with its bound arguments, using Postgres ($n)
// placeholders.
type Query struct {
	SQL  string
	Args []any
}

// ScopeOption tunes how the project predicate is attached.
type ScopeOption func(*scopeOptions)

type scopeOptions struct {
	tableAlias string
}

// WithTableAlias qualifies the project predicate with a table alias,
// producing e.g. "s.project_id = $1".
func WithTableAlias(alias string) ScopeOption {
	return func(o *scopeOptions) {
		o.tableAlias = alias
	}
}

var (
	scopedPredicateRe = regexp.MustCompile(`(?i)(?:[a-z_][a-z0-9_]*\.)?project_id\s*=\s*\$(\d+)`)
	identifierRe      = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	whereRe           = regexp.MustCompile(`(?i)\sWHERE(\s|$)`)

	tailKeywords = []string{" GROUP BY ", " HAVING ", " ORDER BY ", " LIMIT ", " OFFSET ", " FOR UPDATE", " FOR SHARE"}
)

// Scope returns a query equivalent to q but provably restricted to the
// context's project id. The transformation is idempotent: a query that is
// already scoped to the same project comes back unchanged, and a query scoped
// to a different project fails closed.
func Scope(q Query, pc *isolation.ProjectContext, opts ...ScopeOption) (Query, error) {
	if pc == nil {
		return Query{}, fmt.Errorf("%w: no project context", isolation.ErrQueryScoping)
	}

	return scope(q, pc, opts...)
}

func scope(q Query, pc *isolation.ProjectContext, opts ...ScopeOption) (Query, error) {
	options := &scopeOptions{}
	for _, opt := range opts {
		opt(options)
	}

	sql := strings.TrimSpace(q.SQL)
	if sql == "" {
		return Query{}, fmt.Errorf("%w: empty statement", isolation.ErrQueryScoping)
	}

	// One statement per query; anything else cannot be scoped safely.
	if strings.Contains(strings.TrimSuffix(sql, ";"), ";") {
		return Query{}, fmt.Errorf("%w: multiple statements", isolation.ErrQueryScoping)
	}

	sql = strings.TrimSuffix(sql, ";")

	if options.tableAlias != "" && !identifierRe.MatchString(options.tableAlias) {
		return Query{}, fmt.Errorf("%w: invalid table alias %q", isolation.ErrQueryScoping, options.tableAlias)
	}

	// All textual checks run against a masked copy of the statement where
	// subqueries and string literals are blanked out. A predicate or a WHERE
	// inside a subquery must never satisfy checks for the outer query.
	masked, err := maskNested(sql)
	if err != nil {
		return Query{}, err
	}

	// Idempotence: if a project predicate is already bound at the top level,
	// verify it binds this context's project and leave the query alone.
	if match := scopedPredicateRe.FindStringSubmatch(masked); match != nil {
		index := 0
		if _, err := fmt.Sscanf(match[1], "%d", &index); err != nil || index < 1 || index > len(q.Args) {
			return Query{}, fmt.Errorf("%w: dangling project predicate", isolation.ErrQueryScoping)
		}

		bound, ok := q.Args[index-1].(string)
		if !ok {
			if id, isUUID := q.Args[index-1].(fmt.Stringer); isUUID {
				bound, ok = id.String(), true
			}
		}

		if !ok || bound != pc.ProjectID().String() {
			return Query{}, fmt.Errorf("%w: query already scoped to another project", isolation.ErrQueryScoping)
		}

		return Query{SQL: sql, Args: q.Args}, nil
	}

	upper := strings.ToUpper(masked)

	// Cut before trailing GROUP BY / ORDER BY / LIMIT clauses of the outer
	// query, so the predicate lands before them. The masked copy keeps the
	// same keywords inside subqueries from being mistaken for the tail.
	cut := len(sql)

	for _, keyword := range tailKeywords {
		if idx := strings.Index(upper, keyword); idx >= 0 && idx < cut {
			cut = idx
		}
	}

	head := strings.TrimSpace(sql[:cut])
	tail := strings.TrimSpace(sql[cut:])

	predicate := "project_id = $" + fmt.Sprint(len(q.Args)+1)
	if options.tableAlias != "" {
		predicate = options.tableAlias + "." + predicate
	}

	var scoped string

	switch loc := whereRe.FindStringIndex(upper[:cut]); {
	case loc == nil:
		scoped = head + " WHERE " + predicate
	case strings.TrimSpace(sql[loc[1]:cut]) == "":
		scoped = head + " " + predicate
	default:
		scoped = head + " AND " + predicate
	}

	if tail != "" {
		scoped += " " + tail
	}

	args := append(append([]any(nil), q.Args...), pc.ProjectID().String())

	return Query{SQL: scoped, Args: args}, nil
}

// maskNested blanks every character inside parentheses or single-quoted
// literals, keeping positions intact, so the scoping checks only ever see the
// top level of the statement. Unbalanced nesting fails closed.
func maskNested(sql string) (string, error) {
	masked := []byte(sql)

	depth := 0
	literal := false

	for i := 0; i < len(sql); i++ {
		switch ch := sql[i]; {
		case literal:
			if ch == '\'' {
				literal = false
			}

			masked[i] = ' '
		case ch == '\'':
			literal = true
			masked[i] = ' '
		case ch == '(':
			depth++
			masked[i] = ' '
		case ch == ')':
			depth--
			if depth < 0 {
				return "", fmt.Errorf("%w: unbalanced parentheses", isolation.ErrQueryScoping)
			}

			masked[i] = ' '
		case depth > 0:
			masked[i] = ' '
		}
	}

	if depth != 0 {
		return "", fmt.Errorf("%w: unbalanced parentheses", isolation.ErrQueryScoping)
	}

	if literal {
		return "", fmt.Errorf("%w: unterminated string literal", isolation.ErrQueryScoping)
	}

	return string(masked), nil
}
