package scoping

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmcdash/gmcdash/internal/isolation"
)

func newTestContext(t *testing.T) *isolation.ProjectContext {
	t.Helper()

	return isolation.NewProjectContext(
		uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		"user-1",
		isolation.RoleStudent,
		"inst-1",
		[]string{"user-1"},
		map[string]bool{"can_read": true},
		true,
		false,
	)
}

func TestScopeAddsWhereClause(t *testing.T) {
	pc := newTestContext(t)

	scoped, err := Scope(Query{SQL: "SELECT id, name FROM analysis_sessions"}, pc)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, name FROM analysis_sessions WHERE project_id = $1", scoped.SQL)
	assert.Equal(t, []any{pc.ProjectID().String()}, scoped.Args)
}

func TestScopeAppendsToExistingWhere(t *testing.T) {
	pc := newTestContext(t)

	scoped, err := Scope(Query{
		SQL:  "SELECT id FROM gmc_reports WHERE status = $1",
		Args: []any{"final"},
	}, pc)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM gmc_reports WHERE status = $1 AND project_id = $2", scoped.SQL)
	assert.Equal(t, []any{"final", pc.ProjectID().String()}, scoped.Args)
}

func TestScopePredicateLandsBeforeTrailingClauses(t *testing.T) {
	pc := newTestContext(t)

	scoped, err := Scope(Query{
		SQL:  "SELECT id FROM analysis_sessions WHERE status = $1 ORDER BY created_at DESC LIMIT $2",
		Args: []any{"running", 20},
	}, pc)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id FROM analysis_sessions WHERE status = $1 AND project_id = $3 ORDER BY created_at DESC LIMIT $2",
		scoped.SQL,
	)
	assert.Equal(t, []any{"running", 20, pc.ProjectID().String()}, scoped.Args)
}

func TestScopeWithoutWhereButWithOrderBy(t *testing.T) {
	pc := newTestContext(t)

	scoped, err := Scope(Query{SQL: "SELECT id FROM gmc_reports ORDER BY quarter"}, pc)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM gmc_reports WHERE project_id = $1 ORDER BY quarter", scoped.SQL)
}

func TestScopeIsIdempotent(t *testing.T) {
	pc := newTestContext(t)

	once, err := Scope(Query{SQL: "SELECT id FROM analysis_sessions"}, pc)
	require.NoError(t, err)

	twice, err := Scope(once, pc)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestScopeRejectsForeignProjectPredicate(t *testing.T) {
	pc := newTestContext(t)

	_, err := Scope(Query{
		SQL:  "SELECT id FROM analysis_sessions WHERE project_id = $1",
		Args: []any{uuid.NewString()},
	}, pc)

	assert.ErrorIs(t, err, isolation.ErrQueryScoping)
}

func TestScopeRejectsDanglingPredicate(t *testing.T) {
	pc := newTestContext(t)

	_, err := Scope(Query{SQL: "SELECT id FROM analysis_sessions WHERE project_id = $3"}, pc)

	assert.ErrorIs(t, err, isolation.ErrQueryScoping)
}

func TestScopeIgnoresPredicateInsideSubquery(t *testing.T) {
	// A project predicate buried in a subquery scopes the inner table only;
	// the outer query still needs its own predicate.
	pc := newTestContext(t)

	scoped, err := Scope(Query{
		SQL:  "SELECT id FROM analysis_sessions WHERE id NOT IN (SELECT session_id FROM gmc_reports WHERE project_id = $1)",
		Args: []any{pc.ProjectID().String()},
	}, pc)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id FROM analysis_sessions WHERE id NOT IN (SELECT session_id FROM gmc_reports WHERE project_id = $1) AND project_id = $2",
		scoped.SQL,
	)
	assert.Equal(t, []any{pc.ProjectID().String(), pc.ProjectID().String()}, scoped.Args)
}

func TestScopePredicateStaysOutsideSubquery(t *testing.T) {
	// An ORDER BY inside a subquery must not pull the predicate into it.
	pc := newTestContext(t)

	scoped, err := Scope(Query{
		SQL:  "SELECT id FROM analysis_sessions WHERE id IN (SELECT session_id FROM gmc_reports WHERE quarter = $1 ORDER BY quarter)",
		Args: []any{4},
	}, pc)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id FROM analysis_sessions WHERE id IN (SELECT session_id FROM gmc_reports WHERE quarter = $1 ORDER BY quarter) AND project_id = $2",
		scoped.SQL,
	)
}

func TestScopeSubqueryWithTopLevelTail(t *testing.T) {
	pc := newTestContext(t)

	scoped, err := Scope(Query{
		SQL:  "SELECT id FROM analysis_sessions WHERE id IN (SELECT session_id FROM gmc_reports LIMIT $1) ORDER BY created_at",
		Args: []any{5},
	}, pc)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id FROM analysis_sessions WHERE id IN (SELECT session_id FROM gmc_reports LIMIT $1) AND project_id = $2 ORDER BY created_at",
		scoped.SQL,
	)
}

func TestScopeRejectsUnbalancedParentheses(t *testing.T) {
	pc := newTestContext(t)

	_, err := Scope(Query{SQL: "SELECT id FROM analysis_sessions WHERE id IN (SELECT session_id FROM gmc_reports"}, pc)
	assert.ErrorIs(t, err, isolation.ErrQueryScoping)

	_, err = Scope(Query{SQL: "SELECT id FROM analysis_sessions WHERE name = 'unterminated"}, pc)
	assert.ErrorIs(t, err, isolation.ErrQueryScoping)
}

func TestScopeRejectsMultipleStatements(t *testing.T) {
	pc := newTestContext(t)

	_, err := Scope(Query{SQL: "SELECT id FROM gmc_reports; DROP TABLE gmc_reports"}, pc)

	assert.ErrorIs(t, err, isolation.ErrQueryScoping)
}

func TestScopeRejectsNilContext(t *testing.T) {
	_, err := Scope(Query{SQL: "SELECT id FROM gmc_reports"}, nil)

	assert.ErrorIs(t, err, isolation.ErrQueryScoping)
}

func TestScopeWithTableAlias(t *testing.T) {
	pc := newTestContext(t)

	scoped, err := Scope(Query{
		SQL: "SELECT s.id, r.quarter FROM analysis_sessions s JOIN gmc_reports r ON r.session_id = s.id",
	}, pc, WithTableAlias("s"))
	require.NoError(t, err)

	assert.Contains(t, scoped.SQL, "WHERE s.project_id = $1")
}

func TestScopeRejectsInvalidAlias(t *testing.T) {
	pc := newTestContext(t)

	_, err := Scope(Query{SQL: "SELECT id FROM gmc_reports"}, pc, WithTableAlias("s; --"))

	assert.ErrorIs(t, err, isolation.ErrQueryScoping)
}

func TestScopeTrailingSemicolonIsTolerated(t *testing.T) {
	pc := newTestContext(t)

	scoped, err := Scope(Query{SQL: "SELECT id FROM gmc_reports;"}, pc)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM gmc_reports WHERE project_id = $1", scoped.SQL)
}

func TestScopeBindsHostileProjectIDSafely(t *testing.T) {
	// A context can only carry a parsed uuid, but even the string form must
	// travel as an argument, never inside the statement text.
	pc := newTestContext(t)

	scoped, err := Scope(Query{SQL: "SELECT id FROM parameter_changes"}, pc)
	require.NoError(t, err)

	assert.NotContains(t, scoped.SQL, pc.ProjectID().String())
	assert.Equal(t, pc.ProjectID().String(), scoped.Args[len(scoped.Args)-1])
}
