package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Every project-owned table carries a project_id column and an index on it.
// The scoping layer relies on the column being present in each of these.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		project_id     UUID PRIMARY KEY,
		name           TEXT NOT NULL,
		institution_id TEXT NOT NULL,
		is_active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS project_members (
		project_id  UUID NOT NULL REFERENCES projects (project_id) ON DELETE CASCADE,
		user_id     TEXT NOT NULL,
		role        TEXT NOT NULL,
		permissions JSONB NOT NULL DEFAULT '{}',
		PRIMARY KEY (project_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_sessions (
		id         UUID PRIMARY KEY,
		project_id UUID NOT NULL REFERENCES projects (project_id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		status     TEXT NOT NULL,
		created_by TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_sessions_project ON analysis_sessions (project_id)`,
	`CREATE TABLE IF NOT EXISTS gmc_reports (
		id         UUID PRIMARY KEY,
		project_id UUID NOT NULL REFERENCES projects (project_id) ON DELETE CASCADE,
		session_id UUID NOT NULL REFERENCES analysis_sessions (id) ON DELETE CASCADE,
		quarter    INTEGER NOT NULL,
		company    TEXT NOT NULL,
		payload    BYTEA,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_gmc_reports_project ON gmc_reports (project_id)`,
	`CREATE TABLE IF NOT EXISTS parameter_changes (
		id         UUID PRIMARY KEY,
		project_id UUID NOT NULL REFERENCES projects (project_id) ON DELETE CASCADE,
		session_id UUID NOT NULL REFERENCES analysis_sessions (id) ON DELETE CASCADE,
		parameter  TEXT NOT NULL,
		old_value  TEXT NOT NULL,
		new_value  TEXT NOT NULL,
		changed_by TEXT NOT NULL,
		changed_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_parameter_changes_project ON parameter_changes (project_id)`,
}

// ApplySchema creates the tables if they do not exist.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	return nil
}
