package biz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gmcdash/gmcdash/internal/isolation"
)

// PgMembershipSource reads project rosters from the user-management database.
// It is the production implementation of isolation.MembershipSource.
type PgMembershipSource struct {
	pool *pgxpool.Pool
}

func NewPgMembershipSource(pool *pgxpool.Pool) *PgMembershipSource {
	return &PgMembershipSource{pool: pool}
}

func (s *PgMembershipSource) Membership(ctx context.Context, projectID uuid.UUID) (*isolation.Membership, error) {
	membership := &isolation.Membership{ProjectID: projectID}

	err := s.pool.QueryRow(ctx,
		`SELECT institution_id, is_active FROM projects WHERE project_id = $1`,
		projectID,
	).Scan(&membership.InstitutionID, &membership.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, isolation.ErrMembershipNotFound
		}

		return nil, fmt.Errorf("query project: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT user_id, role, permissions FROM project_members WHERE project_id = $1 ORDER BY user_id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("query project members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			member      isolation.Member
			permissions []byte
		)

		if err := rows.Scan(&member.CallerID, &member.Role, &permissions); err != nil {
			return nil, fmt.Errorf("scan project member: %w", err)
		}

		if len(permissions) > 0 {
			if err := json.Unmarshal(permissions, &member.Permissions); err != nil {
				return nil, fmt.Errorf("decode member permissions: %w", err)
			}
		}

		membership.Members = append(membership.Members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project members: %w", err)
	}

	return membership, nil
}
