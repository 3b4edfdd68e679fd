package biz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/gmcdash/gmcdash/internal/isolation"
	"github.com/gmcdash/gmcdash/internal/log"
)

type ContextServiceParams struct {
	fx.In

	Source isolation.MembershipSource
	Config isolation.Config
}

func NewContextService(params ContextServiceParams) *ContextService {
	return &ContextService{
		source: params.Source,
		config: params.Config.WithDefaults(),
	}
}

// ContextService assembles the immutable per-request ProjectContext after the
// validator has allowed the (project, caller) pair. It re-derives role,
// institution, roster and the permission snapshot from the membership source
// instead of trusting cached booleans for anything beyond allow/deny.
type ContextService struct {
	source isolation.MembershipSource
	config isolation.Config
}

// Resolve builds a fresh ProjectContext. A membership source that allowed the
// pair but now returns missing or inconsistent data is a data integrity
// incident, reported as isolation.ErrContextResolution - not a deny.
func (s *ContextService) Resolve(ctx context.Context, projectID uuid.UUID, callerID string) (*isolation.ProjectContext, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.config.MembershipTimeout)
	defer cancel()

	membership, err := s.source.Membership(lookupCtx, projectID)
	if err != nil {
		if errors.Is(err, isolation.ErrMembershipNotFound) {
			s.logIncident(ctx, projectID, callerID, "membership vanished after allow")
			return nil, isolation.ErrContextResolution
		}

		return nil, errors.Join(isolation.ErrValidatorUnavailable, err)
	}

	member, ok := membership.Member(callerID)
	if !ok {
		s.logIncident(ctx, projectID, callerID, "allowed caller missing from roster")
		return nil, isolation.ErrContextResolution
	}

	if !member.Role.Valid() {
		s.logIncident(ctx, projectID, callerID, "unknown role in roster")
		return nil, isolation.ErrContextResolution
	}

	if membership.InstitutionID == "" {
		s.logIncident(ctx, projectID, callerID, "membership without institution")
		return nil, isolation.ErrContextResolution
	}

	return isolation.NewProjectContext(
		projectID,
		callerID,
		member.Role,
		membership.InstitutionID,
		membership.MemberIDs(),
		member.Permissions,
		membership.IsActive,
		member.Role == s.config.AdminRole,
	), nil
}

func (s *ContextService) logIncident(ctx context.Context, projectID uuid.UUID, callerID, reason string) {
	log.Error(ctx, "context resolution: data integrity incident",
		log.String("project_id", projectID.String()),
		log.String("caller_id", callerID),
		log.String("reason", reason),
	)
}
