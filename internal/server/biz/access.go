package biz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/gmcdash/gmcdash/internal/isolation"
	"github.com/gmcdash/gmcdash/internal/log"
)

type AccessServiceParams struct {
	fx.In

	Source isolation.MembershipSource
	Cache  *PermissionCache
	Config isolation.Config
}

func NewAccessService(params AccessServiceParams) *AccessService {
	return &AccessService{
		source: params.Source,
		cache:  params.Cache,
		config: params.Config.WithDefaults(),
	}
}

// AccessService is the stateless allow/deny predicate of the isolation layer.
// Every request passes through Validate before any project data is touched.
type AccessService struct {
	source isolation.MembershipSource
	cache  *PermissionCache
	config isolation.Config
}

// Validate decides whether callerID may act on projectID, optionally requiring
// a specific permission. It returns the parsed project id on allow, and one of
// the isolation errors otherwise:
//
//   - isolation.ErrMissingProjectID / ErrMissingCallerID / ErrInvalidProjectID
//     for malformed input, before anything else runs;
//   - isolation.ErrAccessDenied when membership or permission checks fail,
//     including unknown projects so existence is not revealed;
//   - isolation.ErrValidatorUnavailable when the membership source cannot
//     answer. Never folded into a deny.
func (s *AccessService) Validate(ctx context.Context, projectID, callerID, requiredPermission string) (uuid.UUID, error) {
	if projectID == "" {
		return uuid.Nil, isolation.ErrMissingProjectID
	}

	if callerID == "" {
		return uuid.Nil, isolation.ErrMissingCallerID
	}

	pid, err := uuid.Parse(projectID)
	if err != nil {
		log.Warn(ctx, "access validation: malformed project id",
			log.String("project_id", projectID),
		)

		return uuid.Nil, fmt.Errorf("%w: %q", isolation.ErrInvalidProjectID, projectID)
	}

	if allowed, ok := s.cache.Get(ctx, pid.String(), callerID, requiredPermission); ok {
		s.logDecision(ctx, pid, callerID, allowed, true)

		if !allowed {
			return uuid.Nil, isolation.ErrAccessDenied
		}

		return pid, nil
	}

	membership, err := s.lookupMembership(ctx, pid)
	if err != nil {
		if errors.Is(err, isolation.ErrMembershipNotFound) {
			// Unknown projects deny exactly like forbidden ones.
			s.cache.Put(ctx, pid.String(), callerID, requiredPermission, false)
			s.logDecision(ctx, pid, callerID, false, false)

			return uuid.Nil, isolation.ErrAccessDenied
		}

		log.Error(ctx, "access validation: membership source unavailable",
			log.String("project_id", pid.String()),
			log.String("caller_id", callerID),
			log.Cause(err),
		)

		return uuid.Nil, errors.Join(isolation.ErrValidatorUnavailable, err)
	}

	allowed := s.decide(membership, callerID, requiredPermission)

	s.cache.Put(ctx, pid.String(), callerID, requiredPermission, allowed)
	s.logDecision(ctx, pid, callerID, allowed, false)

	if !allowed {
		return uuid.Nil, isolation.ErrAccessDenied
	}

	return pid, nil
}

// lookupMembership queries the membership source with a bounded timeout and a
// bounded number of attempts. Timeouts surface as errors, never as decisions.
func (s *AccessService) lookupMembership(ctx context.Context, pid uuid.UUID) (*isolation.Membership, error) {
	var (
		membership *isolation.Membership
		err        error
	)

	for attempt := 0; attempt < s.config.MaxAttempts; attempt++ {
		lookupCtx, cancel := context.WithTimeout(ctx, s.config.MembershipTimeout)
		membership, err = s.source.Membership(lookupCtx, pid)

		cancel()

		if err == nil || errors.Is(err, isolation.ErrMembershipNotFound) {
			return membership, err
		}

		if ctx.Err() != nil {
			break
		}
	}

	return nil, err
}

// decide applies the configured authorization rule: membership is required,
// inactive projects deny everything, and the admin role bypasses granular
// permission checks.
func (s *AccessService) decide(membership *isolation.Membership, callerID, requiredPermission string) bool {
	member, ok := membership.Member(callerID)
	if !ok {
		return false
	}

	if !membership.IsActive {
		return false
	}

	if requiredPermission == "" || member.Role == s.config.AdminRole {
		return true
	}

	return member.Permissions[requiredPermission]
}

// logDecision records the audit line for a validation. The permission payload
// is deliberately not logged.
func (s *AccessService) logDecision(ctx context.Context, pid uuid.UUID, callerID string, allowed, cached bool) {
	log.Info(ctx, "access validation",
		log.String("project_id", pid.String()),
		log.String("caller_id", callerID),
		log.String("decision", lo.Ternary(allowed, "allow", "deny")),
		log.Bool("cached", cached),
	)
}
