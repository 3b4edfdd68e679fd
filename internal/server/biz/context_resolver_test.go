package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmcdash/gmcdash/internal/isolation"
)

func newTestContextService(source isolation.MembershipSource) *ContextService {
	return &ContextService{
		source: source,
		config: isolation.Config{}.WithDefaults(),
	}
}

func TestResolveBuildsContext(t *testing.T) {
	source := isolation.NewMemorySource()
	projectID := uuid.New()

	source.Put(&isolation.Membership{
		ProjectID:     projectID,
		InstitutionID: "inst-1",
		IsActive:      true,
		Members: []isolation.Member{
			{CallerID: "alice", Role: isolation.RoleInstructor, Permissions: map[string]bool{"can_read": true}},
			{CallerID: "bob", Role: isolation.RoleStudent},
		},
	})

	pc, err := newTestContextService(source).Resolve(context.Background(), projectID, "alice")
	require.NoError(t, err)

	assert.Equal(t, projectID, pc.ProjectID())
	assert.Equal(t, "alice", pc.CallerID())
	assert.Equal(t, isolation.RoleInstructor, pc.Role())
	assert.Equal(t, "inst-1", pc.InstitutionID())
	assert.ElementsMatch(t, []string{"alice", "bob"}, pc.TeamMembers())
	assert.True(t, pc.IsActive())
	assert.True(t, pc.HasPermission("can_read"))
	assert.False(t, pc.HasPermission("can_manage"))
}

func TestResolveAdminRoleIsConfigurable(t *testing.T) {
	projectID := uuid.New()

	source := isolation.NewMemorySource()
	source.Put(&isolation.Membership{
		ProjectID:     projectID,
		InstitutionID: "inst-1",
		IsActive:      true,
		Members: []isolation.Member{
			{CallerID: "alice", Role: isolation.RoleInstructor},
			{CallerID: "bob", Role: isolation.RoleAdmin},
		},
	})

	// With instructor configured as the admin role, the bypass follows the
	// configuration, not the role name.
	svc := &ContextService{
		source: source,
		config: isolation.Config{AdminRole: isolation.RoleInstructor}.WithDefaults(),
	}

	alice, err := svc.Resolve(context.Background(), projectID, "alice")
	require.NoError(t, err)
	assert.True(t, alice.IsAdmin())
	assert.True(t, alice.HasPermission("can_manage"))

	bob, err := svc.Resolve(context.Background(), projectID, "bob")
	require.NoError(t, err)
	assert.False(t, bob.IsAdmin())
	assert.False(t, bob.HasPermission("can_manage"))
}

func TestResolveMembershipVanished(t *testing.T) {
	_, err := newTestContextService(isolation.NewMemorySource()).
		Resolve(context.Background(), uuid.New(), "alice")

	assert.ErrorIs(t, err, isolation.ErrContextResolution)
}

func TestResolveIntegrityFailures(t *testing.T) {
	projectID := uuid.New()

	tests := []struct {
		name       string
		membership *isolation.Membership
	}{
		{
			name: "caller missing from roster",
			membership: &isolation.Membership{
				ProjectID:     projectID,
				InstitutionID: "inst-1",
				IsActive:      true,
				Members:       []isolation.Member{{CallerID: "bob", Role: isolation.RoleStudent}},
			},
		},
		{
			name: "unknown role",
			membership: &isolation.Membership{
				ProjectID:     projectID,
				InstitutionID: "inst-1",
				IsActive:      true,
				Members:       []isolation.Member{{CallerID: "alice", Role: "superuser"}},
			},
		},
		{
			name: "missing institution",
			membership: &isolation.Membership{
				ProjectID: projectID,
				IsActive:  true,
				Members:   []isolation.Member{{CallerID: "alice", Role: isolation.RoleStudent}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := isolation.NewMemorySource()
			source.Put(tt.membership)

			_, err := newTestContextService(source).Resolve(context.Background(), projectID, "alice")
			assert.ErrorIs(t, err, isolation.ErrContextResolution)
		})
	}
}

func TestResolveSourceUnavailable(t *testing.T) {
	source := &failingSource{err: errors.New("connection refused")}

	_, err := newTestContextService(source).Resolve(context.Background(), uuid.New(), "alice")

	assert.ErrorIs(t, err, isolation.ErrValidatorUnavailable)
	assert.NotErrorIs(t, err, isolation.ErrContextResolution)
}
