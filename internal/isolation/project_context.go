package isolation

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Role is the closed set of roles a caller can hold inside a project.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// Valid reports whether the role is one of the known role tags.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	default:
		return false
	}
}

// ProjectContext is the per-request record of who is acting, under which project,
// with which resolved permissions. It is constructed once per request by the
// resolver and never mutated afterwards; re-authorization re-resolves a fresh one.
type ProjectContext struct {
	projectID     uuid.UUID
	callerID      string
	role          Role
	institutionID string
	teamMembers   []string
	permissions   map[string]bool
	isActive      bool
	admin         bool
}

// NewProjectContext builds an immutable project context. The permission map and
// roster are copied so later mutation of the inputs cannot leak into the context.
// admin is decided by the resolver against the configured admin role, so the
// bypass rule lives in exactly one place.
func NewProjectContext(
	projectID uuid.UUID,
	callerID string,
	role Role,
	institutionID string,
	teamMembers []string,
	permissions map[string]bool,
	isActive bool,
	admin bool,
) *ProjectContext {
	return &ProjectContext{
		projectID:     projectID,
		callerID:      callerID,
		role:          role,
		institutionID: institutionID,
		teamMembers:   append([]string(nil), teamMembers...),
		permissions:   lo.Assign(map[string]bool{}, permissions),
		isActive:      isActive,
		admin:         admin,
	}
}

func (pc *ProjectContext) ProjectID() uuid.UUID { return pc.projectID }

func (pc *ProjectContext) CallerID() string { return pc.callerID }

func (pc *ProjectContext) Role() Role { return pc.role }

func (pc *ProjectContext) InstitutionID() string { return pc.institutionID }

func (pc *ProjectContext) IsActive() bool { return pc.isActive }

// IsAdmin reports whether the caller holds the configured admin role.
func (pc *ProjectContext) IsAdmin() bool { return pc.admin }

// TeamMembers returns a copy of the project roster.
func (pc *ProjectContext) TeamMembers() []string {
	return append([]string(nil), pc.teamMembers...)
}

// Permissions returns a copy of the permission snapshot taken at resolution time.
func (pc *ProjectContext) Permissions() map[string]bool {
	return lo.Assign(map[string]bool{}, pc.permissions)
}

// HasPermission reports whether the snapshot grants the named permission.
// The admin role bypasses granular permission checks. Inactive projects
// grant nothing.
func (pc *ProjectContext) HasPermission(permission string) bool {
	if !pc.isActive {
		return false
	}

	if pc.admin {
		return true
	}

	return pc.permissions[permission]
}

// IsMember reports whether the caller id is part of the project roster.
func (pc *ProjectContext) IsMember(callerID string) bool {
	return lo.Contains(pc.teamMembers, callerID)
}
