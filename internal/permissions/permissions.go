package permissions

import "slices"

// Slug names one project-level permission. The isolation layer enforces
// whatever the membership source grants; this catalog exists so route guards
// and seed data agree on names, and guard construction rejects slugs outside
// it.
type Slug string

const (
	// CanRead read project data (sessions, reports, parameter changes).
	CanRead Slug = "can_read"
	// CanWrite create and modify project data.
	CanWrite Slug = "can_write"
	// CanManage manage project settings and membership.
	CanManage Slug = "can_manage"
	// CanExport export project data out of the platform.
	CanExport Slug = "can_export"
	// CanInvite invite new members into the project team.
	CanInvite Slug = "can_invite"
)

var all = []Slug{CanRead, CanWrite, CanManage, CanExport, CanInvite}

// IsValid checks if a permission slug is known.
func IsValid(permission string) bool {
	return slices.Contains(all, Slug(permission))
}
