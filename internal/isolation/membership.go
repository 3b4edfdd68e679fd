package isolation

import (
	"context"

	"github.com/google/uuid"
)

// Member is one entry of a project roster as reported by the membership source.
type Member struct {
	CallerID    string
	Role        Role
	Permissions map[string]bool
}

// Membership is everything the membership source knows about one project.
type Membership struct {
	ProjectID     uuid.UUID
	InstitutionID string
	IsActive      bool
	Members       []Member
}

// Member returns the roster entry for the caller, if any.
func (m *Membership) Member(callerID string) (Member, bool) {
	for _, member := range m.Members {
		if member.CallerID == callerID {
			return member, true
		}
	}

	return Member{}, false
}

// MemberIDs returns the caller ids of all roster entries.
func (m *Membership) MemberIDs() []string {
	ids := make([]string, len(m.Members))
	for i, member := range m.Members {
		ids[i] = member.CallerID
	}

	return ids
}

// MembershipSource is the external collaborator that owns project rosters,
// roles and permissions. Implementations must return ErrMembershipNotFound for
// unknown projects and wrap transport failures in their own errors so the
// validator can distinguish deny from unavailable.
type MembershipSource interface {
	Membership(ctx context.Context, projectID uuid.UUID) (*Membership, error)
}
