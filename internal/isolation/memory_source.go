package isolation

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemorySource is an in-memory MembershipSource, safe for concurrent use.
// It backs local development and tests; production deployments use the
// database-backed source.
type MemorySource struct {
	mu          sync.RWMutex
	memberships map[uuid.UUID]*Membership
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		memberships: map[uuid.UUID]*Membership{},
	}
}

// Put registers or replaces the membership for a project.
func (s *MemorySource) Put(m *Membership) {
	s.mu.Lock()
	s.memberships[m.ProjectID] = m
	s.mu.Unlock()
}

// Remove drops the membership for a project.
func (s *MemorySource) Remove(projectID uuid.UUID) {
	s.mu.Lock()
	delete(s.memberships, projectID)
	s.mu.Unlock()
}

func (s *MemorySource) Membership(ctx context.Context, projectID uuid.UUID) (*Membership, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	m, ok := s.memberships[projectID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrMembershipNotFound
	}

	// Copy so callers cannot mutate the registered membership.
	copied := *m
	copied.Members = append([]Member(nil), m.Members...)

	return &copied, nil
}
