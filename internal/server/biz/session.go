package biz

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/fx"

	"github.com/gmcdash/gmcdash/internal/contexts"
	"github.com/gmcdash/gmcdash/internal/isolation"
	"github.com/gmcdash/gmcdash/internal/log"
	"github.com/gmcdash/gmcdash/internal/scoping"
)

// AnalysisSession is one simulation analysis run inside a project.
type AnalysisSession struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id"`
	Name      string    `json:"name" db:"name"`
	Status    string    `json:"status" db:"status"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

var ErrSessionNotFound = errors.New("analysis session not found")

type SessionServiceParams struct {
	fx.In

	Querier scoping.Querier
}

func NewSessionService(params SessionServiceParams) *SessionService {
	return &SessionService{q: params.Querier}
}

// SessionService reads and writes analysis sessions. All statements go through
// the scoping layer, so a session outside the request's project is unreachable
// even with a guessed id.
type SessionService struct {
	q scoping.Querier
}

func (s *SessionService) List(ctx context.Context, limit, offset int) ([]AnalysisSession, error) {
	sessions, err := scoping.List[AnalysisSession](ctx, s.q, scoping.Query{
		SQL:  `SELECT id, project_id, name, status, created_by, created_at FROM analysis_sessions ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		Args: []any{limit, offset},
	})
	if err != nil {
		log.Error(ctx, "list analysis sessions failed", log.Cause(err))
		return nil, err
	}

	return sessions, nil
}

func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*AnalysisSession, error) {
	session, err := scoping.One[AnalysisSession](ctx, s.q, scoping.Query{
		SQL:  `SELECT id, project_id, name, status, created_by, created_at FROM analysis_sessions WHERE id = $1`,
		Args: []any{id},
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}

		log.Error(ctx, "get analysis session failed",
			log.String("session_id", id.String()),
			log.Cause(err),
		)

		return nil, err
	}

	return session, nil
}

func (s *SessionService) Create(ctx context.Context, name string) (*AnalysisSession, error) {
	pc, ok := contexts.GetProjectContext(ctx)
	if !ok {
		return nil, isolation.ErrQueryScoping
	}

	session := &AnalysisSession{
		ID:        uuid.New(),
		ProjectID: pc.ProjectID(),
		Name:      name,
		Status:    "pending",
		CreatedBy: pc.CallerID(),
		CreatedAt: time.Now().UTC(),
	}

	err := scoping.Insert(ctx, s.q, "analysis_sessions", map[string]any{
		"id":         session.ID,
		"name":       session.Name,
		"status":     session.Status,
		"created_by": session.CreatedBy,
		"created_at": session.CreatedAt,
	})
	if err != nil {
		log.Error(ctx, "create analysis session failed", log.Cause(err))
		return nil, err
	}

	return session, nil
}

func (s *SessionService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	affected, err := scoping.Exec(ctx, s.q, scoping.Query{
		SQL:  `UPDATE analysis_sessions SET status = $1 WHERE id = $2`,
		Args: []any{status, id},
	})
	if err != nil {
		log.Error(ctx, "update analysis session failed",
			log.String("session_id", id.String()),
			log.Cause(err),
		)

		return err
	}

	if affected == 0 {
		return ErrSessionNotFound
	}

	return nil
}
