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

// GmcReport is one quarterly management report imported into a project.
type GmcReport struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id"`
	SessionID uuid.UUID `json:"session_id" db:"session_id"`
	Quarter   int       `json:"quarter" db:"quarter"`
	Company   string    `json:"company" db:"company"`
	Payload   []byte    `json:"payload" db:"payload"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ParameterChange records one decision parameter edit between quarters.
type ParameterChange struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id"`
	SessionID uuid.UUID `json:"session_id" db:"session_id"`
	Parameter string    `json:"parameter" db:"parameter"`
	OldValue  string    `json:"old_value" db:"old_value"`
	NewValue  string    `json:"new_value" db:"new_value"`
	ChangedBy string    `json:"changed_by" db:"changed_by"`
	ChangedAt time.Time `json:"changed_at" db:"changed_at"`
}

var ErrReportNotFound = errors.New("gmc report not found")

type ReportServiceParams struct {
	fx.In

	Querier scoping.Querier
}

func NewReportService(params ReportServiceParams) *ReportService {
	return &ReportService{q: params.Querier}
}

// ReportService reads report and parameter-change data through the scoping
// layer.
type ReportService struct {
	q scoping.Querier
}

func (s *ReportService) List(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]GmcReport, error) {
	reports, err := scoping.List[GmcReport](ctx, s.q, scoping.Query{
		SQL:  `SELECT id, project_id, session_id, quarter, company, payload, created_at FROM gmc_reports WHERE session_id = $1 ORDER BY quarter LIMIT $2 OFFSET $3`,
		Args: []any{sessionID, limit, offset},
	})
	if err != nil {
		log.Error(ctx, "list gmc reports failed",
			log.String("session_id", sessionID.String()),
			log.Cause(err),
		)

		return nil, err
	}

	return reports, nil
}

func (s *ReportService) Get(ctx context.Context, id uuid.UUID) (*GmcReport, error) {
	report, err := scoping.One[GmcReport](ctx, s.q, scoping.Query{
		SQL:  `SELECT id, project_id, session_id, quarter, company, payload, created_at FROM gmc_reports WHERE id = $1`,
		Args: []any{id},
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}

		log.Error(ctx, "get gmc report failed",
			log.String("report_id", id.String()),
			log.Cause(err),
		)

		return nil, err
	}

	return report, nil
}

func (s *ReportService) Import(ctx context.Context, sessionID uuid.UUID, quarter int, company string, payload []byte) (*GmcReport, error) {
	pc, ok := contexts.GetProjectContext(ctx)
	if !ok {
		return nil, isolation.ErrQueryScoping
	}

	report := &GmcReport{
		ID:        uuid.New(),
		ProjectID: pc.ProjectID(),
		SessionID: sessionID,
		Quarter:   quarter,
		Company:   company,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	err := scoping.Insert(ctx, s.q, "gmc_reports", map[string]any{
		"id":         report.ID,
		"session_id": report.SessionID,
		"quarter":    report.Quarter,
		"company":    report.Company,
		"payload":    report.Payload,
		"created_at": report.CreatedAt,
	})
	if err != nil {
		log.Error(ctx, "import gmc report failed", log.Cause(err))
		return nil, err
	}

	return report, nil
}

func (s *ReportService) ListParameterChanges(ctx context.Context, sessionID uuid.UUID) ([]ParameterChange, error) {
	changes, err := scoping.List[ParameterChange](ctx, s.q, scoping.Query{
		SQL:  `SELECT id, project_id, session_id, parameter, old_value, new_value, changed_by, changed_at FROM parameter_changes WHERE session_id = $1 ORDER BY changed_at DESC`,
		Args: []any{sessionID},
	})
	if err != nil {
		log.Error(ctx, "list parameter changes failed",
			log.String("session_id", sessionID.String()),
			log.Cause(err),
		)

		return nil, err
	}

	return changes, nil
}

func (s *ReportService) RecordParameterChange(ctx context.Context, sessionID uuid.UUID, parameter, oldValue, newValue string) (*ParameterChange, error) {
	pc, ok := contexts.GetProjectContext(ctx)
	if !ok {
		return nil, isolation.ErrQueryScoping
	}

	change := &ParameterChange{
		ID:        uuid.New(),
		ProjectID: pc.ProjectID(),
		SessionID: sessionID,
		Parameter: parameter,
		OldValue:  oldValue,
		NewValue:  newValue,
		ChangedBy: pc.CallerID(),
		ChangedAt: time.Now().UTC(),
	}

	err := scoping.Insert(ctx, s.q, "parameter_changes", map[string]any{
		"id":         change.ID,
		"session_id": change.SessionID,
		"parameter":  change.Parameter,
		"old_value":  change.OldValue,
		"new_value":  change.NewValue,
		"changed_by": change.ChangedBy,
		"changed_at": change.ChangedAt,
	})
	if err != nil {
		log.Error(ctx, "record parameter change failed", log.Cause(err))
		return nil, err
	}

	return change, nil
}
