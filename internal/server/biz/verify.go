package biz

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/gmcdash/gmcdash/internal/contexts"
	"github.com/gmcdash/gmcdash/internal/isolation"
	"github.com/gmcdash/gmcdash/internal/log"
	"github.com/gmcdash/gmcdash/internal/scoping"
)

// VerifyTableResult is the self-check outcome for one scoped table.
type VerifyTableResult struct {
	Table        string `json:"table"`
	RowCount     int64  `json:"row_count"`
	ForeignRows  int64  `json:"foreign_rows"`
	Contaminated bool   `json:"contaminated"`
}

// VerifyResult summarizes a data isolation self-check for one project.
type VerifyResult struct {
	ProjectID uuid.UUID           `json:"project_id"`
	Enforced  bool                `json:"enforced"`
	Tables    []VerifyTableResult `json:"tables"`
}

type VerifyServiceParams struct {
	fx.In

	Querier scoping.Querier
}

func NewVerifyService(params VerifyServiceParams) *VerifyService {
	return &VerifyService{q: params.Querier}
}

// VerifyService runs the data isolation self-check: for every scoped table it
// counts the rows a scoped query returns and double-checks that none of them
// carries a foreign project id. Any foreign row is a defect in the scoping
// layer, not a user error.
type VerifyService struct {
	q scoping.Querier
}

var verifiedTables = []string{
	"analysis_sessions",
	"gmc_reports",
	"parameter_changes",
}

func (s *VerifyService) Verify(ctx context.Context) (*VerifyResult, error) {
	pc, ok := contexts.GetProjectContext(ctx)
	if !ok {
		return nil, isolation.ErrQueryScoping
	}

	result := &VerifyResult{
		ProjectID: pc.ProjectID(),
		Enforced:  true,
	}

	for _, table := range verifiedTables {
		tableResult, err := s.verifyTable(ctx, pc, table)
		if err != nil {
			return nil, err
		}

		if tableResult.Contaminated {
			result.Enforced = false

			log.Error(ctx, "isolation self-check: foreign rows leaked through scoping",
				log.String("project_id", pc.ProjectID().String()),
				log.String("table", table),
				log.Int64("foreign_rows", tableResult.ForeignRows),
			)
		}

		result.Tables = append(result.Tables, *tableResult)
	}

	return result, nil
}

func (s *VerifyService) verifyTable(ctx context.Context, pc *isolation.ProjectContext, table string) (*VerifyTableResult, error) {
	scoped, err := scoping.Scope(scoping.Query{
		SQL: fmt.Sprintf(`SELECT project_id FROM %s`, table),
	}, pc)
	if err != nil {
		return nil, err
	}

	rows, err := s.q.Query(ctx, scoped.SQL, scoped.Args...)
	if err != nil {
		return nil, fmt.Errorf("self-check query %s: %w", table, err)
	}
	defer rows.Close()

	result := &VerifyTableResult{Table: table}

	for rows.Next() {
		var projectID uuid.UUID
		if err := rows.Scan(&projectID); err != nil {
			return nil, fmt.Errorf("self-check scan %s: %w", table, err)
		}

		result.RowCount++

		if projectID != pc.ProjectID() {
			result.ForeignRows++
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("self-check iterate %s: %w", table, err)
	}

	result.Contaminated = result.ForeignRows > 0

	return result, nil
}
