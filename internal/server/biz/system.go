package biz

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"github.com/gmcdash/gmcdash/internal/build"
)

type SystemServiceParams struct {
	fx.In

	Pool *pgxpool.Pool `optional:"true"`
}

func NewSystemService(params SystemServiceParams) *SystemService {
	return &SystemService{pool: params.Pool}
}

// SystemService answers liveness, readiness and version queries.
type SystemService struct {
	pool *pgxpool.Pool
}

// Ready reports whether the database behind the isolation layer is reachable.
func (s *SystemService) Ready(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}

	return s.pool.Ping(ctx)
}

func (s *SystemService) BuildInfo() build.Info {
	return build.GetBuildInfo()
}
