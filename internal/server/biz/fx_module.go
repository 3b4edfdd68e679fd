package biz

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"github.com/gmcdash/gmcdash/internal/isolation"
	"github.com/gmcdash/gmcdash/internal/scoping"
)

var Module = fx.Module("biz",
	fx.Provide(NewSystemService),
	fx.Provide(NewAuthService),
	fx.Provide(NewPermissionCache),
	fx.Provide(NewAccessService),
	fx.Provide(NewContextService),
	fx.Provide(NewSessionService),
	fx.Provide(NewReportService),
	fx.Provide(NewVerifyService),
	fx.Provide(func(pool *pgxpool.Pool) isolation.MembershipSource {
		return NewPgMembershipSource(pool)
	}),
	fx.Provide(func(pool *pgxpool.Pool) scoping.Querier {
		return pool
	}),
)
