package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gmcdash/gmcdash/internal/log"
)

type Config struct {
	// DSN is a pgx connection string or URL.
	DSN string `conf:"dsn" yaml:"dsn" json:"dsn"`

	MaxConns int32 `conf:"max_conns" yaml:"max_conns" json:"max_conns"`

	// Migrate applies the schema on startup. Disabled in deployments where
	// migrations run out of band.
	Migrate bool `conf:"migrate" yaml:"migrate" json:"migrate"`
}

// NewPool opens the connection pool and optionally applies the schema.
// Startup cannot proceed without a database, so failures panic.
func NewPool(cfg Config) *pgxpool.Pool {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		panic(err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		panic(err)
	}

	if cfg.Migrate {
		if err := ApplySchema(context.Background(), pool); err != nil {
			panic(err)
		}

		log.Info(context.Background(), "database schema applied")
	}

	return pool
}
