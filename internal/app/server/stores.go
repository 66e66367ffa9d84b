package server

import (
	"context"
	"fmt"

	"hrflow/internal/domain/audit"
	"hrflow/internal/domain/employee"
	"hrflow/internal/domain/notifications"
	"hrflow/internal/domain/policy"
	"hrflow/internal/domain/requests"
	"hrflow/internal/platform/config"
	"hrflow/internal/platform/db"
	"hrflow/internal/platform/seed"
	"hrflow/internal/platform/sqlite"
)

// Stores is one backend's set of store implementations.
type Stores struct {
	Employees     employee.StoreAPI
	Policies      policy.StoreAPI
	Requests      requests.StoreAPI
	Audit         audit.StoreAPI
	Notifications notifications.StoreAPI
	Seed          seed.Writer
	Ping          func(ctx context.Context) error
	Close         func()
}

// OpenStores connects to the configured driver and applies migrations when enabled.
func OpenStores(ctx context.Context, cfg config.Config) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		return &Stores{
			Employees:     employee.NewStore(pool),
			Policies:      policy.NewStore(pool),
			Requests:      requests.NewStore(pool),
			Audit:         audit.NewStore(pool),
			Notifications: notifications.NewStore(pool),
			Seed:          seed.NewPGWriter(pool),
			Ping:          pool.Ping,
			Close:         pool.Close,
		}, nil
	case config.DriverSQLite:
		conn, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite open: %w", err)
		}
		if cfg.RunMigrations {
			if err := sqlite.Migrate(ctx, conn); err != nil {
				conn.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		return &Stores{
			Employees:     &sqlite.Employees{DB: conn},
			Policies:      &sqlite.Policies{DB: conn},
			Requests:      &sqlite.Requests{DB: conn},
			Audit:         &sqlite.Audit{DB: conn},
			Notifications: &sqlite.Notifications{DB: conn},
			Seed:          &sqlite.SeedWriter{DB: conn},
			Ping:          conn.PingContext,
			Close:         func() { _ = conn.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
