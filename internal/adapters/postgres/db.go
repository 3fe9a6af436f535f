package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/citrusfield/internal/pkg/metrics"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps pgxpool.Pool and provides a shared connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = 20

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Ping checks the database is reachable and refreshes the pool gauges.
func (db *DB) Ping(ctx context.Context) error {
	metrics.UpdateDBPoolMetrics(db.Pool.Stat())
	return db.Pool.Ping(ctx)
}

// Close releases pool resources.
func (db *DB) Close() {
	db.Pool.Close()
}

// MigrateUp applies every up migration in name order. Migrations are idempotent.
func (db *DB) MigrateUp(ctx context.Context) ([]string, error) {
	return db.apply(ctx, func(name string) bool { return !strings.HasSuffix(name, ".down.sql") }, false)
}

// MigrateDown applies every down migration in reverse name order.
func (db *DB) MigrateDown(ctx context.Context) ([]string, error) {
	return db.apply(ctx, func(name string) bool { return strings.HasSuffix(name, ".down.sql") }, true)
}

func (db *DB) apply(ctx context.Context, include func(string) bool, reverse bool) ([]string, error) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	var selected []string
	for _, n := range names {
		if include(n) {
			selected = append(selected, n)
		}
	}
	sort.Strings(selected)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(selected)))
	}

	for _, n := range selected {
		data, err := migrations.ReadFile(n)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", n, err)
		}
		if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
			return nil, fmt.Errorf("exec %s: %w", n, err)
		}
	}
	return selected, nil
}
