package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
)

// PostgresBackend keeps the document as a single jsonb row. The store is an
// opaque blob by design, so no relational schema exists beyond this table.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend establishes a pgx pool and ensures the document table
// exists.
func NewPostgresBackend(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*PostgresBackend, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	_, err = pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS ticket_document (
            id INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
            data JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`)
	if err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres")
	return &PostgresBackend{pool: pool}, nil
}

// Load reads the single document row.
func (p *PostgresBackend) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT data FROM ticket_document WHERE id = 1`).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return data, err
}

// Save upserts the single document row.
func (p *PostgresBackend) Save(ctx context.Context, data []byte) error {
	_, err := p.pool.Exec(ctx, `
        INSERT INTO ticket_document (id, data, updated_at) VALUES (1, $1, now())
        ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`, data)
	return err
}

// Close releases pool resources.
func (p *PostgresBackend) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}
