// Package db provides the optional Postgres player archive: a pgxpool
// connection pool with prepared statement registration, plus the
// store.Archive implementation over it.
//
// Schema (players table):
//
//	CREATE TABLE IF NOT EXISTS players (
//	    id         text PRIMARY KEY,
//	    record     jsonb NOT NULL,
//	    updated_at timestamptz NOT NULL DEFAULT now()
//	);
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ferranmarti/scoutdesk/internal/config"
	"github.com/ferranmarti/scoutdesk/internal/player"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		"health_check": "SELECT 1",

		"upsert_player": `INSERT INTO players (id, record, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record, updated_at = now()`,
		"get_player":   "SELECT record FROM players WHERE id = $1",
		"list_players": "SELECT record FROM players ORDER BY updated_at DESC",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}

// Archive persists canonical player records as jsonb. It satisfies
// store.Archive.
type Archive struct {
	pool *Pool
}

// NewArchive creates an Archive over the pool.
func NewArchive(pool *Pool) *Archive {
	return &Archive{pool: pool}
}

// SavePlayer upserts one record.
func (a *Archive) SavePlayer(ctx context.Context, rec player.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode player %s: %w", rec.ID, err)
	}
	if _, err := a.pool.Exec(ctx, "upsert_player", rec.ID, raw); err != nil {
		return fmt.Errorf("upsert player %s: %w", rec.ID, err)
	}
	return nil
}

// GetPlayer loads one archived record.
func (a *Archive) GetPlayer(ctx context.Context, id string) (player.Record, bool, error) {
	var raw []byte
	err := a.pool.QueryRow(ctx, "get_player", id).Scan(&raw)
	if err == pgx.ErrNoRows {
		return player.Record{}, false, nil
	}
	if err != nil {
		return player.Record{}, false, fmt.Errorf("get player %s: %w", id, err)
	}
	var rec player.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return player.Record{}, false, fmt.Errorf("decode player %s: %w", id, err)
	}
	return rec, true, nil
}

// LoadPlayers loads every archived record, newest first.
func (a *Archive) LoadPlayers(ctx context.Context) ([]player.Record, error) {
	rows, err := a.pool.Query(ctx, "list_players")
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var records []player.Record
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan player row: %w", err)
		}
		var rec player.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			// One bad row must not poison the warm-up load.
			continue
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
