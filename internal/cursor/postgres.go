package cursor

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"transferScope/internal/model"
)

// PGStore persists pair cursors in Postgres, for deployments where the local
// filesystem is not durable between runs.
//
// Expected schema:
//
//	CREATE TABLE monitor_cursor (
//	    chain        text NOT NULL,
//	    contract     text NOT NULL,
//	    block_number bigint NOT NULL,
//	    log_index    bigint NOT NULL,
//	    updated_at   timestamptz NOT NULL DEFAULT now(),
//	    PRIMARY KEY (chain, contract)
//	);
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PGStore) Load(ctx context.Context, chain, contract string) (model.OrderingKey, bool, error) {
	var block, index int64
	row := s.pool.QueryRow(ctx,
		`SELECT block_number, log_index FROM monitor_cursor WHERE chain=$1 AND contract=$2`,
		chain, contract)
	if err := row.Scan(&block, &index); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.OrderingKey{}, false, nil
		}
		return model.OrderingKey{}, false, err
	}
	return model.OrderingKey{Block: uint64(block), Index: uint(index)}, true, nil
}

func (s *PGStore) Save(ctx context.Context, chain, contract string, key model.OrderingKey) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO monitor_cursor (chain, contract, block_number, log_index, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (chain, contract) DO UPDATE
		SET block_number = EXCLUDED.block_number,
		    log_index = EXCLUDED.log_index,
		    updated_at = now()
	`, chain, contract, int64(key.Block), int64(key.Index))
	return err
}
