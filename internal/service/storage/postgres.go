package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/StefanoGysin/voxy/internal/models"
)

// PostgresStore is the client/server checkpoint backend for multi-process
// deployments. The upsert writes the whole snapshot in one statement, so a
// concurrent reader sees either the previous checkpoint or the new one.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const createThreadsTable = `
CREATE TABLE IF NOT EXISTS threads (
	thread_id  TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// OpenPostgresStore connects to dsn and ensures the threads table exists.
func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("storage: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping pool: %w", err)
	}

	if _, err := pool.Exec(ctx, createThreadsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: create threads table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) LoadThread(ctx context.Context, threadID string) (*ThreadRecord, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM threads WHERE thread_id = $1`,
		threadID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: load thread %s: %w", threadID, err)
	}
	return decodeRecord(threadID, data)
}

func (s *PostgresStore) SaveThread(ctx context.Context, record *ThreadRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO threads (thread_id, payload, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (thread_id) DO UPDATE SET payload = $2, updated_at = now()`,
		record.Info.ID, data,
	)
	if err != nil {
		return fmt.Errorf("storage: save thread %s: %w", record.Info.ID, err)
	}
	return nil
}

func (s *PostgresStore) ListThreads(ctx context.Context) ([]*models.ThreadInfo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT thread_id, payload FROM threads ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("storage: list threads: %w", err)
	}
	defer rows.Close()

	var infos []*models.ThreadInfo
	for rows.Next() {
		var threadID string
		var data []byte
		if err := rows.Scan(&threadID, &data); err != nil {
			return nil, fmt.Errorf("storage: scan thread row: %w", err)
		}
		record, err := decodeRecord(threadID, data)
		if err != nil {
			return nil, err
		}
		infos = append(infos, record.Info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: list threads: %w", err)
	}
	return infos, nil
}

func (s *PostgresStore) DeleteThread(ctx context.Context, threadID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM threads WHERE thread_id = $1`, threadID); err != nil {
		return fmt.Errorf("storage: delete thread %s: %w", threadID, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
