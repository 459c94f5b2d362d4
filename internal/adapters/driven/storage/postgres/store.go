// Package postgres provides a RequirementStore backed by PostgreSQL.
//
// Requirements and tables are stored as JSONB. The schema is created on
// Open if it does not exist.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RequirementStore = (*Store)(nil)

//go:embed schema.sql
var schema string

// uniqueViolation is the SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// Config holds connection pool settings.
type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// DefaultConfig returns pool settings for a single CLI or server process.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:             dsn,
		MaxConns:        4,
		MinConns:        0,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		DialTimeout:     5 * time.Second,
	}
}

// Store is a PostgreSQL-backed requirement store.
type Store struct {
	pool *pgxpool.Pool
}

// Open creates a pool, verifies the connection and ensures the schema exists.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: parse postgres dsn: %v", domain.ErrInvalidInput, err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "reqsift"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("%w: connect postgres: %v", domain.ErrPersistence, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", domain.ErrPersistence, err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: create schema: %v", domain.ErrPersistence, err)
	}

	return &Store{pool: pool}, nil
}

// Store inserts the run as a new row.
func (s *Store) Store(ctx context.Context, run *domain.ExtractionRun) error {
	if err := run.Validate(); err != nil {
		return err
	}

	requirementsJSON, err := json.Marshal(run.Requirements)
	if err != nil {
		return fmt.Errorf("%w: marshal requirements: %v", domain.ErrValidation, err)
	}
	tables := run.Tables
	if tables == nil {
		tables = []domain.FileTable{}
	}
	tablesJSON, err := json.Marshal(tables)
	if err != nil {
		return fmt.Errorf("%w: marshal tables: %v", domain.ErrValidation, err)
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := run.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO extraction_runs (id, project_id, user_id, requirements, tables, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.ID, run.ProjectID, run.UserID, requirementsJSON, tablesJSON, createdAt, updatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: run %s already exists", domain.ErrPersistence, run.ID)
		}
		return fmt.Errorf("%w: save run: %v", domain.ErrPersistence, err)
	}
	return nil
}

// FetchPrevious returns the requirements of the project's latest run.
func (s *Store) FetchPrevious(ctx context.Context, projectID string) ([]domain.Requirement, error) {
	var requirementsJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT requirements FROM extraction_runs
		WHERE project_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT 1
	`, projectID).Scan(&requirementsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get latest run: %v", domain.ErrPersistence, err)
	}

	var requirements []domain.Requirement
	if err := json.Unmarshal(requirementsJSON, &requirements); err != nil {
		return nil, fmt.Errorf("%w: unmarshal requirements: %v", domain.ErrPersistence, err)
	}
	return requirements, nil
}

// List returns all runs for a project, newest first.
func (s *Store) List(ctx context.Context, projectID string) ([]domain.ExtractionRun, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, user_id, requirements, tables, created_at, updated_at
		FROM extraction_runs
		WHERE project_id = $1
		ORDER BY created_at DESC, seq DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: query runs: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	runs := []domain.ExtractionRun{}
	for rows.Next() {
		var run domain.ExtractionRun
		var requirementsJSON, tablesJSON []byte
		if err := rows.Scan(&run.ID, &run.ProjectID, &run.UserID,
			&requirementsJSON, &tablesJSON, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan run: %v", domain.ErrPersistence, err)
		}
		if err := json.Unmarshal(requirementsJSON, &run.Requirements); err != nil {
			return nil, fmt.Errorf("%w: unmarshal requirements: %v", domain.ErrPersistence, err)
		}
		if err := json.Unmarshal(tablesJSON, &run.Tables); err != nil {
			return nil, fmt.Errorf("%w: unmarshal tables: %v", domain.ErrPersistence, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate runs: %v", domain.ErrPersistence, err)
	}
	return runs, nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
