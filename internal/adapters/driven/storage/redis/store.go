// Package redis provides a RequirementStore backed by Redis lists.
//
// Each project's runs live in one list, newest at the head, so the
// previous run is a single LINDEX.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/reqsift/internal/core/domain"
	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RequirementStore = (*Store)(nil)

const (
	// Key prefixes for Redis
	projectPrefix = "reqsift:project:"
	runIDPrefix   = "reqsift:run:"
)

// Store implements driven.RequirementStore using Redis
type Store struct {
	client *redis.Client
}

// NewStore creates a store on an existing client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Open connects to the Redis server at dsn (redis://[user:pass@]host:port/db)
// and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: parse redis url: %v", domain.ErrInvalidInput, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping redis: %v", domain.ErrPersistence, err)
	}
	return NewStore(client), nil
}

func runsKey(projectID string) string {
	return projectPrefix + projectID + ":runs"
}

// Store pushes the run onto the head of the project's list.
// The run ID is claimed first so a repeated ID is rejected.
func (s *Store) Store(ctx context.Context, run *domain.ExtractionRun) error {
	if err := run.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("%w: marshal run: %v", domain.ErrValidation, err)
	}

	claimed, err := s.client.SetNX(ctx, runIDPrefix+run.ID, run.ProjectID, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: claim run id: %v", domain.ErrPersistence, err)
	}
	if !claimed {
		return fmt.Errorf("%w: run %s already exists", domain.ErrPersistence, run.ID)
	}

	if err := s.client.LPush(ctx, runsKey(run.ProjectID), data).Err(); err != nil {
		return fmt.Errorf("%w: save run: %v", domain.ErrPersistence, err)
	}
	return nil
}

// FetchPrevious returns the requirements at the head of the project's list.
func (s *Store) FetchPrevious(ctx context.Context, projectID string) ([]domain.Requirement, error) {
	data, err := s.client.LIndex(ctx, runsKey(projectID), 0).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get latest run: %v", domain.ErrPersistence, err)
	}

	var run domain.ExtractionRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("%w: unmarshal run: %v", domain.ErrPersistence, err)
	}
	return run.Requirements, nil
}

// List returns every run for the project, newest first.
func (s *Store) List(ctx context.Context, projectID string) ([]domain.ExtractionRun, error) {
	items, err := s.client.LRange(ctx, runsKey(projectID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list runs: %v", domain.ErrPersistence, err)
	}

	runs := make([]domain.ExtractionRun, 0, len(items))
	for _, item := range items {
		var run domain.ExtractionRun
		if err := json.Unmarshal([]byte(item), &run); err != nil {
			return nil, fmt.Errorf("%w: unmarshal run: %v", domain.ErrPersistence, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}
