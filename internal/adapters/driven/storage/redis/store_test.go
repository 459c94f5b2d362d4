package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsift/internal/core/domain"
)

// setupTestStore creates a Store on a miniredis server.
func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	store := NewStore(client)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func testRun(id, projectID string, features ...string) *domain.ExtractionRun {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	run := &domain.ExtractionRun{
		ID:        id,
		ProjectID: projectID,
		UserID:    "u1",
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, f := range features {
		run.Requirements = append(run.Requirements, domain.Requirement{
			Feature: f, Description: f + " description", Priority: 1, Type: "NF", MoSCoW: "M",
		})
	}
	return run
}

func TestStore_FetchPrevious_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.FetchPrevious(context.Background(), "p1")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_StoreAndFetchPrevious(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, testRun("r1", "p1", "Login")))
	require.NoError(t, store.Store(ctx, testRun("r2", "p1", "Login", "Export")))

	reqs, err := store.FetchPrevious(ctx, "p1")

	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "Export", reqs[1].Feature)
	assert.Equal(t, 1, reqs[1].Priority)

	items, err := mr.List("reqsift:project:p1:runs")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestStore_List_NewestFirst(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, testRun("r1", "p1", "A")))
	require.NoError(t, store.Store(ctx, testRun("r2", "p1", "B")))
	require.NoError(t, store.Store(ctx, testRun("r3", "p2", "C")))

	runs, err := store.List(ctx, "p1")

	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r2", runs[0].ID)
	assert.Equal(t, "r1", runs[1].ID)
	assert.True(t, runs[0].CreatedAt.Equal(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)))
}

func TestStore_List_UnknownProject(t *testing.T) {
	store, _ := setupTestStore(t)

	runs, err := store.List(context.Background(), "none")

	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_Store_Validation(t *testing.T) {
	store, _ := setupTestStore(t)

	err := store.Store(context.Background(), testRun("r1", "p1"))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_Store_DuplicateID(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, testRun("r1", "p1", "A")))
	err := store.Store(ctx, testRun("r1", "p1", "B"))

	assert.ErrorIs(t, err, domain.ErrPersistence)
	runs, _ := store.List(ctx, "p1")
	assert.Len(t, runs, 1)
}

func TestStore_ServerDown(t *testing.T) {
	store, mr := setupTestStore(t)
	mr.Close()

	_, err := store.FetchPrevious(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrPersistence)

	err = store.Store(context.Background(), testRun("r1", "p1", "A"))
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestStore_CorruptEntry(t *testing.T) {
	store, mr := setupTestStore(t)
	_, err := mr.Lpush("reqsift:project:p1:runs", "{not json")
	require.NoError(t, err)

	_, err = store.FetchPrevious(context.Background(), "p1")

	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := Open(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Store(context.Background(), testRun("r1", "p1", "A")))
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), "not a url")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = Open(ctx, "redis://"+addr)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
