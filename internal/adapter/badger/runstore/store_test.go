package runstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/equivcheck-2025.net/internal/adapter/logging"
	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	logger := logging.NewNopLogger()
	db, err := Open(InMemoryConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db, logger)
}

func pendingRun(contract string, createdAt time.Time) *domain.RunRecord {
	run := domain.NewRunRecord(contract, "correct", &domain.RunConfigOverride{Iterations: domain.Ptr(8)})
	run.CreatedAt = createdAt
	return run
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{}, nil)
	assert.Error(t, err)
}

func TestOpen_OnDisk(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(DefaultConfig(dir), logging.NewNopLogger())
	require.NoError(t, err)
	store := NewStore(db, logging.NewNopLogger())

	run := pendingRun("zero", time.Now())
	require.NoError(t, store.SaveRun(context.Background(), run))
	require.NoError(t, db.Close())

	db, err = Open(DefaultConfig(dir), logging.NewNopLogger())
	require.NoError(t, err)
	defer db.Close()
	got, err := NewStore(db, logging.NewNopLogger()).GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, run.ID, got.ID)
}

func TestStore_Runs(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := pendingRun("zero", base)
	second := pendingRun("divide", base.Add(time.Minute))
	third := pendingRun("zero", base.Add(2*time.Minute))
	for _, r := range []*domain.RunRecord{first, second, third} {
		require.NoError(t, store.SaveRun(ctx, r))
	}

	got, err := store.GetRun(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "divide", got.Contract)
	assert.Equal(t, 8, *got.Override.Iterations)
	assert.True(t, got.CreatedAt.Equal(second.CreatedAt))

	missing, err := store.GetRun(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := store.ListRuns(ctx, domain.RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID)
	assert.Equal(t, first.ID, all[2].ID)

	zeros, err := store.ListRuns(ctx, domain.RunFilter{Contract: "zero", Limit: 1})
	require.NoError(t, err)
	require.Len(t, zeros, 1)
	assert.Equal(t, third.ID, zeros[0].ID)

	claimed, err := store.ClaimPendingRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	assert.Equal(t, first.ID, claimed[0].ID)
	assert.Equal(t, second.ID, claimed[1].ID)
	for _, r := range claimed {
		assert.Equal(t, domain.RunStatusRunning, r.Status)
		assert.NotNil(t, r.StartedAt)
	}

	running, err := store.ListRuns(ctx, domain.RunFilter{Statuses: []domain.RunStatus{domain.RunStatusRunning}})
	require.NoError(t, err)
	assert.Len(t, running, 2)

	active, err := store.ListRuns(ctx, domain.RunFilter{
		Statuses: []domain.RunStatus{domain.RunStatusRunning, domain.RunStatusPending},
	})
	require.NoError(t, err)
	assert.Len(t, active, 3)

	claimed, err = store.ClaimPendingRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, third.ID, claimed[0].ID)

	claimed, err = store.ClaimPendingRuns(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestStore_UpdateRunStatus(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	run := pendingRun("zero", time.Now())
	require.NoError(t, store.SaveRun(ctx, run))

	require.NoError(t, store.UpdateRunStatus(ctx, run.ID, domain.RunStatusCancelled))
	got, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCancelled, got.Status)

	err = store.UpdateRunStatus(ctx, uuid.New(), domain.RunStatusCancelled)
	assert.ErrorIs(t, err, errs.ErrRunNotFound)
}

func TestStore_Overrides(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	none, err := store.GetOverride(ctx, "zero")
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, store.SaveOverride(ctx, &domain.ContractOverride{
		Contract: "zero",
		Override: domain.RunConfigOverride{Iterations: domain.Ptr(4)},
		Active:   true,
	}))
	require.NoError(t, store.SaveOverride(ctx, &domain.ContractOverride{
		Contract: "divide",
		Override: domain.RunConfigOverride{MaxComplexity: domain.Ptr(3)},
	}))
	assert.Error(t, store.SaveOverride(ctx, &domain.ContractOverride{}))

	got, err := store.GetOverride(ctx, "zero")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 4, *got.Override.Iterations)
	assert.False(t, got.CreatedAt.IsZero())

	active, err := store.GetActiveOverrides(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "zero", active[0].Contract)

	require.NoError(t, store.DeleteOverride(ctx, "zero"))
	got, err = store.GetOverride(ctx, "zero")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_StatusCache(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	id := uuid.New()

	_, ok, err := store.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetStatus(ctx, id, domain.RunStatusRunning))
	status, ok, err := store.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.RunStatusRunning, status)

	// Status keys must not show up as runs.
	runs, err := store.ListRuns(ctx, domain.RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_FailingSeeds(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	for _, seed := range []int64{42, -7, 42, 1000} {
		require.NoError(t, store.RecordFailingSeed(ctx, "zero", seed))
	}
	require.NoError(t, store.RecordFailingSeed(ctx, "zero-two", 5))

	seeds, err := store.FailingSeeds(ctx, "zero")
	require.NoError(t, err)
	assert.Equal(t, []int64{-7, 42, 1000}, seeds)

	seeds, err = store.FailingSeeds(ctx, "divide")
	require.NoError(t, err)
	assert.Empty(t, seeds)
}
