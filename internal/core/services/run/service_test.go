package run

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/equivcheck-2025.net/internal/adapter/badger/runstore"
	"gitlab.com/equivcheck-2025.net/internal/adapter/logging"
	"gitlab.com/equivcheck-2025.net/internal/app"
	"gitlab.com/equivcheck-2025.net/internal/config"
	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/fixtures"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

func testDefaults() *config.RunDefaults {
	return &config.RunDefaults{
		Configuration: domain.RunConfiguration{
			Iterations:    32,
			MaxComplexity: 10,
			TimeoutMillis: 1000,
			MaxDiscards:   64,
		},
	}
}

func newRunService(t *testing.T) (*RunService, *runstore.Store) {
	t.Helper()
	logger := logging.NewNopLogger()
	engine, err := app.NewEngine(testDefaults(), nil, logger)
	require.NoError(t, err)

	db, err := runstore.Open(runstore.InMemoryConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := runstore.NewStore(db, logger)

	return NewRunService(engine.Catalog, engine.TestRun, store, store, store, logger), store
}

func TestRunNow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRunService(t)

	tests := []struct {
		contract  string
		candidate string
		override  *domain.RunConfigOverride
		status    domain.RunStatus
	}{
		{fixtures.ZeroContract, "correct", nil, domain.RunStatusPassed},
		{fixtures.ZeroContract, "off-by-one", nil, domain.RunStatusFailed},
		{fixtures.ZeroContract, "correct", &domain.RunConfigOverride{Iterations: domain.Ptr(0)}, domain.RunStatusConfigurationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.contract+"/"+tt.candidate+"/"+string(tt.status), func(t *testing.T) {
			record, err := svc.RunNow(ctx, tt.contract, tt.candidate, tt.override)
			require.NoError(t, err)
			assert.Equal(t, tt.status, record.Status)
			assert.NotNil(t, record.CompletedAt)

			stored, err := svc.GetRun(ctx, record.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.status, stored.Status)
			if tt.status == domain.RunStatusConfigurationFailed {
				assert.Nil(t, stored.Report)
				require.NotNil(t, stored.Error)
				assert.Contains(t, *stored.Error, "Iterations")
			} else {
				require.NotNil(t, stored.Report)
				assert.Equal(t, tt.status, stored.Report.Status)
			}
		})
	}
}

func TestRunNow_GenerationFailed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRunService(t)

	record, err := svc.RunNow(ctx, fixtures.PreconditionContract, "correct", &domain.RunConfigOverride{
		MinComplexity:        domain.Ptr(0),
		MaxComplexity:        domain.Ptr(0),
		EdgeCaseIterations:   domain.Ptr(0),
		SimpleCaseIterations: domain.Ptr(0),
		MixedCaseIterations:  domain.Ptr(0),
		MaxDiscards:          domain.Ptr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusGenerationFailed, record.Status)
	require.NotNil(t, record.Error)
}

func TestRunNow_UnknownTarget(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRunService(t)

	_, err := svc.RunNow(ctx, "missing", "correct", nil)
	assert.ErrorIs(t, err, errs.ErrContractNotFound)
	_, err = svc.EnqueueRun(ctx, fixtures.ZeroContract, "missing", nil)
	assert.ErrorIs(t, err, errs.ErrCandidateNotFound)

	runs, err := svc.ListRuns(ctx, domain.RunFilter{})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestFailingSeedsRecorded(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRunService(t)

	_, err := svc.RunNow(ctx, fixtures.ZeroContract, "off-by-one", &domain.RunConfigOverride{RandomSeed: domain.Ptr(int64(77))})
	require.NoError(t, err)
	_, err = svc.RunNow(ctx, fixtures.ZeroContract, "correct", &domain.RunConfigOverride{RandomSeed: domain.Ptr(int64(78))})
	require.NoError(t, err)

	seeds, err := svc.FailingSeeds(ctx, fixtures.ZeroContract)
	require.NoError(t, err)
	assert.Equal(t, []int64{77}, seeds)
}

func TestQueueLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRunService(t)

	first, err := svc.EnqueueRun(ctx, fixtures.ZeroContract, "correct", nil)
	require.NoError(t, err)
	second, err := svc.EnqueueRun(ctx, fixtures.DivideContract, "correct", nil)
	require.NoError(t, err)

	require.NoError(t, svc.CancelRun(ctx, second))
	cancelled, err := svc.GetRun(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCancelled, cancelled.Status)
	assert.ErrorIs(t, svc.CancelRun(ctx, second), errs.ErrRunNotCancellable)
	assert.ErrorIs(t, svc.CancelRun(ctx, uuid.New()), errs.ErrRunNotFound)

	claimed, err := svc.ClaimRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, first, claimed[0].ID)

	running, err := svc.GetRun(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusRunning, running.Status)

	require.NoError(t, svc.ExecuteRun(ctx, claimed[0]))
	done, err := svc.GetRun(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusPassed, done.Status)
	assert.Equal(t, 32, done.Report.Iterations)

	_, err = svc.GetRun(ctx, uuid.New())
	assert.ErrorIs(t, err, errs.ErrRunNotFound)
}

func TestGetRun_CacheAheadOfStore(t *testing.T) {
	ctx := context.Background()
	svc, store := newRunService(t)

	id, err := svc.EnqueueRun(ctx, fixtures.ZeroContract, "correct", nil)
	require.NoError(t, err)
	require.NoError(t, store.SetStatus(ctx, id, domain.RunStatusRunning))

	run, err := svc.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusRunning, run.Status)
}

func TestExecuteRun_Cancelled(t *testing.T) {
	svc, _ := newRunService(t)
	id, err := svc.EnqueueRun(context.Background(), fixtures.ZeroContract, "correct", nil)
	require.NoError(t, err)
	run, err := svc.GetRun(context.Background(), id)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, svc.ExecuteRun(ctx, run))

	stored, err := svc.GetRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCancelled, stored.Status)
}

func TestOverrides(t *testing.T) {
	ctx := context.Background()
	svc, store := newRunService(t)

	require.NoError(t, svc.SaveOverride(ctx, fixtures.ZeroContract, &domain.RunConfigOverride{Iterations: domain.Ptr(4)}))
	record, err := svc.RunNow(ctx, fixtures.ZeroContract, "correct", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, record.Report.Iterations)

	stored, err := store.GetOverride(ctx, fixtures.ZeroContract)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Active)

	// A per-run override still wins over the stored one.
	record, err = svc.RunNow(ctx, fixtures.ZeroContract, "correct", &domain.RunConfigOverride{Iterations: domain.Ptr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, record.Report.Iterations)

	err = svc.SaveOverride(ctx, fixtures.ZeroContract, &domain.RunConfigOverride{TimeoutMillis: domain.Ptr(int64(-1))})
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	err = svc.SaveOverride(ctx, "missing", &domain.RunConfigOverride{})
	assert.ErrorIs(t, err, errs.ErrContractNotFound)
}

func TestLoadOverrides(t *testing.T) {
	ctx := context.Background()
	svc, store := newRunService(t)

	require.NoError(t, store.SaveOverride(ctx, &domain.ContractOverride{
		Contract: fixtures.ZeroContract,
		Override: domain.RunConfigOverride{Iterations: domain.Ptr(3)},
		Active:   true,
	}))
	require.NoError(t, store.SaveOverride(ctx, &domain.ContractOverride{
		Contract: "retired",
		Override: domain.RunConfigOverride{Iterations: domain.Ptr(3)},
		Active:   true,
	}))
	require.NoError(t, svc.LoadOverrides(ctx))

	infos, err := svc.ListContracts(ctx)
	require.NoError(t, err)
	for _, info := range infos {
		if info.Name == fixtures.ZeroContract {
			assert.Equal(t, 3, info.Configuration.Iterations)
		}
	}
}
