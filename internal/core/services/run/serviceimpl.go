package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/core/ports/secondary"
	"gitlab.com/equivcheck-2025.net/internal/core/services/catalog"
	"gitlab.com/equivcheck-2025.net/internal/core/services/testrun"
	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

var _ IRunService = (*RunService)(nil)

// RunService implements the IRunService interface
type RunService struct {
	catalog      catalog.ICatalogService
	testRun      testrun.ITestRunService
	runRepo      secondary.RunRepository
	overrideRepo secondary.ContractOverrideRepository
	statusCache  secondary.RunStatusCache
	logger       primary.Logger
}

// NewRunService creates a new run service. overrideRepo and statusCache may be
// nil when no shared storage is configured.
func NewRunService(
	catalog catalog.ICatalogService,
	testRun testrun.ITestRunService,
	runRepo secondary.RunRepository,
	overrideRepo secondary.ContractOverrideRepository,
	statusCache secondary.RunStatusCache,
	logger primary.Logger,
) *RunService {
	return &RunService{
		catalog:      catalog,
		testRun:      testRun,
		runRepo:      runRepo,
		overrideRepo: overrideRepo,
		statusCache:  statusCache,
		logger:       logger,
	}
}

// EnqueueRun adds a run to the queue
func (s *RunService) EnqueueRun(ctx context.Context, contract, candidate string, override *domain.RunConfigOverride) (uuid.UUID, error) {
	run, err := s.enqueue(ctx, contract, candidate, override)
	if err != nil {
		return uuid.Nil, err
	}
	return run.ID, nil
}

func (s *RunService) enqueue(ctx context.Context, contract, candidate string, override *domain.RunConfigOverride) (*domain.RunRecord, error) {
	if _, _, _, err := s.catalog.Lookup(contract, candidate); err != nil {
		return nil, err
	}

	run := domain.NewRunRecord(contract, candidate, override)
	s.logger.Info("Enqueueing run",
		"runId", run.ID,
		"contract", contract,
		"candidate", candidate)

	if err := s.runRepo.SaveRun(ctx, run); err != nil {
		s.logger.Error("Failed to save run", "runId", run.ID, "error", err)
		return nil, fmt.Errorf("failed to save run: %w", err)
	}
	s.cacheStatus(ctx, run.ID, run.Status)
	return run, nil
}

func (s *RunService) RunNow(ctx context.Context, contract, candidate string, override *domain.RunConfigOverride) (*domain.RunRecord, error) {
	run, err := s.enqueue(ctx, contract, candidate, override)
	if err != nil {
		return nil, err
	}
	if err := s.ExecuteRun(ctx, run); err != nil {
		return run, err
	}
	return run, nil
}

// GetRun retrieves a run by ID
func (s *RunService) GetRun(ctx context.Context, runID uuid.UUID) (*domain.RunRecord, error) {
	s.logger.Debug("Getting run", "runId", runID)

	run, err := s.runRepo.GetRun(ctx, runID)
	if err != nil {
		s.logger.Error("Failed to get run", "runId", runID, "error", err)
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrRunNotFound, runID)
	}

	// The cache is ahead of the store while a run executes elsewhere.
	if !run.Status.Terminal() && s.statusCache != nil {
		if status, ok, err := s.statusCache.GetStatus(ctx, runID); err == nil && ok {
			run.Status = status
		}
	}
	return run, nil
}

func (s *RunService) ListRuns(ctx context.Context, filter domain.RunFilter) ([]*domain.RunRecord, error) {
	runs, err := s.runRepo.ListRuns(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list runs", "error", err)
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// CancelRun cancels a pending run
func (s *RunService) CancelRun(ctx context.Context, runID uuid.UUID) error {
	s.logger.Info("Cancelling run", "runId", runID)

	run, err := s.runRepo.GetRun(ctx, runID)
	if err != nil {
		s.logger.Error("Failed to get run for cancellation", "runId", runID, "error", err)
		return fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("%w: %s", errs.ErrRunNotFound, runID)
	}
	if run.Status != domain.RunStatusPending {
		return fmt.Errorf("%w: status %s", errs.ErrRunNotCancellable, run.Status)
	}

	if err := s.runRepo.UpdateRunStatus(ctx, runID, domain.RunStatusCancelled); err != nil {
		s.logger.Error("Failed to update run status", "runId", runID, "error", err)
		return fmt.Errorf("failed to cancel run: %w", err)
	}
	s.cacheStatus(ctx, runID, domain.RunStatusCancelled)

	s.logger.Info("Run cancelled", "runId", runID)
	return nil
}

func (s *RunService) ClaimRuns(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	runs, err := s.runRepo.ClaimPendingRuns(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to claim pending runs", "error", err)
		return nil, fmt.Errorf("failed to claim pending runs: %w", err)
	}
	for _, run := range runs {
		s.cacheStatus(ctx, run.ID, domain.RunStatusRunning)
	}
	return runs, nil
}

// ExecuteRun drives the run to a terminal status and stores the outcome. Engine
// errors that belong to the run are recorded on it; only storage failures are
// returned.
func (s *RunService) ExecuteRun(ctx context.Context, run *domain.RunRecord) error {
	now := time.Now()
	run.Status = domain.RunStatusRunning
	run.StartedAt = &now
	s.cacheStatus(ctx, run.ID, run.Status)

	report, runErr := s.execute(ctx, run)

	completed := time.Now()
	run.CompletedAt = &completed
	run.Report = report
	run.Status = statusOf(report, runErr)
	if runErr != nil {
		msg := runErr.Error()
		run.Error = &msg
		s.logger.Warn("Run did not complete", "runId", run.ID, "status", run.Status, "error", runErr)
	}

	// Store the outcome even if the caller gave up.
	saveCtx := context.WithoutCancel(ctx)
	if err := s.runRepo.SaveRun(saveCtx, run); err != nil {
		s.logger.Error("Failed to save run outcome", "runId", run.ID, "error", err)
		return fmt.Errorf("failed to save run outcome: %w", err)
	}
	s.cacheStatus(saveCtx, run.ID, run.Status)

	if run.Status == domain.RunStatusFailed && s.statusCache != nil {
		if err := s.statusCache.RecordFailingSeed(saveCtx, run.Contract, report.Seed); err != nil {
			s.logger.Warn("Failed to record failing seed", "contract", run.Contract, "error", err)
		}
	}

	s.logger.Info("Run completed", "runId", run.ID, "status", run.Status)
	return nil
}

func (s *RunService) execute(ctx context.Context, run *domain.RunRecord) (*domain.RunReport, error) {
	contract, reference, candidate, err := s.catalog.Lookup(run.Contract, run.Candidate)
	if err != nil {
		return nil, err
	}
	return s.testRun.Run(ctx, contract, reference, candidate, run.Override)
}

func statusOf(report *domain.RunReport, err error) domain.RunStatus {
	switch {
	case err == nil && report != nil:
		return report.Status
	case errors.Is(err, errs.ErrConfiguration):
		return domain.RunStatusConfigurationFailed
	case errors.Is(err, errs.ErrGeneration):
		return domain.RunStatusGenerationFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.RunStatusCancelled
	default:
		return domain.RunStatusErrored
	}
}

func (s *RunService) ListContracts(ctx context.Context) ([]domain.ContractInfo, error) {
	return s.catalog.List()
}

func (s *RunService) FailingSeeds(ctx context.Context, contract string) ([]int64, error) {
	if s.statusCache == nil {
		return []int64{}, nil
	}
	seeds, err := s.statusCache.FailingSeeds(ctx, contract)
	if err != nil {
		s.logger.Error("Failed to get failing seeds", "contract", contract, "error", err)
		return nil, fmt.Errorf("failed to get failing seeds: %w", err)
	}
	return seeds, nil
}

func (s *RunService) SaveOverride(ctx context.Context, contract string, override *domain.RunConfigOverride) error {
	if err := s.catalog.ApplyOverride(contract, override); err != nil {
		return err
	}
	if s.overrideRepo == nil {
		return nil
	}

	stored := &domain.ContractOverride{Contract: contract, Active: true}
	if override != nil {
		stored.Override = *override
	}
	if err := s.overrideRepo.SaveOverride(ctx, stored); err != nil {
		s.logger.Error("Failed to save contract override", "contract", contract, "error", err)
		return fmt.Errorf("failed to save contract override: %w", err)
	}
	return nil
}

func (s *RunService) LoadOverrides(ctx context.Context) error {
	if s.overrideRepo == nil {
		return nil
	}
	overrides, err := s.overrideRepo.GetActiveOverrides(ctx)
	if err != nil {
		return fmt.Errorf("failed to load contract overrides: %w", err)
	}
	for _, o := range overrides {
		override := o.Override
		if err := s.catalog.ApplyOverride(o.Contract, &override); err != nil {
			if errors.Is(err, errs.ErrContractNotFound) {
				s.logger.Warn("Skipping override for unknown contract", "contract", o.Contract)
				continue
			}
			return err
		}
	}
	s.logger.Info("Contract overrides loaded", "count", len(overrides))
	return nil
}

func (s *RunService) cacheStatus(ctx context.Context, runID uuid.UUID, status domain.RunStatus) {
	if s.statusCache == nil {
		return
	}
	if err := s.statusCache.SetStatus(ctx, runID, status); err != nil {
		s.logger.Warn("Failed to cache run status", "runId", runID, "error", err)
	}
}
