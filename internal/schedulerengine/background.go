package schedulerengine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gitlab.com/equivcheck-2025.net/internal/config"
	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/core/services/run"
)

// SchedulerEngine claims queued runs on a ticker and executes them on a
// bounded pool.
type SchedulerEngine struct {
	EngineCfg  *config.EngineCfg
	runService run.IRunService
	logger     primary.Logger
	wg         sync.WaitGroup
}

func NewSchedulerEngine(
	engineCfg *config.EngineCfg,
	runService run.IRunService,
	logger primary.Logger,
) *SchedulerEngine {
	return &SchedulerEngine{
		EngineCfg:  engineCfg,
		runService: runService,
		logger:     logger,
	}
}

// StartRunEngine starts the claim loop. It stops when ctx is cancelled; Wait
// blocks until the batch in flight has finished.
func (s *SchedulerEngine) StartRunEngine(ctx context.Context) {
	ticker := time.NewTicker(s.EngineCfg.ClaimPendingRunsInterval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.ExecutePendingRuns(ctx)
			}
		}
	}()
	s.logger.Info("Run engine started",
		"interval", s.EngineCfg.ClaimPendingRunsInterval,
		"workers", s.EngineCfg.Workers)
}

func (s *SchedulerEngine) Wait() {
	s.wg.Wait()
}

// ExecutePendingRuns claims one batch of pending runs and executes it. It
// returns the number of runs claimed.
func (s *SchedulerEngine) ExecutePendingRuns(ctx context.Context) int {
	runs, err := s.runService.ClaimRuns(ctx, s.EngineCfg.ClaimBatchSize)
	if err != nil {
		s.logger.Error("Failed to claim pending runs", "error", err)
		return 0
	}
	if len(runs) == 0 {
		s.logger.Debug("No pending runs found")
		return 0
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.EngineCfg.Workers)
	for _, r := range runs {
		g.Go(func() error {
			if err := s.runService.ExecuteRun(gctx, r); err != nil {
				// Storage failures do not stop the rest of the batch.
				s.logger.Error("Failed to execute run", "runId", r.ID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("Executed pending runs", "count", len(runs))
	return len(runs)
}
