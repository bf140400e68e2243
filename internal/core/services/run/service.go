package run

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/equivcheck-2025.net/internal/domain"
)

// IRunService manages queued equivalence runs
type IRunService interface {
	// EnqueueRun validates the target and queues a pending run
	EnqueueRun(ctx context.Context, contract, candidate string, override *domain.RunConfigOverride) (uuid.UUID, error)

	// RunNow queues a run and executes it before returning
	RunNow(ctx context.Context, contract, candidate string, override *domain.RunConfigOverride) (*domain.RunRecord, error)

	// GetRun retrieves a run by ID
	GetRun(ctx context.Context, runID uuid.UUID) (*domain.RunRecord, error)

	// ListRuns retrieves runs matching a filter
	ListRuns(ctx context.Context, filter domain.RunFilter) ([]*domain.RunRecord, error)

	// CancelRun cancels a pending run
	CancelRun(ctx context.Context, runID uuid.UUID) error

	// ClaimRuns moves up to limit pending runs to running
	ClaimRuns(ctx context.Context, limit int) ([]*domain.RunRecord, error)

	// ExecuteRun runs a claimed run and stores its outcome
	ExecuteRun(ctx context.Context, run *domain.RunRecord) error

	// ListContracts describes the registered contracts
	ListContracts(ctx context.Context) ([]domain.ContractInfo, error)

	// FailingSeeds lists the seeds that made a contract's runs fail
	FailingSeeds(ctx context.Context, contract string) ([]int64, error)

	// SaveOverride stores a contract override and applies it to later runs
	SaveOverride(ctx context.Context, contract string, override *domain.RunConfigOverride) error

	// LoadOverrides applies every stored active override to the catalog
	LoadOverrides(ctx context.Context) error
}
