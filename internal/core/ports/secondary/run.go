package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/equivcheck-2025.net/internal/domain"
)

type RunRepository interface {
	// SaveRun inserts or replaces a run record
	SaveRun(ctx context.Context, run *domain.RunRecord) error

	// GetRun retrieves a run by ID, nil when absent
	GetRun(ctx context.Context, runID uuid.UUID) (*domain.RunRecord, error)

	// ListRuns retrieves runs matching the filter, newest first
	ListRuns(ctx context.Context, filter domain.RunFilter) ([]*domain.RunRecord, error)

	// ClaimPendingRuns marks up to limit pending runs as running and returns them
	ClaimPendingRuns(ctx context.Context, limit int) ([]*domain.RunRecord, error)

	// UpdateRunStatus updates a run's status
	UpdateRunStatus(ctx context.Context, runID uuid.UUID, status domain.RunStatus) error
}

type ContractOverrideRepository interface {
	// GetOverride retrieves the stored override for a contract, nil when absent
	GetOverride(ctx context.Context, contract string) (*domain.ContractOverride, error)

	// GetActiveOverrides retrieves every active override
	GetActiveOverrides(ctx context.Context) ([]*domain.ContractOverride, error)

	// SaveOverride inserts or replaces an override
	SaveOverride(ctx context.Context, override *domain.ContractOverride) error

	// DeleteOverride removes the override for a contract
	DeleteOverride(ctx context.Context, contract string) error
}
