package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/equivcheck-2025.net/internal/domain"
)

// RunStatusCache keeps short-lived run state and the seeds that reproduced
// failures for each contract.
type RunStatusCache interface {
	SetStatus(ctx context.Context, runID uuid.UUID, status domain.RunStatus) error
	GetStatus(ctx context.Context, runID uuid.UUID) (domain.RunStatus, bool, error)
	RecordFailingSeed(ctx context.Context, contract string, seed int64) error
	FailingSeeds(ctx context.Context, contract string) ([]int64, error)
}
