package runs

import (
	"github.com/google/uuid"

	"gitlab.com/equivcheck-2025.net/internal/domain"
)

// CreateRunRequest represents a request to run a candidate against its contract
type CreateRunRequest struct {
	Contract  string                    `json:"contract"`
	Candidate string                    `json:"candidate"`
	Override  *domain.RunConfigOverride `json:"override,omitempty"`
	// Wait executes the run inside the request instead of queueing it.
	Wait bool `json:"wait,omitempty"`
}

// CreateRunResponse represents a response to a queued run request
type CreateRunResponse struct {
	RunID uuid.UUID `json:"runId"`
}

type ListRunsResponse struct {
	Runs []*domain.RunRecord `json:"runs"`
}
