package secondary

import (
	"time"

	"gitlab.com/equivcheck-2025.net/internal/domain"
)

// MetricsRecorder receives engine events for export.
type MetricsRecorder interface {
	ObserveInvocation(contract, unit string, behavior domain.Behavior, elapsed time.Duration)
	ObserveRun(contract string, status domain.RunStatus, iterations int, elapsed time.Duration)
}

// NopMetrics discards every event.
type NopMetrics struct{}

func (NopMetrics) ObserveInvocation(string, string, domain.Behavior, time.Duration) {}

func (NopMetrics) ObserveRun(string, domain.RunStatus, int, time.Duration) {}
