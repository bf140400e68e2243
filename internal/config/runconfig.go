package config

import (
	"os"
	"strconv"

	"gitlab.com/equivcheck-2025.net/internal/domain"
)

const (
	DefaultIterations    = 1024
	DefaultMinComplexity = 0
	DefaultMaxComplexity = 100
	DefaultTimeoutMillis = 10000
	DefaultMaxDiscards   = 1024
)

// RunDefaults are the process-wide run parameters every contract inherits.
type RunDefaults struct {
	Configuration domain.RunConfiguration
	// EdgeCaseSet is true when EQ_EDGE_CASE_ITERATIONS fixes the edge-case
	// count instead of leaving it derived from the iteration count. The other
	// two flags do the same for their phases.
	EdgeCaseSet   bool
	SimpleCaseSet bool
	MixedCaseSet  bool
}

func NewRunDefaults() *RunDefaults {
	d := &RunDefaults{
		Configuration: domain.RunConfiguration{
			Iterations:    getEnvInt("EQ_ITERATIONS", DefaultIterations),
			MinComplexity: getEnvInt("EQ_MIN_COMPLEXITY", DefaultMinComplexity),
			MaxComplexity: getEnvInt("EQ_MAX_COMPLEXITY", DefaultMaxComplexity),
			TimeoutMillis: getEnvInt64("EQ_TIMEOUT_MILLIS", DefaultTimeoutMillis),
			MaxDiscards:   getEnvInt("EQ_MAX_DISCARDS", DefaultMaxDiscards),
		},
	}
	if seed, err := strconv.ParseInt(os.Getenv("EQ_RANDOM_SEED"), 10, 64); err == nil {
		d.Configuration.RandomSeed = &seed
	}
	if edge, err := strconv.Atoi(os.Getenv("EQ_EDGE_CASE_ITERATIONS")); err == nil {
		d.Configuration.EdgeCaseIterations = edge
		d.EdgeCaseSet = true
	}
	if simple, err := strconv.Atoi(os.Getenv("EQ_SIMPLE_CASE_ITERATIONS")); err == nil {
		d.Configuration.SimpleCaseIterations = simple
		d.SimpleCaseSet = true
	}
	if mixed, err := strconv.Atoi(os.Getenv("EQ_MIXED_CASE_ITERATIONS")); err == nil {
		d.Configuration.MixedCaseIterations = mixed
		d.MixedCaseSet = true
	}
	return d
}
