package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/equivcheck-2025.net/internal/adapter/logging"
	"gitlab.com/equivcheck-2025.net/internal/config"
	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/fixtures"
)

func defaults() *config.RunDefaults {
	return &config.RunDefaults{
		Configuration: domain.RunConfiguration{
			Iterations:    16,
			MaxComplexity: 10,
			TimeoutMillis: 1000,
			MaxDiscards:   64,
		},
	}
}

func configOf(t *testing.T, e *Engine, name string) domain.RunConfiguration {
	t.Helper()
	infos, err := e.Catalog.List()
	require.NoError(t, err)
	for _, info := range infos {
		if info.Name == name {
			return info.Configuration
		}
	}
	t.Fatalf("contract %s not listed", name)
	return domain.RunConfiguration{}
}

func TestNewEngine(t *testing.T) {
	e, err := NewEngine(defaults(), nil, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Len(t, e.Catalog.Names(), len(fixtures.Declarations()))
	assert.Equal(t, 32, configOf(t, e, fixtures.ZeroContract).Iterations)
	assert.Equal(t, 16, configOf(t, e, fixtures.DivideContract).Iterations)
}

func TestNewEngine_FileOverrides(t *testing.T) {
	e, err := NewEngine(defaults(), map[string]*domain.RunConfigOverride{
		fixtures.ZeroContract:   {MaxDiscards: domain.Ptr(3)},
		fixtures.DivideContract: {Iterations: domain.Ptr(8)},
		"unknown":               {Iterations: domain.Ptr(1)},
	}, logging.NewNopLogger())
	require.NoError(t, err)

	zero := configOf(t, e, fixtures.ZeroContract)
	assert.Equal(t, 32, zero.Iterations, "declared override kept")
	assert.Equal(t, 3, zero.MaxDiscards)
	assert.Equal(t, 8, configOf(t, e, fixtures.DivideContract).Iterations)

	// A stored override lands on top of the file one.
	require.NoError(t, e.Catalog.ApplyOverride(fixtures.ZeroContract, &domain.RunConfigOverride{
		Iterations: domain.Ptr(4),
	}))
	zero = configOf(t, e, fixtures.ZeroContract)
	assert.Equal(t, 4, zero.Iterations)
	assert.Equal(t, 3, zero.MaxDiscards)
}

func TestNewEngine_Invalid(t *testing.T) {
	bad := defaults()
	bad.Configuration.Iterations = 0
	_, err := NewEngine(bad, nil, logging.NewNopLogger())
	assert.Error(t, err)

	_, err = NewEngine(defaults(), map[string]*domain.RunConfigOverride{
		fixtures.ZeroContract: {TimeoutMillis: domain.Ptr(int64(-1))},
	}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestEngine_ClampCandidates(t *testing.T) {
	e, err := NewEngine(defaults(), nil, logging.NewNopLogger())
	require.NoError(t, err)

	tests := []struct {
		candidate string
		status    domain.RunStatus
	}{
		{"correct", domain.RunStatusPassed},
		{"ordered", domain.RunStatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			c, ref, cand, err := e.Catalog.Lookup(fixtures.ClampContract, tt.candidate)
			require.NoError(t, err)
			report, err := e.TestRun.Run(context.Background(), c, ref, cand, &domain.RunConfigOverride{
				Iterations: domain.Ptr(64),
				RandomSeed: domain.Ptr(int64(11)),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.status, report.Status)
		})
	}
}
