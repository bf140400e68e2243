package testrun

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"gitlab.com/equivcheck-2025.net/internal/adapter/logging"
	"gitlab.com/equivcheck-2025.net/internal/core/services/adapt"
	"gitlab.com/equivcheck-2025.net/internal/core/services/catalog"
	"gitlab.com/equivcheck-2025.net/internal/core/services/generator"
	"gitlab.com/equivcheck-2025.net/internal/core/services/invoker"
	"gitlab.com/equivcheck-2025.net/internal/core/services/runconfig"
	"gitlab.com/equivcheck-2025.net/internal/core/services/verifier"
	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/fixtures"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

type harness struct {
	svc     *TestRunService
	catalog *catalog.CatalogService
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	logger := logging.NewNopLogger()
	resolver := runconfig.NewResolver(domain.RunConfiguration{
		Iterations:    64,
		MinComplexity: 0,
		MaxComplexity: 20,
		TimeoutMillis: 1000,
		MaxDiscards:   256,
	}, runconfig.Fixed{})
	cat := catalog.NewCatalogService(resolver, logger)
	require.NoError(t, fixtures.Register(cat))

	svc := NewTestRunService(
		generator.NewGeneratorService(logger),
		invoker.NewInvokerService(logger),
		verifier.NewVerifierService(logger),
		resolver,
		logger,
		opts...,
	)
	return &harness{svc: svc, catalog: cat}
}

func (h *harness) run(t *testing.T, contract, candidate string, override *domain.RunConfigOverride) (*domain.RunReport, error) {
	t.Helper()
	c, ref, cand, err := h.catalog.Lookup(contract, candidate)
	require.NoError(t, err)
	return h.svc.Run(context.Background(), c, ref, cand, override)
}

func seeded(seed int64) *domain.RunConfigOverride {
	return &domain.RunConfigOverride{RandomSeed: domain.Ptr(seed)}
}

func TestRun_Fixtures(t *testing.T) {
	tests := []struct {
		contract   string
		candidate  string
		override   *domain.RunConfigOverride
		status     domain.RunStatus
		iterations int
	}{
		{fixtures.ZeroContract, "correct", nil, domain.RunStatusPassed, 32},
		{fixtures.ZeroContract, "off-by-one", nil, domain.RunStatusFailed, 1},
		{fixtures.StaticContract, "correct", nil, domain.RunStatusPassed, 64},
		{fixtures.StaticContract, "sum", nil, domain.RunStatusFailed, 1},
		{fixtures.WidgetContract, "correct", nil, domain.RunStatusPassed, 64},
		{fixtures.WidgetContract, "mismatched", nil, domain.RunStatusFailed, 1},
		{fixtures.StandaloneContract, "correct", nil, domain.RunStatusPassed, 64},
		{fixtures.StandaloneContract, "doubled", &domain.RunConfigOverride{Iterations: domain.Ptr(256)}, domain.RunStatusFailed, 0},
		{fixtures.PreconditionContract, "correct", nil, domain.RunStatusPassed, 64},
		{fixtures.PreconditionContract, "unguarded", nil, domain.RunStatusPassed, 64},
		{fixtures.PreconditionContract, "last-letter", &domain.RunConfigOverride{Iterations: domain.Ptr(256)}, domain.RunStatusFailed, 0},
		{fixtures.DivideContract, "correct", nil, domain.RunStatusPassed, 64},
		{fixtures.DivideContract, "erroring", nil, domain.RunStatusPassed, 64},
	}

	h := newHarness(t)
	for _, tt := range tests {
		t.Run(tt.contract+"/"+tt.candidate, func(t *testing.T) {
			override := tt.override.ApplyOver(seeded(1))
			report, err := h.run(t, tt.contract, tt.candidate, override)
			require.NoError(t, err)
			require.NotNil(t, report)
			assert.Equal(t, tt.status, report.Status)
			assert.Equal(t, int64(1), report.Seed)
			if tt.iterations > 0 {
				assert.Equal(t, tt.iterations, report.Iterations)
			}
			if tt.status == domain.RunStatusFailed {
				require.NotNil(t, report.Failure)
				assert.NotEmpty(t, report.Failure.Reason)
				assert.Equal(t, report.Iterations-1, report.Failure.Iteration)
			} else {
				assert.Nil(t, report.Failure)
			}
		})
	}
}

func TestRun_FailureAtFirstIteration(t *testing.T) {
	h := newHarness(t)

	// Complexity starts at zero, so the first case divides zero by zero.
	report, err := h.run(t, fixtures.DivideContract, "guarded", &domain.RunConfigOverride{
		EdgeCaseIterations:   domain.Ptr(0),
		SimpleCaseIterations: domain.Ptr(0),
		MixedCaseIterations:  domain.Ptr(0),
		RandomSeed:           domain.Ptr(int64(99)),
	})
	require.NoError(t, err)
	require.Equal(t, domain.RunStatusFailed, report.Status)
	assert.Equal(t, 1, report.Iterations)

	f := report.Failure
	require.NotNil(t, f)
	assert.Equal(t, 0, f.Iteration)
	assert.Equal(t, 0, f.Complexity)
	assert.Equal(t, domain.BehaviorThrew, f.Reference.Behavior())
	assert.Equal(t, domain.BehaviorReturned, f.Candidate.Behavior())
	assert.Equal(t, []any{0, 0}, f.Case.Args)
	assert.Equal(t, []string{"0", "0"}, f.Inputs.Args)
	assert.Contains(t, f.Reason, "behavior mismatch")
}

func TestRun_ConfigurationError(t *testing.T) {
	var states []State
	h := newHarness(t, WithStateHook(func(s State) { states = append(states, s) }))

	report, err := h.run(t, fixtures.ZeroContract, "correct", &domain.RunConfigOverride{
		MinComplexity: domain.Ptr(10),
		MaxComplexity: domain.Ptr(5),
	})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
	assert.Equal(t, []State{StateInit, StateConfiguring}, states)
}

func TestRun_States(t *testing.T) {
	var states []State
	h := newHarness(t, WithStateHook(func(s State) { states = append(states, s) }))

	_, err := h.run(t, fixtures.ZeroContract, "correct", nil)
	require.NoError(t, err)
	assert.Equal(t, []State{StateInit, StateConfiguring, StateIterating, StatePassed}, states)

	states = nil
	_, err = h.run(t, fixtures.ZeroContract, "off-by-one", nil)
	require.NoError(t, err)
	assert.Equal(t, []State{StateInit, StateConfiguring, StateIterating, StateFailed}, states)
}

func TestRun_FailFast(t *testing.T) {
	h := newHarness(t)
	var calls atomic.Int32
	_, err := h.catalog.Register(domain.Declaration{
		Name:      "fail-fast",
		Reference: adapt.Func1("f", func(int) int { return 0 }),
		Candidates: map[string]domain.Unit{
			"fifth": adapt.Func1("f", func(int) int {
				if calls.Add(1) == 5 {
					return 1
				}
				return 0
			}),
		},
	})
	require.NoError(t, err)

	report, err := h.run(t, "fail-fast", "fifth", seeded(3))
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusFailed, report.Status)
	assert.Equal(t, 5, report.Iterations)
	assert.Len(t, report.Trace, 5)
	assert.Equal(t, 4, report.Failure.Iteration)
	assert.Equal(t, int32(5), calls.Load())
}

func TestRun_Deterministic(t *testing.T) {
	h := newHarness(t)

	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		contract := rapid.SampledFrom([]string{
			fixtures.DivideContract,
			fixtures.PreconditionContract,
			fixtures.StandaloneContract,
		}).Draw(t, "contract")
		override := &domain.RunConfigOverride{RandomSeed: &seed, Iterations: domain.Ptr(16)}

		c, ref, cand, err := h.catalog.Lookup(contract, "correct")
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		first, err := h.svc.Run(context.Background(), c, ref, cand, override)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		second, err := h.svc.Run(context.Background(), c, ref, cand, override)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if first.Status != second.Status || first.Discards != second.Discards {
			t.Fatalf("runs diverged: %s/%d vs %s/%d", first.Status, first.Discards, second.Status, second.Discards)
		}
		if len(first.Trace) != len(second.Trace) {
			t.Fatalf("trace lengths differ: %d vs %d", len(first.Trace), len(second.Trace))
		}
		for i := range first.Trace {
			if first.Trace[i] != second.Trace[i] {
				t.Fatalf("iteration %d differs: %+v vs %+v", i, first.Trace[i], second.Trace[i])
			}
		}
	})
}

func TestRun_DifferentSeedsDiffer(t *testing.T) {
	h := newHarness(t)
	a, err := h.run(t, fixtures.DivideContract, "correct", seeded(1))
	require.NoError(t, err)
	b, err := h.run(t, fixtures.DivideContract, "correct", seeded(2))
	require.NoError(t, err)
	assert.NotEqual(t, a.Trace, b.Trace)
}

func TestRun_ComplexityNeverDecreases(t *testing.T) {
	h := newHarness(t)
	report, err := h.run(t, fixtures.DivideContract, "correct", &domain.RunConfigOverride{
		MinComplexity: domain.Ptr(3),
		MaxComplexity: domain.Ptr(40),
		RandomSeed:    domain.Ptr(int64(5)),
	})
	require.NoError(t, err)
	require.Len(t, report.Trace, 64)

	assert.Equal(t, 3, report.Trace[0].Complexity)
	assert.Equal(t, 40, report.Trace[63].Complexity)
	for i := 1; i < len(report.Trace); i++ {
		assert.GreaterOrEqual(t, report.Trace[i].Complexity, report.Trace[i-1].Complexity)
	}
	// Four edge-case, four simple-case and four mixed iterations lead the run.
	for i, entry := range report.Trace {
		assert.Equal(t, i < 4 || (i >= 8 && i < 12), entry.EdgeCase, "iteration %d", i)
		assert.Equal(t, i >= 4 && i < 12, entry.SimpleCase, "iteration %d", i)
	}
}

func TestRun_SimpleCases(t *testing.T) {
	h := newHarness(t)
	var seen []int
	var mu sync.Mutex
	_, err := h.catalog.Register(domain.Declaration{
		Name:      "simple-ints",
		Reference: adapt.Func1("f", func(n int) int { return n }),
		Candidates: map[string]domain.Unit{
			"recording": adapt.Func1("f", func(n int) int {
				mu.Lock()
				seen = append(seen, n)
				mu.Unlock()
				return n
			}),
		},
	})
	require.NoError(t, err)

	report, err := h.run(t, "simple-ints", "recording", &domain.RunConfigOverride{
		Iterations:           domain.Ptr(20),
		EdgeCaseIterations:   domain.Ptr(0),
		SimpleCaseIterations: domain.Ptr(10),
		MixedCaseIterations:  domain.Ptr(0),
		MinComplexity:        domain.Ptr(1000),
		MaxComplexity:        domain.Ptr(1000),
		RandomSeed:           domain.Ptr(int64(4)),
	})
	require.NoError(t, err)
	require.Equal(t, domain.RunStatusPassed, report.Status)
	require.Len(t, seen, 20)

	for i, n := range seen[:10] {
		assert.Contains(t, []int{-1, 0, 1, 2}, n, "iteration %d", i)
		assert.True(t, report.Trace[i].SimpleCase)
	}
	for _, entry := range report.Trace[10:] {
		assert.False(t, entry.SimpleCase)
		assert.False(t, entry.EdgeCase)
	}
}

func TestComplexityAt(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 5000).Draw(t, "n")
		lo := rapid.IntRange(0, 1000).Draw(t, "lo")
		hi := rapid.IntRange(lo, lo+1000).Draw(t, "hi")

		prev := lo
		for i := 0; i < n; i++ {
			c := ComplexityAt(i, n, lo, hi)
			if c < prev || c < lo || c > hi {
				t.Fatalf("ComplexityAt(%d, %d, %d, %d) = %d after %d", i, n, lo, hi, c, prev)
			}
			prev = c
		}
		if n > 1 && prev != hi {
			t.Fatalf("last iteration at %d, want %d", prev, hi)
		}
	})
}

func TestComplexityAt_WideRange(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		lo, hi int
	}{
		{"zero to 2^62", 64, 0, 1 << 62},
		{"full int range", 1000, 0, int(^uint(0) >> 1)},
		{"negative low bound", 7, -(1 << 62), 1 << 62},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := tt.lo
			for i := 0; i < tt.n; i++ {
				c := ComplexityAt(i, tt.n, tt.lo, tt.hi)
				require.GreaterOrEqual(t, c, prev, "iteration %d", i)
				require.LessOrEqual(t, c, tt.hi, "iteration %d", i)
				prev = c
			}
			assert.Equal(t, tt.hi, prev)
		})
	}
	assert.Equal(t, (1<<62)/2, ComplexityAt(1, 3, 0, 1<<62))
}

func TestRun_TimeoutIsolation(t *testing.T) {
	h := newHarness(t)

	start := time.Now()
	report, err := h.run(t, fixtures.StaticContract, "hang", &domain.RunConfigOverride{
		TimeoutMillis: domain.Ptr(int64(30)),
		RandomSeed:    domain.Ptr(int64(1)),
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	require.Equal(t, domain.RunStatusFailed, report.Status)
	assert.Equal(t, 1, report.Iterations)
	assert.Equal(t, domain.BehaviorReturned, report.Failure.Reference.Behavior())
	assert.Equal(t, domain.BehaviorTimedOut, report.Failure.Candidate.Behavior())
	assert.Equal(t, domain.BehaviorTimedOut, report.Failure.CandidateOutput.Behavior)
}

func TestRun_BothTimeOut(t *testing.T) {
	h := newHarness(t)
	hang := adapt.Func1("f", func(int) int { select {} })
	_, err := h.catalog.Register(domain.Declaration{
		Name:       "both-hang",
		Reference:  hang,
		Candidates: map[string]domain.Unit{"hang": hang},
	})
	require.NoError(t, err)

	report, err := h.run(t, "both-hang", "hang", &domain.RunConfigOverride{
		Iterations:    domain.Ptr(2),
		TimeoutMillis: domain.Ptr(int64(10)),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusPassed, report.Status)
	assert.Equal(t, 2, report.Iterations)
}

func TestRun_Preconditions(t *testing.T) {
	h := newHarness(t)
	_, err := h.catalog.Register(domain.Declaration{
		Name:      "even-only",
		Reference: adapt.Func1("half", func(n int) int { return n / 2 }),
		Candidates: map[string]domain.Unit{
			"strict": adapt.Func1("half", func(n int) int {
				if n%2 != 0 {
					panic("odd input")
				}
				return n / 2
			}),
		},
		Precondition: func(c domain.GeneratedCase) bool {
			return c.Args[0].(int)%2 == 0
		},
	})
	require.NoError(t, err)

	report, err := h.run(t, "even-only", "strict", &domain.RunConfigOverride{
		Iterations:    domain.Ptr(200),
		MinComplexity: domain.Ptr(5),
		MaxDiscards:   domain.Ptr(2000),
		RandomSeed:    domain.Ptr(int64(8)),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusPassed, report.Status)
	assert.Equal(t, 200, report.Iterations)
	assert.Positive(t, report.Discards)
}

func TestRun_TooManyDiscards(t *testing.T) {
	var states []State
	h := newHarness(t, WithStateHook(func(s State) { states = append(states, s) }))
	_, err := h.catalog.Register(domain.Declaration{
		Name:         "never",
		Reference:    adapt.Func1("f", func(n int) int { return n }),
		Candidates:   map[string]domain.Unit{"same": adapt.Func1("f", func(n int) int { return n })},
		Precondition: func(domain.GeneratedCase) bool { return false },
	})
	require.NoError(t, err)

	report, err := h.run(t, "never", "same", &domain.RunConfigOverride{MaxDiscards: domain.Ptr(10)})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, errs.ErrGeneration)
	assert.Equal(t, StateGenerationFailed, states[len(states)-1])
}

func TestRun_GenerationFailure(t *testing.T) {
	var states []State
	h := newHarness(t, WithStateHook(func(s State) { states = append(states, s) }))
	_, err := h.catalog.Register(domain.Declaration{
		Name:       "channels",
		Reference:  adapt.Func1("f", func(ch chan int) int { return 0 }),
		Candidates: map[string]domain.Unit{"same": adapt.Func1("f", func(ch chan int) int { return 0 })},
	})
	require.NoError(t, err)

	report, err := h.run(t, "channels", "same", nil)
	assert.Nil(t, report)

	var genErr *errs.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "chan int", genErr.Type)
	assert.Equal(t, []State{StateInit, StateConfiguring, StateIterating, StateGenerationFailed}, states)
}

func TestRun_Cancelled(t *testing.T) {
	h := newHarness(t)
	c, ref, cand, err := h.catalog.Lookup(fixtures.DivideContract, "correct")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := h.svc.Run(ctx, c, ref, cand, nil)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_SeedFromClock(t *testing.T) {
	now := time.Unix(1700000000, 123)
	h := newHarness(t, WithClock(func() time.Time { return now }))

	report, err := h.run(t, fixtures.ZeroContract, "correct", nil)
	require.NoError(t, err)
	assert.Equal(t, now.UnixNano(), report.Seed)
	assert.Equal(t, now, report.StartedAt)
	assert.Nil(t, report.Configuration.RandomSeed)
}

type recordingMetrics struct {
	mu          sync.Mutex
	invocations map[domain.Behavior]int
	runs        []domain.RunStatus
}

func (m *recordingMetrics) ObserveInvocation(_, _ string, behavior domain.Behavior, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invocations[behavior]++
}

func (m *recordingMetrics) ObserveRun(_ string, status domain.RunStatus, _ int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, status)
}

func TestRun_Metrics(t *testing.T) {
	rec := &recordingMetrics{invocations: make(map[domain.Behavior]int)}
	h := newHarness(t, WithMetrics(rec))

	_, err := h.run(t, fixtures.ZeroContract, "correct", nil)
	require.NoError(t, err)
	_, err = h.run(t, fixtures.ZeroContract, "off-by-one", nil)
	require.NoError(t, err)

	assert.Equal(t, 66, rec.invocations[domain.BehaviorReturned])
	assert.Equal(t, []domain.RunStatus{domain.RunStatusPassed, domain.RunStatusFailed}, rec.runs)
}

type panickingMetrics struct{}

func (panickingMetrics) ObserveInvocation(string, string, domain.Behavior, time.Duration) {
	panic("metrics backend gone")
}

func (panickingMetrics) ObserveRun(string, domain.RunStatus, int, time.Duration) {}

func TestRun_EnginePanicBecomesError(t *testing.T) {
	h := newHarness(t, WithMetrics(panickingMetrics{}))

	report, err := h.run(t, fixtures.ZeroContract, "correct", nil)
	assert.Nil(t, report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics backend gone")
}

func TestRun_TimedOutArgsNotRead(t *testing.T) {
	h := newHarness(t)
	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })

	_, err := h.catalog.Register(domain.Declaration{
		Name:      "mutating-hang",
		Reference: adapt.Func2("f", func(n int, s []int) int { return n }),
		Candidates: map[string]domain.Unit{
			"scribbler": adapt.Func2("f", func(n int, s []int) int {
				for {
					select {
					case <-stop:
						return n
					default:
					}
					for i := range s {
						s[i]++
					}
				}
			}),
		},
	})
	require.NoError(t, err)

	report, err := h.run(t, "mutating-hang", "scribbler", &domain.RunConfigOverride{
		TimeoutMillis: domain.Ptr(int64(20)),
		RandomSeed:    domain.Ptr(int64(6)),
	})
	require.NoError(t, err)
	require.Equal(t, domain.RunStatusFailed, report.Status)

	f := report.Failure
	require.NotNil(t, f)
	assert.Equal(t, domain.BehaviorTimedOut, f.CandidateOutput.Behavior)
	assert.Empty(t, f.CandidateOutput.Args)
	assert.Len(t, f.Inputs.Args, 2)
	assert.Len(t, f.ReferenceOutput.Args, 2)
	assert.Equal(t, Digest(f.Case), report.Trace[0].Digest)
}

func TestRun_NilContract(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Run(context.Background(), nil, domain.Unit{}, domain.Unit{}, nil)
	assert.True(t, errors.Is(err, errs.ErrInvalidContract))
}

func TestDigest(t *testing.T) {
	a := domain.GeneratedCase{Complexity: 1, Args: []any{1, "x"}}
	b := domain.GeneratedCase{Complexity: 1, Args: []any{1, "x"}, Iteration: 9}
	c := domain.GeneratedCase{Complexity: 1, Args: []any{2, "x"}}

	assert.Equal(t, Digest(a), Digest(b))
	assert.NotEqual(t, Digest(a), Digest(c))
	assert.Len(t, Digest(a), 32)
}
