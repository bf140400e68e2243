package testrun

import (
	"context"
	"fmt"
	"math/bits"
	"math/rand"
	"time"

	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/core/ports/secondary"
	"gitlab.com/equivcheck-2025.net/internal/core/services/classifier"
	"gitlab.com/equivcheck-2025.net/internal/core/services/generator"
	"gitlab.com/equivcheck-2025.net/internal/core/services/invoker"
	"gitlab.com/equivcheck-2025.net/internal/core/services/runconfig"
	"gitlab.com/equivcheck-2025.net/internal/core/services/verifier"
	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

// State is a step of the run state machine.
type State string

const (
	StateInit             State = "INIT"
	StateConfiguring      State = "CONFIGURING"
	StateIterating        State = "ITERATING"
	StatePassed           State = "PASSED"
	StateFailed           State = "FAILED"
	StateGenerationFailed State = "GENERATION_FAILED"
)

// ITestRunService drives one equivalence run of a candidate against a reference
type ITestRunService interface {
	// Run executes the iterations of one contract. Configuration and generation
	// errors abort the run and return no report.
	Run(ctx context.Context, c *domain.Contract, reference, candidate domain.Unit, override *domain.RunConfigOverride) (*domain.RunReport, error)
}

var _ ITestRunService = (*TestRunService)(nil)

type TestRunService struct {
	generator generator.IGeneratorService
	invoker   invoker.IInvokerService
	verifier  verifier.IVerifierService
	resolver  runconfig.IRunConfigResolver
	logger    primary.Logger
	metrics   secondary.MetricsRecorder
	clock     func() time.Time
	onState   func(State)
}

type Option func(*TestRunService)

func WithLogger(logger primary.Logger) Option {
	return func(s *TestRunService) {
		s.logger = logger
	}
}

func WithMetrics(metrics secondary.MetricsRecorder) Option {
	return func(s *TestRunService) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithClock sets the time source used for timestamps and for seeding runs
// that do not configure a seed.
func WithClock(clock func() time.Time) Option {
	return func(s *TestRunService) {
		s.clock = clock
	}
}

// WithStateHook registers a callback invoked on every state transition.
func WithStateHook(fn func(State)) Option {
	return func(s *TestRunService) {
		s.onState = fn
	}
}

func NewTestRunService(
	gen generator.IGeneratorService,
	inv invoker.IInvokerService,
	ver verifier.IVerifierService,
	resolver runconfig.IRunConfigResolver,
	logger primary.Logger,
	opts ...Option,
) *TestRunService {
	s := &TestRunService{
		generator: gen,
		invoker:   inv,
		verifier:  ver,
		resolver:  resolver,
		logger:    logger,
		metrics:   secondary.NopMetrics{},
		clock:     time.Now,
		onState:   func(State) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComplexityAt spreads n iterations over [lo, hi], smallest first. The result
// never decreases as i grows.
func ComplexityAt(i, n, lo, hi int) int {
	switch {
	case n <= 1 || hi <= lo || i <= 0:
		return lo
	case i >= n-1:
		return hi
	}
	// span*i needs 128 bits for wide ranges; the quotient fits back in span.
	span := uint64(hi) - uint64(lo)
	prodHi, prodLo := bits.Mul64(span, uint64(i))
	step, _ := bits.Div64(prodHi, prodLo, uint64(n-1))
	return int(uint64(lo) + step)
}

// Run checks candidate against reference. A panic inside the engine ends the
// run with an error instead of taking the process down.
func (s *TestRunService) Run(ctx context.Context, c *domain.Contract, reference, candidate domain.Unit, override *domain.RunConfigOverride) (report *domain.RunReport, err error) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("Test run panicked", "candidate", candidate.Name, "panic", p)
			report, err = nil, fmt.Errorf("test run panicked: %v", p)
		}
	}()
	return s.run(ctx, c, reference, candidate, override)
}

func (s *TestRunService) run(ctx context.Context, c *domain.Contract, reference, candidate domain.Unit, override *domain.RunConfigOverride) (*domain.RunReport, error) {
	s.onState(StateInit)
	if c == nil {
		return nil, fmt.Errorf("%w: nil contract", errs.ErrInvalidContract)
	}

	s.onState(StateConfiguring)
	cfg, err := s.resolver.Resolve(override.ApplyOver(c.Override))
	if err != nil {
		s.logger.Error("Failed to resolve run configuration", "contract", c.Name, "error", err)
		return nil, err
	}

	startedAt := s.clock()
	seed := startedAt.UnixNano()
	if cfg.RandomSeed != nil {
		seed = *cfg.RandomSeed
	}
	rng := rand.New(rand.NewSource(seed))

	report := &domain.RunReport{
		Contract:      c.Name,
		Candidate:     candidate.Name,
		Seed:          seed,
		Configuration: cfg,
		StartedAt:     startedAt,
		Trace:         make([]domain.TraceEntry, 0, cfg.Iterations),
	}

	s.logger.Info("Starting test run",
		"contract", c.Name,
		"candidate", candidate.Name,
		"seed", seed,
		"iterations", cfg.Iterations)

	s.onState(StateIterating)
	for i := 0; i < cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		complexity := ComplexityAt(i, cfg.Iterations, cfg.MinComplexity, cfg.MaxComplexity)
		ours, theirs, err := s.generate(c, reference, candidate, report, cfg, i, complexity, rng)
		if err != nil {
			s.onState(StateGenerationFailed)
			s.metrics.ObserveRun(c.Name, domain.RunStatusGenerationFailed, report.Iterations, s.clock().Sub(startedAt))
			s.logger.Error("Test run aborted", "contract", c.Name, "iteration", i, "error", err)
			return nil, err
		}

		// Taken before either call: a unit that times out may keep mutating
		// its arguments in the background.
		digest := Digest(ours)
		inputs := ours.Snapshot()

		refOut, err := s.call(ctx, c, reference, ours, cfg)
		if err != nil {
			return nil, err
		}
		candOut, err := s.call(ctx, c, candidate, theirs, cfg)
		if err != nil {
			return nil, err
		}

		report.Iterations++
		report.Trace = append(report.Trace, domain.TraceEntry{
			Iteration:  i,
			Complexity: complexity,
			EdgeCase:   ours.EdgeCase,
			SimpleCase: ours.SimpleCase,
			Digest:     digest,
		})

		result := s.verifier.Verify(c, refOut, candOut)
		if !result.Passed {
			report.Status = domain.RunStatusFailed
			report.Failure = domain.NewFailure(ours, inputs, refOut, candOut, result.Reason)
			break
		}
	}

	if report.Status == "" {
		report.Status = domain.RunStatusPassed
		s.onState(StatePassed)
	} else {
		s.onState(StateFailed)
	}
	report.Duration = s.clock().Sub(startedAt)
	s.metrics.ObserveRun(c.Name, report.Status, report.Iterations, report.Duration)

	s.logger.Info("Test run finished",
		"contract", c.Name,
		"candidate", candidate.Name,
		"status", report.Status,
		"iterations", report.Iterations,
		"discards", report.Discards)

	return report, nil
}

// generate draws the case for iteration i once per unit from the same seeds,
// discarding cases the contract's precondition rejects.
func (s *TestRunService) generate(
	c *domain.Contract,
	reference, candidate domain.Unit,
	report *domain.RunReport,
	cfg domain.RunConfiguration,
	i, complexity int,
	rng *rand.Rand,
) (domain.GeneratedCase, domain.GeneratedCase, error) {
	edge, simple := cfg.Phase(i)
	for {
		req := generator.Request{
			Iteration:  i,
			Complexity: complexity,
			EdgeCase:   edge,
			SimpleCase: simple,
			Seeds:      generator.NextSeeds(rng),
		}
		ours, err := s.generator.Generate(c, reference, req)
		if err != nil {
			return domain.GeneratedCase{}, domain.GeneratedCase{}, err
		}

		ok, err := admissible(c, ours)
		if err != nil {
			return domain.GeneratedCase{}, domain.GeneratedCase{}, err
		}
		if !ok {
			report.Discards++
			if report.Discards > cfg.MaxDiscards {
				return domain.GeneratedCase{}, domain.GeneratedCase{}, &errs.GenerationError{
					Reason: fmt.Sprintf("precondition rejected more than %d cases", cfg.MaxDiscards),
				}
			}
			continue
		}

		theirs, err := s.generator.Generate(c, candidate, req)
		if err != nil {
			return domain.GeneratedCase{}, domain.GeneratedCase{}, err
		}
		return ours, theirs, nil
	}
}

func admissible(c *domain.Contract, gc domain.GeneratedCase) (ok bool, err error) {
	if c.Precondition == nil {
		return true, nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = &errs.GenerationError{Reason: fmt.Sprintf("precondition panicked: %v", p)}
		}
	}()
	return c.Precondition(gc), nil
}

func (s *TestRunService) call(ctx context.Context, c *domain.Contract, unit domain.Unit, gc domain.GeneratedCase, cfg domain.RunConfiguration) (domain.TestOutput, error) {
	outcome, err := s.invoker.Invoke(ctx, unit, gc, cfg.Timeout())
	if err != nil {
		return domain.TestOutput{}, fmt.Errorf("failed to invoke %s: %w", unit.Name, err)
	}
	out := classifier.Classify(outcome, gc)
	s.metrics.ObserveInvocation(c.Name, unit.Name, out.Behavior(), out.Duration())
	return out, nil
}
