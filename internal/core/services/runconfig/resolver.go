package runconfig

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

// phaseDivisor derives the share of each leading phase of a run when neither
// layer sets it.
const phaseDivisor = 16

// Fixed marks the phase counts the defaults set outright. Unfixed ones are
// derived from the iteration count.
type Fixed struct {
	EdgeCases   bool
	SimpleCases bool
	MixedCases  bool
}

// IRunConfigResolver merges defaults with a per-contract override
type IRunConfigResolver interface {
	Resolve(override *domain.RunConfigOverride) (domain.RunConfiguration, error)
	Defaults() domain.RunConfiguration
}

var _ IRunConfigResolver = (*Resolver)(nil)

type Resolver struct {
	defaults domain.RunConfiguration
	fixed    Fixed
	validate *validator.Validate
}

// NewResolver keeps the process-wide defaults.
func NewResolver(defaults domain.RunConfiguration, fixed Fixed) *Resolver {
	return &Resolver{
		defaults: defaults,
		fixed:    fixed,
		validate: validator.New(),
	}
}

func (r *Resolver) Defaults() domain.RunConfiguration {
	return r.defaults
}

// Resolve returns exactly one effective value per field: the override's when
// set, the default's otherwise.
func (r *Resolver) Resolve(override *domain.RunConfigOverride) (domain.RunConfiguration, error) {
	cfg := r.defaults
	fixed := r.fixed

	if override != nil {
		if override.Iterations != nil {
			cfg.Iterations = *override.Iterations
		}
		if override.MinComplexity != nil {
			cfg.MinComplexity = *override.MinComplexity
		}
		if override.MaxComplexity != nil {
			cfg.MaxComplexity = *override.MaxComplexity
		}
		if override.TimeoutMillis != nil {
			cfg.TimeoutMillis = *override.TimeoutMillis
		}
		if override.RandomSeed != nil {
			seed := *override.RandomSeed
			cfg.RandomSeed = &seed
		}
		if override.MaxDiscards != nil {
			cfg.MaxDiscards = *override.MaxDiscards
		}
		if override.EdgeCaseIterations != nil {
			cfg.EdgeCaseIterations = *override.EdgeCaseIterations
			fixed.EdgeCases = true
		}
		if override.SimpleCaseIterations != nil {
			cfg.SimpleCaseIterations = *override.SimpleCaseIterations
			fixed.SimpleCases = true
		}
		if override.MixedCaseIterations != nil {
			cfg.MixedCaseIterations = *override.MixedCaseIterations
			fixed.MixedCases = true
		}
	}
	if !fixed.EdgeCases {
		cfg.EdgeCaseIterations = cfg.Iterations / phaseDivisor
	}
	if !fixed.SimpleCases {
		cfg.SimpleCaseIterations = cfg.Iterations / phaseDivisor
	}
	if !fixed.MixedCases {
		cfg.MixedCaseIterations = cfg.Iterations / phaseDivisor
	}

	if err := r.Validate(cfg); err != nil {
		return domain.RunConfiguration{}, err
	}
	return cfg, nil
}

// Validate checks the invariants of an effective configuration.
func (r *Resolver) Validate(cfg domain.RunConfiguration) error {
	err := r.validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &errs.ConfigurationError{Field: fe.Field(), Reason: describe(fe)}
	}
	return &errs.ConfigurationError{Reason: err.Error()}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be at most %s, got %v", fe.Param(), fe.Value())
	case "gtefield":
		return fmt.Sprintf("must not be less than %s, got %v", fe.Param(), fe.Value())
	case "ltefield":
		return fmt.Sprintf("must not exceed %s, got %v", fe.Param(), fe.Value())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
