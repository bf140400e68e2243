package fixtures

import (
	"gitlab.com/equivcheck-2025.net/internal/core/services/adapt"
	"gitlab.com/equivcheck-2025.net/internal/domain"
)

const ZeroContract = "zero"

func zero() int {
	return 0
}

// Zero declares a parameterless static entry point checked by the default rule.
// Its override trims the run to 32 iterations.
func Zero() domain.Declaration {
	return domain.Declaration{
		Name:        ZeroContract,
		Description: "static entry point without parameters returning a primitive",
		Reference:   adapt.Func0("zero", zero),
		Candidates: map[string]domain.Unit{
			"correct":    adapt.Func0("zero", func() int { return 0 }),
			"off-by-one": adapt.Func0("zero", func() int { return 1 }),
		},
		Override: &domain.RunConfigOverride{
			Iterations: domain.Ptr(32),
		},
	}
}
