package fixtures

import (
	"errors"

	"gitlab.com/equivcheck-2025.net/internal/core/services/adapt"
	"gitlab.com/equivcheck-2025.net/internal/domain"
)

const DivideContract = "divide"

func divide(a, b int) int {
	return a / b
}

// Divide declares an entry point whose reference panics on a zero divisor, so
// candidates must fail the same way.
func Divide() domain.Declaration {
	return domain.Declaration{
		Name:        DivideContract,
		Description: "entry point that panics on some inputs",
		Reference:   adapt.Func2("divide", divide),
		Candidates: map[string]domain.Unit{
			"correct": adapt.Func2("divide", func(a, b int) int { return a / b }),
			"guarded": adapt.Func2("divide", func(a, b int) int {
				if b == 0 {
					return 0
				}
				return a / b
			}),
			"erroring": adapt.Func2("divide", func(a, b int) int {
				if b == 0 {
					panic(errors.New("division by zero"))
				}
				return a / b
			}),
		},
	}
}
