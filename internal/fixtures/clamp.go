package fixtures

import (
	"gitlab.com/equivcheck-2025.net/internal/core/services/adapt"
	"gitlab.com/equivcheck-2025.net/internal/domain"
)

const ClampContract = "clamp"

// clamp bounds x into the range spanned by a and b, in either order.
func clamp(x, a, b int8) int8 {
	if a > b {
		a, b = b, a
	}
	switch {
	case x < a:
		return a
	case x > b:
		return b
	default:
		return x
	}
}

// Clamp declares a three-argument entry point. The "ordered" candidate assumes
// a <= b, which small inputs like (0, 1, -1) expose.
func Clamp() domain.Declaration {
	return domain.Declaration{
		Name:        ClampContract,
		Description: "three-argument entry point with an ordering bug",
		Reference:   adapt.Func3("clamp", clamp),
		Candidates: map[string]domain.Unit{
			"correct": adapt.Func3("clamp", clamp),
			"ordered": adapt.Func3("clamp", func(x, a, b int8) int8 {
				if x < a {
					return a
				}
				if x > b {
					return b
				}
				return x
			}),
		},
	}
}
