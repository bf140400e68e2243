package fixtures

import (
	"math/rand"
	"reflect"

	"github.com/stretchr/testify/assert"

	"gitlab.com/equivcheck-2025.net/internal/core/services/adapt"
	"gitlab.com/equivcheck-2025.net/internal/core/services/verifier"
	"gitlab.com/equivcheck-2025.net/internal/domain"
)

const StaticContract = "static-test"

var staticValue = 0

func staticTest(_ []int) int {
	return staticValue
}

// Static declares a static entry point over a list with a custom list
// generator, a custom verification and a one second timeout.
func Static() domain.Declaration {
	return domain.Declaration{
		Name:        StaticContract,
		Description: "static entry point with a custom generator and a timeout",
		Reference:   adapt.Func1("test", staticTest),
		Candidates: map[string]domain.Unit{
			"correct": adapt.Func1("test", func(_ []int) int { return 0 }),
			"sum": adapt.Func1("test", func(ss []int) int {
				total := 0
				for _, s := range ss {
					total += s
				}
				return total
			}),
			"hang": adapt.Func1("test", func(_ []int) int {
				select {}
			}),
		},
		Generators: map[reflect.Type]domain.GeneratorFunc{
			reflect.TypeFor[[]int](): func(_ int, r *rand.Rand) (any, error) {
				return []int{r.Int()}, nil
			},
		},
		Verify: func(ours, theirs domain.TestOutput) error {
			rec := verifier.NewRecorder()
			assert.Equal(rec, domain.BehaviorReturned, ours.Behavior())
			assert.Equal(rec, ours.Output(), theirs.Output())
			return rec.Err()
		},
		Override: &domain.RunConfigOverride{
			TimeoutMillis: domain.Ptr(int64(1000)),
		},
	}
}
