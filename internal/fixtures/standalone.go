package fixtures

import (
	"fmt"
	"math/rand"
	"strconv"

	"github.com/stretchr/testify/assert"

	"gitlab.com/equivcheck-2025.net/internal/core/services/adapt"
	"gitlab.com/equivcheck-2025.net/internal/core/services/verifier"
	"gitlab.com/equivcheck-2025.net/internal/domain"
)

const StandaloneContract = "standalone-verify"

type squarer interface {
	StringifyA() string
	SquareA() int
}

// StandaloneA is the reference receiver. Runs generate receivers and verify
// them without calling an entry point.
type StandaloneA struct {
	a int
}

func (s *StandaloneA) StringifyA() string {
	return strconv.Itoa(s.a)
}

func (s *StandaloneA) SquareA() int {
	return s.a * s.a
}

type candidateA struct {
	a       int
	doubled bool
}

func (c *candidateA) StringifyA() string {
	return fmt.Sprintf("%d", c.a)
}

func (c *candidateA) SquareA() int {
	if c.doubled {
		return c.a * 2
	}
	return c.a * c.a
}

// Standalone declares a receiver-only contract.
func Standalone() domain.Declaration {
	return domain.Declaration{
		Name:        StandaloneContract,
		Description: "receivers verified without an entry point",
		Reference: adapt.Receiver(func(complexity int, r *rand.Rand) *StandaloneA {
			return &StandaloneA{a: r.Intn(complexity + 1)}
		}),
		Candidates: map[string]domain.Unit{
			"correct": adapt.Receiver(func(complexity int, r *rand.Rand) *candidateA {
				return &candidateA{a: r.Intn(complexity + 1)}
			}),
			"doubled": adapt.Receiver(func(complexity int, r *rand.Rand) *candidateA {
				return &candidateA{a: r.Intn(complexity + 1), doubled: true}
			}),
		},
		Verify: func(ours, theirs domain.TestOutput) error {
			rec := verifier.NewRecorder()
			ourA, ok := ours.Receiver().(squarer)
			if !assert.True(rec, ok, "reference receiver") {
				return rec.Err()
			}
			theirA, ok := theirs.Receiver().(squarer)
			if !assert.True(rec, ok, "candidate receiver") {
				return rec.Err()
			}
			assert.Equal(rec, ourA.StringifyA(), theirA.StringifyA())
			assert.Equal(rec, ourA.SquareA(), theirA.SquareA())
			return rec.Err()
		},
	}
}
