package verifier

import (
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/domain"
)

// IVerifierService decides whether two classified behaviors are equivalent
type IVerifierService interface {
	// Verify runs the contract's verification procedure, or the default rule
	// when the contract declares none.
	Verify(c *domain.Contract, ours, theirs domain.TestOutput) domain.VerificationResult
}

var _ IVerifierService = (*VerifierService)(nil)

type VerifierService struct {
	logger  primary.Logger
	options []cmp.Option
}

// NewVerifierService builds a verifier whose default rule compares outputs with
// go-cmp, including unexported fields. opts extend the comparison.
func NewVerifierService(logger primary.Logger, opts ...cmp.Option) *VerifierService {
	options := []cmp.Option{
		cmp.Exporter(func(reflect.Type) bool { return true }),
		cmpopts.EquateNaNs(),
		cmpopts.EquateEmpty(),
	}
	return &VerifierService{
		logger:  logger,
		options: append(options, opts...),
	}
}

func (s *VerifierService) Verify(c *domain.Contract, ours, theirs domain.TestOutput) domain.VerificationResult {
	if c != nil && c.Verify != nil {
		return s.custom(c, ours, theirs)
	}
	return s.Default(ours, theirs)
}

// Default applies the built-in rule: tags must match, and returned outputs must
// be structurally equal. Errors of two thrown calls are not compared.
func (s *VerifierService) Default(ours, theirs domain.TestOutput) (result domain.VerificationResult) {
	if ours.Behavior() != theirs.Behavior() {
		return domain.Fail(fmt.Sprintf("behavior mismatch: reference %s, candidate %s%s",
			ours.Behavior(), theirs.Behavior(), describeErrs(ours, theirs)))
	}
	if ours.Behavior() != domain.BehaviorReturned {
		return domain.Pass()
	}

	defer func() {
		if p := recover(); p != nil {
			result = domain.Fail(fmt.Sprintf("outputs could not be compared: %v", p))
		}
	}()
	if cmp.Equal(ours.Output(), theirs.Output(), s.options...) {
		return domain.Pass()
	}
	return domain.Fail(fmt.Sprintf("output mismatch (-reference +candidate):\n%s",
		cmp.Diff(ours.Output(), theirs.Output(), s.options...)))
}

func (s *VerifierService) custom(c *domain.Contract, ours, theirs domain.TestOutput) (result domain.VerificationResult) {
	defer func() {
		if p := recover(); p != nil {
			if f, ok := p.(failNow); ok {
				result = domain.Fail(f.reason)
				return
			}
			s.logger.Debug("Verification panicked", "contract", c.Name, "panic", p)
			result = domain.Fail(fmt.Sprintf("verification panicked: %v", p))
		}
	}()
	if err := c.Verify(ours, theirs); err != nil {
		return domain.Fail(err.Error())
	}
	return domain.Pass()
}

func describeErrs(ours, theirs domain.TestOutput) string {
	switch {
	case ours.Err() != nil:
		return fmt.Sprintf(" (reference error: %v)", ours.Err())
	case theirs.Err() != nil:
		return fmt.Sprintf(" (candidate error: %v)", theirs.Err())
	}
	return ""
}
