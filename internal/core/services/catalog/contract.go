package catalog

import (
	"fmt"

	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

// derive builds the contract from the reference unit's shape.
func derive(decl domain.Declaration, reference domain.Unit) (*domain.Contract, error) {
	c := &domain.Contract{
		Name:         decl.Name,
		Description:  decl.Description,
		Receiver:     reference.ReceiverType,
		Generators:   decl.Generators,
		Verify:       decl.Verify,
		Precondition: decl.Precondition,
		Override:     decl.Override,
	}

	if reference.Signature == nil {
		if reference.ReceiverType == nil {
			return nil, fmt.Errorf("%w: %s: reference has neither entry point nor receiver", errs.ErrInvalidContract, decl.Name)
		}
		if decl.Verify == nil {
			return nil, fmt.Errorf("%w: %s: receiver-only contracts need a verification procedure", errs.ErrInvalidContract, decl.Name)
		}
		c.Standalone = true
		return c, nil
	}

	if reference.Call == nil {
		return nil, fmt.Errorf("%w: %s: reference entry point is not callable", errs.ErrInvalidContract, decl.Name)
	}
	c.EntryPoint = reference.Signature.Name
	c.Params = append(c.Params, reference.Signature.Params...)
	c.Returns = reference.Signature.Returns
	return c, nil
}

// matches checks that a candidate has the same callable shape as the reference.
// Receiver types differ between implementations; only their presence must agree.
func matches(c *domain.Contract, reference, candidate domain.Unit) error {
	if reference.Static() != candidate.Static() {
		return fmt.Errorf("%w: receiver presence differs", errs.ErrContractMismatch)
	}
	if c.Standalone {
		if candidate.Signature != nil {
			return fmt.Errorf("%w: receiver-only contract, candidate declares entry point %s", errs.ErrContractMismatch, candidate.Signature.Name)
		}
		return nil
	}

	sig := candidate.Signature
	if sig == nil || candidate.Call == nil {
		return fmt.Errorf("%w: candidate has no entry point", errs.ErrContractMismatch)
	}
	if sig.Name != c.EntryPoint {
		return fmt.Errorf("%w: entry point %s, want %s", errs.ErrContractMismatch, sig.Name, c.EntryPoint)
	}
	if len(sig.Params) != len(c.Params) {
		return fmt.Errorf("%w: %d parameters, want %d", errs.ErrContractMismatch, len(sig.Params), len(c.Params))
	}
	for i, p := range sig.Params {
		if p != c.Params[i] {
			return fmt.Errorf("%w: parameter %d is %s, want %s", errs.ErrContractMismatch, i, p, c.Params[i])
		}
	}
	if sig.Returns != c.Returns {
		return fmt.Errorf("%w: returns %v, want %v", errs.ErrContractMismatch, sig.Returns, c.Returns)
	}
	return nil
}
