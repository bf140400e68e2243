package invoker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/domain"
)

// ErrNoEntryPoint is returned when a unit that must be called has no entry point.
var ErrNoEntryPoint = errors.New("unit has no entry point")

// IInvokerService calls one unit under a deadline
type IInvokerService interface {
	// Invoke runs the unit with the case's receiver and arguments. Only a
	// cancelled parent context is reported as an error; everything the unit
	// does, including hanging, is part of the outcome.
	Invoke(ctx context.Context, unit domain.Unit, c domain.GeneratedCase, timeout time.Duration) (domain.InvocationOutcome, error)
}

var _ IInvokerService = (*InvokerService)(nil)

type InvokerService struct {
	logger primary.Logger
}

func NewInvokerService(logger primary.Logger) *InvokerService {
	return &InvokerService{logger: logger}
}

type callResult struct {
	value any
	err   error
	panic *domain.PanicError
}

func (s *InvokerService) Invoke(ctx context.Context, unit domain.Unit, c domain.GeneratedCase, timeout time.Duration) (domain.InvocationOutcome, error) {
	// Receiver-only units are verified on their generated receivers alone.
	if unit.Signature == nil {
		return domain.InvocationOutcome{Receiver: c.Receiver}, nil
	}
	if unit.Call == nil {
		return domain.InvocationOutcome{}, fmt.Errorf("%s: %w", unit.Name, ErrNoEntryPoint)
	}
	if err := ctx.Err(); err != nil {
		return domain.InvocationOutcome{}, err
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so an abandoned call can finish without a reader.
	done := make(chan callResult, 1)
	start := time.Now()
	go func() {
		var res callResult
		defer func() {
			if p := recover(); p != nil {
				res = callResult{panic: &domain.PanicError{Value: p, Stack: debug.Stack()}}
			}
			done <- res
		}()
		res.value, res.err = unit.Call(callCtx, c.Receiver, c.Args)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return domain.InvocationOutcome{
			Value:    res.value,
			Err:      res.err,
			Panic:    res.panic,
			Receiver: c.Receiver,
			Elapsed:  time.Since(start),
		}, nil
	case <-timer.C:
		s.logger.Warn("Invocation timed out", "unit", unit.Name, "iteration", c.Iteration, "timeout", timeout)
		return domain.InvocationOutcome{TimedOut: true, Elapsed: time.Since(start)}, nil
	case <-ctx.Done():
		return domain.InvocationOutcome{}, ctx.Err()
	}
}
