package classifier

import "gitlab.com/equivcheck-2025.net/internal/domain"

// Classify maps a raw invocation outcome onto exactly one behavior tag. A
// timed-out call carries neither receiver nor arguments because its worker may
// still be running and touching them.
func Classify(outcome domain.InvocationOutcome, c domain.GeneratedCase) domain.TestOutput {
	switch {
	case outcome.TimedOut:
		return domain.NewTestOutput(domain.BehaviorTimedOut, nil, nil, nil, nil, outcome.Elapsed)
	case outcome.Panic != nil:
		return domain.NewTestOutput(domain.BehaviorThrew, nil, outcome.Panic, outcome.Receiver, c.Args, outcome.Elapsed)
	case outcome.Err != nil:
		return domain.NewTestOutput(domain.BehaviorThrew, nil, outcome.Err, outcome.Receiver, c.Args, outcome.Elapsed)
	default:
		return domain.NewTestOutput(domain.BehaviorReturned, outcome.Value, nil, outcome.Receiver, c.Args, outcome.Elapsed)
	}
}
