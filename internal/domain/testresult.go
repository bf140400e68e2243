package domain

import (
	"fmt"
	"time"
)

// Behavior classifies how one invocation ended.
type Behavior string

const (
	BehaviorReturned Behavior = "RETURNED"
	BehaviorThrew    Behavior = "THREW"
	BehaviorTimedOut Behavior = "TIMED_OUT"
)

// InvocationOutcome is the raw result of calling a unit with a GeneratedCase.
type InvocationOutcome struct {
	Value    any
	Err      error
	Panic    *PanicError
	TimedOut bool
	Receiver any
	Elapsed  time.Duration
}

// PanicError wraps a value recovered from a panicking unit.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// TestOutput is the classified, read-only view of one invocation handed to
// verification.
type TestOutput struct {
	behavior Behavior
	output   any
	err      error
	receiver any
	args     []any
	duration time.Duration
}

// NewTestOutput builds a TestOutput. The output is kept only for returned
// behavior and the error only for thrown behavior.
func NewTestOutput(behavior Behavior, output any, err error, receiver any, args []any, duration time.Duration) TestOutput {
	o := TestOutput{
		behavior: behavior,
		receiver: receiver,
		args:     append([]any(nil), args...),
		duration: duration,
	}
	switch behavior {
	case BehaviorReturned:
		o.output = output
	case BehaviorThrew:
		o.err = err
	}
	return o
}

func (o TestOutput) Behavior() Behavior {
	return o.behavior
}

func (o TestOutput) Output() any {
	return o.output
}

func (o TestOutput) Err() error {
	return o.err
}

func (o TestOutput) Receiver() any {
	return o.receiver
}

// Args returns a copy of the arguments the unit was called with.
func (o TestOutput) Args() []any {
	return append([]any(nil), o.args...)
}

func (o TestOutput) Duration() time.Duration {
	return o.duration
}

// OutputSnapshot is the printable form of a TestOutput kept in reports.
type OutputSnapshot struct {
	Behavior       Behavior `json:"behavior"`
	Output         string   `json:"output,omitempty"`
	Error          string   `json:"error,omitempty"`
	Receiver       string   `json:"receiver,omitempty"`
	Args           []string `json:"args"`
	DurationMillis int64    `json:"durationMillis"`
}

func (o TestOutput) Snapshot() OutputSnapshot {
	s := OutputSnapshot{
		Behavior:       o.behavior,
		Args:           FormatValues(o.args),
		DurationMillis: o.duration.Milliseconds(),
	}
	if o.behavior == BehaviorReturned {
		s.Output = FormatValue(o.output)
	}
	if o.err != nil {
		s.Error = o.err.Error()
	}
	if o.receiver != nil {
		s.Receiver = FormatValue(o.receiver)
	}
	return s
}

// VerificationResult is the verdict for one iteration.
type VerificationResult struct {
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

func Pass() VerificationResult {
	return VerificationResult{Passed: true}
}

func Fail(reason string) VerificationResult {
	return VerificationResult{Reason: reason}
}

func FormatValue(v any) string {
	return fmt.Sprintf("%+v", v)
}

func FormatValues(vs []any) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = FormatValue(v)
	}
	return out
}
