package verifier

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Recorder collects assertion failures so testify's assert and require packages
// can be used inside verification procedures:
//
//	rec := verifier.NewRecorder()
//	assert.Equal(rec, ours.Behavior(), theirs.Behavior())
//	return rec.Err()
type Recorder struct {
	mu       sync.Mutex
	failures []string
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

type failNow struct {
	reason string
}

func (r *Recorder) Errorf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// FailNow aborts the verification procedure. The verifier turns the abort into
// a failing result carrying the recorded messages.
func (r *Recorder) FailNow() {
	panic(failNow{reason: r.message()})
}

func (r *Recorder) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures) > 0
}

// Err returns the recorded failures as one error, nil when none were recorded.
func (r *Recorder) Err() error {
	if !r.Failed() {
		return nil
	}
	return errors.New(r.message())
}

func (r *Recorder) message() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.failures) == 0 {
		return "verification aborted"
	}
	return strings.Join(r.failures, "\n")
}
