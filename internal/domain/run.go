package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a queued test run.
type RunStatus string

const (
	RunStatusPending             RunStatus = "PENDING"
	RunStatusRunning             RunStatus = "RUNNING"
	RunStatusPassed              RunStatus = "PASSED"
	RunStatusFailed              RunStatus = "FAILED"
	RunStatusGenerationFailed    RunStatus = "GENERATION_FAILED"
	RunStatusConfigurationFailed RunStatus = "CONFIGURATION_FAILED"
	RunStatusErrored             RunStatus = "ERRORED"
	RunStatusCancelled           RunStatus = "CANCELLED"
)

func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusPending, RunStatusRunning:
		return false
	default:
		return true
	}
}

// RunRecord is a persisted test run request together with its outcome.
type RunRecord struct {
	ID          uuid.UUID          `db:"id" json:"id"`
	Contract    string             `db:"contract" json:"contract"`
	Candidate   string             `db:"candidate" json:"candidate"`
	Status      RunStatus          `db:"status" json:"status"`
	Override    *RunConfigOverride `db:"override" json:"override,omitempty"`
	Report      *RunReport         `db:"report" json:"report,omitempty"`
	Error       *string            `db:"error" json:"error,omitempty"`
	CreatedAt   time.Time          `db:"created_at" json:"createdAt"`
	StartedAt   *time.Time         `db:"started_at" json:"startedAt,omitempty"`
	CompletedAt *time.Time         `db:"completed_at" json:"completedAt,omitempty"`
}

// NewRunRecord creates a pending run.
func NewRunRecord(contract, candidate string, override *RunConfigOverride) *RunRecord {
	return &RunRecord{
		ID:        uuid.New(),
		Contract:  contract,
		Candidate: candidate,
		Status:    RunStatusPending,
		Override:  override,
		CreatedAt: time.Now(),
	}
}

type RunTable struct {
	ID          string
	Contract    string
	Candidate   string
	Status      string
	Override    string
	Report      string
	Error       string
	CreatedAt   string
	StartedAt   string
	CompletedAt string
}

func GetRunTable() RunTable {
	return RunTable{
		ID:          "id",
		Contract:    "contract",
		Candidate:   "candidate",
		Status:      "status",
		Override:    "override",
		Report:      "report",
		Error:       "error",
		CreatedAt:   "created_at",
		StartedAt:   "started_at",
		CompletedAt: "completed_at",
	}
}

func (RunTable) TableName() string {
	return "runs"
}

// RunFilter narrows a run listing. Zero values match everything.
type RunFilter struct {
	Contract string
	// Statuses keeps runs in any of the listed states. Empty keeps all.
	Statuses []RunStatus
	Limit    int
}

// HasStatus reports whether a run in state s passes the status filter.
func (f RunFilter) HasStatus(s RunStatus) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, want := range f.Statuses {
		if want == s {
			return true
		}
	}
	return false
}

// ParseStatuses splits a comma separated status list, dropping blanks.
func ParseStatuses(raw string) []RunStatus {
	var out []RunStatus
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, RunStatus(strings.ToUpper(part)))
		}
	}
	return out
}

// RunReport is the final report of one test run.
type RunReport struct {
	Contract      string           `json:"contract"`
	Candidate     string           `json:"candidate"`
	Status        RunStatus        `json:"status"`
	Seed          int64            `json:"seed"`
	Configuration RunConfiguration `json:"configuration"`
	Iterations    int              `json:"iterations"`
	Discards      int              `json:"discards"`
	StartedAt     time.Time        `json:"startedAt"`
	Duration      time.Duration    `json:"duration"`
	Trace         []TraceEntry     `json:"trace,omitempty"`
	Failure       *Failure         `json:"failure,omitempty"`
}

func (r *RunReport) Passed() bool {
	return r != nil && r.Status == RunStatusPassed
}

// TraceEntry records one executed iteration.
type TraceEntry struct {
	Iteration  int    `json:"iteration"`
	Complexity int    `json:"complexity"`
	EdgeCase   bool   `json:"edgeCase,omitempty"`
	SimpleCase bool   `json:"simpleCase,omitempty"`
	Digest     string `json:"digest"`
}

// Failure holds everything needed to reproduce the first failing iteration.
// Case and the two outputs live only in memory; the snapshots are persisted.
type Failure struct {
	Iteration  int    `json:"iteration"`
	Complexity int    `json:"complexity"`
	Reason     string `json:"reason"`

	Case      GeneratedCase `json:"-"`
	Reference TestOutput    `json:"-"`
	Candidate TestOutput    `json:"-"`

	Inputs          CaseSnapshot   `json:"inputs"`
	ReferenceOutput OutputSnapshot `json:"referenceOutput"`
	CandidateOutput OutputSnapshot `json:"candidateOutput"`
}

// NewFailure captures a failing iteration. inputs is the case as it looked
// before either unit ran.
func NewFailure(c GeneratedCase, inputs CaseSnapshot, ours, theirs TestOutput, reason string) *Failure {
	return &Failure{
		Iteration:       c.Iteration,
		Complexity:      c.Complexity,
		Reason:          reason,
		Case:            c,
		Reference:       ours,
		Candidate:       theirs,
		Inputs:          inputs,
		ReferenceOutput: ours.Snapshot(),
		CandidateOutput: theirs.Snapshot(),
	}
}
