package domain

import (
	"context"
	"math/rand"
	"reflect"
	"sort"
)

// EntryPoint calls a unit's solution. The receiver is nil for static entry points.
// ctx is cancelled when the call exceeds its deadline; honouring it is optional.
type EntryPoint func(ctx context.Context, receiver any, args []any) (any, error)

// GeneratorFunc produces one value for a declared type at the given complexity.
type GeneratorFunc func(complexity int, r *rand.Rand) (any, error)

// VerifyFunc compares the reference output (ours) with the candidate output (theirs).
// A returned error or a panic fails the iteration.
type VerifyFunc func(ours, theirs TestOutput) error

// PreconditionFunc reports whether a generated case may be used. Rejected cases are discarded.
type PreconditionFunc func(c GeneratedCase) bool

// Signature is the callable shape of an entry point.
type Signature struct {
	Name    string
	Params  []reflect.Type
	Returns reflect.Type // nil for void
}

// Unit is one implementation (reference or candidate) of a contract.
type Unit struct {
	Name         string
	Signature    *Signature   // nil when the unit only supplies receivers
	ReceiverType reflect.Type // nil for static entry points
	NewReceiver  GeneratorFunc
	Call         EntryPoint
}

func (u Unit) Static() bool {
	return u.ReceiverType == nil
}

// Declaration is everything a test author registers for one contract.
type Declaration struct {
	Name         string
	Description  string
	Reference    Unit
	Candidates   map[string]Unit
	Generators   map[reflect.Type]GeneratorFunc
	Verify       VerifyFunc
	Precondition PreconditionFunc
	Override     *RunConfigOverride
}

// Contract is the resolved shape both units must satisfy. It is derived from the
// reference unit and never changes after registration.
type Contract struct {
	Name         string
	Description  string
	EntryPoint   string
	Params       []reflect.Type
	Returns      reflect.Type
	Receiver     reflect.Type
	Standalone   bool
	Generators   map[reflect.Type]GeneratorFunc
	Verify       VerifyFunc
	Precondition PreconditionFunc
	Override     *RunConfigOverride
}

func (c *Contract) Static() bool {
	return c.Receiver == nil
}

// Generator returns the user generator registered for t, if any.
func (c *Contract) Generator(t reflect.Type) (GeneratorFunc, bool) {
	if c == nil || c.Generators == nil {
		return nil, false
	}
	g, ok := c.Generators[t]
	return g, ok
}

// ContractInfo is the listing view of a registered contract.
type ContractInfo struct {
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	EntryPoint    string           `json:"entryPoint,omitempty"`
	Params        []string         `json:"params"`
	Returns       string           `json:"returns,omitempty"`
	Receiver      string           `json:"receiver,omitempty"`
	Standalone    bool             `json:"standalone"`
	CustomVerify  bool             `json:"customVerify"`
	Candidates    []string         `json:"candidates"`
	Configuration RunConfiguration `json:"configuration"`
}

// NewContractInfo builds the listing view for c with its effective configuration.
func NewContractInfo(c *Contract, candidates []string, cfg RunConfiguration) ContractInfo {
	info := ContractInfo{
		Name:          c.Name,
		Description:   c.Description,
		EntryPoint:    c.EntryPoint,
		Params:        make([]string, 0, len(c.Params)),
		Standalone:    c.Standalone,
		CustomVerify:  c.Verify != nil,
		Candidates:    append([]string(nil), candidates...),
		Configuration: cfg,
	}
	for _, p := range c.Params {
		info.Params = append(info.Params, p.String())
	}
	if c.Returns != nil {
		info.Returns = c.Returns.String()
	}
	if c.Receiver != nil {
		info.Receiver = c.Receiver.String()
	}
	sort.Strings(info.Candidates)
	return info
}
