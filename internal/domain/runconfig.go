package domain

import "time"

// ComplexityLimit caps both complexity bounds. Collection sizes grow with
// complexity, so larger values would only allocate without finding more. The
// validate tags below repeat it.
const ComplexityLimit = 1000

// RunConfiguration holds the effective parameters of one test run.
type RunConfiguration struct {
	Iterations         int    `json:"iterations" validate:"gt=0"`
	MinComplexity      int    `json:"minComplexity" validate:"gte=0,lte=1000"`
	MaxComplexity      int    `json:"maxComplexity" validate:"gtefield=MinComplexity,lte=1000"`
	TimeoutMillis      int64  `json:"timeoutMillis" validate:"gt=0"`
	RandomSeed         *int64 `json:"randomSeed,omitempty"`
	MaxDiscards        int    `json:"maxDiscards" validate:"gte=0"`
	EdgeCaseIterations int    `json:"edgeCaseIterations" validate:"gte=0,ltefield=Iterations"`
	// Simple-case iterations follow the edge-case ones, then mixed ones draw
	// each argument from either set. Phases past Iterations are cut short.
	SimpleCaseIterations int `json:"simpleCaseIterations" validate:"gte=0,ltefield=Iterations"`
	MixedCaseIterations  int `json:"mixedCaseIterations" validate:"gte=0,ltefield=Iterations"`
}

func (c RunConfiguration) Timeout() time.Duration {
	return time.Duration(c.TimeoutMillis) * time.Millisecond
}

// Phase tells which value sets iteration i draws its arguments from.
func (c RunConfiguration) Phase(i int) (edge, simple bool) {
	switch {
	case i < c.EdgeCaseIterations:
		return true, false
	case i < c.EdgeCaseIterations+c.SimpleCaseIterations:
		return false, true
	case i < c.EdgeCaseIterations+c.SimpleCaseIterations+c.MixedCaseIterations:
		return true, true
	}
	return false, false
}

// RunConfigOverride replaces only the fields it sets. A nil field inherits
// the value underneath it.
type RunConfigOverride struct {
	Iterations         *int   `json:"iterations,omitempty" yaml:"iterations,omitempty"`
	MinComplexity      *int   `json:"minComplexity,omitempty" yaml:"minComplexity,omitempty"`
	MaxComplexity      *int   `json:"maxComplexity,omitempty" yaml:"maxComplexity,omitempty"`
	TimeoutMillis      *int64 `json:"timeoutMillis,omitempty" yaml:"timeoutMillis,omitempty"`
	RandomSeed         *int64 `json:"randomSeed,omitempty" yaml:"randomSeed,omitempty"`
	MaxDiscards        *int   `json:"maxDiscards,omitempty" yaml:"maxDiscards,omitempty"`
	EdgeCaseIterations *int   `json:"edgeCaseIterations,omitempty" yaml:"edgeCaseIterations,omitempty"`

	SimpleCaseIterations *int `json:"simpleCaseIterations,omitempty" yaml:"simpleCaseIterations,omitempty"`
	MixedCaseIterations  *int `json:"mixedCaseIterations,omitempty" yaml:"mixedCaseIterations,omitempty"`
}

// ApplyOver layers o on top of base and returns a new override. Fields set in o
// win; unset ones fall through to base. Either side may be nil.
func (o *RunConfigOverride) ApplyOver(base *RunConfigOverride) *RunConfigOverride {
	if o == nil && base == nil {
		return nil
	}
	out := &RunConfigOverride{}
	if base != nil {
		*out = *base
	}
	if o == nil {
		return out
	}
	if o.Iterations != nil {
		out.Iterations = o.Iterations
	}
	if o.MinComplexity != nil {
		out.MinComplexity = o.MinComplexity
	}
	if o.MaxComplexity != nil {
		out.MaxComplexity = o.MaxComplexity
	}
	if o.TimeoutMillis != nil {
		out.TimeoutMillis = o.TimeoutMillis
	}
	if o.RandomSeed != nil {
		out.RandomSeed = o.RandomSeed
	}
	if o.MaxDiscards != nil {
		out.MaxDiscards = o.MaxDiscards
	}
	if o.EdgeCaseIterations != nil {
		out.EdgeCaseIterations = o.EdgeCaseIterations
	}
	if o.SimpleCaseIterations != nil {
		out.SimpleCaseIterations = o.SimpleCaseIterations
	}
	if o.MixedCaseIterations != nil {
		out.MixedCaseIterations = o.MixedCaseIterations
	}
	return out
}

func (o *RunConfigOverride) IsEmpty() bool {
	return o == nil || *o == RunConfigOverride{}
}

// ContractOverride is a stored per-contract override.
type ContractOverride struct {
	Contract  string            `json:"contract"`
	Override  RunConfigOverride `json:"override"`
	Active    bool              `json:"active"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Ptr returns a pointer to v, for filling overrides.
func Ptr[T any](v T) *T {
	return &v
}
