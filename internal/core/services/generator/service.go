package generator

import (
	"fmt"
	"math/rand"
	"reflect"

	"gitlab.com/equivcheck-2025.net/internal/core/ports/primary"
	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

// IGeneratorService produces the inputs for one iteration
type IGeneratorService interface {
	// Generate builds the case the given unit sees. Identical seeds and complexity
	// give identical cases.
	Generate(c *domain.Contract, unit domain.Unit, req Request) (domain.GeneratedCase, error)
}

// Request carries the per-iteration inputs of generation.
type Request struct {
	Iteration  int
	Complexity int
	EdgeCase   bool
	SimpleCase bool
	Seeds      Seeds
}

// Seeds split one iteration into independent random streams so the receiver
// factory cannot shift the arguments.
type Seeds struct {
	Receiver int64
	Args     int64
}

// NextSeeds advances r once per stream.
func NextSeeds(r *rand.Rand) Seeds {
	return Seeds{Receiver: r.Int63(), Args: r.Int63()}
}

var _ IGeneratorService = (*GeneratorService)(nil)

type GeneratorService struct {
	logger primary.Logger
}

func NewGeneratorService(logger primary.Logger) *GeneratorService {
	return &GeneratorService{logger: logger}
}

func (s *GeneratorService) Generate(c *domain.Contract, unit domain.Unit, req Request) (domain.GeneratedCase, error) {
	if err := checkComplexity(req.Complexity); err != nil {
		return domain.GeneratedCase{}, err
	}

	gc := domain.GeneratedCase{
		Iteration:    req.Iteration,
		Complexity:   req.Complexity,
		EdgeCase:     req.EdgeCase,
		SimpleCase:   req.SimpleCase,
		ReceiverSeed: req.Seeds.Receiver,
		ArgsSeed:     req.Seeds.Args,
	}

	if !unit.Static() {
		receiver, err := s.receiver(c, unit, req)
		if err != nil {
			s.logger.Error("Failed to generate receiver", "contract", c.Name, "unit", unit.Name, "error", err)
			return domain.GeneratedCase{}, err
		}
		gc.Receiver = receiver
	}

	d := newDraw(c, rand.New(rand.NewSource(req.Seeds.Args)), req.Complexity, req.EdgeCase, req.SimpleCase)
	gc.Args = make([]any, 0, len(c.Params))
	for i, t := range c.Params {
		v, err := d.value(t, req.Complexity, 0)
		if err != nil {
			s.logger.Error("Failed to generate argument", "contract", c.Name, "index", i, "type", t.String(), "error", err)
			return domain.GeneratedCase{}, err
		}
		gc.Args = append(gc.Args, v.Interface())
	}

	return gc, nil
}

// Value generates a single value of type t outside of a contract iteration.
func (s *GeneratorService) Value(c *domain.Contract, t reflect.Type, complexity int, r *rand.Rand) (any, error) {
	if err := checkComplexity(complexity); err != nil {
		return nil, err
	}
	v, err := newDraw(c, r, complexity, false, false).value(t, complexity, 0)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

func (s *GeneratorService) receiver(c *domain.Contract, unit domain.Unit, req Request) (any, error) {
	r := rand.New(rand.NewSource(req.Seeds.Receiver))
	if unit.NewReceiver != nil {
		raw, err := unit.NewReceiver(req.Complexity, r)
		if err != nil {
			return nil, &errs.GenerationError{Type: unit.ReceiverType.String(), Reason: err.Error()}
		}
		v, err := assignable(unit.ReceiverType, raw)
		if err != nil {
			return nil, err
		}
		return v.Interface(), nil
	}
	v, err := newDraw(c, r, req.Complexity, false, false).value(unit.ReceiverType, req.Complexity, 0)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

func checkComplexity(complexity int) error {
	switch {
	case complexity < 0:
		return &errs.GenerationError{Reason: fmt.Sprintf("negative complexity %d", complexity)}
	case complexity > domain.ComplexityLimit:
		return &errs.GenerationError{Reason: fmt.Sprintf("complexity %d above limit %d", complexity, domain.ComplexityLimit)}
	}
	return nil
}
