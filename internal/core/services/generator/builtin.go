package generator

import (
	"fmt"
	"math"
	"math/rand"
	"reflect"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"

	"gitlab.com/equivcheck-2025.net/internal/domain"
	"gitlab.com/equivcheck-2025.net/internal/static/errs"
)

// maxDepth bounds recursion through pointers and containers. Pointers at this
// depth are left nil so self-referencing types terminate.
const maxDepth = 8

// Generatable types build their own random instances. Generate is called on the
// zero value of the type, or on a fresh allocation for pointer receivers.
type Generatable interface {
	Generate(complexity int, r *rand.Rand) any
}

var generatableType = reflect.TypeOf((*Generatable)(nil)).Elem()

type draw struct {
	contract *domain.Contract
	rng      *rand.Rand
	params   *gopter.GenParameters
	edge     bool
	simple   bool
}

func newDraw(c *domain.Contract, r *rand.Rand, complexity int, edge, simple bool) *draw {
	return &draw{
		contract: c,
		rng:      r,
		params: &gopter.GenParameters{
			MinSize: 0,
			MaxSize: complexity,
			Rng:     r,
		},
		edge:   edge,
		simple: simple,
	}
}

// sample draws from g. gopter reports an empty result instead of failing, for
// instance on an inverted range.
func (d *draw) sample(t reflect.Type, g gopter.Gen) (interface{}, error) {
	v, ok := g(d.params).Retrieve()
	if !ok || v == nil {
		return nil, &errs.GenerationError{Type: t.String(), Reason: "built-in strategy produced no value"}
	}
	return v, nil
}

// fixedSet picks the edge or simple value for a top-level argument. Mixed
// iterations choose between the two sets per argument.
func (d *draw) fixedSet(t reflect.Type) (reflect.Value, bool) {
	switch {
	case d.edge && d.simple:
		if d.rng.Intn(2) == 0 {
			return d.edgeValue(t)
		}
		return d.simpleValue(t)
	case d.edge:
		return d.edgeValue(t)
	case d.simple:
		return d.simpleValue(t)
	}
	return reflect.Value{}, false
}

// value produces one value of type t. Registered generators take precedence
// over every built-in strategy, at any nesting level.
func (d *draw) value(t reflect.Type, complexity int, depth int) (reflect.Value, error) {
	if userGen, ok := d.contract.Generator(t); ok {
		return d.custom(t, userGen, complexity)
	}
	if depth > maxDepth {
		return reflect.Value{}, &errs.GenerationError{Type: t.String(), Reason: "nesting too deep"}
	}

	if v, ok, err := d.factory(t, complexity); ok || err != nil {
		return v, err
	}

	if depth == 0 {
		if v, ok := d.fixedSet(t); ok {
			return v, nil
		}
	}

	switch t.Kind() {
	case reflect.Bool:
		b, err := d.sample(t, gen.Bool())
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		lo, hi := signedBounds(t, complexity)
		n, err := d.sample(t, gen.Int64Range(lo, hi))
		if err != nil {
			return reflect.Value{}, err
		}
		v := reflect.New(t).Elem()
		v.SetInt(n.(int64))
		return v, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := d.sample(t, gen.UInt64Range(0, unsignedBound(t, complexity)))
		if err != nil {
			return reflect.Value{}, err
		}
		v := reflect.New(t).Elem()
		v.SetUint(n.(uint64))
		return v, nil
	case reflect.Float32, reflect.Float64:
		b := float64(magnitude(complexity))
		f, err := d.sample(t, gen.Float64Range(-b, b))
		if err != nil {
			return reflect.Value{}, err
		}
		v := reflect.New(t).Elem()
		v.SetFloat(f.(float64))
		return v, nil
	case reflect.Complex64, reflect.Complex128:
		b := float64(magnitude(complexity))
		re, err := d.sample(t, gen.Float64Range(-b, b))
		if err != nil {
			return reflect.Value{}, err
		}
		im, err := d.sample(t, gen.Float64Range(-b, b))
		if err != nil {
			return reflect.Value{}, err
		}
		v := reflect.New(t).Elem()
		v.SetComplex(complex(re.(float64), im.(float64)))
		return v, nil
	case reflect.String:
		return d.str(t, complexity)
	case reflect.Slice:
		n := d.rng.Intn(complexity + 1)
		s := reflect.MakeSlice(t, n, n)
		for i := 0; i < n; i++ {
			e, err := d.value(t.Elem(), complexity/2, depth+1)
			if err != nil {
				return reflect.Value{}, err
			}
			s.Index(i).Set(e)
		}
		return s, nil
	case reflect.Array:
		a := reflect.New(t).Elem()
		for i := 0; i < t.Len(); i++ {
			e, err := d.value(t.Elem(), complexity/2, depth+1)
			if err != nil {
				return reflect.Value{}, err
			}
			a.Index(i).Set(e)
		}
		return a, nil
	case reflect.Map:
		n := d.rng.Intn(complexity + 1)
		m := reflect.MakeMapWithSize(t, n)
		for i := 0; i < n; i++ {
			k, err := d.value(t.Key(), complexity/2, depth+1)
			if err != nil {
				return reflect.Value{}, err
			}
			e, err := d.value(t.Elem(), complexity/2, depth+1)
			if err != nil {
				return reflect.Value{}, err
			}
			m.SetMapIndex(k, e)
		}
		return m, nil
	case reflect.Pointer:
		if depth == maxDepth {
			return reflect.Zero(t), nil
		}
		e, err := d.value(t.Elem(), complexity, depth+1)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(e)
		return p, nil
	case reflect.Struct:
		return d.structValue(t, complexity, depth)
	}

	return reflect.Value{}, &errs.GenerationError{
		Type:   t.String(),
		Reason: fmt.Sprintf("no built-in strategy for kind %s and no generator registered", t.Kind()),
	}
}

func (d *draw) custom(t reflect.Type, userGen domain.GeneratorFunc, complexity int) (v reflect.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &errs.GenerationError{Type: t.String(), Reason: fmt.Sprintf("generator panicked: %v", p)}
		}
	}()
	raw, err := userGen(complexity, d.rng)
	if err != nil {
		return reflect.Value{}, &errs.GenerationError{Type: t.String(), Reason: err.Error()}
	}
	return assignable(t, raw)
}

// factory uses the type's own Generate method when it has one.
func (d *draw) factory(t reflect.Type, complexity int) (v reflect.Value, ok bool, err error) {
	var g Generatable
	switch {
	case t.Implements(generatableType) && t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface:
		g = reflect.Zero(t).Interface().(Generatable)
	case t.Kind() == reflect.Pointer && t.Implements(generatableType) && !t.Elem().Implements(generatableType):
		g = reflect.New(t.Elem()).Interface().(Generatable)
	default:
		return reflect.Value{}, false, nil
	}
	defer func() {
		if p := recover(); p != nil {
			v, ok, err = reflect.Value{}, true, &errs.GenerationError{Type: t.String(), Reason: fmt.Sprintf("Generate panicked: %v", p)}
		}
	}()
	raw := g.Generate(complexity, d.rng)
	if t.Kind() == reflect.Pointer && raw != nil && reflect.TypeOf(raw) == t.Elem() {
		p := reflect.New(t.Elem())
		p.Elem().Set(reflect.ValueOf(raw))
		return p, true, nil
	}
	v, err = assignable(t, raw)
	return v, true, err
}

func (d *draw) structValue(t reflect.Type, complexity int, depth int) (reflect.Value, error) {
	s := reflect.New(t).Elem()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			return reflect.Value{}, &errs.GenerationError{
				Type:   t.String(),
				Reason: fmt.Sprintf("unexported field %s and no generator registered", f.Name),
			}
		}
		v, err := d.value(f.Type, complexity, depth+1)
		if err != nil {
			return reflect.Value{}, err
		}
		s.Field(i).Set(v)
	}
	return s, nil
}

func (d *draw) str(t reflect.Type, complexity int) (reflect.Value, error) {
	n := d.rng.Intn(complexity + 1)
	runes := make([]rune, 0, n)
	for i := 0; i < n; i++ {
		c, err := d.sample(t, gen.AlphaNumChar())
		if err != nil {
			return reflect.Value{}, err
		}
		runes = append(runes, c.(rune))
	}
	return reflect.ValueOf(string(runes)).Convert(t), nil
}

func assignable(t reflect.Type, raw any) (reflect.Value, error) {
	if raw == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, &errs.GenerationError{Type: t.String(), Reason: "generator returned nil"}
	}
	v := reflect.ValueOf(raw)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, &errs.GenerationError{
			Type:   t.String(),
			Reason: fmt.Sprintf("generator returned %s", v.Type()),
		}
	}
	out := reflect.New(t).Elem()
	out.Set(v)
	return out, nil
}

// maxExactMagnitude is the largest complexity whose magnitude fits in int64.
const maxExactMagnitude = 3037000499

// magnitude scales numeric ranges with complexity, saturating at MaxInt64.
func magnitude(complexity int) int64 {
	c := int64(complexity)
	if c > maxExactMagnitude {
		return math.MaxInt64
	}
	return c*c + c
}

func signedBounds(t reflect.Type, complexity int) (int64, int64) {
	b := magnitude(complexity)
	limit := int64(math.MaxInt64)
	if bits := t.Bits(); bits < 64 {
		limit = int64(1)<<(bits-1) - 1
	}
	if b > limit {
		return -limit - 1, limit
	}
	return -b, b
}

func unsignedBound(t reflect.Type, complexity int) uint64 {
	b := uint64(magnitude(complexity))
	limit := uint64(math.MaxUint64)
	if bits := t.Bits(); bits < 64 {
		limit = uint64(1)<<bits - 1
	}
	if b > limit {
		return limit
	}
	return b
}
