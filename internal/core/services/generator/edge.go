package generator

import (
	"math"
	"reflect"

	"github.com/leanovate/gopter/gen"
)

// edgeValue picks one boundary value for built-in kinds. ok is false when the
// kind has no edge set, in which case the random strategy applies.
func (d *draw) edgeValue(t reflect.Type) (reflect.Value, bool) {
	var consts []interface{}
	switch t.Kind() {
	case reflect.Bool:
		consts = []interface{}{false, true}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		lo, hi := int64(math.MinInt64), int64(math.MaxInt64)
		if bits := t.Bits(); bits < 64 {
			hi = int64(1)<<(bits-1) - 1
			lo = -hi - 1
		}
		consts = []interface{}{int64(0), int64(1), int64(-1), lo, hi}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		hi := uint64(math.MaxUint64)
		if bits := t.Bits(); bits < 64 {
			hi = uint64(1)<<bits - 1
		}
		consts = []interface{}{uint64(0), uint64(1), hi}
	case reflect.Float32:
		consts = []interface{}{0.0, 1.0, -1.0, float64(math.MaxFloat32), float64(math.SmallestNonzeroFloat32)}
	case reflect.Float64:
		consts = []interface{}{0.0, 1.0, -1.0, math.MaxFloat64, math.SmallestNonzeroFloat64}
	case reflect.String:
		consts = []interface{}{"", " ", "a", "0"}
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0), true
	case reflect.Map:
		return reflect.MakeMap(t), true
	default:
		return reflect.Value{}, false
	}
	return d.pick(t, consts)
}

// simpleValue picks one small, ordinary value for built-in kinds. Collections
// hold a single simple element. ok is false when the kind has no simple set.
func (d *draw) simpleValue(t reflect.Type) (reflect.Value, bool) {
	var consts []interface{}
	switch t.Kind() {
	case reflect.Bool:
		consts = []interface{}{false, true}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		consts = []interface{}{int64(-1), int64(0), int64(1), int64(2)}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		consts = []interface{}{uint64(0), uint64(1), uint64(2)}
	case reflect.Float32, reflect.Float64:
		consts = []interface{}{-1.0, 0.0, 0.5, 1.0}
	case reflect.String:
		consts = []interface{}{"a", "A", "0", "ab"}
	case reflect.Slice:
		e, ok := d.simpleValue(t.Elem())
		if !ok {
			return reflect.Value{}, false
		}
		return reflect.Append(reflect.MakeSlice(t, 0, 1), e), true
	case reflect.Map:
		k, ok := d.simpleValue(t.Key())
		if !ok {
			return reflect.Value{}, false
		}
		e, ok := d.simpleValue(t.Elem())
		if !ok {
			return reflect.Value{}, false
		}
		m := reflect.MakeMapWithSize(t, 1)
		m.SetMapIndex(k, e)
		return m, true
	default:
		return reflect.Value{}, false
	}
	return d.pick(t, consts)
}

func (d *draw) pick(t reflect.Type, consts []interface{}) (reflect.Value, bool) {
	picked, err := d.sample(t, gen.OneConstOf(consts...))
	if err != nil {
		return reflect.Value{}, false
	}

	v := reflect.New(t).Elem()
	switch p := picked.(type) {
	case bool:
		v.SetBool(p)
	case int64:
		v.SetInt(p)
	case uint64:
		v.SetUint(p)
	case float64:
		v.SetFloat(p)
	case string:
		v.SetString(p)
	}
	return v, true
}
