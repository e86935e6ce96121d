package subjects

import (
	"fmt"
	"reflect"
	"sort"
)

// ToSlice converts a collection value into an ordered []any. Slices and
// arrays keep their order. Maps, including sets such as map[T]struct{} or
// map[T]bool, yield their keys in sorted order so the result is stable
// across runs. nil yields an empty slice.
func ToSlice(v any) ([]any, error) {
	if v == nil {
		return []any{}, nil
	}
	if s, ok := v.([]any); ok {
		return s, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	case reflect.Map:
		keys := rv.MapKeys()
		sortKeys(keys)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = k.Interface()
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a slice, array or map, got %T", v)
}

// sortKeys orders map keys by dynamic type name, then by value within a
// type. Interface keys are unwrapped first so numbers compare numerically.
func sortKeys(keys []reflect.Value) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, b := concrete(keys[i]), concrete(keys[j])
		if !a.IsValid() || !b.IsValid() {
			return !a.IsValid() && b.IsValid()
		}
		if ta, tb := a.Type().String(), b.Type().String(); ta != tb {
			return ta < tb
		}
		switch {
		case a.CanInt():
			return a.Int() < b.Int()
		case a.CanUint():
			return a.Uint() < b.Uint()
		case a.CanFloat():
			return a.Float() < b.Float()
		case a.Kind() == reflect.String:
			return a.String() < b.String()
		case a.Kind() == reflect.Bool:
			return !a.Bool() && b.Bool()
		}
		return fmt.Sprintf("%#v", a.Interface()) < fmt.Sprintf("%#v", b.Interface())
	})
}

func concrete(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	return v
}
