package registry

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/eventable/pkg/domain"
)

// MethodPrefix is the Go method name prefix Bind looks for.
const MethodPrefix = "Action"

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Bind registers every exported method of receiver named Action<Name> as the
// handler "action<Name>". Methods promoted from embedded types are included.
//
// A bound method may take a leading context.Context, and may return nothing,
// a single value, an error, or (value, error). Parameters are checked before
// the method is invoked; a mismatch returns domain.ErrArgumentMismatch.
//
// Bind returns the number of methods it registered.
func (r *Registry) Bind(receiver any) (int, error) {
	if isNil(receiver) {
		return 0, fmt.Errorf("registry: cannot bind nil receiver")
	}

	v := reflect.ValueOf(receiver)
	t := v.Type()

	bound := 0
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		suffix, ok := strings.CutPrefix(m.Name, MethodPrefix)
		if !ok || !startsUpper(suffix) {
			continue
		}

		fn, err := adapt(v.Method(i))
		if err != nil {
			return bound, fmt.Errorf("registry: bind %s.%s: %w", t, m.Name, err)
		}
		r.Register(domain.HandlerName(suffix), fn)
		bound++
	}
	return bound, nil
}

// adapt wraps a bound method value into a HandlerFunc.
func adapt(method reflect.Value) (HandlerFunc, error) {
	mt := method.Type()

	takesCtx := mt.NumIn() > 0 && mt.In(0) == contextType

	switch mt.NumOut() {
	case 0, 1:
	case 2:
		if mt.Out(1) != errorType {
			return nil, fmt.Errorf("second return value must be error, got %s", mt.Out(1))
		}
	default:
		return nil, fmt.Errorf("unsupported signature %s", mt)
	}

	return func(ctx context.Context, params ...any) (any, error) {
		if ctx == nil {
			ctx = context.Background()
		}
		args, err := buildArgs(mt, takesCtx, ctx, params)
		if err != nil {
			return nil, err
		}
		return unpack(mt, method.Call(args))
	}, nil
}

func buildArgs(mt reflect.Type, takesCtx bool, ctx context.Context, params []any) ([]reflect.Value, error) {
	first := 0
	if takesCtx {
		first = 1
	}
	fixed := mt.NumIn() - first
	if mt.IsVariadic() {
		fixed--
	}

	if len(params) < fixed || (!mt.IsVariadic() && len(params) > fixed) {
		want := fmt.Sprintf("%d", fixed)
		if mt.IsVariadic() {
			want = fmt.Sprintf("at least %d", fixed)
		}
		return nil, fmt.Errorf("%w: want %s arguments, got %d", domain.ErrArgumentMismatch, want, len(params))
	}

	args := make([]reflect.Value, 0, first+len(params))
	if takesCtx {
		args = append(args, reflect.ValueOf(ctx))
	}

	for i, p := range params {
		var target reflect.Type
		if i < fixed {
			target = mt.In(first + i)
		} else {
			target = mt.In(mt.NumIn() - 1).Elem()
		}

		arg, err := convertArg(p, target)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %v", domain.ErrArgumentMismatch, i, err)
		}
		args = append(args, arg)
	}
	return args, nil
}

// convertArg makes p usable as a value of type target.
// Numeric kinds convert into each other (JSON decoders hand out float64)
// as long as the value survives the conversion unchanged.
func convertArg(p any, target reflect.Type) (reflect.Value, error) {
	if p == nil {
		switch target.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(target), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use nil as %s", target)
	}

	v := reflect.ValueOf(p)
	if v.Type().AssignableTo(target) {
		return v, nil
	}

	if isNumeric(v.Kind()) && isNumeric(target.Kind()) {
		if err := checkRange(v, target); err != nil {
			return reflect.Value{}, err
		}
		return v.Convert(target), nil
	}

	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), target)
}

// checkRange reports whether the numeric value v would change when converted
// to target.
func checkRange(v reflect.Value, target reflect.Type) error {
	probe := reflect.New(target).Elem()
	overflow := fmt.Errorf("%v overflows %s", v.Interface(), target)

	switch {
	case isFloat(v.Kind()):
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("cannot use %v as %s", f, target)
		}
		switch {
		case isFloat(target.Kind()):
			if probe.OverflowFloat(f) {
				return overflow
			}
		case f != math.Trunc(f):
			return fmt.Errorf("cannot use %v as %s without truncation", f, target)
		case isSigned(target.Kind()):
			if f < math.MinInt64 || f >= math.MaxInt64 || probe.OverflowInt(int64(f)) {
				return overflow
			}
		default:
			if f < 0 || f >= math.MaxUint64 || probe.OverflowUint(uint64(f)) {
				return overflow
			}
		}

	case isSigned(v.Kind()):
		i := v.Int()
		switch {
		case isFloat(target.Kind()):
			if probe.OverflowFloat(float64(i)) {
				return overflow
			}
		case isSigned(target.Kind()):
			if probe.OverflowInt(i) {
				return overflow
			}
		default:
			if i < 0 || probe.OverflowUint(uint64(i)) {
				return overflow
			}
		}

	default:
		u := v.Uint()
		switch {
		case isFloat(target.Kind()):
			if probe.OverflowFloat(float64(u)) {
				return overflow
			}
		case isSigned(target.Kind()):
			if u > math.MaxInt64 || probe.OverflowInt(int64(u)) {
				return overflow
			}
		default:
			if probe.OverflowUint(u) {
				return overflow
			}
		}
	}
	return nil
}

func unpack(mt reflect.Type, out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if mt.Out(0) == errorType {
			return nil, asError(out[0])
		}
		return out[0].Interface(), nil
	default:
		return out[0].Interface(), asError(out[1])
	}
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

func isNil(val any) bool {
	if val == nil {
		return true
	}
	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Slice, reflect.Interface, reflect.Func:
		return v.IsNil()
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	return isInteger(k) || isFloat(k)
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
