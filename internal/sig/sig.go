// Package sig inspects function signatures for the spy engine.
//
// Go reflection exposes parameter types but not parameter names, so the
// canonical named-argument view of a call is driven by caller-declared
// names (falling back to arg0..argN). Both the positional and the named
// view of a call are derived here, from the same normalized slice, which
// keeps lookups by name and by position interchangeable.
//
// This is a leaf package: it imports nothing from the module.
package sig

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Signature describes one spied function: its reflected type, a display
// name, and one declared name per parameter. For variadic functions the
// last name is bound to the whole variadic slice.
type Signature struct {
	fnType     reflect.Type
	name       string
	paramNames []string
}

// New builds a Signature for fnType. name is the display name used in
// errors and logs. paramNames must be empty (names default to arg0..argN)
// or have exactly one entry per declared parameter.
func New(fnType reflect.Type, name string, paramNames []string) (*Signature, error) {
	if fnType == nil || fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("sig: %s is not a function type", name)
	}
	n := fnType.NumIn()
	if len(paramNames) == 0 {
		paramNames = make([]string, n)
		for i := range paramNames {
			paramNames[i] = fmt.Sprintf("arg%d", i)
		}
	} else if len(paramNames) != n {
		return nil, fmt.Errorf("sig: %s declares %d parameter(s) but %d name(s) were given",
			name, n, len(paramNames))
	}
	seen := make(map[string]struct{}, n)
	for _, pn := range paramNames {
		if pn == "" {
			return nil, fmt.Errorf("sig: %s: parameter names must not be empty", name)
		}
		if _, dup := seen[pn]; dup {
			return nil, fmt.Errorf("sig: %s: duplicate parameter name %q", name, pn)
		}
		seen[pn] = struct{}{}
	}
	return &Signature{fnType: fnType, name: name, paramNames: paramNames}, nil
}

// Type returns the reflected function type.
func (s *Signature) Type() reflect.Type { return s.fnType }

// Name returns the display name.
func (s *Signature) Name() string { return s.name }

// ParamNames returns the declared parameter names. The returned slice is
// shared; callers must not modify it.
func (s *Signature) ParamNames() []string { return s.paramNames }

// Variadic reports whether the function is variadic.
func (s *Signature) Variadic() bool { return s.fnType.IsVariadic() }

// NumResults returns the number of declared results.
func (s *Signature) NumResults() int { return s.fnType.NumOut() }

// HasTrailingError reports whether the final result is of type error.
func (s *Signature) HasTrailingError() bool {
	n := s.fnType.NumOut()
	return n > 0 && s.fnType.Out(n-1) == errType
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Normalize converts the argument values a trampoline received into the
// positional and named views recorded on a CallRecord. in has exactly one
// value per declared parameter (reflect.MakeFunc packs a variadic tail
// into its slice parameter before invoking the trampoline).
func (s *Signature) Normalize(in []reflect.Value) (pos []any, named map[string]any) {
	pos = make([]any, len(in))
	named = make(map[string]any, len(in))
	for i, v := range in {
		var val any
		if v.IsValid() {
			val = v.Interface()
		}
		pos[i] = val
		named[s.paramNames[i]] = val
	}
	return pos, named
}

// CompatibleWith verifies that fake can stand in for the target: same
// parameter and result types, same variadic shape. Returns a descriptive
// error when it cannot.
func (s *Signature) CompatibleWith(fake reflect.Type) error {
	if fake == nil || fake.Kind() != reflect.Func {
		return fmt.Errorf("sig: fake for %s is not a function", s.name)
	}
	if fake.NumIn() != s.fnType.NumIn() || fake.NumOut() != s.fnType.NumOut() ||
		fake.IsVariadic() != s.fnType.IsVariadic() {
		return fmt.Errorf("sig: fake signature %s is not compatible with %s (%s)",
			fake, s.name, s.fnType)
	}
	for i := 0; i < fake.NumIn(); i++ {
		if fake.In(i) != s.fnType.In(i) {
			return fmt.Errorf("sig: fake signature %s is not compatible with %s (%s): parameter %d",
				fake, s.name, s.fnType, i)
		}
	}
	for i := 0; i < fake.NumOut(); i++ {
		if fake.Out(i) != s.fnType.Out(i) {
			return fmt.Errorf("sig: fake signature %s is not compatible with %s (%s): result %d",
				fake, s.name, s.fnType, i)
		}
	}
	return nil
}

// CheckResults verifies that vals could be produced as the function's
// results. Accepts either one value per result, or one per result minus a
// trailing error slot (which is then implied nil). Nil values are accepted
// for nilable result kinds.
func (s *Signature) CheckResults(vals []any) error {
	n := s.fnType.NumOut()
	if len(vals) != n && !(s.HasTrailingError() && len(vals) == n-1) {
		return fmt.Errorf("sig: %s returns %d value(s) but %d were supplied", s.name, n, len(vals))
	}
	for i, v := range vals {
		out := s.fnType.Out(i)
		if v == nil {
			if !nilable(out.Kind()) {
				return fmt.Errorf("sig: %s: result %d (%s) cannot be nil", s.name, i, out)
			}
			continue
		}
		if !reflect.TypeOf(v).AssignableTo(out) {
			return fmt.Errorf("sig: %s: result %d: %T is not assignable to %s", s.name, i, v, out)
		}
	}
	return nil
}

// ConvertResults turns vals (previously accepted by CheckResults) into
// reflect values suitable for returning from a trampoline.
func (s *Signature) ConvertResults(vals []any) ([]reflect.Value, error) {
	if err := s.CheckResults(vals); err != nil {
		return nil, err
	}
	out := make([]reflect.Value, s.fnType.NumOut())
	for i := range out {
		t := s.fnType.Out(i)
		if i >= len(vals) || vals[i] == nil {
			out[i] = reflect.Zero(t)
			continue
		}
		out[i] = reflect.ValueOf(vals[i])
	}
	return out, nil
}

// ZeroResults returns a zero value for every declared result.
func (s *Signature) ZeroResults() []reflect.Value {
	out := make([]reflect.Value, s.fnType.NumOut())
	for i := range out {
		out[i] = reflect.Zero(s.fnType.Out(i))
	}
	return out
}

// ResultsWithError returns zero values with err in the trailing error
// slot. Callers must check HasTrailingError first.
func (s *Signature) ResultsWithError(err error) []reflect.Value {
	out := s.ZeroResults()
	out[len(out)-1] = reflect.ValueOf(err)
	return out
}

// Call invokes fn with the packed argument values a trampoline received,
// using CallSlice for variadic functions so the packed tail is passed
// through unchanged.
func (s *Signature) Call(fn reflect.Value, in []reflect.Value) []reflect.Value {
	if s.Variadic() {
		return fn.CallSlice(in)
	}
	return fn.Call(in)
}

// FuncName returns a short display name for a function value: the final
// path element of its runtime name, or the type when unavailable.
func FuncName(fv reflect.Value) string {
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return "<func>"
	}
	pc := fv.Pointer()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return fv.Type().String()
	}
	name := f.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	// Trim compiler suffixes on closures and method values (-fm, .func1).
	name = strings.TrimSuffix(name, "-fm")
	return name
}

func nilable(k reflect.Kind) bool {
	switch k {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
		reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return true
	}
	return false
}
