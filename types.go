package spyglass

import (
	"reflect"
)

// Named is a named-argument pattern: parameter name to expected value.
// It appears in three places with the same subset semantics everywhere:
// as the trailing element of a CalledWith argument list, as Rule.Named,
// and in assertion patterns. A Named pattern matches a call when every
// entry equals the call's recorded value for that parameter; parameters
// not listed are unconstrained.
type Named map[string]any

// Results marks a full result set for a single call inside a
// ReturnInOrder queue. A plain queue element stands for a single return
// value; wrap multi-value results in Results:
//
//	spyglass.ReturnInOrder(
//	    spyglass.Results{5, nil},
//	    spyglass.Results{0, io.EOF},
//	)
type Results []any

// Target identifies the callable being spied on. The hook mechanism is a
// non-nil pointer to a function variable; Owner and Name disambiguate
// targets whose identity is unstable across accesses (method values,
// struct fields holding closures).
type Target struct {
	// Ptr is a non-nil pointer to a function variable.
	Ptr any
	// Name overrides the display name derived from the runtime function
	// name. Optional.
	Name string
	// Owner is the object the callable belongs to, for display purposes.
	// Optional.
	Owner any
	// ParamNames declares the target's parameter names, one per declared
	// parameter (a variadic tail keeps one name for the whole slice).
	// Optional; defaults to arg0..argN.
	ParamNames []string
}

// Dispatch is the provider-facing entry point of a spy: it receives one
// packed argument value per declared parameter (variadic tail as a slice)
// and returns one value per declared result. A provider must forward every
// call to it unchanged, evaluate arguments exactly once, and hand whatever
// it returns (or panics with) back to the original caller.
type Dispatch func(in []reflect.Value) []reflect.Value

// Handle represents one installed interception. Uninstalling through the
// owning Provider must be idempotent.
type Handle interface {
	// Original returns the target's original function value, captured at
	// install time.
	Original() reflect.Value
}
