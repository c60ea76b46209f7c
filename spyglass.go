// Package spyglass provides function spies for Go tests: intercept calls
// to a function variable, record every invocation, and substitute
// configurable behavior without changing the function's signature.
//
// A spy wraps one target. By default calls pass through to the original
// and are recorded; a fake reroutes them, and an Operation decides the
// outcome per call — canned returns, raised errors, FIFO queues of
// either, or argument-based rule matching (any-order or strictly ordered,
// with nesting):
//
//	greet := func(name string) string { return "hi " + name }
//
//	a := spyglass.NewAgency()
//	defer a.UnspyAll()
//
//	spy, err := a.SpyOn(&greet,
//	    spyglass.WithParamNames("name"),
//	    spyglass.WithFake(func(name string) string { return "bye " + name }),
//	)
//	if err != nil { ... }
//
//	greet("sam") // "bye sam", recorded
//
//	spy.LastCalledWith(spyglass.Named{"name": "sam"}) // true
//	spy.LastReturned("bye sam")                       // true
//
// Dispatch is synchronous on the caller's goroutine and preserves the
// target's calling convention exactly, aside from whichever substitution
// was configured. An Agency owns many spies for one test scope; the
// spytest subpackage tears one down automatically via testing.TB.Cleanup.
package spyglass

// SpyOn intercepts target (a non-nil pointer to a function variable)
// without registering it with any agency. The caller owns teardown:
// call Unspy when done.
//
// Fails with ConfigurationError on contradictory configuration (a fake
// together with an operation), an incompatible fake signature, invalid
// operation values, or a target that is already spied on.
func SpyOn(target any, opts ...Option) (*Spy, error) {
	return newSpy(target, nil, opts...)
}
