package spyglass

import (
	"github.com/quietwire/spyglass/internal/sig"
)

// Operation decides the outcome of each call to a spied function. The
// built-in operations are Return, ReturnInOrder, Raise, RaiseInOrder,
// MatchAny and MatchInOrder; MatchAny/MatchInOrder are built from Rule
// entries whose behavior may itself be another Operation, so operations
// compose into ordered phases that each accept several argument sets.
//
// The interface is sealed: its methods are unexported, so the set of
// variants is closed and resolution can treat it as a sum type. An
// Operation instance holds per-spy cursor state and belongs to exactly
// one spy.
type Operation interface {
	// validate checks the operation tree against the target's signature.
	// Called once, at SpyOn time.
	validate(s *sig.Signature) error
	// bind attaches the operation tree to its spy. Fails if any node is
	// already bound to a different spy.
	bind(sp *Spy) error
	// resolve picks the action for a call. It runs under the spy's mutex
	// and is the only place cursor state advances.
	resolve(rec *CallRecord) (action, error)
}

// Provider is the runtime hook that routes real calls into a spy and can
// restore the original dispatch. The default provider swaps a function
// variable through its pointer; alternative providers (e.g. swapping an
// interface field, or a linker-level hook) plug in via WithProvider.
//
// A provider must not alter or drop any argument, must evaluate arguments
// exactly once, and must return or panic to the original caller exactly
// what the Dispatch produced.
type Provider interface {
	// Install replaces the target's effective dispatch with d.
	Install(t *Target, d Dispatch) (Handle, error)
	// Uninstall restores the original dispatch. Safe to call more than
	// once for the same handle.
	Uninstall(h Handle) error
}

// action is a fully resolved behavior for one call. Exactly one of the
// branches is taken by Spy.dispatch.
type action struct {
	kind    actionKind
	results []any // actionReturn
	err     error // actionRaise
	fn      any   // actionFake: the substitute function
}

type actionKind int

const (
	actionOriginal actionKind = iota // call the real target
	actionBlock                      // skip the target, return zero values
	actionReturn                     // produce canned results
	actionRaise                      // produce an error outcome
	actionFake                       // call a substitute function
)
