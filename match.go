package spyglass

import (
	"fmt"
	"reflect"

	"github.com/quietwire/spyglass/internal/render"
	"github.com/quietwire/spyglass/internal/sig"
)

// Rule is one argument-matching clause plus the behavior to run when it
// matches, used inside MatchAny and MatchInOrder.
//
// A rule matches a call when Args equals the call's leading positional
// arguments (Args may be a prefix) and Named is a subset of the call's
// named arguments with equal values. As a convenience the last element of
// Args may be a Named pattern, which is merged into Named.
//
// Behavior fields are mutually exclusive; when none is set the rule calls
// the original function:
//
//   - Fake: call a substitute function (must be signature-compatible).
//   - Op: resolve a nested Operation, enabling composite protocols such as
//     ordered phases that each accept any of several argument sets.
//   - Block: skip the original and return zero values.
type Rule struct {
	Args  []any
	Named Named
	Fake  any
	Op    Operation
	Block bool
}

// pattern returns the rule's positional prefix and merged named subset.
func (r *Rule) pattern() ([]any, Named) {
	pos, trailing := splitPattern(r.Args)
	if len(trailing) == 0 {
		return pos, r.Named
	}
	merged := make(Named, len(trailing)+len(r.Named))
	for k, v := range trailing {
		merged[k] = v
	}
	for k, v := range r.Named {
		merged[k] = v
	}
	return pos, merged
}

func (r *Rule) matches(rec *CallRecord) bool {
	pos, named := r.pattern()
	return rec.Matches(pos, named)
}

func (r *Rule) String() string {
	pos, named := r.pattern()
	return render.Pattern(pos, named)
}

func (r *Rule) validate(s *sig.Signature) error {
	set := 0
	if r.Fake != nil {
		set++
	}
	if r.Op != nil {
		set++
	}
	if r.Block {
		set++
	}
	if set > 1 {
		return configErrorf("rule %s sets more than one of Fake, Op and Block", r)
	}
	if r.Fake != nil {
		fv := reflect.ValueOf(r.Fake)
		if fv.Kind() != reflect.Func || fv.IsNil() {
			return configErrorf("rule %s: Fake is not a function", r)
		}
		if err := s.CompatibleWith(fv.Type()); err != nil {
			return &ConfigurationError{Reason: "rule fake", Err: err}
		}
	}
	if r.Op != nil {
		return r.Op.validate(s)
	}
	return nil
}

func (r *Rule) bind(sp *Spy) error {
	if r.Op != nil {
		return r.Op.bind(sp)
	}
	return nil
}

// resolve runs the matched rule's behavior. Nested operations resolve
// recursively.
func (r *Rule) resolve(rec *CallRecord) (action, error) {
	switch {
	case r.Op != nil:
		return r.Op.resolve(rec)
	case r.Fake != nil:
		return action{kind: actionFake, fn: r.Fake}, nil
	case r.Block:
		return action{kind: actionBlock}, nil
	default:
		return action{kind: actionOriginal}, nil
	}
}

// MatchAny accepts calls matching any of the given rules, in declaration
// order: the first matching rule wins and its behavior runs. A call that
// matches no rule panics with UnexpectedCallError and is not recorded.
//
//	spyglass.SpyOn(&trigger, spyglass.WithOperation(spyglass.MatchAny(
//	    spyglass.Rule{Args: []any{"hallway_lasers"}, Fake: sendWolves},
//	    spyglass.Rule{Args: []any{"trap_tile"}, Fake: spillHotOil},
//	    spyglass.Rule{Args: []any{"infrared_camera", spyglass.Named{"sector": "underground"}}, Block: true},
//	)))
func MatchAny(rules ...Rule) Operation {
	return &matchAnyOp{rules: rules}
}

type matchAnyOp struct {
	opBase
	rules []Rule
}

func (o *matchAnyOp) validate(s *sig.Signature) error {
	for i := range o.rules {
		if err := o.rules[i].validate(s); err != nil {
			return err
		}
	}
	return nil
}

func (o *matchAnyOp) bind(sp *Spy) error {
	if err := o.opBase.bind(sp); err != nil {
		return err
	}
	for i := range o.rules {
		if err := o.rules[i].bind(sp); err != nil {
			return err
		}
	}
	return nil
}

func (o *matchAnyOp) resolve(rec *CallRecord) (action, error) {
	for i := range o.rules {
		if o.rules[i].matches(rec) {
			return o.rules[i].resolve(rec)
		}
	}
	return action{}, &UnexpectedCallError{
		SpyName:  o.spyName(),
		Call:     rec,
		Expected: fmt.Sprintf("any of %d configured call pattern(s)", len(o.rules)),
	}
}

// MatchInOrder accepts calls matching the given rules one by one, in
// order: only the rule at the cursor may match the current call; a match
// runs that rule's behavior and advances the cursor by exactly one. A call
// that does not match the cursor's rule, or arrives after the last rule,
// panics with UnexpectedCallError and is not recorded; the cursor never
// rewinds.
func MatchInOrder(rules ...Rule) Operation {
	return &matchInOrderOp{rules: rules}
}

type matchInOrderOp struct {
	opBase
	rules  []Rule
	cursor int
}

func (o *matchInOrderOp) validate(s *sig.Signature) error {
	for i := range o.rules {
		if err := o.rules[i].validate(s); err != nil {
			return err
		}
	}
	return nil
}

func (o *matchInOrderOp) bind(sp *Spy) error {
	if err := o.opBase.bind(sp); err != nil {
		return err
	}
	for i := range o.rules {
		if err := o.rules[i].bind(sp); err != nil {
			return err
		}
	}
	return nil
}

func (o *matchInOrderOp) resolve(rec *CallRecord) (action, error) {
	if o.cursor >= len(o.rules) {
		return action{}, &UnexpectedCallError{
			SpyName:  o.spyName(),
			Call:     rec,
			Expected: fmt.Sprintf("no further calls (%d call(s) were expected)", len(o.rules)),
		}
	}
	rule := &o.rules[o.cursor]
	if !rule.matches(rec) {
		return action{}, &UnexpectedCallError{
			SpyName:  o.spyName(),
			Call:     rec,
			Expected: fmt.Sprintf("call %d to match %s", o.cursor+1, rule),
		}
	}
	o.cursor++
	return rule.resolve(rec)
}
