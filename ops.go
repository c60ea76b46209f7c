package spyglass

import (
	"github.com/quietwire/spyglass/internal/sig"
)

// opBase carries the spy binding shared by every operation variant. An
// operation instance holds cursor state for one spy; binding it to a
// second spy is a configuration error.
type opBase struct {
	spy *Spy
}

func (b *opBase) bind(sp *Spy) error {
	if b.spy != nil && b.spy != sp {
		return configErrorf("operation is already bound to spy %s", b.spy.Name())
	}
	b.spy = sp
	return nil
}

func (b *opBase) spyName() string {
	if b.spy != nil {
		return b.spy.Name()
	}
	return "<unbound spy>"
}

// Return produces the same canned results on every call. values must fit
// the target's declared results; a trailing error slot may be omitted and
// is then implied nil.
//
//	spyglass.SpyOn(&getIdentity, spyglass.WithOperation(spyglass.Return("nobody...")))
func Return(values ...any) Operation {
	return &returnOp{results: values}
}

type returnOp struct {
	opBase
	results []any
}

func (o *returnOp) validate(s *sig.Signature) error {
	if err := s.CheckResults(o.results); err != nil {
		return &ConfigurationError{Reason: "Return", Err: err}
	}
	return nil
}

func (o *returnOp) resolve(*CallRecord) (action, error) {
	return action{kind: actionReturn, results: o.results}, nil
}

// ReturnInOrder produces one queued result set per call, strictly FIFO.
// Each element stands for a single return value; wrap multi-value results
// in Results. A call made after the queue is exhausted panics with
// QueueExhaustedError and is not recorded.
func ReturnInOrder(values ...any) Operation {
	queue := make([][]any, len(values))
	for i, v := range values {
		if rs, ok := v.(Results); ok {
			queue[i] = rs
		} else {
			queue[i] = []any{v}
		}
	}
	return &returnInOrderOp{queue: queue}
}

type returnInOrderOp struct {
	opBase
	queue  [][]any
	cursor int
}

func (o *returnInOrderOp) validate(s *sig.Signature) error {
	for _, results := range o.queue {
		if err := s.CheckResults(results); err != nil {
			return &ConfigurationError{Reason: "ReturnInOrder", Err: err}
		}
	}
	return nil
}

func (o *returnInOrderOp) resolve(*CallRecord) (action, error) {
	if o.cursor >= len(o.queue) {
		return action{}, &QueueExhaustedError{SpyName: o.spyName(), Kind: "return", Length: len(o.queue)}
	}
	results := o.queue[o.cursor]
	o.cursor++
	return action{kind: actionReturn, results: results}, nil
}

// Raise produces the given error on every call: returned through the
// target's trailing error result when it has one, re-raised as a panic
// otherwise. Either way the error is recorded as the call's outcome.
//
//	spyglass.SpyOn(&emitPoison, spyglass.WithOperation(spyglass.Raise(ErrPoisonEmpty)))
func Raise(err error) Operation {
	return &raiseOp{err: err}
}

type raiseOp struct {
	opBase
	err error
}

func (o *raiseOp) validate(*sig.Signature) error {
	if o.err == nil {
		return configErrorf("Raise requires a non-nil error")
	}
	return nil
}

func (o *raiseOp) resolve(*CallRecord) (action, error) {
	return action{kind: actionRaise, err: o.err}, nil
}

// RaiseInOrder produces one queued error per call, strictly FIFO, with the
// same exhaustion semantics as ReturnInOrder.
func RaiseInOrder(errs ...error) Operation {
	return &raiseInOrderOp{queue: errs}
}

type raiseInOrderOp struct {
	opBase
	queue  []error
	cursor int
}

func (o *raiseInOrderOp) validate(*sig.Signature) error {
	for i, err := range o.queue {
		if err == nil {
			return configErrorf("RaiseInOrder: queue entry %d is nil", i)
		}
	}
	return nil
}

func (o *raiseInOrderOp) resolve(*CallRecord) (action, error) {
	if o.cursor >= len(o.queue) {
		return action{}, &QueueExhaustedError{SpyName: o.spyName(), Kind: "raise", Length: len(o.queue)}
	}
	err := o.queue[o.cursor]
	o.cursor++
	return action{kind: actionRaise, err: err}, nil
}
