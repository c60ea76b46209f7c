package spyglass

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/quietwire/spyglass/internal/sig"
)

// Spy intercepts one target function, records every invocation, and
// substitutes configured behavior. Create spies with SpyOn or
// Agency.SpyOn; the zero value is not usable.
//
// Exactly one behavior source is active at dispatch time, chosen with
// priority: Operation > fake > call-original (the default when nothing
// else is configured).
//
// A Spy is safe for concurrent use: cursor advancement and history
// appends are serialized on a per-spy mutex. The fake or original runs
// outside that mutex, so a spied call may reenter the same or another spy
// without deadlocking.
type Spy struct {
	id     uuid.UUID
	name   string
	target *Target
	sg     *sig.Signature
	logger *slog.Logger

	provider Provider
	handle   Handle
	original reflect.Value

	op           Operation
	fake         reflect.Value // invalid when no fake is configured
	callOriginal bool

	agency *Agency // nil for standalone spies

	mu        sync.Mutex
	installed bool
	calls     []*CallRecord
}

// newSpy validates the configuration, installs the interception, and
// registers nothing: agency registration is the caller's business.
func newSpy(target any, agency *Agency, opts ...Option) (*Spy, error) {
	cfg := spyConfig{callOriginal: true}
	if agency != nil {
		cfg.logger = agency.logger
		cfg.provider = agency.provider
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.provider == nil {
		cfg.provider = defaultProvider
	}

	if cfg.fake != nil && cfg.op != nil {
		return nil, configErrorf("a spy takes a fake or an operation, not both")
	}

	pv := reflect.ValueOf(target)
	if !pv.IsValid() || pv.Kind() != reflect.Pointer || pv.IsNil() || pv.Elem().Kind() != reflect.Func {
		return nil, configErrorf("target must be a non-nil pointer to a function variable, got %T", target)
	}
	origVal := pv.Elem()
	if origVal.IsNil() {
		return nil, configErrorf("target function variable is nil")
	}

	name := cfg.name
	if name == "" {
		name = sig.FuncName(origVal)
	}
	if cfg.owner != nil && cfg.name != "" {
		name = fmt.Sprintf("%T.%s", cfg.owner, cfg.name)
	}

	sg, err := sig.New(origVal.Type(), name, cfg.paramNames)
	if err != nil {
		return nil, &ConfigurationError{Reason: "target signature", Err: err}
	}

	s := &Spy{
		id:     uuid.New(),
		name:   name,
		sg:     sg,
		logger: cfg.logger,
		target: &Target{
			Ptr:        target,
			Name:       cfg.name,
			Owner:      cfg.owner,
			ParamNames: cfg.paramNames,
		},
		provider:     cfg.provider,
		op:           cfg.op,
		callOriginal: cfg.callOriginal,
		agency:       agency,
	}

	if cfg.fake != nil {
		fv := reflect.ValueOf(cfg.fake)
		if fv.Kind() != reflect.Func || fv.IsNil() {
			return nil, configErrorf("fake for %s is not a function", name)
		}
		if err := sg.CompatibleWith(fv.Type()); err != nil {
			return nil, &ConfigurationError{Reason: "fake", Err: err}
		}
		s.fake = fv
	}
	if cfg.op != nil {
		if err := cfg.op.validate(sg); err != nil {
			if _, ok := err.(*ConfigurationError); ok {
				return nil, err
			}
			return nil, &ConfigurationError{Reason: "operation", Err: err}
		}
		if err := cfg.op.bind(s); err != nil {
			return nil, err
		}
	}

	handle, err := cfg.provider.Install(s.target, s.dispatch)
	if err != nil {
		if _, ok := err.(*ConfigurationError); ok {
			return nil, err
		}
		return nil, &ConfigurationError{Reason: "install", Err: err}
	}
	s.handle = handle
	s.original = handle.Original()
	s.installed = true

	s.logger.Debug("spyglass: spy installed", "spy", name, "id", s.id)
	return s, nil
}

// ID is the spy's unique identity, used by agencies and in logs.
func (s *Spy) ID() uuid.UUID { return s.id }

// Name is the spy's display name, used in errors and renderings.
func (s *Spy) Name() string { return s.name }

// Installed reports whether the interception is still in place.
func (s *Spy) Installed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.installed
}

// dispatch is the single entry point for intercepted calls. It normalizes
// the arguments, resolves an action under the spy's mutex, executes it
// unlocked, appends the CallRecord under the mutex, and propagates the
// outcome to the caller exactly as the real target would have.
//
// Resolution failures (UnexpectedCallError, QueueExhaustedError) panic
// before anything is recorded: the call never completed, so there is no
// outcome to record.
func (s *Spy) dispatch(in []reflect.Value) []reflect.Value {
	pos, named := s.sg.Normalize(in)
	rec := &CallRecord{
		spyName: s.name,
		args:    pos,
		named:   named,
		names:   s.sg.ParamNames(),
	}

	s.mu.Lock()
	act, resolveErr := s.resolveLocked(rec)
	s.mu.Unlock()
	if resolveErr != nil {
		s.logger.Debug("spyglass: call rejected", "spy", s.name, "err", resolveErr)
		panic(resolveErr)
	}

	var (
		out      []reflect.Value
		callErr  error
		panicVal any
		panicked bool
	)
	switch act.kind {
	case actionReturn:
		var err error
		out, err = s.sg.ConvertResults(act.results)
		if err != nil {
			// Unreachable after SpyOn validation; kept as a hard stop so a
			// broken operation cannot silently return garbage.
			panic(&ConfigurationError{Reason: "return values", Err: err})
		}
	case actionRaise:
		callErr = act.err
		if s.sg.HasTrailingError() {
			out = s.sg.ResultsWithError(act.err)
		} else {
			panicked = true
			panicVal = act.err
		}
	case actionFake:
		out, callErr, panicVal, panicked = s.call(reflect.ValueOf(act.fn), in)
	case actionOriginal:
		out, callErr, panicVal, panicked = s.call(s.original, in)
	case actionBlock:
		out = s.sg.ZeroResults()
	}

	s.mu.Lock()
	rec.seq = len(s.calls)
	rec.err = callErr
	rec.panicked = panicked
	if callErr == nil {
		rec.returns = s.resultsOf(out)
	}
	s.calls = append(s.calls, rec)
	s.mu.Unlock()

	s.logger.Debug("spyglass: call recorded", "spy", s.name, "call", rec.String())

	if panicked {
		panic(panicVal)
	}
	return out
}

func (s *Spy) resolveLocked(rec *CallRecord) (action, error) {
	switch {
	case s.op != nil:
		return s.op.resolve(rec)
	case s.fake.IsValid():
		return action{kind: actionFake, fn: s.fake.Interface()}, nil
	case s.callOriginal:
		return action{kind: actionOriginal}, nil
	default:
		return action{kind: actionBlock}, nil
	}
}

// call invokes fn on the caller's goroutine, capturing a panic or a
// non-nil trailing error result as the call's error outcome. A panic is
// re-raised by dispatch after recording.
func (s *Spy) call(fn reflect.Value, in []reflect.Value) (out []reflect.Value, callErr error, panicVal any, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			panicVal = r
			if err, ok := r.(error); ok {
				callErr = err
			} else {
				callErr = fmt.Errorf("panic: %v", r)
			}
		}
	}()
	out = s.sg.Call(fn, in)
	if s.sg.HasTrailingError() {
		if last := out[len(out)-1]; !last.IsNil() {
			callErr = last.Interface().(error)
		}
	}
	return out, callErr, nil, false
}

// resultsOf converts a successful call's results for recording, dropping
// the (nil) trailing error slot when the target declares one.
func (s *Spy) resultsOf(out []reflect.Value) []any {
	n := len(out)
	if s.sg.HasTrailingError() {
		n--
	}
	rets := make([]any, n)
	for i := 0; i < n; i++ {
		rets[i] = out[i].Interface()
	}
	return rets
}

// Original invokes the real target directly, bypassing resolution and
// recording. Useful from inside a fake that wants to wrap the original.
// Variadic arguments are passed individually, as in a normal Go call.
func (s *Spy) Original(args ...any) ([]any, error) {
	t := s.sg.Type()
	if t.IsVariadic() {
		if len(args) < t.NumIn()-1 {
			return nil, configErrorf("%s takes at least %d argument(s), got %d", s.name, t.NumIn()-1, len(args))
		}
	} else if len(args) != t.NumIn() {
		return nil, configErrorf("%s takes %d argument(s), got %d", s.name, t.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var pt reflect.Type
		if i < t.NumIn()-1 || !t.IsVariadic() {
			pt = t.In(i)
		} else {
			pt = t.In(t.NumIn() - 1).Elem()
		}
		if a == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		av := reflect.ValueOf(a)
		if !av.Type().AssignableTo(pt) {
			return nil, configErrorf("%s: argument %d: %T is not assignable to %s", s.name, i, a, pt)
		}
		in[i] = av
	}
	out := s.original.Call(in)
	rets := make([]any, len(out))
	for i, o := range out {
		rets[i] = o.Interface()
	}
	return rets, nil
}

// Calls returns the spy's history in true invocation order.
func (s *Spy) Calls() []*CallRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*CallRecord, len(s.calls))
	copy(out, s.calls)
	return out
}

// LastCall returns the most recent CallRecord, or nil if the spy has not
// been called since the last ResetCalls.
func (s *Spy) LastCall() *CallRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

// CallCount returns the number of recorded calls.
func (s *Spy) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// Called reports whether the spy was called at least once.
func (s *Spy) Called() bool { return s.CallCount() > 0 }

// CalledWith reports whether any recorded call matches the given
// positional prefix, optionally followed by one trailing Named pattern.
func (s *Spy) CalledWith(args ...any) bool {
	for _, c := range s.Calls() {
		if c.CalledWith(args...) {
			return true
		}
	}
	return false
}

// LastCalledWith reports whether the most recent call matches the given
// arguments.
func (s *Spy) LastCalledWith(args ...any) bool {
	c := s.LastCall()
	return c != nil && c.CalledWith(args...)
}

// Returned reports whether any recorded call returned the given value.
func (s *Spy) Returned(value any) bool {
	for _, c := range s.Calls() {
		if c.Returned(value) {
			return true
		}
	}
	return false
}

// LastReturned reports whether the most recent call returned the given
// value.
func (s *Spy) LastReturned(value any) bool {
	c := s.LastCall()
	return c != nil && c.Returned(value)
}

// Raised reports whether any recorded call ended with an error outcome
// matching target (errors.Is semantics).
func (s *Spy) Raised(target error) bool {
	for _, c := range s.Calls() {
		if c.Raised(target) {
			return true
		}
	}
	return false
}

// LastRaised reports whether the most recent call ended with an error
// outcome matching target.
func (s *Spy) LastRaised(target error) bool {
	c := s.LastCall()
	return c != nil && c.Raised(target)
}

// RaisedMessage reports whether any recorded call ended with an error
// outcome matching target and rendering exactly message.
func (s *Spy) RaisedMessage(target error, message string) bool {
	for _, c := range s.Calls() {
		if c.RaisedMessage(target, message) {
			return true
		}
	}
	return false
}

// LastRaisedMessage reports whether the most recent call ended with an
// error outcome matching target and rendering exactly message.
func (s *Spy) LastRaisedMessage(target error, message string) bool {
	c := s.LastCall()
	return c != nil && c.RaisedMessage(target, message)
}

// ResetCalls clears the history. Configuration (operation, fake,
// call-original) is unchanged; sequence indexes restart at zero.
func (s *Spy) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// Unspy restores the original dispatch and freezes the history.
// Idempotent: repeated calls have no further effect and return nil.
func (s *Spy) Unspy() error {
	s.mu.Lock()
	if !s.installed {
		s.mu.Unlock()
		return nil
	}
	s.installed = false
	s.mu.Unlock()

	if err := s.provider.Uninstall(s.handle); err != nil {
		// The interception is still in place; leave the spy installed so
		// a later retry (or UnspyAll) attempts the restore again.
		s.mu.Lock()
		s.installed = true
		s.mu.Unlock()
		return fmt.Errorf("unspy %s: %w", s.name, err)
	}
	if s.agency != nil {
		s.agency.remove(s)
	}
	s.logger.Debug("spyglass: spy removed", "spy", s.name, "id", s.id)
	return nil
}
