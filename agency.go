package spyglass

import (
	"errors"
	"log/slog"
	"sync"
	"testing"
)

// Agency owns a collection of spies: it centralizes creation, bulk
// teardown, and assertions scoped to the spies it created. Construct one
// per test scope with NewAgency (or spytest.NewAgency, which tears it
// down automatically) and call UnspyAll at the end of the scope.
//
// An Agency is an explicit object passed or held by the caller — there is
// no package-level hidden agency.
type Agency struct {
	logger   *slog.Logger
	provider Provider

	mu    sync.Mutex
	spies []*Spy
}

// NewAgency creates an empty agency.
func NewAgency(opts ...AgencyOption) *Agency {
	cfg := agencyConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.provider == nil {
		cfg.provider = defaultProvider
	}
	return &Agency{logger: cfg.logger, provider: cfg.provider}
}

// SpyOn intercepts target (a non-nil pointer to a function variable) and
// registers the resulting spy with the agency. The spy inherits the
// agency's logger and provider unless overridden by options.
func (a *Agency) SpyOn(target any, opts ...Option) (*Spy, error) {
	s, err := newSpy(target, a, opts...)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.spies = append(a.spies, s)
	a.mu.Unlock()
	return s, nil
}

// Unspy stops spying on target, which must be the same pointer passed to
// SpyOn. Fails when the agency has no spy for it.
func (a *Agency) Unspy(target any) error {
	a.mu.Lock()
	var found *Spy
	for _, s := range a.spies {
		if s.target.Ptr == target {
			found = s
			break
		}
	}
	a.mu.Unlock()
	if found == nil {
		return configErrorf("no spy registered for target %T", target)
	}
	return found.Unspy()
}

// UnspyAll removes every spy the agency owns, in creation order. A
// failure restoring one spy does not stop the rest: every spy is
// attempted, and all failures are joined into the returned error.
func (a *Agency) UnspyAll() error {
	a.mu.Lock()
	spies := make([]*Spy, len(a.spies))
	copy(spies, a.spies)
	a.mu.Unlock()

	var errs []error
	for _, s := range spies {
		if err := s.Unspy(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Spies returns the spies the agency currently owns, in creation order.
func (a *Agency) Spies() []*Spy {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Spy, len(a.spies))
	copy(out, a.spies)
	return out
}

// HasSpy reports whether the agency owns s.
func (a *Agency) HasSpy(s *Spy) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, owned := range a.spies {
		if owned == s {
			return true
		}
	}
	return false
}

// remove drops s from the owned set. Called by Spy.Unspy.
func (a *Agency) remove(s *Spy) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, owned := range a.spies {
		if owned == s {
			a.spies = append(a.spies[:i], a.spies[i+1:]...)
			return
		}
	}
}

// Scoped assertions. Each verifies ownership first, then delegates to the
// standalone assertion functions — the agency adds no assertion state of
// its own, it is a facade over the same predicates.

// AssertHasSpy fails the test when s was not created by this agency.
func (a *Agency) AssertHasSpy(t testing.TB, s *Spy) {
	t.Helper()
	if !a.HasSpy(s) {
		t.Fatalf("spy %s is not owned by this agency", s.Name())
	}
}

// AssertSpyCalled fails the test unless s (owned by this agency) was
// called at least once.
func (a *Agency) AssertSpyCalled(t testing.TB, s *Spy) {
	t.Helper()
	a.AssertHasSpy(t, s)
	AssertCalled(t, s)
}

// AssertSpyNotCalled fails the test if s (owned by this agency) was
// called.
func (a *Agency) AssertSpyNotCalled(t testing.TB, s *Spy) {
	t.Helper()
	a.AssertHasSpy(t, s)
	AssertNotCalled(t, s)
}

// AssertSpyCalledWith fails the test unless some call to s matches the
// given arguments (positional prefix plus optional trailing Named).
func (a *Agency) AssertSpyCalledWith(t testing.TB, s *Spy, args ...any) {
	t.Helper()
	a.AssertHasSpy(t, s)
	AssertCalledWith(t, s, args...)
}

// AssertSpyLastCalledWith fails the test unless the most recent call to s
// matches the given arguments.
func (a *Agency) AssertSpyLastCalledWith(t testing.TB, s *Spy, args ...any) {
	t.Helper()
	a.AssertHasSpy(t, s)
	AssertLastCalledWith(t, s, args...)
}

// AssertSpyReturned fails the test unless some call to s returned value.
func (a *Agency) AssertSpyReturned(t testing.TB, s *Spy, value any) {
	t.Helper()
	a.AssertHasSpy(t, s)
	AssertReturned(t, s, value)
}

// AssertSpyLastReturned fails the test unless the most recent call to s
// returned value.
func (a *Agency) AssertSpyLastReturned(t testing.TB, s *Spy, value any) {
	t.Helper()
	a.AssertHasSpy(t, s)
	AssertLastReturned(t, s, value)
}

// AssertSpyRaised fails the test unless some call to s ended with an
// error outcome matching target.
func (a *Agency) AssertSpyRaised(t testing.TB, s *Spy, target error) {
	t.Helper()
	a.AssertHasSpy(t, s)
	AssertRaised(t, s, target)
}

// AssertSpyRaisedMessage fails the test unless some call to s ended with
// an error outcome matching target and rendering exactly message.
func (a *Agency) AssertSpyRaisedMessage(t testing.TB, s *Spy, target error, message string) {
	t.Helper()
	a.AssertHasSpy(t, s)
	AssertRaisedMessage(t, s, target, message)
}
