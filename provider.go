package spyglass

import (
	"reflect"
	"sync"
)

// defaultProvider hooks function variables through their pointers. It is
// the Provider every spy uses unless WithProvider overrides it.
var defaultProvider Provider = &funcVarProvider{installed: map[any]*funcVarHandle{}}

// funcVarProvider intercepts calls by swapping the pointee of a
// *func(...) with a reflect.MakeFunc trampoline that forwards into the
// spy's dispatch. Uninstall writes the captured original back.
//
// Every copy of the function value taken before Install keeps pointing at
// the original — only calls made through the variable are intercepted.
// That is the contract of this provider, not of the core.
type funcVarProvider struct {
	mu        sync.Mutex
	installed map[any]*funcVarHandle // keyed by the target pointer
}

type funcVarHandle struct {
	p        *funcVarProvider
	key      any
	elem     reflect.Value // the function variable (settable)
	original reflect.Value

	mu       sync.Mutex
	restored bool
}

// Original returns the function value captured at install time.
func (h *funcVarHandle) Original() reflect.Value { return h.original }

func (p *funcVarProvider) Install(t *Target, d Dispatch) (Handle, error) {
	pv := reflect.ValueOf(t.Ptr)
	if !pv.IsValid() || pv.Kind() != reflect.Pointer || pv.IsNil() {
		return nil, configErrorf("target must be a non-nil pointer to a function variable, got %T", t.Ptr)
	}
	elem := pv.Elem()
	if elem.Kind() != reflect.Func {
		return nil, configErrorf("target must point to a function variable, got *%s", elem.Kind())
	}
	if elem.IsNil() {
		return nil, configErrorf("target function variable is nil")
	}
	if !elem.CanSet() {
		return nil, configErrorf("target function variable is not settable")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.installed[t.Ptr]; exists {
		return nil, configErrorf("the function is already being spied on; unspy the existing spy first")
	}

	// Snapshot the original before swapping in the trampoline.
	original := reflect.ValueOf(elem.Interface())
	h := &funcVarHandle{p: p, key: t.Ptr, elem: elem, original: original}
	elem.Set(reflect.MakeFunc(elem.Type(), d))
	p.installed[t.Ptr] = h
	return h, nil
}

func (p *funcVarProvider) Uninstall(h Handle) error {
	fh, ok := h.(*funcVarHandle)
	if !ok {
		return configErrorf("handle %T was not issued by this provider", h)
	}
	fh.mu.Lock()
	defer fh.mu.Unlock()
	if fh.restored {
		return nil
	}
	fh.elem.Set(fh.original)
	fh.restored = true

	p.mu.Lock()
	delete(p.installed, fh.key)
	p.mu.Unlock()
	return nil
}
