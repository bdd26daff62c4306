// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package device

import "github.com/cpmech/gosl/chk"

// VarKind identifies where a loggable per-cell variable lives.
type VarKind int

const (
	// StateVar is a slot in the state array (membrane potential, gates, concentrations, ...).
	StateVar VarKind = iota
	// DiffusionVar is the single per-cell diffusion-current slot.
	DiffusionVar
)

// RHSFunc evaluates one cell's right-hand side. It mirrors the signature
// gosl/ode.ODE uses for its RHS callback (f, dT, T, ξ, args...), narrowed to
// what a cell needs: the cell's own state slice, its cached slow outputs
// (nil/empty for models with K==0), its diffusion current, and the scalar
// pacing/time inputs. It writes the per-state derivative into deriv and,
// for the slow variant, may also overwrite cache.
type RHSFunc func(deriv, state, cache []float64, idiff, time, dt, pace float64, paced bool)

// Model is the small descriptor the integrator consumes in place of reading
// a model file and invoking a code generator directly: a state count, a
// cache count, kernel source text for the OpenCL backend, and CPU closures
// implementing the identical math for the reference backend and for tests.
// A real deployment obtains this from an external model parser + kernel
// generator; the models registered in models.go stand in for that pipeline
// in this repository.
type Model struct {
	Name string
	S    int // per-cell state count
	K    int // per-cell slow-cache count

	// KernelSource is handed verbatim to the OpenCL backend's program build.
	KernelSource string

	// Slow evaluates every intermediate (writing the ones worth caching into
	// cache) and the full derivative vector. Fast reads cache and recomputes
	// only the rapidly varying intermediates. For models with K==0 the two
	// may be identical.
	Slow RHSFunc
	Fast RHSFunc

	// StateVars maps a "component.var" qualified name to its state slot.
	// Slot 0 must be the membrane potential.
	StateVars map[string]int

	// DiffusionVar is the qualified name bound to the per-cell diffusion
	// current (the idiff array), e.g. "membrane.i_diff".
	DiffusionVar string
}

// Lookup resolves a "component.var" qualified name to a loggable source.
func (m *Model) Lookup(qualified string) (kind VarKind, slot int, ok bool) {
	if qualified == m.DiffusionVar {
		return DiffusionVar, 0, true
	}
	if slot, found := m.StateVars[qualified]; found {
		return StateVar, slot, true
	}
	return 0, 0, false
}

// registry is the model-name -> descriptor factory table, the same
// registry-of-allocators idiom as ele/factory.go's eallocators and
// mconduct/conductmodels.go's allocators.
var registry = make(map[string]func() *Model)

// Register adds a new model under name. Re-registering an existing name is a
// programming error, not a caller input error, so it panics like
// ele.SetAllocator does.
func Register(name string, alloc func() *Model) {
	if _, ok := registry[name]; ok {
		chk.Panic("cannot register model %q because it exists already", name)
	}
	registry[name] = alloc
}

// New allocates a fresh Model instance by name.
func New(name string) (*Model, error) {
	alloc, ok := registry[name]
	if !ok {
		return nil, chk.Err("unknown model %q", name)
	}
	m := alloc()
	if m == nil {
		return nil, chk.Err("model %q allocator returned nil", name)
	}
	return m, nil
}
