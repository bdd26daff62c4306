// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package device

import "github.com/cpmech/gosl/chk"

// CPUBackend evaluates the identical per-cell math as the OpenCL backend's
// generated kernel text, in plain Go loops over a flat array. It exists so
// the integrator's time-stepping, pacing, logging and halt logic can be
// exercised without an OpenCL device, the same way ana/colpresfluid.go's
// CalcNum gives an independently checkable path alongside the analytic
// Calc. It also serves as the documented software fallback for hosts
// without a usable device.
type CPUBackend struct {
	cfg Config

	nx, ny, s, k int
	state        []float64
	idiff        []float64
	deriv        []float64
	cache        []float64

	initialized bool
}

var _ Backend = (*CPUBackend)(nil)

// NewCPUBackend returns an uninitialized CPU reference backend.
func NewCPUBackend() *CPUBackend { return &CPUBackend{} }

func (o *CPUBackend) Init(cfg Config) error {
	if o.initialized {
		return chk.Err("CPUBackend.Init: already initialized")
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	o.cfg = cfg
	o.nx, o.ny = cfg.Nx, cfg.Ny
	o.s, o.k = cfg.Model.S, cfg.Model.K
	n := o.nx * o.ny
	o.state = make([]float64, n*o.s)
	o.idiff = make([]float64, n)
	o.deriv = make([]float64, n*o.s)
	if o.k > 0 {
		o.cache = make([]float64, n*o.k)
	}
	o.initialized = true
	return nil
}

func (o *CPUBackend) WriteState(state []float64) error {
	if !o.initialized {
		return chk.Err("CPUBackend.WriteState: not initialized")
	}
	if len(state) != len(o.state) {
		return chk.Err("CPUBackend.WriteState: expected length %d, got %d", len(o.state), len(state))
	}
	copy(o.state, state)
	return nil
}

func (o *CPUBackend) ReadState(out []float64) error {
	if !o.initialized {
		return chk.Err("CPUBackend.ReadState: not initialized")
	}
	if len(out) != len(o.state) {
		return chk.Err("CPUBackend.ReadState: expected length %d, got %d", len(o.state), len(out))
	}
	copy(out, o.state)
	return nil
}

func (o *CPUBackend) ReadCell0(out []float64) error {
	if !o.initialized {
		return chk.Err("CPUBackend.ReadCell0: not initialized")
	}
	if len(out) != o.s {
		return chk.Err("CPUBackend.ReadCell0: expected length %d, got %d", o.s, len(out))
	}
	copy(out, o.state[0:o.s])
	return nil
}

func (o *CPUBackend) ReadDiffusion(out []float64) error {
	if !o.initialized {
		return chk.Err("CPUBackend.ReadDiffusion: not initialized")
	}
	if len(out) != len(o.idiff) {
		return chk.Err("CPUBackend.ReadDiffusion: expected length %d, got %d", len(o.idiff), len(out))
	}
	copy(out, o.idiff)
	return nil
}

// Diffusion computes the five-point Laplacian diffusion current with
// zero-flux (Neumann) boundaries, replacing a missing neighbor with the
// cell's own potential.
func (o *CPUBackend) Diffusion() error {
	if !o.initialized {
		return chk.Err("CPUBackend.Diffusion: not initialized")
	}
	nx, ny := o.nx, o.ny
	gx, gy := o.cfg.Gx, o.cfg.Gy
	s := o.s
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			c := y*nx + x
			v := o.state[c*s+0]
			vxm, vxp, vym, vyp := v, v, v, v
			if x > 0 {
				vxm = o.state[(c-1)*s+0]
			}
			if x < nx-1 {
				vxp = o.state[(c+1)*s+0]
			}
			if y > 0 {
				vym = o.state[(c-nx)*s+0]
			}
			if y < ny-1 {
				vyp = o.state[(c+nx)*s+0]
			}
			o.idiff[c] = gx*(2*v-vxm-vxp) + gy*(2*v-vym-vyp)
		}
	}
	return nil
}

// Derivative evaluates the per-cell right-hand side, one cell at a time:
// the slow variant caches intermediate quantities for the fast variant to
// reuse on subsequent calls.
func (o *CPUBackend) Derivative(slow bool, time, dt, pace float64) error {
	if !o.initialized {
		return chk.Err("CPUBackend.Derivative: not initialized")
	}
	m := o.cfg.Model
	rhs := m.Fast
	if slow {
		rhs = m.Slow
	}
	nx, ny := o.nx, o.ny
	nxp, nyp := o.cfg.NxPaced, o.cfg.NyPaced
	s, k := o.s, o.k
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			c := y*nx + x
			paced := x < nxp && y < nyp
			var cellCache []float64
			if k > 0 {
				cellCache = o.cache[c*k : (c+1)*k]
			}
			rhs(o.deriv[c*s:(c+1)*s], o.state[c*s:(c+1)*s], cellCache, o.idiff[c], time, dt, pace, paced)
		}
	}
	return nil
}

// Step applies the forward-Euler state update: state += dt * deriv.
func (o *CPUBackend) Step(dt float64) error {
	if !o.initialized {
		return chk.Err("CPUBackend.Step: not initialized")
	}
	for i := range o.state {
		o.state[i] += dt * o.deriv[i]
	}
	return nil
}

func (o *CPUBackend) Clean() error {
	o.state, o.idiff, o.deriv, o.cache = nil, nil, nil, nil
	o.initialized = false
	return nil
}
