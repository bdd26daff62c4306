// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package device implements the host<->accelerator boundary: the device
// context, the flat state store, and the diffusion/derivative/step
// kernels. It follows the same interchangeable-implementation idiom as
// fem.FEsolver/solverallocators and ele.Element/eallocators: a single
// Backend interface, one OpenCL-backed implementation and one pure-Go
// reference implementation that the integrator can drive identically.
package device

import "github.com/cpmech/gosl/chk"

// Config carries everything the backend needs to allocate device resources:
// the grid shape, diffusion conductances, paced-region extent and the model
// descriptor.
type Config struct {
	Nx, Ny           int
	Gx, Gy           float64
	NxPaced, NyPaced int
	Model            *Model
	DevicePreference string // env-style device selector; "" = first available
}

// Backend is the device context plus the three kernels. All methods
// operate on the whole grid; per-iteration ordering (diffusion, then
// slow-or-fast, then step) is the integrator's responsibility, not the
// backend's — there are no explicit events, only enqueue order.
type Backend interface {
	// Init allocates device objects (or their host-side stand-ins) sized for cfg.
	Init(cfg Config) error

	// WriteState uploads the initial state (nx*ny*S finite floats).
	WriteState(state []float64) error

	// ReadState downloads the current state into out (len nx*ny*S).
	ReadState(out []float64) error

	// ReadDiffusion downloads the current idiff array into out (len nx*ny).
	ReadDiffusion(out []float64) error

	// ReadCell0 downloads just cell 0's state slice into out (len S). This
	// lets the integrator perform the NaN halt check cheaply even when no
	// per-cell state variable is in the log registry and the full state
	// array is therefore never read back.
	ReadCell0(out []float64) error

	// Diffusion enqueues the diffusion kernel.
	Diffusion() error

	// Derivative enqueues the slow or fast kernel with the given scalar
	// arguments.
	Derivative(slow bool, time, dt, pace float64) error

	// Step enqueues the forward-Euler update with the given dt.
	Step(dt float64) error

	// Clean releases all device resources. Must tolerate being called when
	// Init never ran or already cleaned.
	Clean() error
}

func validateConfig(cfg Config) error {
	if cfg.Nx <= 0 || cfg.Ny <= 0 {
		return chk.Err("nx and ny must be positive: nx=%d ny=%d", cfg.Nx, cfg.Ny)
	}
	if cfg.Gx < 0 || cfg.Gy < 0 {
		return chk.Err("gx and gy must be non-negative: gx=%g gy=%g", cfg.Gx, cfg.Gy)
	}
	if cfg.NxPaced < 0 || cfg.NyPaced < 0 || cfg.NxPaced > cfg.Nx || cfg.NyPaced > cfg.Ny {
		return chk.Err("nx_paced/ny_paced must be within [0,nx]x[0,ny]: nx_paced=%d ny_paced=%d nx=%d ny=%d",
			cfg.NxPaced, cfg.NyPaced, cfg.Nx, cfg.Ny)
	}
	if cfg.Model == nil {
		return chk.Err("model descriptor is required")
	}
	return nil
}
