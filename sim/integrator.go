// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"math"

	"github.com/cpmech/cardiotissue/sim/device"
	"github.com/cpmech/cardiotissue/sim/logger"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Integrator drives one grid's time evolution and owns its device resources
// end to end. Everything live is a field on this struct, so multiple
// Integrators can coexist in the same process.
type Integrator struct {
	cfg Config

	backend device.Backend
	reg     *logger.Registry

	nx, ny, s, n int
	dtMin        float64

	t, dt, pace, tNextPace, tNextLog float64
	stepsTillSlow                    int
	halt                             bool

	hostState []float64
	hostIdiff []float64
	cell0     []float64

	yieldEvery     int
	iterSinceYield int

	initialized bool

	Summary Summary
}

// New validates cfg, allocates the device backend and logging registry,
// uploads the initial state, and performs the t=tmin log entry when logging
// is enabled. This is the "init" lifecycle operation: every call returns a
// fresh, independent Integrator rather than re-arming a shared one.
func New(cfg Config) (*Integrator, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	o := &Integrator{cfg: cfg}
	o.nx, o.ny, o.s = cfg.Nx, cfg.Ny, cfg.Model.S
	o.n = o.nx * o.ny
	o.dtMin = cfg.DefaultDt * 1e-2

	backend := cfg.Backend
	if backend == nil {
		backend = device.NewOpenCLBackend()
	}
	o.backend = backend

	devCfg := device.Config{
		Nx: cfg.Nx, Ny: cfg.Ny,
		Gx: cfg.Gx, Gy: cfg.Gy,
		NxPaced: cfg.NxPaced, NyPaced: cfg.NyPaced,
		Model:            cfg.Model,
		DevicePreference: cfg.DevicePreference,
	}
	if err := o.backend.Init(devCfg); err != nil {
		return nil, chk.Err("cannot initialize device backend: %v", err)
	}
	if err := o.backend.WriteState(cfg.StateIn); err != nil {
		o.backend.Clean()
		return nil, chk.Err("cannot upload initial state: %v", err)
	}

	reg, err := logger.New(cfg.LogRegistry, cfg.Nx, cfg.Ny, cfg.Model)
	if err != nil {
		o.backend.Clean()
		return nil, err
	}
	o.reg = reg

	o.hostState = make([]float64, o.n*o.s)
	o.hostIdiff = make([]float64, o.n)
	o.cell0 = make([]float64, o.s)

	o.t = cfg.Tmin
	o.stepsTillSlow = 0
	o.halt = false

	if cfg.LogInterval <= 0 || len(cfg.LogRegistry) == 0 {
		o.tNextLog = cfg.Tmax + 1
	} else {
		o.tNextLog = cfg.Tmin + cfg.LogInterval
	}

	cfg.Protocol.Advance(cfg.Tmin, cfg.Tmin)
	o.pace = cfg.Protocol.Level()
	o.tNextPace = cfg.Protocol.NextTime()
	o.chooseDt()

	threshold := 500 + 200000/o.n
	if threshold < 1000 {
		threshold = 1000
	}
	o.yieldEvery = threshold

	o.initialized = true

	if o.tNextLog <= cfg.Tmax {
		// first log entry, written at t=tmin, straight from the caller's
		// initial state: no device read-back needed yet.
		copy(o.hostState, cfg.StateIn)
		for i := range o.hostIdiff {
			o.hostIdiff[i] = 0
		}
		o.reg.Append(o.t, o.pace, o.dt, o.hostState, o.hostIdiff, o.s)
		o.Summary.LogAppends++
	}

	if cfg.Verbose {
		io.Pf("> integrator initialised: nx=%d ny=%d S=%d K=%d model=%q\n", cfg.Nx, cfg.Ny, cfg.Model.S, cfg.Model.K, cfg.Model.Name)
	}
	return o, nil
}

func validate(cfg Config) error {
	if cfg.Model == nil {
		return chk.Err("model descriptor is required")
	}
	if cfg.Nx <= 0 || cfg.Ny <= 0 {
		return chk.Err("nx and ny must be positive: nx=%d ny=%d", cfg.Nx, cfg.Ny)
	}
	if cfg.Gx < 0 || cfg.Gy < 0 {
		return chk.Err("gx and gy must be non-negative")
	}
	if cfg.Tmax <= cfg.Tmin {
		return chk.Err("tmax (%g) must be greater than tmin (%g)", cfg.Tmax, cfg.Tmin)
	}
	if cfg.DefaultDt <= 0 {
		return chk.Err("default_dt must be positive, got %g", cfg.DefaultDt)
	}
	n := cfg.Nx * cfg.Ny
	if len(cfg.StateIn) != n*cfg.Model.S {
		return chk.Err("state_in has length %d, expected nx*ny*S=%d", len(cfg.StateIn), n*cfg.Model.S)
	}
	for i, v := range cfg.StateIn {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return chk.Err("state_in[%d]=%g is not finite", i, v)
		}
	}
	if len(cfg.StateOut) != n*cfg.Model.S {
		return chk.Err("state_out has length %d, expected nx*ny*S=%d", len(cfg.StateOut), n*cfg.Model.S)
	}
	if cfg.Protocol == nil {
		return chk.Err("protocol is required")
	}
	if cfg.NxPaced < 0 || cfg.NyPaced < 0 || cfg.NxPaced > cfg.Nx || cfg.NyPaced > cfg.Ny {
		return chk.Err("nx_paced/ny_paced must lie within [0,nx]x[0,ny]")
	}
	if cfg.LogInterval < 0 {
		return chk.Err("log_interval must be non-negative, got %g", cfg.LogInterval)
	}
	if cfg.Ratio < 1 {
		return chk.Err("ratio must be >= 1, got %d", cfg.Ratio)
	}
	return nil
}

// Step runs the inner iteration until one of: a cooperative yield boundary,
// full completion (t reaches tmax), or a NaN halt. It returns t at a yield,
// tmax on completion and tmin-1 on a halt. On
// completion or halt it reads back the final state into cfg.StateOut and
// invokes Clean. On a yield, the Integrator remains initialized and a
// further Step call resumes the loop.
func (o *Integrator) Step() (float64, error) {
	if !o.initialized {
		return 0, chk.Err("Step called before Init or after Clean")
	}
	o.iterSinceYield = 0
	for {
		if err := o.backend.Diffusion(); err != nil {
			return 0, o.fail(err)
		}

		slow := o.stepsTillSlow == 0
		if err := o.backend.Derivative(slow, o.t, o.dt, o.pace); err != nil {
			return 0, o.fail(err)
		}
		if slow {
			o.stepsTillSlow = o.cfg.Ratio - 1
			o.Summary.SlowEnqueues++
		} else {
			o.stepsTillSlow--
		}

		if err := o.backend.Step(o.dt); err != nil {
			return 0, o.fail(err)
		}
		o.Summary.StepsTaken++

		prevT := o.t
		o.t += o.dt
		o.cfg.Protocol.Advance(prevT, o.t)
		o.pace = o.cfg.Protocol.Level()
		o.tNextPace = o.cfg.Protocol.NextTime()

		for o.t >= o.tNextLog {
			if err := o.logBoundary(); err != nil {
				return 0, o.fail(err)
			}
			o.tNextLog += o.cfg.LogInterval
		}

		if o.t >= o.cfg.Tmax || o.halt {
			return o.finish()
		}

		o.chooseDt()

		o.iterSinceYield++
		if o.iterSinceYield >= o.yieldEvery {
			if flusher, ok := o.backend.(interface{ Flush() error }); ok {
				if err := flusher.Flush(); err != nil {
					return 0, o.fail(err)
				}
			}
			o.Summary.YieldCount++
			return o.t, nil
		}
	}
}

// logBoundary reads back only what the registry references, runs the NaN
// halt check, and appends.
func (o *Integrator) logBoundary() error {
	needFullState := o.reg.LoggingStates || o.cfg.StrictHalt

	var statePtr []float64
	if needFullState {
		if err := o.backend.ReadState(o.hostState); err != nil {
			return err
		}
		statePtr = o.hostState
	}

	if o.reg.LoggingDiffusion {
		if err := o.backend.ReadDiffusion(o.hostIdiff); err != nil {
			return err
		}
	}

	if needFullState {
		if o.cfg.StrictHalt {
			for c := 0; c < o.n; c++ {
				if math.IsNaN(o.hostState[c*o.s+0]) {
					o.halt = true
					break
				}
			}
		} else if math.IsNaN(o.hostState[0]) {
			o.halt = true
		}
	} else {
		if err := o.backend.ReadCell0(o.cell0); err != nil {
			return err
		}
		if math.IsNaN(o.cell0[0]) {
			o.halt = true
		}
	}

	// o.dt here is the step size that advanced *past* this log point, never
	// an intermediate value.
	o.reg.Append(o.t, o.pace, o.dt, statePtr, o.hostIdiff, o.s)
	o.Summary.LogAppends++
	return nil
}

// chooseDt picks the next iteration's step size: the configured default,
// shrunk only enough to land exactly on tmax or the next pacing transition,
// never below dtMin.
func (o *Integrator) chooseDt() {
	dt := o.cfg.DefaultDt
	if remTmax := o.cfg.Tmax - o.t; remTmax > o.dtMin && remTmax < dt {
		dt = remTmax
	}
	if remPace := o.tNextPace - o.t; remPace > o.dtMin && remPace < dt {
		dt = remPace
	}
	o.dt = dt
}

func (o *Integrator) finish() (float64, error) {
	// the last step may carry t past tmax by less than one dt; a completed
	// run still reports tmax itself (Summary.FinalTime keeps the actual t)
	result := o.cfg.Tmax
	if o.halt {
		result = o.cfg.Tmin - 1
	}
	if err := o.backend.ReadState(o.cfg.StateOut); err != nil {
		return 0, o.fail(err)
	}
	if err := o.backend.Clean(); err != nil {
		return 0, chk.Err("cleanup after completion failed: %v", err)
	}
	o.initialized = false
	o.Summary.Halted = o.halt
	o.Summary.FinalTime = o.t
	if o.cfg.Verbose {
		if o.halt {
			io.PfRed("> halted: NaN in membrane potential of cell 0 at t=%g\n", o.t)
		} else {
			io.PfGreen("> completed at t=%g\n", o.t)
		}
	}
	return result, nil
}

// fail routes any device or configuration error through Clean and surfaces
// one descriptive error.
func (o *Integrator) fail(err error) error {
	o.backend.Clean()
	o.initialized = false
	return chk.Err("integrator step failed: %v", err)
}

// Clean lets the caller explicitly complete and release resources after
// declining to re-enter following a yield. It reads back the last completed
// state into cfg.StateOut. Idempotent: a second call, or a call when
// nothing was ever initialized, is a no-op.
func (o *Integrator) Clean() error {
	if !o.initialized {
		return nil
	}
	readErr := o.backend.ReadState(o.cfg.StateOut)
	cleanErr := o.backend.Clean()
	o.initialized = false
	if readErr != nil {
		return chk.Err("cannot read back state during clean: %v", readErr)
	}
	return cleanErr
}
