// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sim implements the multi-cell split-timestep integrator and its
// init/step/clean lifecycle, orchestrating the pacing driver, the device
// backend and the logger.
package sim

import (
	"github.com/cpmech/cardiotissue/sim/device"
	"github.com/cpmech/cardiotissue/sim/logger"
	"github.com/cpmech/cardiotissue/sim/pacing"
)

// Config holds the integrator's initialization inputs. In place of a
// positional "kernel source text" argument, Config takes a *device.Model:
// the small descriptor (state count, cache count, kernel text, log-binding
// table) that an external model parser and kernel generator would hand the
// integrator. This is the one documented widening of the textual-kernel-
// source boundary; everything downstream of it is unchanged.
type Config struct {
	Model *device.Model

	Nx, Ny int
	Gx, Gy float64

	Tmin, Tmax float64
	DefaultDt  float64

	// StateIn is the flat nx*ny*S initial state; it must be entirely finite.
	StateIn []float64
	// StateOut is the output sink, reused in place: on completion (including
	// a NaN halt) its first nx*ny*S elements are overwritten with the final
	// state. Its initial contents are irrelevant.
	StateOut []float64

	Protocol *pacing.Protocol

	NxPaced, NyPaced int

	LogRegistry map[string]logger.Appender
	LogInterval float64

	Ratio int

	// Backend is the device implementation to drive. Nil selects the
	// OpenCL-backed production backend (device.NewOpenCLBackend); tests
	// inject device.NewCPUBackend() to run without hardware.
	Backend device.Backend

	// DevicePreference overrides the CARDIOTISSUE_DEVICE environment
	// variable; empty defers to it.
	DevicePreference string

	// StrictHalt widens the NaN check from cell 0's voltage to every cell's
	// voltage. Off by default; this is a documented behavior change from
	// checking only cell 0.
	StrictHalt bool

	Verbose bool
}
