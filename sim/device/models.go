// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package device

import "math"

// Built-in models stand in for the output of an external model parser and
// kernel generator, covering a handful of representative cell behaviors.
// Each supplies both OpenCL kernel text (for the real backend) and
// equivalent Go closures (for the cpu reference backend), grounded the
// same way ana/colpresfluid.go carries an analytic Calc alongside a
// numerical CalcNum and checks them against each other.

func init() {
	Register("decay", newDecayModel)
	Register("passive", newPassiveModel)
	Register("fhn", newFHNModel)
	Register("gatednan", newGatedNaNModel)
}

// decay: dot(V) = -V. No cache, no diffusion coupling, no stimulus: a
// bare single-cell exponential decay.
func newDecayModel() *Model {
	rhs := func(deriv, state, cache []float64, idiff, time, dt, pace float64, paced bool) {
		deriv[0] = -state[0]
	}
	return &Model{
		Name:         "decay",
		S:            1,
		K:            0,
		KernelSource: genericKernelSource() + decayKernelSource,
		Slow:         rhs,
		Fast:         rhs,
		StateVars:    map[string]int{"membrane.V": 0},
		DiffusionVar: "membrane.i_diff",
	}
}

const decayKernelSource = `
__kernel void slow_kernel(__global CARDIO_REAL* state, __global CARDIO_REAL* idiff,
    __global CARDIO_REAL* cache, __global CARDIO_REAL* deriv,
    const CARDIO_REAL time, const CARDIO_REAL dt, const CARDIO_REAL pace,
    const int nx_paced, const int ny_paced, const int nx, const int ny)
{
    int x = get_global_id(0);
    int y = get_global_id(1);
    if (x >= nx || y >= ny) return;
    int c = y * nx + x;
    deriv[c] = -state[c];
}

__kernel void fast_kernel(__global CARDIO_REAL* state, __global CARDIO_REAL* idiff,
    __global CARDIO_REAL* cache, __global CARDIO_REAL* deriv,
    const CARDIO_REAL time, const CARDIO_REAL dt, const CARDIO_REAL pace,
    const int nx_paced, const int ny_paced, const int nx, const int ny)
{
    int x = get_global_id(0);
    int y = get_global_id(1);
    if (x >= nx || y >= ny) return;
    int c = y * nx + x;
    deriv[c] = -state[c];
}
`

// passive: dot(V) = -idiff/C with C=1 and no ion current whatsoever: a
// purely resistive cell whose voltage is driven only by neighbor coupling,
// indifferent to the stimulus value itself.
func newPassiveModel() *Model {
	rhs := func(deriv, state, cache []float64, idiff, time, dt, pace float64, paced bool) {
		deriv[0] = -idiff
	}
	return &Model{
		Name:         "passive",
		S:            1,
		K:            0,
		KernelSource: genericKernelSource() + passiveKernelSource,
		Slow:         rhs,
		Fast:         rhs,
		StateVars:    map[string]int{"membrane.V": 0},
		DiffusionVar: "membrane.i_diff",
	}
}

const passiveKernelSource = `
__kernel void slow_kernel(__global CARDIO_REAL* state, __global CARDIO_REAL* idiff,
    __global CARDIO_REAL* cache, __global CARDIO_REAL* deriv,
    const CARDIO_REAL time, const CARDIO_REAL dt, const CARDIO_REAL pace,
    const int nx_paced, const int ny_paced, const int nx, const int ny)
{
    int x = get_global_id(0);
    int y = get_global_id(1);
    if (x >= nx || y >= ny) return;
    int c = y * nx + x;
    deriv[c] = -idiff[c];
}

__kernel void fast_kernel(__global CARDIO_REAL* state, __global CARDIO_REAL* idiff,
    __global CARDIO_REAL* cache, __global CARDIO_REAL* deriv,
    const CARDIO_REAL time, const CARDIO_REAL dt, const CARDIO_REAL pace,
    const int nx_paced, const int ny_paced, const int nx, const int ny)
{
    int x = get_global_id(0);
    int y = get_global_id(1);
    if (x >= nx || y >= ny) return;
    int c = y * nx + x;
    deriv[c] = -idiff[c];
}
`

// fhn amplitude applied to paced cells' voltage equation.
const fhnStimAmp = 0.5

// fhn is a FitzHugh-Nagumo-style two-variable excitable cell: V (slot 0) is
// the membrane potential, w is a recovery variable. tau_w(V) involves a
// transcendental (exp) and changes slowly relative to V, so it is exactly
// the kind of intermediate the slow kernel caches and the fast kernel
// reuses between slow steps.
func newFHNModel() *Model {
	tauW := func(v float64) float64 { return 12.5 + 2.0*math.Exp(-v*v) }
	deriv := func(d, state []float64, idiff, pace float64, tw float64, paced bool) {
		v, w := state[0], state[1]
		stim := 0.0
		if paced {
			stim = pace * fhnStimAmp
		}
		d[0] = v - v*v*v/3.0 - w - idiff + stim
		d[1] = (v + 0.7 - 0.8*w) / tw
	}
	slow := func(dv, state, cache []float64, idiff, time, dt, pace float64, paced bool) {
		tw := tauW(state[0])
		cache[0] = tw
		deriv(dv, state, idiff, pace, tw, paced)
	}
	fast := func(dv, state, cache []float64, idiff, time, dt, pace float64, paced bool) {
		deriv(dv, state, idiff, pace, cache[0], paced)
	}
	return &Model{
		Name:         "fhn",
		S:            2,
		K:            1,
		KernelSource: genericKernelSource() + fhnKernelSource,
		Slow:         slow,
		Fast:         fast,
		StateVars:    map[string]int{"membrane.V": 0, "membrane.w": 1},
		DiffusionVar: "membrane.i_diff",
	}
}

const fhnKernelSource = `
__kernel void slow_kernel(__global CARDIO_REAL* state, __global CARDIO_REAL* idiff,
    __global CARDIO_REAL* cache, __global CARDIO_REAL* deriv,
    const CARDIO_REAL time, const CARDIO_REAL dt, const CARDIO_REAL pace,
    const int nx_paced, const int ny_paced, const int nx, const int ny)
{
    int x = get_global_id(0);
    int y = get_global_id(1);
    if (x >= nx || y >= ny) return;
    int c = y * nx + x;
    CARDIO_REAL v = state[c * 2 + 0];
    CARDIO_REAL w = state[c * 2 + 1];
    CARDIO_REAL tau_w = 12.5 + 2.0 * exp(-v * v);
    cache[c] = tau_w;
    CARDIO_REAL stim = (x < nx_paced && y < ny_paced) ? pace * ` + "0.5" + ` : 0.0;
    deriv[c * 2 + 0] = v - v * v * v / 3.0 - w - idiff[c] + stim;
    deriv[c * 2 + 1] = (v + 0.7 - 0.8 * w) / tau_w;
}

__kernel void fast_kernel(__global CARDIO_REAL* state, __global CARDIO_REAL* idiff,
    __global CARDIO_REAL* cache, __global CARDIO_REAL* deriv,
    const CARDIO_REAL time, const CARDIO_REAL dt, const CARDIO_REAL pace,
    const int nx_paced, const int ny_paced, const int nx, const int ny)
{
    int x = get_global_id(0);
    int y = get_global_id(1);
    if (x >= nx || y >= ny) return;
    int c = y * nx + x;
    CARDIO_REAL v = state[c * 2 + 0];
    CARDIO_REAL w = state[c * 2 + 1];
    CARDIO_REAL tau_w = cache[c];
    CARDIO_REAL stim = (x < nx_paced && y < ny_paced) ? pace * ` + "0.5" + ` : 0.0;
    deriv[c * 2 + 0] = v - v * v * v / 3.0 - w - idiff[c] + stim;
    deriv[c * 2 + 1] = (v + 0.7 - 0.8 * w) / tau_w;
}
`

// gatednan manufactures a genuine NaN: a slow-cached intermediate
// (1/sqrt(2-time)) that diverges as time approaches 2 and is NaN (square
// root of a negative number) once time passes 2, so the voltage becomes NaN
// on the first slow step after time=2 rather than a mere Inf.
func newGatedNaNModel() *Model {
	slow := func(dv, state, cache []float64, idiff, time, dt, pace float64, paced bool) {
		cache[0] = 1.0 / math.Sqrt(2.0-time)
		dv[0] = -cache[0] * state[0]
		dv[1] = -state[1]
	}
	fast := func(dv, state, cache []float64, idiff, time, dt, pace float64, paced bool) {
		dv[0] = -cache[0] * state[0]
		dv[1] = -state[1]
	}
	return &Model{
		Name:         "gatednan",
		S:            2,
		K:            1,
		KernelSource: genericKernelSource() + gatedNaNKernelSource,
		Slow:         slow,
		Fast:         fast,
		StateVars:    map[string]int{"membrane.V": 0, "membrane.u": 1},
		DiffusionVar: "membrane.i_diff",
	}
}

const gatedNaNKernelSource = `
__kernel void slow_kernel(__global CARDIO_REAL* state, __global CARDIO_REAL* idiff,
    __global CARDIO_REAL* cache, __global CARDIO_REAL* deriv,
    const CARDIO_REAL time, const CARDIO_REAL dt, const CARDIO_REAL pace,
    const int nx_paced, const int ny_paced, const int nx, const int ny)
{
    int x = get_global_id(0);
    int y = get_global_id(1);
    if (x >= nx || y >= ny) return;
    int c = y * nx + x;
    CARDIO_REAL rate = 1.0 / sqrt(2.0 - time);
    cache[c] = rate;
    deriv[c * 2 + 0] = -rate * state[c * 2 + 0];
    deriv[c * 2 + 1] = -state[c * 2 + 1];
}

__kernel void fast_kernel(__global CARDIO_REAL* state, __global CARDIO_REAL* idiff,
    __global CARDIO_REAL* cache, __global CARDIO_REAL* deriv,
    const CARDIO_REAL time, const CARDIO_REAL dt, const CARDIO_REAL pace,
    const int nx_paced, const int ny_paced, const int nx, const int ny)
{
    int x = get_global_id(0);
    int y = get_global_id(1);
    if (x >= nx || y >= ny) return;
    int c = y * nx + x;
    CARDIO_REAL rate = cache[c];
    deriv[c * 2 + 0] = -rate * state[c * 2 + 0];
    deriv[c * 2 + 1] = -state[c * 2 + 1];
}
`
