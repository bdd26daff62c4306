// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package device

// genericKernelSource returns the diffusion and forward-Euler step kernels.
// These do not depend on the per-cell model, unlike the slow/fast kernels
// which an external code generator would normally emit per-model; here
// models.go appends model-specific text to this common preamble to form a
// complete program, treating kernel text as an opaque string handed to the
// device context.
func genericKernelSource() string {
	return `
#ifndef CARDIO_REAL
#define CARDIO_REAL double
#endif

__kernel void diffusion_kernel(
    __global const CARDIO_REAL* state,
    __global CARDIO_REAL* idiff,
    const CARDIO_REAL gx,
    const CARDIO_REAL gy,
    const int nx,
    const int ny,
    const int nstate)
{
    int x = get_global_id(0);
    int y = get_global_id(1);
    if (x >= nx || y >= ny) return;
    int c = y * nx + x;
    CARDIO_REAL v = state[c * nstate + 0];
    CARDIO_REAL vxm = (x > 0)      ? state[(c - 1) * nstate + 0]  : v;
    CARDIO_REAL vxp = (x < nx - 1) ? state[(c + 1) * nstate + 0]  : v;
    CARDIO_REAL vym = (y > 0)      ? state[(c - nx) * nstate + 0] : v;
    CARDIO_REAL vyp = (y < ny - 1) ? state[(c + nx) * nstate + 0] : v;
    idiff[c] = gx * (2.0 * v - vxm - vxp) + gy * (2.0 * v - vym - vyp);
}

__kernel void step_kernel(
    __global CARDIO_REAL* state,
    __global const CARDIO_REAL* deriv,
    const CARDIO_REAL dt,
    const int nx,
    const int ny,
    const int nstate)
{
    int x = get_global_id(0);
    int y = get_global_id(1);
    if (x >= nx || y >= ny) return;
    int c = y * nx + x;
    for (int s = 0; s < nstate; s++) {
        state[c * nstate + s] += dt * deriv[c * nstate + s];
    }
}
`
}
