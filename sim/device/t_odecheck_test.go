// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package device

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/ode"
)

// Test_odeCheck01 cross-checks the CPU backend's forward-Euler decay
// trajectory against an independent Radau5 integration of the same RHS, the
// same role ana/colpresfluid.go's CalcNum plays alongside its analytic Calc:
// an numerical method unrelated to the one under test confirming the result.
func Test_odeCheck01(tst *testing.T) {

	chk.PrintTitle("odeCheck01. forward-Euler decay vs independent Radau5")

	m, err := New("decay")
	if err != nil {
		tst.Errorf("New failed: %v", err)
		return
	}
	be := NewCPUBackend()
	if err := be.Init(Config{Nx: 1, Ny: 1, Model: m}); err != nil {
		tst.Errorf("Init failed: %v", err)
		return
	}
	defer be.Clean()

	if err := be.WriteState([]float64{1.0}); err != nil {
		tst.Errorf("WriteState failed: %v", err)
		return
	}
	dt := 1e-4
	nsteps := 10000
	for i := 0; i < nsteps; i++ {
		be.Diffusion()
		be.Derivative(true, 0, dt, 0)
		be.Step(dt)
	}
	euler := make([]float64, 1)
	be.ReadState(euler)

	var sol ode.ODE
	silent := true
	sol.Init("Radau5", 1, func(f []float64, dT, T float64, y []float64, args ...interface{}) error {
		f[0] = -y[0]
		return nil
	}, nil, nil, nil, silent)
	sol.Distr = false

	y := []float64{1.0}
	if err := sol.Solve(y, 0, float64(nsteps)*dt, float64(nsteps)*dt, false); err != nil {
		tst.Errorf("Radau5 solve failed: %v", err)
		return
	}

	chk.Scalar(tst, "forward-Euler vs Radau5", 1e-3, euler[0], y[0])
}
