// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package device

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_cpu01(tst *testing.T) {

	chk.PrintTitle("cpu01. diffusion kernel: zero-flux boundaries, 1-D")

	m, err := New("decay")
	if err != nil {
		tst.Errorf("New failed: %v", err)
		return
	}
	be := NewCPUBackend()
	cfg := Config{Nx: 3, Ny: 1, Gx: 1.0, Gy: 0.0, Model: m}
	if err := be.Init(cfg); err != nil {
		tst.Errorf("Init failed: %v", err)
		return
	}
	defer be.Clean()

	if err := be.WriteState([]float64{0, 1, 3}); err != nil {
		tst.Errorf("WriteState failed: %v", err)
		return
	}
	if err := be.Diffusion(); err != nil {
		tst.Errorf("Diffusion failed: %v", err)
		return
	}
	out := make([]float64, 3)
	if err := be.ReadDiffusion(out); err != nil {
		tst.Errorf("ReadDiffusion failed: %v", err)
		return
	}
	// cell 0: neighbor replaced by self on the left: 2*0 - 0 - 1 = -1
	chk.Scalar(tst, "idiff[0]", 1e-15, out[0], -1)
	// cell 1: 2*1 - 0 - 3 = -1
	chk.Scalar(tst, "idiff[1]", 1e-15, out[1], -1)
	// cell 2: neighbor replaced by self on the right: 2*3 - 1 - 3 = 2
	chk.Scalar(tst, "idiff[2]", 1e-15, out[2], 2)
}

func Test_cpu02(tst *testing.T) {

	chk.PrintTitle("cpu02. step kernel: forward-Euler decay")

	m, err := New("decay")
	if err != nil {
		tst.Errorf("New failed: %v", err)
		return
	}
	be := NewCPUBackend()
	cfg := Config{Nx: 1, Ny: 1, Model: m}
	if err := be.Init(cfg); err != nil {
		tst.Errorf("Init failed: %v", err)
		return
	}
	defer be.Clean()

	if err := be.WriteState([]float64{1.0}); err != nil {
		tst.Errorf("WriteState failed: %v", err)
		return
	}
	for i := 0; i < 1000; i++ {
		if err := be.Diffusion(); err != nil {
			tst.Errorf("Diffusion failed: %v", err)
			return
		}
		if err := be.Derivative(true, 0, 1e-3, 0); err != nil {
			tst.Errorf("Derivative failed: %v", err)
			return
		}
		if err := be.Step(1e-3); err != nil {
			tst.Errorf("Step failed: %v", err)
			return
		}
	}
	out := make([]float64, 1)
	be.ReadState(out)
	chk.Scalar(tst, "x(1) ~ e^-1", 1e-2, out[0], 0.36787944117144233)
}

func Test_cpu03(tst *testing.T) {

	chk.PrintTitle("cpu03. paced region mask")

	m, err := New("fhn")
	if err != nil {
		tst.Errorf("New failed: %v", err)
		return
	}
	be := NewCPUBackend()
	cfg := Config{Nx: 2, Ny: 2, NxPaced: 1, NyPaced: 1, Model: m}
	if err := be.Init(cfg); err != nil {
		tst.Errorf("Init failed: %v", err)
		return
	}
	defer be.Clean()

	state := make([]float64, 2*2*m.S)
	be.WriteState(state)
	be.Diffusion()
	if err := be.Derivative(true, 0, 0.01, 2.0); err != nil {
		tst.Errorf("Derivative failed: %v", err)
		return
	}
	deriv := be.deriv
	// cell (0,0) is paced -> stim = pace*0.5 = 1.0 added to dV
	chk.Scalar(tst, "dV(0,0) with stim", 1e-15, deriv[0*m.S+0], 1.0)
	// cell (1,0), (0,1), (1,1) unpaced -> no stim contribution
	for c := 1; c < 4; c++ {
		chk.Scalar(tst, "dV(unpaced) no stim", 1e-15, deriv[c*m.S+0], 0.0)
	}
}
