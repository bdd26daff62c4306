// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"

	"github.com/cpmech/cardiotissue/sim"
	"github.com/cpmech/cardiotissue/sim/device"
	"github.com/cpmech/cardiotissue/sim/logger"
	"github.com/cpmech/cardiotissue/sim/pacing"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			for i := 8; i > 3; i-- {
				chk.CallerInfo(i)
			}
			io.PfRed("ERROR: %v\n", err)
		}
	}()

	// command-line inputs: a built-in model run directly on the CPU
	// reference backend (device parsing/codegen is out of scope; see
	// sim/device/models.go for the built-in descriptors)
	model := flag.String("model", "fhn", "model name: decay, passive, fhn, gatednan")
	nx := flag.Int("nx", 8, "grid width")
	ny := flag.Int("ny", 8, "grid height")
	nxPaced := flag.Int("nxpaced", 1, "stimulated rectangle width")
	nyPaced := flag.Int("nypaced", 1, "stimulated rectangle height")
	gx := flag.Float64("gx", 0.1, "diffusion conductance along x")
	gy := flag.Float64("gy", 0.1, "diffusion conductance along y")
	tmax := flag.Float64("tmax", 10, "final simulation time")
	dt := flag.Float64("dt", 0.01, "default time step")
	ratio := flag.Int("ratio", 10, "fast steps per slow step")
	logInterval := flag.Float64("log", 1.0, "log interval, 0 disables logging")
	verbose := flag.Bool("v", true, "print progress banners")
	flag.Parse()

	io.PfWhite("\ncardiotissue -- multi-cell split-timestep cardiac integrator\n\n")
	io.Pf("Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.\n")
	io.Pf("Use of this source code is governed by a BSD-style\n")
	io.Pf("license that can be found in the LICENSE file.\n\n")

	m, err := device.New(*model)
	if err != nil {
		chk.Panic("cannot build model: %v\n", err)
	}

	n := *nx * *ny
	stateIn := make([]float64, n*m.S)
	stateOut := make([]float64, n*m.S)

	protocol, err := pacing.NewProtocol([]pacing.Step{
		{Start: 0, Length: 1, Level: 1.0, Period: 50},
	})
	if err != nil {
		chk.Panic("cannot build pacing protocol: %v\n", err)
	}

	// per-cell log keys carry a y coordinate on 2-D grids
	vKey := "0.membrane.V"
	if *ny > 1 {
		vKey = "0.0.membrane.V"
	}
	var logT, logV []float64
	registry := map[string]logger.Appender{
		"engine.time": logger.SliceAppender{Seq: &logT},
		vKey:          logger.SliceAppender{Seq: &logV},
	}

	cfg := sim.Config{
		Model:       m,
		Nx:          *nx,
		Ny:          *ny,
		Gx:          *gx,
		Gy:          *gy,
		Tmin:        0,
		Tmax:        *tmax,
		DefaultDt:   *dt,
		StateIn:     stateIn,
		StateOut:    stateOut,
		Protocol:    protocol,
		NxPaced:     *nxPaced,
		NyPaced:     *nyPaced,
		LogRegistry: registry,
		LogInterval: *logInterval,
		Ratio:       *ratio,
		Backend:     device.NewCPUBackend(),
		Verbose:     *verbose,
	}

	integ, err := sim.New(cfg)
	if err != nil {
		chk.Panic("cannot initialise integrator: %v\n", err)
	}

	for {
		t, err := integ.Step()
		if err != nil {
			chk.Panic("step failed: %v\n", err)
		}
		if t == cfg.Tmax {
			io.PfGreen("> run complete: %d steps, %d slow enqueues, %d log entries\n",
				integ.Summary.StepsTaken, integ.Summary.SlowEnqueues, integ.Summary.LogAppends)
			break
		}
		if t == cfg.Tmin-1 {
			io.PfRed("> halted on NaN at t=%g\n", integ.Summary.FinalTime)
			break
		}
	}
}
