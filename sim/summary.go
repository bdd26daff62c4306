// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

// Summary accumulates run counters across Step calls, grounded on
// fem.Summary (fem/summary.go): a small, non-persisted record of what
// happened during a run, useful for assertions and diagnostics rather than
// for result-file I/O.
type Summary struct {
	StepsTaken   int // number of inner iterations executed
	SlowEnqueues int // number of iterations that ran the slow kernel
	LogAppends   int // number of log entries written, including the one at tmin
	Halted       bool
	FinalTime    float64
	YieldCount   int // number of cooperative yields
}
