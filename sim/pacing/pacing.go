// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pacing implements the piecewise-constant stimulus schedule.
// Protocol parsing itself is out of scope; callers already hold a parsed
// list of steps, the same way fem.Main consumes an already-parsed
// *inp.Simulation rather than reading input files itself.
package pacing

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// Step is one piecewise-constant stimulus entry. When Period > 0 the window
// [Start, Start+Length) repeats every Period time units, with the active
// level scaled by Multiplier^k on the k-th repeat (k=0,1,2,...); a
// Multiplier of zero is normalized to 1 (no decay/growth across beats).
// When Period <= 0 the step fires exactly once.
type Step struct {
	Start      float64
	Length     float64
	Level      float64
	Period     float64
	Multiplier float64
}

// Protocol is a finite list of Steps producing a piecewise-constant pace(t).
// All operations are pure functions of the query time: the advance
// computation does not depend on hidden cursor state, which is what makes
// it idempotent when the target time does not cross a boundary.
type Protocol struct {
	steps []Step
	level float64
	next  float64
}

// NewProtocol validates steps and returns a Protocol positioned at t=-Inf
// (i.e. before any step, level 0). Malformed steps are a configuration
// error, fatal at init.
func NewProtocol(steps []Step) (*Protocol, error) {
	norm := make([]Step, len(steps))
	for i, st := range steps {
		if st.Length <= 0 {
			return nil, chk.Err("pacing step %d: length must be positive, got %g", i, st.Length)
		}
		if st.Period < 0 {
			return nil, chk.Err("pacing step %d: period must be non-negative, got %g", i, st.Period)
		}
		if st.Period > 0 && st.Period < st.Length {
			return nil, chk.Err("pacing step %d: period (%g) must not be shorter than length (%g)", i, st.Period, st.Length)
		}
		if st.Multiplier == 0 {
			st.Multiplier = 1
		}
		norm[i] = st
	}
	return &Protocol{steps: norm, level: 0, next: math.Inf(1)}, nil
}

// Level returns the level as of the last Advance call (0 before any call).
func (o *Protocol) Level() float64 { return o.level }

// NextTime returns the next transition time as of the last Advance call
// (+Inf before any call or when no further transition exists).
func (o *Protocol) NextTime() float64 { return o.next }

// Advance recomputes the current level as pace(tTo) and the next transition
// time strictly after tTo, across all steps. tFrom is only used to assert
// monotonic advance (a caller bug, not a configuration error, so it panics
// like a violated invariant). Calling Advance again with the same tTo and an
// unmet tFrom >= previous tTo produces the same result: idempotent.
func (o *Protocol) Advance(tFrom, tTo float64) {
	if tTo < tFrom {
		chk.Panic("pacing.Advance: tTo (%g) must not precede tFrom (%g)", tTo, tFrom)
	}
	level := 0.0
	next := math.Inf(1)
	for _, st := range o.steps {
		lv, nx := st.stateAt(tTo)
		if lv != 0 {
			level = lv
		}
		next = utl.Min(next, nx)
	}
	o.level = level
	o.next = next
}

// stateAt returns the step's contribution to the level at t, and the next
// time strictly after t at which this step's own level could change
// (window open, window close, or +Inf if this step never fires again).
func (s Step) stateAt(t float64) (level float64, nextChange float64) {
	if s.Period <= 0 {
		// fires once
		if t >= s.Start && t < s.Start+s.Length {
			return s.Level, s.Start + s.Length
		}
		if t < s.Start {
			return 0, s.Start
		}
		return 0, math.Inf(1)
	}

	// repeating: find which period index t falls in
	if t < s.Start {
		return 0, s.Start
	}
	k := math.Floor((t - s.Start) / s.Period)
	winStart := s.Start + k*s.Period
	winEnd := winStart + s.Length
	amp := s.Level * math.Pow(s.Multiplier, k)
	if t < winEnd {
		return amp, winEnd
	}
	// between windows: next window starts at winStart + Period
	return 0, winStart + s.Period
}
