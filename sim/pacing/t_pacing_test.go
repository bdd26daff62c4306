// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pacing

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_pacing01(tst *testing.T) {

	chk.PrintTitle("pacing01. single non-repeating step")

	p, err := NewProtocol([]Step{
		{Start: 1.0, Length: 0.5, Level: 2.0},
	})
	if err != nil {
		tst.Errorf("NewProtocol failed: %v", err)
		return
	}

	p.Advance(0, 0)
	chk.Scalar(tst, "level before window", 1e-15, p.Level(), 0)
	chk.Scalar(tst, "next before window  ", 1e-15, p.NextTime(), 1.0)

	p.Advance(0, 1.2)
	chk.Scalar(tst, "level inside window ", 1e-15, p.Level(), 2.0)
	chk.Scalar(tst, "next inside window  ", 1e-15, p.NextTime(), 1.5)

	p.Advance(1.2, 2.0)
	chk.Scalar(tst, "level after window  ", 1e-15, p.Level(), 0)
	if !math.IsInf(p.NextTime(), 1) {
		tst.Errorf("expected no further transition, got next=%g", p.NextTime())
	}
}

func Test_pacing02(tst *testing.T) {

	chk.PrintTitle("pacing02. repeating step, boundary landing")

	p, err := NewProtocol([]Step{
		{Start: 0.0, Length: 0.5, Level: 1.0, Period: 1.0},
	})
	if err != nil {
		tst.Errorf("NewProtocol failed: %v", err)
		return
	}

	p.Advance(0, 0)
	chk.Scalar(tst, "level at t=0", 1e-15, p.Level(), 1.0)
	chk.Scalar(tst, "next at t=0 ", 1e-15, p.NextTime(), 0.5)

	// an event at t=1.0 must not be skipped when the step chooser lands
	// exactly on it.
	p.Advance(0.7, 1.0)
	chk.Scalar(tst, "next at t=1.0", 1e-15, p.NextTime(), 1.5)

	p.Advance(1.0, 1.3)
	chk.Scalar(tst, "level at t=1.3", 1e-15, p.Level(), 1.0)
}

func Test_pacing03(tst *testing.T) {

	chk.PrintTitle("pacing03. decaying multiplier across repeats")

	p, err := NewProtocol([]Step{
		{Start: 0, Length: 0.1, Level: 1.0, Period: 1.0, Multiplier: 0.5},
	})
	if err != nil {
		tst.Errorf("NewProtocol failed: %v", err)
		return
	}

	p.Advance(0, 0.05)
	chk.Scalar(tst, "beat 0", 1e-15, p.Level(), 1.0)

	p.Advance(0.05, 1.05)
	chk.Scalar(tst, "beat 1", 1e-15, p.Level(), 0.5)

	p.Advance(1.05, 2.05)
	chk.Scalar(tst, "beat 2", 1e-15, p.Level(), 0.25)
}

func Test_pacing04(tst *testing.T) {

	chk.PrintTitle("pacing04. malformed protocol rejected at init")

	if _, err := NewProtocol([]Step{{Start: 0, Length: 0, Level: 1}}); err == nil {
		tst.Errorf("expected error for zero-length step")
	}
	if _, err := NewProtocol([]Step{{Start: 0, Length: 1, Level: 1, Period: -1}}); err == nil {
		tst.Errorf("expected error for negative period")
	}
	if _, err := NewProtocol([]Step{{Start: 0, Length: 2, Level: 1, Period: 1}}); err == nil {
		tst.Errorf("expected error for period shorter than length")
	}
}

func Test_pacing05(tst *testing.T) {

	chk.PrintTitle("pacing05. empty protocol never fires")

	p, err := NewProtocol(nil)
	if err != nil {
		tst.Errorf("NewProtocol failed: %v", err)
		return
	}
	p.Advance(0, 100)
	chk.Scalar(tst, "level", 1e-15, p.Level(), 0)
	if !math.IsInf(p.NextTime(), 1) {
		tst.Errorf("expected +Inf next time for empty protocol, got %g", p.NextTime())
	}
}
