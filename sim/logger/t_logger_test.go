// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger

import (
	"testing"

	"github.com/cpmech/cardiotissue/sim/device"
	"github.com/cpmech/gosl/chk"
)

func fhnModel(tst *testing.T) *device.Model {
	m, err := device.New("fhn")
	if err != nil {
		tst.Errorf("device.New(fhn) failed: %v", err)
		return nil
	}
	return m
}

func Test_logger01(tst *testing.T) {

	chk.PrintTitle("logger01. scalar and 1-D per-cell bindings")

	m := fhnModel(tst)
	if m == nil {
		return
	}

	var tSeq, vSeq, idiffSeq []float64
	keys := map[string]Appender{
		"engine.time":  SliceAppender{Seq: &tSeq},
		"1.membrane.V": SliceAppender{Seq: &vSeq},
		"0.membrane.i_diff": SliceAppender{Seq: &idiffSeq},
	}

	reg, err := New(keys, 2, 1, m)
	if err != nil {
		tst.Errorf("New failed: %v", err)
		return
	}
	if !reg.LoggingStates {
		tst.Errorf("expected LoggingStates=true")
	}
	if !reg.LoggingDiffusion {
		tst.Errorf("expected LoggingDiffusion=true")
	}

	s := m.S
	state := make([]float64, 2*s)
	state[1*s+0] = 42.0 // cell 1's V
	idiff := []float64{7.0, 8.0}

	reg.Append(1.5, 0.0, 0.01, state, idiff, s)

	chk.IntAssert(len(tSeq), 1)
	chk.Scalar(tst, "time", 1e-15, tSeq[0], 1.5)
	chk.Scalar(tst, "cell1.V", 1e-15, vSeq[0], 42.0)
	chk.Scalar(tst, "cell0.idiff", 1e-15, idiffSeq[0], 7.0)
}

func Test_logger02(tst *testing.T) {

	chk.PrintTitle("logger02. 2-D per-cell binding")

	m := fhnModel(tst)
	if m == nil {
		return
	}

	var vSeq []float64
	keys := map[string]Appender{
		"1.2.membrane.V": SliceAppender{Seq: &vSeq},
	}
	reg, err := New(keys, 3, 4, m)
	if err != nil {
		tst.Errorf("New failed: %v", err)
		return
	}

	s := m.S
	n := 3 * 4
	state := make([]float64, n*s)
	cell := 2*3 + 1 // y=2, x=1
	state[cell*s+0] = -65.0

	reg.Append(0, 0, 0.01, state, nil, s)
	chk.Scalar(tst, "cell(1,2).V", 1e-15, vSeq[0], -65.0)
}

func Test_logger03(tst *testing.T) {

	chk.PrintTitle("logger03. unknown key rejected")

	m := fhnModel(tst)
	if m == nil {
		return
	}

	var seq []float64
	_, err := New(map[string]Appender{"membrane.bogus": SliceAppender{Seq: &seq}}, 1, 1, m)
	if err == nil {
		tst.Errorf("expected error for unknown scalar key")
	}

	_, err = New(map[string]Appender{"0.membrane.bogus": SliceAppender{Seq: &seq}}, 2, 1, m)
	if err == nil {
		tst.Errorf("expected error for unknown per-cell variable")
	}

	_, err = New(map[string]Appender{"5.membrane.V": SliceAppender{Seq: &seq}}, 2, 1, m)
	if err == nil {
		tst.Errorf("expected error for out-of-range cell")
	}
}

func Test_logger04(tst *testing.T) {

	chk.PrintTitle("logger04. empty registry logs nothing")

	reg, err := New(nil, 1, 1, fhnModel(tst))
	if err != nil {
		tst.Errorf("New failed: %v", err)
		return
	}
	if reg.LoggingStates || reg.LoggingDiffusion {
		tst.Errorf("expected no read-back flags for empty registry")
	}
	reg.Append(0, 0, 0, nil, nil, 0) // must not panic
}
