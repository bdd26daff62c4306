// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logger implements the periodic logging registry: binding log
// keys to typed sources and appending values at each log boundary.
package logger

import (
	"strconv"
	"strings"

	"github.com/cpmech/cardiotissue/sim/device"
	"github.com/cpmech/gosl/chk"
)

// Source identifies where a bound log key reads its value from.
type Source int

const (
	// SourceTime, SourcePace and SourceDt read the integrator's own scalars.
	// Myokit convention names these under a reserved "engine" component:
	// "engine.time", "engine.pace", "engine.time_step".
	SourceTime Source = iota
	SourcePace
	SourceDt
	// SourceState reads state[cell*S+Slot].
	SourceState
	// SourceDiffusion reads idiff[cell].
	SourceDiffusion
)

// Binding is one resolved log key.
type Binding struct {
	Key    string
	Source Source
	Cell   int // flat cell index, meaningless for scalar sources
	Slot   int // state slot, meaningless outside SourceState
	Sink   Appender
}

// Appender is the caller-supplied, appendable float sequence a bound key
// writes into. A plain *[]float64 satisfies it via SliceAppender.
type Appender interface {
	Append(v float64)
}

// SliceAppender adapts a *[]float64 to Appender.
type SliceAppender struct{ Seq *[]float64 }

// Append implements Appender.
func (a SliceAppender) Append(v float64) { *a.Seq = append(*a.Seq, v) }

// ModelLookup resolves a "component.var" qualified name to a per-cell
// source. Satisfied by *device.Model.
type ModelLookup interface {
	Lookup(qualified string) (kind device.VarKind, slot int, ok bool)
}

// Registry holds all bound log keys plus the two flags that let the
// integrator skip reading back buffers nothing references.
type Registry struct {
	Bindings []Binding

	LoggingStates    bool
	LoggingDiffusion bool
}

// New parses a key->Appender mapping into a Registry. nx, ny give the grid
// shape (ny==1 selects the 1-D key syntax); model resolves "component.var"
// names to state slots or the diffusion binding. Unknown keys are a
// configuration error, fatal at init.
func New(keys map[string]Appender, nx, ny int, model ModelLookup) (*Registry, error) {
	reg := &Registry{}
	for key, sink := range keys {
		b, err := parseKey(key, nx, ny, model)
		if err != nil {
			return nil, err
		}
		b.Sink = sink
		reg.Bindings = append(reg.Bindings, b)
		switch b.Source {
		case SourceState:
			reg.LoggingStates = true
		case SourceDiffusion:
			reg.LoggingDiffusion = true
		}
	}
	return reg, nil
}

func parseKey(key string, nx, ny int, model ModelLookup) (Binding, error) {
	parts := strings.Split(key, ".")

	// scalar forms: unprefixed "{component}.{var}", exactly 2 segments
	if len(parts) == 2 {
		return parseScalar(key, parts)
	}

	if ny > 1 {
		// 2-D per-cell: "{x}.{y}.{component}.{var}"
		if len(parts) != 4 {
			return Binding{}, chk.Err("unknown log key %q: expected 4 segments for a 2-D per-cell binding", key)
		}
		x, errx := strconv.Atoi(parts[0])
		y, erry := strconv.Atoi(parts[1])
		if errx != nil || erry != nil {
			return Binding{}, chk.Err("unknown log key %q: invalid cell coordinates", key)
		}
		if x < 0 || x >= nx || y < 0 || y >= ny {
			return Binding{}, chk.Err("unknown log key %q: cell (%d,%d) out of range for grid %dx%d", key, x, y, nx, ny)
		}
		return bindCell(key, y*nx+x, parts[2]+"."+parts[3], model)
	}

	// 1-D per-cell: "{x}.{component}.{var}"
	if len(parts) != 3 {
		return Binding{}, chk.Err("unknown log key %q: expected 3 segments for a 1-D per-cell binding", key)
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return Binding{}, chk.Err("unknown log key %q: invalid cell coordinate", key)
	}
	if x < 0 || x >= nx {
		return Binding{}, chk.Err("unknown log key %q: cell %d out of range for grid of width %d", key, x, nx)
	}
	return bindCell(key, x, parts[1]+"."+parts[2], model)
}

func parseScalar(key string, parts []string) (Binding, error) {
	if parts[0] != "engine" {
		return Binding{}, chk.Err("unknown log key %q: scalar bindings must be under the \"engine\" component", key)
	}
	switch parts[1] {
	case "time":
		return Binding{Key: key, Source: SourceTime}, nil
	case "pace":
		return Binding{Key: key, Source: SourcePace}, nil
	case "time_step":
		return Binding{Key: key, Source: SourceDt}, nil
	}
	return Binding{}, chk.Err("unknown log key %q: no scalar binding named %q", key, parts[1])
}

func bindCell(key string, cell int, qualified string, model ModelLookup) (Binding, error) {
	kind, slot, ok := model.Lookup(qualified)
	if !ok {
		return Binding{}, chk.Err("unknown log key %q: no variable %q in model", key, qualified)
	}
	if kind == device.DiffusionVar {
		return Binding{Key: key, Source: SourceDiffusion, Cell: cell}, nil
	}
	return Binding{Key: key, Source: SourceState, Cell: cell, Slot: slot}, nil
}

// Append writes the current value of every binding to its sink. time, pace
// and dt are the integrator's scalars as of the log boundary; state and
// idiff are the freshly read-back arrays (nil when LoggingStates /
// LoggingDiffusion is false, in which case no binding needs them).
func (r *Registry) Append(t, pace, dt float64, state []float64, idiff []float64, s int) {
	for _, b := range r.Bindings {
		switch b.Source {
		case SourceTime:
			b.Sink.Append(t)
		case SourcePace:
			b.Sink.Append(pace)
		case SourceDt:
			b.Sink.Append(dt)
		case SourceState:
			b.Sink.Append(state[b.Cell*s+b.Slot])
		case SourceDiffusion:
			b.Sink.Append(idiff[b.Cell])
		}
	}
}
