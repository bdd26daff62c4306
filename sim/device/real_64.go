// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !real32

package device

// Real is the device-side floating point type. This file is the single
// build-time choice mentioned in the design notes: build with -tags real32
// to switch every device buffer and scalar kernel argument to float32.
type Real = float64

func toReal(x float64) Real { return x }

func clName() string { return "-DCARDIO_REAL=double" }
