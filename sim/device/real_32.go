// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build real32

package device

// Real is the device-side floating point type for a build tagged real32.
type Real = float32

func toReal(x float64) Real { return Real(x) }

func clName() string { return "-DCARDIO_REAL=float" }
