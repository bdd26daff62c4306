// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import "github.com/cpmech/gosl/plt"

// PlotLog renders a logged sequence against the companion time sequence and
// saves it to dir/fname, the same ad-hoc inspection helper ana/*_test.go
// reaches for (plt.Plot, plt.Gll, plt.Save) rather than a plotting library
// outside the pack. It is never called by the integrator itself; it exists
// for manual inspection of a run's log registry between test runs.
func PlotLog(t, y []float64, label, dir, fname string) {
	plt.Reset(false, nil)
	plt.Plot(t, y, &plt.A{C: "b", Ls: "-", L: label})
	plt.Gll("$t$", label, nil)
	plt.Save(dir, fname)
}
