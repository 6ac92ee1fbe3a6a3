// SPDX-License-Identifier: MIT

package telemetry

import (
	"fmt"
	"io"

	"github.com/katalvlaran/alscpd/cpd"
)

// TableHeader is the first line written by a TableObserver.
const TableHeader = "! Iteration RMSEleft RMSEright RMSEtot"

// TableObserver appends one "index left right total" line per iteration to w,
// after a single header line. Write errors are kept and reported by Err; once
// one occurs nothing more is written.
type TableObserver struct {
	w      io.Writer
	header bool
	err    error
}

// NewTableObserver returns a TableObserver writing to w.
func NewTableObserver(w io.Writer) *TableObserver {
	return &TableObserver{w: w}
}

// WriteRow writes one line, preceded by the header on first use.
func (t *TableObserver) WriteRow(index int, e cpd.Errors) {
	if t.err != nil {
		return
	}
	if !t.header {
		if _, t.err = fmt.Fprintln(t.w, TableHeader); t.err != nil {
			return
		}
		t.header = true
	}
	_, t.err = fmt.Fprintf(t.w, "%d %.10g %.10g %.10g\n", index, e.Left, e.Right, e.Total)
}

// Err returns the first write error.
func (t *TableObserver) Err() error { return t.err }

// OnStart implements cpd.Observer.
func (t *TableObserver) OnStart(cpd.Mode, int) {}

// OnIteration implements cpd.Observer.
func (t *TableObserver) OnIteration(it cpd.Iteration) {
	t.WriteRow(it.Index, cpd.Errors{Left: it.ErrorLeft, Right: it.ErrorRight, Total: it.ErrorTotal})
}

// OnRankChange implements cpd.Observer.
func (t *TableObserver) OnRankChange(int, int) {}
