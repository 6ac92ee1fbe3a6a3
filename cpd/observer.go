// SPDX-License-Identifier: MIT

package cpd

// Iteration is reported to observers after every completed outer iteration.
type Iteration struct {
	Index      int // global iteration count (0 is the initial guess)
	ErrorLeft  float64
	ErrorRight float64
	ErrorTotal float64
	Rank       int
	Mode       Mode
}

// Observer receives progress events from the run loops. Calls happen on the
// goroutine running the loop, in order.
type Observer interface {
	OnStart(mode Mode, rank int)
	OnIteration(it Iteration)
	OnRankChange(oldRank, newRank int)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnStart(Mode, int) {}
func (NopObserver) OnIteration(Iteration) {}
func (NopObserver) OnRankChange(int, int) {}

type multiObserver []Observer

// Observers fans every event out to obs in order. nil entries are skipped.
func Observers(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multiObserver) OnStart(mode Mode, rank int) {
	for _, o := range m {
		o.OnStart(mode, rank)
	}
}

func (m multiObserver) OnIteration(it Iteration) {
	for _, o := range m {
		o.OnIteration(it)
	}
}

func (m multiObserver) OnRankChange(oldRank, newRank int) {
	for _, o := range m {
		o.OnRankChange(oldRank, newRank)
	}
}
