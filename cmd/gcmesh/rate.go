package main

import (
	"time"

	"github.com/montanaflynn/stats"
)

// rateMeter measures how often an event happens from the gaps between its occurrences.
type rateMeter struct {
	last time.Time
	gaps []float64
}

func (rm *rateMeter) mark(now time.Time) {
	if !rm.last.IsZero() {
		rm.gaps = append(rm.gaps, now.Sub(rm.last).Seconds())
	}
	rm.last = now
}

// rate is events per second, or 0 before two events were seen.
func (rm *rateMeter) rate() float64 {
	mean, err := stats.Mean(rm.gaps)
	if err != nil || mean <= 0 {
		return 0
	}
	return 1 / mean
}

// reset forgets the gaps but keeps the last event, so the next gap spans the reset.
func (rm *rateMeter) reset() {
	rm.gaps = rm.gaps[:0]
}
