package utils

// RollingWindow keeps the most recent samples of a measurement. It is not safe for concurrent use.
type RollingWindow struct {
	data []float64
	pos  int
	full bool
}

// NewRollingWindow returns a window holding up to numSamples samples.
func NewRollingWindow(numSamples int) *RollingWindow {
	return &RollingWindow{data: make([]float64, numSamples)}
}

// Add records x, replacing the oldest sample once the window is full.
func (rw *RollingWindow) Add(x float64) {
	if len(rw.data) == 0 {
		return
	}
	rw.data[rw.pos] = x
	rw.pos++
	if rw.pos >= len(rw.data) {
		rw.pos = 0
		rw.full = true
	}
}

// Values returns a copy of the recorded samples, oldest first.
func (rw *RollingWindow) Values() []float64 {
	if !rw.full {
		return append([]float64(nil), rw.data[:rw.pos]...)
	}
	out := make([]float64, 0, len(rw.data))
	out = append(out, rw.data[rw.pos:]...)
	return append(out, rw.data[:rw.pos]...)
}
