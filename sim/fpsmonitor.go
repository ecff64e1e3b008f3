package sim

import (
	"time"

	"github.com/lab1702/actionserver/zone"
)

// fpsMonitor keeps a rolling window of frame times and reports the
// observed tick rate, using a strict time window rather than a fixed
// sample count so it stays accurate under variable tick timing.
type fpsMonitor struct {
	frameTimes []time.Duration
	frameAt    []time.Time
	metrics    *metrics
}

func newFPSMonitor(m *metrics) *fpsMonitor {
	return &fpsMonitor{metrics: m}
}

// Record appends one observed frame time and drops samples older than
// FPSWindow.
func (f *fpsMonitor) Record(now time.Time, dt time.Duration) {
	f.frameTimes = append(f.frameTimes, dt)
	f.frameAt = append(f.frameAt, now)

	cutoff := now.Add(-zone.FPSWindow)
	i := 0
	for i < len(f.frameAt) && f.frameAt[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		f.frameTimes = append([]time.Duration(nil), f.frameTimes[i:]...)
		f.frameAt = append([]time.Time(nil), f.frameAt[i:]...)
	}

	if f.metrics != nil {
		f.metrics.observedFPS.Set(f.FPS())
	}
}

// FPS returns the observed tick rate over the current window.
func (f *fpsMonitor) FPS() float64 {
	if len(f.frameTimes) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range f.frameTimes {
		total += d
	}
	if total <= 0 {
		return 0
	}
	return float64(len(f.frameTimes)) / total.Seconds()
}
