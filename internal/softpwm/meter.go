package softpwm

import (
	"sync/atomic"

	"rgbw-ng/internal/rgbw"
)

// PeriodTicks is the number of ticks in one PWM period.
const PeriodTicks = 256

// Meter counts high ticks per channel over consecutive 256-tick windows.
// Observe is called from the tick goroutine; Realized may be read from any
// goroutine.
type Meter struct {
	n      int
	counts [4]int

	realized atomic.Uint32
	periods  atomic.Uint64
}

func (m *Meter) Observe(lv Levels) {
	for i, ch := range rgbw.Channels {
		if lv.Has(ch) {
			m.counts[i]++
		}
	}
	m.n++
	if m.n < PeriodTicks {
		return
	}
	d := rgbw.Duty{
		R: uint8(m.counts[0]),
		G: uint8(m.counts[1]),
		B: uint8(m.counts[2]),
		W: uint8(m.counts[3]),
	}
	m.realized.Store(d.Pack())
	m.periods.Add(1)
	m.n = 0
	m.counts = [4]int{}
}

// Realized is the measured duty of the last complete window.
func (m *Meter) Realized() rgbw.Duty { return rgbw.Unpack(m.realized.Load()) }

// Periods is the number of complete windows observed.
func (m *Meter) Periods() uint64 { return m.periods.Load() }
