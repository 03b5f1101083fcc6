// Package softpwm renders four duty cycles as on/off levels by comparing
// them against a free-running 8-bit tick counter.
package softpwm

import (
	"strings"

	"rgbw-ng/internal/rgbw"
)

// Levels is the on/off state of all four outputs, one bit per channel in
// rgbw.Channel order.
type Levels uint8

// AllLow drives every output off.
const AllLow Levels = 0

func (l Levels) Has(ch rgbw.Channel) bool {
	return l&(1<<uint(ch)) != 0
}

func (l Levels) String() string {
	var b strings.Builder
	for _, ch := range rgbw.Channels {
		if l.Has(ch) {
			b.WriteString(strings.ToUpper(ch.String()))
		} else {
			b.WriteString("-")
		}
	}
	return b.String()
}

// Generator is the tick handler. It owns the tick counter; Tick must only be
// called from one goroutine.
type Generator struct {
	counter uint8
	src     rgbw.Source
}

func NewGenerator(src rgbw.Source) *Generator {
	return &Generator{src: src}
}

// Tick advances the counter and returns the levels for this tick. A channel
// is high iff its duty is greater than the counter, so duty d is high for d
// of every 256 ticks and 255 tops out one tick short of always-on.
func (g *Generator) Tick() Levels {
	g.counter++
	d := g.src.Load()
	var lv Levels
	if d.R > g.counter {
		lv |= 1 << uint(rgbw.R)
	}
	if d.G > g.counter {
		lv |= 1 << uint(rgbw.G)
	}
	if d.B > g.counter {
		lv |= 1 << uint(rgbw.B)
	}
	if d.W > g.counter {
		lv |= 1 << uint(rgbw.W)
	}
	return lv
}

// Counter returns the current tick counter.
func (g *Generator) Counter() uint8 { return g.counter }
