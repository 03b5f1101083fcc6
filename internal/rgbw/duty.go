// Package rgbw defines the four-channel duty cycle and the handoff used to
// pass it from the animation loop to the tick handler.
package rgbw

import "fmt"

// Channel identifies one output.
type Channel int

const (
	R Channel = iota
	G
	B
	W
)

// Channels lists all outputs in wire order.
var Channels = [4]Channel{R, G, B, W}

func (c Channel) String() string {
	switch c {
	case R:
		return "r"
	case G:
		return "g"
	case B:
		return "b"
	case W:
		return "w"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Duty is the fraction of each 256-tick PWM period a channel is driven high.
type Duty struct {
	R, G, B, W uint8
}

// Get returns the duty for ch. Unknown channels read as 0.
func (d Duty) Get(ch Channel) uint8 {
	switch ch {
	case R:
		return d.R
	case G:
		return d.G
	case B:
		return d.B
	case W:
		return d.W
	default:
		return 0
	}
}

// Pack returns d as a single word, R in the low byte.
func (d Duty) Pack() uint32 {
	return uint32(d.R) | uint32(d.G)<<8 | uint32(d.B)<<16 | uint32(d.W)<<24
}

// Unpack is the inverse of Pack.
func Unpack(v uint32) Duty {
	return Duty{
		R: uint8(v),
		G: uint8(v >> 8),
		B: uint8(v >> 16),
		W: uint8(v >> 24),
	}
}

func (d Duty) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", d.R, d.G, d.B, d.W)
}
