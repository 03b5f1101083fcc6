package hsv

// Angle is a position on the hue wheel: six sextants of 256 steps each.
// Valid values are [0, FullCircle).
type Angle uint16

const (
	SextantWidth = 256
	Sextants     = 6
)

// FullCircle is the number of distinct hue angles.
const FullCircle Angle = Sextants * SextantWidth

// NewAngle wraps v onto the wheel.
func NewAngle(v int) Angle {
	v %= int(FullCircle)
	if v < 0 {
		v += int(FullCircle)
	}
	return Angle(v)
}

// Add advances a by step, wrapping modulo FullCircle. step may be negative.
func (a Angle) Add(step int) Angle {
	return NewAngle(int(a) + step)
}

// Sextant is the arc index, 0..5.
func (a Angle) Sextant() uint8 { return uint8(a >> 8) }

// Fraction is the position within the arc, 0..255.
func (a Angle) Fraction() uint8 { return uint8(a) }
