// Package hsv converts hue/saturation/value into RGBW duty cycles using
// 8-bit fixed point and the perceptual dimming curve.
//
// The white channel carries the fully desaturated component, the same level
// that the lowest of R, G and B sits at.
package hsv

import (
	"fmt"

	"rgbw-ng/internal/dimcurve"
	"rgbw-ng/internal/rgbw"
)

// EdgePolicy selects how black and achromatic inputs are handled.
type EdgePolicy int

const (
	// EdgeShortCircuit returns (0,0,0,0) for val == 0 and (val,val,val,val)
	// for sat == 0 without running the sextant computation.
	EdgeShortCircuit EdgePolicy = iota
	// EdgeFallThrough always runs the sextant computation, matching the
	// legacy firmware where the early assignments were overwritten.
	EdgeFallThrough
)

// ParseEdgePolicy accepts "short_circuit" and "fall_through". Empty means
// EdgeShortCircuit.
func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch s {
	case "", "short_circuit":
		return EdgeShortCircuit, nil
	case "fall_through":
		return EdgeFallThrough, nil
	default:
		return 0, fmt.Errorf("hsv: unknown edge policy %q", s)
	}
}

func (p EdgePolicy) String() string {
	switch p {
	case EdgeShortCircuit:
		return "short_circuit"
	case EdgeFallThrough:
		return "fall_through"
	default:
		return fmt.Sprintf("EdgePolicy(%d)", int(p))
	}
}

type role uint8

const (
	roleTop role = iota
	roleRamp
	roleBottom
)

// sextantRoles gives the (r, g, b) role for each arc of the wheel.
var sextantRoles = [Sextants][3]role{
	{roleTop, roleRamp, roleBottom},
	{roleRamp, roleTop, roleBottom},
	{roleBottom, roleTop, roleRamp},
	{roleBottom, roleRamp, roleTop},
	{roleRamp, roleBottom, roleTop},
	{roleTop, roleBottom, roleRamp},
}

// Converter is safe for concurrent use; it holds no mutable state.
type Converter struct {
	Edge EdgePolicy
}

// Convert uses the default EdgeShortCircuit policy.
func Convert(hue Angle, sat, val uint8) rgbw.Duty {
	return Converter{}.Convert(hue, sat, val)
}

// Convert maps (hue, sat, val) to duty cycles. hue must be below FullCircle.
func (c Converter) Convert(hue Angle, sat, val uint8) rgbw.Duty {
	if c.Edge == EdgeShortCircuit {
		if val == 0 {
			return rgbw.Duty{}
		}
		if sat == 0 {
			return rgbw.Duty{R: val, G: val, B: val, W: val}
		}
	}

	lv := linearLevels(hue, sat, val)
	var out [3]uint8
	for i, r := range sextantRoles[hue.Sextant()] {
		out[i] = dimcurve.Lookup(lv[r])
	}
	return rgbw.Duty{
		R: out[0],
		G: out[1],
		B: out[2],
		W: dimcurve.Lookup(lv[roleBottom]),
	}
}

// linearLevels returns the top, ramp and bottom levels before the dimming
// curve, indexed by role.
func linearLevels(hue Angle, sat, val uint8) [3]uint8 {
	var lv [3]uint8
	lv[roleTop] = val

	// bottom = v * (1 - s), i.e. (v * (255 - s) + corr) / 256
	ww := uint16(val) * uint16(^sat)
	ww++
	ww += ww >> 8
	lv[roleBottom] = uint8(ww >> 8)

	frac := hue.Fraction()
	if hue.Sextant()&1 == 0 {
		// rising: v * (1 - s * (1 - h))
		if frac == 0 {
			ww = uint16(sat) << 8
		} else {
			ww = uint16(sat) * uint16(-frac)
		}
	} else {
		// falling: v * (1 - s * h)
		ww = uint16(sat) * uint16(frac)
	}
	ww += ww >> 8
	bb := ^uint8(ww >> 8)
	ww = uint16(val)*uint16(bb) + uint16(val>>1)
	lv[roleRamp] = uint8(ww >> 8)

	return lv
}
