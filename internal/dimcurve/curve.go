// Package dimcurve holds the perceptual dimming table used to turn linear
// channel intensities into PWM duty cycles.
//
// The table is CIE 1931 lightness inverted to luminance, scaled to 0..255.
// It is generated offline; see gen.go.
package dimcurve

//go:generate go run gen.go

// Lookup maps a linear intensity to its perceptually corrected duty value.
func Lookup(x uint8) uint8 {
	return table[x]
}

// Table returns a copy of the full curve.
func Table() [256]uint8 {
	return table
}

// MaxStep is the largest difference between two adjacent entries. A change
// of one linear unit never moves the output by more than this.
func MaxStep() uint8 {
	var max uint8
	for i := 1; i < len(table); i++ {
		if d := table[i] - table[i-1]; d > max {
			max = d
		}
	}
	return max
}
