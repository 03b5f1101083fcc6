// Package levels drives saturation and value from a keyframed timeline, for
// installations that want the colour to breathe or fade instead of holding
// constant levels.
package levels
