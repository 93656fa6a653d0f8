// Package render shapes a normalized district table into the data the
// dashboard's charts consume. It draws nothing itself.
package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Choropleth scale stops: solid blue up to BlueStop, then a linear blend to
// green at 1.
const BlueStop = 0.7

var (
	blue  = colorful.Color{R: 0, G: 0, B: 1}
	green = colorful.Color{R: 0, G: 128.0 / 255, B: 0}
)

// ColorFor maps a land ratio to a "#rrggbb" fill. Ratios outside [0, 1] are
// clamped and NaN reads as 0.
func ColorFor(ratio float64) string {
	if math.IsNaN(ratio) || ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	var t float64
	if ratio > BlueStop {
		t = (ratio - BlueStop) / (1 - BlueStop)
	}
	return blue.BlendRgb(green, t).Clamped().Hex()
}
