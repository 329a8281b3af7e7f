// SPDX-License-Identifier: EPL-2.0

// Package utils contains small per-sample helpers shared by the decoders, the
// resampler and the clip renderer.
package utils

import "math"

// CubicInterpolate evaluates a Catmull-Rom spline through four consecutive
// samples at x in [0, 1] between y1 and y2.
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}

// Float32ToInt16 clamps x to [-1, 1] and scales it to 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return int16(x * 32767.0)
}

// MinGainDB is the level treated as silence by DBToGain.
const MinGainDB = -90.0

// DBToGain converts decibels to a linear amplitude factor. Levels at or below
// MinGainDB map to exactly zero.
func DBToGain(db float64) float32 {
	if db <= MinGainDB || math.IsNaN(db) {
		return 0
	}
	return float32(math.Pow(10, db/20))
}

// GainToDB converts a linear amplitude factor to decibels, bottoming out at
// MinGainDB.
func GainToDB(gain float32) float64 {
	if gain <= 0 {
		return MinGainDB
	}
	return max(20*math.Log10(float64(gain)), MinGainDB)
}
