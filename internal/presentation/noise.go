package presentation

import "math"

// minDraw replaces an exact zero draw; Box-Muller needs log(u) to be finite.
const minDraw = 1e-10

// Gaussian draws two uniforms from src and returns a normally distributed
// value centred on 0 with the given standard deviation.
func Gaussian(src Source, stdDev float64) float64 {
	u := src.Next()
	v := src.Next()
	if u == 0 {
		u = minDraw
	}
	if v == 0 {
		v = minDraw
	}
	return math.Sqrt(-2.0*math.Log(u)) * math.Cos(2.0*math.Pi*v) * stdDev
}
