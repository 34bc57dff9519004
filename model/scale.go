package model

import (
	"math"
)

// Scale normalises value to 0-1 against the range [min, max], clamping the
// result. An empty range (max == min) yields 1 for values above min and 0
// otherwise.
func Scale(value, min, max float64) float64 {
	if max == min {
		if value > min {
			return 1
		}
		return 0
	}
	v := (value - min) / (max - min)
	return math.Min(math.Max(v, 0), 1)
}

// Map linearly maps value from [inMin, inMax] to [outMin, outMax] without
// clamping. An empty input range maps everything to outMin.
func Map(value, inMin, inMax, outMin, outMax float64) float64 {
	if inMin == inMax {
		return outMin
	}
	return (value-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}
