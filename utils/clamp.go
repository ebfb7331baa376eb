package utils

import "math"

// Clamp bounds t to the interval between min and max, in either order.
func Clamp(t, min, max float64) float64 {
	min, max = math.Min(min, max), math.Max(min, max)
	return math.Max(math.Min(t, max), min)
}

// Mix linearly interpolates from a to b by fraction t.
func Mix(a, b, t float64) float64 {
	return a*(1-t) + b*t
}
