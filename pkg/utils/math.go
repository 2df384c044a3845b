package utils

import "math"

// ClampFloat64 clamps a float64 value between min and max
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ReflectFloat64 mirrors a value that escaped [min, max] back into range,
// then clamps in case the overshoot exceeded the interval width.
func ReflectFloat64(value, min, max float64) float64 {
	if min >= max {
		return min
	}
	if value < min {
		value = min + (min - value)
	} else if value > max {
		value = max - (value - max)
	}
	return ClampFloat64(value, min, max)
}

// Sum calculates the sum of a slice of float64 values
func Sum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

// Round rounds a float64 to the specified number of decimal places
func Round(value float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(value*multiplier) / multiplier
}
