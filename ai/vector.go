package ai

import "math"

// Normalize scales a vector to unit length, returning a new slice. A zero
// vector comes back as a zero vector of the same length. The magnitude is
// accumulated in float64 so large components don't overflow float32.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sum)

	if magnitude == 0 {
		return make([]float32, len(v))
	}

	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}
