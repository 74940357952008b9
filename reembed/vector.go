package reembed

import "math"

// NormalizeVector normalizes a vector to unit length so that dot products
// against it are cosine similarities. Returns a new vector. A zero vector
// normalizes to a zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var squares float64
	for _, val := range v {
		squares += float64(val) * float64(val)
	}
	magnitude := float32(math.Sqrt(squares))

	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}
