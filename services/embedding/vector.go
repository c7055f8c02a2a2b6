// Package embedding turns query text into fixed-width embedding vectors.
//
// The primary path asks an external model for the vector; when that fails
// or returns something unusable, a deterministic hash embedding is used
// instead. Every vector leaving this package has exactly the configured
// number of dimensions.
package embedding

// DefaultDimensions is the target width of every embedding produced here.
const DefaultDimensions = 1536

// Vector is an embedding. Components are always finite.
type Vector []float32

// Normalize pads or truncates vec to exactly targetDim components.
// Shorter vectors are right-padded with zeros. A negative targetDim is
// treated as zero. The returned slice never aliases vec.
func Normalize(vec Vector, targetDim int) Vector {
	if targetDim < 0 {
		targetDim = 0
	}
	out := make(Vector, targetDim)
	copy(out, vec)
	return out
}
