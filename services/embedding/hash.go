package embedding

import (
	"math"
	"strings"
)

// HashEmbed derives a unit-length vector from text without any I/O.
//
// Each dimension i runs a 32-bit rolling hash (h = h*31 + c*(i+1), signed
// wraparound) over the lowercased, trimmed code points and maps it to
// sin(h)/2 + cos(0.7h)/2. The result is L2-normalized. Empty text yields the
// zero vector. The same input always yields the same bits.
func HashEmbed(text string, dimensions int) Vector {
	if dimensions <= 0 {
		return Vector{}
	}

	normalized := strings.ToLower(strings.TrimSpace(text))
	out := make(Vector, dimensions)
	if normalized == "" {
		return out
	}

	codes := []rune(normalized)
	raw := make([]float64, dimensions)
	var sumSquares float64

	for i := 0; i < dimensions; i++ {
		scale := int32(i + 1)
		var h int32
		for _, c := range codes {
			h = (h << 5) - h + int32(c)*scale
		}
		v := math.Sin(float64(h))*0.5 + math.Cos(float64(h)*0.7)*0.5
		raw[i] = v
		sumSquares += v * v
	}

	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		norm = 1
	}
	for i, v := range raw {
		out[i] = float32(v / norm)
	}
	return out
}
