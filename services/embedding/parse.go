package embedding

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrNoVector means the text contains no bracketed numeric array.
	ErrNoVector = errors.New("no numeric array found in provider output")

	// ErrMalformedVector means an array was found but could not be parsed
	// into finite float components.
	ErrMalformedVector = errors.New("malformed numeric array in provider output")

	// numericArrayPattern matches a bracketed list of number-like tokens
	// containing at least one digit.
	numericArrayPattern = regexp.MustCompile(`\[[-+0-9.eE,\s]*[0-9][-+0-9.eE,\s]*\]`)
)

// ExtractVector pulls the first bracketed numeric array out of free-form
// model output and parses it. The returned vector has whatever length the
// model produced; callers normalize it.
func ExtractVector(text string) (Vector, error) {
	match := numericArrayPattern.FindString(text)
	if match == "" {
		return nil, ErrNoVector
	}

	body := strings.TrimSpace(match[1 : len(match)-1])
	parts := strings.Split(body, ",")
	vec := make(Vector, 0, len(parts))
	for i, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			return nil, fmt.Errorf("%w: empty element at index %d", ErrMalformedVector, i)
		}
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrMalformedVector, i, err)
		}
		v := float32(f)
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: element %d is not finite", ErrMalformedVector, i)
		}
		vec = append(vec, v)
	}
	return vec, nil
}

func isFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
