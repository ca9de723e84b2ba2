package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateWeight rejects weights that cannot drive an area: NaN and ±Inf.
// Negative values are accepted; callers normalize them to their magnitude.
func ValidateWeight(w float64) error {
	if math.IsNaN(w) {
		return New(ErrCodeInvalidWeight, "weight is NaN")
	}
	if math.IsInf(w, 0) {
		return New(ErrCodeInvalidWeight, "weight %v is not finite", w)
	}
	return nil
}

// ValidateNodePath validates a slash-separated label path used to address a
// node (for example "root/src/main.go" or "src/main.go").
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No control characters
//   - No empty segments ("a//b")
func ValidateNodePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	if strings.Contains(trimmed, "//") {
		return New(ErrCodeInvalidPath, "path contains an empty segment")
	}
	return nil
}

// ValidateDimension checks a viewport width or height.
func ValidateDimension(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return New(ErrCodeInvalidInput, "%s must be a finite non-negative number, got %v", name, v)
	}
	return nil
}
