// Package mask redacts structured PII from free text before it is stored
// or returned to a caller.
package mask

import "regexp"

// aadhaarPattern matches any 12-digit run bounded by word boundaries.
var aadhaarPattern = regexp.MustCompile(`\b\d{12}\b`)

// Aadhaar replaces every bounded 12-digit run with XXXX-XXXX- followed by
// its last four digits. Applying it twice yields the same output: masked
// runs contain letters and dashes so they no longer match the pattern.
func Aadhaar(text string) string {
	return aadhaarPattern.ReplaceAllStringFunc(text, func(m string) string {
		return "XXXX-XXXX-" + m[8:]
	})
}
