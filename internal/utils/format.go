package utils

import (
	"math"
	"strconv"
	"strings"
)

// FormatAmount renders a float with the given number of decimal places and
// thousands separators in the integer part, e.g. 1234567.891 -> "1,234,567.89".
// Non-finite values render via strconv so they stay visible rather than panicking.
func FormatAmount(value float64, digits int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	if digits < 0 {
		digits = 0
	}

	s := strconv.FormatFloat(value, 'f', digits, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	sb.WriteString(fracPart)
	return sb.String()
}
