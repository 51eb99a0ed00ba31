package wstr

import (
	"math"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Numeric parsing and formatting
// ---------------------------------------------------------------------------

// ParseNumber parses a whole-string numeric literal. Accepted forms are
// hexadecimal (0x / 0X prefix), decimal integers, decimal fractions with a
// leading dot, and decimal exponent notation. Leading and trailing ASCII
// whitespace is permitted. Anything else yields NaN; the empty string
// yields NaN.
func ParseNumber(s WStr) float64 {
	str := strings.TrimFunc(s.String(), isASCIISpace)
	if str == "" {
		return math.NaN()
	}

	// Hex literal: whole-string, optional sign is not accepted.
	if len(str) > 2 && (str[0:2] == "0x" || str[0:2] == "0X") {
		n, err := strconv.ParseUint(str[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		// Hex literals wrap to signed 32-bit, mirroring the source format.
		return float64(int32(uint32(n)))
	}

	if str == "Infinity" || str == "+Infinity" {
		return math.Inf(1)
	}
	if str == "-Infinity" {
		return math.Inf(-1)
	}

	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return math.NaN()
	}
	// strconv accepts forms like "inf" and "0x1p2" that the literal
	// grammar does not.
	lower := strings.ToLower(str)
	if strings.ContainsAny(lower, "px") || strings.Contains(lower, "inf") || strings.Contains(lower, "nan") {
		return math.NaN()
	}
	return f
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// FromFloat formats a float64 the way the runtime stringifies numbers:
// shortest round-tripping decimal form, switching to exponential notation
// below 1e-6 and at or above 1e21, with NaN/Infinity spelled out.
func FromFloat(f float64) WStr {
	return FromUTF8(FormatFloat(f))
}

// FormatFloat is FromFloat returning a Go string.
func FormatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if f == 0 {
		// Negative zero prints as plain zero.
		return "0"
	}
	abs := math.Abs(f)
	if abs < 1e-6 || abs >= 1e21 {
		return trimExponent(strconv.FormatFloat(f, 'e', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// trimExponent strips leading zeros from an exponent, "1e-07" -> "1e-7".
func trimExponent(s string) string {
	i := strings.IndexAny(s, "eE")
	if i < 0 || i+2 >= len(s) {
		return s
	}
	sign := s[i+1]
	if sign != '+' && sign != '-' {
		return s
	}
	j := i + 2
	for j < len(s)-1 && s[j] == '0' {
		j++
	}
	return s[:i+2] + s[j:]
}
