package config

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseIntOr reads a leading integer from s the way a lenient shell tool
// would: surrounding whitespace is ignored, an optional sign is accepted, a
// 0x prefix switches to hexadecimal and parsing stops at the first digit
// that does not fit ("250ms" reads as 250, "0x1F4" as 500). Input without
// leading digits, zero, negative or out-of-range values yield def.
func ParseIntOr(s string, def int) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}

	base, isDigit := 10, isDecimal
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, isDigit = 16, isHex
		s = s[2:]
	}

	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return def
	}

	n, err := strconv.ParseInt(sign+s[:end], base, strconv.IntSize)
	if err != nil || n <= 0 {
		return def
	}

	return int(n)
}

func isDecimal(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHex(c byte) bool {
	return isDecimal(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
