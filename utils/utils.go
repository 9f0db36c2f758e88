package utils

import (
	"os"
	"strings"
	"unicode"
)

// NormalizeHeader strips all whitespace from a header cell so that
// "영업담당자 메일" and "영업담당자메일" compare equal. Sheet headers are
// operator-edited and drift; comparisons go through this everywhere.
func NormalizeHeader(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, v)
}

// FindHeaderIndex returns the zero-based column of name in headers,
// whitespace-insensitive, or -1.
func FindHeaderIndex(headers []string, name string) int {
	target := NormalizeHeader(name)
	for i, h := range headers {
		if h != "" && NormalizeHeader(h) == target {
			return i
		}
	}
	return -1
}

// FindColumn returns the first column matching any of the candidate header
// names, or -1 when none match.
func FindColumn(headers []string, candidates []string) int {
	for _, c := range candidates {
		if idx := FindHeaderIndex(headers, c); idx != -1 {
			return idx
		}
	}
	return -1
}

// Getenv returns the environment value or def when unset/empty.
func Getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// FormatComma inserts thousands separators into a plain digit string.
// Non-numeric input is returned unchanged.
func FormatComma(s string) string {
	digits := strings.TrimSpace(s)
	if digits == "" {
		return s
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return s
		}
	}
	var b strings.Builder
	n := len(digits)
	for i, c := range digits {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}
