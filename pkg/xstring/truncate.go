package xstring

import "unicode/utf8"

const ellipsis = "…"

// Truncate keeps the first n runes of s and appends an ellipsis when anything was cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + ellipsis
		}
		i++
	}
	return s
}
