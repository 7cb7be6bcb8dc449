// Package coord formats the packed right ascension and declination digits of
// the reference catalog into labelled sexagesimal strings.
package coord

import (
	"strconv"
	"strings"
)

// FormatRA turns HHMMSS[.fraction] into HHhMMmSS[.fraction]s.
// Input is not validated; short input yields short output.
func FormatRA(ra string) string {
	return span(ra, 0, 2) + "h" + span(ra, 2, 4) + "m" + span(ra, 4, len(ra)) + "s"
}

// FormatDec turns [-]DDMMSS[.fraction] into [-]DDdMMmSS[.fraction]s.
// A negative value carries its sign in the first character, so every field
// starts one character later than for a positive value.
func FormatDec(dec string) string {
	off := 0
	if isNegative(dec) {
		off = 1
	}
	return span(dec, 0, 2+off) + "d" + span(dec, 2+off, 4+off) + "m" + span(dec, 4+off, len(dec)) + "s"
}

func isNegative(dec string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(dec), 64)
	if err != nil || v == 0 {
		return strings.HasPrefix(strings.TrimSpace(dec), "-")
	}
	return v < 0
}

// span returns s[i:j] clamped to the bounds of s.
func span(s string, i, j int) string {
	if i > len(s) {
		i = len(s)
	}
	if j > len(s) {
		j = len(s)
	}
	if j < i {
		return ""
	}
	return s[i:j]
}
