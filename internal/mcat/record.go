package mcat

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Unset marks a text field that has no value yet, such as the observation
// times of a source without any archived files.
const Unset = "---"

// SourceRecord is one row of the source catalog.
type SourceRecord struct {
	ID                  int64
	FullName            string
	RA                  string
	Dec                 string
	ShortCode           string
	SystemicVelocity    float64
	FirstObservation    string
	LastObservation     string
	ObservationCount    int
	MeanCadencePerMonth float64
}

// SourceStats holds the fields of a SourceRecord that are derived from the
// contents of its archive folder.
type SourceStats struct {
	ShortCode           string
	SystemicVelocity    float64
	FirstObservation    string
	LastObservation     string
	ObservationCount    int
	MeanCadencePerMonth float64
}

// EmptyStats returns the statistics of a source folder with no usable files.
func EmptyStats() *SourceStats {
	return &SourceStats{
		ShortCode:        " ",
		FirstObservation: Unset,
		LastObservation:  Unset,
	}
}

// ApplyStats overwrites every derived field of r with st.
// A blank short code in st leaves the record's short code untouched.
func (r *SourceRecord) ApplyStats(st *SourceStats) {
	if IsShortCodeSet(st.ShortCode) {
		r.ShortCode = st.ShortCode
	}
	r.SystemicVelocity = st.SystemicVelocity
	r.FirstObservation = st.FirstObservation
	r.LastObservation = st.LastObservation
	r.ObservationCount = st.ObservationCount
	r.MeanCadencePerMonth = st.MeanCadencePerMonth
}

// Sheet returns the record as ordered parameter/value pairs for display.
func (r *SourceRecord) Sheet() [][2]string {
	return [][2]string{
		{"Name", r.FullName},
		{"RA", r.RA},
		{"DEC", r.Dec},
		{"Short name", r.ShortCode},
		{"V_lsr", fmt.Sprintf("%g", r.SystemicVelocity)},
		{"First observation date", r.FirstObservation},
		{"Latest observation date", r.LastObservation},
		{"Number of observations", fmt.Sprintf("%d", r.ObservationCount)},
		{"Monthly cadence", fmt.Sprintf("%g", r.MeanCadencePerMonth)},
	}
}

// IsShortCodeSet reports whether code holds a real short code rather than
// one of the placeholders used for sources that were never ingested.
func IsShortCodeSet(code string) bool {
	code = strings.TrimSpace(code)
	return code != "" && code != Unset
}

// ShortCodeOf returns the short code encoded in an observation file name:
// the text before the first underscore of its base name.
func ShortCodeOf(name string) string {
	base := filepath.Base(name)
	code, _, _ := strings.Cut(base, "_")
	return strings.TrimSpace(code)
}
