// Package stats derives the summary statistics of a source folder from the
// observation files it contains.
package stats

import (
	"fmt"
	"math"
	"time"

	"mcat-go/internal/inspect"
	"mcat-go/internal/mcat"
)

const daysPerMonth = 30

// timestampLayouts are tried in order when parsing DATE-OBS values.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02",
}

// Deriver computes SourceStats from observation file headers.
type Deriver struct {
	headers inspect.HeaderReader
}

func NewDeriver(headers inspect.HeaderReader) *Deriver {
	return &Deriver{headers: headers}
}

var _ mcat.StatsDeriver = (*Deriver)(nil)

// Derive summarises the given files of a source folder. Files excluded by the
// folder's flag list do not count. The result is the same for any ordering of
// files.
func (d *Deriver) Derive(files []string, sourceFolder string) (*mcat.SourceStats, error) {
	if len(files) == 0 {
		return mcat.EmptyStats(), nil
	}

	kept, err := inspect.FilterFlagged(files, sourceFolder)
	if err != nil {
		return nil, fmt.Errorf("filtering flagged files: %w", err)
	}
	if len(kept) == 0 {
		return mcat.EmptyStats(), nil
	}

	earliest, latest, err := inspect.SelectBoundaryFiles(kept)
	if err != nil {
		return nil, err
	}

	first, err := inspect.ReadObservationTimestamp(d.headers, earliest)
	if err != nil {
		return nil, err
	}
	last, err := inspect.ReadObservationTimestamp(d.headers, latest)
	if err != nil {
		return nil, err
	}
	velocity, err := inspect.ReadSystemicVelocity(d.headers, latest)
	if err != nil {
		return nil, err
	}

	cadence, err := Cadence(first, last, len(kept))
	if err != nil {
		return nil, err
	}

	return &mcat.SourceStats{
		ShortCode:           mcat.ShortCodeOf(latest),
		SystemicVelocity:    velocity,
		FirstObservation:    first,
		LastObservation:     last,
		ObservationCount:    len(kept),
		MeanCadencePerMonth: cadence,
	}, nil
}

// CheckName reports whether the epoch of an observation file name can be
// parsed. Derive fails on any folder holding a file that does not pass.
func (d *Deriver) CheckName(name string) error {
	_, err := inspect.Epoch(name)
	return err
}

// Cadence returns the mean number of observations per 30 days between first
// and last, rounded to three decimals. A zero or negative span gives 0.
func Cadence(first, last string, count int) (float64, error) {
	start, err := ParseTimestamp(first)
	if err != nil {
		return 0, err
	}
	end, err := ParseTimestamp(last)
	if err != nil {
		return 0, err
	}

	elapsedDays := end.Sub(start).Hours() / 24
	if elapsedDays <= 0 {
		return 0, nil
	}
	perMonth := float64(count) / elapsedDays * daysPerMonth
	return math.Round(perMonth*1000) / 1000, nil
}

// ParseTimestamp parses an ISO-8601 observation time. Values without a zone
// are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", mcat.ErrMissingMetadata, s)
}
