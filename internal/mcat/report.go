package mcat

import (
	"errors"
	"fmt"
)

// GroupStatus is the outcome of ingesting one short-code group.
type GroupStatus string

const (
	GroupIngested GroupStatus = "ingested"
	GroupSkipped  GroupStatus = "skipped"
	GroupFailed   GroupStatus = "failed"
)

// GroupResult describes what happened to the files of one short code.
type GroupResult struct {
	ShortCode string
	FullName  string // empty when the group was skipped before resolution
	Files     int
	Created   bool // a new catalog record was created for the group
	Status    GroupStatus
	Reason    string
	Err       error
}

// IngestReport lists group results in short-code order.
type IngestReport struct {
	Groups []GroupResult
}

// Sources returns the full names of the sources that received files.
func (r *IngestReport) Sources() []string {
	var names []string
	for _, g := range r.Groups {
		if g.Status == GroupIngested {
			names = append(names, g.FullName)
		}
	}
	return names
}

// Count returns the number of groups with the given status.
func (r *IngestReport) Count(status GroupStatus) int {
	n := 0
	for _, g := range r.Groups {
		if g.Status == status {
			n++
		}
	}
	return n
}

// Err joins the errors of all failed groups, or returns nil.
func (r *IngestReport) Err() error {
	var errs []error
	for _, g := range r.Groups {
		if g.Status == GroupFailed && g.Err != nil {
			errs = append(errs, fmt.Errorf("short code %s: %w", g.ShortCode, g.Err))
		}
	}
	return errors.Join(errs...)
}
