package mcat

import (
	"fmt"
	"strings"

	"mcat-go/internal/coord"
)

// Rebuild replaces the whole catalog with records derived from the archive.
// A record is made for every reference catalog entry that has an archive
// folder, in reference catalog order. The old rows are replaced in one
// transaction, so on any error the previous catalog is left as it was.
func (s *CatalogService) Rebuild() (int, error) {
	folders, err := s.archive.ListSources()
	if err != nil {
		return 0, err
	}
	inArchive := make(map[string]bool, len(folders))
	for _, f := range folders {
		inArchive[f] = true
	}

	entries, err := s.catalog.Entries()
	if err != nil {
		return 0, fmt.Errorf("reading reference catalog: %w", err)
	}

	var records []*SourceRecord
	seen := make(map[string]bool)
	for _, e := range entries {
		if !inArchive[e.FullName] || seen[e.FullName] {
			continue
		}
		seen[e.FullName] = true

		files, err := s.archive.ListObservations(e.FullName)
		if err != nil {
			return 0, err
		}
		st, err := s.deriver.Derive(files, s.archive.SourceDir(e.FullName))
		if err != nil {
			return 0, fmt.Errorf("deriving statistics of %s: %w", e.FullName, err)
		}

		rec := &SourceRecord{
			FullName:         e.FullName,
			RA:               coord.FormatRA(e.RADigits),
			Dec:              coord.FormatDec(e.DecDigits),
			ShortCode:        st.ShortCode,
			SystemicVelocity: e.SystemicVelocity,
		}
		rec.ApplyStats(st)
		if st.ObservationCount == 0 {
			rec.SystemicVelocity = e.SystemicVelocity
		}
		records = append(records, rec)
	}

	if err := checkUnique(records); err != nil {
		return 0, err
	}
	if err := s.store.CreateTable(); err != nil {
		return 0, err
	}
	if err := s.store.ReplaceAll(records); err != nil {
		return 0, err
	}
	s.logger.Info("catalog rebuilt", "sources", len(records), "folders", len(folders))
	return len(records), nil
}

// checkUnique rejects rebuilt records that share a set short code. Full names
// are already distinct.
func checkUnique(records []*SourceRecord) error {
	byCode := make(map[string]string, len(records))
	for _, rec := range records {
		if !IsShortCodeSet(rec.ShortCode) {
			continue
		}
		code := strings.TrimSpace(rec.ShortCode)
		if other, ok := byCode[code]; ok {
			return fmt.Errorf("%w: folders %s and %s both hold short code %s", ErrConstraintViolation, other, rec.FullName, code)
		}
		byCode[code] = rec.FullName
	}
	return nil
}
