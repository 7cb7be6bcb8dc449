package mcat

import (
	"fmt"
	"sort"
	"strings"

	"mcat-go/internal/coord"
)

// CatalogService routes observation files into the archive and keeps the
// source catalog in step with the archive folders.
type CatalogService struct {
	store     Store
	archive   Archive
	catalog   ReferenceCatalog
	deriver   StatsDeriver
	resolver  Resolver
	logger    Logger
	skipCodes map[string]bool
}

// NewCatalogService creates a CatalogService. Files whose short code is in
// skipCodes are never ingested. A nil resolver skips unknown short codes.
func NewCatalogService(store Store, archive Archive, catalog ReferenceCatalog, deriver StatsDeriver, resolver Resolver, logger Logger, skipCodes []string) *CatalogService {
	if resolver == nil {
		resolver = SkipUnknown
	}
	skip := make(map[string]bool, len(skipCodes))
	for _, c := range skipCodes {
		skip[strings.TrimSpace(c)] = true
	}
	return &CatalogService{
		store:     store,
		archive:   archive,
		catalog:   catalog,
		deriver:   deriver,
		resolver:  resolver,
		logger:    logger,
		skipCodes: skip,
	}
}

// GroupByShortCode partitions files by the short code in their base names.
// Files keep their relative order within a group.
func (s *CatalogService) GroupByShortCode(files []IncomingFile) map[string][]IncomingFile {
	groups := make(map[string][]IncomingFile)
	for _, f := range files {
		code := ShortCodeOf(f.Name())
		groups[code] = append(groups[code], f)
	}
	return groups
}

// Ingest copies files into the folders of their sources and refreshes the
// statistics of every source that received files. Groups are handled in
// short-code order; a failing group is recorded in the report and the rest
// continue. The returned error joins the failures of all groups.
func (s *CatalogService) Ingest(files []IncomingFile) (*IngestReport, error) {
	groups := s.GroupByShortCode(files)
	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	report := &IngestReport{}
	for _, code := range codes {
		res := s.ingestGroup(code, groups[code])
		switch res.Status {
		case GroupFailed:
			s.logger.Error("ingest failed", "short_code", code, "source", res.FullName, "error", res.Err)
		case GroupSkipped:
			s.logger.Info("files skipped", "short_code", code, "files", res.Files, "reason", res.Reason)
		default:
			s.logger.Info("files ingested", "short_code", code, "source", res.FullName, "files", res.Files, "created", res.Created)
		}
		report.Groups = append(report.Groups, res)
	}
	return report, report.Err()
}

func (s *CatalogService) ingestGroup(code string, files []IncomingFile) GroupResult {
	res := GroupResult{ShortCode: code, Files: len(files)}
	fail := func(err error) GroupResult {
		res.Status = GroupFailed
		res.Err = err
		return res
	}

	if s.skipCodes[code] {
		res.Status = GroupSkipped
		res.Reason = "short code is on the skip list"
		return res
	}

	// A file Derive cannot order would break every later refresh of the
	// source, so the whole group is refused before anything is copied.
	for _, f := range files {
		if err := s.deriver.CheckName(f.Name()); err != nil {
			return fail(err)
		}
	}

	rec, err := s.store.GetByShortCode(code)
	if err != nil {
		return fail(err)
	}
	if rec == nil {
		rec, res.Created, err = s.resolveUnknown(code)
		if err != nil {
			return fail(err)
		}
		if rec == nil {
			res.Status = GroupSkipped
			res.Reason = "no source given for unknown short code"
			return res
		}
	}
	res.FullName = rec.FullName

	for _, f := range files {
		if err := s.archive.Put(rec.FullName, f); err != nil {
			return fail(fmt.Errorf("copying %s: %w", f.Name(), err))
		}
	}

	if _, err := s.RefreshSource(rec.FullName); err != nil {
		return fail(err)
	}
	res.Status = GroupIngested
	return res
}

// resolveUnknown asks the resolver which source an unknown short code belongs
// to. It returns a nil record when the resolver declines.
func (s *CatalogService) resolveUnknown(code string) (rec *SourceRecord, created bool, err error) {
	name, err := s.resolver.ResolveUnknownSource(code)
	if err != nil {
		return nil, false, fmt.Errorf("resolving short code: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, nil
	}

	rec, err = s.store.GetByFullName(name)
	if err != nil {
		return nil, false, err
	}
	if rec == nil {
		rec, err = s.CreateSource(name, code)
		if err != nil {
			return nil, false, err
		}
		return rec, true, nil
	}

	if IsShortCodeSet(rec.ShortCode) && rec.ShortCode != code {
		return nil, false, fmt.Errorf("%w: source %s already has short code %s", ErrConstraintViolation, rec.FullName, rec.ShortCode)
	}
	if rec.ShortCode != code {
		rec.ShortCode = code
		if err := s.store.UpdateByName(rec); err != nil {
			return nil, false, fmt.Errorf("attaching short code to %s: %w", rec.FullName, err)
		}
		s.logger.Info("short code attached", "source", rec.FullName, "short_code", code)
	}
	return rec, false, nil
}

// CreateSource adds a source from the reference catalog, with no observations
// yet, and creates its archive folder.
func (s *CatalogService) CreateSource(fullName, shortCode string) (*SourceRecord, error) {
	existing, err := s.store.GetByFullName(fullName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: source %s already exists", ErrConstraintViolation, fullName)
	}

	entry, err := s.catalog.Lookup(fullName)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", fullName, err)
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, fullName)
	}

	if !IsShortCodeSet(shortCode) {
		shortCode = EmptyStats().ShortCode
	}
	rec := &SourceRecord{
		FullName:         fullName,
		RA:               coord.FormatRA(entry.RADigits),
		Dec:              coord.FormatDec(entry.DecDigits),
		ShortCode:        shortCode,
		SystemicVelocity: entry.SystemicVelocity,
		FirstObservation: Unset,
		LastObservation:  Unset,
	}

	if err := s.archive.CreateSource(fullName); err != nil {
		return nil, err
	}
	if _, err := s.store.Insert(rec); err != nil {
		return nil, err
	}
	s.logger.Info("source created", "source", fullName, "short_code", shortCode)
	return rec, nil
}

// RefreshSource recomputes the statistics of a source from its archive folder
// and stores them.
func (s *CatalogService) RefreshSource(fullName string) (*SourceRecord, error) {
	rec, err := s.store.GetByFullName(fullName)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("refreshing %s: %w", fullName, ErrNotFound)
	}

	files, err := s.archive.ListObservations(fullName)
	if err != nil {
		return nil, err
	}
	st, err := s.deriver.Derive(files, s.archive.SourceDir(fullName))
	if err != nil {
		return nil, fmt.Errorf("deriving statistics of %s: %w", fullName, err)
	}

	rec.ApplyStats(st)
	if err := s.store.UpdateByName(rec); err != nil {
		return nil, err
	}
	s.logger.Debug("source refreshed", "source", fullName, "observations", rec.ObservationCount)
	return rec, nil
}

// GetSource returns the named source, or nil if it is not in the catalog.
func (s *CatalogService) GetSource(fullName string) (*SourceRecord, error) {
	return s.store.GetByFullName(fullName)
}

// ListSources returns every catalog record in insertion order.
func (s *CatalogService) ListSources() ([]*SourceRecord, error) {
	return s.store.GetAll()
}

// DeleteSource removes a source from the catalog. With purge, its archive
// folder is deleted too.
func (s *CatalogService) DeleteSource(fullName string, purge bool) error {
	if err := s.store.DeleteByName(fullName); err != nil {
		return err
	}
	if purge {
		if err := s.archive.RemoveSource(fullName); err != nil {
			return err
		}
	}
	s.logger.Info("source deleted", "source", fullName, "purged", purge)
	return nil
}
