package catalog

import (
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

// CUPSEntry carries the catalog metadata attached to one procedure code.
// Nil pointer fields mean "not constrained".
type CUPSEntry struct {
	ValidFrom   *time.Time
	ValidTo     *time.Time
	ServiceType string
	MinAge      *int
	MaxAge      *int
	Tariff      float64
	Purpose     string
}

// Snapshot is an immutable view of all loaded catalogs. A validation run
// holds one snapshot for its whole duration, so hot reloads never tear a
// run's view of the catalogs.
type Snapshot struct {
	cie10          map[string]struct{}
	cie11          map[string]struct{}
	cups           map[string]CUPSEntry
	correspondence map[string][]string
}

// Store holds the current catalog snapshot. Loads replace whole catalogs
// atomically; they never merge with previous contents.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a store with all catalogs empty. With empty catalogs the
// snapshot predicates fall back to format-only checks.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(emptySnapshot())
	return s
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		cie10:          map[string]struct{}{},
		cie11:          map[string]struct{}{},
		cups:           map[string]CUPSEntry{},
		correspondence: map[string][]string{},
	}
}

// Snapshot returns the current immutable catalog view.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

func (s *Store) swap(mutate func(next *Snapshot)) {
	prev := s.current.Load()
	next := &Snapshot{
		cie10:          prev.cie10,
		cie11:          prev.cie11,
		cups:           prev.cups,
		correspondence: prev.correspondence,
	}
	mutate(next)
	s.current.Store(next)
}

// LoadCIE10 replaces the legacy diagnosis catalog.
func (s *Store) LoadCIE10(codes map[string]struct{}) {
	normalized := make(map[string]struct{}, len(codes))
	for code := range codes {
		normalized[strings.ToUpper(code)] = struct{}{}
	}
	s.swap(func(next *Snapshot) { next.cie10 = normalized })
}

// LoadCIE11 replaces the current diagnosis catalog.
func (s *Store) LoadCIE11(codes map[string]struct{}) {
	normalized := make(map[string]struct{}, len(codes))
	for code := range codes {
		normalized[strings.ToUpper(code)] = struct{}{}
	}
	s.swap(func(next *Snapshot) { next.cie11 = normalized })
}

// LoadCUPS replaces the procedure catalog.
func (s *Store) LoadCUPS(entries map[string]CUPSEntry) {
	copied := make(map[string]CUPSEntry, len(entries))
	for code, entry := range entries {
		copied[code] = entry
	}
	s.swap(func(next *Snapshot) { next.cups = copied })
}

// LoadCorrespondence replaces the CUPS -> allowed CIE mapping.
func (s *Store) LoadCorrespondence(mapping map[string][]string) {
	copied := make(map[string][]string, len(mapping))
	for cups, cies := range mapping {
		copied[cups] = append([]string(nil), cies...)
	}
	s.swap(func(next *Snapshot) { next.correspondence = copied })
}

// Format fallbacks used when a catalog is empty. CIE-10 is letter-led,
// CIE-11 digit-led; a code matching the CIE-10 shape is never CIE-11.
var (
	cie10Pattern = regexp.MustCompile(`^[A-Z]\d{2,3}(\.\d{1,2})?$`)
	cie10Shape   = regexp.MustCompile(`^[A-Z]\d{2,3}`)
	cie11Pattern = regexp.MustCompile(`^[0-9][A-Z0-9]+(\.[0-9A-Z]+)?$`)
	cupsPattern  = regexp.MustCompile(`^\d{3,7}$`)
)

// IsValidCIE10 reports whether a code is a valid legacy diagnosis code,
// by catalog membership when loaded, by shape otherwise.
func (sn *Snapshot) IsValidCIE10(code string) bool {
	if code == "" {
		return false
	}
	upper := strings.ToUpper(code)
	if len(sn.cie10) > 0 {
		_, ok := sn.cie10[upper]
		return ok
	}
	return cie10Pattern.MatchString(upper)
}

// IsValidCIE11 reports whether a code is a valid current diagnosis code.
func (sn *Snapshot) IsValidCIE11(code string) bool {
	if code == "" {
		return false
	}
	upper := strings.ToUpper(code)
	if len(sn.cie11) > 0 {
		_, ok := sn.cie11[upper]
		return ok
	}
	if cie10Shape.MatchString(upper) {
		return false
	}
	return cie11Pattern.MatchString(upper)
}

// IsValidCUPS reports whether a procedure code is valid.
func (sn *Snapshot) IsValidCUPS(code string) bool {
	if code == "" {
		return false
	}
	if len(sn.cups) > 0 {
		_, ok := sn.cups[code]
		return ok
	}
	return cupsPattern.MatchString(code)
}

// CUPS returns the catalog entry for a procedure code, if loaded.
func (sn *Snapshot) CUPS(code string) (CUPSEntry, bool) {
	entry, ok := sn.cups[code]
	return entry, ok
}

// AllowedDiagnoses returns the CIE codes associated with a procedure code
// in the correspondence map, if any.
func (sn *Snapshot) AllowedDiagnoses(cups string) ([]string, bool) {
	cies, ok := sn.correspondence[cups]
	return cies, ok
}

// Sizes reports the loaded entry counts per catalog, for metrics.
func (sn *Snapshot) Sizes() (cie10, cie11, cups, correspondence int) {
	return len(sn.cie10), len(sn.cie11), len(sn.cups), len(sn.correspondence)
}
