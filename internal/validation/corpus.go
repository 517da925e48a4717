package validation

import (
	"fmt"
	"sort"
	"time"
)

// CorpusRecord is the semantic projection of one parsed record that the
// cross-record rules operate on. Empty fields simply exclude the record
// from the rules that need them.
type CorpusRecord struct {
	Line        int
	Provider    string
	DocType     string
	DocNumber   string
	Sex         string
	BirthDate   string
	ServiceDate string
	Procedure   string
	Diagnosis   string
}

func (r CorpusRecord) patientKey() string {
	return r.DocType + "_" + r.DocNumber
}

// CorpusRules holds the tunable thresholds for the heuristic cross-record
// rules. These are deliberate placeholders for a statistical detector:
// named constants to tune, not learned values.
type CorpusRules struct {
	DuplicateWindowDays   int
	DailyVolumeThreshold  int
	VariabilityFloor      float64
	VariabilityMinRecords int
}

// DefaultCorpusRules returns the thresholds the original rule set ships
// with.
func DefaultCorpusRules() CorpusRules {
	return CorpusRules{
		DuplicateWindowDays:   7,
		DailyVolumeThreshold:  50,
		VariabilityFloor:      0.1,
		VariabilityMinRecords: 10,
	}
}

// Evaluate runs all corpus rules over the records of one file. Output
// order is deterministic: findings are grouped by rule, and groups are
// visited in sorted key order.
func (c CorpusRules) Evaluate(records []CorpusRecord) []Finding {
	var findings []Finding
	findings = append(findings, c.detectDuplicateProcedures(records)...)
	findings = append(findings, c.detectAtypicalVolumes(records)...)
	findings = append(findings, c.detectLowBillingVariability(records)...)
	return findings
}

type datedOccurrence struct {
	date time.Time
	line int
}

// detectDuplicateProcedures flags the same procedure billed for the same
// patient within the duplicate window. The finding is attributed to the
// later occurrence. Records with unparseable dates are skipped here; the
// date format findings are emitted by the field rules.
func (c CorpusRules) detectDuplicateProcedures(records []CorpusRecord) []Finding {
	type groupKey struct {
		patient   string
		procedure string
	}
	groups := map[groupKey][]datedOccurrence{}

	for _, r := range records {
		if r.DocType == "" && r.DocNumber == "" {
			continue
		}
		if r.Procedure == "" || r.ServiceDate == "" {
			continue
		}
		date, ok := parseFlexibleDate(r.ServiceDate)
		if !ok {
			continue
		}
		key := groupKey{patient: r.patientKey(), procedure: r.Procedure}
		groups[key] = append(groups[key], datedOccurrence{date: date, line: r.Line})
	}

	keys := make([]groupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].patient != keys[j].patient {
			return keys[i].patient < keys[j].patient
		}
		return keys[i].procedure < keys[j].procedure
	})

	var findings []Finding
	for _, key := range keys {
		occurrences := groups[key]
		sort.Slice(occurrences, func(i, j int) bool {
			if !occurrences[i].date.Equal(occurrences[j].date) {
				return occurrences[i].date.Before(occurrences[j].date)
			}
			return occurrences[i].line < occurrences[j].line
		})
		for i := 1; i < len(occurrences); i++ {
			gap := int(occurrences[i].date.Sub(occurrences[i-1].date).Hours() / 24)
			if gap <= c.DuplicateWindowDays {
				findings = append(findings, Finding{
					Line:     occurrences[i].line,
					Field:    "CODIGO_CUPS",
					Message:  fmt.Sprintf("Procedimiento duplicado (%s) en %d días para el mismo usuario", key.procedure, gap),
					Severity: SeverityAdvisory,
				})
			}
		}
	}
	return findings
}

// detectAtypicalVolumes flags providers whose service count on a single
// calendar date exceeds the threshold. One finding per (provider, date)
// pair, attributed to the first record of that pair.
func (c CorpusRules) detectAtypicalVolumes(records []CorpusRecord) []Finding {
	type pairKey struct {
		provider string
		date     string
	}
	counts := map[pairKey]int{}
	firstLine := map[pairKey]int{}
	dates := map[pairKey]time.Time{}

	for _, r := range records {
		if r.Provider == "" || r.ServiceDate == "" {
			continue
		}
		date, ok := parseFlexibleDate(r.ServiceDate)
		if !ok {
			continue
		}
		key := pairKey{provider: r.Provider, date: date.Format("2006-01-02")}
		counts[key]++
		if _, seen := firstLine[key]; !seen {
			firstLine[key] = r.Line
			dates[key] = date
		}
	}

	keys := make([]pairKey, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].provider != keys[j].provider {
			return keys[i].provider < keys[j].provider
		}
		return keys[i].date < keys[j].date
	})

	var findings []Finding
	for _, key := range keys {
		if counts[key] > c.DailyVolumeThreshold {
			findings = append(findings, Finding{
				Line:     firstLine[key],
				Field:    "CODIGO_PRESTADOR",
				Message:  fmt.Sprintf("Volumen atípico: %d servicios en un día (%s) para prestador %s", counts[key], dates[key].Format("2006-01-02"), key.provider),
				Severity: SeverityAdvisory,
			})
		}
	}
	return findings
}

// detectLowBillingVariability flags providers with enough records whose
// distinct-procedure ratio falls under the floor. A proxy for repetitive
// billing, not a fraud determination.
func (c CorpusRules) detectLowBillingVariability(records []CorpusRecord) []Finding {
	type providerStats struct {
		total     int
		distinct  map[string]struct{}
		firstLine int
	}
	stats := map[string]*providerStats{}

	for _, r := range records {
		if r.Provider == "" || r.Procedure == "" {
			continue
		}
		s, ok := stats[r.Provider]
		if !ok {
			s = &providerStats{distinct: map[string]struct{}{}, firstLine: r.Line}
			stats[r.Provider] = s
		}
		s.total++
		s.distinct[r.Procedure] = struct{}{}
	}

	providers := make([]string, 0, len(stats))
	for provider := range stats {
		providers = append(providers, provider)
	}
	sort.Strings(providers)

	var findings []Finding
	for _, provider := range providers {
		s := stats[provider]
		if s.total < c.VariabilityMinRecords {
			continue
		}
		ratio := float64(len(s.distinct)) / float64(s.total)
		if ratio < c.VariabilityFloor {
			findings = append(findings, Finding{
				Line:     s.firstLine,
				Field:    "CODIGO_PRESTADOR",
				Message:  fmt.Sprintf("Patrón sospechoso: Prestador %s con baja variabilidad en procedimientos (%.2f%%)", provider, ratio*100),
				Severity: SeverityAdvisory,
			})
		}
	}
	return findings
}
