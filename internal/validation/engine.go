package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/corerips-wq/rips-engine/internal/catalog"
	"github.com/corerips-wq/rips-engine/internal/parser"
	"github.com/corerips-wq/rips-engine/internal/schema"
)

// Modes selects which validator families a run executes. Structural and
// parse findings are emitted regardless: neither family can assess a file
// it cannot read.
type Modes struct {
	Deterministic bool
	Patterns      bool
}

// FullModes runs both validator families.
func FullModes() Modes {
	return Modes{Deterministic: true, Patterns: true}
}

// ParseModes maps request mode names onto Modes. Accepted names are
// "deterministic" and "ai" (the historical name for the pattern family,
// "patterns" is taken as an alias).
func ParseModes(names []string) (Modes, error) {
	var modes Modes
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "deterministic":
			modes.Deterministic = true
		case "ai", "patterns":
			modes.Patterns = true
		default:
			return Modes{}, fmt.Errorf("tipo de validación desconocido: %q", name)
		}
	}
	if modes == (Modes{}) {
		return Modes{}, fmt.Errorf("se requiere al menos un tipo de validación")
	}
	return modes, nil
}

// Options carries the tunable parameters of one engine instance.
type Options struct {
	MaxFindings    int
	CIE11Start     time.Time
	CoexistenceEnd time.Time
	Corpus         CorpusRules
}

// DefaultOptions returns the engine parameters matching the current
// normative calendar: CIE-11 reporting opens 2024-08-14 and the
// coexistence window with CIE-10 closes 2027-08-14.
func DefaultOptions() Options {
	return Options{
		MaxFindings:    100,
		CIE11Start:     time.Date(2024, 8, 14, 0, 0, 0, 0, time.UTC),
		CoexistenceEnd: time.Date(2027, 8, 14, 0, 0, 0, 0, time.UTC),
		Corpus:         DefaultCorpusRules(),
	}
}

// Engine validates RIPS files. It is safe for concurrent use: every
// validation run takes one immutable catalog snapshot up front and keeps
// no state between runs.
type Engine struct {
	catalogs *catalog.Store
	logger   *zap.Logger
	opts     Options
	now      func() time.Time
}

// NewEngine builds a validation engine over a catalog store.
func NewEngine(catalogs *catalog.Store, logger *zap.Logger, opts Options) *Engine {
	if opts.MaxFindings <= 0 {
		opts.MaxFindings = DefaultOptions().MaxFindings
	}
	if opts.CIE11Start.IsZero() {
		opts.CIE11Start = DefaultOptions().CIE11Start
	}
	if opts.CoexistenceEnd.IsZero() {
		opts.CoexistenceEnd = DefaultOptions().CoexistenceEnd
	}
	if opts.Corpus == (CorpusRules{}) {
		opts.Corpus = DefaultCorpusRules()
	}
	return &Engine{
		catalogs: catalogs,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// ValidateFile validates one file of the given record type and returns
// the ordered finding list. Malformed input of every expected kind comes
// back as findings; an error return is reserved for environment failures
// such as unreadable storage.
func (e *Engine) ValidateFile(path, recordType string) ([]Finding, error) {
	return e.ValidateFileModes(path, recordType, FullModes())
}

// ValidateFileModes is ValidateFile restricted to the selected validator
// families.
func (e *Engine) ValidateFileModes(path, recordType string, modes Modes) ([]Finding, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	start := e.now()
	run := newRun(e.opts.MaxFindings, modes)
	rules := NewRecordRules(e.catalogs.Snapshot(), e.opts.CIE11Start, e.opts.CoexistenceEnd, start)

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "txt", "csv":
		e.validateDelimited(run, rules, path, recordType, "")
	case "json":
		records, issues := parser.ParseJSON(path)
		e.addIssues(run, issues)
		e.validateStructured(run, rules, records)
	case "xml":
		records, issues := parser.ParseXML(path)
		e.addIssues(run, issues)
		if len(records) == 0 && len(issues) == 0 {
			run.add(Finding{
				Line:     0,
				Field:    FieldStructure,
				Message:  "El XML no contiene elementos de registro reconocibles.",
				Severity: SeverityBlocking,
			})
		}
		e.validateStructured(run, rules, records)
	case "zip":
		e.validateArchive(run, rules, path, recordType)
	default:
		run.add(Finding{
			Line:     0,
			Field:    FieldFile,
			Message:  fmt.Sprintf("Formato no soportado (.%s). Formatos válidos: .txt, .json, .xml, .zip", ext),
			Severity: SeverityBlocking,
		})
	}

	findings := run.finish()
	e.logger.Info("archivo validado",
		zap.String("path", filepath.Base(path)),
		zap.String("record_type", recordType),
		zap.Int("findings", len(findings)),
		zap.Duration("duration", e.now().Sub(start)))
	return findings, nil
}

func (e *Engine) addIssues(run *run, issues []parser.Issue) {
	for _, issue := range issues {
		if !run.add(Finding{
			Line:     issue.Line,
			Field:    issue.Field,
			Message:  issue.Message,
			Severity: SeverityBlocking,
		}) {
			return
		}
	}
}

// validateDelimited runs the full layered pass over a pipe-delimited
// file: per-line field rules, catalog rules, then the cross-record rules
// over the whole file. fieldPrefix carries the archive member name when
// the file came out of a zip bundle.
func (e *Engine) validateDelimited(run *run, rules *RecordRules, path, recordType, fieldPrefix string) {
	prefix := func(field string) string {
		if fieldPrefix == "" {
			return field
		}
		return fieldPrefix + ": " + field
	}

	recordSchema, ok := schema.ForType(recordType)
	if !ok {
		run.add(Finding{
			Line:     0,
			Field:    prefix(FieldFileType),
			Message:  fmt.Sprintf("Tipo de registro desconocido: '%s'. Tipos válidos: %s", recordType, strings.Join(schema.Types(), ", ")),
			Severity: SeverityBlocking,
		})
		return
	}

	lines, issues := parser.ReadDelimited(path)
	if len(issues) > 0 {
		for _, issue := range issues {
			if !run.add(Finding{
				Line:     issue.Line,
				Field:    prefix(issue.Field),
				Message:  issue.Message,
				Severity: SeverityBlocking,
			}) {
				return
			}
		}
		return
	}

	var corpus []CorpusRecord
	for _, line := range lines {
		if run.isCapped() {
			return
		}
		if !line.HasDelimiter {
			run.add(Finding{
				Line:     line.Number,
				Field:    prefix(FieldFormat),
				Message:  "Línea sin separador de campos '|'.",
				Severity: SeverityBlocking,
			})
			continue
		}
		if len(line.Fields) < len(recordSchema.Fields) {
			run.add(Finding{
				Line:     line.Number,
				Field:    prefix(FieldStructure),
				Message:  fmt.Sprintf("Número insuficiente de campos. Mínimo esperado: %d, Encontrado: %d", len(recordSchema.Fields), len(line.Fields)),
				Severity: SeverityBlocking,
			})
			continue
		}

		view := viewFromDelimited(recordType, line.Fields)

		if run.modes.Deterministic {
			for i, rule := range recordSchema.Fields {
				findings := EvaluateField(line.Fields[i], rule, line.Number, rules.now)
				for j := range findings {
					findings[j].Field = prefix(findings[j].Field)
				}
				if !run.add(findings...) {
					return
				}
			}

			findings := e.evaluateRecord(rules, recordType, view, line.Number)
			for j := range findings {
				findings[j].Field = prefix(findings[j].Field)
			}
			if !run.add(findings...) {
				return
			}
		}

		corpus = append(corpus, view.corpusRecord(line.Number))
	}

	if !run.modes.Patterns {
		return
	}
	findings := e.opts.Corpus.Evaluate(corpus)
	for j := range findings {
		findings[j].Field = prefix(findings[j].Field)
	}
	run.add(findings...)
}

// validateArchive extracts the text members of a zip bundle and validates
// each one as a delimited file, prefixing finding fields with the member
// name so provenance survives aggregation.
func (e *Engine) validateArchive(run *run, rules *RecordRules, path, recordType string) {
	dir, members, issues := parser.ExtractZipText(path)
	if dir != "" {
		defer os.RemoveAll(dir)
	}
	e.addIssues(run, issues)
	for _, member := range members {
		if run.isCapped() {
			return
		}
		e.validateDelimited(run, rules, member, recordType, filepath.Base(member))
	}
}

// eventKindByServiceGroup maps the nested-array names of the official
// JSON layout onto the event kinds with mandatory procedure lists.
var eventKindByServiceGroup = map[string]string{
	"urgencias":         "urgencia",
	"hospitalizacion":   "hospitalizacion",
	"hospitalizaciones": "hospitalizacion",
}

// validateStructured applies the catalog and cross-field rules to records
// parsed out of JSON or XML, then the file-wide rules over all of them:
// mandatory procedures per event kind and the corpus rules.
func (e *Engine) validateStructured(run *run, rules *RecordRules, records []parser.Record) {
	var corpus []CorpusRecord
	eventCUPS := map[string][]string{}
	eventLine := map[string]int{}
	for _, record := range records {
		if run.isCapped() {
			return
		}
		if len(record.Fields) == 0 {
			if !run.add(Finding{
				Line:     record.Line,
				Field:    FieldRecord,
				Message:  fmt.Sprintf("Registro %d no contiene campos válidos.", record.Line),
				Severity: SeverityBlocking,
			}) {
				return
			}
			continue
		}
		view := viewFromFields(record.Fields)
		if run.modes.Deterministic {
			if !run.add(e.evaluateRecord(rules, "", view, record.Line)...) {
				return
			}
		}
		if kind, ok := eventKindByServiceGroup[record.Fields["grupoServicio"]]; ok {
			if _, seen := eventLine[kind]; !seen {
				eventLine[kind] = record.Line
			}
			if view.cups != "" {
				eventCUPS[kind] = append(eventCUPS[kind], view.cups)
			}
		}
		corpus = append(corpus, view.corpusRecord(record.Line))
	}
	if run.modes.Deterministic {
		kinds := make([]string, 0, len(eventLine))
		for kind := range eventLine {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			if !run.add(rules.MandatoryProcedures(eventCUPS[kind], kind, eventLine[kind])...) {
				return
			}
		}
	}
	if run.modes.Patterns {
		run.add(e.opts.Corpus.Evaluate(corpus)...)
	}
}

// evaluateRecord applies every catalog-aware rule whose inputs the record
// actually carries. recordType narrows type-specific rules on delimited
// input; structured records pass "" and are narrowed by field presence.
func (e *Engine) evaluateRecord(rules *RecordRules, recordType string, view recordView, line int) []Finding {
	var findings []Finding

	serviceDate, hasServiceDate := parseFlexibleDate(view.serviceDate)
	if !hasServiceDate {
		serviceDate = rules.now
	}
	age := -1
	if birth, ok := parseFlexibleDate(view.birthDate); ok {
		age = ageInYears(birth, rules.now)
	}

	if view.diagnosis != "" {
		findings = append(findings, rules.DiagnosisTransition(view.diagnosis, serviceDate, line)...)
		if view.sex != "" {
			findings = append(findings, rules.DiagnosisSex(view.diagnosis, view.sex, line)...)
		}
		if age >= 0 {
			findings = append(findings, rules.AgeDiagnosis(age, view.diagnosis, line)...)
		}
	}

	if view.cups != "" {
		findings = append(findings, rules.ProcedureExistenceAndVigency(view.cups, serviceDate, line)...)
		findings = append(findings, rules.ProcedureServiceType(view.cups, view.serviceType, line)...)
		findings = append(findings, rules.ProcedureTariff(view.cups, line)...)
		findings = append(findings, rules.ProcedurePurpose(view.cups, line)...)
		if age >= 0 {
			findings = append(findings, rules.ProcedureAgeGroup(view.cups, age, line)...)
		}
		if view.sex != "" {
			findings = append(findings, rules.ProcedureSex(view.cups, view.sex, line)...)
		}
		if view.diagnosis != "" {
			findings = append(findings, rules.DiagnosisProcedure(view.diagnosis, view.cups, line)...)
			findings = append(findings, rules.ProcedureDiagnosisAssociation(view.cups, view.diagnosis, line)...)
		}
	}

	if recordType == "US" && view.docType != "" {
		findings = append(findings, rules.DocumentType(view.docType, schema.DocumentTypes, line)...)
	}
	if recordType == "AM" && view.product != "" {
		findings = append(findings, rules.ProductCode(view.product, line)...)
	}
	return findings
}
