package validation

// Severity classifies a finding for downstream handling. Blocking findings
// reject the record; advisory findings are signals for human review.
type Severity string

const (
	SeverityBlocking Severity = "bloqueante"
	SeverityAdvisory Severity = "advertencia"
	SeverityInfo     Severity = "informativo"
)

// Category tags used in the Field position for findings that are not tied
// to a named record field.
const (
	FieldFile       = "archivo"
	FieldStructure  = "estructura"
	FieldFormat     = "formato"
	FieldValidation = "validación"
	FieldFileType   = "file_type"
	FieldRecord     = "registro"
)

// Finding is one reported validation outcome, the engine's sole output
// unit. Line 0 marks file-level findings. Findings are immutable once
// created; the engine only ever appends.
type Finding struct {
	Line     int      `json:"line"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

const (
	successMessage = "✅ Archivo RIPS validado correctamente"
	cappedMessage  = "⚠️ Se encontraron más de 100 errores. Validación detenida."
)

// run accumulates findings for one file, enforcing the output cap. The cap
// is a readability bound, not a correctness rule: once maxFindings real
// findings exist, one final stop marker is appended and everything after
// is discarded.
type run struct {
	findings    []Finding
	maxFindings int
	modes       Modes
	capped      bool
}

func newRun(maxFindings int, modes Modes) *run {
	return &run{maxFindings: maxFindings, modes: modes}
}

// add appends findings until the cap is hit. It returns false once the run
// is capped, so callers can stop producing more.
func (r *run) add(findings ...Finding) bool {
	for _, f := range findings {
		if r.capped {
			return false
		}
		if len(r.findings) >= r.maxFindings {
			r.capped = true
			r.findings = append(r.findings, Finding{
				Line:     f.Line,
				Field:    FieldValidation,
				Message:  cappedMessage,
				Severity: SeverityInfo,
			})
			return false
		}
		r.findings = append(r.findings, f)
	}
	return true
}

func (r *run) isCapped() bool {
	return r.capped
}

// finish returns the accumulated findings, appending the single success
// marker when the run produced none. Callers can then distinguish
// "validated clean" from "never ran".
func (r *run) finish() []Finding {
	if len(r.findings) == 0 {
		return []Finding{{
			Line:     0,
			Field:    FieldValidation,
			Message:  successMessage,
			Severity: SeverityInfo,
		}}
	}
	return r.findings
}
