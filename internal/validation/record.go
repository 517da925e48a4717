package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/corerips-wq/rips-engine/internal/catalog"
)

// RecordRules applies catalog-aware and cross-field rules to one parsed
// record. It holds one catalog snapshot for the whole run, so hot catalog
// reloads never change results mid-file. Every rule is independent and
// tagged with its stable identifier in the finding message.
type RecordRules struct {
	snapshot       *catalog.Snapshot
	cie11Start     time.Time
	coexistenceEnd time.Time
	now            time.Time
}

// NewRecordRules builds a record evaluator bound to a catalog snapshot and
// the configured diagnosis coding transition dates.
func NewRecordRules(snapshot *catalog.Snapshot, cie11Start, coexistenceEnd, now time.Time) *RecordRules {
	return &RecordRules{
		snapshot:       snapshot,
		cie11Start:     cie11Start,
		coexistenceEnd: coexistenceEnd,
		now:            now,
	}
}

// ageInYears computes whole years as truncating division over 365-day
// years, matching the upstream reporting pipeline. This is deliberately
// not calendar-exact: switching to calendar age would move which advisory
// findings fire near the age thresholds.
func ageInYears(birth, today time.Time) int {
	days := int(today.Sub(birth).Hours() / 24)
	return days / 365
}

// DiagnosisTransition validates a diagnosis code against the catalogs and
// the coding system transition windows. Before the transition start only
// legacy codes are accepted; during coexistence either system is; after
// the coexistence end only current-system codes are.
func (r *RecordRules) DiagnosisTransition(code string, serviceDate time.Time, line int) []Finding {
	var findings []Finding

	if !r.snapshot.IsValidCIE10(code) && !r.snapshot.IsValidCIE11(code) {
		return []Finding{{
			Line:     line,
			Field:    "DIAGNOSTICO_PRINCIPAL_CIE",
			Message:  fmt.Sprintf("[AC-012] Diagnóstico principal '%s' no existe en catálogos CIE-10/CIE-11.", code),
			Severity: SeverityBlocking,
		}}
	}

	if serviceDate.Before(r.cie11Start) && !r.snapshot.IsValidCIE10(code) {
		findings = append(findings, Finding{
			Line:     line,
			Field:    "DIAGNOSTICO_PRINCIPAL_CIE",
			Message:  fmt.Sprintf("[CIE11_001] Código CIE '%s' no válido. Antes del %s solo se permiten códigos CIE-10.", code, r.cie11Start.Format("02/01/2006")),
			Severity: SeverityBlocking,
		})
	}
	if serviceDate.After(r.coexistenceEnd) && !r.snapshot.IsValidCIE11(code) {
		findings = append(findings, Finding{
			Line:     line,
			Field:    "DIAGNOSTICO_PRINCIPAL_CIE",
			Message:  fmt.Sprintf("[CIE11_002] Después del %s solo se permiten códigos CIE-11. Código '%s' no es CIE-11 válido.", r.coexistenceEnd.Format("02/01/2006"), code),
			Severity: SeverityBlocking,
		})
	}

	return findings
}

// ProcedureExistenceAndVigency validates a procedure code against the
// catalog and, when the entry carries a validity window, against the
// service date.
func (r *RecordRules) ProcedureExistenceAndVigency(code string, serviceDate time.Time, line int) []Finding {
	if !r.snapshot.IsValidCUPS(code) {
		return []Finding{{
			Line:     line,
			Field:    "CODIGO_CUPS",
			Message:  fmt.Sprintf("[AP-001] Código CUPS '%s' no existe en el catálogo oficial.", code),
			Severity: SeverityBlocking,
		}}
	}

	var findings []Finding
	entry, ok := r.snapshot.CUPS(code)
	if !ok {
		return nil
	}
	if entry.ValidFrom != nil && serviceDate.Before(*entry.ValidFrom) {
		findings = append(findings, Finding{
			Line:     line,
			Field:    "CODIGO_CUPS",
			Message:  fmt.Sprintf("[R2641-D002] CUPS '%s' aún no estaba vigente en %s. Vigencia desde %s.", code, serviceDate.Format("2006-01-02"), entry.ValidFrom.Format("2006-01-02")),
			Severity: SeverityBlocking,
		})
	}
	if entry.ValidTo != nil && serviceDate.After(*entry.ValidTo) {
		findings = append(findings, Finding{
			Line:     line,
			Field:    "CODIGO_CUPS",
			Message:  fmt.Sprintf("[R2641-D002] CUPS '%s' ya no está vigente en %s. Vigencia hasta %s.", code, serviceDate.Format("2006-01-02"), entry.ValidTo.Format("2006-01-02")),
			Severity: SeverityBlocking,
		})
	}
	return findings
}

// ProcedureServiceType checks that a procedure is reported under the
// service type its catalog entry declares.
func (r *RecordRules) ProcedureServiceType(code, serviceType string, line int) []Finding {
	entry, ok := r.snapshot.CUPS(code)
	if !ok || entry.ServiceType == "" || serviceType == "" || serviceType == entry.ServiceType {
		return nil
	}
	return []Finding{{
		Line:     line,
		Field:    "CODIGO_CUPS",
		Message:  fmt.Sprintf("[R2641-D003] CUPS '%s' no corresponde al tipo de servicio '%s'. Tipo esperado: '%s'.", code, serviceType, entry.ServiceType),
		Severity: SeverityBlocking,
	}}
}

// ProcedureAgeGroup checks the catalog's age bounds for a procedure.
func (r *RecordRules) ProcedureAgeGroup(code string, age int, line int) []Finding {
	entry, ok := r.snapshot.CUPS(code)
	if !ok {
		return nil
	}
	var findings []Finding
	if entry.MinAge != nil && age < *entry.MinAge {
		findings = append(findings, Finding{
			Line:     line,
			Field:    "CODIGO_CUPS",
			Message:  fmt.Sprintf("[R2641-D005] CUPS '%s' requiere edad mínima de %d años. Edad del paciente: %d.", code, *entry.MinAge, age),
			Severity: SeverityBlocking,
		})
	}
	if entry.MaxAge != nil && age > *entry.MaxAge {
		findings = append(findings, Finding{
			Line:     line,
			Field:    "CODIGO_CUPS",
			Message:  fmt.Sprintf("[R2641-D005] CUPS '%s' requiere edad máxima de %d años. Edad del paciente: %d.", code, *entry.MaxAge, age),
			Severity: SeverityBlocking,
		})
	}
	return findings
}

// ProcedureTariff reports an advisory when the catalog entry carries no
// tariff. Informational procedure codes legitimately lack one.
func (r *RecordRules) ProcedureTariff(code string, line int) []Finding {
	entry, ok := r.snapshot.CUPS(code)
	if !ok || entry.Tariff != 0 {
		return nil
	}
	return []Finding{{
		Line:     line,
		Field:    "CODIGO_CUPS",
		Message:  fmt.Sprintf("[R2641-D004] ADVERTENCIA: CUPS '%s' no tiene valor tarifario definido.", code),
		Severity: SeverityAdvisory,
	}}
}

// ProcedurePurpose checks that the catalog entry declares a purpose.
func (r *RecordRules) ProcedurePurpose(code string, line int) []Finding {
	entry, ok := r.snapshot.CUPS(code)
	if !ok || entry.Purpose != "" {
		return nil
	}
	return []Finding{{
		Line:     line,
		Field:    "CODIGO_CUPS",
		Message:  fmt.Sprintf("[R2641-D009] CUPS '%s' no tiene tipo de finalidad asignado.", code),
		Severity: SeverityBlocking,
	}}
}

// MandatoryProcedures reports an advisory when the procedures required for
// an event kind are missing from the file.
func (r *RecordRules) MandatoryProcedures(present []string, eventKind string, line int) []Finding {
	required, ok := mandatoryCUPSByEvent[eventKind]
	if !ok {
		return nil
	}
	var missing []string
	for _, code := range required {
		if !contains(present, code) {
			missing = append(missing, code)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return []Finding{{
		Line:     line,
		Field:    "CODIGO_CUPS",
		Message:  fmt.Sprintf("[R2641-D010] ADVERTENCIA: Faltan CUPS obligatorios para tipo de evento '%s': %s.", eventKind, strings.Join(missing, ", ")),
		Severity: SeverityAdvisory,
	}}
}

// ProcedureDiagnosisAssociation checks the loaded correspondence map:
// when the procedure has an associated diagnosis list, the reported
// diagnosis must be on it. Codes invalid on their own are left to the
// existence rules.
func (r *RecordRules) ProcedureDiagnosisAssociation(cups, cie string, line int) []Finding {
	if !r.snapshot.IsValidCUPS(cups) {
		return nil
	}
	if !r.snapshot.IsValidCIE10(cie) && !r.snapshot.IsValidCIE11(cie) {
		return nil
	}
	allowed, ok := r.snapshot.AllowedDiagnoses(cups)
	if !ok {
		return nil
	}
	if contains(allowed, strings.ToUpper(cie)) {
		return nil
	}
	return []Finding{{
		Line:     line,
		Field:    "CODIGO_CUPS",
		Message:  fmt.Sprintf("[R2641-D007] CUPS '%s' no está asociado con el diagnóstico CIE '%s'.", cups, cie),
		Severity: SeverityBlocking,
	}}
}

// DiagnosisSex checks both incompatibility directions independently:
// obstetric diagnoses on male patients and male-specific diagnoses on
// female patients.
func (r *RecordRules) DiagnosisSex(cie, sex string, line int) []Finding {
	if cie == "" || sex == "" {
		return nil
	}
	var findings []Finding
	sex = strings.ToUpper(sex)

	if sex == "M" && hasAnyPrefix(cie, pregnancyDiagnosisPrefixes) {
		findings = append(findings, Finding{
			Line:     line,
			Field:    "DIAGNOSTICO_PRINCIPAL_CIE",
			Message:  fmt.Sprintf("[CIE11_004] Diagnóstico obstétrico '%s' no es compatible con sexo masculino.", cie),
			Severity: SeverityBlocking,
		})
	}
	if sex == "F" && hasAnyPrefix(cie, maleDiagnosisPrefixes) {
		findings = append(findings, Finding{
			Line:     line,
			Field:    "DIAGNOSTICO_PRINCIPAL_CIE",
			Message:  fmt.Sprintf("[CIE11_004] Diagnóstico '%s' es específico del sexo masculino.", cie),
			Severity: SeverityBlocking,
		})
	}
	return findings
}

// ProcedureSex checks sex-restricted procedure families in both
// directions.
func (r *RecordRules) ProcedureSex(cups, sex string, line int) []Finding {
	if cups == "" || sex == "" {
		return nil
	}
	var findings []Finding
	sex = strings.ToUpper(sex)

	if hasAnyPrefix(cups, obstetricProcedurePrefixes) && sex != "F" {
		findings = append(findings, Finding{
			Line:     line,
			Field:    "CODIGO_CUPS",
			Message:  fmt.Sprintf("[R2641-D006] CUPS '%s' (procedimiento ginecológico/obstétrico) solo aplica a sexo femenino.", cups),
			Severity: SeverityBlocking,
		})
	}
	if hasAnyPrefix(cups, maleProcedurePrefixes) && sex != "M" {
		findings = append(findings, Finding{
			Line:     line,
			Field:    "CODIGO_CUPS",
			Message:  fmt.Sprintf("[R2641-D006] CUPS '%s' (procedimiento urológico masculino) solo aplica a sexo masculino.", cups),
			Severity: SeverityBlocking,
		})
	}
	return findings
}

// DiagnosisProcedure checks clinical correspondence between the diagnosis
// and the procedure. The obstetric direction is a hard failure; the
// cardiovascular direction is advisory only.
func (r *RecordRules) DiagnosisProcedure(cie, cups string, line int) []Finding {
	if cie == "" || cups == "" {
		return nil
	}
	var findings []Finding
	upperCIE := strings.ToUpper(cie)

	if hasAnyPrefix(cups, obstetricProcedurePrefixes) && !strings.HasPrefix(upperCIE, "O") {
		findings = append(findings, Finding{
			Line:     line,
			Field:    "DIAGNOSTICO_PRINCIPAL_CIE",
			Message:  fmt.Sprintf("[CIE11_005] Procedimiento obstétrico '%s' requiere diagnóstico obstétrico (capítulo O), encontrado '%s'.", cups, cie),
			Severity: SeverityBlocking,
		})
	}
	if hasAnyPrefix(cups, cardiovascularProcedurePrefixes) && !strings.HasPrefix(upperCIE, "I") {
		findings = append(findings, Finding{
			Line:     line,
			Field:    "CODIGO_CUPS",
			Message:  fmt.Sprintf("[CRUZADA] ADVERTENCIA: Procedimiento cardiovascular '%s' con diagnóstico no cardiovascular '%s'.", cups, cie),
			Severity: SeverityAdvisory,
		})
	}
	return findings
}

// AgeDiagnosis reports advisory findings for diagnoses implausible for the
// patient's age: perinatal codes on adults, senility below the elderly
// threshold, dementia on young patients.
func (r *RecordRules) AgeDiagnosis(age int, cie string, line int) []Finding {
	if cie == "" {
		return nil
	}
	var findings []Finding

	if age >= adultAgeThreshold && hasAnyPrefix(cie, pediatricDiagnosisPrefixes) {
		findings = append(findings, Finding{
			Line:     line,
			Field:    "DIAGNOSTICO_PRINCIPAL_CIE",
			Message:  fmt.Sprintf("[CRUZADA] ADVERTENCIA: Diagnóstico pediátrico '%s' en paciente de %d años.", cie, age),
			Severity: SeverityAdvisory,
		})
	}
	if age < elderlyAgeThreshold && hasAnyPrefix(cie, geriatricDiagnosisPrefixes) {
		findings = append(findings, Finding{
			Line:     line,
			Field:    "DIAGNOSTICO_PRINCIPAL_CIE",
			Message:  fmt.Sprintf("[CRUZADA] ADVERTENCIA: Diagnóstico geriátrico '%s' en paciente de %d años.", cie, age),
			Severity: SeverityAdvisory,
		})
	}
	if age < dementiaAgeFloor && hasAnyPrefix(cie, dementiaDiagnosisPrefixes) {
		findings = append(findings, Finding{
			Line:     line,
			Field:    "DIAGNOSTICO_PRINCIPAL_CIE",
			Message:  fmt.Sprintf("[CRUZADA] ADVERTENCIA: Diagnóstico geriátrico '%s' en paciente de %d años.", cie, age),
			Severity: SeverityAdvisory,
		})
	}
	return findings
}

// DocumentType checks membership in the national identification document
// catalog.
func (r *RecordRules) DocumentType(docType string, validTypes []string, line int) []Finding {
	if docType == "" || contains(validTypes, docType) {
		return nil
	}
	return []Finding{{
		Line:     line,
		Field:    "TIPO_DOCUMENTO_USUARIO",
		Message:  fmt.Sprintf("[US-001] Tipo de documento '%s' no válido. Valores permitidos: %s.", docType, strings.Join(validTypes, ", ")),
		Severity: SeverityBlocking,
	}}
}

// Product code charset: alphanumerics plus hyphen.
var productCodePattern = regexp.MustCompile(`^[A-Za-z0-9\-]+$`)

// ProductCode checks the medication/product code length bound and charset.
func (r *RecordRules) ProductCode(code string, line int) []Finding {
	if code == "" || len(code) < 3 || len(code) > 20 {
		return []Finding{{
			Line:     line,
			Field:    "CODIGO_PRODUCTO",
			Message:  fmt.Sprintf("[AM-001] Código de producto '%s' tiene longitud inválida (mínimo 3, máximo 20 caracteres).", code),
			Severity: SeverityBlocking,
		}}
	}
	if !productCodePattern.MatchString(code) {
		return []Finding{{
			Line:     line,
			Field:    "CODIGO_PRODUCTO",
			Message:  fmt.Sprintf("[AM-001] Código de producto '%s' contiene caracteres no permitidos. Solo alfanuméricos y guiones.", code),
			Severity: SeverityBlocking,
		}}
	}
	return nil
}
