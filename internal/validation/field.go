package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/corerips-wq/rips-engine/internal/schema"
)

// Named type predicates, one per data type, so catalog-driven and
// format-fallback paths can swap without touching call sites.
var (
	codePattern   = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	stringPattern = regexp.MustCompile(`^[A-Za-z0-9\s\-_.,]+$`)
)

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

func isCode(value string) bool {
	return codePattern.MatchString(value)
}

func isPlainString(value string) bool {
	return stringPattern.MatchString(value)
}

func goDateLayout(format string) string {
	switch format {
	case schema.DateFormatLegacy:
		return "02/01/2006"
	default:
		return "2006-01-02"
	}
}

func parseRuleDate(value, format string) (time.Time, bool) {
	t, err := time.Parse(goDateLayout(format), value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseFlexibleDate accepts the primary ISO format and the legacy
// slash format, dispatching on the separator the way the original files do.
func parseFlexibleDate(value string) (time.Time, bool) {
	if strings.Contains(value, "-") {
		return parseRuleDate(value, schema.DateFormatISO)
	}
	return parseRuleDate(value, schema.DateFormatLegacy)
}

// Fields where a future date is legitimate (scheduled and expiry dates).
var futureExemptFields = map[string]struct{}{
	"FECHA_VENCIMIENTO": {},
	"FECHA_PROGRAMADA":  {},
}

const maxBirthAgeYears = 150

// EvaluateField validates one raw value against one field rule. Checks are
// cumulative: a value can collect several findings in one pass. The only
// short-circuit is an empty mandatory value, which is terminal for the
// field.
func EvaluateField(value string, rule schema.FieldRule, line int, now time.Time) []Finding {
	var findings []Finding

	if rule.Mandatory && value == "" {
		return []Finding{{
			Line:     line,
			Field:    rule.Name,
			Message:  "Campo obligatorio vacío",
			Severity: SeverityBlocking,
		}}
	}
	if value == "" {
		// Optional absent field is valid.
		return nil
	}

	if len(value) < rule.MinLen {
		findings = append(findings, Finding{
			Line:     line,
			Field:    rule.Name,
			Message:  fmt.Sprintf("Longitud insuficiente. Mínimo: %d, Actual: %d", rule.MinLen, len(value)),
			Severity: SeverityBlocking,
		})
	}
	if rule.MaxLen > 0 && len(value) > rule.MaxLen {
		findings = append(findings, Finding{
			Line:     line,
			Field:    rule.Name,
			Message:  fmt.Sprintf("Longitud excesiva. Máximo: %d, Actual: %d", rule.MaxLen, len(value)),
			Severity: SeverityBlocking,
		})
	}

	switch rule.Type {
	case schema.TypeNumeric:
		if !isNumeric(value) {
			findings = append(findings, Finding{
				Line:     line,
				Field:    rule.Name,
				Message:  "Debe ser numérico",
				Severity: SeverityBlocking,
			})
		}
	case schema.TypeDate:
		format := rule.DateFormat
		if format == "" {
			format = schema.DateFormatISO
		}
		if parsed, ok := parseRuleDate(value, format); !ok {
			findings = append(findings, Finding{
				Line:     line,
				Field:    rule.Name,
				Message:  fmt.Sprintf("Formato de fecha inválido. Esperado: %s", format),
				Severity: SeverityBlocking,
			})
		} else {
			findings = append(findings, evaluateDateLogic(parsed, rule.Name, line, now)...)
		}
	case schema.TypeCode:
		if !isCode(value) {
			findings = append(findings, Finding{
				Line:     line,
				Field:    rule.Name,
				Message:  "Código debe ser alfanumérico",
				Severity: SeverityBlocking,
			})
		}
	case schema.TypeString:
		if !isPlainString(value) {
			findings = append(findings, Finding{
				Line:     line,
				Field:    rule.Name,
				Message:  "Contiene caracteres no permitidos",
				Severity: SeverityBlocking,
			})
		}
	}

	if len(rule.Allowed) > 0 && !contains(rule.Allowed, value) {
		findings = append(findings, Finding{
			Line:     line,
			Field:    rule.Name,
			Message:  fmt.Sprintf("Valor no permitido. Valores válidos: %s", strings.Join(rule.Allowed, ", ")),
			Severity: SeverityBlocking,
		})
	}

	return findings
}

// evaluateDateLogic applies the semantic date checks after a successful
// parse. The future check and the implausible-birth check are evaluated
// independently, never as alternatives.
func evaluateDateLogic(parsed time.Time, fieldName string, line int, now time.Time) []Finding {
	var findings []Finding
	today := now.Truncate(24 * time.Hour)

	if parsed.After(today) {
		if _, exempt := futureExemptFields[fieldName]; !exempt {
			findings = append(findings, Finding{
				Line:     line,
				Field:    fieldName,
				Message:  "La fecha no puede ser futura",
				Severity: SeverityBlocking,
			})
		}
	}

	if fieldName == "FECHA_NACIMIENTO" {
		minBirth := today.AddDate(-maxBirthAgeYears, 0, 0)
		if parsed.Before(minBirth) {
			findings = append(findings, Finding{
				Line:     line,
				Field:    fieldName,
				Message:  fmt.Sprintf("Fecha de nacimiento muy antigua (>%d años)", maxBirthAgeYears),
				Severity: SeverityBlocking,
			})
		}
	}

	return findings
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
