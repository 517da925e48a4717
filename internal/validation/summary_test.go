package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeSeveritySplit(t *testing.T) {
	findings := []Finding{
		{Line: 1, Field: "CODIGO_PRESTADOR", Message: "Campo obligatorio vacío", Severity: SeverityBlocking},
		{Line: 2, Field: "FECHA_CONSULTA", Message: "Formato de fecha inválido. Esperado: YYYY-MM-DD", Severity: SeverityBlocking},
		{Line: 3, Field: "CODIGO_CUPS", Message: "Procedimiento duplicado (890201) en 3 días para el mismo usuario", Severity: SeverityAdvisory},
	}

	summary := Summarize(findings)
	assert.Equal(t, "error", summary.Status)
	assert.Equal(t, 3, summary.TotalFindings)
	// The split keys on message keywords, matching the historical policy.
	assert.Equal(t, 2, summary.SeverityDistribution[string(SeverityBlocking)])
	assert.Equal(t, 1, summary.SeverityDistribution[string(SeverityAdvisory)])
	assert.Equal(t, 1, summary.ByField["CODIGO_CUPS"])
}

func TestSummarizeIgnoresMarkers(t *testing.T) {
	findings := []Finding{
		{Line: 0, Field: FieldValidation, Message: successMessage, Severity: SeverityInfo},
	}
	summary := Summarize(findings)
	assert.Equal(t, "success", summary.Status)
	assert.Equal(t, 0, summary.TotalFindings)
	assert.Empty(t, summary.MostCommon)
}

func TestSummarizeMostCommon(t *testing.T) {
	var findings []Finding
	add := func(field string, n int) {
		for i := 0; i < n; i++ {
			findings = append(findings, Finding{Line: i + 1, Field: field, Message: "x", Severity: SeverityBlocking})
		}
	}
	add("F1", 5)
	add("F2", 3)
	add("F3", 3)
	add("F4", 2)
	add("F5", 1)
	add("F6", 1)

	summary := Summarize(findings)
	require.Len(t, summary.MostCommon, 5)
	assert.Equal(t, FieldCount{Field: "F1", Count: 5}, summary.MostCommon[0])
	// Equal counts rank alphabetically.
	assert.Equal(t, "F2", summary.MostCommon[1].Field)
	assert.Equal(t, "F3", summary.MostCommon[2].Field)
	assert.Equal(t, "F4", summary.MostCommon[3].Field)
	assert.Equal(t, "F5", summary.MostCommon[4].Field)
}
