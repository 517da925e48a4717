package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func consultationRecord(line int, docNumber, procedure, serviceDate string) CorpusRecord {
	return CorpusRecord{
		Line:        line,
		Provider:    "110010000001",
		DocType:     "CC",
		DocNumber:   docNumber,
		ServiceDate: serviceDate,
		Procedure:   procedure,
	}
}

func TestDetectDuplicateProcedures(t *testing.T) {
	rules := DefaultCorpusRules()

	t.Run("three days apart flags the later line", func(t *testing.T) {
		records := []CorpusRecord{
			consultationRecord(1, "123", "890201", "2025-01-10"),
			consultationRecord(2, "123", "890201", "2025-01-13"),
		}
		findings := rules.Evaluate(records)
		require.Len(t, findings, 1)
		assert.Equal(t, 2, findings[0].Line)
		assert.Equal(t, "CODIGO_CUPS", findings[0].Field)
		assert.Contains(t, findings[0].Message, "890201")
		assert.Contains(t, findings[0].Message, "3 días")
		assert.Equal(t, SeverityAdvisory, findings[0].Severity)
	})

	t.Run("thirty days apart passes", func(t *testing.T) {
		records := []CorpusRecord{
			consultationRecord(1, "123", "890201", "2025-01-10"),
			consultationRecord(2, "123", "890201", "2025-02-09"),
		}
		assert.Empty(t, rules.Evaluate(records))
	})

	t.Run("different patients pass", func(t *testing.T) {
		records := []CorpusRecord{
			consultationRecord(1, "123", "890201", "2025-01-10"),
			consultationRecord(2, "456", "890201", "2025-01-11"),
		}
		assert.Empty(t, rules.Evaluate(records))
	})

	t.Run("unparseable dates are skipped", func(t *testing.T) {
		records := []CorpusRecord{
			consultationRecord(1, "123", "890201", "not-a-date"),
			consultationRecord(2, "123", "890201", "2025-01-11"),
		}
		assert.Empty(t, rules.Evaluate(records))
	})

	t.Run("identical records chain into adjacent-pair findings", func(t *testing.T) {
		var records []CorpusRecord
		for i := 1; i <= 10; i++ {
			records = append(records, consultationRecord(i, "123", "890201", "2025-01-10"))
		}
		findings := rules.Evaluate(records)
		// Nine adjacent zero-day gaps between ten identical occurrences.
		require.Len(t, findings, 9)
		for _, f := range findings {
			assert.Contains(t, f.Message, "duplicado")
		}
	})
}

func TestDetectAtypicalVolumes(t *testing.T) {
	rules := DefaultCorpusRules()

	t.Run("one finding per provider and day over the threshold", func(t *testing.T) {
		var records []CorpusRecord
		for i := 1; i <= rules.DailyVolumeThreshold+5; i++ {
			record := consultationRecord(i, fmt.Sprintf("doc-%d", i), "890201", "2025-03-01")
			records = append(records, record)
		}
		findings := rules.detectAtypicalVolumes(records)
		require.Len(t, findings, 1)
		assert.Equal(t, 1, findings[0].Line)
		assert.Equal(t, "CODIGO_PRESTADOR", findings[0].Field)
		assert.Contains(t, findings[0].Message, "55 servicios")
	})

	t.Run("at the threshold passes", func(t *testing.T) {
		var records []CorpusRecord
		for i := 1; i <= rules.DailyVolumeThreshold; i++ {
			records = append(records, consultationRecord(i, fmt.Sprintf("doc-%d", i), "890201", "2025-03-01"))
		}
		assert.Empty(t, rules.detectAtypicalVolumes(records))
	})
}

func TestDetectLowBillingVariability(t *testing.T) {
	rules := DefaultCorpusRules()

	t.Run("repetitive billing is advisory", func(t *testing.T) {
		var records []CorpusRecord
		for i := 1; i <= 20; i++ {
			records = append(records, consultationRecord(i, fmt.Sprintf("doc-%d", i), "890201", "2025-03-01"))
		}
		findings := rules.detectLowBillingVariability(records)
		require.Len(t, findings, 1)
		assert.Equal(t, SeverityAdvisory, findings[0].Severity)
		assert.Contains(t, findings[0].Message, "110010000001")
		assert.Contains(t, findings[0].Message, "5.00%")
	})

	t.Run("varied billing passes", func(t *testing.T) {
		var records []CorpusRecord
		for i := 1; i <= 20; i++ {
			records = append(records, consultationRecord(i, "123", fmt.Sprintf("89%04d", i), "2025-03-01"))
		}
		assert.Empty(t, rules.detectLowBillingVariability(records))
	})

	t.Run("below minimum record count passes", func(t *testing.T) {
		var records []CorpusRecord
		for i := 1; i <= 5; i++ {
			records = append(records, consultationRecord(i, "123", "890201", "2025-03-01"))
		}
		assert.Empty(t, rules.detectLowBillingVariability(records))
	})
}

func TestCorpusEvaluateDeterministicOrder(t *testing.T) {
	rules := DefaultCorpusRules()
	records := []CorpusRecord{
		consultationRecord(1, "999", "890201", "2025-01-10"),
		consultationRecord(2, "999", "890201", "2025-01-12"),
		consultationRecord(3, "111", "550000", "2025-01-10"),
		consultationRecord(4, "111", "550000", "2025-01-12"),
	}
	first := rules.Evaluate(records)
	second := rules.Evaluate(records)
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	// Sorted group key order: patient 111 before patient 999.
	assert.Equal(t, 4, first[0].Line)
	assert.Equal(t, 2, first[1].Line)
}
