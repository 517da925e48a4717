package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapJSONToDB(t *testing.T) {
	data := map[string]interface{}{
		"tipoDocumentoIdentificacion": "CC",
		"numDocumentoIdentificacion":  "123456789",
		"codDiagnosticoPrincipal":     "A09",
		"vrServicio":                  50000,
		"campoDesconocido":            "x",
	}

	mapped := MapJSONToDB(data, "AC")
	assert.Equal(t, "CC", mapped["identification_type"])
	assert.Equal(t, "123456789", mapped["identification_number"])
	assert.Equal(t, "A09", mapped["primary_diagnosis"])
	assert.Equal(t, 50000, mapped["consultation_value"])
	// Unmapped fields pass through under their original name.
	assert.Equal(t, "x", mapped["campoDesconocido"])
}

func TestMapRoundTrip(t *testing.T) {
	for fileType, fields := range FileTypeMappings {
		t.Run(fileType, func(t *testing.T) {
			data := map[string]interface{}{}
			for jsonName := range fields {
				data[jsonName] = jsonName + "-value"
			}
			back := MapDBToJSON(MapJSONToDB(data, fileType), fileType)
			assert.Equal(t, data, back)
		})
	}
}

func TestMapUnknownFileType(t *testing.T) {
	data := map[string]interface{}{"a": 1}
	assert.Equal(t, data, MapJSONToDB(data, "ZZ"))
	assert.Equal(t, data, MapDBToJSON(data, "ZZ"))
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "rips_consultations", TableName("AC"))
	assert.Equal(t, "rips_users", TableName("US"))
	assert.Equal(t, "rips_unknown", TableName("XX"))
}

func TestRecordTypeFromFilename(t *testing.T) {
	cases := map[string]string{
		"US_enero.txt":       "US",
		"ac_consultas.json":  "AC",
		"RIPS_AP_2025.txt":   "AP",
		"medicAMentos.txt":   "AM",
		"informe.txt":        "AC",
		"USUARIOS_2025.json": "US",
	}
	for name, expected := range cases {
		assert.Equal(t, expected, RecordTypeFromFilename(name), name)
	}

	require.Contains(t, FileTypeMappings, RecordTypeFromFilename("cualquiera.txt"))
}
