package validation

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/corerips-wq/rips-engine/internal/catalog"
)

func newTestEngine(t *testing.T, configure func(store *catalog.Store)) *Engine {
	t.Helper()
	store := catalog.NewStore()
	if configure != nil {
		configure(store)
	}
	engine := NewEngine(store, zap.NewNop(), DefaultOptions())
	engine.now = func() time.Time { return testNow }
	return engine
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateFileShortProviderCode(t *testing.T) {
	engine := newTestEngine(t, nil)
	path := writeTestFile(t, "ac.txt", "12345|CC|123456|2025-01-20|A090\n")

	findings, err := engine.ValidateFile(path, "AC")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "CODIGO_PRESTADOR", findings[0].Field)
	assert.Equal(t, 1, findings[0].Line)
	assert.Contains(t, findings[0].Message, "Longitud insuficiente. Mínimo: 12")
}

func TestValidateFileJSONSexIncompatibility(t *testing.T) {
	engine := newTestEngine(t, nil)
	content := `{
		"usuarios": [
			{
				"tipoDocumentoIdentificacion": "CC",
				"numDocumentoIdentificacion": "123456",
				"codSexo": "M",
				"fechaNacimiento": "1990-05-10",
				"servicios": {
					"consultas": [
						{
							"codConsulta": "890201",
							"codDiagnosticoPrincipal": "O801",
							"fechaInicioAtencion": "2025-01-20"
						}
					]
				}
			}
		]
	}`
	path := writeTestFile(t, "rips.json", content)

	findings, err := engine.ValidateFile(path, "AC")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "[CIE11_004]")
	assert.Contains(t, findings[0].Message, "O801")
	assert.Contains(t, findings[0].Message, "masculino")
}

func TestValidateFileJSONDiagnosisAssociation(t *testing.T) {
	engine := newTestEngine(t, func(store *catalog.Store) {
		store.LoadCIE10(map[string]struct{}{"A090": {}, "B999": {}})
		store.LoadCUPS(map[string]catalog.CUPSEntry{"890201": {Tariff: 1, Purpose: "consulta"}})
		store.LoadCorrespondence(map[string][]string{"890201": {"B999"}})
	})
	content := `{
		"usuarios": [
			{
				"tipoDocumentoIdentificacion": "CC",
				"numDocumentoIdentificacion": "123456",
				"servicios": {
					"consultas": [
						{
							"codConsulta": "890201",
							"codDiagnosticoPrincipal": "A090",
							"fechaInicioAtencion": "2025-01-20"
						}
					]
				}
			}
		]
	}`
	path := writeTestFile(t, "rips.json", content)

	findings, err := engine.ValidateFile(path, "AC")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "[R2641-D007]")
	assert.Contains(t, findings[0].Message, "890201")
	assert.Contains(t, findings[0].Message, "A090")
}

func TestValidateFileJSONMandatoryProcedures(t *testing.T) {
	engine := newTestEngine(t, nil)
	content := `{
		"usuarios": [
			{
				"tipoDocumentoIdentificacion": "CC",
				"numDocumentoIdentificacion": "123456",
				"servicios": {
					"urgencias": [
						{
							"codProcedimiento": "890301",
							"fechaInicioAtencion": "2025-01-10"
						}
					]
				}
			}
		]
	}`
	path := writeTestFile(t, "rips.json", content)

	findings, err := engine.ValidateFile(path, "AC")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityAdvisory, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "[R2641-D010]")
	assert.Contains(t, findings[0].Message, "urgencia")
	assert.Contains(t, findings[0].Message, "890201, 890202")
}

func TestValidateFileJSONEmptyRecord(t *testing.T) {
	engine := newTestEngine(t, nil)
	path := writeTestFile(t, "rips.json", `[{}]`)

	findings, err := engine.ValidateFile(path, "AC")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, FieldRecord, findings[0].Field)
	assert.Equal(t, 1, findings[0].Line)
	assert.Contains(t, findings[0].Message, "no contiene campos válidos")
}

func TestValidateFileEmpty(t *testing.T) {
	engine := newTestEngine(t, nil)
	path := writeTestFile(t, "empty.txt", "")

	findings, err := engine.ValidateFile(path, "AC")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, FieldFile, findings[0].Field)
	assert.Contains(t, findings[0].Message, "vacío")
}

func TestValidateFileDuplicateConsultations(t *testing.T) {
	engine := newTestEngine(t, nil)
	line := "110010000001|CC|123456|2025-01-10|A090\n"
	path := writeTestFile(t, "ac.txt", strings.Repeat(line, 10))

	findings, err := engine.ValidateFile(path, "AC")
	require.NoError(t, err)
	require.NotEmpty(t, findings)
	assert.LessOrEqual(t, len(findings), DefaultOptions().MaxFindings+1)

	duplicates := 0
	for _, f := range findings {
		if strings.Contains(f.Message, "duplicado") {
			duplicates++
		}
	}
	assert.GreaterOrEqual(t, duplicates, 1)
}

func TestValidateFileModes(t *testing.T) {
	engine := newTestEngine(t, nil)
	// Valid fields, duplicated across ten lines: only the pattern family
	// has anything to say about this file.
	line := "110010000001|CC|123456|2025-01-10|A090\n"
	path := writeTestFile(t, "ac.txt", strings.Repeat(line, 10))

	t.Run("deterministic only skips patterns", func(t *testing.T) {
		findings, err := engine.ValidateFileModes(path, "AC", Modes{Deterministic: true})
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Contains(t, findings[0].Message, "validado correctamente")
	})

	t.Run("patterns only skips field rules", func(t *testing.T) {
		short := writeTestFile(t, "short.txt", strings.Repeat("12345|CC|123456|2025-01-10|A090\n", 10))
		findings, err := engine.ValidateFileModes(short, "AC", Modes{Patterns: true})
		require.NoError(t, err)
		require.NotEmpty(t, findings)
		for _, f := range findings {
			assert.NotContains(t, f.Message, "Longitud insuficiente")
		}
	})

	t.Run("patterns only still finds duplicates", func(t *testing.T) {
		findings, err := engine.ValidateFileModes(path, "AC", Modes{Patterns: true})
		require.NoError(t, err)
		require.NotEmpty(t, findings)
		assert.Contains(t, findings[0].Message, "duplicado")
	})
}

func TestParseModes(t *testing.T) {
	modes, err := ParseModes([]string{"deterministic"})
	require.NoError(t, err)
	assert.Equal(t, Modes{Deterministic: true}, modes)

	modes, err = ParseModes([]string{"deterministic", "ai"})
	require.NoError(t, err)
	assert.Equal(t, FullModes(), modes)

	modes, err = ParseModes([]string{"Patterns"})
	require.NoError(t, err)
	assert.Equal(t, Modes{Patterns: true}, modes)

	_, err = ParseModes([]string{"quantum"})
	require.Error(t, err)

	_, err = ParseModes(nil)
	require.Error(t, err)
}

func TestValidateFileZipArchive(t *testing.T) {
	engine := newTestEngine(t, nil)

	path := filepath.Join(t.TempDir(), "bundle.zip")
	archive, err := os.Create(path)
	require.NoError(t, err)
	writer := zip.NewWriter(archive)

	good, err := writer.Create("good.txt")
	require.NoError(t, err)
	_, err = good.Write([]byte("110010000001|CC|123456|2025-01-10|A090\n"))
	require.NoError(t, err)

	bad, err := writer.Create("bad.txt")
	require.NoError(t, err)
	_, err = bad.Write([]byte(
		"110010000001|CC|123456|2025-01-10|A090\n" +
			"110010000001|CC|654321|2025-01-11|A091\n" +
			"sin separador en esta linea\n"))
	require.NoError(t, err)

	require.NoError(t, writer.Close())
	require.NoError(t, archive.Close())

	findings, err := engine.ValidateFile(path, "AC")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "bad.txt: "+FieldFormat, findings[0].Field)
	assert.Equal(t, 3, findings[0].Line)
	assert.Contains(t, findings[0].Message, "separador")
}

func TestValidateFileSuccessMarker(t *testing.T) {
	engine := newTestEngine(t, nil)
	path := writeTestFile(t, "ac.txt", "110010000001|CC|123456|2025-01-10|A090\n")

	findings, err := engine.ValidateFile(path, "AC")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, 0, findings[0].Line)
	assert.Equal(t, FieldValidation, findings[0].Field)
	assert.Contains(t, findings[0].Message, "validado correctamente")
}

func TestValidateFileCap(t *testing.T) {
	engine := newTestEngine(t, nil)
	// Every line yields two findings; 80 lines overflow the cap.
	line := "X|CC|123456|2025-01-10|A090\n"
	path := writeTestFile(t, "ac.txt", strings.Repeat(line, 80))

	findings, err := engine.ValidateFile(path, "AC")
	require.NoError(t, err)
	max := DefaultOptions().MaxFindings
	require.Len(t, findings, max+1)
	last := findings[len(findings)-1]
	assert.Equal(t, FieldValidation, last.Field)
	assert.Contains(t, last.Message, "Validación detenida")
	for _, f := range findings[:max] {
		assert.NotContains(t, f.Message, "Validación detenida")
	}
}

func TestValidateFileIdempotent(t *testing.T) {
	engine := newTestEngine(t, nil)
	content := "110010000001|CC|123456|2025-01-10|A090\n" +
		"12345|XX|abc@def|2025-13-40|!!\n" +
		"110010000001|CC|123456|2025-01-12|A090\n"
	path := writeTestFile(t, "ac.txt", content)

	first, err := engine.ValidateFile(path, "AC")
	require.NoError(t, err)
	second, err := engine.ValidateFile(path, "AC")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestValidateFileUnsupportedExtension(t *testing.T) {
	engine := newTestEngine(t, nil)
	path := writeTestFile(t, "file.pdf", "contenido")

	findings, err := engine.ValidateFile(path, "AC")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, FieldFile, findings[0].Field)
	assert.Contains(t, findings[0].Message, "Formato no soportado (.pdf)")
	assert.Contains(t, findings[0].Message, ".txt, .json, .xml, .zip")
}

func TestValidateFileUnknownRecordType(t *testing.T) {
	engine := newTestEngine(t, nil)
	path := writeTestFile(t, "file.txt", "a|b|c\n")

	findings, err := engine.ValidateFile(path, "ZZ")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, FieldFileType, findings[0].Field)
	assert.Contains(t, findings[0].Message, "'ZZ'")
}

func TestValidateFileMalformedJSON(t *testing.T) {
	engine := newTestEngine(t, nil)
	path := writeTestFile(t, "broken.json", "{not json")

	findings, err := engine.ValidateFile(path, "AC")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "JSON inválido")
}

func TestValidateFileInsufficientFields(t *testing.T) {
	engine := newTestEngine(t, nil)
	path := writeTestFile(t, "ac.txt", "110010000001|CC\n")

	findings, err := engine.ValidateFile(path, "AC")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, FieldStructure, findings[0].Field)
	assert.Contains(t, findings[0].Message, "Mínimo esperado: 5, Encontrado: 2")
}

func TestValidateFileMissingPath(t *testing.T) {
	engine := newTestEngine(t, nil)
	_, err := engine.ValidateFile(filepath.Join(t.TempDir(), "nope.txt"), "AC")
	assert.Error(t, err)
}
