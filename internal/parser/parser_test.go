package parser

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadDelimited(t *testing.T) {
	t.Run("splits and trims fields", func(t *testing.T) {
		path := writeFile(t, "ac.txt", "a| b |c\r\n\nsin separador\n")
		lines, issues := ReadDelimited(path)
		require.Empty(t, issues)
		require.Len(t, lines, 2)

		assert.Equal(t, 1, lines[0].Number)
		assert.True(t, lines[0].HasDelimiter)
		assert.Equal(t, []string{"a", "b", "c"}, lines[0].Fields)

		// The blank line is skipped but numbering follows the source.
		assert.Equal(t, 3, lines[1].Number)
		assert.False(t, lines[1].HasDelimiter)
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeFile(t, "empty.txt", "  \n")
		lines, issues := ReadDelimited(path)
		assert.Empty(t, lines)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "vacío")
	})

	t.Run("non UTF-8 bytes", func(t *testing.T) {
		path := writeFile(t, "latin1.txt", "campo|valor\xff\n")
		lines, issues := ReadDelimited(path)
		assert.Empty(t, lines)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "UTF-8")
	})
}

func TestParseJSON(t *testing.T) {
	t.Run("top-level array", func(t *testing.T) {
		path := writeFile(t, "arr.json", `[{"codPrestador": "123", "total": 2}, {"codPrestador": "456"}]`)
		records, issues := ParseJSON(path)
		require.Empty(t, issues)
		require.Len(t, records, 2)
		assert.Equal(t, "123", records[0].Fields["codPrestador"])
		assert.Equal(t, "2", records[0].Fields["total"])
		assert.Equal(t, 2, records[1].Line)
	})

	t.Run("wrapped array", func(t *testing.T) {
		path := writeFile(t, "wrapped.json", `{"registros": [{"a": "1"}]}`)
		records, issues := ParseJSON(path)
		require.Empty(t, issues)
		require.Len(t, records, 1)
	})

	t.Run("non-object array entries are reported", func(t *testing.T) {
		path := writeFile(t, "mixed.json", `[{"codPrestador": "123"}, "texto", 42]`)
		records, issues := ParseJSON(path)
		require.Len(t, records, 1)
		require.Len(t, issues, 2)
		assert.Equal(t, 2, issues[0].Line)
		assert.Equal(t, "registro", issues[0].Field)
		assert.Contains(t, issues[0].Message, "no es un objeto válido")
		assert.Equal(t, 3, issues[1].Line)
	})

	t.Run("usuarios layout flattens services with demographics", func(t *testing.T) {
		content := `{"usuarios": [{
			"tipoDocumentoIdentificacion": "CC",
			"numDocumentoIdentificacion": "999",
			"codSexo": "F",
			"servicios": {
				"consultas": [{"codConsulta": "890201", "codDiagnosticoPrincipal": "A090"}],
				"procedimientos": [{"codProcedimiento": "873001"}]
			}
		}]}`
		path := writeFile(t, "usuarios.json", content)
		records, issues := ParseJSON(path)
		require.Empty(t, issues)
		require.Len(t, records, 2)

		assert.Equal(t, "890201", records[0].Fields["codConsulta"])
		assert.Equal(t, "F", records[0].Fields["codSexo"])
		assert.Equal(t, "999", records[0].Fields["numDocumentoIdentificacion"])
		assert.Equal(t, "consultas", records[0].Fields["grupoServicio"])
		assert.Equal(t, "873001", records[1].Fields["codProcedimiento"])
		assert.Equal(t, "F", records[1].Fields["codSexo"])
		assert.Equal(t, "procedimientos", records[1].Fields["grupoServicio"])
	})

	t.Run("user without services still yields a record", func(t *testing.T) {
		path := writeFile(t, "nosvc.json", `{"usuarios": [{"codSexo": "M", "numDocumentoIdentificacion": "1"}]}`)
		records, issues := ParseJSON(path)
		require.Empty(t, issues)
		require.Len(t, records, 1)
		assert.Equal(t, "M", records[0].Fields["codSexo"])
	})

	t.Run("single object", func(t *testing.T) {
		path := writeFile(t, "one.json", `{"codPrestador": "123"}`)
		records, issues := ParseJSON(path)
		require.Empty(t, issues)
		require.Len(t, records, 1)
	})

	t.Run("byte order mark tolerated", func(t *testing.T) {
		path := writeFile(t, "bom.json", "\xEF\xBB\xBF[{\"a\": \"1\"}]")
		records, issues := ParseJSON(path)
		require.Empty(t, issues)
		require.Len(t, records, 1)
	})

	t.Run("malformed document yields one issue", func(t *testing.T) {
		path := writeFile(t, "bad.json", `{"registros": [`)
		records, issues := ParseJSON(path)
		assert.Empty(t, records)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "JSON inválido")
	})

	t.Run("record cap", func(t *testing.T) {
		var items []string
		for i := 0; i < MaxStructuredRecords+20; i++ {
			items = append(items, fmt.Sprintf(`{"n": "%d"}`, i))
		}
		path := writeFile(t, "big.json", "["+strings.Join(items, ",")+"]")
		records, issues := ParseJSON(path)
		require.Empty(t, issues)
		assert.Len(t, records, MaxStructuredRecords)
	})
}

func TestParseXML(t *testing.T) {
	t.Run("registro elements become records", func(t *testing.T) {
		content := `<rips>
			<registro><codPrestador>123</codPrestador><codDiagnosticoPrincipal>A090</codDiagnosticoPrincipal></registro>
			<registro><codPrestador>456</codPrestador></registro>
		</rips>`
		path := writeFile(t, "rips.xml", content)
		records, issues := ParseXML(path)
		require.Empty(t, issues)
		require.Len(t, records, 2)
		assert.Equal(t, "123", records[0].Fields["codPrestador"])
		assert.Equal(t, "A090", records[0].Fields["codDiagnosticoPrincipal"])
	})

	t.Run("first matching tag wins", func(t *testing.T) {
		content := `<root><record><a>1</a></record><item><b>2</b></item></root>`
		path := writeFile(t, "mixed.xml", content)
		records, issues := ParseXML(path)
		require.Empty(t, issues)
		require.Len(t, records, 1)
		assert.Equal(t, "1", records[0].Fields["a"])
	})

	t.Run("no record elements", func(t *testing.T) {
		path := writeFile(t, "none.xml", `<root><other>1</other></root>`)
		records, issues := ParseXML(path)
		assert.Empty(t, records)
		assert.Empty(t, issues)
	})

	t.Run("malformed document yields one issue", func(t *testing.T) {
		path := writeFile(t, "bad.xml", `<root><registro>`)
		records, issues := ParseXML(path)
		assert.Empty(t, records)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "XML inválido")
	})
}

func TestExtractZipText(t *testing.T) {
	buildZip := func(t *testing.T, members map[string]string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "bundle.zip")
		archive, err := os.Create(path)
		require.NoError(t, err)
		writer := zip.NewWriter(archive)
		for name, content := range members {
			member, err := writer.Create(name)
			require.NoError(t, err)
			_, err = member.Write([]byte(content))
			require.NoError(t, err)
		}
		require.NoError(t, writer.Close())
		require.NoError(t, archive.Close())
		return path
	}

	t.Run("extracts txt members only", func(t *testing.T) {
		path := buildZip(t, map[string]string{
			"a.txt":    "1|2|3\n",
			"skip.csv": "x,y\n",
		})
		dir, members, issues := ExtractZipText(path)
		require.Empty(t, issues)
		defer os.RemoveAll(dir)
		require.Len(t, members, 1)
		assert.Equal(t, "a.txt", filepath.Base(members[0]))

		content, err := os.ReadFile(members[0])
		require.NoError(t, err)
		assert.Equal(t, "1|2|3\n", string(content))
	})

	t.Run("no txt members", func(t *testing.T) {
		path := buildZip(t, map[string]string{"only.csv": "x\n"})
		_, members, issues := ExtractZipText(path)
		assert.Empty(t, members)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "no contiene archivos .txt")
	})

	t.Run("corrupt archive", func(t *testing.T) {
		path := writeFile(t, "fake.zip", "this is not a zip")
		_, members, issues := ExtractZipText(path)
		assert.Empty(t, members)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "corrupto")
	})
}
