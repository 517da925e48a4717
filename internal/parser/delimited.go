package parser

import (
	"bufio"
	"os"
	"strings"
	"unicode/utf8"
)

// Line is one raw line of a delimited RIPS file, split on the pipe
// separator. HasDelimiter is false when the source line carried no
// separator at all, which is reported separately from field counts.
type Line struct {
	Number       int
	Raw          string
	Fields       []string
	HasDelimiter bool
}

// ReadDelimited loads a pipe-delimited text file. Blank lines are
// skipped. Encoding and emptiness problems come back as issues; a file
// that fails those checks yields no lines.
func ReadDelimited(path string) ([]Line, []Issue) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []Issue{issuef(0, "archivo", "No se pudo leer el archivo: %v", err)}
	}
	if !utf8.Valid(data) {
		return nil, []Issue{issuef(0, "archivo", "El archivo no está codificado en UTF-8")}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, []Issue{issuef(0, "archivo", "El archivo está vacío")}
	}

	var lines []Line
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	number := 0
	for scanner.Scan() {
		number++
		raw := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		hasDelim := strings.Contains(raw, "|")
		line := Line{Number: number, Raw: raw, HasDelimiter: hasDelim}
		if hasDelim {
			parts := strings.Split(raw, "|")
			for i, part := range parts {
				parts[i] = strings.TrimSpace(part)
			}
			line.Fields = parts
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, []Issue{issuef(0, "archivo", "No se pudo leer el archivo: %v", err)}
	}
	return lines, nil
}
