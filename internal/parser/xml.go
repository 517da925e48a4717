package parser

import (
	"bytes"
	"encoding/xml"
	"os"
	"strings"
)

// recordTags are the element names recognized as one RIPS register in
// an XML document. The first tag with matches wins.
var recordTags = []string{"registro", "Registro", "record", "Record", "item", "row"}

type xmlNode struct {
	XMLName  xml.Name
	Content  []byte    `xml:",chardata"`
	Children []xmlNode `xml:",any"`
}

// ParseXML reads a RIPS XML file into records. Any element whose name
// matches a known record tag becomes one record; its child elements
// become fields with their text content as values. A document that
// cannot be decoded yields one issue.
func ParseXML(path string) ([]Record, []Issue) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []Issue{issuef(0, "archivo", "No se pudo leer el archivo: %v", err)}
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, []Issue{issuef(0, "archivo", "XML inválido: %v", err)}
	}

	for _, tag := range recordTags {
		var nodes []xmlNode
		collectByTag(root, tag, &nodes)
		if len(nodes) == 0 {
			continue
		}
		var records []Record
		for i, node := range nodes {
			if len(records) >= MaxStructuredRecords {
				break
			}
			fields := make(map[string]string, len(node.Children))
			for _, child := range node.Children {
				fields[child.XMLName.Local] = strings.TrimSpace(string(child.Content))
			}
			records = append(records, Record{Line: i + 1, Fields: fields})
		}
		return records, nil
	}
	return nil, nil
}

func collectByTag(node xmlNode, tag string, out *[]xmlNode) {
	if node.XMLName.Local == tag {
		*out = append(*out, node)
		return
	}
	for _, child := range node.Children {
		collectByTag(child, tag, out)
	}
}
