package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// wrapperKeys are the envelope keys under which RIPS JSON files carry
// their record arrays.
var wrapperKeys = []string{"registros", "records", "data", "rows"}

// serviceKeys are the nested arrays of the official RIPS JSON layout,
// grouped under each user's "servicios" object.
var serviceKeys = []string{
	"consultas", "procedimientos", "urgencias", "hospitalizacion",
	"hospitalizaciones", "recienNacidos", "medicamentos", "otrosServicios",
}

// userFields are user-level attributes copied onto every service record
// flattened out of a "usuarios" entry.
var userFields = []string{
	"tipoDocumentoIdentificacion", "numDocumentoIdentificacion",
	"codSexo", "fechaNacimiento", "tipoUsuario", "codPaisResidencia",
	"codMunicipioResidencia", "codZonaTerritorialResidencia",
}

// ParseJSON reads a RIPS JSON file into records. It accepts a top-level
// array of objects, an object wrapping the array under a known key, the
// official "usuarios" layout with nested service arrays, or a single
// record object. A document that cannot be decoded yields one issue.
func ParseJSON(path string) ([]Record, []Issue) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []Issue{issuef(0, "archivo", "No se pudo leer el archivo: %v", err)}
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var root interface{}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, []Issue{issuef(0, "archivo", "JSON inválido: %v", err)}
	}

	switch value := root.(type) {
	case []interface{}:
		return recordsFromArray(value)
	case map[string]interface{}:
		if users, ok := value["usuarios"].([]interface{}); ok {
			return recordsFromUsers(users), nil
		}
		for _, key := range wrapperKeys {
			if arr, ok := value[key].([]interface{}); ok {
				return recordsFromArray(arr)
			}
		}
		// A bare object is treated as a single record.
		return []Record{{Line: 1, Fields: flattenObject(value)}}, nil
	default:
		return nil, []Issue{issuef(0, "archivo", "JSON inválido: se esperaba un objeto o un arreglo de registros")}
	}
}

func recordsFromArray(items []interface{}) ([]Record, []Issue) {
	var records []Record
	var issues []Issue
	for i, item := range items {
		if len(records) >= MaxStructuredRecords {
			break
		}
		obj, ok := item.(map[string]interface{})
		if !ok {
			issues = append(issues, issuef(i+1, "registro", "Registro %d no es un objeto válido", i+1))
			continue
		}
		records = append(records, Record{Line: i + 1, Fields: flattenObject(obj)})
	}
	return records, issues
}

// recordsFromUsers flattens the official RIPS layout: each user entry
// carries demographics plus a "servicios" object whose arrays hold the
// actual clinical records. Every service record inherits the user's
// demographic fields. A user with no services still yields one record
// so demographic rules can run against it.
func recordsFromUsers(users []interface{}) []Record {
	var records []Record
	line := 0
	for _, raw := range users {
		if len(records) >= MaxStructuredRecords {
			break
		}
		user, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		demographics := map[string]string{}
		for _, field := range userFields {
			if v, ok := user[field]; ok {
				demographics[field] = stringify(v)
			}
		}

		services, _ := user["servicios"].(map[string]interface{})
		emitted := false
		for _, key := range serviceKeys {
			arr, ok := services[key].([]interface{})
			if !ok {
				continue
			}
			for _, svcRaw := range arr {
				if len(records) >= MaxStructuredRecords {
					return records
				}
				svc, ok := svcRaw.(map[string]interface{})
				if !ok {
					continue
				}
				fields := flattenObject(svc)
				for name, value := range demographics {
					if _, exists := fields[name]; !exists {
						fields[name] = value
					}
				}
				// Keep the provenance of the nested array: completeness
				// rules group services by it.
				if _, exists := fields["grupoServicio"]; !exists {
					fields["grupoServicio"] = key
				}
				line++
				records = append(records, Record{Line: line, Fields: fields})
				emitted = true
			}
		}
		if !emitted {
			line++
			fields := map[string]string{}
			for name, value := range demographics {
				fields[name] = value
			}
			records = append(records, Record{Line: line, Fields: fields})
		}
	}
	return records
}

func flattenObject(obj map[string]interface{}) map[string]string {
	fields := make(map[string]string, len(obj))
	for key, value := range obj {
		switch value.(type) {
		case map[string]interface{}, []interface{}:
			continue
		}
		fields[key] = stringify(value)
	}
	return fields
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
