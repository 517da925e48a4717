package schema

import (
	"sort"
)

// DataType identifies the primitive validation applied to a field value.
type DataType string

const (
	TypeNumeric DataType = "numeric"
	TypeDate    DataType = "date"
	TypeCode    DataType = "code"
	TypeString  DataType = "string"
)

// Date format identifiers used by field rules. DateFormatISO is the primary
// RIPS format; DateFormatLegacy survives for files produced by older
// extraction tools.
const (
	DateFormatISO    = "YYYY-MM-DD"
	DateFormatLegacy = "DD/MM/YYYY"
)

// FieldRule is the declarative constraint set for one field of one record
// type. Rules are defined once at startup and never mutated by validation
// runs.
type FieldRule struct {
	Name       string
	Type       DataType
	MinLen     int
	MaxLen     int // 0 means unbounded
	Mandatory  bool
	Allowed    []string
	DateFormat string
}

// RecordSchema is the ordered field layout for one two-letter record type.
type RecordSchema struct {
	Code   string
	Fields []FieldRule
}

// FieldNames returns the field names in declaration order.
func (s RecordSchema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Catalog values shared across record types.
var (
	DocumentTypes = []string{"CC", "TI", "RC", "CE", "PA", "NUIP", "MS"}
	Sexes         = []string{"M", "F"}
	NoteTypes     = []string{"NC", "ND"}
	ControlTypes  = []string{"1"}
)

var registry = map[string]RecordSchema{
	"CT": {
		Code: "CT",
		Fields: []FieldRule{
			{Name: "TIPO_REGISTRO", Type: TypeNumeric, MinLen: 1, MaxLen: 1, Mandatory: true, Allowed: ControlTypes},
			{Name: "FECHA_GENERACION", Type: TypeDate, MinLen: 10, MaxLen: 10, Mandatory: true, DateFormat: DateFormatISO},
			{Name: "VERSION_ANEXO_TECNICO", Type: TypeString, MinLen: 1, MaxLen: 20, Mandatory: true},
		},
	},
	"US": {
		Code: "US",
		Fields: []FieldRule{
			{Name: "TIPO_DOCUMENTO_USUARIO", Type: TypeCode, MinLen: 1, MaxLen: 2, Mandatory: true, Allowed: DocumentTypes},
			{Name: "NUMERO_DOCUMENTO_USUARIO", Type: TypeString, MinLen: 1, MaxLen: 20, Mandatory: true},
			{Name: "FECHA_NACIMIENTO", Type: TypeDate, MinLen: 10, MaxLen: 10, Mandatory: true, DateFormat: DateFormatISO},
			{Name: "SEXO", Type: TypeCode, MinLen: 1, MaxLen: 1, Mandatory: true, Allowed: Sexes},
		},
	},
	"AC": {
		Code: "AC",
		Fields: []FieldRule{
			{Name: "CODIGO_PRESTADOR", Type: TypeNumeric, MinLen: 12, MaxLen: 12, Mandatory: true},
			{Name: "TIPO_DOCUMENTO_USUARIO", Type: TypeCode, MinLen: 1, MaxLen: 2, Mandatory: true, Allowed: DocumentTypes},
			{Name: "NUMERO_DOCUMENTO_USUARIO", Type: TypeString, MinLen: 1, MaxLen: 20, Mandatory: true},
			{Name: "FECHA_CONSULTA", Type: TypeDate, MinLen: 10, MaxLen: 10, Mandatory: true, DateFormat: DateFormatISO},
			{Name: "DIAGNOSTICO_PRINCIPAL_CIE", Type: TypeCode, MinLen: 3, MaxLen: 7, Mandatory: true},
		},
	},
	"AP": {
		Code: "AP",
		Fields: []FieldRule{
			{Name: "CODIGO_PRESTADOR", Type: TypeNumeric, MinLen: 12, MaxLen: 12, Mandatory: true},
			{Name: "TIPO_DOCUMENTO_USUARIO", Type: TypeCode, MinLen: 1, MaxLen: 2, Mandatory: true, Allowed: DocumentTypes},
			{Name: "NUMERO_DOCUMENTO_USUARIO", Type: TypeString, MinLen: 1, MaxLen: 20, Mandatory: true},
			{Name: "FECHA_PROCEDIMIENTO", Type: TypeDate, MinLen: 10, MaxLen: 10, Mandatory: true, DateFormat: DateFormatISO},
			{Name: "CODIGO_CUPS", Type: TypeString, MinLen: 3, MaxLen: 7, Mandatory: true},
		},
	},
	"AM": {
		Code: "AM",
		Fields: []FieldRule{
			{Name: "CODIGO_PRESTADOR", Type: TypeNumeric, MinLen: 12, MaxLen: 12, Mandatory: true},
			{Name: "CODIGO_PRODUCTO", Type: TypeString, MinLen: 3, MaxLen: 20, Mandatory: true},
		},
	},
	"AF": {
		Code: "AF",
		Fields: []FieldRule{
			{Name: "CODIGO_PRESTADOR", Type: TypeNumeric, MinLen: 12, MaxLen: 12, Mandatory: true},
			{Name: "CUV", Type: TypeString, MinLen: 10, MaxLen: 64, Mandatory: false},
		},
	},
	"AD": {
		Code: "AD",
		Fields: []FieldRule{
			{Name: "TIPO_NOTA", Type: TypeCode, MinLen: 1, MaxLen: 2, Mandatory: true, Allowed: NoteTypes},
		},
	},
}

// ForType returns the schema registered for a two-letter record type code.
func ForType(code string) (RecordSchema, bool) {
	s, ok := registry[code]
	return s, ok
}

// Types returns the registered record type codes in sorted order.
func Types() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
