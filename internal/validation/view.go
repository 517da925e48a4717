package validation

import "github.com/corerips-wq/rips-engine/internal/schema"

// recordView is the semantic projection of one record that the catalog
// and cross-record rules read. The delimited path fills it from field
// positions; the structured path fills it from field-name aliases.
type recordView struct {
	provider    string
	docType     string
	docNumber   string
	birthDate   string
	sex         string
	serviceDate string
	procedure   string
	diagnosis   string
	cups        string
	product     string
	serviceType string
}

// Field name aliases accepted on JSON and XML records. Each list mixes
// the internal column names with the official interchange names so both
// storage exports and ministry-format files validate.
var (
	providerAliases    = []string{"CODIGO_PRESTADOR", "codPrestador", "codigoPrestador"}
	docTypeAliases     = []string{"TIPO_DOCUMENTO_USUARIO", "tipoDocumentoIdentificacion", "tipoDocumento"}
	docNumberAliases   = []string{"NUMERO_DOCUMENTO_USUARIO", "numDocumentoIdentificacion", "numeroDocumento"}
	birthDateAliases   = []string{"FECHA_NACIMIENTO", "fechaNacimiento"}
	sexAliases         = []string{"SEXO", "codSexo", "sexo"}
	serviceDateAliases = []string{
		"FECHA_CONSULTA", "FECHA_PROCEDIMIENTO", "fechaInicioAtencion",
		"fechaAtencion", "fechaConsulta", "fechaProcedimiento",
	}
	diagnosisAliases   = []string{"DIAGNOSTICO_PRINCIPAL_CIE", "codDiagnosticoPrincipal", "diagnosticoPrincipal"}
	cupsAliases        = []string{"CODIGO_CUPS", "codProcedimiento", "codConsulta"}
	productAliases     = []string{"CODIGO_PRODUCTO", "codTecnologiaSalud", "codigoProducto"}
	serviceTypeAliases = []string{"TIPO_SERVICIO", "tipoServicio", "grupoServicios"}
)

func firstOf(fields map[string]string, aliases []string) string {
	for _, alias := range aliases {
		if value, ok := fields[alias]; ok && value != "" {
			return value
		}
	}
	return ""
}

// viewFromDelimited projects a raw delimited record through the position
// table of its record type. Consultation records reuse the diagnosis as
// the corpus grouping key but never treat it as a procedure code, so the
// cups slot stays empty for them.
func viewFromDelimited(recordType string, fields []string) recordView {
	provider, docType, docNumber, birthDate, sex, serviceDate, procedure, diagnosis := schema.CorpusFields(recordType, fields)
	view := recordView{
		provider:    provider,
		docType:     docType,
		docNumber:   docNumber,
		birthDate:   birthDate,
		sex:         sex,
		serviceDate: serviceDate,
		procedure:   procedure,
		diagnosis:   diagnosis,
	}
	switch recordType {
	case "AP":
		view.cups = procedure
	case "AM":
		if len(fields) > 1 {
			view.product = fields[1]
		}
	}
	return view
}

// viewFromFields projects a structured (JSON/XML) record through the
// alias lists.
func viewFromFields(fields map[string]string) recordView {
	view := recordView{
		provider:    firstOf(fields, providerAliases),
		docType:     firstOf(fields, docTypeAliases),
		docNumber:   firstOf(fields, docNumberAliases),
		birthDate:   firstOf(fields, birthDateAliases),
		sex:         firstOf(fields, sexAliases),
		serviceDate: firstOf(fields, serviceDateAliases),
		diagnosis:   firstOf(fields, diagnosisAliases),
		cups:        firstOf(fields, cupsAliases),
		product:     firstOf(fields, productAliases),
		serviceType: firstOf(fields, serviceTypeAliases),
	}
	view.procedure = view.cups
	if view.procedure == "" {
		view.procedure = view.diagnosis
	}
	return view
}

func (v recordView) corpusRecord(line int) CorpusRecord {
	return CorpusRecord{
		Line:        line,
		Provider:    v.provider,
		DocType:     v.docType,
		DocNumber:   v.docNumber,
		Sex:         v.sex,
		BirthDate:   v.birthDate,
		ServiceDate: v.serviceDate,
		Procedure:   v.procedure,
		Diagnosis:   v.diagnosis,
	}
}
