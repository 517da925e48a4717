// Package mapping translates RIPS field names between the interchange
// JSON layout (Spanish camelCase), the storage layout (English
// snake_case) and the record-type table names. Mappings are defined once
// and treated as read-only configuration.
package mapping

import "strings"

var usersFields = map[string]string{
	"tipoDocumentoIdentificacion": "document_type",
	"numDocumentoIdentificacion":  "document_number",
	"codEntidadAdministradora":    "administrator_entity_code",
	"tipoUsuario":                 "user_type",
	"primerApellido":              "first_surname",
	"segundoApellido":             "second_surname",
	"primerNombre":                "first_name",
	"segundoNombre":               "second_name",
	"edadMedida":                  "age_measure",
	"edad":                        "age",
	"unidadMedidaEdad":            "age_unit",
	"codDepartamento":             "department_code",
	"codMunicipio":                "municipality_code",
	"zonaResidencial":             "residential_zone",
	"fechaNacimiento":             "birth_date",
	"codSexo":                     "sex",
	"consecutivo":                 "consecutive_file",
}

var consultationsFields = map[string]string{
	"consecutivo":                 "consecutive_file",
	"numFactura":                  "invoice_number",
	"codPrestador":                "provider_code",
	"tipoDocumentoIdentificacion": "identification_type",
	"numDocumentoIdentificacion":  "identification_number",
	"fechaInicioAtencion":         "consultation_date",
	"numAutorizacion":             "authorization_number",
	"codConsulta":                 "consultation_code",
	"finalidadTecnologiaSalud":    "consultation_purpose",
	"causaMotivoAtencion":         "external_cause",
	"codDiagnosticoPrincipal":     "primary_diagnosis",
	"codDiagnosticoRelacionado1":  "related_diagnosis_1",
	"codDiagnosticoRelacionado2":  "related_diagnosis_2",
	"codDiagnosticoRelacionado3":  "related_diagnosis_3",
	"tipoDiagnosticoPrincipal":    "primary_diagnosis_type",
	"vrServicio":                  "consultation_value",
	"valorPagoModerador":          "copayment_value",
	"valorNeto":                   "net_payment_value",
}

var proceduresFields = map[string]string{
	"consecutivo":                  "consecutive_file",
	"numFactura":                   "invoice_number",
	"codPrestador":                 "provider_code",
	"tipoDocumentoIdentificacion":  "identification_type",
	"numDocumentoIdentificacion":   "identification_number",
	"fechaInicioAtencion":          "procedure_date",
	"numAutorizacion":              "authorization_number",
	"codProcedimiento":             "procedure_code",
	"modalidadGrupoServicioTecSal": "performance_scope",
	"finalidadTecnologiaSalud":     "procedure_purpose",
	"personalAtencion":             "attending_personnel",
	"codDiagnosticoPrincipal":      "primary_diagnosis",
	"codDiagnosticoRelacionado":    "related_diagnosis",
	"codComplicacion":              "complication",
	"formaRealizacionActoQx":       "surgical_act_performance_form",
	"vrServicio":                   "procedure_value",
}

var medicationsFields = map[string]string{
	"consecutivo":                 "consecutive_file",
	"numFactura":                  "invoice_number",
	"codPrestador":                "provider_code",
	"tipoDocumentoIdentificacion": "identification_type",
	"numDocumentoIdentificacion":  "identification_number",
	"fechaDispensacion":           "consultation_date",
	"numAutorizacion":             "authorization_number",
	"codProducto":                 "medication_code",
	"tipoMedicamento":             "medication_type",
	"nombreProducto":              "generic_name",
	"formaFarmaceutica":           "pharmaceutical_form",
	"concentracion":               "medication_concentration",
	"unidadMedida":                "unit_measure",
	"cantidadRecetada":            "unit_number",
	"vrUnitario":                  "unit_value",
	"vrServicio":                  "total_value",
}

var otherServicesFields = map[string]string{
	"consecutivo":                 "consecutive_file",
	"numFactura":                  "invoice_number",
	"codPrestador":                "provider_code",
	"tipoDocumentoIdentificacion": "identification_type",
	"numDocumentoIdentificacion":  "identification_number",
	"fechaServicio":               "service_date",
	"numAutorizacion":             "authorization_number",
	"codServicio":                 "service_code",
	"nombreServicio":              "service_name",
	"cantidad":                    "quantity",
	"vrUnitario":                  "unit_value",
	"vrServicio":                  "total_value",
}

var emergenciesFields = map[string]string{
	"consecutivo":                 "consecutive_file",
	"numFactura":                  "invoice_number",
	"codPrestador":                "provider_code",
	"tipoDocumentoIdentificacion": "identification_type",
	"numDocumentoIdentificacion":  "identification_number",
	"fechaIngreso":                "admission_date",
	"horaIngreso":                 "admission_time",
	"numAutorizacion":             "authorization_number",
	"causaMotivoAtencion":         "external_cause",
	"codDiagnosticoIngreso":       "admission_diagnosis",
	"codDiagnosticoEgreso":        "discharge_diagnosis",
	"codDiagnosticoRelacionado1":  "related_diagnosis_1",
	"codDiagnosticoRelacionado2":  "related_diagnosis_2",
	"codDiagnosticoRelacionado3":  "related_diagnosis_3",
	"codDiagnosticoRelacionado4":  "related_diagnosis_4",
	"tipoDiagnosticoPrincipal":    "primary_diagnosis_type",
	"vrServicio":                  "service_value",
	"valorPagoModerador":          "copayment_value",
	"valorNeto":                   "net_value",
}

var hospitalizationsFields = map[string]string{
	"consecutivo":                 "consecutive_file",
	"numFactura":                  "invoice_number",
	"codPrestador":                "provider_code",
	"tipoDocumentoIdentificacion": "identification_type",
	"numDocumentoIdentificacion":  "identification_number",
	"viaIngreso":                  "admission_route",
	"fechaIngreso":                "admission_date",
	"horaIngreso":                 "admission_time",
	"numAutorizacion":             "authorization_number",
	"causaMotivoAtencion":         "external_cause",
	"codDiagnosticoIngreso":       "admission_diagnosis",
	"codDiagnosticoEgreso":        "discharge_diagnosis",
	"codDiagnosticoRelacionado1":  "related_diagnosis_1",
	"codDiagnosticoRelacionado2":  "related_diagnosis_2",
	"codDiagnosticoRelacionado3":  "related_diagnosis_3",
	"codDiagnosticoRelacionado4":  "related_diagnosis_4",
	"tipoDiagnosticoPrincipal":    "primary_diagnosis_type",
	"diasEstancia":                "stay_days",
	"tipoEgreso":                  "discharge_type",
	"condicionDestinoUsuario":     "user_destination_condition",
	"causaMuerteObstetrica":       "obstetric_death_cause",
	"fechaEgreso":                 "discharge_date",
	"horaEgreso":                  "discharge_time",
	"vrServicio":                  "service_value",
	"valorPagoModerador":          "copayment_value",
	"valorNeto":                   "net_value",
}

var newbornsFields = map[string]string{
	"consecutivo":                "consecutive_file",
	"numFactura":                 "invoice_number",
	"codPrestador":               "provider_code",
	"tipoDocIdentificacionMadre": "mother_identification_type",
	"numDocIdentificacionMadre":  "mother_identification_number",
	"fechaNacimiento":            "birth_date",
	"horaNacimiento":             "birth_time",
	"edadGestacional":            "gestational_age",
	"controlPrenatal":            "prenatal_control",
	"sexo":                       "sex",
	"pesoNacimiento":             "birth_weight",
	"codDiagnosticoPrincipal":    "primary_diagnosis",
	"codDiagnosticoRelacionado1": "related_diagnosis_1",
	"codDiagnosticoRelacionado2": "related_diagnosis_2",
	"codDiagnosticoRelacionado3": "related_diagnosis_3",
	"causaBasicaMuerte":          "basic_death_cause",
	"fechaMuerte":                "death_date",
	"horaMuerte":                 "death_time",
}

var billingFields = map[string]string{
	"consecutivo":                  "consecutive_file",
	"numFactura":                   "invoice_number",
	"codPrestador":                 "provider_code",
	"fechaExpedicionFactura":       "invoice_issue_date",
	"fechaInicioPeriodo":           "period_start_date",
	"fechaFinPeriodo":              "period_end_date",
	"codEntidadAdministradora":     "administrator_entity_code",
	"nombreEntidadAdministradora":  "administrator_entity_name",
	"numContrato":                  "contract_number",
	"planBeneficios":               "benefits_plan",
	"numPoliza":                    "policy_number",
	"copago":                       "copayment",
	"valorComision":                "commission_value",
	"valorDescuentos":              "discounts_value",
	"valorNetoFactura":             "net_invoice_value",
}

var adjustmentsFields = map[string]string{
	"consecutivo":         "consecutive_file",
	"numFactura":          "invoice_number",
	"codPrestador":        "provider_code",
	"tipoNota":            "note_type",
	"numNota":             "note_number",
	"fechaExpedicionNota": "note_issue_date",
	"codConcepto":         "concept_code",
	"descripcionConcepto": "concept_description",
	"valorAjuste":         "adjustment_value",
}

var controlFields = map[string]string{
	"tipoRegistro":                "record_type",
	"codPrestador":                "provider_code",
	"fechaGeneracion":             "generation_date",
	"archivoRips":                 "rips_file",
	"totalRegistros":              "total_records",
	"codEntidadAdministradora":    "administrator_entity_code",
	"nombreEntidadAdministradora": "administrator_entity_name",
	"numContrato":                 "contract_number",
	"planBeneficios":              "benefits_plan",
	"versionAnexoTecnico":         "technical_annex_version",
}

// FileTypeMappings keys each record type's interchange-to-storage field
// mapping by its two-letter code.
var FileTypeMappings = map[string]map[string]string{
	"US": usersFields,
	"AC": consultationsFields,
	"AP": proceduresFields,
	"AM": medicationsFields,
	"AT": otherServicesFields,
	"AU": emergenciesFields,
	"AH": hospitalizationsFields,
	"AN": newbornsFields,
	"AF": billingFields,
	"AD": adjustmentsFields,
	"CT": controlFields,
}

var tableNames = map[string]string{
	"US": "rips_users",
	"AC": "rips_consultations",
	"AP": "rips_procedures",
	"AM": "rips_medications",
	"AT": "rips_other_services",
	"AU": "rips_emergencies",
	"AH": "rips_hospitalizations",
	"AN": "rips_newborns",
	"AF": "rips_billing",
	"AD": "rips_adjustments",
	"CT": "rips_control",
}

// MapJSONToDB renames interchange field names to their storage names.
// Unmapped fields pass through unchanged; an unknown record type returns
// the input as-is.
func MapJSONToDB(data map[string]interface{}, fileType string) map[string]interface{} {
	fields, ok := FileTypeMappings[fileType]
	if !ok {
		return data
	}
	mapped := make(map[string]interface{}, len(data))
	for name, value := range data {
		if dbName, ok := fields[name]; ok {
			mapped[dbName] = value
			continue
		}
		mapped[name] = value
	}
	return mapped
}

// MapDBToJSON is the inverse of MapJSONToDB.
func MapDBToJSON(data map[string]interface{}, fileType string) map[string]interface{} {
	fields, ok := FileTypeMappings[fileType]
	if !ok {
		return data
	}
	reverse := make(map[string]string, len(fields))
	for jsonName, dbName := range fields {
		reverse[dbName] = jsonName
	}
	mapped := make(map[string]interface{}, len(data))
	for name, value := range data {
		if jsonName, ok := reverse[name]; ok {
			mapped[jsonName] = value
			continue
		}
		mapped[name] = value
	}
	return mapped
}

// TableName returns the storage table for a record type.
func TableName(fileType string) string {
	if table, ok := tableNames[fileType]; ok {
		return table
	}
	return "rips_unknown"
}

// filenameOrder lists the record type markers checked against uploaded
// filenames. US is checked before the service types so "USUARIOS" files
// never match a service marker by accident; AC is the historical default.
var filenameOrder = []string{"US", "AC", "AP", "AM", "AT", "AU", "AH", "AN", "AF", "AD", "CT"}

// RecordTypeFromFilename infers the record type from an uploaded file's
// name by marker substring, defaulting to AC.
func RecordTypeFromFilename(name string) string {
	upper := strings.ToUpper(name)
	for _, code := range filenameOrder {
		if strings.Contains(upper, code) {
			return code
		}
	}
	return "AC"
}
