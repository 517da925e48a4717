package validation

// RuleCategory groups rules by the kind of check they perform.
type RuleCategory string

const (
	CategoryStructure        RuleCategory = "structure"
	CategoryFormat           RuleCategory = "format"
	CategoryBusiness         RuleCategory = "business"
	CategoryClinicalCoherence RuleCategory = "clinical_coherence"
	CategoryPatternDetection RuleCategory = "pattern_detection"
	CategoryFraudDetection   RuleCategory = "fraud_detection"
)

// RuleDefinition is the registry entry for one validation rule: identity,
// scope, severity and the normative reference it implements. The registry
// is read-only documentation surfaced through the rules endpoint; the
// evaluators implement the behavior.
type RuleDefinition struct {
	ID          string       `json:"id"`
	RecordType  string       `json:"record_type"`
	Field       string       `json:"field"`
	Severity    Severity     `json:"severity"`
	Category    RuleCategory `json:"category"`
	Description string       `json:"description"`
	Reference   string       `json:"reference"`
}

// Rules is the registry of implemented validation rules.
var Rules = []RuleDefinition{
	{
		ID: "CT-001", RecordType: "CT", Field: "TIPO_REGISTRO",
		Severity: SeverityBlocking, Category: CategoryStructure,
		Description: "El tipo de registro de control debe ser 1.",
		Reference:   "Resolución 2275 de 2023 - Anexo Técnico; Resolución 1884 de 2024",
	},
	{
		ID: "CT-002", RecordType: "CT", Field: "FECHA_GENERACION",
		Severity: SeverityBlocking, Category: CategoryFormat,
		Description: "Fecha de generación en formato YYYY-MM-DD, no posterior al envío.",
		Reference:   "Resolución 2275 de 2023 - Anexo Técnico",
	},
	{
		ID: "US-001", RecordType: "US", Field: "TIPO_DOCUMENTO_USUARIO",
		Severity: SeverityBlocking, Category: CategoryBusiness,
		Description: "Tipo de documento en catálogo DIAN/MinSalud (CC, TI, RC, CE, PA, NUIP, MS).",
		Reference:   "Catálogos oficiales DIAN/MinSalud",
	},
	{
		ID: "AC-012", RecordType: "AC", Field: "DIAGNOSTICO_PRINCIPAL_CIE",
		Severity: SeverityBlocking, Category: CategoryBusiness,
		Description: "Existencia y vigencia del diagnóstico principal en catálogos CIE-10/CIE-11.",
		Reference:   "Resolución 1442/1657 de 2024",
	},
	{
		ID: "CIE11_001", RecordType: "*", Field: "DIAGNOSTICO_PRINCIPAL_CIE",
		Severity: SeverityBlocking, Category: CategoryBusiness,
		Description: "Antes del inicio de CIE-11 solo se aceptan códigos CIE-10.",
		Reference:   "Resolución 1442/1657 de 2024",
	},
	{
		ID: "CIE11_002", RecordType: "*", Field: "DIAGNOSTICO_PRINCIPAL_CIE",
		Severity: SeverityBlocking, Category: CategoryBusiness,
		Description: "Tras el fin de la coexistencia solo se aceptan códigos CIE-11.",
		Reference:   "Resolución 1442/1657 de 2024",
	},
	{
		ID: "CIE11_004", RecordType: "*", Field: "DIAGNOSTICO_PRINCIPAL_CIE",
		Severity: SeverityBlocking, Category: CategoryClinicalCoherence,
		Description: "Compatibilidad del diagnóstico con el sexo del paciente.",
		Reference:   "Resolución 1442/1657 de 2024",
	},
	{
		ID: "CIE11_005", RecordType: "*", Field: "DIAGNOSTICO_PRINCIPAL_CIE",
		Severity: SeverityBlocking, Category: CategoryClinicalCoherence,
		Description: "Correspondencia clínica entre diagnóstico y procedimiento obstétrico.",
		Reference:   "Resolución 1442/1657 de 2024",
	},
	{
		ID: "AP-001", RecordType: "AP", Field: "CODIGO_CUPS",
		Severity: SeverityBlocking, Category: CategoryBusiness,
		Description: "Existencia en catálogo CUPS y vigencia en la fecha del servicio.",
		Reference:   "Resolución 2641 de 2024",
	},
	{
		ID: "R2641-D002", RecordType: "AP", Field: "CODIGO_CUPS",
		Severity: SeverityBlocking, Category: CategoryBusiness,
		Description: "El CUPS debe estar vigente en la fecha del servicio.",
		Reference:   "Resolución 2641 de 2024",
	},
	{
		ID: "R2641-D003", RecordType: "AP", Field: "CODIGO_CUPS",
		Severity: SeverityBlocking, Category: CategoryBusiness,
		Description: "El CUPS debe pertenecer al tipo de servicio reportado.",
		Reference:   "Resolución 2641 de 2024",
	},
	{
		ID: "R2641-D004", RecordType: "AP", Field: "CODIGO_CUPS",
		Severity: SeverityAdvisory, Category: CategoryBusiness,
		Description: "El CUPS debería tener valor tarifario definido.",
		Reference:   "Resolución 2641 de 2024",
	},
	{
		ID: "R2641-D005", RecordType: "AP", Field: "CODIGO_CUPS",
		Severity: SeverityBlocking, Category: CategoryClinicalCoherence,
		Description: "Coherencia entre el grupo etario permitido y el CUPS.",
		Reference:   "Resolución 2641 de 2024",
	},
	{
		ID: "R2641-D006", RecordType: "AP", Field: "CODIGO_CUPS",
		Severity: SeverityBlocking, Category: CategoryClinicalCoherence,
		Description: "Coherencia entre el sexo del paciente y el CUPS.",
		Reference:   "Resolución 2641 de 2024",
	},
	{
		ID: "R2641-D007", RecordType: "AP", Field: "CODIGO_CUPS",
		Severity: SeverityBlocking, Category: CategoryClinicalCoherence,
		Description: "El CUPS debe estar asociado a un diagnóstico CIE permitido.",
		Reference:   "Resolución 2641 de 2024",
	},
	{
		ID: "R2641-D009", RecordType: "AP", Field: "CODIGO_CUPS",
		Severity: SeverityBlocking, Category: CategoryBusiness,
		Description: "El CUPS reportado debe tener tipo de finalidad asignado.",
		Reference:   "Resolución 2641 de 2024",
	},
	{
		ID: "R2641-D010", RecordType: "AP", Field: "CODIGO_CUPS",
		Severity: SeverityAdvisory, Category: CategoryBusiness,
		Description: "Los CUPS obligatorios según tipo de evento deben estar presentes.",
		Reference:   "Resolución 2641 de 2024",
	},
	{
		ID: "AM-001", RecordType: "AM", Field: "CODIGO_PRODUCTO",
		Severity: SeverityBlocking, Category: CategoryBusiness,
		Description: "Código de producto con longitud 3-20 y solo alfanuméricos o guiones.",
		Reference:   "Catálogos POS/GTIN",
	},
	{
		ID: "AI-PAT-001", RecordType: "*", Field: "CODIGO_CUPS",
		Severity: SeverityAdvisory, Category: CategoryPatternDetection,
		Description: "Procedimientos repetidos para el mismo usuario en períodos cortos.",
		Reference:   "RIPS validaciones de patrones",
	},
	{
		ID: "AI-PAT-002", RecordType: "*", Field: "CODIGO_PRESTADOR",
		Severity: SeverityAdvisory, Category: CategoryPatternDetection,
		Description: "Volumen atípico de servicios de un prestador en un día.",
		Reference:   "RIPS validaciones de patrones",
	},
	{
		ID: "AI-FRAUD-002", RecordType: "*", Field: "CODIGO_PRESTADOR",
		Severity: SeverityAdvisory, Category: CategoryFraudDetection,
		Description: "Baja variabilidad de procedimientos facturados por prestador.",
		Reference:   "RIPS validaciones de patrones",
	},
}

// RuleByID looks a rule definition up by its identifier.
func RuleByID(id string) (RuleDefinition, bool) {
	for _, rule := range Rules {
		if rule.ID == id {
			return rule, true
		}
	}
	return RuleDefinition{}, false
}
