package schema

// CorpusPositions maps the semantic fields the corpus evaluator needs onto
// field indexes of a delimited record. An index of -1 marks the field as
// absent for that record type.
type CorpusPositions struct {
	Provider    int
	DocType     int
	DocNumber   int
	BirthDate   int
	Sex         int
	ServiceDate int
	Procedure   int
	Diagnosis   int
}

var corpusPositions = map[string]CorpusPositions{
	// For AC the primary diagnosis doubles as the service grouping key:
	// identical consultations for the same patient inside the duplicate
	// window are as suspicious as repeated procedures.
	"AC": {Provider: 0, DocType: 1, DocNumber: 2, BirthDate: -1, Sex: -1, ServiceDate: 3, Procedure: 4, Diagnosis: 4},
	"AP": {Provider: 0, DocType: 1, DocNumber: 2, BirthDate: -1, Sex: -1, ServiceDate: 3, Procedure: 4, Diagnosis: -1},
	"US": {Provider: -1, DocType: 0, DocNumber: 1, BirthDate: 2, Sex: 3, ServiceDate: -1, Procedure: -1, Diagnosis: -1},
	"AM": {Provider: 0, DocType: -1, DocNumber: -1, BirthDate: -1, Sex: -1, ServiceDate: -1, Procedure: 1, Diagnosis: -1},
}

// PositionsForType returns the corpus field positions for a record type.
// Types without an entry contribute nothing to corpus rules.
func PositionsForType(code string) (CorpusPositions, bool) {
	p, ok := corpusPositions[code]
	return p, ok
}

func fieldAt(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

// CorpusFields extracts the semantic corpus fields from a raw delimited
// record of the given type.
func CorpusFields(code string, fields []string) (provider, docType, docNumber, birthDate, sex, serviceDate, procedure, diagnosis string) {
	p, ok := PositionsForType(code)
	if !ok {
		return
	}
	provider = fieldAt(fields, p.Provider)
	docType = fieldAt(fields, p.DocType)
	docNumber = fieldAt(fields, p.DocNumber)
	birthDate = fieldAt(fields, p.BirthDate)
	sex = fieldAt(fields, p.Sex)
	serviceDate = fieldAt(fields, p.ServiceDate)
	procedure = fieldAt(fields, p.Procedure)
	diagnosis = fieldAt(fields, p.Diagnosis)
	return
}
