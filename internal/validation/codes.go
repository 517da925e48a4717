package validation

import "strings"

// Code families used by the cross-field clinical rules. Prefix matching
// follows the chapter structure of the legacy diagnosis catalog.

// Obstetric and pregnancy-related diagnosis prefixes (chapter O plus the
// Z32-Z39 supervision codes). Incompatible with male patients.
var pregnancyDiagnosisPrefixes = []string{
	"O00", "O01", "O02", "O03", "O04", "O05", "O06", "O07", "O08", "O09",
	"O10", "O11", "O12", "O13", "O14", "O15", "O16", "O20", "O21", "O22",
	"O23", "O24", "O25", "O26", "O28", "O29", "O30", "O31", "O32", "O33",
	"O34", "O35", "O36", "O40", "O41", "O42", "O43", "O44", "O45", "O46",
	"O47", "O48", "O60", "O61", "O62", "O63", "O64", "O65", "O66", "O67",
	"O68", "O69", "O70", "O71", "O72", "O73", "O74", "O75", "O80", "O81",
	"O82", "O83", "O84", "O85", "O86", "O87", "O88", "O89", "O90", "O91",
	"O92", "O94", "O95", "O96", "O97", "O98", "O99", "Z32", "Z33", "Z34",
	"Z35", "Z36", "Z37", "Z38", "Z39",
}

// Male-specific diagnosis prefixes (prostate and male genital disorders).
// Incompatible with female patients.
var maleDiagnosisPrefixes = []string{
	"C61", "N40", "N41", "N42", "N43", "N44", "N45", "N46", "N47", "N48", "N49", "N50",
}

// Perinatal-condition diagnosis prefixes, advisory on adult patients.
var pediatricDiagnosisPrefixes = []string{
	"P00", "P01", "P02", "P03", "P04", "P05", "P07", "P08", "P10", "P11",
	"P12", "P13", "P14", "P15", "P20", "P21", "P22", "P23", "P24", "P25",
	"P26", "P27", "P28", "P29", "P35", "P36", "P37", "P38", "P39", "P50",
	"P51", "P52", "P53", "P54", "P55", "P56", "P57", "P58", "P59", "P60",
	"P61", "P70", "P71", "P72", "P74", "P75", "P76", "P77", "P78", "P80",
	"P81", "P83", "P90", "P91", "P92", "P93", "P94", "P95", "P96",
}

// Senility, advisory below the elderly threshold.
var geriatricDiagnosisPrefixes = []string{"R54"}

// Dementia family, advisory on young patients.
var dementiaDiagnosisPrefixes = []string{"F03", "G30", "G31"}

// Procedure code families (CUPS prefixes).
var (
	obstetricProcedurePrefixes      = []string{"869", "870", "871", "872", "873", "874"}
	maleProcedurePrefixes           = []string{"770", "771", "772"}
	cardiovascularProcedurePrefixes = []string{"373", "374", "375", "376"}
)

// Mandatory procedure codes per clinical event kind, checked as an
// advisory completeness rule.
var mandatoryCUPSByEvent = map[string][]string{
	"urgencia":        {"890201", "890202"},
	"control":         {"890301", "890302"},
	"hospitalizacion": {"890401"},
}

// Age thresholds for the advisory age-diagnosis rules.
const (
	adultAgeThreshold   = 18
	elderlyAgeThreshold = 60
	dementiaAgeFloor    = 50
)

func hasAnyPrefix(code string, prefixes []string) bool {
	upper := strings.ToUpper(code)
	for _, prefix := range prefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}
