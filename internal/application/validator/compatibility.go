package validator

import "github.com/sheetfill/engine/pkg/models"

// expectedPairings declares, for each operator, the dataTypes it is a
// natural fit for. A column whose operatorType/dataType
// pair falls outside this set still dispatches — the mismatch only produces
// a COMPATIBILITY NOTES warning appended to the contextual prompt.
var expectedPairings = map[models.OperatorType]map[models.DataType]bool{
	models.OperatorGoogleSearch: {
		models.DataTypeURL:       true,
		models.DataTypeShortText: true,
		models.DataTypeLongText:  true,
	},
	models.OperatorURLContext: {
		models.DataTypeLongText: true,
		models.DataTypeShortText: true,
	},
	models.OperatorStructuredOutput: {
		models.DataTypeJSON:      true,
		models.DataTypeShortText: true,
		models.DataTypeNumber:    true,
		models.DataTypeCurrency:  true,
		models.DataTypeDate:      true,
		models.DataTypeBoolean:   true,
		models.DataTypeEmail:     true,
		models.DataTypePerson:    true,
		models.DataTypeCompany:   true,
	},
	models.OperatorFunctionCalling: {
		models.DataTypeJSON:      true,
		models.DataTypeShortText: true,
		models.DataTypeLongText:  true,
	},
	models.OperatorSimilarityExpand: {
		models.DataTypeList:      true,
		models.DataTypeShortText: true,
	},
	models.OperatorAcademicSearch: {
		models.DataTypeURL:      true,
		models.DataTypeLongText: true,
	},
}

// CompatibilityWarning returns a human-readable warning when operatorType is
// an unusual fit for dataType, or "" when the pairing is expected or
// operatorType is unset (the seed column case).
func CompatibilityWarning(operatorType models.OperatorType, dataType models.DataType) string {
	if operatorType == "" {
		return ""
	}
	pairings, known := expectedPairings[operatorType]
	if !known || pairings[dataType] {
		return ""
	}
	return "operator " + string(operatorType) + " is an unusual fit for dataType " + string(dataType) + "; expect looser format adherence"
}
