package validation

import "slices"

// ExpectedColumns is the upload template, in order.
var ExpectedColumns = []string{
	"sno", "name", "age", "gender",
	"datetime", "city", "state", "email", "contact_no", "occupation",
}

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

type TemplateDetail struct {
	MissingColumns []string `json:"missing_columns,omitempty"`
	ExtraColumns   []string `json:"extra_columns,omitempty"`
	OrderMismatch  bool     `json:"order_mismatch,omitempty"`
}

type TemplateResult struct {
	Status  string
	Details TemplateDetail
}

func ValidateTemplate(found []string) TemplateResult {
	return validateTemplate(found, ExpectedColumns)
}

func validateTemplate(found, expected []string) TemplateResult {
	var details TemplateDetail
	for _, col := range expected {
		if !slices.Contains(found, col) {
			details.MissingColumns = append(details.MissingColumns, col)
		}
	}
	for _, col := range found {
		if !slices.Contains(expected, col) {
			details.ExtraColumns = append(details.ExtraColumns, col)
		}
	}
	details.OrderMismatch = !slices.Equal(found, expected)

	if len(details.MissingColumns) == 0 && len(details.ExtraColumns) == 0 && !details.OrderMismatch {
		return TemplateResult{Status: StatusSuccess}
	}
	return TemplateResult{Status: StatusFailed, Details: details}
}
