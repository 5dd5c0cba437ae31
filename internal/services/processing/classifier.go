package processing

import (
	"fmt"
	"sort"
	"strings"

	"fileflow-backend/internal/models"
	"fileflow-backend/internal/services/validation"
)

type FailureRecord struct {
	ErrorType string
	Detail    models.FailureDetail
}

// Classification is the per-file verdict, ready to be persisted.
type Classification struct {
	Status     string
	FailedRows []int
	PassedRows []int
	Failures   []FailureRecord
	Successes  []validation.RowData
}

// Report keeps the raw validator output of the stages that failed.
type Report struct {
	Template  *validation.TemplateDetail
	NullCheck []validation.NullRow
	DataTypes map[string][]validation.TypeRow
}

func (r Report) Empty() bool {
	return r.Template == nil && len(r.NullCheck) == 0 && len(r.DataTypes) == 0
}

// Classify merges validator results. Template problems fail the file but do
// not fail any row; every row-level violation fails its row and yields its
// own failure record.
func Classify(
	table *validation.Table,
	template validation.TemplateResult,
	nulls validation.NullResult,
	types validation.TypeResult,
) (Classification, Report) {
	var c Classification
	var report Report

	if template.Status != validation.StatusSuccess {
		detail := template.Details
		report.Template = &detail
		c.Failures = append(c.Failures, templateFailures(detail)...)
	}

	failed := make(map[int]struct{})

	if nulls.Status != validation.StatusSuccess {
		report.NullCheck = nulls.Rows
		for _, nr := range nulls.Rows {
			failed[nr.Row] = struct{}{}
			c.Failures = append(c.Failures, FailureRecord{
				ErrorType: models.ErrorTypeNullCheck,
				Detail: models.FailureDetail{
					Message:     fmt.Sprintf("Null value in column(s): %s at row %d", strings.Join(nr.NullColumns, ", "), nr.Row),
					Row:         nr.Row,
					NullColumns: nr.NullColumns,
					Data:        nr.Data,
				},
			})
		}
	}

	if types.Status != validation.StatusSuccess {
		report.DataTypes = types.Errors
		for _, kind := range validation.TypeErrorKinds {
			for _, tr := range types.Errors[kind] {
				failed[tr.Row] = struct{}{}
				c.Failures = append(c.Failures, FailureRecord{
					ErrorType: kind,
					Detail: models.FailureDetail{
						Message: fmt.Sprintf("%s at row %d", kind, tr.Row),
						Row:     tr.Row,
						Data:    tr.Data,
					},
				})
			}
		}
	}

	for _, row := range table.Rows {
		n := row.Number()
		if _, ok := failed[n]; ok {
			continue
		}
		c.PassedRows = append(c.PassedRows, n)
		c.Successes = append(c.Successes, row.Data())
	}
	for n := range failed {
		c.FailedRows = append(c.FailedRows, n)
	}
	sort.Ints(c.FailedRows)

	c.Status = models.StatusSuccess
	if len(c.FailedRows) > 0 || report.Template != nil {
		c.Status = models.StatusFailed
	}
	return c, report
}

func templateFailures(detail validation.TemplateDetail) []FailureRecord {
	var out []FailureRecord
	for _, col := range detail.MissingColumns {
		out = append(out, FailureRecord{
			ErrorType: models.ErrorTypeTemplate,
			Detail:    models.FailureDetail{Message: "missing column: " + col},
		})
	}
	for _, col := range detail.ExtraColumns {
		out = append(out, FailureRecord{
			ErrorType: models.ErrorTypeTemplate,
			Detail:    models.FailureDetail{Message: "extra column: " + col},
		})
	}
	if detail.OrderMismatch {
		out = append(out, FailureRecord{
			ErrorType: models.ErrorTypeTemplate,
			Detail:    models.FailureDetail{Message: "order mismatch"},
		})
	}
	return out
}
