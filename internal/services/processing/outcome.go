package processing

import (
	"fmt"

	"fileflow-backend/internal/models"
	"fileflow-backend/internal/services/validation"
)

const (
	StageTemplate  = "template"
	StageNullCheck = "null_check"
	StageDataType  = "data_type_check"
)

// Outcome is the result of one pipeline run over one file. Status "failed"
// is a normal result; "error" means the file could not be processed at all.
type Outcome struct {
	FileID     string
	Status     string
	Report     Report
	FailedRows int
	PassedRows int
	Message    string
}

type NullSummary struct {
	Row         int      `json:"row"`
	NullColumns []string `json:"null_columns"`
}

type TypeSummary struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

func newOutcome(fileID string, c Classification, report Report) Outcome {
	o := Outcome{
		FileID:     fileID,
		Status:     c.Status,
		Report:     report,
		FailedRows: len(c.FailedRows),
		PassedRows: len(c.PassedRows),
	}
	if c.Status == models.StatusFailed {
		o.Message = fmt.Sprintf("%d row(s) failed, %d row(s) passed", o.FailedRows, o.PassedRows)
	} else {
		o.Message = "All validations passed"
	}
	return o
}

func errorOutcome(fileID string, err error) Outcome {
	return Outcome{FileID: fileID, Status: models.StatusError, Message: err.Error()}
}

// Summary keys errors by stage and leaves the row contents out.
func (o Outcome) Summary() map[string]any {
	if o.Report.Empty() {
		return nil
	}
	out := make(map[string]any)
	if o.Report.Template != nil {
		out[StageTemplate] = *o.Report.Template
	}
	if len(o.Report.NullCheck) > 0 {
		rows := make([]NullSummary, 0, len(o.Report.NullCheck))
		for _, nr := range o.Report.NullCheck {
			rows = append(rows, NullSummary{Row: nr.Row, NullColumns: nr.NullColumns})
		}
		out[StageNullCheck] = rows
	}
	if len(o.Report.DataTypes) > 0 {
		kinds := make(map[string][]TypeSummary, len(o.Report.DataTypes))
		for _, kind := range validation.TypeErrorKinds {
			rows, ok := o.Report.DataTypes[kind]
			if !ok {
				continue
			}
			for _, tr := range rows {
				kinds[kind] = append(kinds[kind], TypeSummary{Row: tr.Row, Column: tr.Column, Value: tr.Value})
			}
		}
		out[StageDataType] = kinds
	}
	return out
}

func (o Outcome) Classified() models.FileClassified {
	return models.FileClassified{
		FileID:  o.FileID,
		Status:  o.Status,
		Errors:  o.Summary(),
		Message: o.Message,
	}
}
