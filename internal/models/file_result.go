package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ErrorTypeTemplate  = "template"
	ErrorTypeNullCheck = "null_check"
	ErrorTypePhone     = "phone_error"
	ErrorTypeDOB       = "dob_error"
	ErrorTypeEmail     = "email_error"
)

// FileFailure is an append-only audit entry: one per violated rule.
type FileFailure struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	FileID      string         `json:"file_id" gorm:"index"`
	ErrorType   string         `json:"error_type" gorm:"index"`
	Errors      datatypes.JSON `json:"errors"`
	ProcessedAt time.Time      `json:"processed_at"`
}

func (FileFailure) TableName() string {
	return "file_failure"
}

// FileSuccess is a passed row, content-addressed by RowHash.
type FileSuccess struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	FileID      string         `json:"file_id" gorm:"index"`
	RowData     datatypes.JSON `json:"row_data"`
	RowHash     string         `json:"row_hash" gorm:"uniqueIndex"`
	ProcessedAt time.Time      `json:"processed_at"`
}

func (FileSuccess) TableName() string {
	return "file_success"
}

// FailureDetail is the JSON stored in FileFailure.Errors.
type FailureDetail struct {
	Message     string         `json:"message"`
	Row         int            `json:"row,omitempty"`
	NullColumns []string       `json:"null_columns,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
}
