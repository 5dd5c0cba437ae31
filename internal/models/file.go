package models

import "time"

const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusError   = "error"

	RoleAdmin = "admin"
	RoleUser  = "user"
)

// FileRecord is one uploaded file. Processed is nil until a pipeline run
// classifies the file.
type FileRecord struct {
	FileID      string     `json:"file_id" gorm:"column:file_id;primaryKey"`
	Filename    string     `json:"filename" gorm:"index"`
	UserID      string     `json:"userid" gorm:"column:userid"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	Processed   *bool      `json:"processed" gorm:"index"`
	ProcessedAt *time.Time `json:"processed_at" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (FileRecord) TableName() string {
	return "files"
}

// Status maps the nullable processed flag onto pending/success/failed.
func (f *FileRecord) Status() string {
	switch {
	case f.Processed == nil:
		return StatusPending
	case *f.Processed:
		return StatusSuccess
	default:
		return StatusFailed
	}
}
