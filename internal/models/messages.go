package models

// FileSubmitted is published by the upload API and consumed by the file worker.
type FileSubmitted struct {
	FileID      string `json:"file_id"`
	Filename    string `json:"filename"`
	FileContent string `json:"file_content"`
}

// FileClassified is published by the file worker once a file has a verdict.
type FileClassified struct {
	FileID  string         `json:"file_id"`
	Status  string         `json:"status"`
	Errors  map[string]any `json:"errors,omitempty"`
	Message string         `json:"message"`
}
