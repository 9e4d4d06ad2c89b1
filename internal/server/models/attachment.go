package models

import "time"

// Attachment upload states.
const (
	UploadStatusPending  = "pending"
	UploadStatusUploaded = "uploaded"
)

// Attachment describes server-side metadata for a file attached to a task.
// The content itself lives in object storage under StorageKey; clients
// upload and download it through presigned URLs.
type Attachment struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"task_id"`
	FileName     string    `json:"filename"`
	StorageKey   string    `json:"-"`
	UploadStatus string    `json:"upload_status"`
	CreatedAt    time.Time `json:"created_at"`
}
