package model

import "time"

const (
	DocumentStatusUploading  = "uploading"
	DocumentStatusProcessing = "processing"
	DocumentStatusReady      = "ready"
	DocumentStatusFailed     = "failed"
)

type Document struct {
	ID             string    `gorm:"size:36;primaryKey" json:"id"`
	ChannelID      uint      `gorm:"not null;index" json:"channel_id"`
	ExternalFileID string    `gorm:"size:256" json:"external_file_id,omitempty"`
	OperationID    string    `gorm:"size:256" json:"-"`
	Filename       string    `gorm:"size:256;not null" json:"filename"`
	SizeBytes      int64     `gorm:"not null" json:"size_bytes"`
	MimeType       string    `gorm:"size:128" json:"mime_type"`
	Status         string    `gorm:"size:16;not null;index" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}
