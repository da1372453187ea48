package model

import "time"

// Channel is the local metadata row for an externally-owned file search store.
// FileCount and SizeBytes always equal the aggregate over the channel's live
// documents; the document repository moves them inside the same transaction
// as the document row.
type Channel struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	StoreID        string    `gorm:"size:128;not null;uniqueIndex" json:"store_id"`
	Name           string    `gorm:"size:256;not null" json:"name"`
	Description    string    `gorm:"size:1024" json:"description"`
	FileCount      int       `gorm:"not null;default:0" json:"file_count"`
	SizeBytes      int64     `gorm:"not null;default:0" json:"size_bytes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	LastAccessedAt time.Time `gorm:"index" json:"last_accessed_at"`
}
