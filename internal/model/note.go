package model

import (
	"encoding/json"
	"time"
)

type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChannelID uint      `gorm:"not null;index" json:"channel_id"`
	Title     string    `gorm:"size:256;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Sources   string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SourceList returns the parsed citation list; empty on parse error.
func (n *Note) SourceList() []Source {
	if n.Sources == "" {
		return nil
	}
	var list []Source
	_ = json.Unmarshal([]byte(n.Sources), &list)
	return list
}

// SetSources stores the citation list as JSON.
func (n *Note) SetSources(list []Source) {
	if len(list) == 0 {
		n.Sources = ""
		return
	}
	b, _ := json.Marshal(list)
	n.Sources = string(b)
}
