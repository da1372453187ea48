package model

import (
	"encoding/json"
	"time"
)

// ChatMessage is one entry in a channel's append-only chat history.
// Sources is stored as a JSON array for portability across databases.
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChannelID uint      `gorm:"not null;index" json:"channel_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Sources   string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SourceList returns the parsed citation list; empty on parse error.
func (m *ChatMessage) SourceList() []Source {
	if m.Sources == "" {
		return nil
	}
	var list []Source
	_ = json.Unmarshal([]byte(m.Sources), &list)
	return list
}

// SetSources stores the citation list as JSON.
func (m *ChatMessage) SetSources(list []Source) {
	if len(list) == 0 {
		m.Sources = ""
		return
	}
	b, _ := json.Marshal(list)
	m.Sources = string(b)
}
