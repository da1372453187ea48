package repository

import (
	"fmt"

	"gorm.io/gorm"

	"notebase/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.ChatMessage) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create chat message failed: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListByChannelID(channelID uint, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var messages []model.ChatMessage
	if err := r.db.Where("channel_id = ?", channelID).
		Order("created_at ASC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list chat messages failed: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) CountByChannelID(channelID uint) (int64, error) {
	var total int64
	if err := r.db.Model(&model.ChatMessage{}).Where("channel_id = ?", channelID).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count chat messages failed: %w", err)
	}
	return total, nil
}

func (r *MessageRepository) CountAll() (int64, error) {
	var total int64
	if err := r.db.Model(&model.ChatMessage{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count chat messages failed: %w", err)
	}
	return total, nil
}

func (r *MessageRepository) DeleteByChannelID(channelID uint) error {
	if err := r.db.Where("channel_id = ?", channelID).Delete(&model.ChatMessage{}).Error; err != nil {
		return fmt.Errorf("delete chat messages failed: %w", err)
	}
	return nil
}
