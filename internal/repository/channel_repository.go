package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"notebase/internal/model"
)

type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

func (r *ChannelRepository) Create(channel *model.Channel) error {
	if err := r.db.Create(channel).Error; err != nil {
		return fmt.Errorf("create channel failed: %w", err)
	}
	return nil
}

// GetByID returns the channel or a wrapped gorm.ErrRecordNotFound; callers
// match with errors.Is.
func (r *ChannelRepository) GetByID(id uint) (*model.Channel, error) {
	var channel model.Channel
	if err := r.db.First(&channel, id).Error; err != nil {
		return nil, fmt.Errorf("get channel failed: %w", err)
	}
	return &channel, nil
}

func (r *ChannelRepository) GetByStoreID(storeID string) (*model.Channel, error) {
	var channel model.Channel
	if err := r.db.Where("store_id = ?", storeID).First(&channel).Error; err != nil {
		return nil, fmt.Errorf("get channel by store id failed: %w", err)
	}
	return &channel, nil
}

func (r *ChannelRepository) List(limit, offset int) ([]model.Channel, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.db.Model(&model.Channel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count channels failed: %w", err)
	}

	var channels []model.Channel
	if err := r.db.Order("last_accessed_at DESC").Limit(limit).Offset(offset).Find(&channels).Error; err != nil {
		return nil, 0, fmt.Errorf("list channels failed: %w", err)
	}
	return channels, total, nil
}

// ListAll returns every channel; used by the lifecycle sweep and admin stats.
func (r *ChannelRepository) ListAll() ([]model.Channel, error) {
	var channels []model.Channel
	if err := r.db.Find(&channels).Error; err != nil {
		return nil, fmt.Errorf("list all channels failed: %w", err)
	}
	return channels, nil
}

func (r *ChannelRepository) Update(channel *model.Channel) error {
	if err := r.db.Save(channel).Error; err != nil {
		return fmt.Errorf("update channel failed: %w", err)
	}
	return nil
}

// Touch bumps the channel's last-accessed timestamp, which feeds the
// inactivity classification.
func (r *ChannelRepository) Touch(id uint) error {
	if err := r.db.Model(&model.Channel{}).Where("id = ?", id).
		Update("last_accessed_at", time.Now()).Error; err != nil {
		return fmt.Errorf("touch channel failed: %w", err)
	}
	return nil
}

// DeleteCascade removes the channel and everything it owns in one
// transaction: documents, chat messages, notes, then the channel row.
// The ordering is explicit rather than delegated to engine-level cascade
// triggers.
func (r *ChannelRepository) DeleteCascade(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ?", id).Delete(&model.Document{}).Error; err != nil {
			return fmt.Errorf("delete channel documents failed: %w", err)
		}
		if err := tx.Where("channel_id = ?", id).Delete(&model.ChatMessage{}).Error; err != nil {
			return fmt.Errorf("delete channel messages failed: %w", err)
		}
		if err := tx.Where("channel_id = ?", id).Delete(&model.Note{}).Error; err != nil {
			return fmt.Errorf("delete channel notes failed: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&model.Channel{})
		if res.Error != nil {
			return fmt.Errorf("delete channel failed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cascade delete channel failed: %w", err)
	}
	return nil
}
