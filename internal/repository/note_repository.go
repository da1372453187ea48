package repository

import (
	"fmt"

	"gorm.io/gorm"

	"notebase/internal/model"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(note *model.Note) error {
	if err := r.db.Create(note).Error; err != nil {
		return fmt.Errorf("create note failed: %w", err)
	}
	return nil
}

func (r *NoteRepository) GetByID(id uint) (*model.Note, error) {
	var note model.Note
	if err := r.db.First(&note, id).Error; err != nil {
		return nil, fmt.Errorf("get note failed: %w", err)
	}
	return &note, nil
}

func (r *NoteRepository) ListByChannelID(channelID uint, limit, offset int) ([]model.Note, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.db.Model(&model.Note{}).Where("channel_id = ?", channelID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count notes failed: %w", err)
	}

	var notes []model.Note
	if err := r.db.Where("channel_id = ?", channelID).
		Order("updated_at DESC").Limit(limit).Offset(offset).Find(&notes).Error; err != nil {
		return nil, 0, fmt.Errorf("list notes failed: %w", err)
	}
	return notes, total, nil
}

func (r *NoteRepository) CountAll() (int64, error) {
	var total int64
	if err := r.db.Model(&model.Note{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count notes failed: %w", err)
	}
	return total, nil
}

func (r *NoteRepository) Update(note *model.Note) error {
	if err := r.db.Save(note).Error; err != nil {
		return fmt.Errorf("update note failed: %w", err)
	}
	return nil
}

func (r *NoteRepository) Delete(id uint) error {
	res := r.db.Where("id = ?", id).Delete(&model.Note{})
	if res.Error != nil {
		return fmt.Errorf("delete note failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete note failed: %w", gorm.ErrRecordNotFound)
	}
	return nil
}
