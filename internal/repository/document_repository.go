package repository

import (
	"fmt"

	"gorm.io/gorm"

	"notebase/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// CreateWithCounter inserts the document and moves the owning channel's
// file/byte counters in the same transaction. The counter update is an SQL
// expression so a concurrent sweep or delete cannot produce a lost update.
func (r *DocumentRepository) CreateWithCounter(doc *model.Document) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Channel{}).Where("id = ?", doc.ChannelID).
			UpdateColumns(map[string]any{
				"file_count": gorm.Expr("file_count + ?", 1),
				"size_bytes": gorm.Expr("size_bytes + ?", doc.SizeBytes),
			})
		if res.Error != nil {
			return fmt.Errorf("update channel counters failed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("create document failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert document failed: %w", err)
	}
	return nil
}

// DeleteWithCounter removes the document and returns the counters in the
// same transaction.
func (r *DocumentRepository) DeleteWithCounter(doc *model.Document) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", doc.ID).Delete(&model.Document{})
		if res.Error != nil {
			return fmt.Errorf("delete document failed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Model(&model.Channel{}).Where("id = ?", doc.ChannelID).
			UpdateColumns(map[string]any{
				"file_count": gorm.Expr("file_count - ?", 1),
				"size_bytes": gorm.Expr("size_bytes - ?", doc.SizeBytes),
			}).Error; err != nil {
			return fmt.Errorf("update channel counters failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(id string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) ListByChannelID(channelID uint) ([]model.Document, int64, error) {
	var total int64
	if err := r.db.Model(&model.Document{}).Where("channel_id = ?", channelID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count documents failed: %w", err)
	}

	var docs []model.Document
	if err := r.db.Where("channel_id = ?", channelID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, 0, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, total, nil
}

func (r *DocumentRepository) CountAll() (int64, error) {
	var total int64
	if err := r.db.Model(&model.Document{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count documents failed: %w", err)
	}
	return total, nil
}

func (r *DocumentRepository) UpdateStatus(id, status, externalFileID string) error {
	updates := map[string]any{"status": status}
	if externalFileID != "" {
		updates["external_file_id"] = externalFileID
	}
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("update document status failed: %w", err)
	}
	return nil
}
