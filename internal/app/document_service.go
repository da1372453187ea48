package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"notebase/internal/filesearch"
	"notebase/internal/model"
	"notebase/internal/repository"
)

// Types the hosted file-search API can index. Detection is content-based,
// never trusted from the upload's declared Content-Type.
var supportedMIMETypes = map[string]struct{}{
	"application/pdf":    {},
	"text/plain":         {},
	"text/markdown":      {},
	"text/csv":           {},
	"text/html":          {},
	"application/json":   {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

type DocumentService struct {
	docs        *repository.DocumentRepository
	channels    *repository.ChannelRepository
	store       StoreAPI
	capacity    *CapacityService
	answerCache AnswerCache
	maxUpload   int64
}

type UploadInput struct {
	ChannelID uint
	Filename  string
	Data      []byte
}

func NewDocumentService(
	docs *repository.DocumentRepository,
	channels *repository.ChannelRepository,
	store StoreAPI,
	capacity *CapacityService,
	answerCache AnswerCache,
	maxUpload int64,
) *DocumentService {
	return &DocumentService{
		docs:        docs,
		channels:    channels,
		store:       store,
		capacity:    capacity,
		answerCache: answerCache,
		maxUpload:   maxUpload,
	}
}

// Upload validates the file locally, pushes it to the external store, and
// records the document with the channel counters updated in the same
// transaction. Validation order: size, type, quota — all before any
// external call.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*model.Document, error) {
	filename := strings.TrimSpace(input.Filename)
	if filename == "" || len(input.Data) == 0 {
		return nil, ErrInvalidInput
	}
	size := int64(len(input.Data))
	if size > s.maxUpload {
		return nil, ErrFileTooLarge
	}

	detected := mimetype.Detect(input.Data)
	mime := detected.String()
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	if _, ok := supportedMIMETypes[mime]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}

	channel, err := s.channels.GetByID(input.ChannelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	if capErr := s.capacity.CheckCanUpload(channel, size); capErr != nil {
		return nil, capErr
	}

	op, err := s.store.UploadFile(ctx, channel.StoreID, filename, bytes.NewReader(input.Data))
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		ID:          uuid.NewString(),
		ChannelID:   channel.ID,
		OperationID: op.Name,
		Filename:    filename,
		SizeBytes:   size,
		MimeType:    mime,
		Status:      model.DocumentStatusProcessing,
	}
	if op.Done {
		doc.Status = model.DocumentStatusReady
		doc.ExternalFileID = op.FileID
	}

	if err := s.docs.CreateWithCounter(doc); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}

	if s.answerCache != nil {
		_ = s.answerCache.InvalidateStore(ctx, channel.StoreID)
	}
	return doc, nil
}

// Get returns a document, first refreshing an in-flight processing status
// from the external operation.
func (s *DocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.docs.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	if doc.Status == model.DocumentStatusProcessing && doc.OperationID != "" {
		op, opErr := s.store.GetOperation(ctx, doc.OperationID)
		if opErr == nil && op.Done {
			status := model.DocumentStatusReady
			if op.Error != "" {
				status = model.DocumentStatusFailed
			}
			if err := s.docs.UpdateStatus(doc.ID, status, op.FileID); err == nil {
				doc.Status = status
				doc.ExternalFileID = op.FileID
			}
		}
	}
	return doc, nil
}

func (s *DocumentService) ListByChannel(channelID uint) ([]model.Document, int64, error) {
	if _, err := s.channels.GetByID(channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrChannelNotFound
		}
		return nil, 0, err
	}
	return s.docs.ListByChannelID(channelID)
}

// Delete removes the file from the external store, then the local row with
// its channel counters decremented. An already-gone external file counts as
// deleted.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.docs.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	channel, err := s.channels.GetByID(doc.ChannelID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if doc.ExternalFileID != "" {
		if err := s.store.DeleteFile(ctx, doc.ExternalFileID); err != nil && !filesearch.IsNotFound(err) {
			return err
		}
	}

	if err := s.docs.DeleteWithCounter(doc); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	if s.answerCache != nil && channel != nil {
		_ = s.answerCache.InvalidateStore(ctx, channel.StoreID)
	}
	return nil
}
