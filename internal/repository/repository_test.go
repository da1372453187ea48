package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"notebase/internal/model"
)

var repoTestDBSeq int

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	repoTestDBSeq++
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", repoTestDBSeq)
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Channel{}, &model.Document{}, &model.ChatMessage{}, &model.Note{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func createChannel(t *testing.T, db *gorm.DB, storeID string) *model.Channel {
	t.Helper()
	channel := &model.Channel{StoreID: storeID, Name: "ch " + storeID, LastAccessedAt: time.Now()}
	if err := NewChannelRepository(db).Create(channel); err != nil {
		t.Fatalf("create channel: %v", err)
	}
	return channel
}

func newDocument(channelID uint, size int64) *model.Document {
	return &model.Document{
		ID:        uuid.NewString(),
		ChannelID: channelID,
		Filename:  "file.pdf",
		SizeBytes: size,
		MimeType:  "application/pdf",
		Status:    model.DocumentStatusReady,
	}
}

func TestCountersTrackDocumentSequence(t *testing.T) {
	db := openTestDB(t)
	channelRepo := NewChannelRepository(db)
	docRepo := NewDocumentRepository(db)
	channel := createChannel(t, db, "stores/counters")

	docs := []*model.Document{
		newDocument(channel.ID, 100),
		newDocument(channel.ID, 250),
		newDocument(channel.ID, 50),
	}
	for _, doc := range docs {
		if err := docRepo.CreateWithCounter(doc); err != nil {
			t.Fatalf("create document: %v", err)
		}
	}

	updated, err := channelRepo.GetByID(channel.ID)
	if err != nil {
		t.Fatalf("reload channel: %v", err)
	}
	if updated.FileCount != 3 || updated.SizeBytes != 400 {
		t.Fatalf("counters = %d files, %d bytes; want 3, 400", updated.FileCount, updated.SizeBytes)
	}

	if err := docRepo.DeleteWithCounter(docs[1]); err != nil {
		t.Fatalf("delete document: %v", err)
	}
	updated, err = channelRepo.GetByID(channel.ID)
	if err != nil {
		t.Fatalf("reload channel: %v", err)
	}
	if updated.FileCount != 2 || updated.SizeBytes != 150 {
		t.Fatalf("counters = %d files, %d bytes; want 2, 150", updated.FileCount, updated.SizeBytes)
	}

	// Deleting the same document twice fails without moving the counters.
	if err := docRepo.DeleteWithCounter(docs[1]); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("double delete: want ErrRecordNotFound, got %v", err)
	}
	updated, err = channelRepo.GetByID(channel.ID)
	if err != nil {
		t.Fatalf("reload channel: %v", err)
	}
	if updated.FileCount != 2 || updated.SizeBytes != 150 {
		t.Fatalf("counters moved on failed delete: %d files, %d bytes", updated.FileCount, updated.SizeBytes)
	}
}

func TestCreateWithCounterMissingChannel(t *testing.T) {
	db := openTestDB(t)
	docRepo := NewDocumentRepository(db)

	err := docRepo.CreateWithCounter(newDocument(12345, 100))
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}

	var count int64
	if err := db.Model(&model.Document{}).Count(&count).Error; err != nil {
		t.Fatalf("count documents: %v", err)
	}
	if count != 0 {
		t.Fatalf("no document row should exist, got %d", count)
	}
}

func TestDeleteCascadeRemovesAllChildRows(t *testing.T) {
	db := openTestDB(t)
	channelRepo := NewChannelRepository(db)
	docRepo := NewDocumentRepository(db)
	messageRepo := NewMessageRepository(db)
	noteRepo := NewNoteRepository(db)

	channel := createChannel(t, db, "stores/cascade")
	other := createChannel(t, db, "stores/other")

	if err := docRepo.CreateWithCounter(newDocument(channel.ID, 10)); err != nil {
		t.Fatalf("create document: %v", err)
	}
	if err := messageRepo.Create(&model.ChatMessage{ChannelID: channel.ID, Role: "user", Content: "hi", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("create message: %v", err)
	}
	if err := noteRepo.Create(&model.Note{ChannelID: channel.ID, Title: "n", Content: "c"}); err != nil {
		t.Fatalf("create note: %v", err)
	}
	if err := noteRepo.Create(&model.Note{ChannelID: other.ID, Title: "keep", Content: "me"}); err != nil {
		t.Fatalf("create other note: %v", err)
	}

	if err := channelRepo.DeleteCascade(channel.ID); err != nil {
		t.Fatalf("cascade delete: %v", err)
	}

	if _, err := channelRepo.GetByID(channel.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("channel should be gone, got %v", err)
	}
	docs, total, err := docRepo.ListByChannelID(channel.ID)
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	if total != 0 || len(docs) != 0 {
		t.Fatalf("documents survived cascade: %d", total)
	}
	count, err := messageRepo.CountByChannelID(channel.ID)
	if err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if count != 0 {
		t.Fatalf("messages survived cascade: %d", count)
	}
	notes, noteTotal, err := noteRepo.ListByChannelID(channel.ID, 0, 0)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if noteTotal != 0 || len(notes) != 0 {
		t.Fatalf("notes survived cascade: %d", noteTotal)
	}

	// The other channel's rows are untouched.
	otherNotes, otherTotal, err := noteRepo.ListByChannelID(other.ID, 0, 0)
	if err != nil {
		t.Fatalf("list other notes: %v", err)
	}
	if otherTotal != 1 || len(otherNotes) != 1 {
		t.Fatalf("other channel notes = %d, want 1", otherTotal)
	}
}

func TestDeleteCascadeMissingChannel(t *testing.T) {
	db := openTestDB(t)
	if err := NewChannelRepository(db).DeleteCascade(98765); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}
}

func TestChannelTouch(t *testing.T) {
	db := openTestDB(t)
	channelRepo := NewChannelRepository(db)

	channel := &model.Channel{StoreID: "stores/touch", Name: "t", LastAccessedAt: time.Now().Add(-48 * time.Hour)}
	if err := channelRepo.Create(channel); err != nil {
		t.Fatalf("create channel: %v", err)
	}

	if err := channelRepo.Touch(channel.ID); err != nil {
		t.Fatalf("touch: %v", err)
	}
	updated, err := channelRepo.GetByID(channel.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if time.Since(updated.LastAccessedAt) > time.Minute {
		t.Fatalf("last accessed not updated: %v", updated.LastAccessedAt)
	}
}
