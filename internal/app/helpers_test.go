package app

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"notebase/internal/filesearch"
	"notebase/internal/model"
	"notebase/internal/repository"
)

var testDBSeq int

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:app_test_%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Channel{}, &model.Document{}, &model.ChatMessage{}, &model.Note{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedChannel(t *testing.T, db *gorm.DB, storeID string, lastAccess time.Time) *model.Channel {
	t.Helper()
	channel := &model.Channel{
		StoreID:        storeID,
		Name:           "test channel " + storeID,
		LastAccessedAt: lastAccess,
	}
	if err := repository.NewChannelRepository(db).Create(channel); err != nil {
		t.Fatalf("seed channel: %v", err)
	}
	return channel
}

// fakeStore implements StoreAPI with overridable behavior per method.
type fakeStore struct {
	createStoreFn func(displayName string) (*filesearch.Store, error)
	deleteStoreFn func(storeID string) error
	uploadFn      func(storeID, filename string) (*filesearch.Operation, error)
	deleteFileFn  func(fileID string) error
	queryFn       func(storeID, query string) (*filesearch.QueryResult, error)

	deleteStoreCalls []string
	queryCalls       int
}

func (f *fakeStore) CreateStore(_ context.Context, displayName string) (*filesearch.Store, error) {
	if f.createStoreFn != nil {
		return f.createStoreFn(displayName)
	}
	return &filesearch.Store{ID: "fileSearchStores/" + displayName, DisplayName: displayName}, nil
}

func (f *fakeStore) GetStore(_ context.Context, storeID string) (*filesearch.Store, error) {
	return &filesearch.Store{ID: storeID}, nil
}

func (f *fakeStore) DeleteStore(_ context.Context, storeID string) error {
	f.deleteStoreCalls = append(f.deleteStoreCalls, storeID)
	if f.deleteStoreFn != nil {
		return f.deleteStoreFn(storeID)
	}
	return nil
}

func (f *fakeStore) UploadFile(_ context.Context, storeID, filename string, _ io.Reader) (*filesearch.Operation, error) {
	if f.uploadFn != nil {
		return f.uploadFn(storeID, filename)
	}
	return &filesearch.Operation{Name: "operations/" + filename, Done: true, FileID: "files/" + filename}, nil
}

func (f *fakeStore) GetOperation(_ context.Context, operationName string) (*filesearch.Operation, error) {
	return &filesearch.Operation{Name: operationName, Done: true}, nil
}

func (f *fakeStore) DeleteFile(_ context.Context, fileID string) error {
	if f.deleteFileFn != nil {
		return f.deleteFileFn(fileID)
	}
	return nil
}

func (f *fakeStore) Query(_ context.Context, storeID, query string) (*filesearch.QueryResult, error) {
	f.queryCalls++
	if f.queryFn != nil {
		return f.queryFn(storeID, query)
	}
	return &filesearch.QueryResult{
		Answer:  "grounded answer",
		Sources: []filesearch.SourceRef{{Document: "doc.pdf", Snippet: "snippet"}},
	}, nil
}

func (f *fakeStore) Summarize(_ context.Context, _, summaryType string) (*filesearch.Summary, error) {
	return &filesearch.Summary{SummaryType: summaryType, Summary: "a summary"}, nil
}

func (f *fakeStore) GenerateTimeline(_ context.Context, _ string, _ int) (*filesearch.Timeline, error) {
	return &filesearch.Timeline{Events: []filesearch.TimelineEvent{{Date: "2024-01-01", Title: "event"}}}, nil
}

func (f *fakeStore) GenerateBriefing(_ context.Context, _, _ string, _ int) (*filesearch.Briefing, error) {
	return &filesearch.Briefing{Title: "briefing"}, nil
}

func (f *fakeStore) GenerateScript(_ context.Context, _, style string, durationMinutes int) (*filesearch.DialogueScript, error) {
	return &filesearch.DialogueScript{
		Title:                    "walkthrough",
		Dialogue:                 []filesearch.ScriptLine{{Speaker: "Host A", Text: "welcome"}},
		EstimatedDurationSeconds: durationMinutes * 60,
	}, nil
}

// fakePublisher records published messages in order.
type fakePublisher struct {
	published []model.ChatMessage
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, msg model.ChatMessage) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}
