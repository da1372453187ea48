package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"notebase/internal/app"
	"notebase/internal/filesearch"
	"notebase/internal/model"
	"notebase/internal/repository"
)

// blockingStore parks DeleteStore until release is closed, keeping a sweep
// in flight for as long as the test needs.
type blockingStore struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *blockingStore) DeleteStore(_ context.Context, _ string) error {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return nil
}

func (s *blockingStore) CreateStore(_ context.Context, name string) (*filesearch.Store, error) {
	return &filesearch.Store{ID: name}, nil
}
func (s *blockingStore) GetStore(_ context.Context, id string) (*filesearch.Store, error) {
	return &filesearch.Store{ID: id}, nil
}
func (s *blockingStore) UploadFile(_ context.Context, _, _ string, _ io.Reader) (*filesearch.Operation, error) {
	return &filesearch.Operation{Done: true}, nil
}
func (s *blockingStore) GetOperation(_ context.Context, name string) (*filesearch.Operation, error) {
	return &filesearch.Operation{Name: name, Done: true}, nil
}
func (s *blockingStore) DeleteFile(_ context.Context, _ string) error { return nil }
func (s *blockingStore) Query(_ context.Context, _, _ string) (*filesearch.QueryResult, error) {
	return &filesearch.QueryResult{}, nil
}
func (s *blockingStore) Summarize(_ context.Context, _, _ string) (*filesearch.Summary, error) {
	return &filesearch.Summary{}, nil
}
func (s *blockingStore) GenerateTimeline(_ context.Context, _ string, _ int) (*filesearch.Timeline, error) {
	return &filesearch.Timeline{}, nil
}
func (s *blockingStore) GenerateBriefing(_ context.Context, _, _ string, _ int) (*filesearch.Briefing, error) {
	return &filesearch.Briefing{}, nil
}
func (s *blockingStore) GenerateScript(_ context.Context, _, _ string, _ int) (*filesearch.DialogueScript, error) {
	return &filesearch.DialogueScript{}, nil
}

func newTestScheduler(t *testing.T, store app.StoreAPI) *Scheduler {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file:scheduler_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Channel{}, &model.Document{}, &model.ChatMessage{}, &model.Note{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	channelRepo := repository.NewChannelRepository(db)
	channel := &model.Channel{
		StoreID:        "fileSearchStores/sched",
		Name:           "stale",
		LastAccessedAt: time.Now().Add(-100 * 24 * time.Hour),
	}
	if err := channelRepo.Create(channel); err != nil {
		t.Fatalf("seed channel: %v", err)
	}

	capacity := app.NewCapacityService(50, 100<<20)
	policy := app.NewLifecyclePolicy(90, 60, capacity)
	sweep := app.NewSweepService(channelRepo, store, policy, zap.NewNop(), 1)
	return New(sweep, zap.NewNop(), "0 3 * * *")
}

func TestRunNowRejectsOverlap(t *testing.T) {
	store := &blockingStore{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	sched := newTestScheduler(t, store)

	done := make(chan error, 1)
	go func() {
		done <- sched.RunNow(context.Background())
	}()

	select {
	case <-store.started:
	case <-time.After(5 * time.Second):
		t.Fatalf("sweep never started")
	}

	if err := sched.RunNow(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("overlapping trigger: want ErrAlreadyRunning, got %v", err)
	}
	if !sched.Status().Running {
		t.Fatalf("status should report a running sweep")
	}

	close(store.release)
	if err := <-done; err != nil {
		t.Fatalf("first run: %v", err)
	}

	status := sched.Status()
	if status.Running {
		t.Fatalf("sweep should be finished")
	}
	if status.TotalRuns != 1 {
		t.Fatalf("total runs = %d, want 1", status.TotalRuns)
	}
	if len(status.LastRuns) != 1 || status.LastRuns[0].Trigger != "manual" {
		t.Fatalf("run history = %+v", status.LastRuns)
	}
	if status.LastRuns[0].Swept != 1 {
		t.Fatalf("swept = %d, want 1", status.LastRuns[0].Swept)
	}
}
