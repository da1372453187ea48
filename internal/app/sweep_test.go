package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"notebase/internal/filesearch"
	"notebase/internal/repository"
)

func newSweepService(t *testing.T, store *fakeStore, maxAttempts int) (*SweepService, *gorm.DB, *repository.ChannelRepository) {
	t.Helper()
	db := openTestDB(t)
	channelRepo := repository.NewChannelRepository(db)
	capacity := NewCapacityService(50, 100<<20)
	policy := NewLifecyclePolicy(90, 60, capacity)
	svc := NewSweepService(channelRepo, store, policy, zap.NewNop(), maxAttempts)
	return svc, db, channelRepo
}

func TestSweepDeletesInactiveChannels(t *testing.T) {
	store := &fakeStore{}
	svc, db, channelRepo := newSweepService(t, store, 3)

	old := seedChannel(t, db, "fileSearchStores/old", time.Now().Add(-91*24*time.Hour))
	fresh := seedChannel(t, db, "fileSearchStores/fresh", time.Now().Add(-10*24*time.Hour))

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run sweep: %v", err)
	}
	if summary.Candidates != 1 || summary.Swept != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	if _, err := channelRepo.GetByID(old.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("inactive channel should be gone, got %v", err)
	}
	if _, err := channelRepo.GetByID(fresh.ID); err != nil {
		t.Fatalf("active channel should survive: %v", err)
	}
}

func TestSweepRetryableFailureKeepsLocalRows(t *testing.T) {
	store := &fakeStore{
		deleteStoreFn: func(string) error {
			return &filesearch.APIError{StatusCode: 503, Message: "unavailable"}
		},
	}
	svc, db, channelRepo := newSweepService(t, store, 2)

	channel := seedChannel(t, db, "fileSearchStores/stuck", time.Now().Add(-100*24*time.Hour))

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run sweep: %v", err)
	}
	if summary.Failed != 1 || summary.Swept != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(summary.Results) != 1 || summary.Results[0].Attempts != 2 {
		t.Fatalf("results = %+v, want 2 attempts", summary.Results)
	}

	// Local rows stay so the next cycle retries the channel.
	if _, err := channelRepo.GetByID(channel.ID); err != nil {
		t.Fatalf("channel should still exist: %v", err)
	}

	// The API recovers; the next cycle succeeds.
	store.deleteStoreFn = nil
	summary, err = svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if summary.Swept != 1 {
		t.Fatalf("second sweep summary = %+v", summary)
	}
	if _, err := channelRepo.GetByID(channel.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("channel should be gone after recovery, got %v", err)
	}
}

func TestSweepTreatsMissingStoreAsDeleted(t *testing.T) {
	store := &fakeStore{
		deleteStoreFn: func(string) error {
			return &filesearch.APIError{StatusCode: 404, Message: "not found"}
		},
	}
	svc, db, channelRepo := newSweepService(t, store, 3)

	channel := seedChannel(t, db, "fileSearchStores/gone", time.Now().Add(-95*24*time.Hour))

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run sweep: %v", err)
	}
	if summary.Swept != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if _, err := channelRepo.GetByID(channel.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("channel rows should be removed, got %v", err)
	}
}

func TestSweepIsolatesPerChannelFailures(t *testing.T) {
	store := &fakeStore{
		deleteStoreFn: func(storeID string) error {
			if storeID == "fileSearchStores/bad" {
				return &filesearch.APIError{StatusCode: 400, Message: "bad request"}
			}
			return nil
		},
	}
	svc, db, channelRepo := newSweepService(t, store, 3)

	bad := seedChannel(t, db, "fileSearchStores/bad", time.Now().Add(-120*24*time.Hour))
	good := seedChannel(t, db, "fileSearchStores/good", time.Now().Add(-120*24*time.Hour))

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run sweep: %v", err)
	}
	if summary.Candidates != 2 || summary.Swept != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	if _, err := channelRepo.GetByID(bad.ID); err != nil {
		t.Fatalf("failed channel should keep its rows: %v", err)
	}
	if _, err := channelRepo.GetByID(good.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("good channel should be swept, got %v", err)
	}
}
