package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"notebase/internal/model"
	"notebase/internal/repository"
)

type chatFixture struct {
	svc         *ChatService
	db          *gorm.DB
	channelRepo *repository.ChannelRepository
	messageRepo *repository.MessageRepository
	store       *fakeStore
	publisher   *fakePublisher
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	db := openTestDB(t)
	f := &chatFixture{
		db:          db,
		channelRepo: repository.NewChannelRepository(db),
		messageRepo: repository.NewMessageRepository(db),
		store:       &fakeStore{},
		publisher:   &fakePublisher{},
	}
	f.svc = NewChatService(f.channelRepo, f.messageRepo, f.store, f.publisher, nil, nil)
	return f
}

func TestAskPublishesUserAndAssistant(t *testing.T) {
	f := newChatFixture(t)
	channel := seedChannel(t, f.db, "fileSearchStores/chat1", time.Now().Add(-time.Hour))

	result, err := f.svc.Ask(context.Background(), AskInput{ChannelID: channel.ID, Message: "what is this about?"})
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if result.Response != "grounded answer" {
		t.Fatalf("response = %q", result.Response)
	}
	if len(result.Sources) != 1 || result.Sources[0].Document != "doc.pdf" {
		t.Fatalf("sources = %+v", result.Sources)
	}

	if len(f.publisher.published) != 2 {
		t.Fatalf("published %d messages, want 2", len(f.publisher.published))
	}
	if f.publisher.published[0].Role != "user" || f.publisher.published[1].Role != "assistant" {
		t.Fatalf("roles = %q, %q", f.publisher.published[0].Role, f.publisher.published[1].Role)
	}
	if f.publisher.published[1].Content != "grounded answer" {
		t.Fatalf("assistant content = %q", f.publisher.published[1].Content)
	}

	// Asking counts as access.
	updated, err := f.channelRepo.GetByID(channel.ID)
	if err != nil {
		t.Fatalf("reload channel: %v", err)
	}
	if !updated.LastAccessedAt.After(channel.LastAccessedAt) {
		t.Fatalf("last accessed not advanced")
	}
}

func TestAskEmptyMessage(t *testing.T) {
	f := newChatFixture(t)
	channel := seedChannel(t, f.db, "fileSearchStores/chat2", time.Now())

	if _, err := f.svc.Ask(context.Background(), AskInput{ChannelID: channel.ID, Message: "   "}); !errors.Is(err, ErrMessageEmpty) {
		t.Fatalf("want ErrMessageEmpty, got %v", err)
	}
}

func TestAskMissingChannel(t *testing.T) {
	f := newChatFixture(t)

	if _, err := f.svc.Ask(context.Background(), AskInput{ChannelID: 404, Message: "hi"}); !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("want ErrChannelNotFound, got %v", err)
	}
	if f.store.queryCalls != 0 {
		t.Fatalf("external query should not run for a missing channel")
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	f := newChatFixture(t)
	channel := seedChannel(t, f.db, "fileSearchStores/chat3", time.Now())

	if _, err := f.svc.Ask(context.Background(), AskInput{ChannelID: channel.ID, Message: "first"}); err != nil {
		t.Fatalf("ask: %v", err)
	}

	// The publisher is async in production; persist directly here.
	for i := range f.publisher.published {
		if err := f.messageRepo.Create(&f.publisher.published[i]); err != nil {
			t.Fatalf("persist message: %v", err)
		}
	}

	messages, total, err := f.svc.History(context.Background(), channel.ID, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 2 || len(messages) != 2 {
		t.Fatalf("history = %d messages, total %d; want 2/2", len(messages), total)
	}
	if messages[0].Role != "user" {
		t.Fatalf("first message role = %q, want user", messages[0].Role)
	}

	if err := f.svc.ClearHistory(context.Background(), channel.ID); err != nil {
		t.Fatalf("clear history: %v", err)
	}
	messages, total, err = f.svc.History(context.Background(), channel.ID, 0)
	if err != nil {
		t.Fatalf("history after clear: %v", err)
	}
	if total != 0 || len(messages) != 0 {
		t.Fatalf("history after clear = %d messages, total %d; want empty", len(messages), total)
	}
}

func TestAskUsesAnswerCache(t *testing.T) {
	db := openTestDB(t)
	channelRepo := repository.NewChannelRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	store := &fakeStore{}
	publisher := &fakePublisher{}
	answers := &memoryAnswerCache{entries: map[string]CachedAnswer{}}
	svc := NewChatService(channelRepo, messageRepo, store, publisher, nil, answers)

	channel := seedChannel(t, db, "fileSearchStores/chat4", time.Now())

	first, err := svc.Ask(context.Background(), AskInput{ChannelID: channel.ID, Message: "repeat me"})
	if err != nil {
		t.Fatalf("first ask: %v", err)
	}
	if first.Cached {
		t.Fatalf("first answer should not be cached")
	}

	second, err := svc.Ask(context.Background(), AskInput{ChannelID: channel.ID, Message: "repeat me"})
	if err != nil {
		t.Fatalf("second ask: %v", err)
	}
	if !second.Cached {
		t.Fatalf("second answer should come from the cache")
	}
	if store.queryCalls != 1 {
		t.Fatalf("external queries = %d, want 1", store.queryCalls)
	}
}

func TestHistoryCacheHitReportsFullCount(t *testing.T) {
	db := openTestDB(t)
	channelRepo := repository.NewChannelRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	history := &memoryHistoryCache{entries: map[uint][]model.ChatMessage{}}
	svc := NewChatService(channelRepo, messageRepo, &fakeStore{}, &fakePublisher{}, history, nil)

	channel := seedChannel(t, db, "fileSearchStores/chat5", time.Now())
	for i := 0; i < 5; i++ {
		msg := model.ChatMessage{ChannelID: channel.ID, Role: "user", Content: "q"}
		if err := messageRepo.Create(&msg); err != nil {
			t.Fatalf("persist message: %v", err)
		}
	}

	// First call reads the DB and fills the cache with the trimmed window.
	messages, total, err := svc.History(context.Background(), channel.ID, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(messages) != 2 || total != 5 {
		t.Fatalf("db path = %d messages, total %d; want 2/5", len(messages), total)
	}
	if len(history.entries[channel.ID]) == 0 {
		t.Fatalf("cache not populated")
	}

	// Second call hits the cache; the total must still be the channel's
	// real message count, not the cached window size.
	messages, total, err = svc.History(context.Background(), channel.ID, 2)
	if err != nil {
		t.Fatalf("history from cache: %v", err)
	}
	if len(messages) != 2 || total != 5 {
		t.Fatalf("cache path = %d messages, total %d; want 2/5", len(messages), total)
	}
}

type memoryHistoryCache struct {
	entries map[uint][]model.ChatMessage
	dirty   map[uint]bool
}

func (c *memoryHistoryCache) GetHistory(_ context.Context, channelID uint) ([]model.ChatMessage, bool, error) {
	messages, ok := c.entries[channelID]
	return messages, ok, nil
}

func (c *memoryHistoryCache) SetHistory(_ context.Context, channelID uint, messages []model.ChatMessage) error {
	c.entries[channelID] = messages
	return nil
}

func (c *memoryHistoryCache) DeleteHistory(_ context.Context, channelID uint) error {
	delete(c.entries, channelID)
	return nil
}

func (c *memoryHistoryCache) MarkDirty(_ context.Context, channelID uint) error {
	if c.dirty == nil {
		c.dirty = map[uint]bool{}
	}
	c.dirty[channelID] = true
	return nil
}

func (c *memoryHistoryCache) IsDirty(_ context.Context, channelID uint) (bool, error) {
	return c.dirty[channelID], nil
}

type memoryAnswerCache struct {
	entries map[string]CachedAnswer
}

func (c *memoryAnswerCache) GetAnswer(_ context.Context, storeID, query string) (*CachedAnswer, bool, error) {
	answer, ok := c.entries[storeID+"|"+query]
	if !ok {
		return nil, false, nil
	}
	return &answer, true, nil
}

func (c *memoryAnswerCache) SetAnswer(_ context.Context, storeID, query string, answer CachedAnswer) error {
	c.entries[storeID+"|"+query] = answer
	return nil
}

func (c *memoryAnswerCache) InvalidateStore(_ context.Context, storeID string) error {
	for key := range c.entries {
		if len(key) >= len(storeID) && key[:len(storeID)] == storeID {
			delete(c.entries, key)
		}
	}
	return nil
}
