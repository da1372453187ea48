package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"notebase/internal/model"
	"notebase/internal/repository"
)

type ChatService struct {
	channelRepo  *repository.ChannelRepository
	messageRepo  *repository.MessageRepository
	store        StoreAPI
	publisher    AsyncMessagePublisher
	historyCache HistoryCache
	answerCache  AnswerCache
}

type AskInput struct {
	ChannelID uint
	Message   string
}

type AskResult struct {
	Response string         `json:"response"`
	Sources  []model.Source `json:"sources"`
	Cached   bool           `json:"cached"`
}

func NewChatService(
	channelRepo *repository.ChannelRepository,
	messageRepo *repository.MessageRepository,
	store StoreAPI,
	publisher AsyncMessagePublisher,
	historyCache HistoryCache,
	answerCache AnswerCache,
) *ChatService {
	return &ChatService{
		channelRepo:  channelRepo,
		messageRepo:  messageRepo,
		store:        store,
		publisher:    publisher,
		historyCache: historyCache,
		answerCache:  answerCache,
	}
}

// Ask runs a grounded query against the channel's document store. Both the
// user message and the assistant answer are enqueued for async persistence;
// repeated questions are served from the answer cache without touching the
// external API.
func (s *ChatService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, ErrMessageEmpty
	}
	if s.publisher == nil {
		return nil, ErrMessageEnqueue
	}

	channel, err := s.channelRepo.GetByID(input.ChannelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, channel.ID)
		_ = s.historyCache.DeleteHistory(ctx, channel.ID)
	}

	userMessage := model.ChatMessage{
		ChannelID: channel.ID,
		Role:      "user",
		Content:   message,
		CreatedAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, userMessage); err != nil {
		return nil, ErrMessageEnqueue
	}

	result, cached, err := s.answer(ctx, channel.StoreID, message)
	if err != nil {
		return nil, err
	}

	assistantMessage := model.ChatMessage{
		ChannelID: channel.ID,
		Role:      "assistant",
		Content:   result.Response,
		CreatedAt: time.Now(),
	}
	assistantMessage.SetSources(result.Sources)
	if err := s.publisher.Publish(ctx, assistantMessage); err != nil {
		return nil, ErrMessageEnqueue
	}

	_ = s.channelRepo.Touch(channel.ID)

	result.Cached = cached
	return result, nil
}

func (s *ChatService) answer(ctx context.Context, storeID, message string) (*AskResult, bool, error) {
	if s.answerCache != nil {
		if hit, ok, err := s.answerCache.GetAnswer(ctx, storeID, message); err == nil && ok {
			return &AskResult{Response: hit.Response, Sources: hit.Sources}, true, nil
		}
	}

	queryResult, err := s.store.Query(ctx, storeID, message)
	if err != nil {
		return nil, false, err
	}

	response := strings.TrimSpace(queryResult.Answer)
	if response == "" {
		response = "No grounded answer could be produced for this question."
	}
	sources := make([]model.Source, 0, len(queryResult.Sources))
	for _, ref := range queryResult.Sources {
		sources = append(sources, model.Source{Document: ref.Document, Snippet: ref.Snippet})
	}

	if s.answerCache != nil {
		_ = s.answerCache.SetAnswer(ctx, storeID, message, CachedAnswer{
			Response: response,
			Sources:  sources,
		})
	}
	return &AskResult{Response: response, Sources: sources}, false, nil
}

// History returns a channel's messages oldest-first, serving from the cache
// when it is present and not marked dirty by an in-flight write.
func (s *ChatService) History(ctx context.Context, channelID uint, limit int) ([]model.ChatMessage, int64, error) {
	if _, err := s.channelRepo.GetByID(channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrChannelNotFound
		}
		return nil, 0, err
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, channelID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, channelID); cacheErr == nil && hit {
				// The cached list is bounded by the repo's fetch limit, so the
				// total always comes from a count query.
				total, countErr := s.messageRepo.CountByChannelID(channelID)
				if countErr != nil {
					return nil, 0, countErr
				}
				return trimMessages(cached, limit), total, nil
			}
		}
	}

	messages, err := s.messageRepo.ListByChannelID(channelID, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.messageRepo.CountByChannelID(channelID)
	if err != nil {
		return nil, 0, err
	}

	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, channelID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, channelID, messages)
		}
	}
	return messages, total, nil
}

// ClearHistory deletes all of a channel's messages and drops the cache entry.
func (s *ChatService) ClearHistory(ctx context.Context, channelID uint) error {
	if _, err := s.channelRepo.GetByID(channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChannelNotFound
		}
		return err
	}

	if err := s.messageRepo.DeleteByChannelID(channelID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, channelID)
	}
	return nil
}

func trimMessages(messages []model.ChatMessage, limit int) []model.ChatMessage {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}
