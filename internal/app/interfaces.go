package app

import (
	"context"
	"io"

	"notebase/internal/filesearch"
	"notebase/internal/model"
)

// StoreAPI is the hosted file-search/LLM API surface the services depend on.
// Implemented by *filesearch.Client; tests substitute fakes.
type StoreAPI interface {
	CreateStore(ctx context.Context, displayName string) (*filesearch.Store, error)
	GetStore(ctx context.Context, storeID string) (*filesearch.Store, error)
	DeleteStore(ctx context.Context, storeID string) error
	UploadFile(ctx context.Context, storeID, filename string, r io.Reader) (*filesearch.Operation, error)
	GetOperation(ctx context.Context, operationName string) (*filesearch.Operation, error)
	DeleteFile(ctx context.Context, fileID string) error
	Query(ctx context.Context, storeID, query string) (*filesearch.QueryResult, error)
	Summarize(ctx context.Context, storeID, summaryType string) (*filesearch.Summary, error)
	GenerateTimeline(ctx context.Context, storeID string, maxEvents int) (*filesearch.Timeline, error)
	GenerateBriefing(ctx context.Context, storeID, style string, maxSections int) (*filesearch.Briefing, error)
	GenerateScript(ctx context.Context, storeID, style string, durationMinutes int) (*filesearch.DialogueScript, error)
}

// AsyncMessagePublisher hands chat messages to the persistence queue.
type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.ChatMessage) error
}

// AnswerCache caches generated answers per (store, query).
type AnswerCache interface {
	GetAnswer(ctx context.Context, storeID, query string) (*CachedAnswer, bool, error)
	SetAnswer(ctx context.Context, storeID, query string, answer CachedAnswer) error
	InvalidateStore(ctx context.Context, storeID string) error
}

// CachedAnswer is the cacheable part of a chat response.
type CachedAnswer struct {
	Response string         `json:"response"`
	Sources  []model.Source `json:"sources"`
}

// HistoryCache caches a channel's recent chat history with a short dirty
// marker so readers never serve a stale list right after a write.
type HistoryCache interface {
	GetHistory(ctx context.Context, channelID uint) ([]model.ChatMessage, bool, error)
	SetHistory(ctx context.Context, channelID uint, messages []model.ChatMessage) error
	DeleteHistory(ctx context.Context, channelID uint) error
	MarkDirty(ctx context.Context, channelID uint) error
	IsDirty(ctx context.Context, channelID uint) (bool, error)
}
