package app

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"notebase/internal/filesearch"
	"notebase/internal/model"
	"notebase/internal/repository"
)

const (
	SummaryTypeShort    = "short"
	SummaryTypeDetailed = "detailed"

	BriefingStyleExecutive = "executive"
	BriefingStyleDetailed  = "detailed"

	ScriptStyleConversational = "conversational"
	ScriptStyleProfessional   = "professional"

	defaultTimelineMaxEvents   = 20
	defaultBriefingMaxSections = 5
	defaultScriptMinutes       = 5
	timelineMaxEventsCeiling   = 50
	briefingMaxSectionsCeiling = 10
	scriptMinutesCeiling       = 15
)

// GenerationService produces document-grounded artifacts (summaries,
// timelines, briefings, dialogue scripts) for a channel. Every operation
// requires at least one document and counts as channel access.
type GenerationService struct {
	channelRepo *repository.ChannelRepository
	store       StoreAPI
}

func NewGenerationService(channelRepo *repository.ChannelRepository, store StoreAPI) *GenerationService {
	return &GenerationService{channelRepo: channelRepo, store: store}
}

func (s *GenerationService) Summarize(ctx context.Context, channelID uint, summaryType string) (*filesearch.Summary, error) {
	if summaryType != SummaryTypeShort && summaryType != SummaryTypeDetailed {
		return nil, fmt.Errorf("%w: summary_type must be short or detailed", ErrInvalidInput)
	}

	channel, err := s.channelWithDocuments(channelID)
	if err != nil {
		return nil, err
	}

	summary, err := s.store.Summarize(ctx, channel.StoreID, summaryType)
	if err != nil {
		return nil, err
	}
	_ = s.channelRepo.Touch(channel.ID)
	return summary, nil
}

func (s *GenerationService) Timeline(ctx context.Context, channelID uint, maxEvents int) (*filesearch.Timeline, error) {
	if maxEvents <= 0 {
		maxEvents = defaultTimelineMaxEvents
	}
	if maxEvents > timelineMaxEventsCeiling {
		maxEvents = timelineMaxEventsCeiling
	}

	channel, err := s.channelWithDocuments(channelID)
	if err != nil {
		return nil, err
	}

	timeline, err := s.store.GenerateTimeline(ctx, channel.StoreID, maxEvents)
	if err != nil {
		return nil, err
	}
	_ = s.channelRepo.Touch(channel.ID)
	return timeline, nil
}

func (s *GenerationService) Briefing(ctx context.Context, channelID uint, style string, maxSections int) (*filesearch.Briefing, error) {
	if style == "" {
		style = BriefingStyleExecutive
	}
	if style != BriefingStyleExecutive && style != BriefingStyleDetailed {
		return nil, fmt.Errorf("%w: style must be executive or detailed", ErrInvalidInput)
	}
	if maxSections <= 0 {
		maxSections = defaultBriefingMaxSections
	}
	if maxSections > briefingMaxSectionsCeiling {
		maxSections = briefingMaxSectionsCeiling
	}

	channel, err := s.channelWithDocuments(channelID)
	if err != nil {
		return nil, err
	}

	briefing, err := s.store.GenerateBriefing(ctx, channel.StoreID, style, maxSections)
	if err != nil {
		return nil, err
	}
	_ = s.channelRepo.Touch(channel.ID)
	return briefing, nil
}

// Script produces a two-host dialogue walkthrough of the channel's documents,
// the text half of an audio overview. Speech synthesis is left to the caller.
func (s *GenerationService) Script(ctx context.Context, channelID uint, style string, durationMinutes int) (*filesearch.DialogueScript, error) {
	if style == "" {
		style = ScriptStyleConversational
	}
	if style != ScriptStyleConversational && style != ScriptStyleProfessional {
		return nil, fmt.Errorf("%w: style must be conversational or professional", ErrInvalidInput)
	}
	if durationMinutes <= 0 {
		durationMinutes = defaultScriptMinutes
	}
	if durationMinutes > scriptMinutesCeiling {
		durationMinutes = scriptMinutesCeiling
	}

	channel, err := s.channelWithDocuments(channelID)
	if err != nil {
		return nil, err
	}

	script, err := s.store.GenerateScript(ctx, channel.StoreID, style, durationMinutes)
	if err != nil {
		return nil, err
	}
	_ = s.channelRepo.Touch(channel.ID)
	return script, nil
}

func (s *GenerationService) channelWithDocuments(channelID uint) (*model.Channel, error) {
	channel, err := s.channelRepo.GetByID(channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	if channel.FileCount == 0 {
		return nil, ErrNoDocuments
	}
	return channel, nil
}
