package app

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"notebase/internal/model"
	"notebase/internal/repository"
)

type NoteService struct {
	notes    *repository.NoteRepository
	channels *repository.ChannelRepository
}

type CreateNoteInput struct {
	ChannelID uint
	Title     string
	Content   string
	Sources   []model.Source
}

type UpdateNoteInput struct {
	Title   *string
	Content *string
}

func NewNoteService(notes *repository.NoteRepository, channels *repository.ChannelRepository) *NoteService {
	return &NoteService{notes: notes, channels: channels}
}

func (s *NoteService) Create(input CreateNoteInput) (*model.Note, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, ErrInvalidInput
	}

	if _, err := s.channels.GetByID(input.ChannelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}

	note := &model.Note{
		ChannelID: input.ChannelID,
		Title:     title,
		Content:   content,
	}
	note.SetSources(input.Sources)

	if err := s.notes.Create(note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Get(id uint) (*model.Note, error) {
	note, err := s.notes.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

func (s *NoteService) ListByChannel(channelID uint, limit, offset int) ([]model.Note, int64, error) {
	if _, err := s.channels.GetByID(channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrChannelNotFound
		}
		return nil, 0, err
	}
	return s.notes.ListByChannelID(channelID, limit, offset)
}

func (s *NoteService) Update(id uint, input UpdateNoteInput) (*model.Note, error) {
	if input.Title == nil && input.Content == nil {
		return nil, ErrInvalidInput
	}

	note, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrInvalidInput
		}
		note.Title = title
	}
	if input.Content != nil {
		content := strings.TrimSpace(*input.Content)
		if content == "" {
			return nil, ErrInvalidInput
		}
		note.Content = content
	}

	if err := s.notes.Update(note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Delete(id uint) error {
	if err := s.notes.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoteNotFound
		}
		return err
	}
	return nil
}
