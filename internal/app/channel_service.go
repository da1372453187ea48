package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"notebase/internal/filesearch"
	"notebase/internal/model"
	"notebase/internal/repository"
)

type ChannelService struct {
	repo     *repository.ChannelRepository
	store    StoreAPI
	capacity *CapacityService
	policy   *LifecyclePolicy
}

type CreateChannelInput struct {
	Name        string
	Description string
}

type UpdateChannelInput struct {
	Name        *string
	Description *string
}

func NewChannelService(
	repo *repository.ChannelRepository,
	store StoreAPI,
	capacity *CapacityService,
	policy *LifecyclePolicy,
) *ChannelService {
	return &ChannelService{
		repo:     repo,
		store:    store,
		capacity: capacity,
		policy:   policy,
	}
}

// Create provisions the external store first and persists the metadata row
// only once the store exists, so a local row never points at nothing.
func (s *ChannelService) Create(ctx context.Context, input CreateChannelInput) (*model.Channel, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	remote, err := s.store.CreateStore(ctx, name)
	if err != nil {
		return nil, err
	}

	channel := &model.Channel{
		StoreID:        remote.ID,
		Name:           name,
		Description:    strings.TrimSpace(input.Description),
		LastAccessedAt: time.Now(),
	}
	if err := s.repo.Create(channel); err != nil {
		// The remote store is orphaned if this fails; the sweep cannot see
		// it, so try to roll it back before surfacing the error.
		_ = s.store.DeleteStore(ctx, remote.ID)
		return nil, err
	}
	return channel, nil
}

func (s *ChannelService) Get(id uint) (*model.Channel, error) {
	channel, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	return channel, nil
}

func (s *ChannelService) List(limit, offset int) ([]model.Channel, int64, error) {
	return s.repo.List(limit, offset)
}

func (s *ChannelService) Update(id uint, input UpdateChannelInput) (*model.Channel, error) {
	if input.Name == nil && input.Description == nil {
		return nil, ErrInvalidInput
	}

	channel, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		channel.Name = name
	}
	if input.Description != nil {
		channel.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.repo.Update(channel); err != nil {
		return nil, err
	}
	return channel, nil
}

// Delete removes a channel in two phases: external store first, local
// metadata second. Local rows are only removed once the store is confirmed
// gone (deleted now, or already absent), so a remote store is never
// orphaned by a half-finished delete.
func (s *ChannelService) Delete(ctx context.Context, id uint) error {
	channel, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteStore(ctx, channel.StoreID); err != nil && !filesearch.IsNotFound(err) {
		return err
	}
	return s.deleteLocal(id)
}

func (s *ChannelService) deleteLocal(id uint) error {
	if err := s.repo.DeleteCascade(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChannelNotFound
		}
		return err
	}
	return nil
}

// Capacity returns the quota usage view for a channel.
func (s *ChannelService) Capacity(id uint) (*CapacityUsage, error) {
	channel, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	usage := s.capacity.Usage(channel)
	return &usage, nil
}

// Lifecycle returns the lifecycle status for a channel.
func (s *ChannelService) Lifecycle(id uint) (*LifecycleStatus, error) {
	channel, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	status := s.policy.Status(channel, time.Now())
	return &status, nil
}
