package app

import (
	"sort"
	"time"

	"notebase/internal/metrics"
	"notebase/internal/repository"
)

type SystemStats struct {
	Channels      ChannelStats     `json:"channels"`
	Documents     int64            `json:"documents"`
	ChatMessages  int64            `json:"chat_messages"`
	Notes         int64            `json:"notes"`
	Storage       StorageStats     `json:"storage"`
	Limits        LimitStats       `json:"limits"`
	API           metrics.Snapshot `json:"api"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

type ChannelStats struct {
	Total   int64          `json:"total"`
	ByState map[string]int `json:"by_state"`
}

type StorageStats struct {
	TotalBytes        int64   `json:"total_bytes"`
	AvgBytesPerActive float64 `json:"avg_bytes_per_channel"`
}

type LimitStats struct {
	MaxFilesPerChannel int   `json:"max_files_per_channel"`
	MaxChannelBytes    int64 `json:"max_channel_bytes"`
	InactiveDays       int   `json:"inactive_days"`
}

type ChannelOverview struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	State          string    `json:"state"`
	FileCount      int       `json:"file_count"`
	SizeBytes      int64     `json:"size_bytes"`
	UsagePercent   float64   `json:"usage_percent"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// AdminService aggregates operational counters for the admin endpoints.
type AdminService struct {
	channels  *repository.ChannelRepository
	docs      *repository.DocumentRepository
	messages  *repository.MessageRepository
	notes     *repository.NoteRepository
	policy    *LifecyclePolicy
	capacity  *CapacityService
	registry  *metrics.Registry
	limits    LimitStats
	startedAt time.Time
}

func NewAdminService(
	channels *repository.ChannelRepository,
	docs *repository.DocumentRepository,
	messages *repository.MessageRepository,
	notes *repository.NoteRepository,
	policy *LifecyclePolicy,
	capacity *CapacityService,
	registry *metrics.Registry,
	limits LimitStats,
	startedAt time.Time,
) *AdminService {
	return &AdminService{
		channels:  channels,
		docs:      docs,
		messages:  messages,
		notes:     notes,
		policy:    policy,
		capacity:  capacity,
		registry:  registry,
		limits:    limits,
		startedAt: startedAt,
	}
}

func (s *AdminService) Stats() (*SystemStats, error) {
	channels, err := s.channels.ListAll()
	if err != nil {
		return nil, err
	}
	docTotal, err := s.docs.CountAll()
	if err != nil {
		return nil, err
	}
	msgTotal, err := s.messages.CountAll()
	if err != nil {
		return nil, err
	}
	noteTotal, err := s.notes.CountAll()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	byState := map[string]int{
		string(StateActive):    0,
		string(StateIdle):      0,
		string(StateInactive):  0,
		string(StateOverLimit): 0,
	}
	var totalBytes int64
	for i := range channels {
		status := s.policy.Status(&channels[i], now)
		byState[string(status.State)]++
		totalBytes += channels[i].SizeBytes
	}

	stats := &SystemStats{
		Channels:      ChannelStats{Total: int64(len(channels)), ByState: byState},
		Documents:     docTotal,
		ChatMessages:  msgTotal,
		Notes:         noteTotal,
		Storage:       StorageStats{TotalBytes: totalBytes},
		Limits:        s.limits,
		API:           s.registry.Snapshot(),
		UptimeSeconds: int64(now.Sub(s.startedAt).Seconds()),
	}
	if len(channels) > 0 {
		stats.Storage.AvgBytesPerActive = float64(totalBytes) / float64(len(channels))
	}
	return stats, nil
}

func (s *AdminService) APIMetrics() metrics.Snapshot {
	return s.registry.Snapshot()
}

// ChannelOverviews returns every channel with its lifecycle state and quota
// usage, least recently accessed first so sweep candidates surface on top.
func (s *AdminService) ChannelOverviews() ([]ChannelOverview, error) {
	channels, err := s.channels.ListAll()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	overviews := make([]ChannelOverview, 0, len(channels))
	for i := range channels {
		ch := &channels[i]
		status := s.policy.Status(ch, now)
		overviews = append(overviews, ChannelOverview{
			ID:             ch.ID,
			Name:           ch.Name,
			State:          string(status.State),
			FileCount:      ch.FileCount,
			SizeBytes:      ch.SizeBytes,
			UsagePercent:   s.capacity.UsagePercent(ch),
			LastAccessedAt: ch.LastAccessedAt,
		})
	}
	sort.Slice(overviews, func(i, j int) bool {
		return overviews[i].LastAccessedAt.Before(overviews[j].LastAccessedAt)
	})
	return overviews, nil
}
