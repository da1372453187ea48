package app

import (
	"notebase/internal/model"
)

// CapacityService enforces per-channel quotas on file count and total size.
// It only decides; the counter mutation itself happens inside the document
// repository's transaction after a confirmed upload.
type CapacityService struct {
	maxFiles int
	maxBytes int64
}

// CapacityUsage is the derived capacity view over a channel's counters.
type CapacityUsage struct {
	FileCount        int     `json:"file_count"`
	MaxFiles         int     `json:"max_files"`
	FileUsagePercent float64 `json:"file_usage_percent"`
	SizeBytes        int64   `json:"size_bytes"`
	MaxSizeBytes     int64   `json:"max_size_bytes"`
	SizeUsagePercent float64 `json:"size_usage_percent"`
	CanUpload        bool    `json:"can_upload"`
	RemainingFiles   int     `json:"remaining_files"`
	RemainingBytes   int64   `json:"remaining_bytes"`
}

func NewCapacityService(maxFiles int, maxBytes int64) *CapacityService {
	if maxFiles <= 0 {
		maxFiles = 50
	}
	if maxBytes <= 0 {
		maxBytes = 100 << 20
	}
	return &CapacityService{maxFiles: maxFiles, maxBytes: maxBytes}
}

// CheckCanUpload rejects an upload that would exceed either quota. A nil
// return means the upload may proceed.
func (s *CapacityService) CheckCanUpload(channel *model.Channel, incomingSize int64) error {
	if channel.FileCount+1 > s.maxFiles {
		return &CapacityError{
			LimitType: "file_count",
			Current:   int64(channel.FileCount),
			Limit:     int64(s.maxFiles),
			Incoming:  1,
		}
	}
	if channel.SizeBytes+incomingSize > s.maxBytes {
		return &CapacityError{
			LimitType: "size",
			Current:   channel.SizeBytes,
			Limit:     s.maxBytes,
			Incoming:  incomingSize,
		}
	}
	return nil
}

// Usage computes the capacity view for a channel.
func (s *CapacityService) Usage(channel *model.Channel) CapacityUsage {
	fileUsage := float64(channel.FileCount) / float64(s.maxFiles) * 100
	sizeUsage := float64(channel.SizeBytes) / float64(s.maxBytes) * 100

	remainingFiles := s.maxFiles - channel.FileCount
	if remainingFiles < 0 {
		remainingFiles = 0
	}
	remainingBytes := s.maxBytes - channel.SizeBytes
	if remainingBytes < 0 {
		remainingBytes = 0
	}

	return CapacityUsage{
		FileCount:        channel.FileCount,
		MaxFiles:         s.maxFiles,
		FileUsagePercent: round1(fileUsage),
		SizeBytes:        channel.SizeBytes,
		MaxSizeBytes:     s.maxBytes,
		SizeUsagePercent: round1(sizeUsage),
		CanUpload:        channel.FileCount < s.maxFiles && channel.SizeBytes < s.maxBytes,
		RemainingFiles:   remainingFiles,
		RemainingBytes:   remainingBytes,
	}
}

// UsagePercent returns the dominant usage dimension as a percentage.
func (s *CapacityService) UsagePercent(channel *model.Channel) float64 {
	fileUsage := float64(channel.FileCount) / float64(s.maxFiles) * 100
	sizeUsage := float64(channel.SizeBytes) / float64(s.maxBytes) * 100
	if fileUsage > sizeUsage {
		return fileUsage
	}
	return sizeUsage
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
