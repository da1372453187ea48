package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"notebase/internal/filesearch"
	"notebase/internal/repository"
)

const sweepBaseBackoff = 250 * time.Millisecond

// SweepOutcome describes what happened to a single channel during a sweep.
type SweepOutcome string

const (
	SweepSwept   SweepOutcome = "swept"
	SweepRetried SweepOutcome = "swept_after_retry"
	SweepFailed  SweepOutcome = "failed"
)

type SweepResult struct {
	ChannelID uint         `json:"channel_id"`
	StoreID   string       `json:"store_id"`
	Outcome   SweepOutcome `json:"outcome"`
	Attempts  int          `json:"attempts"`
	Error     string       `json:"error,omitempty"`
}

type SweepSummary struct {
	Candidates int           `json:"candidates"`
	Swept      int           `json:"swept"`
	Failed     int           `json:"failed"`
	Results    []SweepResult `json:"results"`
	Duration   time.Duration `json:"-"`
}

// SweepService archives channels whose last access is past the inactivity
// threshold. Each candidate is deleted in two phases: external store first,
// local rows second. A store delete that fails with a retryable error leaves
// the local rows untouched so the next cycle picks the channel up again.
type SweepService struct {
	repo        *repository.ChannelRepository
	store       StoreAPI
	policy      *LifecyclePolicy
	logger      *zap.Logger
	maxAttempts int
}

func NewSweepService(
	repo *repository.ChannelRepository,
	store StoreAPI,
	policy *LifecyclePolicy,
	logger *zap.Logger,
	maxAttempts int,
) *SweepService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &SweepService{
		repo:        repo,
		store:       store,
		policy:      policy,
		logger:      logger,
		maxAttempts: maxAttempts,
	}
}

// Run sweeps all inactive channels. One channel failing never aborts the
// batch; its failure is recorded and the sweep moves on.
func (s *SweepService) Run(ctx context.Context) (*SweepSummary, error) {
	start := time.Now()

	channels, err := s.repo.ListAll()
	if err != nil {
		return nil, err
	}
	candidates := s.policy.SweepCandidates(channels, start)

	summary := &SweepSummary{
		Candidates: len(candidates),
		Results:    make([]SweepResult, 0, len(candidates)),
	}

	byID := make(map[uint]string, len(channels))
	for _, ch := range channels {
		byID[ch.ID] = ch.StoreID
	}

	for _, id := range candidates {
		if ctx.Err() != nil {
			break
		}
		result := s.sweepOne(ctx, id, byID[id])
		summary.Results = append(summary.Results, result)
		if result.Outcome == SweepFailed {
			summary.Failed++
		} else {
			summary.Swept++
		}
	}

	summary.Duration = time.Since(start)
	s.logger.Info("lifecycle sweep finished",
		zap.Int("candidates", summary.Candidates),
		zap.Int("swept", summary.Swept),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

func (s *SweepService) sweepOne(ctx context.Context, channelID uint, storeID string) SweepResult {
	result := SweepResult{ChannelID: channelID, StoreID: storeID}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		result.Attempts = attempt
		err := s.store.DeleteStore(ctx, storeID)
		if err == nil || filesearch.IsNotFound(err) {
			lastErr = nil
			break
		}
		lastErr = err
		if !filesearch.IsRetryable(err) {
			break
		}
		if attempt < s.maxAttempts {
			backoff := sweepBaseBackoff << (attempt - 1)
			s.logger.Warn("store delete failed, retrying",
				zap.Uint("channel_id", channelID),
				zap.String("store_id", storeID),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(err))
			select {
			case <-ctx.Done():
				result.Outcome = SweepFailed
				result.Error = ctx.Err().Error()
				return result
			case <-time.After(backoff):
			}
		}
	}

	if lastErr != nil {
		s.logger.Warn("channel sweep failed, will retry next cycle",
			zap.Uint("channel_id", channelID),
			zap.String("store_id", storeID),
			zap.Int("attempts", result.Attempts),
			zap.Error(lastErr))
		result.Outcome = SweepFailed
		result.Error = lastErr.Error()
		return result
	}

	if err := s.repo.DeleteCascade(channelID); err != nil {
		result.Outcome = SweepFailed
		result.Error = err.Error()
		return result
	}

	if result.Attempts > 1 {
		result.Outcome = SweepRetried
	} else {
		result.Outcome = SweepSwept
	}
	s.logger.Info("channel archived",
		zap.Uint("channel_id", channelID),
		zap.String("store_id", storeID),
		zap.Int("attempts", result.Attempts))
	return result
}
