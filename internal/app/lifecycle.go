package app

import (
	"fmt"
	"time"

	"notebase/internal/model"
)

// ChannelState is a channel's lifecycle stage.
type ChannelState string

const (
	StateActive    ChannelState = "active"
	StateIdle      ChannelState = "idle"
	StateInactive  ChannelState = "inactive"
	StateOverLimit ChannelState = "over_limit"
)

// ChannelAction is the recommended follow-up for a lifecycle state.
type ChannelAction string

const (
	ActionNone          ChannelAction = "none"
	ActionWarnIdle      ChannelAction = "warn_idle"
	ActionWarnOverLimit ChannelAction = "warn_over_limit"
	ActionArchive       ChannelAction = "archive"
)

// LifecycleStatus is the full evaluation of a channel: state, recommended
// action and the numbers behind them.
type LifecycleStatus struct {
	State             ChannelState  `json:"state"`
	Action            ChannelAction `json:"action"`
	DaysSinceAccess   int           `json:"days_since_access"`
	DaysUntilInactive int           `json:"days_until_inactive"`
	UsagePercent      float64       `json:"usage_percent"`
	Message           string        `json:"message"`
}

// LifecyclePolicy decides channel activity state from the last-accessed
// timestamp and capacity usage. All methods are pure functions of their
// arguments; the policy holds configuration only.
type LifecyclePolicy struct {
	inactiveAfter time.Duration
	idleWarnAfter time.Duration
	inactiveDays  int
	capacity      *CapacityService
}

func NewLifecyclePolicy(inactiveDays, idleWarningDays int, capacity *CapacityService) *LifecyclePolicy {
	if inactiveDays <= 0 {
		inactiveDays = 90
	}
	if idleWarningDays <= 0 || idleWarningDays >= inactiveDays {
		idleWarningDays = inactiveDays * 2 / 3
	}
	return &LifecyclePolicy{
		inactiveAfter: time.Duration(inactiveDays) * 24 * time.Hour,
		idleWarnAfter: time.Duration(idleWarningDays) * 24 * time.Hour,
		inactiveDays:  inactiveDays,
		capacity:      capacity,
	}
}

// Classify returns Inactive when the channel has gone strictly longer than
// the inactivity threshold without access. Exactly at the threshold the
// channel is still Active.
func (p *LifecyclePolicy) Classify(channel *model.Channel, now time.Time) ChannelState {
	if now.Sub(channel.LastAccessedAt) > p.inactiveAfter {
		return StateInactive
	}
	return StateActive
}

// SweepCandidates filters to the ids of channels the sweep should delete:
// Inactive channels only.
func (p *LifecyclePolicy) SweepCandidates(channels []model.Channel, now time.Time) []uint {
	var ids []uint
	for i := range channels {
		if p.Classify(&channels[i], now) == StateInactive {
			ids = append(ids, channels[i].ID)
		}
	}
	return ids
}

// Status evaluates the channel's full lifecycle picture, including the idle
// warning window and capacity overrun states used by the admin surface.
func (p *LifecyclePolicy) Status(channel *model.Channel, now time.Time) LifecycleStatus {
	sinceAccess := now.Sub(channel.LastAccessedAt)
	daysSince := int(sinceAccess.Hours() / 24)
	daysUntil := p.inactiveDays - daysSince

	var usagePercent float64
	if p.capacity != nil {
		usagePercent = p.capacity.UsagePercent(channel)
	}

	state, action, message := p.evaluate(sinceAccess, daysSince, daysUntil, usagePercent)

	return LifecycleStatus{
		State:             state,
		Action:            action,
		DaysSinceAccess:   daysSince,
		DaysUntilInactive: daysUntil,
		UsagePercent:      round1(usagePercent),
		Message:           message,
	}
}

func (p *LifecyclePolicy) evaluate(sinceAccess time.Duration, daysSince, daysUntil int, usagePercent float64) (ChannelState, ChannelAction, string) {
	// Capacity overrun takes priority over activity states.
	if usagePercent >= 100 {
		return StateOverLimit, ActionWarnOverLimit,
			fmt.Sprintf("channel has exceeded capacity limits (%.0f%% used); remove documents to continue", usagePercent)
	}

	if sinceAccess > p.inactiveAfter {
		return StateInactive, ActionArchive,
			fmt.Sprintf("channel inactive for %d days and scheduled for cleanup; access it to prevent deletion", daysSince)
	}

	if sinceAccess >= p.idleWarnAfter {
		return StateIdle, ActionWarnIdle,
			fmt.Sprintf("channel idle for %d days; it will become inactive in %d days", daysSince, daysUntil)
	}

	if usagePercent >= 80 {
		return StateActive, ActionWarnOverLimit,
			fmt.Sprintf("channel is approaching capacity limits (%.0f%% used)", usagePercent)
	}

	return StateActive, ActionNone, "channel is active and within limits"
}
