package app

import (
	"testing"
	"time"

	"notebase/internal/model"
)

func TestClassifyBoundary(t *testing.T) {
	policy := NewLifecyclePolicy(90, 60, nil)
	now := time.Now()

	cases := []struct {
		name       string
		lastAccess time.Time
		want       ChannelState
	}{
		{"accessed 89 days ago", now.Add(-89 * 24 * time.Hour), StateActive},
		{"accessed exactly 90 days ago", now.Add(-90 * 24 * time.Hour), StateActive},
		{"accessed 91 days ago", now.Add(-91 * 24 * time.Hour), StateInactive},
		{"accessed just now", now, StateActive},
	}
	for _, tc := range cases {
		channel := &model.Channel{LastAccessedAt: tc.lastAccess}
		if got := policy.Classify(channel, now); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSweepCandidatesFiltersInactiveOnly(t *testing.T) {
	policy := NewLifecyclePolicy(90, 60, nil)
	now := time.Now()

	channels := []model.Channel{
		{ID: 1, LastAccessedAt: now.Add(-91 * 24 * time.Hour)},
		{ID: 2, LastAccessedAt: now.Add(-89 * 24 * time.Hour)},
		{ID: 3, LastAccessedAt: now.Add(-200 * 24 * time.Hour)},
		{ID: 4, LastAccessedAt: now},
	}

	got := policy.SweepCandidates(channels, now)
	if len(got) != 2 {
		t.Fatalf("candidates = %v, want ids 1 and 3", got)
	}
	if got[0] != 1 || got[1] != 3 {
		t.Fatalf("candidates = %v, want [1 3]", got)
	}
}

func TestStatusStates(t *testing.T) {
	capacity := NewCapacityService(10, 1000)
	policy := NewLifecyclePolicy(90, 60, capacity)
	now := time.Now()

	fresh := &model.Channel{LastAccessedAt: now}
	status := policy.Status(fresh, now)
	if status.State != StateActive || status.Action != ActionNone {
		t.Fatalf("fresh channel: state=%q action=%q", status.State, status.Action)
	}

	idle := &model.Channel{LastAccessedAt: now.Add(-70 * 24 * time.Hour)}
	status = policy.Status(idle, now)
	if status.State != StateIdle || status.Action != ActionWarnIdle {
		t.Fatalf("idle channel: state=%q action=%q", status.State, status.Action)
	}
	if status.DaysSinceAccess != 70 {
		t.Fatalf("idle channel: days since access = %d, want 70", status.DaysSinceAccess)
	}
	if status.DaysUntilInactive != 20 {
		t.Fatalf("idle channel: days until inactive = %d, want 20", status.DaysUntilInactive)
	}

	inactive := &model.Channel{LastAccessedAt: now.Add(-100 * 24 * time.Hour)}
	status = policy.Status(inactive, now)
	if status.State != StateInactive || status.Action != ActionArchive {
		t.Fatalf("inactive channel: state=%q action=%q", status.State, status.Action)
	}

	// Over-limit wins even when the channel is also inactive.
	overLimit := &model.Channel{
		LastAccessedAt: now.Add(-100 * 24 * time.Hour),
		FileCount:      10,
		SizeBytes:      1000,
	}
	status = policy.Status(overLimit, now)
	if status.State != StateOverLimit || status.Action != ActionWarnOverLimit {
		t.Fatalf("over-limit channel: state=%q action=%q", status.State, status.Action)
	}

	// Near capacity warns while staying active.
	warning := &model.Channel{LastAccessedAt: now, SizeBytes: 850}
	status = policy.Status(warning, now)
	if status.State != StateActive || status.Action != ActionWarnOverLimit {
		t.Fatalf("near-capacity channel: state=%q action=%q", status.State, status.Action)
	}
}
