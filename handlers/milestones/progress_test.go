package milestones

import (
	"testing"
	"time"

	"screentime-journey-server/models"
)

func maleTiers() []models.Milestone {
	return []models.Milestone{
		{Gender: "male", Level: 1, MilestoneDay: 0, DaysToNext: 7, Title: "Starter", NextTitle: "Fighter"},
		{Gender: "male", Level: 2, MilestoneDay: 7, DaysToNext: 351, Title: "Fighter", NextTitle: "Warrior"},
		{Gender: "male", Level: 3, MilestoneDay: 358, DaysToNext: 7, Title: "Warrior", NextTitle: "King"},
		{Gender: "male", Level: 4, MilestoneDay: 365, DaysToNext: 0, Title: "King"},
	}
}

func deviceAgedDays(days int, now time.Time) *models.Device {
	return &models.Device{AddedAt: now.Add(-time.Duration(days) * 24 * time.Hour)}
}

func TestCalculateProgress_DayZero(t *testing.T) {
	now := time.Now()
	p := CalculateProgress(deviceAgedDays(0, now), maleTiers(), now)

	if p.DaysInFocus != 0 {
		t.Fatalf("expected 0 days in focus, got %d", p.DaysInFocus)
	}
	if p.CurrentLevel == nil || p.CurrentLevel.MilestoneDay != 0 {
		t.Fatalf("expected the day-0 tier, got %+v", p.CurrentLevel)
	}
	if p.FinalGoalDays != 365 {
		t.Fatalf("expected 365 final goal days, got %d", p.FinalGoalDays)
	}
}

func TestCalculateProgress_NoDevice(t *testing.T) {
	p := CalculateProgress(nil, maleTiers(), time.Now())

	if p.DaysInFocus != 0 {
		t.Fatalf("expected 0 days in focus without a device, got %d", p.DaysInFocus)
	}
	if p.CurrentLevel == nil || p.CurrentLevel.Title != "Starter" {
		t.Fatalf("expected Starter tier, got %+v", p.CurrentLevel)
	}
}

func TestCalculateProgress_FutureAddedAtClampsToZero(t *testing.T) {
	now := time.Now()
	device := &models.Device{AddedAt: now.Add(48 * time.Hour)}
	p := CalculateProgress(device, maleTiers(), now)

	if p.DaysInFocus != 0 {
		t.Fatalf("expected clamp to 0 days, got %d", p.DaysInFocus)
	}
}

func TestCalculateProgress_MaleDayTen(t *testing.T) {
	now := time.Now()
	p := CalculateProgress(deviceAgedDays(10, now), maleTiers(), now)

	if p.CurrentLevel.Title != "Fighter" {
		t.Fatalf("expected Fighter at day 10, got %q", p.CurrentLevel.Title)
	}
	if p.DaysToNext != 348 {
		t.Fatalf("expected 348 days to next, got %d", p.DaysToNext)
	}
	if p.ProgressPercentage != 1 {
		t.Fatalf("expected 1%% progress (round(100*3/351)), got %d", p.ProgressPercentage)
	}
}

func TestCalculateProgress_TerminalTier(t *testing.T) {
	now := time.Now()
	for _, days := range []int{365, 400, 1000} {
		p := CalculateProgress(deviceAgedDays(days, now), maleTiers(), now)
		if p.CurrentLevel.Title != "King" {
			t.Fatalf("day %d: expected King, got %q", days, p.CurrentLevel.Title)
		}
		if p.ProgressPercentage != 100 {
			t.Fatalf("day %d: expected 100%% at terminal tier, got %d", days, p.ProgressPercentage)
		}
		if p.DaysToNext != 0 {
			t.Fatalf("day %d: expected 0 days to next, got %d", days, p.DaysToNext)
		}
	}
}

func TestCalculateProgress_FinalGoalNeverNegative(t *testing.T) {
	now := time.Now()
	p := CalculateProgress(deviceAgedDays(500, now), maleTiers(), now)
	if p.FinalGoalDays != 0 {
		t.Fatalf("expected 0 final goal days past the goal, got %d", p.FinalGoalDays)
	}
}

func TestCalculateProgress_UnsortedTiersPickHighestQualifying(t *testing.T) {
	now := time.Now()
	tiers := maleTiers()
	// Shuffle: highest tier first, day-0 tier last.
	shuffled := []models.Milestone{tiers[3], tiers[1], tiers[2], tiers[0]}

	p := CalculateProgress(deviceAgedDays(360, now), shuffled, now)
	if p.CurrentLevel.Title != "Warrior" {
		t.Fatalf("expected Warrior at day 360 from unsorted list, got %q", p.CurrentLevel.Title)
	}
}

func TestCalculateProgress_EmptyTierListDoesNotPanic(t *testing.T) {
	now := time.Now()
	p := CalculateProgress(deviceAgedDays(10, now), nil, now)

	if p.CurrentLevel != nil {
		t.Fatalf("expected no level with an empty tier list, got %+v", p.CurrentLevel)
	}
	if p.DaysInFocus != 10 {
		t.Fatalf("expected days in focus still computed, got %d", p.DaysInFocus)
	}
}

func TestTiersForGender_EmptyGenderFallsBack(t *testing.T) {
	all := maleTiers()
	got := TiersForGender(all, "unknown")
	if len(got) != len(all) {
		t.Fatalf("expected fallback to the full list, got %d tiers", len(got))
	}
}

func TestCalculateProgress_ProgressCapAt100(t *testing.T) {
	now := time.Now()
	tiers := []models.Milestone{
		{Gender: "male", Level: 1, MilestoneDay: 0, DaysToNext: 5, Title: "Starter"},
	}
	// 20 days into a 5-day tier with no higher tier seeded.
	p := CalculateProgress(deviceAgedDays(20, now), tiers, now)
	if p.ProgressPercentage != 100 {
		t.Fatalf("expected percentage capped at 100, got %d", p.ProgressPercentage)
	}
	if p.DaysToNext != 0 {
		t.Fatalf("expected days to next floored at 0, got %d", p.DaysToNext)
	}
}
