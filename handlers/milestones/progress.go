package milestones

import (
	"log"
	"math"
	"time"

	"screentime-journey-server/models"
)

// FinalGoalDay is the day count that completes the journey.
const FinalGoalDay = 365

// Progress is the computed journey position for one device.
type Progress struct {
	DaysInFocus        int               `json:"days_in_focus"`
	ProgressPercentage int               `json:"progress_percentage"`
	CurrentLevel       *models.Milestone `json:"current_level"`
	DaysToNext         int               `json:"days_to_next"`
	FinalGoalDays      int               `json:"final_goal_days"`
}

// CalculateProgress maps a device's age and the gendered tier list to the
// customer's current journey position. Pure: no store access, no clock
// other than the supplied now.
//
// The current level is the highest tier whose milestone day has been
// reached, scanned from the top down so an unsorted tier list still
// resolves to the highest qualifying tier.
func CalculateProgress(device *models.Device, tiers []models.Milestone, now time.Time) Progress {
	daysInFocus := 0
	if device != nil {
		daysInFocus = int(math.Floor(now.Sub(device.AddedAt).Hours() / 24))
		if daysInFocus < 0 {
			daysInFocus = 0
		}
	}

	p := Progress{
		DaysInFocus:   daysInFocus,
		FinalGoalDays: FinalGoalDay - daysInFocus,
	}
	if p.FinalGoalDays < 0 {
		p.FinalGoalDays = 0
	}

	if len(tiers) == 0 {
		log.Println("Empty milestone tier list, cannot compute level")
		return p
	}

	current := highestQualifyingTier(tiers, daysInFocus)
	p.CurrentLevel = current

	if current.DaysToNext <= 0 {
		// Terminal tier: the journey bar stays full.
		p.ProgressPercentage = 100
		p.DaysToNext = 0
		return p
	}

	into := daysInFocus - current.MilestoneDay
	p.DaysToNext = current.DaysToNext - into
	if p.DaysToNext < 0 {
		p.DaysToNext = 0
	}

	pct := int(math.Round(100 * float64(into) / float64(current.DaysToNext)))
	if pct > 100 {
		pct = 100
	}
	p.ProgressPercentage = pct

	return p
}

func highestQualifyingTier(tiers []models.Milestone, daysInFocus int) *models.Milestone {
	var best *models.Milestone
	for i := range tiers {
		t := &tiers[i]
		if t.MilestoneDay > daysInFocus {
			continue
		}
		if best == nil || t.Level > best.Level {
			best = t
		}
	}
	if best == nil {
		// Nothing reached yet (no day-0 tier in the list): degrade to the
		// first tier instead of failing.
		log.Printf("No qualifying milestone tier for day %d, falling back to first tier", daysInFocus)
		best = &tiers[0]
	}
	return best
}

// TiersForGender filters the full tier list down to one gender. An empty
// result degrades to the unfiltered list so a misconfigured gender value
// never blanks the dashboard.
func TiersForGender(all []models.Milestone, gender string) []models.Milestone {
	var out []models.Milestone
	for _, t := range all {
		if t.Gender == gender {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		log.Printf("No milestone tiers for gender %q, using full list", gender)
		return all
	}
	return out
}
