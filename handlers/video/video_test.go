package video

import (
	"encoding/json"
	"testing"

	"screentime-journey-server/models"

	"github.com/stretchr/testify/assert"
)

func TestValidProps_MilestoneReel(t *testing.T) {
	props := json.RawMessage(`{
		"username": "focusedmike",
		"milestoneTitle": "Fighter",
		"milestoneEmoji": "🥊",
		"daysInFocus": 10,
		"nextTitle": "Warrior",
		"daysToNext": 348,
		"mediaUrl": "https://assets.example.com/fighter.mp4"
	}`)

	assert.True(t, validProps(models.CompositionMilestoneReel, props))
}

func TestValidProps_UnknownFieldRejected(t *testing.T) {
	props := json.RawMessage(`{"username": "mike", "unexpected": true}`)
	assert.False(t, validProps(models.CompositionMilestoneReel, props))
}

func TestValidProps_SocialShareReel(t *testing.T) {
	props := json.RawMessage(`{
		"username": "focusedmike",
		"headline": "10 days in focus",
		"daysInFocus": 10,
		"percentile": 82,
		"mediaUrl": "https://assets.example.com/share.mp4"
	}`)

	assert.True(t, validProps(models.CompositionSocialShareReel, props))
}

func TestValidProps_WrongTypeRejected(t *testing.T) {
	props := json.RawMessage(`{"username": "mike", "daysInFocus": "ten"}`)
	assert.False(t, validProps(models.CompositionMilestoneReel, props))
}

func TestValidProps_UnknownComposition(t *testing.T) {
	assert.False(t, validProps("TrailerReel", json.RawMessage(`{}`)))
}
