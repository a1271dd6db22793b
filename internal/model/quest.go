package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	QuestTypeDaily  = "daily"
	QuestTypeWeekly = "weekly"
)

// Requirement types quests accumulate progress against.
const (
	RequirementVoice    = "voice"
	RequirementMessages = "messages"
	RequirementRespect  = "respect"
	RequirementFriends  = "friends"
	RequirementStreak   = "streak"
)

type Quest struct {
	QuestID          uuid.UUID
	QuestType        string
	Name             string
	Description      string
	RequirementType  string
	RequirementValue int
	RewardGems       int
	RewardRespect    int
	StartDate        string
	EndDate          string
	Weekly           bool
}

type UserQuest struct {
	UserID    string
	QuestID   uuid.UUID
	Progress  int
	Completed bool
	Claimed   bool
	StartedAt time.Time
}

// QuestWithProgress is a quest joined with the requesting user's progress
// row; the progress fields are zero when the user has none yet.
type QuestWithProgress struct {
	Quest
	Progress  int
	Completed bool
	Claimed   bool
}

type QuestTemplate struct {
	RequirementType string
	Name            string
	Description     string
	Requirement     int
	Gems            int
	Respect         int
}
