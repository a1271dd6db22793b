package model

import "time"

// Stat keys achievements are evaluated against.
const (
	StatVoiceMinutes = "total_voice_minutes"
	StatMessages     = "total_messages"
	StatRespect      = "respect"
	StatStreak       = "streak_count"
	StatFriends      = "friends_count"
	StatTrades       = "trades_completed"
	StatQuests       = "quests_completed"
)

type Achievement struct {
	AchievementID string
	Name          string
	Description   string
	Category      string
	StatType      string
	Threshold     int
	RewardGems    int
	Rarity        string
}

type UserAchievement struct {
	UserID        string
	AchievementID string
	UnlockedAt    time.Time
}

type AchievementProgress struct {
	Achievement
	Unlocked   bool
	Progress   int
	UnlockedAt *time.Time
}

// UserStats is the cumulative snapshot achievements are checked against.
type UserStats struct {
	TotalVoiceMinutes int
	TotalMessages     int
	Respect           int
	CurrentStreak     int
	FriendsCount      int
	TradesCompleted   int
	QuestsCompleted   int
}

func (s *UserStats) Value(statType string) int {
	switch statType {
	case StatVoiceMinutes:
		return s.TotalVoiceMinutes
	case StatMessages:
		return s.TotalMessages
	case StatRespect:
		return s.Respect
	case StatStreak:
		return s.CurrentStreak
	case StatFriends:
		return s.FriendsCount
	case StatTrades:
		return s.TradesCompleted
	case StatQuests:
		return s.QuestsCompleted
	default:
		return 0
	}
}
