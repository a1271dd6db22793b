package model

// ActivityStreak is the per-user daily qualification state. Calendar days are
// YYYY-MM-DD strings in UTC; an empty LastActivityDate means no activity has
// ever been recorded.
type ActivityStreak struct {
	UserID            string
	CurrentStreak     int
	LongestStreak     int
	LastActivityDate  string
	TodayVoiceMinutes int
	TodayMessages     int
	QualifiedToday    bool
	TotalStreakDays   int
}

type StreakSettings struct {
	RequiredVoiceMinutes int
	RequiredMessages     int
	RewardGems           int
	Milestones           map[int]int
}

type TrackResult struct {
	Qualified        bool
	Reward           int
	MilestoneDay     int
	MilestoneReward  int
	Voice            int
	Messages         int
	RequiredVoice    int
	RequiredMessages int
}

type StreakStatus struct {
	CurrentStreak     int
	LongestStreak     int
	TotalStreakDays   int
	TodayVoiceMinutes int
	TodayMessages     int
	QualifiedToday    bool
	VoiceRemaining    int
	MessagesRemaining int
	NextMilestone     int
	Settings          StreakSettings
}

type StreakLeader struct {
	UserID          string
	Username        string
	GlobalName      string
	Avatar          string
	CurrentStreak   int
	LongestStreak   int
	TotalStreakDays int
}
