package model

import "time"

// DailyRewardRecord is the explicit-claim streak, independent of
// ActivityStreak. It only advances when the user claims.
type DailyRewardRecord struct {
	UserID        string
	CurrentStreak int
	LastClaimDate string
	TotalClaims   int
	NextMilestone int
}

type Reward struct {
	Gems        int
	Respect     int
	Description string
	Special     bool
}

type ClaimCheck struct {
	CanClaim     bool
	StreakDay    int
	Reason       string
	StreakBroken bool
	NewUser      bool
}

type ClaimResult struct {
	Reward        Reward
	StreakDay     int
	NextMilestone int
	StreakBroken  bool
}

type RewardStatus struct {
	CurrentStreak int
	CanClaim      bool
	NextReward    Reward
	NextRewardDay int
	TotalClaims   int
	NextMilestone int
	LastClaimDate string
	StreakActive  bool
}

type UpcomingReward struct {
	Day         int
	Gems        int
	Respect     int
	Description string
	IsMilestone bool
}

type ClaimRecord struct {
	UserID    string
	Date      string
	Day       int
	Gems      int
	ClaimedAt time.Time
}
