package model

import "time"

type User struct {
	UserID            string
	Username          string
	GlobalName        string
	Avatar            string
	Gems              int
	Respect           int
	TotalVoiceMinutes int
	TotalMessages     int
	CreatedAt         time.Time
}

type Transaction struct {
	ID          int64
	UserID      string
	Type        string
	Amount      int
	Description string
	CreatedAt   time.Time
}

// BalanceCredit is a staged balance mutation. The repository applies the
// user-row delta and the matching transactions row in whatever transaction
// the calling operation commits, so a payout never lands without its audit
// entry.
type BalanceCredit struct {
	UserID      string
	Gems        int
	Respect     int
	Type        string
	Description string
}

type LeaderboardEntry struct {
	UserID            string
	Username          string
	GlobalName        string
	Avatar            string
	Gems              int
	Respect           int
	TotalVoiceMinutes int
	TotalMessages     int
	Score             int
}
