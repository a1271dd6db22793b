package model

import "time"

// VoiceSession is a live voice presence owned by the activity ingest
// component for the duration of the session.
type VoiceSession struct {
	UserID    string
	ChannelID string
	JoinedAt  time.Time
}
