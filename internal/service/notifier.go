package service

import "sync"

// Event types pushed to connected clients.
const (
	EventStreakQualified = "streak_qualified"
	EventStreakMilestone = "streak_milestone"
	EventDailyReward     = "daily_reward_claimed"
	EventQuestCompleted  = "quest_completed"
	EventAchievement     = "achievement_unlocked"
	EventTradeReceived   = "trade_received"
	EventTradeResolved   = "trade_resolved"
)

type Event struct {
	Type    string         `json:"type"`
	UserID  string         `json:"user_id"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Notifier is the process-local event bus between engines and websocket
// subscribers. Publish never blocks: a subscriber that cannot keep up drops
// events rather than stalling a settlement. A nil *Notifier is a valid no-op,
// which keeps the engines testable without one.
type Notifier struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers for a user's events; cancel removes the subscription
// and closes the channel.
func (n *Notifier) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	n.mu.Lock()
	if n.subs[userID] == nil {
		n.subs[userID] = make(map[chan Event]struct{})
	}
	n.subs[userID][ch] = struct{}{}
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		if set, ok := n.subs[userID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(n.subs, userID)
			}
		}
		n.mu.Unlock()
	}

	return ch, cancel
}

func (n *Notifier) Publish(event Event) {
	if n == nil {
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.subs[event.UserID] {
		select {
		case ch <- event:
		default:
		}
	}
}
