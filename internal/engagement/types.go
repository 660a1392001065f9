// Package engagement records session lifecycle events and hands out
// awards for completed sessions, day streaks and newly mastered topics.
// Every hook is best effort: failures are logged and never reach the
// caller.
package engagement

import "time"

// AwardType identifies the category of an award.
type AwardType string

const (
	AwardMastery AwardType = "mastery"
	AwardStreak  AwardType = "streak"
	AwardSession AwardType = "session"
)

// DisplayName returns a human-readable label for the award type.
func (t AwardType) DisplayName() string {
	switch t {
	case AwardMastery:
		return "Mastery"
	case AwardStreak:
		return "Streak"
	case AwardSession:
		return "Session"
	default:
		return string(t)
	}
}

// Award is one earned achievement.
type Award struct {
	Type      AwardType `json:"type"`
	Rarity    Rarity    `json:"rarity"`
	StudentID string    `json:"studentId"`
	SessionID string    `json:"sessionId"`
	TopicID   string    `json:"topicId,omitempty"`
	Reason    string    `json:"reason"`
	AwardedAt time.Time `json:"awardedAt"`
}

// Session event kinds.
const (
	KindStarted   = "session-started"
	KindCompleted = "session-completed"
	KindAbandoned = "session-abandoned"
	KindAward     = "award"
)

// MasteredTopic is a topic the student mastered during a session.
type MasteredTopic struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Difficulty int    `json:"difficulty"`
}

// SessionSummary is what the engagement hooks need to know about a
// completed session.
type SessionSummary struct {
	SessionID     string          `json:"sessionId"`
	StudentID     string          `json:"studentId"`
	Type          string          `json:"type"`
	TopicID       string          `json:"topicId,omitempty"`
	Correct       int             `json:"correct"`
	Total         int             `json:"total"`
	Accuracy      float64         `json:"accuracy"` // percent, 0-100
	CompletedAt   time.Time       `json:"completedAt"`
	NewlyMastered []MasteredTopic `json:"newlyMastered,omitempty"`
}
