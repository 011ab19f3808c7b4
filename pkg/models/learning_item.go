package models

import "time"

// MasteryStatus describes how far a user has progressed with a single learning item.
type MasteryStatus int

const (
	StatusNotStarted MasteryStatus = iota
	StatusIntroduced
	StatusPartiallyLearned
	StatusSecondChance
	StatusReviewing
	StatusMastered
)

// Valid reports whether the status is within the supported range.
func (s MasteryStatus) Valid() bool {
	return s >= StatusNotStarted && s <= StatusMastered
}

// String returns a human-readable name for the status.
func (s MasteryStatus) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusIntroduced:
		return "introduced"
	case StatusPartiallyLearned:
		return "partially_learned"
	case StatusSecondChance:
		return "second_chance"
	case StatusReviewing:
		return "reviewing"
	case StatusMastered:
		return "mastered"
	default:
		return "unknown"
	}
}

// LearningItem tracks a user's mastery of one term within a task.
// The set of terms for a (user, task) pair mirrors the task's canonical
// word list exactly once initialization has completed.
type LearningItem struct {
	ID         int64         `json:"id" db:"id"`
	UserID     string        `json:"user_id" db:"user_id"`
	TaskID     string        `json:"task_id" db:"task_id"`
	Term       string        `json:"term" db:"term"`
	Status     MasteryStatus `json:"status" db:"status"`
	Definition *string       `json:"definition,omitempty" db:"definition"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}
