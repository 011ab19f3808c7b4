package models

import "time"

// Completion is the durable per-(user, task) summary of whether and how well
// the task has been completed. Score is a percentage in [0, 100]; CompletedAt
// stays nil while the task is still in progress and, once set, is never
// cleared or moved.
type Completion struct {
	ID          int64      `json:"id" db:"id"`
	UserID      string     `json:"user_id" db:"user_id"`
	TaskID      string     `json:"task_id" db:"task_id"`
	CourseID    string     `json:"course_id" db:"course_id"`
	Score       float64    `json:"score" db:"score"`
	Attempts    int        `json:"attempts" db:"attempts"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Completed reports whether the completion timestamp has been set.
func (c *Completion) Completed() bool {
	return c.CompletedAt != nil
}
