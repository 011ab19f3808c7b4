package models

import "time"

// Task is one unit of course content a user can work through.
type Task struct {
	ID        string    `json:"id" db:"id"`
	CourseID  string    `json:"course_id" db:"course_id"`
	Title     string    `json:"title" db:"title"`
	Language  string    `json:"language" db:"language"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TaskWord is one entry of a task's canonical word list.
type TaskWord struct {
	ID          int64     `json:"id" db:"id"`
	TaskID      string    `json:"task_id" db:"task_id"`
	Term        string    `json:"term" db:"term"`
	Translation string    `json:"translation" db:"translation"`
	Position    int       `json:"position" db:"position"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
