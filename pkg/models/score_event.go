package models

// ScoreSource identifies which kind of graded activity produced a score event.
type ScoreSource string

const (
	SourceQuiz              ScoreSource = "quiz"
	SourceReading           ScoreSource = "reading"
	SourceListening         ScoreSource = "listening"
	SourceVocabularyMastery ScoreSource = "vocabulary_mastery"
)

// Valid reports whether the source is one of the known activity kinds.
func (s ScoreSource) Valid() bool {
	switch s {
	case SourceQuiz, SourceReading, SourceListening, SourceVocabularyMastery:
		return true
	}
	return false
}

// ScoreEvent is a scored attempt submitted for aggregation. It is transient
// input: the engine folds it into the completion record but never stores the
// event itself.
type ScoreEvent struct {
	UserID   string      `json:"user_id"`
	TaskID   string      `json:"task_id"`
	CourseID string      `json:"course_id"`
	RawScore float64     `json:"raw_score"`
	MaxScore float64     `json:"max_score"`
	Source   ScoreSource `json:"source"`
}

// Percentage converts the raw/max pair into a 0-100 percentage.
// Callers must validate MaxScore > 0 first.
func (e ScoreEvent) Percentage() float64 {
	return 100 * e.RawScore / e.MaxScore
}
