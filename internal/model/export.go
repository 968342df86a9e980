package model

import "time"

// Attempt is one finished exam attempt as kept in the history store and
// included in exports.
type Attempt struct {
	ID         string    `json:"id"`
	ExamTitle  string    `json:"exam_title"`
	ExamAuthor string    `json:"exam_author"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	PercentCorrect float64 `json:"percent_correct"`
	PassingScore   float64 `json:"passing_score"`
	Passed         bool    `json:"passed"`

	CorrectCount   int `json:"correct_count"`
	WrongCount     int `json:"wrong_count"`
	AnsweredCount  int `json:"answered_count"`
	TotalQuestions int `json:"total_questions"`

	ExamElapsed   time.Duration `json:"exam_elapsed"`
	PausedElapsed time.Duration `json:"paused_elapsed"`
	PauseCount    int           `json:"pause_count"`
	TimedOut      bool          `json:"timed_out"`
	Quit          bool          `json:"quit"`

	Questions []AttemptQuestion `json:"questions"`
}

// AttemptQuestion is the finalized record of a single question within an
// attempt, flattened for storage and export.
type AttemptQuestion struct {
	Number    int           `json:"number"`
	Text      string        `json:"text"`
	Selected  []int         `json:"selected"`
	Answered  bool          `json:"answered"`
	Correct   bool          `json:"correct"`
	TimedOut  bool          `json:"timed_out"`
	TimeSpent time.Duration `json:"time_spent"`
	ExamTime  time.Duration `json:"exam_time"`
}

// HistoryExport is the top-level JSON structure for attempt-history export.
type HistoryExport struct {
	GeneratedAt time.Time `json:"generated_at"`
	NumAttempts int       `json:"num_attempts"`
	Attempts    []Attempt `json:"attempts"`
}
