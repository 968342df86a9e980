package model

import (
	"fmt"
	"sort"
	"time"
)

// ExamDefinition is the static description of an exam. It is built once by
// the definition package and never mutated afterwards; per-attempt state
// lives in the questions' AnswerRecords, which the session owns.
type ExamDefinition struct {
	Title        string
	Author       string
	EditDate     string
	Description  string
	AllowedTime  time.Duration
	PassingScore float64
	Questions    []Question
}

// Question is a single exam question with precomputed correctness metadata.
type Question struct {
	Number             int
	Text               string
	Choices            []string
	Correct            []bool
	MultiSelect        bool
	RequiredSelections int
	// AllowedTime limits how long this question may stay on screen.
	// Zero means the question has no limit of its own.
	AllowedTime time.Duration

	Record AnswerRecord
}

// CorrectIndexes returns the indexes of the correct choices, ascending.
func (q *Question) CorrectIndexes() []int {
	var out []int
	for i, c := range q.Correct {
		if c {
			out = append(out, i)
		}
	}
	return out
}

// AnswerRecord tracks one question's presentation and resolution during an
// attempt. It is created when the question is first shown and frozen once
// the question resolves (submit, quit or timeout).
type AnswerRecord struct {
	Selected    []int
	PresentedAt time.Time
	AnsweredAt  time.Time
	TimeSpent   time.Duration
	// ExamTimeAt is the exam-relevant elapsed time at the moment the
	// question resolved. Used for the answers-over-exam-time distribution.
	ExamTimeAt        time.Duration
	AnsweredCorrectly bool
	TimedOut          bool
	Answered          bool
}

// SelectedSorted returns a sorted copy of the selected indexes.
func (r *AnswerRecord) SelectedSorted() []int {
	out := make([]int, len(r.Selected))
	copy(out, r.Selected)
	sort.Ints(out)
	return out
}

// SessionState is the aggregate outcome of one attempt, read by the
// evaluation engine after every attempted question is finalized.
type SessionState struct {
	StartedAt     time.Time
	FinishedAt    time.Time
	GlobalElapsed time.Duration
	ExamElapsed   time.Duration
	PausedElapsed time.Duration
	PauseCount    int
	TimedOut      bool
	Quit          bool

	CurrentQuestion int
	CompletedCount  int
	CorrectCount    int
	WrongCount      int
}

// Distribution is a fixed-width bucketed view of a set of durations,
// rendered as a row of marks between zero and Upper.
type Distribution struct {
	Width int
	Marks []bool
	Upper time.Duration
}

// String renders the distribution the way the result screen shows it,
// for example "[ 0.0s ].....x..x...[ 42.5s ]".
func (d Distribution) String() string {
	row := make([]byte, d.Width)
	for i := range row {
		row[i] = '.'
	}
	for i, m := range d.Marks {
		if m && i < len(row) {
			row[i] = 'x'
		}
	}
	return fmt.Sprintf("[ 0.0s ]%s[ %.1fs ]", row, d.Upper.Seconds())
}

// EvaluationSummary holds the final scored outcome of an attempt.
type EvaluationSummary struct {
	ExamTitle    string
	PassingScore float64

	PercentCorrect float64
	Passed         bool
	Label          string

	CorrectCount   int
	WrongCount     int
	AnsweredCount  int
	TotalQuestions int

	StartedAt     time.Time
	FinishedAt    time.Time
	ExamElapsed   time.Duration
	PausedElapsed time.Duration
	PauseCount    int
	TimedOut      bool

	MeanAnswerTime   time.Duration
	MedianAnswerTime time.Duration
	StdDevAnswerTime time.Duration

	AnswerTimeline  Distribution
	AnswerDurations Distribution
}
