// Package export turns a finished attempt into documents: the JSON history
// export and the PDF result summary sheet.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/examterm/examterm/internal/model"
)

// BuildAttempt flattens a scored attempt into the structure the store and
// the exporters consume.
func BuildAttempt(def *model.ExamDefinition, sum model.EvaluationSummary, questions []model.Question, quit bool) model.Attempt {
	qs := make([]model.AttemptQuestion, 0, len(questions))
	for i := range questions {
		rec := &questions[i].Record
		qs = append(qs, model.AttemptQuestion{
			Number:    questions[i].Number,
			Text:      questions[i].Text,
			Selected:  rec.SelectedSorted(),
			Answered:  rec.Answered,
			Correct:   rec.AnsweredCorrectly,
			TimedOut:  rec.TimedOut,
			TimeSpent: rec.TimeSpent,
			ExamTime:  rec.ExamTimeAt,
		})
	}

	return model.Attempt{
		ExamTitle:      def.Title,
		ExamAuthor:     def.Author,
		StartedAt:      sum.StartedAt,
		FinishedAt:     sum.FinishedAt,
		PercentCorrect: sum.PercentCorrect,
		PassingScore:   sum.PassingScore,
		Passed:         sum.Passed,
		CorrectCount:   sum.CorrectCount,
		WrongCount:     sum.WrongCount,
		AnsweredCount:  sum.AnsweredCount,
		TotalQuestions: sum.TotalQuestions,
		ExamElapsed:    sum.ExamElapsed,
		PausedElapsed:  sum.PausedElapsed,
		PauseCount:     sum.PauseCount,
		TimedOut:       sum.TimedOut,
		Quit:           quit,
		Questions:      qs,
	}
}

// WriteJSON writes the attempt history as indented JSON with a trailing
// newline.
func WriteJSON(w io.Writer, attempts []model.Attempt) error {
	export := model.HistoryExport{
		GeneratedAt: time.Now(),
		NumAttempts: len(attempts),
		Attempts:    attempts,
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
