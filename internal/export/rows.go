package export

import (
	"fmt"
	"time"

	"github.com/examterm/examterm/internal/i18n"
	"github.com/examterm/examterm/internal/model"
)

// Row is one label/value line of the result summary, shared by the result
// screen and the PDF sheet.
type Row struct {
	Label string
	Value string
	// Fixed marks distribution rows that need a fixed-width font.
	Fixed bool
	// Accent marks the headline rows drawn bold/colored.
	Accent bool
	// Skip is the number of lines to advance after this row.
	Skip int
}

// SummaryRows assembles the localized result summary lines in display
// order.
func SummaryRows(sum model.EvaluationSummary) []Row {
	label := i18n.T("result.failed")
	if sum.Passed {
		label = i18n.T("result.passed")
	}

	return []Row{
		{
			Label:  i18n.T("result.exam_title"),
			Value:  sum.ExamTitle,
			Accent: true,
			Skip:   1,
		},
		{
			Label:  i18n.T("result.result"),
			Value:  label,
			Accent: true,
			Skip:   2,
		},
		{
			Label: i18n.T("result.correct"),
			Value: i18n.Td("result.correct_value", map[string]any{
				"Percent": fmt.Sprintf("%.1f", sum.PercentCorrect),
				"Correct": sum.CorrectCount,
				"Total":   sum.TotalQuestions,
				"Needed":  fmt.Sprintf("%.0f", sum.PassingScore),
			}),
			Skip: 1,
		},
		{
			Label: i18n.T("result.answered"),
			Value: i18n.Td("result.answered_value", map[string]any{
				"Answered": sum.AnsweredCount,
				"Total":    sum.TotalQuestions,
			}),
			Skip: 1,
		},
		{
			Label: i18n.T("result.complete_time"),
			Value: formatClock(sum.ExamElapsed),
			Skip:  1,
		},
		{
			Label: i18n.T("result.time_range"),
			Value: sum.StartedAt.Format("01/02/2006, 15:04:05") + " -> " + sum.FinishedAt.Format("01/02/2006, 15:04:05"),
			Skip:  2,
		},
		{
			Label: i18n.T("result.pause_count"),
			Value: fmt.Sprintf("%d", sum.PauseCount),
			Skip:  1,
		},
		{
			Label: i18n.T("result.paused_time"),
			Value: formatClock(sum.PausedElapsed),
			Skip:  1,
		},
		{
			Label: i18n.T("result.timeline"),
			Value: sum.AnswerTimeline.String(),
			Fixed: true,
			Skip:  1,
		},
		{
			Label: i18n.T("result.durations"),
			Value: sum.AnswerDurations.String(),
			Fixed: true,
			Skip:  1,
		},
		{
			Label: i18n.T("result.mean"),
			Value: i18n.Td("result.mean_value", map[string]any{
				"Mean": fmt.Sprintf("%.1f", sum.MeanAnswerTime.Seconds()),
				"Std":  fmt.Sprintf("%.2f", sum.StdDevAnswerTime.Seconds()),
			}),
			Skip: 1,
		},
		{
			Label: i18n.T("result.median"),
			Value: i18n.Td("result.median_value", map[string]any{
				"Median": fmt.Sprintf("%.1f", sum.MedianAnswerTime.Seconds()),
			}),
			Skip: 1,
		},
	}
}

// formatClock renders a duration as HH:MM:SS.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
