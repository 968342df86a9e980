// Package eval computes the final scored summary of a finished attempt.
// Everything here is a pure function over finalized answer records.
package eval

import (
	"math"
	"sort"
	"time"

	"github.com/examterm/examterm/internal/model"
)

// DistributionWidth is the character width of the result-screen
// distributions.
const DistributionWidth = 33

// Evaluate scores a finished attempt. questions are the session's finalized
// records; st is the aggregate session state. Must only be called after all
// attempted questions are finalized.
func Evaluate(def *model.ExamDefinition, questions []model.Question, st model.SessionState) model.EvaluationSummary {
	total := len(questions)

	percent := 0.0
	if total > 0 {
		percent = float64(st.CorrectCount) / float64(total) * 100
	}
	// The passing boundary is inclusive: scoring exactly the passing
	// score passes.
	passed := percent >= def.PassingScore
	label := "FAILED"
	if passed {
		label = "PASSED"
	}

	answered := 0
	var examTimes, spentTimes []time.Duration
	for i := range questions {
		rec := &questions[i].Record
		if !rec.Answered {
			continue
		}
		answered++
		examTimes = append(examTimes, rec.ExamTimeAt)
		spentTimes = append(spentTimes, rec.TimeSpent)
	}

	mean, median, stddev := answerTimeStats(spentTimes)

	timelineUpper := st.ExamElapsed
	if timelineUpper <= 0 {
		timelineUpper = time.Second
	}
	durationUpper := time.Second
	if len(spentTimes) > 0 {
		durationUpper = time.Duration(float64(maxDuration(spentTimes)) * 1.25)
	}
	if durationUpper <= 0 {
		durationUpper = time.Second
	}

	return model.EvaluationSummary{
		ExamTitle:    def.Title,
		PassingScore: def.PassingScore,

		PercentCorrect: percent,
		Passed:         passed,
		Label:          label,

		CorrectCount:   st.CorrectCount,
		WrongCount:     st.WrongCount,
		AnsweredCount:  answered,
		TotalQuestions: total,

		StartedAt:     st.StartedAt,
		FinishedAt:    st.FinishedAt,
		ExamElapsed:   st.ExamElapsed,
		PausedElapsed: st.PausedElapsed,
		PauseCount:    st.PauseCount,
		TimedOut:      st.TimedOut,

		MeanAnswerTime:   mean,
		MedianAnswerTime: median,
		StdDevAnswerTime: stddev,

		AnswerTimeline:  Distribution(examTimes, timelineUpper, DistributionWidth),
		AnswerDurations: Distribution(spentTimes, durationUpper, DistributionWidth),
	}
}

// Distribution buckets values into a fixed-width row of marks between zero
// and upper. Bucket placement is floor(value/upper*width) with the index
// clamped into [0,width-1], so a value equal to the boundary lands in the
// last bucket instead of one past it.
func Distribution(values []time.Duration, upper time.Duration, width int) model.Distribution {
	marks := make([]bool, width)
	for _, v := range values {
		idx := int(float64(v) / float64(upper) * float64(width))
		if idx < 0 {
			idx = 0
		}
		if idx >= width {
			idx = width - 1
		}
		marks[idx] = true
	}
	return model.Distribution{Width: width, Marks: marks, Upper: upper}
}

// answerTimeStats returns mean, median and population standard deviation of
// the answer durations. The standard deviation of fewer than two samples is
// zero, not an error.
func answerTimeStats(times []time.Duration) (mean, median, stddev time.Duration) {
	n := len(times)
	if n == 0 {
		return 0, 0, 0
	}

	var sum float64
	for _, t := range times {
		sum += t.Seconds()
	}
	meanSec := sum / float64(n)

	sorted := make([]time.Duration, n)
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	var medianSec float64
	if n%2 == 1 {
		medianSec = sorted[n/2].Seconds()
	} else {
		medianSec = (sorted[n/2-1].Seconds() + sorted[n/2].Seconds()) / 2
	}

	var stddevSec float64
	if n >= 2 {
		var sq float64
		for _, t := range times {
			d := t.Seconds() - meanSec
			sq += d * d
		}
		stddevSec = math.Sqrt(sq / float64(n))
	}

	return secondsToDuration(meanSec), secondsToDuration(medianSec), secondsToDuration(stddevSec)
}

func maxDuration(values []time.Duration) time.Duration {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
