package eval

import (
	"testing"
	"time"

	"github.com/examterm/examterm/internal/model"
)

func makeQuestions(total, answered int, spent time.Duration) []model.Question {
	qs := make([]model.Question, total)
	for i := range qs {
		qs[i] = model.Question{
			Number:             i,
			Choices:            []string{"a", "b"},
			Correct:            []bool{true, false},
			RequiredSelections: 1,
		}
		if i < answered {
			qs[i].Record = model.AnswerRecord{
				Answered:   true,
				TimeSpent:  spent,
				ExamTimeAt: time.Duration(i+1) * spent,
			}
		}
	}
	return qs
}

func TestEvaluatePassingBoundary(t *testing.T) {
	def := &model.ExamDefinition{Title: "Boundary", PassingScore: 70}

	tests := []struct {
		name        string
		correct     int
		total       int
		wantPercent float64
		wantPassed  bool
	}{
		{"exactly at boundary", 7, 10, 70.0, true},
		{"below boundary", 6, 10, 60.0, false},
		{"all correct", 10, 10, 100.0, true},
		{"none correct", 0, 10, 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs := makeQuestions(tt.total, tt.total, 2*time.Second)
			st := model.SessionState{
				CorrectCount: tt.correct,
				WrongCount:   tt.total - tt.correct,
				ExamElapsed:  time.Minute,
			}
			sum := Evaluate(def, qs, st)
			if sum.PercentCorrect != tt.wantPercent {
				t.Errorf("percent = %v, want %v", sum.PercentCorrect, tt.wantPercent)
			}
			if sum.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v", sum.Passed, tt.wantPassed)
			}
			wantLabel := "FAILED"
			if tt.wantPassed {
				wantLabel = "PASSED"
			}
			if sum.Label != wantLabel {
				t.Errorf("label = %q, want %q", sum.Label, wantLabel)
			}
		})
	}
}

func TestEvaluateAnsweredCount(t *testing.T) {
	def := &model.ExamDefinition{PassingScore: 50}
	qs := makeQuestions(5, 3, time.Second)
	st := model.SessionState{CorrectCount: 3, ExamElapsed: 30 * time.Second}

	sum := Evaluate(def, qs, st)
	if sum.AnsweredCount != 3 {
		t.Errorf("answered = %d, want 3", sum.AnsweredCount)
	}
	if sum.TotalQuestions != 5 {
		t.Errorf("total = %d, want 5", sum.TotalQuestions)
	}
}

func TestAnswerTimeStats(t *testing.T) {
	times := []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second}
	mean, median, stddev := answerTimeStats(times)

	if mean != 4*time.Second {
		t.Errorf("mean = %v, want 4s", mean)
	}
	if median != 4*time.Second {
		t.Errorf("median = %v, want 4s", median)
	}
	// Population standard deviation of {2,4,6} is sqrt(8/3) ~ 1.633s.
	want := 1633 * time.Millisecond
	if diff := stddev - want; diff < -5*time.Millisecond || diff > 5*time.Millisecond {
		t.Errorf("stddev = %v, want ~%v", stddev, want)
	}
}

func TestAnswerTimeStatsSingleSample(t *testing.T) {
	mean, median, stddev := answerTimeStats([]time.Duration{3 * time.Second})
	if mean != 3*time.Second || median != 3*time.Second {
		t.Errorf("mean/median = %v/%v, want 3s/3s", mean, median)
	}
	if stddev != 0 {
		t.Errorf("stddev of a single sample = %v, want 0", stddev)
	}
}

func TestAnswerTimeStatsEmpty(t *testing.T) {
	mean, median, stddev := answerTimeStats(nil)
	if mean != 0 || median != 0 || stddev != 0 {
		t.Errorf("stats of no samples = %v/%v/%v, want zeros", mean, median, stddev)
	}
}

func TestAnswerTimeStatsEvenCount(t *testing.T) {
	times := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second, 7 * time.Second}
	_, median, _ := answerTimeStats(times)
	if median != 4*time.Second {
		t.Errorf("median = %v, want 4s", median)
	}
}

func TestDistributionClamping(t *testing.T) {
	upper := 10 * time.Second
	width := 10

	tests := []struct {
		name  string
		value time.Duration
		want  int
	}{
		{"tiny value stays in first bucket", time.Millisecond, 0},
		{"middle value", 5 * time.Second, 5},
		{"value at boundary clamps to last bucket", 10 * time.Second, 9},
		{"value past boundary clamps to last bucket", 15 * time.Second, 9},
		{"zero value", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Distribution([]time.Duration{tt.value}, upper, width)
			for i, m := range d.Marks {
				if m != (i == tt.want) {
					t.Fatalf("mark at %d = %v, want mark only at %d", i, m, tt.want)
				}
			}
		})
	}
}

func TestDistributionString(t *testing.T) {
	d := Distribution([]time.Duration{time.Second}, 4*time.Second, 8)
	got := d.String()
	want := "[ 0.0s ]..x.....[ 4.0s ]"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestEvaluateTimedOutAttempt(t *testing.T) {
	def := &model.ExamDefinition{PassingScore: 70}
	qs := makeQuestions(3, 0, 0)
	// One timed-out record with no selections: never answered, scored
	// wrong, still excluded from the answered count and timing stats.
	qs[0].Record = model.AnswerRecord{TimedOut: true}
	st := model.SessionState{
		WrongCount:  1,
		TimedOut:    true,
		ExamElapsed: 5 * time.Second,
	}

	sum := Evaluate(def, qs, st)
	if sum.AnsweredCount != 0 {
		t.Errorf("answered = %d, want 0", sum.AnsweredCount)
	}
	if !sum.TimedOut {
		t.Error("summary should record the timeout")
	}
	if sum.Passed {
		t.Error("attempt should fail")
	}
	if sum.StdDevAnswerTime != 0 {
		t.Errorf("stddev = %v, want 0 with no answered questions", sum.StdDevAnswerTime)
	}
}
