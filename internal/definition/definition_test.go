package definition

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

const validExam = `
exam:
  exam_title: Test Exam
  exam_author: Tester
  exam_edit_date: 2026-08-01
  exam_description: A test exam
  exam_allowed_time: 10
  exam_allowed_time_units: minutes
  exam_passing_score: 70
questions:
  - question: Pick one
    selection:
      - wrong
      - right: true
      - also wrong
  - question: Pick two
    question_allowed_time: 30
    selection:
      - first: true
      - nope
      - third: true
      - also nope: false
`

func TestParseValid(t *testing.T) {
	def, err := Parse([]byte(validExam))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if def.Title != "Test Exam" {
		t.Errorf("expected title 'Test Exam', got %q", def.Title)
	}
	if def.AllowedTime != 10*time.Minute {
		t.Errorf("expected allowed time 10m, got %v", def.AllowedTime)
	}
	if def.PassingScore != 70 {
		t.Errorf("expected passing score 70, got %v", def.PassingScore)
	}
	if len(def.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(def.Questions))
	}

	q := def.Questions[0]
	if q.MultiSelect {
		t.Error("question 1 should be single-select")
	}
	if q.RequiredSelections != 1 {
		t.Errorf("question 1 required selections = %d, want 1", q.RequiredSelections)
	}
	if got := q.CorrectIndexes(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("question 1 correct indexes = %v, want [1]", got)
	}
	if q.AllowedTime != 0 {
		t.Errorf("question 1 should have no per-question limit, got %v", q.AllowedTime)
	}

	q = def.Questions[1]
	if !q.MultiSelect {
		t.Error("question 2 should be multi-select")
	}
	if q.RequiredSelections != 2 {
		t.Errorf("question 2 required selections = %d, want 2", q.RequiredSelections)
	}
	if got := q.CorrectIndexes(); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("question 2 correct indexes = %v, want [0 2]", got)
	}
	if q.AllowedTime != 30*time.Second {
		t.Errorf("question 2 allowed time = %v, want 30s", q.AllowedTime)
	}
	// An annotated-false entry counts as incorrect, same as a plain string.
	if q.Correct[3] {
		t.Error("annotated-false choice should be incorrect")
	}
}

func TestParseIdempotent(t *testing.T) {
	first, err := Parse([]byte(validExam))
	if err != nil {
		t.Fatalf("first Parse: %v", err)
	}
	second, err := Parse([]byte(validExam))
	if err != nil {
		t.Fatalf("second Parse: %v", err)
	}
	for i := range first.Questions {
		a, b := first.Questions[i], second.Questions[i]
		if a.RequiredSelections != b.RequiredSelections || a.MultiSelect != b.MultiSelect {
			t.Errorf("question %d metadata differs between builds: %+v vs %+v", i, a, b)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no questions", `
exam:
  exam_allowed_time: 10
  exam_allowed_time_units: minutes
  exam_passing_score: 70
questions: []
`},
		{"question without choices", `
exam:
  exam_allowed_time: 10
  exam_allowed_time_units: minutes
  exam_passing_score: 70
questions:
  - question: Empty
    selection: []
`},
		{"no correct choice", `
exam:
  exam_allowed_time: 10
  exam_allowed_time_units: minutes
  exam_passing_score: 70
questions:
  - question: Impossible
    selection:
      - a
      - b
`},
		{"bad time units", `
exam:
  exam_allowed_time: 10
  exam_allowed_time_units: fortnights
  exam_passing_score: 70
questions:
  - question: Q
    selection:
      - a: true
`},
		{"zero allowed time", `
exam:
  exam_allowed_time: 0
  exam_allowed_time_units: minutes
  exam_passing_score: 70
questions:
  - question: Q
    selection:
      - a: true
`},
		{"passing score out of range", `
exam:
  exam_allowed_time: 10
  exam_allowed_time_units: minutes
  exam_passing_score: 142
questions:
  - question: Q
    selection:
      - a: true
`},
		{"per-question time below one second", `
exam:
  exam_allowed_time: 10
  exam_allowed_time_units: minutes
  exam_passing_score: 70
questions:
  - question: Q
    question_allowed_time: -5
    selection:
      - a: true
`},
		{"multi-key selection mapping", `
exam:
  exam_allowed_time: 10
  exam_allowed_time_units: minutes
  exam_passing_score: 70
questions:
  - question: Q
    selection:
      - a: true
        b: false
`},
		{"non-boolean annotation", `
exam:
  exam_allowed_time: 10
  exam_allowed_time_units: minutes
  exam_passing_score: 70
questions:
  - question: Q
    selection:
      - a: maybe
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseErrorType(t *testing.T) {
	_, err := Parse([]byte(`
exam:
  exam_allowed_time: 10
  exam_allowed_time_units: eons
  exam_passing_score: 70
questions:
  - question: Q
    selection:
      - a: true
`))
	var defErr *Error
	if !errors.As(err, &defErr) {
		t.Fatalf("expected *definition.Error, got %T: %v", err, err)
	}
}

func TestConvertAllowedTime(t *testing.T) {
	tests := []struct {
		value float64
		units string
		want  time.Duration
	}{
		{90, "seconds", 90 * time.Second},
		{1.5, "minutes", 90 * time.Second},
		{2, "hours", 2 * time.Hour},
		{30, "s", 30 * time.Second},
		{5, "min", 5 * time.Minute},
		{1, "HOURS", time.Hour},
	}
	for _, tt := range tests {
		got, err := convertAllowedTime(tt.value, tt.units)
		if err != nil {
			t.Errorf("convertAllowedTime(%v, %q): %v", tt.value, tt.units, err)
			continue
		}
		if got != tt.want {
			t.Errorf("convertAllowedTime(%v, %q) = %v, want %v", tt.value, tt.units, got, tt.want)
		}
	}
}

func TestSample(t *testing.T) {
	def, err := Sample()
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(def.Questions) == 0 {
		t.Fatal("sample exam has no questions")
	}
	for i, q := range def.Questions {
		if q.RequiredSelections < 1 {
			t.Errorf("sample question %d has no correct choice", i+1)
		}
	}
}
