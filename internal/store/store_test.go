package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/examterm/examterm/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testAttempt(title string, passed bool) model.Attempt {
	started := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	return model.Attempt{
		ExamTitle:      title,
		ExamAuthor:     "Tester",
		StartedAt:      started,
		FinishedAt:     started.Add(12 * time.Minute),
		PercentCorrect: 80,
		PassingScore:   70,
		Passed:         passed,
		CorrectCount:   4,
		WrongCount:     1,
		AnsweredCount:  5,
		TotalQuestions: 5,
		ExamElapsed:    11 * time.Minute,
		PausedElapsed:  time.Minute,
		PauseCount:     1,
		Questions: []model.AttemptQuestion{
			{Number: 0, Text: "first", Selected: []int{1}, Answered: true, Correct: true,
				TimeSpent: 30 * time.Second, ExamTime: 30 * time.Second},
			{Number: 1, Text: "second", Selected: []int{0, 2}, Answered: true, Correct: false,
				TimeSpent: 45 * time.Second, ExamTime: 75 * time.Second},
			{Number: 2, Text: "third", Selected: nil, Answered: false, TimedOut: true,
				TimeSpent: 60 * time.Second, ExamTime: 135 * time.Second},
		},
	}
}

func TestSaveAndGetAttempt(t *testing.T) {
	s := newTestStore(t)

	id, err := s.SaveAttempt(testAttempt("History Exam", true))
	if err != nil {
		t.Fatalf("SaveAttempt: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated attempt ID")
	}

	got, err := s.GetAttempt(id)
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if got.ExamTitle != "History Exam" {
		t.Errorf("title = %q, want 'History Exam'", got.ExamTitle)
	}
	if !got.Passed {
		t.Error("attempt should be stored as passed")
	}
	if got.ExamElapsed != 11*time.Minute {
		t.Errorf("exam elapsed = %v, want 11m", got.ExamElapsed)
	}
	if len(got.Questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(got.Questions))
	}

	q := got.Questions[1]
	if len(q.Selected) != 2 || q.Selected[0] != 0 || q.Selected[1] != 2 {
		t.Errorf("selected = %v, want [0 2]", q.Selected)
	}
	if q.Correct {
		t.Error("question 2 should be stored as incorrect")
	}

	q = got.Questions[2]
	if !q.TimedOut || q.Answered {
		t.Errorf("question 3 timed_out/answered = %v/%v, want true/false", q.TimedOut, q.Answered)
	}
	if q.Selected != nil {
		t.Errorf("question 3 selected = %v, want nil", q.Selected)
	}
}

func TestGetAttemptNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetAttempt("no-such-id")
	if err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

func TestListAttemptsOrder(t *testing.T) {
	s := newTestStore(t)

	count, err := s.AttemptCount()
	if err != nil {
		t.Fatalf("AttemptCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty store, got %d attempts", count)
	}

	older := testAttempt("Older", false)
	newer := testAttempt("Newer", true)
	newer.FinishedAt = older.FinishedAt.Add(time.Hour)

	if _, err := s.SaveAttempt(older); err != nil {
		t.Fatalf("SaveAttempt older: %v", err)
	}
	if _, err := s.SaveAttempt(newer); err != nil {
		t.Fatalf("SaveAttempt newer: %v", err)
	}

	list, err := s.ListAttempts()
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(list))
	}
	if list[0].ExamTitle != "Newer" {
		t.Errorf("most recent attempt should be first, got %q", list[0].ExamTitle)
	}
	if len(list[0].Questions) != 0 {
		t.Error("list should not include question rows")
	}
}

func TestExportAllChronological(t *testing.T) {
	s := newTestStore(t)

	first := testAttempt("First", true)
	second := testAttempt("Second", false)
	second.FinishedAt = first.FinishedAt.Add(time.Hour)

	if _, err := s.SaveAttempt(first); err != nil {
		t.Fatalf("SaveAttempt: %v", err)
	}
	if _, err := s.SaveAttempt(second); err != nil {
		t.Fatalf("SaveAttempt: %v", err)
	}

	all, err := s.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(all))
	}
	if all[0].ExamTitle != "First" || all[1].ExamTitle != "Second" {
		t.Errorf("export order = [%q %q], want chronological", all[0].ExamTitle, all[1].ExamTitle)
	}
	if len(all[0].Questions) != 3 {
		t.Errorf("exported attempts should include question rows, got %d", len(all[0].Questions))
	}
}

func TestSelectedEncoding(t *testing.T) {
	tests := []struct {
		in   []int
		text string
	}{
		{nil, ""},
		{[]int{0}, "0"},
		{[]int{0, 2, 3}, "0,2,3"},
	}
	for _, tt := range tests {
		if got := encodeSelected(tt.in); got != tt.text {
			t.Errorf("encodeSelected(%v) = %q, want %q", tt.in, got, tt.text)
		}
		back := decodeSelected(tt.text)
		if len(back) != len(tt.in) {
			t.Errorf("decodeSelected(%q) = %v, want %v", tt.text, back, tt.in)
		}
	}
}
