// Package store keeps the history of finished exam attempts in a local
// sqlite database. Only completed attempts are stored; an unfinished
// attempt is never persisted or resumed.
package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/examterm/examterm/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		exam_title TEXT NOT NULL,
		exam_author TEXT NOT NULL DEFAULT '',
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		percent_correct REAL NOT NULL,
		passing_score REAL NOT NULL,
		passed INTEGER NOT NULL,
		correct_count INTEGER NOT NULL,
		wrong_count INTEGER NOT NULL,
		answered_count INTEGER NOT NULL,
		total_questions INTEGER NOT NULL,
		exam_elapsed_ms INTEGER NOT NULL,
		paused_elapsed_ms INTEGER NOT NULL,
		pause_count INTEGER NOT NULL,
		timed_out INTEGER NOT NULL,
		quit INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attempt_questions (
		attempt_id TEXT NOT NULL,
		number INTEGER NOT NULL,
		text TEXT NOT NULL,
		selected TEXT NOT NULL DEFAULT '',
		answered INTEGER NOT NULL,
		correct INTEGER NOT NULL,
		timed_out INTEGER NOT NULL,
		time_spent_ms INTEGER NOT NULL,
		exam_time_ms INTEGER NOT NULL,
		PRIMARY KEY (attempt_id, number),
		FOREIGN KEY (attempt_id) REFERENCES attempts(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveAttempt stores one finished attempt and returns its generated ID.
func (s *Store) SaveAttempt(a model.Attempt) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO attempts (id, exam_title, exam_author, started_at, finished_at,
			percent_correct, passing_score, passed,
			correct_count, wrong_count, answered_count, total_questions,
			exam_elapsed_ms, paused_elapsed_ms, pause_count, timed_out, quit)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ExamTitle, a.ExamAuthor, a.StartedAt, a.FinishedAt,
		a.PercentCorrect, a.PassingScore, a.Passed,
		a.CorrectCount, a.WrongCount, a.AnsweredCount, a.TotalQuestions,
		a.ExamElapsed.Milliseconds(), a.PausedElapsed.Milliseconds(),
		a.PauseCount, a.TimedOut, a.Quit,
	)
	if err != nil {
		return "", fmt.Errorf("insert attempt: %w", err)
	}

	for _, q := range a.Questions {
		_, err = tx.Exec(
			`INSERT INTO attempt_questions (attempt_id, number, text, selected,
				answered, correct, timed_out, time_spent_ms, exam_time_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, q.Number, q.Text, encodeSelected(q.Selected),
			q.Answered, q.Correct, q.TimedOut,
			q.TimeSpent.Milliseconds(), q.ExamTime.Milliseconds(),
		)
		if err != nil {
			return "", fmt.Errorf("insert attempt question %d: %w", q.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return a.ID, nil
}

// ListAttempts returns all stored attempts, most recent first, without
// their per-question rows.
func (s *Store) ListAttempts() ([]model.Attempt, error) {
	rows, err := s.db.Query(
		`SELECT id, exam_title, exam_author, started_at, finished_at,
			percent_correct, passing_score, passed,
			correct_count, wrong_count, answered_count, total_questions,
			exam_elapsed_ms, paused_elapsed_ms, pause_count, timed_out, quit
		 FROM attempts ORDER BY finished_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// GetAttempt returns one attempt including its per-question rows.
func (s *Store) GetAttempt(id string) (model.Attempt, error) {
	row := s.db.QueryRow(
		`SELECT id, exam_title, exam_author, started_at, finished_at,
			percent_correct, passing_score, passed,
			correct_count, wrong_count, answered_count, total_questions,
			exam_elapsed_ms, paused_elapsed_ms, pause_count, timed_out, quit
		 FROM attempts WHERE id = ?`, id)
	a, err := scanAttempt(row)
	if err != nil {
		return model.Attempt{}, err
	}

	qs, err := s.attemptQuestions(id)
	if err != nil {
		return model.Attempt{}, fmt.Errorf("attempt questions: %w", err)
	}
	a.Questions = qs
	return a, nil
}

// ExportAll returns every stored attempt with question rows, oldest first,
// ready for JSON export.
func (s *Store) ExportAll() ([]model.Attempt, error) {
	attempts, err := s.ListAttempts()
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	// ListAttempts is newest-first for display; exports read better in
	// chronological order.
	out := make([]model.Attempt, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		full, err := s.GetAttempt(attempts[i].ID)
		if err != nil {
			return nil, fmt.Errorf("get attempt %s: %w", attempts[i].ID, err)
		}
		out = append(out, full)
	}
	return out, nil
}

// AttemptCount returns the number of stored attempts.
func (s *Store) AttemptCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM attempts`).Scan(&count)
	return count, err
}

func (s *Store) attemptQuestions(attemptID string) ([]model.AttemptQuestion, error) {
	rows, err := s.db.Query(
		`SELECT number, text, selected, answered, correct, timed_out,
			time_spent_ms, exam_time_ms
		 FROM attempt_questions WHERE attempt_id = ? ORDER BY number`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var qs []model.AttemptQuestion
	for rows.Next() {
		var q model.AttemptQuestion
		var selected string
		var spentMS, examMS int64
		if err := rows.Scan(&q.Number, &q.Text, &selected, &q.Answered,
			&q.Correct, &q.TimedOut, &spentMS, &examMS); err != nil {
			return nil, err
		}
		q.Selected = decodeSelected(selected)
		q.TimeSpent = time.Duration(spentMS) * time.Millisecond
		q.ExamTime = time.Duration(examMS) * time.Millisecond
		qs = append(qs, q)
	}
	return qs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row scanner) (model.Attempt, error) {
	var a model.Attempt
	var examMS, pausedMS int64
	err := row.Scan(&a.ID, &a.ExamTitle, &a.ExamAuthor, &a.StartedAt, &a.FinishedAt,
		&a.PercentCorrect, &a.PassingScore, &a.Passed,
		&a.CorrectCount, &a.WrongCount, &a.AnsweredCount, &a.TotalQuestions,
		&examMS, &pausedMS, &a.PauseCount, &a.TimedOut, &a.Quit)
	if err != nil {
		return model.Attempt{}, err
	}
	a.ExamElapsed = time.Duration(examMS) * time.Millisecond
	a.PausedElapsed = time.Duration(pausedMS) * time.Millisecond
	return a, nil
}

func encodeSelected(selected []int) string {
	parts := make([]string, len(selected))
	for i, v := range selected {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func decodeSelected(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
