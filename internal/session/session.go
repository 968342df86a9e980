// Package session drives one live exam attempt: the question sequence, the
// background timer, and the pause/quit/timeout transitions.
package session

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/examterm/examterm/internal/model"
)

// ErrInvalidQuestionState reports an internal invariant violation reaching
// the state machine. It indicates a builder or driver bug and should never
// occur in correct operation.
var ErrInvalidQuestionState = errors.New("invalid question state")

// Phase is the top-level state of an attempt.
type Phase int

const (
	PhaseMenu Phase = iota
	PhaseQuestion
	PhaseResult
)

// ActionKind identifies a discrete user action reported by the renderer.
type ActionKind int

const (
	ActionNavigate ActionKind = iota
	ActionToggleSelect
	ActionSubmit
	ActionPause
	ActionResume
	ActionQuit
	ActionConfirm
)

// Action is one user action. Delta is only meaningful for ActionNavigate.
type Action struct {
	Kind  ActionKind
	Delta int
}

// Session is the state machine for one exam attempt. All methods must be
// called from the foreground interaction loop; only the timer runs
// concurrently, under the single-writer field contract documented on Timer.
type Session struct {
	def       *model.ExamDefinition
	questions []model.Question
	timer     *Timer
	tick      time.Duration

	phase    Phase
	current  int
	cursor   int
	selected map[int]bool

	paused     bool
	pauseCount int
	quitArmed  bool
	quit       bool
	timedOut   bool
	finished   bool

	completed int
	correct   int
	wrong     int

	startedAt     time.Time
	finishedAt    time.Time
	presentedExam time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithTick overrides the timer tick interval, mainly for tests.
func WithTick(d time.Duration) Option {
	return func(s *Session) { s.tick = d }
}

// New creates a session for one attempt at the given exam. The definition
// is not mutated; the session keeps its own question copies so a fresh
// attempt always starts from clean answer records.
func New(def *model.ExamDefinition, opts ...Option) *Session {
	qs := make([]model.Question, len(def.Questions))
	copy(qs, def.Questions)

	s := &Session{
		def:       def,
		questions: qs,
		tick:      DefaultTick,
		phase:     PhaseMenu,
		selected:  make(map[int]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin transitions Menu -> Question(0) and starts the background timer.
func (s *Session) Begin() error {
	if s.phase != PhaseMenu {
		return ErrInvalidQuestionState
	}
	if len(s.questions) == 0 {
		return ErrInvalidQuestionState
	}

	s.startedAt = time.Now()
	s.timer = NewTimer(s.def.AllowedTime, s.tick)
	s.timer.Start()

	s.phase = PhaseQuestion
	s.present(0)
	slog.Debug("exam started", "questions", len(s.questions), "allowed", s.def.AllowedTime)
	return nil
}

func (s *Session) present(i int) {
	s.current = i
	s.cursor = 0
	s.selected = make(map[int]bool)

	rec := &s.questions[i].Record
	rec.PresentedAt = time.Now()
	s.presentedExam = s.timer.ExamElapsed()
}

// Apply feeds one user action into the state machine. Actions arriving
// outside the question phase are ignored; they are late keystrokes, not
// invariant violations.
func (s *Session) Apply(a Action) error {
	if s.phase != PhaseQuestion || s.finished {
		return nil
	}
	if s.current < 0 || s.current >= len(s.questions) {
		return ErrInvalidQuestionState
	}

	switch a.Kind {
	case ActionNavigate:
		if s.inputSuspended() {
			return nil
		}
		s.cursor = clamp(s.cursor+a.Delta, 0, len(s.questions[s.current].Choices)-1)

	case ActionToggleSelect:
		if s.inputSuspended() {
			return nil
		}
		return s.toggleSelect()

	case ActionSubmit:
		if s.inputSuspended() {
			return nil
		}
		return s.submit()

	case ActionPause:
		if s.paused || s.timedOut {
			return nil
		}
		s.paused = true
		s.pauseCount++
		s.timer.Pause()

	case ActionResume:
		s.quitArmed = false
		if s.paused {
			s.paused = false
		}
		if !s.timedOut {
			s.timer.Resume()
		}

	case ActionQuit:
		if s.timedOut {
			return nil
		}
		if s.quitArmed {
			return s.confirmQuit()
		}
		s.quitArmed = true
		// The quit overlay suspends the exam clock like a pause, but
		// only an explicit pause bumps the pause counter.
		s.timer.Pause()

	case ActionConfirm:
		if s.quitArmed {
			return s.confirmQuit()
		}

	default:
		return ErrInvalidQuestionState
	}
	return nil
}

// inputSuspended reports whether navigation and selection are currently
// frozen: while paused, while the quit confirmation is armed, and after
// the exam has timed out.
func (s *Session) inputSuspended() bool {
	return s.paused || s.quitArmed || s.timedOut
}

func (s *Session) toggleSelect() error {
	q := &s.questions[s.current]
	if q.Record.Answered {
		return ErrInvalidQuestionState
	}
	if s.cursor < 0 || s.cursor >= len(q.Choices) {
		return ErrInvalidQuestionState
	}

	if q.MultiSelect {
		if s.selected[s.cursor] {
			delete(s.selected, s.cursor)
		} else {
			s.selected[s.cursor] = true
		}
		return nil
	}

	// Single-answer questions: only the most recently toggled index
	// counts; toggling it again clears the selection.
	if s.selected[s.cursor] {
		delete(s.selected, s.cursor)
	} else {
		s.selected = map[int]bool{s.cursor: true}
	}
	return nil
}

func (s *Session) submit() error {
	q := &s.questions[s.current]
	if q.Record.Answered {
		return ErrInvalidQuestionState
	}
	if q.RequiredSelections < 1 {
		return ErrInvalidQuestionState
	}
	// Submission completes only with exactly the required number of
	// selections; otherwise the action has no effect.
	if len(s.selected) != q.RequiredSelections {
		return nil
	}

	s.finalizeCurrent(false)
	s.advance()
	return nil
}

// finalizeCurrent freezes the current question's answer record. timedOut
// marks records resolved by the clock rather than the user; correctness is
// always evaluated against whatever was selected, so a timed-out question
// scores correct only if the partial selection already matches exactly.
func (s *Session) finalizeCurrent(timedOut bool) {
	q := &s.questions[s.current]
	rec := &q.Record

	now := time.Now()
	examAt := s.timer.ExamElapsed()

	rec.Selected = sortedIndexes(s.selected)
	rec.AnsweredAt = now
	rec.ExamTimeAt = examAt
	rec.TimeSpent = examAt - s.presentedExam
	rec.TimedOut = timedOut
	rec.Answered = !timedOut
	rec.AnsweredCorrectly = selectionMatches(s.selected, q.Correct)

	if rec.AnsweredCorrectly {
		s.correct++
	} else {
		s.wrong++
	}
	s.completed++

	slog.Debug("question resolved",
		"question", q.Number+1,
		"correct", rec.AnsweredCorrectly,
		"timed_out", timedOut,
		"time_spent", rec.TimeSpent,
	)
}

func (s *Session) advance() {
	if s.current+1 >= len(s.questions) {
		s.finishAttempt()
		return
	}
	s.present(s.current + 1)
}

func (s *Session) confirmQuit() error {
	s.quit = true
	s.quitArmed = false
	s.finishAttempt()
	return nil
}

// finishAttempt stops the timer and moves to the result phase. The stop is
// symmetric with Begin: it joins the timer goroutine, so evaluation never
// reads elapsed fields mid-update.
func (s *Session) finishAttempt() {
	if s.finished {
		return
	}
	s.finished = true
	s.timer.Stop()
	s.finishedAt = time.Now()
	s.phase = PhaseResult
	slog.Debug("exam finished",
		"completed", s.completed,
		"correct", s.correct,
		"wrong", s.wrong,
		"quit", s.quit,
		"timed_out", s.timedOut,
	)
}

// Poll observes timer-driven conditions. The interaction loop calls it once
// per frame, between input polls.
func (s *Session) Poll() {
	if s.phase != PhaseQuestion || s.finished {
		return
	}

	// Exam-level timeout is terminal: finalize the in-progress record
	// with the partial selection and move straight to evaluation.
	if s.timer.TimedOut() && !s.timedOut {
		s.timedOut = true
		s.quitArmed = false
		s.paused = false
		s.finalizeCurrent(true)
		s.finishAttempt()
		return
	}

	// Per-question time budget: finalize this question and move on.
	q := &s.questions[s.current]
	if q.AllowedTime > 0 && !s.paused && !s.quitArmed {
		if s.timer.ExamElapsed()-s.presentedExam > q.AllowedTime {
			s.finalizeCurrent(true)
			s.advance()
		}
	}
}

// Phase returns the current top-level phase.
func (s *Session) Phase() Phase { return s.phase }

// Questions exposes the session's question records. Read-only for callers;
// records are frozen once the attempt finishes.
func (s *Session) Questions() []model.Question { return s.questions }

// State assembles the aggregate outcome for the evaluation engine.
func (s *Session) State() model.SessionState {
	return model.SessionState{
		StartedAt:       s.startedAt,
		FinishedAt:      s.finishedAt,
		GlobalElapsed:   s.timer.GlobalElapsed(),
		ExamElapsed:     s.timer.ExamElapsed(),
		PausedElapsed:   s.timer.PausedElapsed(),
		PauseCount:      s.pauseCount,
		TimedOut:        s.timedOut,
		Quit:            s.quit,
		CurrentQuestion: s.current,
		CompletedCount:  s.completed,
		CorrectCount:    s.correct,
		WrongCount:      s.wrong,
	}
}

// Snapshot is the read-only view the renderer draws a frame from.
type Snapshot struct {
	Phase          Phase
	QuestionIndex  int
	QuestionsTotal int
	Question       *model.Question
	Cursor         int
	Selected       []int

	Completed int
	Correct   int
	Wrong     int
	Progress  float64

	GlobalElapsed   time.Duration
	ExamElapsed     time.Duration
	ExamAllowed     time.Duration
	QuestionElapsed time.Duration
	QuestionAllowed time.Duration

	Paused     bool
	PauseCount int
	TimedOut   bool
	QuitArmed  bool
	Quit       bool
}

// Snapshot captures the current state for rendering. The renderer never
// mutates session state; it reports actions back through Apply.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:          s.phase,
		QuestionIndex:  s.current,
		QuestionsTotal: len(s.questions),
		Cursor:         s.cursor,
		Selected:       sortedIndexes(s.selected),
		Completed:      s.completed,
		Correct:        s.correct,
		Wrong:          s.wrong,
		Paused:         s.paused,
		PauseCount:     s.pauseCount,
		TimedOut:       s.timedOut,
		QuitArmed:      s.quitArmed,
		Quit:           s.quit,
		ExamAllowed:    s.def.AllowedTime,
	}
	if len(s.questions) > 0 {
		snap.Progress = float64(s.completed) / float64(len(s.questions))
	}
	if s.timer != nil {
		snap.GlobalElapsed = s.timer.GlobalElapsed()
		snap.ExamElapsed = s.timer.ExamElapsed()
	}
	if s.phase == PhaseQuestion && s.current < len(s.questions) {
		q := &s.questions[s.current]
		snap.Question = q
		snap.QuestionAllowed = q.AllowedTime
		snap.QuestionElapsed = snap.ExamElapsed - s.presentedExam
	}
	return snap
}

func sortedIndexes(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// selectionMatches reports whether the selected set is exactly the correct
// set. Partial credit is not supported.
func selectionMatches(selected map[int]bool, correct []bool) bool {
	want := 0
	for i, c := range correct {
		if c {
			want++
			if !selected[i] {
				return false
			}
		}
	}
	return len(selected) == want
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
