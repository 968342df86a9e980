package ui

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/examterm/examterm/internal/export"
	"github.com/examterm/examterm/internal/i18n"
	"github.com/examterm/examterm/internal/model"
	"github.com/examterm/examterm/internal/session"
)

// Minimum terminal dimensions for the exam screens. Below these the UI
// shows a resize prompt instead of a broken layout.
const (
	MinWidth  = 85
	MinHeight = 27
)

// DefaultTick is the redraw interval of the frame loop.
const DefaultTick = 100 * time.Millisecond

// MenuChoice is the outcome of the menu screen.
type MenuChoice int

const (
	MenuBegin MenuChoice = iota
	MenuQuit
)

// ResultChoice is the outcome of the result screen.
type ResultChoice int

const (
	ResultSavePDF ResultChoice = iota
	ResultMenu
	ResultQuit
)

// UI owns the terminal: raw mode, the key reader goroutine and the frame
// loop. Open puts the terminal into raw mode and Close restores it; callers
// must pair the two even on error paths.
type UI struct {
	in   *os.File
	out  *os.File
	tick time.Duration

	keys    chan Key
	restore func()
}

// Option configures a UI.
type Option func(*UI)

// WithTick overrides the redraw interval.
func WithTick(d time.Duration) Option {
	return func(u *UI) {
		if d > 0 {
			u.tick = d
		}
	}
}

// New builds a UI over stdin/stdout.
func New(opts ...Option) *UI {
	u := &UI{in: os.Stdin, out: os.Stdout, tick: DefaultTick}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Open switches the terminal into raw mode, hides the cursor and starts
// the key reader.
func (u *UI) Open() error {
	if !term.IsTerminal(int(u.in.Fd())) {
		return fmt.Errorf("open ui: stdin is not a terminal")
	}
	old, err := term.MakeRaw(int(u.in.Fd()))
	if err != nil {
		return fmt.Errorf("open ui: %w", err)
	}
	u.restore = func() {
		fmt.Fprint(u.out, "\x1b[0m\x1b[2J\x1b[H\x1b[?25h")
		_ = term.Restore(int(u.in.Fd()), old)
	}
	fmt.Fprint(u.out, "\x1b[?25l\x1b[2J")

	u.keys = make(chan Key, 8)
	go readKeys(u.in, u.keys)
	return nil
}

// Close restores the terminal. Safe to call when Open failed.
func (u *UI) Close() {
	if u.restore != nil {
		u.restore()
		u.restore = nil
	}
}

func (u *UI) size() (int, int) {
	w, h, err := term.GetSize(int(u.out.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

// tooSmall draws the resize prompt when the terminal cannot fit the
// screens. Returns true when it drew, meaning the caller should skip its
// own drawing for this frame.
func (u *UI) tooSmall(w, h int) bool {
	if w >= MinWidth && h >= MinHeight {
		return false
	}
	f := newFrame(w, h)
	lines := []string{
		i18n.T("smallterm.title"),
		i18n.Td("smallterm.current", map[string]any{"Width": w, "Height": h}),
		i18n.Td("smallterm.required", map[string]any{"Width": MinWidth, "Height": MinHeight}),
		"",
		i18n.T("smallterm.resize"),
		i18n.T("smallterm.quit"),
	}
	for i, l := range lines {
		style := styleBold
		if i > 0 {
			style = ""
		}
		f.centered(h/2-len(lines)/2+i, l, style)
	}
	_ = f.render(u.out)
	return true
}

// Menu shows the exam metadata screen and waits for the user to begin or
// quit. Quit needs a confirming second press.
func (u *UI) Menu(def *model.ExamDefinition) (MenuChoice, error) {
	choices := []string{i18n.T("menu.begin"), i18n.T("menu.quit")}
	cursor := 0
	quitArmed := false

	ticker := time.NewTicker(u.tick)
	defer ticker.Stop()
	for {
		u.drawMenu(def, choices, cursor, quitArmed)
		select {
		case k, ok := <-u.keys:
			if !ok {
				return MenuQuit, fmt.Errorf("menu: input closed")
			}
			switch k {
			case KeyUp, KeyLeft:
				if !quitArmed && cursor > 0 {
					cursor--
				}
			case KeyDown, KeyRight:
				if !quitArmed && cursor < len(choices)-1 {
					cursor++
				}
			case KeyEnter:
				if quitArmed {
					continue
				}
				if cursor == 0 {
					return MenuBegin, nil
				}
				quitArmed = true
			case KeyQuit:
				if quitArmed {
					return MenuQuit, nil
				}
				quitArmed = true
			case KeyResume:
				quitArmed = false
			}
		case <-ticker.C:
		}
	}
}

func (u *UI) drawMenu(def *model.ExamDefinition, choices []string, cursor int, quitArmed bool) {
	w, h := u.size()
	if u.tooSmall(w, h) {
		return
	}
	f := newFrame(w, h)
	f.border(styleGreyDark)

	f.centered(2, Truncate(def.Title, w-4), styleBold)
	byline := def.Author
	if def.EditDate != "" {
		byline = fmt.Sprintf("%s (%s)", def.Author, def.EditDate)
	}
	if byline != "" {
		f.centered(3, Truncate(byline, w-4), styleGrey)
	}
	f.hline(5, styleGreyDark)

	y := 7
	f.set(y, 4, i18n.T("menu.description"), styleGrey)
	for _, line := range Wrap(def.Description, w-10) {
		f.set(y, 30, line, "")
		y++
	}
	y++
	meta := []struct{ label, value string }{
		{i18n.T("menu.exam_type"), i18n.T("menu.exam_type_value")},
		{i18n.T("menu.questions"), fmt.Sprintf("%d", len(def.Questions))},
		{i18n.T("menu.allowed_time"), def.AllowedTime.String()},
		{i18n.T("menu.passing_score"), fmt.Sprintf("%.0f%%", def.PassingScore)},
	}
	for _, m := range meta {
		f.set(y, 4, m.label, styleGrey)
		f.set(y, 30, m.value, "")
		y++
	}

	base := h - 4 - len(choices)
	for i, c := range choices {
		style := ""
		indicator := "  "
		if i == cursor {
			style = styleBold
			indicator = "| "
		}
		f.set(base+i, CenterX(w, c)-2, indicator+c, style)
	}

	if quitArmed {
		f.messageBox([]string{
			i18n.T("quit.generic_title"),
			"",
			i18n.T("quit.generic_confirm"),
			i18n.T("quit.generic_return"),
		}, styleOrange)
	}
	_ = f.render(u.out)
}

// Exam runs the question loop against the session until the attempt
// reaches its result phase. The session owns all exam state; this loop
// only translates keys into actions and redraws on every tick.
func (u *UI) Exam(sess *session.Session) error {
	ticker := time.NewTicker(u.tick)
	defer ticker.Stop()
	for {
		sess.Poll()
		snap := sess.Snapshot()
		if snap.Phase == session.PhaseResult {
			return nil
		}
		u.drawQuestion(snap)

		select {
		case k, ok := <-u.keys:
			if !ok {
				return fmt.Errorf("exam: input closed")
			}
			if err := u.applyKey(sess, snap, k); err != nil {
				return err
			}
		case <-ticker.C:
		}
	}
}

func (u *UI) applyKey(sess *session.Session, snap session.Snapshot, k Key) error {
	var acts []session.Action
	switch k {
	case KeyUp:
		acts = []session.Action{{Kind: session.ActionNavigate, Delta: -1}}
	case KeyDown:
		acts = []session.Action{{Kind: session.ActionNavigate, Delta: 1}}
	case KeySpace:
		acts = []session.Action{{Kind: session.ActionToggleSelect}}
	case KeyEnter:
		// On a single-select question Enter both picks the cursor
		// choice and submits, matching the one-keystroke answer flow.
		if snap.Question != nil && !snap.Question.MultiSelect && len(snap.Selected) == 0 && !snap.Paused && !snap.QuitArmed {
			acts = append(acts, session.Action{Kind: session.ActionToggleSelect})
		}
		acts = append(acts, session.Action{Kind: session.ActionSubmit})
	case KeyPause:
		acts = []session.Action{{Kind: session.ActionPause}}
	case KeyResume:
		acts = []session.Action{{Kind: session.ActionResume}}
	case KeyQuit:
		acts = []session.Action{{Kind: session.ActionQuit}}
	}
	for _, a := range acts {
		if err := sess.Apply(a); err != nil {
			return fmt.Errorf("apply action: %w", err)
		}
	}
	return nil
}

func (u *UI) drawQuestion(snap session.Snapshot) {
	w, h := u.size()
	if u.tooSmall(w, h) {
		return
	}
	f := newFrame(w, h)
	f.border(styleGreyDark)

	q := snap.Question
	if q == nil {
		_ = f.render(u.out)
		return
	}

	y := 2
	for _, line := range Wrap(q.Text, w-10) {
		f.set(y, 4, line, styleBold)
		y++
	}
	if q.MultiSelect {
		f.set(y, 4, fmt.Sprintf("(select %d)", q.RequiredSelections), styleGrey)
		y++
	}
	y++

	selected := make(map[int]bool, len(snap.Selected))
	for _, i := range snap.Selected {
		selected[i] = true
	}
	for i, choice := range q.Choices {
		indicator := "  "
		style := ""
		if i == snap.Cursor {
			indicator = "| "
			style = styleBold
		}
		marker := "[ ] "
		if selected[i] {
			marker = "[x] "
		}
		f.set(y, 4, indicator+marker+Truncate(choice, w-14), style)
		y++
	}

	u.drawExamFooter(f, snap, w, h)

	switch {
	case snap.QuitArmed:
		f.messageBox([]string{
			i18n.T("quit.title"),
			"",
			i18n.T("quit.confirm"),
			i18n.T("quit.resume"),
		}, styleOrange)
	case snap.Paused:
		f.messageBox([]string{
			i18n.T("pause.title"),
			"",
			i18n.T("pause.hint"),
		}, styleBlueBold)
	}
	_ = f.render(u.out)
}

// drawExamFooter renders the progress and time bars at the bottom of the
// question screen. The time bar shifts orange past 85% of the allowed
// time and red past 92%.
func (u *UI) drawExamFooter(f *frame, snap session.Snapshot, w, h int) {
	barWidth := w - 14
	if barWidth < 10 {
		barWidth = 10
	}

	f.set(h-4, 2, fmt.Sprintf("[ %d / %d ]", snap.Completed, snap.QuestionsTotal), styleGrey)
	f.set(h-4, 13, ProgressBar(snap.Progress, barWidth), styleGrey)

	fraction := 0.0
	if snap.ExamAllowed > 0 {
		fraction = float64(snap.ExamElapsed) / float64(snap.ExamAllowed)
	}
	style := styleGrey
	switch {
	case fraction >= 0.92:
		style = styleRedBold
	case fraction >= 0.85:
		style = styleOrange
	}
	f.set(h-3, 2, formatElapsed(snap.ExamElapsed), style)
	f.set(h-3, 13, ProgressBar(fraction, barWidth), style)

	if snap.QuestionAllowed > 0 {
		remain := snap.QuestionAllowed - snap.QuestionElapsed
		if remain < 0 {
			remain = 0
		}
		f.set(h-2, 2, fmt.Sprintf("[ %s ]", formatElapsed(remain)), styleOrange)
	}
}

func formatElapsed(d time.Duration) string {
	s := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s%3600/60, s%60)
}

// Result shows the evaluation summary and waits for a save/menu/quit
// choice. Quit needs a confirming second press.
func (u *UI) Result(sum model.EvaluationSummary) (ResultChoice, error) {
	choices := []string{i18n.T("result.save_pdf"), i18n.T("result.menu"), i18n.T("result.quit")}
	cursor := 0
	quitArmed := false

	ticker := time.NewTicker(u.tick)
	defer ticker.Stop()
	for {
		u.drawResult(sum, choices, cursor, quitArmed)
		select {
		case k, ok := <-u.keys:
			if !ok {
				return ResultQuit, fmt.Errorf("result: input closed")
			}
			switch k {
			case KeyUp, KeyLeft:
				if !quitArmed && cursor > 0 {
					cursor--
				}
			case KeyDown, KeyRight:
				if !quitArmed && cursor < len(choices)-1 {
					cursor++
				}
			case KeyEnter:
				if quitArmed {
					continue
				}
				switch cursor {
				case 0:
					return ResultSavePDF, nil
				case 1:
					return ResultMenu, nil
				default:
					quitArmed = true
				}
			case KeyQuit:
				if quitArmed {
					return ResultQuit, nil
				}
				quitArmed = true
			case KeyResume:
				quitArmed = false
			}
		case <-ticker.C:
		}
	}
}

func (u *UI) drawResult(sum model.EvaluationSummary, choices []string, cursor int, quitArmed bool) {
	w, h := u.size()
	if u.tooSmall(w, h) {
		return
	}
	f := newFrame(w, h)
	f.border(styleGreyDark)
	f.centered(1, i18n.T("result.title"), styleBold)
	if sum.TimedOut {
		f.centered(2, i18n.T("timeout.title"), styleOrange)
	}
	f.hline(3, styleGreyDark)

	accent := styleRedBold
	if sum.Passed {
		accent = styleBold
	}

	y := 5
	for _, row := range export.SummaryRows(sum) {
		style := ""
		if row.Accent {
			style = accent
		}
		f.set(y, 4, row.Label, styleGrey)
		f.set(y, 30, Truncate(row.Value, w-34), style)
		y += 1 + row.Skip
	}

	base := h - 3 - len(choices)
	for i, c := range choices {
		style := ""
		indicator := "  "
		if i == cursor {
			style = styleBold
			indicator = "| "
		}
		f.set(base+i, CenterX(w, c)-2, indicator+c, style)
	}

	if quitArmed {
		f.messageBox([]string{
			i18n.T("quit.generic_title"),
			"",
			i18n.T("quit.generic_confirm"),
			i18n.T("quit.generic_return"),
		}, styleOrange)
	}
	_ = f.render(u.out)
}
