// Package definition loads exam files and builds the normalized question
// model the session runs against.
package definition

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/examterm/examterm/internal/model"
)

// Error reports a malformed exam definition. It is fatal: no session is
// started once a definition fails to build.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "invalid exam definition: " + e.Reason
}

func errorf(format string, args ...any) *Error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

// rawFile mirrors the on-disk YAML layout of an exam file.
type rawFile struct {
	Exam      rawExam       `yaml:"exam"`
	Questions []rawQuestion `yaml:"questions"`
}

type rawExam struct {
	Title            string  `yaml:"exam_title"`
	Author           string  `yaml:"exam_author"`
	EditDate         string  `yaml:"exam_edit_date"`
	Description      string  `yaml:"exam_description"`
	AllowedTime      float64 `yaml:"exam_allowed_time"`
	AllowedTimeUnits string  `yaml:"exam_allowed_time_units"`
	PassingScore     float64 `yaml:"exam_passing_score"`
}

type rawQuestion struct {
	Text        string   `yaml:"question"`
	Selection   []Choice `yaml:"selection"`
	AllowedTime int      `yaml:"question_allowed_time"`
}

// Choice is one selection entry of a raw question. An entry is either a
// plain string (implicitly incorrect) or a single-key mapping flagging
// correctness, e.g. `- Amsterdam: true`. The two shapes are resolved here,
// once, at the YAML boundary.
type Choice struct {
	Text      string
	Annotated bool
	Correct   bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Choice) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var text string
		if err := node.Decode(&text); err != nil {
			return err
		}
		c.Text = text
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return errorf("selection entry on line %d must have exactly one key", node.Line)
		}
		var text string
		if err := node.Content[0].Decode(&text); err != nil {
			return fmt.Errorf("selection key on line %d: %w", node.Line, err)
		}
		var correct bool
		if err := node.Content[1].Decode(&correct); err != nil {
			return errorf("selection value for %q on line %d must be a boolean", text, node.Line)
		}
		c.Text = text
		c.Annotated = true
		c.Correct = correct
		return nil
	default:
		return errorf("selection entry on line %d must be a string or a single-key mapping", node.Line)
	}
}

// Parse decodes raw exam YAML and builds the normalized definition.
func Parse(data []byte) (*model.ExamDefinition, error) {
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse exam file: %w", err)
	}
	return build(raw)
}

// build validates the raw definition and produces a fresh ExamDefinition.
// The raw input is not mutated.
func build(raw rawFile) (*model.ExamDefinition, error) {
	allowed, err := convertAllowedTime(raw.Exam.AllowedTime, raw.Exam.AllowedTimeUnits)
	if err != nil {
		return nil, err
	}
	if raw.Exam.PassingScore < 0 || raw.Exam.PassingScore > 100 {
		return nil, errorf("passing score %.1f outside 0-100", raw.Exam.PassingScore)
	}
	if len(raw.Questions) == 0 {
		return nil, errorf("exam has no questions")
	}

	def := &model.ExamDefinition{
		Title:        raw.Exam.Title,
		Author:       raw.Exam.Author,
		EditDate:     raw.Exam.EditDate,
		Description:  raw.Exam.Description,
		AllowedTime:  allowed,
		PassingScore: raw.Exam.PassingScore,
		Questions:    make([]model.Question, 0, len(raw.Questions)),
	}

	for i, rq := range raw.Questions {
		q, err := buildQuestion(i, rq)
		if err != nil {
			return nil, err
		}
		def.Questions = append(def.Questions, q)
	}

	return def, nil
}

func buildQuestion(number int, raw rawQuestion) (model.Question, error) {
	if strings.TrimSpace(raw.Text) == "" {
		return model.Question{}, errorf("question %d has no text", number+1)
	}
	if len(raw.Selection) == 0 {
		return model.Question{}, errorf("question %d has no choices", number+1)
	}

	choices := make([]string, len(raw.Selection))
	correct := make([]bool, len(raw.Selection))
	required := 0
	for i, c := range raw.Selection {
		choices[i] = c.Text
		correct[i] = c.Annotated && c.Correct
		if correct[i] {
			required++
		}
	}
	// A question nobody can answer correctly is a definition bug, not a
	// trick question.
	if required == 0 {
		return model.Question{}, errorf("question %d has no correct choice", number+1)
	}

	var perQuestion time.Duration
	if raw.AllowedTime != 0 {
		if raw.AllowedTime < 1 {
			return model.Question{}, errorf("question %d allowed time must be at least 1 second", number+1)
		}
		perQuestion = time.Duration(raw.AllowedTime) * time.Second
	}

	return model.Question{
		Number:             number,
		Text:               raw.Text,
		Choices:            choices,
		Correct:            correct,
		MultiSelect:        required > 1,
		RequiredSelections: required,
		AllowedTime:        perQuestion,
	}, nil
}

func convertAllowedTime(value float64, units string) (time.Duration, error) {
	if value <= 0 {
		return 0, errorf("allowed time %.1f must be positive", value)
	}
	var unit time.Duration
	switch strings.ToLower(strings.TrimSpace(units)) {
	case "second", "seconds", "sec", "secs", "s":
		unit = time.Second
	case "minute", "minutes", "min", "mins", "m":
		unit = time.Minute
	case "hour", "hours", "hr", "hrs", "h":
		unit = time.Hour
	default:
		return 0, errorf("unrecognized allowed time units %q", units)
	}
	return time.Duration(value * float64(unit)), nil
}
