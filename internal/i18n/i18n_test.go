package i18n

import "testing"

func TestInitAndTranslate(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got := T("menu.begin"); got != "Begin Exam" {
		t.Errorf("T(menu.begin) = %q, want 'Begin Exam'", got)
	}
	if got := T("no.such.message"); got != "no.such.message" {
		t.Errorf("missing message should return the ID, got %q", got)
	}
}

func TestInitRussian(t *testing.T) {
	if err := Init("ru"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got := T("menu.begin"); got != "Начать экзамен" {
		t.Errorf("T(menu.begin) = %q, want russian translation", got)
	}
}

func TestInitBadLanguage(t *testing.T) {
	if err := Init("not a language tag!"); err == nil {
		t.Error("expected error for unparseable language tag")
	}
}

func TestTemplateData(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	got := Td("result.answered_value", map[string]any{"Answered": 3, "Total": 5})
	if got != "3 of 5" {
		t.Errorf("Td = %q, want '3 of 5'", got)
	}
}
