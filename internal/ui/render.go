package ui

import "strings"

// ANSI styles used across the screens. The palette follows the terminal
// defaults plus a couple of 256-color greys for chrome.
const (
	styleReset    = "\x1b[0m"
	styleBold     = "\x1b[1m"
	styleGrey     = "\x1b[38;5;248m"
	styleGreyDark = "\x1b[38;5;240m"
	styleOrange   = "\x1b[38;5;209m"
	styleRedBold  = "\x1b[31;1m"
	styleBlueBold = "\x1b[34;1m"
)

// ProgressBar renders progress in [0,1] as a fixed-width bar of full and
// empty glyphs.
func ProgressBar(progress float64, width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < width; i++ {
		if float64(i) <= progress*float64(width) {
			b.WriteByte('|')
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Truncate shortens text to the given length limit, appending "..." when
// anything was cut.
func Truncate(text string, limit int) string {
	if limit <= 3 {
		limit = 4
	}
	runes := []rune(text)
	if len(runes) < limit-3 {
		return text
	}
	return string(runes[:limit-3]) + "..."
}

// CenterX returns the column at which a line starts when centered on a
// display of the given width.
func CenterX(width int, line string) int {
	x := width/2 - len([]rune(line))/2
	if x < 0 {
		x = 0
	}
	return x
}

// Wrap breaks text into lines no wider than width, on word boundaries
// where possible.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}

	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		switch {
		case line == "" && len([]rune(word)) <= width:
			line = word
		case line == "":
			// A single word longer than the width is hard-split.
			runes := []rune(word)
			for len(runes) > width {
				lines = append(lines, string(runes[:width]))
				runes = runes[width:]
			}
			line = string(runes)
		case len([]rune(line))+1+len([]rune(word)) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = ""
			runes := []rune(word)
			for len(runes) > width {
				lines = append(lines, string(runes[:width]))
				runes = runes[width:]
			}
			line = string(runes)
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
