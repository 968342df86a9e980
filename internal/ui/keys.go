package ui

import (
	"bufio"
	"io"
)

// Key is a decoded keypress.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeySpace
	KeyPause
	KeyResume
	KeyQuit
)

// readKeys decodes raw-mode input into Keys and forwards them on keys.
// It returns when the reader is closed. Arrow keys arrive as CSI
// sequences; a lone ESC with nothing buffered behind it counts as quit.
func readKeys(r io.Reader, keys chan<- Key) {
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err != nil {
			close(keys)
			return
		}
		k := KeyNone
		switch b {
		case 0x1b:
			if br.Buffered() == 0 {
				k = KeyQuit
				break
			}
			next, err := br.ReadByte()
			if err != nil {
				close(keys)
				return
			}
			if next != '[' {
				continue
			}
			final, err := br.ReadByte()
			if err != nil {
				close(keys)
				return
			}
			switch final {
			case 'A':
				k = KeyUp
			case 'B':
				k = KeyDown
			case 'C':
				k = KeyRight
			case 'D':
				k = KeyLeft
			}
		case 'k', 'K':
			k = KeyUp
		case 'j', 'J':
			k = KeyDown
		case 'h', 'H':
			k = KeyLeft
		case 'l', 'L':
			k = KeyRight
		case '\r', '\n':
			k = KeyEnter
		case ' ':
			k = KeySpace
		case 'p', 'P':
			k = KeyPause
		case 'r', 'R':
			k = KeyResume
		case 'q', 'Q':
			k = KeyQuit
		}
		if k == KeyNone {
			continue
		}
		select {
		case keys <- k:
		default:
			// Drop keys rather than block the reader when the
			// frame loop falls behind.
		}
	}
}
