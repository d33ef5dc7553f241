package termfx

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	// Device Status Report - Cursor Position Report
	dsrcpr = "\x1b[6n"

	// Private modes
	mouseClick  = 1000
	mouseDrag   = 1002
	mouseMotion = 1003
	// Report mouse coordinates as UTF-8 encoded codepoints. Without it
	// coordinates past column 94 don't fit in a byte
	mouseUTF8 = 1005
)

var mouseModes = map[MouseMode]int{
	MouseClick:  mouseClick,
	MouseDrag:   mouseDrag,
	MouseMotion: mouseMotion,
}

func decset(mode int) string {
	return fmt.Sprintf("\x1b[?%dh", mode)
}

func decrst(mode int) string {
	return fmt.Sprintf("\x1b[?%dl", mode)
}

// cpr matches a cursor position report: CSI row ; col R
var cpr = regexp.MustCompile(`^\x1b\[(\d+);(\d+)R$`)

// parseCPR returns the zero-based column and row of a cursor position report
func parseCPR(seq string) (col int, row int, ok bool) {
	m := cpr.FindStringSubmatch(seq)
	if m == nil {
		return 0, 0, false
	}
	r, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	c, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return c - 1, r - 1, true
}
