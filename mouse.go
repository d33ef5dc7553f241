package termfx

import (
	"fmt"
	"strings"
)

// Mouse is a mouse event decoded from an X10 style report (CSI M). Col and
// Row are zero-based cell coordinates
type Mouse struct {
	Col    int
	Row    int
	Button MouseButton
	// Left and Right report which button the event belongs to. Down is set
	// for presses of the left or right button, Up for any other report
	// which isn't motion (releases, middle button, wheel)
	Left   bool
	Right  bool
	Down   bool
	Up     bool
	Motion bool
	// Modifiers held during the event
	Modifiers ModifierMask
	// Mask is the raw button byte of the report, minus 32
	Mask int
}

// MouseButton represents a mouse button
type MouseButton int

const (
	MouseLeftButton MouseButton = iota
	MouseMiddleButton
	MouseRightButton
	MouseNoButton

	MouseWheelUp   MouseButton = 64
	MouseWheelDown MouseButton = 65
)

// MouseMode selects which mouse events the terminal reports
type MouseMode int

const (
	// MouseClick reports button presses and releases
	MouseClick MouseMode = iota
	// MouseDrag also reports motion while a button is held
	MouseDrag
	// MouseMotion reports all motion
	MouseMotion
)

const (
	motion        = 0b00100000
	buttonBits    = 0b11000011
	mouseModShift = 0b00000100
	mouseModAlt   = 0b00001000
	mouseModCtrl  = 0b00010000

	// X10 reports offset the button byte by 32 and coordinates by 33
	// (32, plus 1 for one-based coordinates)
	mouseButtonOffset = 32
	mouseCoordOffset  = 33
)

// parseMouse decodes the three parameter units which follow CSI M
func parseMouse(seq []rune) (int, Event, error) {
	if len(seq) < 3 {
		return 0, nil, ErrMalformedMouse
	}
	mask := int(seq[0]) - mouseButtonOffset
	mouse := Mouse{
		Col:    int(seq[1]) - mouseCoordOffset,
		Row:    int(seq[2]) - mouseCoordOffset,
		Button: MouseButton(mask & buttonBits),
		Left:   mask&0b11 == 0b00,
		Right:  mask&0b11 == 0b10,
		Motion: mask&motion != 0,
		Mask:   mask,
	}
	mouse.Down = !mouse.Motion && (mouse.Left || mouse.Right)
	mouse.Up = !mouse.Motion && !(mouse.Left || mouse.Right)

	if mask&mouseModShift != 0 {
		mouse.Modifiers |= ModShift
	}
	if mask&mouseModAlt != 0 {
		mouse.Modifiers |= ModAlt
	}
	if mask&mouseModCtrl != 0 {
		mouse.Modifiers |= ModCtrl
	}
	return 3, mouse, nil
}

// Printable is always false for mouse events
func (m Mouse) Printable() bool {
	return false
}

func (m Mouse) Equal(other Event) bool {
	o, ok := other.(Mouse)
	return ok && m == o
}

func (m Mouse) String() string {
	var flags []string
	if m.Left {
		flags = append(flags, "left")
	}
	if m.Right {
		flags = append(flags, "right")
	}
	if m.Down {
		flags = append(flags, "down")
	}
	if m.Up {
		flags = append(flags, "up")
	}
	if m.Motion {
		flags = append(flags, "motion")
	}
	return fmt.Sprintf("mouse(%d,%d %s)", m.Col, m.Row, strings.Join(flags, ","))
}
