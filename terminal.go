// Package termfx controls VT100 / xterm compatible terminals with escape
// sequences, without a terminfo database.
//
// The input side is the heart of the package. Terminals report keys as bytes
// and escape sequences, and escape sequences are not self delimiting: an ESC
// on its own is a valid prefix of every sequence. A Daemon groups incoming
// units with short timeouts so that each group is one keypress or one
// sequence, and a Decoder translates groups into Key and Mouse events.
package termfx

import (
	"context"
	"fmt"
	"os"
	"sync"

	"git.sr.ht/~rockorager/termfx/log"
)

// Terminal is an interactive terminal. Input methods (Getch, GetchRaw, ...)
// come from the embedded Input. Input is only delivered in raw mode: call
// SetRaw(true) first
type Terminal struct {
	*Input

	tty *TTY

	mu    sync.Mutex
	mouse bool
}

// Open returns a Terminal on stdin and stdout
func Open(opts Options) (*Terminal, error) {
	return New(os.Stdin, os.Stdout, opts)
}

// New returns a Terminal reading from in and writing to out. in must be a
// terminal
func New(in, out *os.File, opts Options) (*Terminal, error) {
	tty, err := OpenTTY(in, out)
	if err != nil {
		return nil, fmt.Errorf("termfx: %w", err)
	}
	return &Terminal{
		Input: NewInput(tty, opts),
		tty:   tty,
	}, nil
}

// SetRaw enters or leaves raw mode. The input daemon can only read while the
// terminal is in raw mode; after leaving it, reads resume once raw mode is
// entered again
func (t *Terminal) SetRaw(raw bool) error {
	return t.tty.SetRaw(raw)
}

// Raw reports if the terminal is in raw mode
func (t *Terminal) Raw() bool {
	return t.tty.Raw()
}

// EnableMouse requests mouse reports from the terminal. Requires raw mode
func (t *Terminal) EnableMouse(mode MouseMode) error {
	if !t.tty.Raw() {
		return ErrNotRaw
	}
	m, ok := mouseModes[mode]
	if !ok {
		return fmt.Errorf("termfx: unknown mouse mode %d", mode)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.tty.WriteString(decset(m) + decset(mouseUTF8)); err != nil {
		return err
	}
	t.mouse = true
	return nil
}

// DisableMouse turns off mouse reports, if they were enabled
func (t *Terminal) DisableMouse() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.mouse {
		return nil
	}
	_, err := t.tty.WriteString(
		decrst(mouseClick) +
			decrst(mouseDrag) +
			decrst(mouseMotion) +
			decrst(mouseUTF8),
	)
	if err != nil {
		return err
	}
	t.mouse = false
	return nil
}

// CursorPosition queries the terminal for the zero-based position of the
// cursor. Requires raw mode. Input which arrives before the reply is kept
// for Getch
func (t *Terminal) CursorPosition(ctx context.Context) (col int, row int, err error) {
	if !t.tty.Raw() {
		return 0, 0, ErrNotRaw
	}
	if _, err := t.tty.WriteString(dsrcpr); err != nil {
		return 0, 0, err
	}
	for {
		group, err := t.daemon.ReadContext(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("termfx: cursor position: %w", err)
		}
		if col, row, ok := parseCPR(string(group)); ok {
			return col, row, nil
		}
		log.Trace("input while waiting for cursor position", "len", len(group))
		t.requeue(group)
	}
}

// Size returns the size of the terminal in cells
func (t *Terminal) Size() (cols int, rows int, err error) {
	return t.tty.Size()
}

// Write writes p to the terminal
func (t *Terminal) Write(p []byte) (int, error) {
	return t.tty.Write(p)
}

// Close disables mouse reports and leaves raw mode. The input daemon stops
// with the next read it attempts
func (t *Terminal) Close() error {
	if err := t.DisableMouse(); err != nil {
		log.Warn("couldn't disable mouse", "error", err)
	}
	return t.tty.SetRaw(false)
}
