package termfx

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrNotRaw is returned when reading input or enabling a feature which
	// requires raw mode while the terminal is in cooked mode
	ErrNotRaw = errors.New("terminal is not in raw mode")
	// ErrNotTerminal is returned when opening a file which is not a
	// terminal
	ErrNotTerminal = errors.New("not a terminal")
	// ErrMalformedMouse is wrapped by the DecodeError reported for a mouse
	// report with fewer than three parameter bytes
	ErrMalformedMouse = errors.New("malformed mouse sequence")
	// ErrUnknownEscape is wrapped by UnknownEscapeError
	ErrUnknownEscape = errors.New("unknown escape sequence")
)

// UnknownEscapeError is returned by a strict Decoder when a group starts with
// ESC and no table entry matches. Seq holds the undecoded units, starting
// with the ESC
type UnknownEscapeError struct {
	Seq []rune
}

func (e *UnknownEscapeError) Error() string {
	return fmt.Sprintf("unknown escape sequence: %s", strconv.QuoteToASCII(string(e.Seq)))
}

func (e *UnknownEscapeError) Unwrap() error {
	return ErrUnknownEscape
}

// DecodeError reports a table entry which matched but could not produce an
// event
type DecodeError struct {
	Seq []rune
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", strconv.QuoteToASCII(string(e.Seq)), e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
