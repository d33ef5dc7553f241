package termfx

import (
	"time"

	"golang.org/x/exp/slog"
)

const (
	defaultEscapeTimeout = 5 * time.Millisecond
	defaultRestartDelay  = 10 * time.Millisecond
	maxRestartDelay      = time.Second
	defaultQueueSize     = 256
)

// Options configure a Terminal, Input, Daemon or Decoder. The zero value is
// ready to use
type Options struct {
	// Logger is an optional slog.Logger that termfx will log to. termfx
	// uses stdlib levels for logging, plus log.LevelTrace
	Logger *slog.Logger
	// EscapeTimeout is the window the input daemon waits for the rest of
	// an escape sequence. After an ESC the daemon waits ten times this
	// long, since mouse reports need more time to arrive. Defaults to 5ms.
	// Can be overridden with TERMFX_ESCAPE_TIMEOUT
	EscapeTimeout time.Duration
	// StrictEscapes makes Getch return an UnknownEscapeError for escape
	// sequences which aren't in the table. By default they are reported
	// as ESC followed by one key per unit. Can be enabled with
	// TERMFX_STRICT_ESCAPES
	StrictEscapes bool
	// MalformedMouse decides what to do with the units following a short
	// mouse report
	MalformedMouse MalformedPolicy
	// RestartDelay is how long the daemon waits before restarting after
	// the input source failed. It doubles on each consecutive failure, up
	// to one second. Defaults to 10ms
	RestartDelay time.Duration
	// QueueSize is the capacity of the queue between the collector and the
	// grouper. Defaults to 256
	QueueSize int
}

func (o Options) withDefaults() Options {
	if o.EscapeTimeout <= 0 {
		o.EscapeTimeout = defaultEscapeTimeout
	}
	if o.RestartDelay <= 0 {
		o.RestartDelay = defaultRestartDelay
	}
	if o.QueueSize <= 0 {
		o.QueueSize = defaultQueueSize
	}
	return o
}
