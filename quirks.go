package termfx

import (
	"os"
	"time"

	"git.sr.ht/~rockorager/termfx/log"
)

// applyEnv overrides options from the environment. Used for working around
// slow links (ssh, serial consoles) without rebuilding the application
func (o Options) applyEnv() Options {
	if v := os.Getenv("TERMFX_ESCAPE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		switch {
		case err != nil:
			log.Warn("ignoring TERMFX_ESCAPE_TIMEOUT", "value", v, "error", err)
		case d <= 0:
			log.Warn("ignoring TERMFX_ESCAPE_TIMEOUT", "value", v)
		default:
			log.Debug("escape timeout set from environment", "timeout", d)
			o.EscapeTimeout = d
		}
	}
	if os.Getenv("TERMFX_STRICT_ESCAPES") != "" {
		o.StrictEscapes = true
	}
	return o
}
