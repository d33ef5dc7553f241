// Command keys prints the raw input groups and decoded events it receives.
// Press Ctrl+C to quit.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
	"golang.org/x/exp/slog"

	"git.sr.ht/~rockorager/termfx"
)

const rawColumn = 28

var quit = termfx.Key{Codepoint: 'c', Modifiers: termfx.ModCtrl}

// truncate shortens s to at most width cells without splitting graphemes
func truncate(s string, width int) string {
	if uniseg.StringWidth(s) <= width {
		return s
	}
	buf := &strings.Builder{}
	w := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		gw := uniseg.StringWidth(g.Str())
		if w+gw > width-1 {
			break
		}
		buf.WriteString(g.Str())
		w += gw
	}
	buf.WriteString("…")
	return buf.String()
}

func main() {
	var (
		debug  = flag.Bool("debug", false, "log every input group to stderr")
		strict = flag.Bool("strict", false, "report unknown escape sequences as errors")
		mouse  = flag.Bool("mouse", true, "enable mouse motion reports")
		escape = flag.Duration("escape-timeout", 0, "escape sequence window")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug - 4
	}
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		AddSource:  true,
		Level:      level,
		TimeFormat: "15:04:05.000",
	}))

	t, err := termfx.Open(termfx.Options{
		Logger:        log,
		StrictEscapes: *strict,
		EscapeTimeout: *escape,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := t.SetRaw(true); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer t.Close()
	if *mouse {
		if err := t.EnableMouse(termfx.MouseMotion); err != nil {
			log.Error("couldn't enable mouse", "error", err)
		}
	}
	cols, rows, err := t.Size()
	if err == nil {
		fmt.Printf("terminal is %dx%d, press Ctrl+C to quit\r\n", cols, rows)
	}

	decoder := termfx.NewDecoder(termfx.Options{StrictEscapes: *strict})
	for {
		start := time.Now()
		group := t.GetchRaw()
		raw := truncate(strconv.QuoteToASCII(string(group)), rawColumn)
		events, err := decoder.Decode(group)
		names := make([]string, 0, len(events))
		for _, ev := range events {
			names = append(names, ev.String())
		}
		fmt.Printf("%s %s\r\n", runewidth.FillRight(raw, rawColumn), strings.Join(names, " "))
		if err != nil {
			log.Warn("decode failed", "error", err)
		}
		log.Debug("group", "units", len(group), "wait", time.Since(start))
		for _, ev := range events {
			if ev.Equal(quit) {
				return
			}
		}
	}
}
