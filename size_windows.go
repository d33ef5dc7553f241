//go:build windows
// +build windows

package termfx

import (
	"os"

	"golang.org/x/term"
)

func winsize(f *os.File) (int, int, error) {
	return term.GetSize(int(f.Fd()))
}
