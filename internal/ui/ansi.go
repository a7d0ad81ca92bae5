package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

var (
	reset = "\033[0m"
	bold  = "\033[1m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"
	bgYellow = "\033[43;30m"

	symCheck = "✔"
	symCross = "✖"
)

var (
	forceColor   bool
	disableColor bool

	stdout io.Writer = colorable.NewColorableStdout()
	stderr io.Writer = colorable.NewColorableStderr()
	// outFile is the file behind stdout, nil when output is not a file.
	outFile = os.Stdout
)

func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable
}

// SetOutput redirects OK, Fail and Panel. Nil restores the terminal.
func SetOutput(out, errOut io.Writer) {
	outFile = nil
	switch f := out.(type) {
	case nil:
		outFile = os.Stdout
		out = colorable.NewColorableStdout()
	case *os.File:
		outFile = f
		out = colorable.NewColorable(f)
	}
	if errOut == nil {
		errOut = colorable.NewColorableStderr()
	}
	stdout, stderr = out, errOut
}

func isTTY() bool {
	if outFile == nil {
		return false
	}
	fd := outFile.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func C(color, s string) string {
	if disableColor || color == "" {
		return s
	}
	if forceColor || isTTY() {
		return color + s + reset
	}
	return s
}

func OK(msg string)   { fmt.Fprintln(stdout, C(fgGreen, symCheck+" "+msg)) }
func Fail(msg string) { fmt.Fprintln(stderr, C(fgRed, symCross+" "+msg)) }
