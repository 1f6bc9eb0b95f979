// Package detector picks the color profile for task output.
package detector

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Environment is the part of the process environment the detector reads.
type Environment struct {
	IsTTY  bool
	Getenv func(string) string
}

// Current describes the running process, judging TTY-ness from stdout.
func Current() Environment {
	return Environment{
		IsTTY:  term.IsTerminal(int(os.Stdout.Fd())),
		Getenv: os.Getenv,
	}
}

// IsCI reports whether CI is set to a truthy value.
func (e Environment) IsCI() bool {
	ci := e.getenv("CI")
	return ci == "true" || ci == "1"
}

// Profile returns the color profile for renderer output. NO_COLOR always
// wins. CI logs get basic ANSI colors, terminals their detected profile and
// everything else plain text.
func (e Environment) Profile() termenv.Profile {
	switch {
	case e.getenv("NO_COLOR") != "":
		return termenv.Ascii
	case e.IsCI():
		return termenv.ANSI
	case e.IsTTY:
		return termenv.EnvColorProfile()
	default:
		return termenv.Ascii
	}
}

func (e Environment) getenv(key string) string {
	if e.Getenv == nil {
		return ""
	}
	return e.Getenv(key)
}

// DetectProfile returns the profile for the current process.
func DetectProfile() termenv.Profile {
	return Current().Profile()
}
