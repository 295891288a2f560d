// Package detector picks the output mode from the terminal and CI environment.
package detector

import (
	"os"

	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// OutputMode is the rendering mode of a run.
type OutputMode int

const (
	// ModeAuto defers to environment detection.
	ModeAuto OutputMode = iota
	// ModeTUI selects the interactive renderer.
	ModeTUI
	// ModeLinear selects prefixed log lines.
	ModeLinear
)

// ErrUnknownMode is returned for an --output value that names no mode.
var ErrUnknownMode = zerr.New("unknown output mode")

// DetectEnvironment inspects stdout and the CI variable.
func DetectEnvironment() OutputMode {
	return Detect(term.IsTerminal(int(os.Stdout.Fd())), os.Getenv)
}

// Detect returns ModeLinear when output is not a terminal or CI is set, otherwise ModeTUI.
func Detect(isTTY bool, getenv func(string) string) OutputMode {
	ci := getenv("CI")
	if !isTTY || ci == "true" || ci == "1" {
		return ModeLinear
	}
	return ModeTUI
}

// ParseMode converts a user flag into a mode. The empty string means auto.
func ParseMode(flag string) (OutputMode, error) {
	switch flag {
	case "", "auto":
		return ModeAuto, nil
	case "tui":
		return ModeTUI, nil
	case "linear", "ci", "plain":
		return ModeLinear, nil
	default:
		return ModeAuto, zerr.With(zerr.Wrap(ErrUnknownMode, "invalid output flag"), "mode", flag)
	}
}

// ResolveMode applies an explicit mode over the detected one.
func ResolveMode(detected, requested OutputMode) OutputMode {
	if requested == ModeAuto {
		return detected
	}
	return requested
}
