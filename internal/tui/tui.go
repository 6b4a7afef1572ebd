package tui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// HasTTY is true when stdout is an interactive terminal. Confirmation
// prompts refuse to run without one.
var HasTTY = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
