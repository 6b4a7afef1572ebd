package tui

import (
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/log"
)

// ShowSpinner will display a spinner while the action is being performed
func ShowSpinner(logger *log.Logger, title string, action func()) {
	if !HasTTY {
		action()
		return
	}
	if err := spinner.New().Title(title).Action(action).Run(); err != nil {
		logger.Fatalf("%s", err)
	}
}
