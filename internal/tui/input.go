package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
)

var theme = huh.ThemeCatppuccin()

// Input prompts for a single line of text. When mask is set the input is
// echoed as a password.
func Input(logger *log.Logger, title string, description string, mask bool) string {
	var value string
	echoMode := huh.EchoModeNormal
	if mask {
		echoMode = huh.EchoModePassword
	}
	if err := huh.NewInput().
		Title(title).
		Description(description).
		Prompt("> ").
		Value(&value).
		EchoMode(echoMode).
		WithTheme(theme).Run(); err != nil {
		logger.Fatalf("failed to get input value: %s", err)
	}
	return value
}

// InputWithValidation prompts until validate accepts the value.
func InputWithValidation(logger *log.Logger, title string, description string, validate func(string) error) string {
	var value string
	if err := huh.NewInput().
		Title(title).
		Description(description).
		Prompt("> ").
		Value(&value).
		Validate(validate).
		WithTheme(theme).Run(); err != nil {
		logger.Fatalf("failed to get input value: %s", err)
	}
	return value
}

// Ask shows a yes/no confirmation.
func Ask(logger *log.Logger, title string, defaultValue bool) bool {
	confirm := defaultValue
	if err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&confirm).
		Inline(false).
		WithTheme(theme).Run(); err != nil {
		logger.Fatalf("%s", err)
	}
	return confirm
}
