package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
)

type Option struct {
	ID       string
	Text     string
	Selected bool
}

func Select(logger *log.Logger, title string, description string, items []Option) string {
	var selected string

	var opts []huh.Option[string]
	for _, item := range items {
		opts = append(opts, huh.NewOption(item.Text, item.ID).Selected(item.Selected))
	}

	if err := huh.NewSelect[string]().
		Title(title).
		Description(description + "\n").
		Options(opts...).
		Value(&selected).
		WithTheme(theme).Run(); err != nil {
		logger.Fatalf("%s", err)
	}

	return selected
}
