package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	titleColor   = lipgloss.AdaptiveColor{Light: "#071330", Dark: "#00FFFF"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#AAAAAA"}
	warningColor = lipgloss.AdaptiveColor{Light: "#990000", Dark: "#FF5555"}
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(titleColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

func Title(s string) string   { return titleStyle.Render(s) }
func Muted(s string) string   { return mutedStyle.Render(s) }
func Warning(s string) string { return warningStyle.Render(s) }
func Bold(s string) string    { return boldStyle.Render(s) }

// PadRight pads s with pad up to width characters.
func PadRight(s string, width int, pad string) string {
	for len(s) < width {
		s += pad
	}
	return s
}
