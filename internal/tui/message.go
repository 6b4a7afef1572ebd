package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	messageTextColor = lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}
	messageTextStyle = lipgloss.NewStyle().Foreground(messageTextColor)
)

func ShowLock(msg string, args ...any) {
	fmt.Printf(" 🔒 %s", messageTextStyle.Render(fmt.Sprintf(msg, args...)))
	fmt.Println()
}
