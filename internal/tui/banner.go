package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerForegroundColor = lipgloss.AdaptiveColor{Light: "#071330", Dark: "#F652A0"}
	bannerBorderColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#AAAAAA"}
	bannerTitleColor      = lipgloss.AdaptiveColor{Light: "#36EEE0", Dark: "#00FFFF"}
	bannerMaxWidth        = 80
	bannerStyle           = lipgloss.NewStyle().
				Width(bannerMaxWidth).
				Padding(1).
				Margin(1).
				AlignVertical(lipgloss.Top).
				AlignHorizontal(lipgloss.Left).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(bannerBorderColor).
				Foreground(bannerForegroundColor)
	bannerTitleStyle = lipgloss.NewStyle().AlignHorizontal(lipgloss.Center).Bold(true).Foreground(bannerTitleColor)
)

func ShowBanner(title string, body string) {
	block := bannerTitleStyle.Render(title) + "\n\n" + body
	fmt.Println(bannerStyle.Render(block))
}
