package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// BorderStyleUnified uses square box drawing characters.
var BorderStyleUnified = lipgloss.Border{
	Top:         "─",
	Bottom:      "─",
	Left:        "│",
	Right:       "│",
	TopLeft:     "┌",
	TopRight:    "┐",
	BottomLeft:  "└",
	BottomRight: "┘",
}

// CreateHeaderStyle creates a consistent header style
func CreateHeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorBrightGreen)).
		MarginLeft(1)
}

// CreateBreadcrumbStyle styles the current path next to the header.
func CreateBreadcrumbStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorBrightCyan))
}

// CreateFooterStyle creates a consistent footer style
func CreateFooterStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightBlack)).
		MarginLeft(1)
}

// CreateInfoPanelStyle styles the right-hand entry details panel.
func CreateInfoPanelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color(ColorBrightBlue))
}

// CreateSectionHeaderStyle creates a consistent section header style
func CreateSectionHeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorBrightCyan)).
		MarginBottom(1)
}

// CreateInfoTextStyle creates a consistent info text style
func CreateInfoTextStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWhite))
}

// CreateSecondaryTextStyle creates a consistent secondary text style
func CreateSecondaryTextStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightBlack)).
		Italic(true)
}

// CreateLoadingStyle creates a consistent loading state style
func CreateLoadingStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightYellow))
}

// CreateErrorStyle creates a consistent error style
func CreateErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightRed))
}

// CreateDialogStyle creates a consistent dialog style
func CreateDialogStyle(width int, borderColor string) lipgloss.Style {
	if borderColor == "" {
		borderColor = ColorBrightBlue
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(1, 3).
		Width(width).
		Background(lipgloss.Color(ColorDialogBg)).
		Foreground(lipgloss.Color(ColorWhite))
}

// CreateDialogTitleStyle styles the first line of a dialog.
func CreateDialogTitleStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(color)).
		MarginBottom(1)
}

// CreatePromptStyle creates a style for prompt text in dialogs
func CreatePromptStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightYellow)).
		Bold(true)
}

// CreateDisabledStyle dims rows whose request is in flight.
func CreateDisabledStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDim)).
		Italic(true)
}

// CreateURLSectionStyle creates a style for URL section headers
func CreateURLSectionStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBrightGreen)).
		Bold(true)
}

// URLColorCode is the ANSI 256 color used for hyperlinks.
const URLColorCode = "75"

// FormatClickableURL formats a URL as an OSC 8 hyperlink.
func FormatClickableURL(displayText, url string) string {
	hyperlink := fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, displayText)
	return fmt.Sprintf("\033[38;5;%sm\033[4m%s\033[0m", URLColorCode, hyperlink)
}

// FormatProgressMessage formats a progress message with consistent styling
func FormatProgressMessage(operation, filename string, percentage float64) string {
	if percentage >= 0 {
		return fmt.Sprintf("%s %s... %.1f%%", operation, filename, percentage)
	}
	return fmt.Sprintf("%s %s...", operation, filename)
}
