// Package format renders durations, instants, and styled CLI output lines.
package format

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

// Clock renders a duration as h:mm, truncating seconds. Negative durations
// render as 0:00.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Minute)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Timestamp renders a wall-clock instant.
func Timestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// Success renders a confirmation line.
func Success(msg string) string {
	return successStyle.Render("✓ " + msg)
}

// Fail renders a failure line.
func Fail(msg string) string {
	return errorStyle.Render("✗ " + msg)
}

// Info renders an informational line.
func Info(msg string) string {
	return infoStyle.Render(msg)
}

// Label renders a field label for the status block.
func Label(s string) string {
	return labelStyle.Render(s)
}
