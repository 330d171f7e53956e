package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// field renders an aligned "label: value" line.
func field(label string, value any) string {
	return fmt.Sprintf("%s %v", mutedStyle.Render(fmt.Sprintf("%-10s", label+":")), value)
}

// capacityBar renders list occupancy, e.g. "[██████░░░░░░] 1/2".
func capacityBar(used, total, width int) string {
	if total <= 0 {
		return fmt.Sprintf("[%s] %d/%d", strings.Repeat("░", width), used, total)
	}
	filled := used * width / total
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %d/%d", used, total)
}
