package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Theme holds the color scheme for terminal output.
type Theme struct {
	Accent  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
	plain   bool
}

var defaultTheme = Theme{
	Accent:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

var plainTheme = Theme{plain: true}

// theme is plain when stdout is not a terminal.
var theme = func() Theme {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return plainTheme
	}
	return defaultTheme
}()

func (t Theme) style() lipgloss.Style {
	return lipgloss.NewStyle()
}

func (t Theme) headingStyle() lipgloss.Style {
	if t.plain {
		return t.style()
	}
	return t.style().Foreground(t.Accent).Bold(true)
}

func (t Theme) successStyle() lipgloss.Style {
	if t.plain {
		return t.style()
	}
	return t.style().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	if t.plain {
		return t.style()
	}
	return t.style().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	if t.plain {
		return t.style()
	}
	return t.style().Foreground(t.Hint).Italic(true)
}

// answerStyle wraps spoken text to the terminal width.
func (t Theme) answerStyle() lipgloss.Style {
	s := t.style()
	if w := terminalWidth(); w > 0 {
		s = s.Width(min(w, 100) - 2)
	}
	if !t.plain {
		s = s.PaddingLeft(2).BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(t.Accent)
	}
	return s
}

// terminalWidth returns the stdout width, or 0 when stdout is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}
