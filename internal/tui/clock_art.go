package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// bigDigits is the 5-line ASCII art for each timecode character
var bigDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"   ", " █ ", "   ", " █ ", "   "},
}

// bigClockWidth is the rendered width of tc in terminal cells
func bigClockWidth(tc string) int {
	w := 0
	for _, r := range tc {
		if art, ok := bigDigits[r]; ok {
			w += len([]rune(art[0])) + 1
		}
	}
	return w
}

// renderBigTimecode renders tc as large digits in color
func renderBigTimecode(tc string, color string) string {
	var lines [5]strings.Builder

	for _, char := range tc {
		art, ok := bigDigits[char]
		if !ok {
			continue
		}
		for i := 0; i < 5; i++ {
			lines[i].WriteString(art[i])
			lines[i].WriteString(" ") // Space between digits
		}
	}

	clockStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Bold(true)

	rendered := make([]string, 5)
	for i := range lines {
		rendered[i] = clockStyle.Render(lines[i].String())
	}
	return strings.Join(rendered, "\n")
}
