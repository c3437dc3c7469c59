package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

// DisplayQuestion shows the question header before the streamed answer
func DisplayQuestion(w io.Writer, question string) {
	fmt.Fprintln(w, titleStyle.Render("Stock Insights"))
	fmt.Fprintln(w, questionStyle.Render(question))
	fmt.Fprintln(w)
}

// DisplayToolResult shows the envelope returned by a tool run
func DisplayToolResult(w io.Writer, name, body string, failed bool) {
	status := successStyle.Render("ok")
	if failed {
		status = errorStyle.Render("error")
	}
	fmt.Fprintf(w, "%s %s %s\n", labelStyle.Render("tool"), titleStyle.Render(name), status)
	fmt.Fprintln(w, body)
}

func DisplayError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render(err.Error()))
}
