package observability

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// SuccessLine writes the one-line build summary shown at the minimum log level:
// a bold green ">>>" followed by msg. Colour is dropped when w is not a terminal.
func SuccessLine(w io.Writer, msg string) {
	r := lipgloss.NewRenderer(w)
	marker := r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Render(">>>")
	_, _ = fmt.Fprintf(w, "%s %s\n", marker, msg)
}
