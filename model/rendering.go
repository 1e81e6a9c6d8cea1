package model

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	gridPosBlock = "██"
	gridPosEmpty = "  "

	clearScreen = "\033[2J\033[H"
)

var (
	aliveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("218"))
	cursorStyle = lipgloss.NewStyle().Background(lipgloss.Color("240"))
	frameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
)

// Cursor marks a highlighted cell while rendering
type Cursor struct {
	Row, Col int
	Visible  bool
}

// TerminalRenderer draws grids as blocks of terminal cells
type TerminalRenderer struct {
	// Plain disables colors and the surrounding frame
	Plain bool
}

// Render returns the grid as a string, highlighting the cursor cell if visible
func (r *TerminalRenderer) Render(g Grid, cursor Cursor) string {
	var sb strings.Builder
	for row := range g.Rows() {
		for col := range g.Cols() {
			cell := gridPosEmpty
			if g.Alive(row, col) {
				cell = gridPosBlock
				if !r.Plain {
					cell = aliveStyle.Render(cell)
				}
			}
			if cursor.Visible && cursor.Row == row && cursor.Col == col && !r.Plain {
				cell = cursorStyle.Render(cell)
			}
			sb.WriteString(cell)
		}
		if row < g.Rows()-1 {
			sb.WriteByte('\n')
		}
	}
	if r.Plain {
		return sb.String()
	}
	return frameStyle.Render(sb.String())
}

// Display writes the grid to w
func (r *TerminalRenderer) Display(w io.Writer, g Grid) {
	fmt.Fprintln(w, r.Render(g, Cursor{}))
}

// Clear clears the terminal screen
func (r *TerminalRenderer) Clear(w io.Writer) {
	fmt.Fprint(w, clearScreen)
}
