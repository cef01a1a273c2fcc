package terminal

import (
	"fmt"
	"os"
)

// Control provides terminal control functionality
type Control struct{}

// NewControl creates a new terminal control instance
func NewControl() *Control {
	return &Control{}
}

// MoveCursorUp moves the cursor up by the specified number of lines
func (c *Control) MoveCursorUp(lines int) {
	if lines <= 0 {
		return
	}
	fmt.Printf("\033[%dA", lines)
}

// ClearLine clears the current line
func (c *Control) ClearLine() {
	fmt.Print("\033[2K\r")
}

// ClearLines clears the specified number of lines starting from current position
func (c *Control) ClearLines(count int) {
	for i := 0; i < count; i++ {
		c.ClearLine()
		if i < count-1 {
			c.MoveCursorUp(1)
		}
	}
}

// IsTerminal checks if output is going to a terminal
func (c *Control) IsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}

	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// UpdateInPlace updates multiple lines in place. This keeps the daemon's
// toggle readout on a fixed set of lines instead of scrolling the terminal.
func (c *Control) UpdateInPlace(lines []string, isFirstUpdate bool) {
	if !c.IsTerminal() {
		// Piped output gets plain lines
		for _, line := range lines {
			fmt.Println(line)
		}
		return
	}

	if !isFirstUpdate {
		// Move cursor up to overwrite previous output
		c.MoveCursorUp(len(lines))
	}

	for i, line := range lines {
		if !isFirstUpdate {
			c.ClearLine()
		}
		fmt.Print(line)

		if i < len(lines)-1 {
			fmt.Println()
		}
	}

	if isFirstUpdate {
		fmt.Println()
	}
}
