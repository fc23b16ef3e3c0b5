package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Banner is printed at the top of interactive runs
const Banner = `
  vkbackup
  VK profile photos to cloud storage

`

// Output is where the print helpers write. Tests may swap it.
var Output io.Writer = os.Stdout

// Color functions for terminal output
var (
	Cyan    = color.New(color.FgCyan).SprintFunc()
	Yellow  = color.New(color.FgYellow).SprintFunc()
	Red     = color.New(color.FgRed).SprintFunc()
	Green   = color.New(color.FgGreen).SprintFunc()
	Magenta = color.New(color.FgMagenta).SprintFunc()
	Dim     = color.New(color.Faint).SprintFunc()
	Bold    = color.New(color.Bold).SprintFunc()
)

// SetColor enables or disables colored output globally. fatih/color already
// turns colors off when stdout is not a terminal or NO_COLOR is set.
func SetColor(enabled bool) {
	if !enabled {
		color.NoColor = true
	}
}

// PrintBanner prints the banner
func PrintBanner() {
	fmt.Fprint(Output, Cyan(Banner))
}

// PrintError prints an error message in red, followed by err when given
func PrintError(msg string, err ...error) {
	if len(err) > 0 && err[0] != nil {
		fmt.Fprintln(Output, Red(msg+": "+err[0].Error()))
		return
	}
	fmt.Fprintln(Output, Red(msg))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(Output, Green(msg))
}

// PrintInfo prints a label/value pair
func PrintInfo(label string, value string) {
	fmt.Fprintf(Output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string) {
	fmt.Fprintln(Output, Yellow(msg))
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Fprintln(Output, Magenta(msg))
}
