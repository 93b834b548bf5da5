// Package present renders the debugger's prompt, status messages, and
// error messages with the same palette Manu343726-cucaracha's
// cmd/cpu/debug.go uses for its own interactive CPU debugger: cyan
// addresses, bold blue prompt, bold red errors.
package present

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	colorPrompt = color.New(color.FgBlue, color.Bold)
	colorError  = color.New(color.FgRed, color.Bold)
	colorAddr   = color.New(color.FgCyan)
	colorInfo   = color.New(color.FgGreen)
)

// Prompt writes the literal session prompt in its configured color.
func Prompt(out io.Writer, text string) {
	colorPrompt.Fprint(out, text)
}

// Error writes a recoverable command error in its configured color.
func Error(out io.Writer, err error) {
	colorError.Fprintln(out, "error:", err)
}

// Info writes a one-line status message.
func Info(out io.Writer, format string, args ...interface{}) {
	colorInfo.Fprintln(out, fmt.Sprintf(format, args...))
}

// Addr formats addr the way register dumps and memory commands do:
// zero-padded 16-digit hex, per spec.md §6.
func Addr(addr uint64) string {
	return colorAddr.Sprintf("0x%016x", addr)
}
