package console

import (
	"fmt"

	"github.com/mitchellh/colorstring"
)

// Task prints a top-level task line ("==>", blue) to stdout.
func Task(format string, args ...any) {
	colorstring.Printf("[blue][bold]==>[default] %s\n", fmt.Sprintf(format, args...))
}

// Subtask prints an indented subtask line ("->", green) to stdout.
func Subtask(format string, args ...any) {
	colorstring.Printf("[green][bold]  ->[reset] %s\n", fmt.Sprintf(format, args...))
}

// Warning prints an indented warning line ("->", yellow) to stdout.
func Warning(format string, args ...any) {
	colorstring.Printf("[yellow][bold]  ->[reset] %s\n", fmt.Sprintf(format, args...))
}

// Error prints an indented error line ("->", red) to stdout.
func Error(format string, args ...any) {
	colorstring.Printf("[red][bold]  ->[reset] %s\n", fmt.Sprintf(format, args...))
}

// Success prints a green top-level result line to stdout.
func Success(format string, args ...any) {
	colorstring.Printf("[green][bold]==>[default] %s\n", fmt.Sprintf(format, args...))
}

// Failure prints a red top-level result line to stdout.
func Failure(format string, args ...any) {
	colorstring.Printf("[red][bold]==>[default] %s\n", fmt.Sprintf(format, args...))
}
