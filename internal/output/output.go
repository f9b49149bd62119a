// Package output provides formatted terminal output for operation results.
package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// Output handles formatted output.
type Output struct {
	w        io.Writer
	useColor bool
	debug    bool
}

// New creates a new output handler.
func New(w io.Writer) *Output {
	return &Output{
		w:        w,
		useColor: true,
	}
}

// SetColor enables or disables color output.
func (o *Output) SetColor(enabled bool) {
	o.useColor = enabled
}

// SetDebug enables or disables debug output.
func (o *Output) SetDebug(enabled bool) {
	o.debug = enabled
}

// color returns the string wrapped in color codes if enabled.
func (o *Output) color(c, s string) string {
	if !o.useColor {
		return s
	}
	return c + s + colorReset
}

// Result prints an operation result: status line, then data fields.
// Multi-line values (stdout, stderr, content) are printed as indented
// blocks, scalar values as key: value pairs.
func (o *Output) Result(target, opName, message string, data map[string]any) {
	o.printf("%s %s %s %s\n",
		o.color(colorGreen, "✓"),
		o.color(colorBold, opName),
		o.color(colorGray, fmt.Sprintf("(%s)", target)),
		message)

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := data[k]
		if s, ok := v.(string); ok && strings.Contains(strings.TrimSpace(s), "\n") {
			o.printf("  %s\n", o.color(colorGray, k+":"))
			for _, line := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
				o.printf("    %s\n", line)
			}
			continue
		}
		o.printf("  %s %v\n", o.color(colorGray, k+":"), v)
	}
}

// Failure prints an operation failure.
func (o *Output) Failure(target, opName string, err error) {
	o.printf("%s %s %s %s\n",
		o.color(colorRed, "✗"),
		o.color(colorBold, opName),
		o.color(colorGray, fmt.Sprintf("(%s)", target)),
		o.color(colorRed, err.Error()))
}

// Info prints an informational message.
func (o *Output) Info(format string, args ...any) {
	o.printf("%s %s\n", o.color(colorBlue, "INFO"), fmt.Sprintf(format, args...))
}

// Warn prints a warning message.
func (o *Output) Warn(format string, args ...any) {
	o.printf("%s %s\n", o.color(colorYellow, "WARN"), fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (o *Output) Error(format string, args ...any) {
	o.printf("%s %s\n", o.color(colorRed, "ERROR"), fmt.Sprintf(format, args...))
}

// Debug prints a debug message (only in debug mode).
func (o *Output) Debug(format string, args ...any) {
	if o.debug {
		o.printf("%s %s\n", o.color(colorGray, "DEBUG"), fmt.Sprintf(format, args...))
	}
}

func (o *Output) printf(format string, args ...any) {
	fmt.Fprintf(o.w, format, args...)
}
