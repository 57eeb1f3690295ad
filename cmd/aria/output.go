package main

import (
	"fmt"
	"os"
)

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorPink    = "\033[95m"
	colorBold    = "\033[1m"
)

// personaColors maps the registry's presentation tokens to ANSI codes.
// Unknown tokens render uncolored.
var personaColors = map[string]string{
	"cyan":   colorCyan,
	"purple": colorMagenta,
	"orange": colorYellow,
	"green":  colorGreen,
	"pink":   colorPink,
}

func personaColor(token string) string {
	return personaColors[token]
}

func colorize(color, text string) string {
	if noColor || color == "" {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+fmt.Sprintf(format, args...)))
}

func printError(format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+fmt.Sprintf(format, args...)))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+fmt.Sprintf(format, args...)))
}

func printStatus(label string, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s %s\n", colorize(colorBold, label+":"), fmt.Sprintf(format, args...))
}
