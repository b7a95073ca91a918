// Package ui holds the ANSI colour themes shared by the usage text, the
// error handler and the CLI report.
package ui

import (
	"os"
	"sync"
)

// Theme maps each role of the output to an ANSI escape sequence.
type Theme struct {
	Name      string
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string
	Bold      string
	Reset     string
}

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",
		Secondary: "\033[38;5;245m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;220m",
		Error:     "\033[38;5;196m",
		Info:      "\033[38;5;141m",
		Bold:      "\033[1m",
		Reset:     "\033[0m",
	}

	// LightTheme suits light backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",
		Secondary: "\033[38;5;240m",
		Success:   "\033[38;5;28m",
		Warning:   "\033[38;5;130m",
		Error:     "\033[38;5;124m",
		Info:      "\033[38;5;54m",
		Bold:      "\033[1m",
		Reset:     "\033[0m",
	}

	// NoColorTheme emits no escape sequences at all. CSV and JSON output
	// always use it.
	NoColorTheme = Theme{Name: "none"}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates a theme by name; unknown names select dark.
func SetTheme(name string) {
	switch name {
	case "light":
		SetCurrentTheme(LightTheme)
	case "none":
		SetCurrentTheme(NoColorTheme)
	default:
		SetCurrentTheme(DarkTheme)
	}
}

// InitTheme picks the theme of a run: colours are disabled by the noColor
// flag or by a NO_COLOR variable of any value (https://no-color.org/).
func InitTheme(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetCurrentTheme(DarkTheme)
}

// ColorReset returns the reset sequence of the active theme.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorRed returns the error colour.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen returns the success colour.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the warning colour.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue returns the primary colour.
func ColorBlue() string { return GetCurrentTheme().Primary }

// ColorMagenta returns the info colour.
func ColorMagenta() string { return GetCurrentTheme().Info }

// ColorCyan returns the secondary colour.
func ColorCyan() string { return GetCurrentTheme().Secondary }

// ColorBold returns the bold sequence.
func ColorBold() string { return GetCurrentTheme().Bold }
