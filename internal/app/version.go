// Package app wires the configuration to the run modes of picalc: a single
// calculation, a comparison, calibration, the HTTP server and shell
// completion.
package app

import (
	"fmt"
	"io"
	"runtime"
)

// Build information, set with -ldflags "-X github.com/agbru/picalc/internal/app.Version=v1.0.0".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// HasVersionFlag reports whether args hold --version, -version or -V in
// any position.
//
// Parameters:
//   - args: The command-line arguments.
//
// Returns:
//   - bool: True if a version flag is present.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--version" || arg == "-version" || arg == "-V" {
			return true
		}
	}
	return false
}

// PrintVersion writes the version banner.
//
// Parameters:
//   - out: The destination of the banner.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "picalc %s\n", Version)
	fmt.Fprintf(out, "  Commit:     %s\n", Commit)
	fmt.Fprintf(out, "  Built:      %s\n", BuildDate)
	fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// VersionData is the JSON form of the build information.
type VersionData struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetVersionInfo returns the build information.
//
// Returns:
//   - VersionData: The version, commit, build date and runtime platform.
func GetVersionInfo() VersionData {
	return VersionData{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
